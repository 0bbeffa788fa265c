//go:build windows

package container

import "os"

// relaySignals is the set of signals this process may intercept and
// forward to the container. Windows only delivers an interrupt.
var relaySignals = []os.Signal{os.Interrupt}

// signalName renders a signal the way the Docker kill API expects it.
func signalName(os.Signal) string {
	return "SIGINT"
}
