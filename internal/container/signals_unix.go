//go:build unix

package container

import (
	"os"
	"strconv"
	"syscall"
)

// relaySignals is the set of signals this process may intercept and
// forward to the container. Computed once; SIGKILL and SIGSTOP cannot be
// caught and are deliberately absent.
var relaySignals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGTERM,
	syscall.SIGHUP,
	syscall.SIGQUIT,
}

var signalNames = map[syscall.Signal]string{
	syscall.SIGINT:  "SIGINT",
	syscall.SIGTERM: "SIGTERM",
	syscall.SIGHUP:  "SIGHUP",
	syscall.SIGQUIT: "SIGQUIT",
}

// signalName renders a signal the way the Docker kill API expects it.
func signalName(sig os.Signal) string {
	s, ok := sig.(syscall.Signal)
	if !ok {
		return "SIGTERM"
	}
	if name, ok := signalNames[s]; ok {
		return name
	}
	return strconv.Itoa(int(s))
}
