package container

import (
	"os"
	"os/signal"
	"sync"
)

// signalRelay forwards interrupt and termination signals to the running
// container for the duration of one run. Signal delivery is asynchronous
// relative to the log-streaming loop, so the forwarding goroutine never
// assumes anything about the main goroutine's state; the channel buffer
// absorbs a second signal arriving while the first is still being
// forwarded.
type signalRelay struct {
	ch   chan os.Signal
	quit chan struct{}
	done chan struct{}
	once sync.Once
}

// newSignalRelay installs handlers for every signal in sigs and forwards
// each delivery through fn. Close restores the prior disposition.
func newSignalRelay(sigs []os.Signal, fn func(os.Signal)) *signalRelay {
	r := &signalRelay{
		ch:   make(chan os.Signal, 8),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
	signal.Notify(r.ch, sigs...)
	go func() {
		defer close(r.done)
		for {
			select {
			case sig := <-r.ch:
				fn(sig)
			case <-r.quit:
				return
			}
		}
	}()
	return r
}

// Close stops forwarding and restores the process's previous signal
// disposition. Safe to call from multiple exit paths; the restore happens
// exactly once.
func (r *signalRelay) Close() {
	r.once.Do(func() {
		signal.Stop(r.ch)
		close(r.quit)
		<-r.done
	})
}
