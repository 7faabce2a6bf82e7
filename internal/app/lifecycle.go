package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// terminationSignals end a run early with exit code 130.
var terminationSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

// runContext derives the context of one run from parent. It is done when
// timeout elapses or a termination signal arrives. The returned stop
// releases the timer and the signal registration and may be called twice.
func runContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	timed, cancelTimer := context.WithTimeout(parent, timeout)
	ctx, stopNotify := signal.NotifyContext(timed, terminationSignals...)
	return ctx, func() {
		stopNotify()
		cancelTimer()
	}
}
