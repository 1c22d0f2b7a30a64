// Package sigctx cancels a context on SIGINT or SIGTERM and records which
// signal fired so main can translate it into a conventional exit code.
package sigctx

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

type SignalError struct {
	Signal os.Signal
}

func (e *SignalError) Error() string {
	return fmt.Sprintf("received signal %s", e.Signal)
}

// SigNum returns the shell-style exit code for the signal (128 + number).
func (e *SignalError) SigNum() int {
	if s, ok := e.Signal.(syscall.Signal); ok {
		return 128 + int(s)
	}
	return 128
}

// New returns a child context cancelled on SIGINT/SIGTERM. The cancellation
// cause is a *SignalError, retrievable via context.Cause.
func New(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancelCause(parent)

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-ch:
			cancel(&SignalError{Signal: sig})
		case <-ctx.Done():
		}
		signal.Stop(ch)
	}()

	return ctx, func() { cancel(nil) }
}
