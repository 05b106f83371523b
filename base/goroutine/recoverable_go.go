package goroutine

import (
	"fmt"
	"runtime/debug"

	"github.com/x-xyz/escrow/base/log"
)

var (
	logger = log.Log()
)

type PanicEvent struct {
	Panic interface{}
	Stack []byte
}

func (e *PanicEvent) Error() string {
	return fmt.Sprintf("panic: %v", e.Panic)
}

type RecoverableGoOptions struct {
	beforeStart    *func()
	afterEnded     *func()
	afterRecovered *func(panic interface{}, stake []byte)
}

type RecoverableGoOptionsFunc = func(*RecoverableGoOptions) error

func getRecoverableGoOptions(fns ...RecoverableGoOptionsFunc) RecoverableGoOptions {
	opts := RecoverableGoOptions{}
	for _, fn := range fns {
		fn(&opts)
	}
	return opts
}

func WithBeforeStart(f func()) RecoverableGoOptionsFunc {
	return func(options *RecoverableGoOptions) error {
		options.beforeStart = &f
		return nil
	}
}

func WithAfterEnded(f func()) RecoverableGoOptionsFunc {
	return func(options *RecoverableGoOptions) error {
		options.afterEnded = &f
		return nil
	}
}

func WithAfterRecovered(f func(panic interface{}, stake []byte)) RecoverableGoOptionsFunc {
	return func(options *RecoverableGoOptions) error {
		options.afterRecovered = &f
		return nil
	}
}

// Recover runs f on the calling goroutine and turns a panic into a
// *PanicEvent error
func Recover(f func() error, fns ...RecoverableGoOptionsFunc) (err error) {
	opts := getRecoverableGoOptions(fns...)

	defer func() {
		if opts.afterEnded != nil {
			(*opts.afterEnded)()
		}

		if p := recover(); p != nil {
			stack := debug.Stack()

			logger.WithFields(log.Fields{
				"err":   p,
				"stack": string(stack),
			}).Error("panic")

			if opts.afterRecovered != nil {
				(*opts.afterRecovered)(p, stack)
			}
			err = &PanicEvent{p, stack}
		}
	}()

	if opts.beforeStart != nil {
		(*opts.beforeStart)()
	}

	return f()
}

// RecoverableGo runs f on a new goroutine. The returned channel yields the
// panic if f panicked and is closed otherwise.
func RecoverableGo(f func(), fns ...RecoverableGoOptionsFunc) chan *PanicEvent {
	panicChan := make(chan *PanicEvent, 1)

	go func() {
		err := Recover(func() error {
			f()
			return nil
		}, fns...)
		if p, ok := err.(*PanicEvent); ok {
			panicChan <- p
			return
		}
		close(panicChan)
	}()

	return panicChan
}
