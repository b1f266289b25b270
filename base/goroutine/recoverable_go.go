package goroutine

import (
	"runtime/debug"

	"github.com/x-xyz/settlement/base/log"
)

type PanicEvent struct {
	Name  string
	Panic interface{}
	Stack []byte
}

type options struct {
	beforeStart    func()
	afterEnded     func()
	afterRecovered func(p interface{}, stack []byte)
}

type Option func(*options)

func WithBeforeStart(f func()) Option {
	return func(o *options) {
		o.beforeStart = f
	}
}

func WithAfterEnded(f func()) Option {
	return func(o *options) {
		o.afterEnded = f
	}
}

func WithAfterRecovered(f func(p interface{}, stack []byte)) Option {
	return func(o *options) {
		o.afterRecovered = f
	}
}

// RecoverableGo runs f in a goroutine. The returned channel yields the panic
// if f panicked, otherwise it is closed once f returns.
func RecoverableGo(name string, f func(), opts ...Option) <-chan *PanicEvent {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	panicCh := make(chan *PanicEvent, 1)
	go func() {
		defer func() {
			if o.afterEnded != nil {
				o.afterEnded()
			}
			p := recover()
			if p == nil {
				close(panicCh)
				return
			}
			stack := debug.Stack()
			log.Log().WithFields(log.Fields{
				"goroutine": name,
				"err":       p,
				"stack":     string(stack),
			}).Error("panic")
			if o.afterRecovered != nil {
				o.afterRecovered(p, stack)
			}
			panicCh <- &PanicEvent{Name: name, Panic: p, Stack: stack}
		}()

		if o.beforeStart != nil {
			o.beforeStart()
		}
		f()
	}()
	return panicCh
}
