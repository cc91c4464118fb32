// Package halt provides the ways a stage can stop for good.
package halt

import "runtime"

// Halter stops the caller. Halt never returns.
type Halter interface {
	Halt()
}

// Spin halts by looping forever with interrupts assumed off.
type Spin struct{}

func (Spin) Halt() {
	for {
	}
}

// Bounded spins N iterations and then ends the calling goroutine. Deferred
// calls run but the caller still never sees Halt return.
type Bounded struct {
	N int
}

func (b Bounded) Halt() {
	for i := 0; i < b.N; i++ {
		runtime.Gosched()
	}
	runtime.Goexit()
}

type Func func()

func (f Func) Halt() {
	f()
	runtime.Goexit()
}
