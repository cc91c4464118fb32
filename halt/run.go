package halt

import (
	"fmt"
	"time"
)

type Outcome int

const (
	Returned Outcome = iota
	Halted
	Running
	Panicked
)

func (o Outcome) String() string {
	switch o {
	case Returned:
		return "returned"
	case Halted:
		return "halted"
	case Running:
		return "running"
	case Panicked:
		return "panicked"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Run calls fn on its own goroutine and reports how it ended within timeout.
// A function still running at the deadline is left spinning.
func Run(fn func(), timeout time.Duration) Outcome {
	done := make(chan Outcome, 1)
	go func() {
		outcome := Halted
		defer func() {
			if recover() != nil {
				outcome = Panicked
			}
			done <- outcome
		}()
		fn()
		outcome = Returned
	}()
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case o := <-done:
		return o
	case <-timer.C:
		return Running
	}
}
