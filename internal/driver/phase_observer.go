package driver

import "time"

// PhaseStatus reports whether a phase started or finished.
type PhaseStatus int

const (
	// PhaseStart indicates that a driver phase has begun.
	PhaseStart PhaseStatus = iota
	PhaseEnd
)

// PhaseEvent describes a phase boundary of CheckUnits: "load" and "check"
// for the whole run.
type PhaseEvent struct {
	Name    string
	Status  PhaseStatus
	Elapsed time.Duration
}

// PhaseObserver receives phase events emitted during CheckUnits. It is
// called from the goroutine running CheckUnits.
type PhaseObserver func(PhaseEvent)

func (o PhaseObserver) begin(name string) func() {
	if o == nil {
		return func() {}
	}
	start := time.Now()
	o(PhaseEvent{Name: name, Status: PhaseStart})
	return func() {
		o(PhaseEvent{Name: name, Status: PhaseEnd, Elapsed: time.Since(start)})
	}
}
