package trace

import "time"

// Kind represents the type of trace event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
)

func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	default:
		return "unknown"
	}
}

// Scope is the granularity of an event. Coarser scopes are smaller.
type Scope uint8

const (
	ScopeDriver   Scope = iota + 1 // CLI command
	ScopePass                      // load, collect, resolve, bodies
	ScopeUnit                      // one unit file
	ScopeInstance                  // one instantiation request
)

func (s Scope) String() string {
	switch s {
	case ScopeDriver:
		return "driver"
	case ScopePass:
		return "pass"
	case ScopeUnit:
		return "unit"
	case ScopeInstance:
		return "instance"
	default:
		return "unknown"
	}
}

// Instance identifies the instantiation an instance-scope span serves.
type Instance struct {
	Generic uint32 `json:"generic"`
	Key     string `json:"key"` // hex cache key
	Label   string `json:"label"`
	Depth   int    `json:"depth"` // nesting below the requesting declaration
}

// Event represents a single trace event.
type Event struct {
	Time     time.Time
	Seq      uint64 // stamped by the tracer that stores the event
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 for roots
	Session  string // unit session id, empty for driver events
	Name     string
	Detail   string // outcome on span end: hit, built, failed, depth, recursive
	Instance *Instance
	Extra    map[string]string
}
