package trace

import (
	"sync/atomic"
	"time"
)

var (
	globalSeq   atomic.Uint64
	globalSpans atomic.Uint64
)

// NextSeq returns a monotonically increasing sequence number.
func NextSeq() uint64 {
	return globalSeq.Add(1)
}

// NextSpanID returns a unique span ID.
func NextSpanID() uint64 {
	return globalSpans.Add(1)
}

// Span is one begin/end pair. The zero Span returned for disabled scopes
// ignores every call.
type Span struct {
	tracer  Tracer
	begin   Event
	started time.Time
}

func enabled(t Tracer, scope Scope) bool {
	return t != nil && t.Enabled() && t.Level().ShouldEmit(scope)
}

func start(t Tracer, ev Event) *Span {
	if !enabled(t, ev.Scope) {
		return &Span{}
	}
	ev.Kind = KindSpanBegin
	ev.SpanID = NextSpanID()
	ev.Time = time.Now()
	begin := ev
	t.Emit(&begin)
	return &Span{tracer: t, begin: ev, started: ev.Time}
}

// Begin starts a span outside any session. parent is 0 for roots.
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	return start(t, Event{Scope: scope, Name: name, ParentID: parent})
}

// BeginSession is Begin with a unit session id on both events.
func BeginSession(t Tracer, scope Scope, name string, parent uint64, session string) *Span {
	return start(t, Event{Scope: scope, Name: name, ParentID: parent, Session: session})
}

// BeginInstance starts an instance-scope span carrying inst on both events.
func BeginInstance(t Tracer, parent uint64, session string, inst Instance) *Span {
	return start(t, Event{
		Scope:    ScopeInstance,
		Name:     "instantiate",
		ParentID: parent,
		Session:  session,
		Instance: &inst,
	})
}

// End emits the end event with detail as the outcome and returns the
// span duration.
func (s *Span) End(detail string) time.Duration {
	if s == nil || s.tracer == nil {
		return 0
	}
	ev := s.begin
	ev.Kind = KindSpanEnd
	ev.Time = time.Now()
	ev.Detail = detail
	s.tracer.Emit(&ev)
	return ev.Time.Sub(s.started)
}

// WithExtra adds a key-value pair to the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if s == nil || s.tracer == nil {
		return s
	}
	if s.begin.Extra == nil {
		s.begin.Extra = make(map[string]string)
	}
	s.begin.Extra[key] = value
	return s
}

// ID returns the span ID, 0 for disabled spans.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.begin.SpanID
}

// Point emits an instant event.
func Point(t Tracer, scope Scope, name, detail string, parent uint64) {
	if !enabled(t, scope) {
		return
	}
	t.Emit(&Event{
		Time:     time.Now(),
		Kind:     KindPoint,
		Scope:    scope,
		ParentID: parent,
		Name:     name,
		Detail:   detail,
	})
}
