package trace

import (
	"io"
	"sync"
)

// RingTracer keeps the most recent events in memory. The CLI dumps it
// when a check fails.
type RingTracer struct {
	mu     sync.Mutex
	events []Event
	total  int // events ever stored
	level  Level
}

func NewRingTracer(size int, level Level) *RingTracer {
	if size <= 0 {
		size = 4096
	}
	return &RingTracer{events: make([]Event, size), level: level}
}

func (t *RingTracer) Emit(ev *Event) {
	if !t.level.ShouldEmit(ev.Scope) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	ev.Seq = NextSeq()
	t.events[t.total%len(t.events)] = *ev
	t.total++
}

// Snapshot returns the stored events, oldest first.
func (t *RingTracer) Snapshot() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := min(t.total, len(t.events))
	out := make([]Event, 0, n)
	for i := t.total - n; i < t.total; i++ {
		out = append(out, t.events[i%len(t.events)])
	}
	return out
}

// Dump writes the stored events to w.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	for _, ev := range t.Snapshot() {
		if _, err := w.Write(FormatEvent(&ev, format)); err != nil {
			return err
		}
	}
	return nil
}

func (t *RingTracer) Flush() error  { return nil }
func (t *RingTracer) Close() error  { return nil }
func (t *RingTracer) Level() Level  { return t.level }
func (t *RingTracer) Enabled() bool { return t.level != LevelOff }
