package observ

import (
	"strings"
	"testing"
	"time"
)

func fakeClock(step time.Duration) func() time.Time {
	now := time.Unix(0, 0)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	tm.now = fakeClock(2 * time.Millisecond)

	load := tm.Begin("load")
	tm.End(load, "3 units")
	tm.Measure("check", func() string { return "" })
	tm.Begin("report") // never closed

	r := tm.Report()
	if len(r.Phases) != 2 {
		t.Fatalf("expected 2 closed phases, got %+v", r.Phases)
	}
	if r.Phases[0].Name != "load" || r.Phases[0].Note != "3 units" {
		t.Fatalf("unexpected first phase %+v", r.Phases[0])
	}
	if r.Phases[0].DurationMS != 2 || r.TotalMS != 4 {
		t.Fatalf("unexpected durations: %+v", r)
	}
}

func TestTimerEndTwiceKeepsFirst(t *testing.T) {
	tm := NewTimer()
	tm.now = fakeClock(time.Millisecond)
	idx := tm.Begin("load")
	tm.End(idx, "first")
	tm.End(idx, "second")
	tm.End(42, "ignored")

	r := tm.Report()
	if r.Phases[0].Note != "first" || r.Phases[0].DurationMS != 1 {
		t.Fatalf("unexpected phase %+v", r.Phases[0])
	}
}

func TestTimerSummary(t *testing.T) {
	tm := NewTimer()
	tm.now = fakeClock(time.Millisecond)
	tm.Measure("check", func() string { return "2 instances" })

	out := tm.Summary()
	for _, want := range []string{"timings:", "check", "(2 instances)", "total"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary %q lacks %q", out, want)
		}
	}
}
