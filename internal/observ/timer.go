// Package observ measures how long the phases of a check take.
package observ

import (
	"fmt"
	"strings"
	"time"
)

// Phase is one measured step of a session: load, check, report.
type Phase struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Note  string
	open  bool
}

// Timer collects phases of one session. It is not safe for concurrent use;
// every session owns its timer.
type Timer struct {
	phases []Phase
	now    func() time.Time
}

func NewTimer() *Timer { return &Timer{phases: make([]Phase, 0, 4), now: time.Now} }

// Begin opens a phase and returns its index for End.
func (t *Timer) Begin(name string) int {
	t.phases = append(t.phases, Phase{Name: name, Start: t.now(), open: true})
	return len(t.phases) - 1
}

// End closes the phase idx. Closing twice keeps the first duration.
func (t *Timer) End(idx int, note string) {
	if idx < 0 || idx >= len(t.phases) || !t.phases[idx].open {
		return
	}
	p := &t.phases[idx]
	p.Dur = t.now().Sub(p.Start)
	p.Note = note
	p.open = false
}

// Measure runs fn inside a phase named name.
func (t *Timer) Measure(name string, fn func() string) {
	idx := t.Begin(name)
	t.End(idx, fn())
}

// Summary renders the phases as an aligned table.
func (t *Timer) Summary() string {
	report := t.Report()
	var b strings.Builder
	b.WriteString("timings:\n")
	for _, p := range report.Phases {
		fmt.Fprintf(&b, "  %-12s %8.2f ms", p.Name, p.DurationMS)
		if p.Note != "" {
			b.WriteString("  (" + p.Note + ")")
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "  %-12s %8.2f ms\n", "total", report.TotalMS)
	return b.String()
}

// PhaseReport is the serialisable form of a phase.
type PhaseReport struct {
	Name       string  `json:"name" yaml:"name"`
	DurationMS float64 `json:"duration_ms" yaml:"duration_ms"`
	Note       string  `json:"note,omitempty" yaml:"note,omitempty"`
}

// Report aggregates the closed phases of a timer.
type Report struct {
	TotalMS float64       `json:"total_ms" yaml:"total_ms"`
	Phases  []PhaseReport `json:"phases" yaml:"phases"`
}

// Report lists closed phases in the order they began. Open phases are
// skipped.
func (t *Timer) Report() Report {
	var report Report
	var total time.Duration
	for _, p := range t.phases {
		if p.open {
			continue
		}
		total += p.Dur
		report.Phases = append(report.Phases, PhaseReport{
			Name:       p.Name,
			DurationMS: millis(p.Dur),
			Note:       p.Note,
		})
	}
	report.TotalMS = millis(total)
	return report
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
