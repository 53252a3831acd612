package driver

import (
	"encoding/json"
	"fmt"

	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/diag"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/observ"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/source"
)

type timingPayload struct {
	Kind      string               `json:"kind"`
	Path      string               `json:"path,omitempty"`
	Instances int                  `json:"instances"`
	Cached    bool                 `json:"cached,omitempty"`
	TotalMS   float64              `json:"total_ms"`
	Phases    []observ.PhaseReport `json:"phases"`
}

// appendTimingDiagnostic adds an OBS6001 note carrying the timer report
// as JSON. The bag limit is raised when it is full: timings are asked for
// explicitly and must not be dropped.
func appendTimingDiagnostic(bag *diag.Bag, payload timingPayload) {
	if bag == nil {
		return
	}
	if payload.Kind == "" {
		payload.Kind = "unit"
	}
	msg := fmt.Sprintf("timings (%s): total %.2f ms, %d instantiations", payload.Kind, payload.TotalMS, payload.Instances)
	if payload.Path != "" {
		msg = fmt.Sprintf("%s: %s", msg, payload.Path)
	}
	if payload.Cached {
		msg += " (cached)"
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return
	}

	entry := diag.New(diag.SevInfo, diag.ObsTimings, source.NoSpan, msg).
		WithNote(source.NoSpan, string(data))

	if bag.Add(entry) {
		return
	}
	overflow := diag.NewBag(1)
	overflow.Add(entry)
	bag.Merge(overflow)
}
