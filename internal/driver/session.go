// Package driver runs the checker over unit files: it loads units, checks
// them in parallel sessions, and assembles diagnostics, instantiation
// reports and timings.
package driver

import (
	"github.com/google/uuid"

	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/diag"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/observ"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/sema"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/source"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/templates"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/types"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/unit"
)

// Session owns the state of checking one unit. Sessions share nothing but
// the file set, which is only written while loading.
type Session struct {
	ID      string
	Path    string
	Strings *source.Interner
	Types   *types.Interner
	Cache   *templates.Cache
	Bag     *diag.Bag
	Timer   *observ.Timer

	// Unit is nil when the file could not be loaded or decoded.
	Unit *unit.Unit
	// Sema is nil when the unit was not checked (load failure or disk
	// cache hit).
	Sema *sema.Result
	// Report lists the instantiations the unit produced.
	Report *InstantiationReport
	// Cached is set when diagnostics and report came from the disk cache.
	Cached bool

	digest Digest
}

func newSession(path string, maxDiagnostics int) *Session {
	strs := source.NewInterner()
	in := types.NewInterner(strs)
	return &Session{
		ID:      uuid.NewString(),
		Path:    path,
		Strings: strs,
		Types:   in,
		Cache:   templates.NewCache(in),
		Bag:     diag.NewBag(maxDiagnostics),
		Timer:   observ.NewTimer(),
	}
}

// HasErrors reports whether the session produced an error diagnostic.
func (s *Session) HasErrors() bool {
	return s.Bag.HasErrors()
}

// Result collects the sessions of one CheckUnits run in input order.
type Result struct {
	FileSet  *source.FileSet
	Sessions []*Session
}

// HasErrors reports whether any session failed.
func (r *Result) HasErrors() bool {
	for _, s := range r.Sessions {
		if s.HasErrors() {
			return true
		}
	}
	return false
}

// Diagnostics merges the bags of all sessions, sorted by location.
func (r *Result) Diagnostics() *diag.Bag {
	total := 0
	for _, s := range r.Sessions {
		total += s.Bag.Len()
	}
	out := diag.NewBag(total)
	for _, s := range r.Sessions {
		out.Merge(s.Bag)
	}
	out.Sort()
	return out
}

// Reports returns the instantiation reports of sessions that have one.
func (r *Result) Reports() []*InstantiationReport {
	out := make([]*InstantiationReport, 0, len(r.Sessions))
	for _, s := range r.Sessions {
		if s.Report != nil {
			out = append(out, s.Report)
		}
	}
	return out
}
