package prof

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStartStopWritesProfiles(t *testing.T) {
	dir := t.TempDir()
	opts := Options{
		CPUProfile:   filepath.Join(dir, "cpu.pprof"),
		MemProfile:   filepath.Join(dir, "mem.pprof"),
		RuntimeTrace: filepath.Join(dir, "trace.out"),
	}
	if !opts.Enabled() {
		t.Fatalf("options with paths should be enabled")
	}
	p, err := Start(opts)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := p.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := p.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
	for _, path := range []string{opts.CPUProfile, opts.MemProfile, opts.RuntimeTrace} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("%s not written: %v", filepath.Base(path), err)
		}
	}
}

func TestStartFailureLeavesNothingRunning(t *testing.T) {
	dir := t.TempDir()
	_, err := Start(Options{
		CPUProfile:   filepath.Join(dir, "cpu.pprof"),
		RuntimeTrace: filepath.Join(dir, "missing", "trace.out"),
	})
	if err == nil {
		t.Fatalf("expected an error for an unwritable trace path")
	}
	// The CPU profiler must be free again.
	p, err := Start(Options{CPUProfile: filepath.Join(dir, "again.pprof")})
	if err != nil {
		t.Fatalf("cpu profiler still running: %v", err)
	}
	if err := p.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestDisabled(t *testing.T) {
	if (Options{}).Enabled() {
		t.Fatalf("empty options should be disabled")
	}
	var p *Profiler
	if err := p.Stop(); err != nil {
		t.Fatalf("nil Stop: %v", err)
	}
}
