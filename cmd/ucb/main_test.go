package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/driver"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/version"
)

const boxUnit = `
[[decl]]
kind = "template"
name = "Box"
template = [{ name = "T" }]
fields = [{ name = "value", type = { name = "T" } }]

[[decl]]
kind = "alias"
name = "IntBox"
target = { apply = "Box", args = [{ name = "i32" }] }
`

const unusedUnit = `
[[decl]]
kind = "template"
name = "Box"
template = [{ name = "T" }, { name = "U" }]
fields = [{ name = "value", type = { name = "T" } }]
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// runUCB executes a fresh command tree with an explicit config file so that
// no ucb.toml above the test directory is picked up.
func runUCB(t *testing.T, dir string, args ...string) (string, string, error) {
	t.Helper()
	cfg := filepath.Join(dir, "ucb.toml")
	if _, err := os.Stat(cfg); err != nil {
		writeFile(t, dir, "ucb.toml", "[diagnostics]\ncolor = \"off\"\n")
	}
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--config", cfg}, args...))
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestCheckCleanUnit(t *testing.T) {
	dir := t.TempDir()
	unitPath := writeFile(t, dir, "box.toml", boxUnit)
	stdout, _, err := runUCB(t, dir, "check", unitPath)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if stdout != "" {
		t.Fatalf("expected no diagnostics, got:\n%s", stdout)
	}
}

func TestCheckReportsErrors(t *testing.T) {
	dir := t.TempDir()
	unitPath := writeFile(t, dir, "box.toml", unusedUnit)
	stdout, _, err := runUCB(t, dir, "check", "--format", "short", unitPath)
	if !errors.Is(err, errCheckFailed) {
		t.Fatalf("expected errCheckFailed, got %v", err)
	}
	if !strings.Contains(stdout, "TPL4001") {
		t.Fatalf("expected unused parameter diagnostic, got:\n%s", stdout)
	}
}

func TestCheckJSONFromConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ucb.toml", "[diagnostics]\nformat = \"json\"\ncolor = \"off\"\n")
	unitPath := writeFile(t, dir, "box.toml", unusedUnit)
	stdout, _, err := runUCB(t, dir, "check", unitPath)
	if !errors.Is(err, errCheckFailed) {
		t.Fatalf("expected errCheckFailed, got %v", err)
	}
	var payload struct {
		Diagnostics []struct {
			Code string `json:"code"`
		} `json:"diagnostics"`
	}
	if err := json.Unmarshal([]byte(stdout), &payload); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, stdout)
	}
	if len(payload.Diagnostics) == 0 || payload.Diagnostics[0].Code != "TPL4001" {
		t.Fatalf("unexpected diagnostics %+v", payload.Diagnostics)
	}
}

func TestCheckEmitsInstantiations(t *testing.T) {
	dir := t.TempDir()
	unitPath := writeFile(t, dir, "box.toml", boxUnit)
	reportPath := filepath.Join(dir, "report.yaml")
	_, _, err := runUCB(t, dir, "check", "--emit-instantiations", "yaml", "--emit-output", reportPath, unitPath)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	data, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var reports []driver.InstantiationReport
	if err := yaml.Unmarshal(data, &reports); err != nil {
		t.Fatalf("report is not YAML: %v", err)
	}
	if len(reports) != 1 || len(reports[0].Instances) != 1 {
		t.Fatalf("unexpected report %+v", reports)
	}
	if got := reports[0].Instances[0].Instance; got != "Box</i32/>" {
		t.Fatalf("instance %q", got)
	}
}

func TestCheckFlagValidation(t *testing.T) {
	dir := t.TempDir()
	unitPath := writeFile(t, dir, "box.toml", boxUnit)
	tests := []struct {
		name string
		args []string
	}{
		{"bad format", []string{"check", "--format", "xml", unitPath}},
		{"bad depth", []string{"check", "--max-depth", "0", unitPath}},
		{"bad emit", []string{"check", "--emit-instantiations", "csv", unitPath}},
		{"missing unit", []string{"check", filepath.Join(dir, "nope.toml")}},
		{"empty dir", []string{"check", t.TempDir()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runUCB(t, dir, tt.args...)
			if err == nil || errors.Is(err, errCheckFailed) {
				t.Fatalf("expected a usage error, got %v", err)
			}
		})
	}
}

func TestCheckTimings(t *testing.T) {
	dir := t.TempDir()
	unitPath := writeFile(t, dir, "box.toml", boxUnit)
	stdout, stderr, err := runUCB(t, dir, "--timings", "check", "--format", "short", unitPath)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !strings.Contains(stdout, "OBS6001") {
		t.Fatalf("expected timing diagnostic, got:\n%s", stdout)
	}
	if stderr != "" {
		t.Fatalf("short format should not print a timing summary, got:\n%s", stderr)
	}
}

func TestVersionJSON(t *testing.T) {
	var stdout bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetArgs([]string{"version", "--format", "json", "--full"})
	if err := root.Execute(); err != nil {
		t.Fatalf("version: %v", err)
	}
	var payload versionPayload
	if err := json.Unmarshal(stdout.Bytes(), &payload); err != nil {
		t.Fatalf("version output is not JSON: %v", err)
	}
	if payload.Tool != "ucb" || payload.Version != version.Version || payload.GitCommit == "" {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestUseColor(t *testing.T) {
	var buf bytes.Buffer
	if !useColor("on", &buf) {
		t.Fatalf("on should force color")
	}
	if useColor("off", &buf) || useColor("auto", &buf) {
		t.Fatalf("a buffer is never a terminal")
	}
}

func TestCheckWritesProfiles(t *testing.T) {
	dir := t.TempDir()
	unitPath := writeFile(t, dir, "box.toml", boxUnit)
	cpu := filepath.Join(dir, "cpu.pprof")
	mem := filepath.Join(dir, "mem.pprof")
	if _, _, err := runUCB(t, dir, "--cpu-profile", cpu, "--mem-profile", mem, "check", unitPath); err != nil {
		t.Fatalf("check failed: %v", err)
	}
	for _, path := range []string{cpu, mem} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("%s not written: %v", filepath.Base(path), err)
		}
	}
}

func TestDiskCacheAndClean(t *testing.T) {
	dir := t.TempDir()
	cacheDir := filepath.Join(dir, "cache")
	writeFile(t, dir, "ucb.toml", "[diagnostics]\ncolor = \"off\"\n\n[build]\ncache_dir = \""+filepath.ToSlash(cacheDir)+"\"\n")
	unitPath := writeFile(t, dir, "box.toml", unusedUnit)

	for run := 0; run < 2; run++ {
		stdout, _, err := runUCB(t, dir, "check", "--disk-cache", "--format", "short", unitPath)
		if !errors.Is(err, errCheckFailed) || !strings.Contains(stdout, "TPL4001") {
			t.Fatalf("run %d: err=%v output:\n%s", run, err, stdout)
		}
	}
	entries, err := os.ReadDir(filepath.Join(cacheDir, "units"))
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected one cached unit, got %d (%v)", len(entries), err)
	}

	stdout, _, err := runUCB(t, dir, "clean")
	if err != nil {
		t.Fatalf("clean: %v", err)
	}
	if !strings.Contains(stdout, "removed cached units") {
		t.Fatalf("clean output %q", stdout)
	}
	if _, err := os.Stat(filepath.Join(cacheDir, "units")); !os.IsNotExist(err) {
		t.Fatalf("units directory survived clean: %v", err)
	}
}
