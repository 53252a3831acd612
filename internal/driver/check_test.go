package driver

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/diag"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/testkit"
)

const pairUnit = `
[[decl]]
kind = "template"
name = "Pair"
template = [{ name = "A" }, { name = "B" }]
fields = [{ name = "first", type = { name = "A" } }, { name = "second", type = { name = "B" } }]

[[decl]]
kind = "alias"
name = "P1"
target = { apply = "Pair", args = [{ name = "i32" }, { name = "bool" }] }

[[decl]]
kind = "alias"
name = "P2"
target = { apply = "Pair", args = [{ name = "i32" }, { name = "bool" }] }
`

const brokenUnit = `
[[decl]]
kind = "template"
name = "Box"
template = [{ name = "T" }, { name = "U" }]
fields = [{ name = "value", type = { name = "T" } }]
`

const pairYAML = `
decl:
  - kind: template
    name: Pair
    template: [{ name: A }, { name: B }]
    fields:
      - { name: first, type: { name: A } }
      - { name: second, type: { name: B } }
  - kind: alias
    name: P
    target: { apply: Pair, args: [{ name: u8 }, { name: char8 }] }
`

func writeUnit(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func codes(bag *diag.Bag) []diag.Code {
	out := make([]diag.Code, 0, bag.Len())
	for _, d := range bag.Items() {
		out = append(out, d.Code)
	}
	return out
}

func hasCode(bag *diag.Bag, code diag.Code) bool {
	for _, d := range bag.Items() {
		if d.Code == code {
			return true
		}
	}
	return false
}

func TestCheckUnitsReportsInstantiations(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeUnit(t, dir, "pair.toml", pairUnit),
		writeUnit(t, dir, "pair.yaml", pairYAML),
	}
	res, err := CheckUnits(context.Background(), paths, Options{MaxDiagnostics: 32, Jobs: 2})
	if err != nil {
		t.Fatalf("CheckUnits: %v", err)
	}
	if res.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", res.Diagnostics().Items())
	}
	if len(res.Sessions) != 2 || res.Sessions[0].Path != paths[0] {
		t.Fatalf("sessions out of input order: %+v", res.Sessions)
	}
	if res.Sessions[0].ID == res.Sessions[1].ID {
		t.Fatalf("sessions share an id")
	}
	for _, s := range res.Sessions {
		if err := testkit.CheckCacheInvariants(s.Cache, s.Types); err != nil {
			t.Fatalf("%s: %v", s.Path, err)
		}
	}

	reports := res.Reports()
	if len(reports) != 2 {
		t.Fatalf("expected two reports, got %d", len(reports))
	}
	toml := reports[0]
	if len(toml.Instances) != 1 {
		t.Fatalf("expected one instance, got %+v", toml.Instances)
	}
	inst := toml.Instances[0]
	if inst.Instance != "Pair</i32, bool/>" || inst.Kind != "class" || inst.State != "ready" || inst.Failed {
		t.Fatalf("unexpected instance %+v", inst)
	}
	if len(inst.UseSites) != 2 || !strings.HasSuffix(inst.UseSites[0].Path, "pair.u") {
		t.Fatalf("unexpected use sites %+v", inst.UseSites)
	}
	if got := reports[1].Instances[0].Instance; got != "Pair</u8, char8/>" {
		t.Fatalf("yaml unit instance %q", got)
	}
}

func TestCheckUnitsLoadFailures(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		filepath.Join(dir, "missing.toml"),
		writeUnit(t, dir, "bad.toml", "[[decl]]\nkind = \"class\"\nname = \"A\"\nbogus = 1\n"),
		writeUnit(t, dir, "notes.txt", "hello"),
		writeUnit(t, dir, "box.toml", brokenUnit),
	}
	res, err := CheckUnits(context.Background(), paths, Options{MaxDiagnostics: 32})
	if err != nil {
		t.Fatalf("CheckUnits: %v", err)
	}
	want := []diag.Code{diag.UnitLoadError, diag.UnitDecodeError, diag.UnitUnknownFormat, diag.TplUnusedParam}
	for i, code := range want {
		s := res.Sessions[i]
		if !hasCode(s.Bag, code) {
			t.Fatalf("%s: expected %s, got %v", filepath.Base(s.Path), code.ID(), codes(s.Bag))
		}
	}
	for _, s := range res.Sessions[:3] {
		if s.Unit != nil || s.Report != nil {
			t.Fatalf("%s: broken unit was checked", s.Path)
		}
	}
	bad := res.Sessions[1].Bag.Items()[0]
	if !strings.Contains(bad.Message, `unknown key "decl.bogus"`) {
		t.Fatalf("decode message %q", bad.Message)
	}
	if f := res.FileSet.Get(bad.Primary.File); f == nil || !strings.HasSuffix(f.Path, "bad.toml") {
		t.Fatalf("decode error does not point at the unit file")
	}
}

func TestCheckUnitsTimings(t *testing.T) {
	dir := t.TempDir()
	path := writeUnit(t, dir, "pair.toml", pairUnit)

	var mu sync.Mutex
	var events []PhaseEvent
	observer := func(ev PhaseEvent) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, ev)
	}
	res, err := CheckUnits(context.Background(), []string{path}, Options{MaxDiagnostics: 1, Timings: true, Observer: observer})
	if err != nil {
		t.Fatalf("CheckUnits: %v", err)
	}
	items := res.Sessions[0].Bag.Items()
	if len(items) != 1 || items[0].Code != diag.ObsTimings || len(items[0].Notes) != 1 {
		t.Fatalf("expected a timing diagnostic, got %v", items)
	}
	var payload timingPayload
	if err := json.Unmarshal([]byte(items[0].Notes[0].Msg), &payload); err != nil {
		t.Fatalf("timing note is not JSON: %v", err)
	}
	if payload.Instances != 1 || len(payload.Phases) != 3 || payload.Phases[1].Name != "check" {
		t.Fatalf("unexpected payload %+v", payload)
	}
	if len(events) != 4 || events[0].Name != "load" || events[3].Status != PhaseEnd {
		t.Fatalf("unexpected phase events %+v", events)
	}
}

func TestCheckUnitsCancelled(t *testing.T) {
	dir := t.TempDir()
	path := writeUnit(t, dir, "pair.toml", pairUnit)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := CheckUnits(ctx, []string{path}, Options{}); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestWriteReportFormats(t *testing.T) {
	reports := []*InstantiationReport{{
		Unit:    "a.toml",
		Session: "s",
		Instances: []InstanceReport{{
			Generic:  "Box</T/>",
			Kind:     "class",
			Instance: "Box</i32/>",
			Key:      "00",
			State:    "ready",
			UseSites: []Location{{Path: "a.u", Line: 3, Col: 7}},
		}},
	}}

	var buf bytes.Buffer
	if err := WriteReport(&buf, reports, ReportJSON); err != nil {
		t.Fatalf("json: %v", err)
	}
	var fromJSON []InstantiationReport
	if err := json.Unmarshal(buf.Bytes(), &fromJSON); err != nil || fromJSON[0].Instances[0].UseSites[0].Col != 7 {
		t.Fatalf("json round trip: %v %+v", err, fromJSON)
	}

	buf.Reset()
	if err := WriteReport(&buf, reports, ReportYAML); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if !strings.Contains(buf.String(), "instance: Box</i32/>") {
		t.Fatalf("yaml output:\n%s", buf.String())
	}
	var fromYAML []InstantiationReport
	if err := yaml.Unmarshal(buf.Bytes(), &fromYAML); err != nil || fromYAML[0].Unit != "a.toml" {
		t.Fatalf("yaml round trip: %v %+v", err, fromYAML)
	}

	buf.Reset()
	if err := WriteReport(&buf, reports, ReportMsgpack); err != nil {
		t.Fatalf("msgpack: %v", err)
	}
	var fromMsgpack []InstantiationReport
	if err := msgpack.Unmarshal(buf.Bytes(), &fromMsgpack); err != nil || fromMsgpack[0].Instances[0].Generic != "Box</T/>" {
		t.Fatalf("msgpack round trip: %v %+v", err, fromMsgpack)
	}

	if _, err := ParseReportFormat("xml"); err == nil {
		t.Fatalf("xml accepted")
	}
	if err := WriteReport(&buf, reports, "xml"); err == nil {
		t.Fatalf("WriteReport accepted xml")
	}
}
