package diag

import (
	"testing"

	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/source"
)

func TestFormatGoldenDiagnostics(t *testing.T) {
	fs := source.NewFileSet()
	fs.SetBaseDir("/workspace")
	file := fs.Add("/workspace/units/sample.u", []byte("a\nb\n"), 0)

	diags := []Diagnostic{
		{
			Severity: SevError,
			Code:     TplNoMatch,
			Message:  "first line\nsecond",
			Primary:  source.Span{File: file, Start: 0, End: 1},
			Notes: []Note{
				{Span: source.Span{File: file, Start: 2, End: 3}, Msg: "note line"},
			},
		},
		{
			Severity: SevWarning,
			Code:     SemaError,
			Message:  "another",
			Primary:  source.Span{File: file, Start: 2, End: 3},
		},
		{
			Severity: SevError,
			Code:     UnitLoadError,
			Message:  "nowhere",
			Primary:  source.NoSpan,
		},
	}

	expected := "error UNT1001 -:0:0 nowhere\n" +
		"error TPL4011 units/sample.u:1:1 first line second\n" +
		"note TPL4011 units/sample.u:2:1 note line\n" +
		"warning SEM3001 units/sample.u:2:1 another"

	if got := FormatGoldenDiagnostics(diags, fs, true); got != expected {
		t.Fatalf("unexpected golden diagnostics:\nwant:\n%s\n\ngot:\n%s", expected, got)
	}
}

func TestSeverityNames(t *testing.T) {
	tests := []struct {
		sev          Severity
		upper, lower string
		fails        bool
	}{
		{SevInfo, "INFO", "info", false},
		{SevWarning, "WARNING", "warning", false},
		{SevError, "ERROR", "error", true},
		{Severity(9), "UNKNOWN", "info", true},
	}
	for _, tt := range tests {
		if tt.sev.String() != tt.upper || tt.sev.Label() != tt.lower || tt.sev.Fails() != tt.fails {
			t.Fatalf("severity %d: %q %q %v", tt.sev, tt.sev.String(), tt.sev.Label(), tt.sev.Fails())
		}
	}
}

func TestBagLimitAndDedup(t *testing.T) {
	bag := NewBag(2)
	rep := BagReporter{Bag: bag}
	sp := source.Span{File: 0, Start: 1, End: 2}
	ReportError(rep, TplAmbiguous, sp, "x").Emit()
	ReportError(rep, TplAmbiguous, sp, "x").Emit()
	ReportError(rep, TplAmbiguous, sp, "dropped").Emit()
	if bag.Len() != 2 {
		t.Fatalf("bag len = %d, want 2", bag.Len())
	}
	bag.Dedup()
	if bag.Len() != 1 {
		t.Fatalf("dedup left %d items", bag.Len())
	}
}

func TestBagCountsDropped(t *testing.T) {
	tests := []struct {
		sevs      []Severity
		dropped   int
		hasErrors bool
	}{
		{[]Severity{SevWarning, SevWarning}, 0, false},
		{[]Severity{SevWarning, SevWarning, SevWarning}, 1, false},
		{[]Severity{SevWarning, SevWarning, SevError}, 1, true},
	}
	for _, tt := range tests {
		bag := NewBag(2)
		for _, sev := range tt.sevs {
			bag.Add(Diagnostic{Severity: sev, Code: SemaError, Message: "m"})
		}
		if bag.Dropped() != tt.dropped || bag.HasErrors() != tt.hasErrors {
			t.Fatalf("%v: dropped=%d hasErrors=%v", tt.sevs, bag.Dropped(), bag.HasErrors())
		}
	}
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(10)
	rep := NewDedupReporter(BagReporter{Bag: bag})
	sp := source.Span{File: 0, Start: 1, End: 2}
	for i := 0; i < 3; i++ {
		ReportError(rep, TplNoMatch, sp, "same").Emit()
	}
	ReportError(rep, TplNoMatch, sp, "other").Emit()
	if bag.Len() != 2 {
		t.Fatalf("dedup reporter passed %d diagnostics, want 2", bag.Len())
	}
}

func TestBuilderEmitsOnce(t *testing.T) {
	bag := NewBag(10)
	b := ReportError(BagReporter{Bag: bag}, TplContext, source.NoSpan, "ctx").
		WithNote(source.NoSpan, "inner")
	b.Emit()
	b.Emit()
	if bag.Len() != 1 || len(bag.Items()[0].Notes) != 1 {
		t.Fatalf("unexpected bag contents: %+v", bag.Items())
	}
}
