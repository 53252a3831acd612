package diag

import "github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/source"

// dedupKey identifies a diagnostic for deduplication. Notes do not take
// part: two reports differing only in notes are duplicates.
type dedupKey struct {
	code    Code
	sev     Severity
	primary source.Span
	msg     string
}

func keyOf(d *Diagnostic) dedupKey {
	return dedupKey{code: d.Code, sev: d.Severity, primary: d.Primary, msg: d.Message}
}

// Dedup drops later diagnostics equal to an earlier one in code, severity,
// primary span and message.
func (b *Bag) Dedup() {
	seen := make(map[dedupKey]struct{}, len(b.items))
	items := b.items[:0]
	for i := range b.items {
		k := keyOf(&b.items[i])
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		items = append(items, b.items[i])
	}
	b.items = items
}

// DedupReporter suppresses repeated reports before they reach next.
type DedupReporter struct {
	next Reporter
	seen map[dedupKey]struct{}
}

func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{next: next, seen: make(map[dedupKey]struct{})}
}

func (r *DedupReporter) Report(code Code, sev Severity, primary source.Span, msg string, notes []Note) {
	if r == nil {
		return
	}
	k := dedupKey{code: code, sev: sev, primary: primary, msg: msg}
	if _, dup := r.seen[k]; dup {
		return
	}
	r.seen[k] = struct{}{}
	if r.next != nil {
		r.next.Report(code, sev, primary, msg, notes)
	}
}
