// Package diag defines the diagnostic model shared by the unit loader, the
// semantic checker and the template engine.
//
// Diagnostic is the central record: Severity, a numeric Code with a stable
// string ID (UNT/SEM/TPL/OBS ranges, see codes.go), a short Message, the
// Primary span and optional Notes. Notes add context ("candidate declared
// here", "in instantiation of ...") rather than repeat the message.
//
// Producers never store diagnostics themselves; they emit through a Reporter.
// ReportError / ReportWarning return a ReportBuilder that collects notes and
// sends the diagnostic once on Emit. BagReporter aggregates into a Bag which
// supports limits, sorting and deduplication; DedupReporter filters repeated
// reports on the fly.
//
// Errors raised while an instantiation body is built are first collected in a
// private Bag and then attached, via Bag.Notes, to a single diagnostic naming
// the instantiation. That keeps each argument set's failures distinct.
//
// Rendering lives in internal/diagfmt; FormatGoldenDiagnostics here is the
// stable one-line-per-entry format used by tests and the short CLI output.
package diag
