package diag

// Severity orders diagnostics. A unit fails when any of its diagnostics
// Fails.
type Severity uint8

const (
	SevInfo Severity = iota // timings and other reports
	SevWarning
	SevError
)

var severityNames = [...]struct{ upper, lower string }{
	SevInfo:    {"INFO", "info"},
	SevWarning: {"WARNING", "warning"},
	SevError:   {"ERROR", "error"},
}

// String is the spelling used by pretty and JSON output.
func (s Severity) String() string {
	if int(s) < len(severityNames) {
		return severityNames[s].upper
	}
	return "UNKNOWN"
}

// Label is the lower-case spelling used by short and golden output.
func (s Severity) Label() string {
	if int(s) < len(severityNames) {
		return severityNames[s].lower
	}
	return "info"
}

// Fails reports whether a diagnostic of severity s fails its unit.
func (s Severity) Fails() bool {
	return s >= SevError
}
