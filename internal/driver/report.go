package driver

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/sema"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/source"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/templates"
)

// InstantiationReport lists every instantiation one unit produced, in
// the order the cache reserved them.
type InstantiationReport struct {
	Unit      string           `json:"unit" yaml:"unit" msgpack:"unit"`
	Session   string           `json:"session" yaml:"session" msgpack:"session"`
	Instances []InstanceReport `json:"instances" yaml:"instances" msgpack:"instances"`
}

// InstanceReport describes one cache entry.
type InstanceReport struct {
	Generic  string     `json:"generic" yaml:"generic" msgpack:"generic"`
	Kind     string     `json:"kind" yaml:"kind" msgpack:"kind"`
	Instance string     `json:"instance" yaml:"instance" msgpack:"instance"`
	Key      string     `json:"key" yaml:"key" msgpack:"key"`
	State    string     `json:"state" yaml:"state" msgpack:"state"`
	Failed   bool       `json:"failed,omitempty" yaml:"failed,omitempty" msgpack:"failed,omitempty"`
	UseSites []Location `json:"use_sites,omitempty" yaml:"use_sites,omitempty" msgpack:"use_sites,omitempty"`
}

// Location is a resolved position in a listing.
type Location struct {
	Path string `json:"path" yaml:"path" msgpack:"path"`
	Line uint32 `json:"line" yaml:"line" msgpack:"line"`
	Col  uint32 `json:"col" yaml:"col" msgpack:"col"`
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.Path, l.Line, l.Col)
}

// BuildReport walks the instantiation cache of a checked unit. Use sites
// are resolved against fs.
func BuildReport(unitPath, session string, fs *source.FileSet, res *sema.Result) *InstantiationReport {
	report := &InstantiationReport{Unit: unitPath, Session: session, Instances: []InstanceReport{}}
	if res == nil || res.Cache == nil || res.Engine == nil {
		return report
	}
	for _, e := range res.Cache.Entries() {
		g := res.Engine.Generic(e.Generic)
		if g == nil {
			continue
		}
		inst := InstanceReport{
			Generic:  res.Engine.GenericLabel(g),
			Kind:     handleKind(e.Handle.Kind),
			Instance: res.Engine.InstanceLabel(g, e.Args),
			Key:      e.Key.Hex(),
			State:    e.State.String(),
			Failed:   e.Failed,
		}
		for _, sp := range e.UseSites {
			inst.UseSites = append(inst.UseSites, locate(fs, sp))
		}
		report.Instances = append(report.Instances, inst)
	}
	return report
}

func handleKind(k templates.HandleKind) string {
	switch k {
	case templates.HandleClass:
		return "class"
	case templates.HandleAlias:
		return "alias"
	case templates.HandleFunction:
		return "function"
	default:
		return "unknown"
	}
}

func locate(fs *source.FileSet, sp source.Span) Location {
	f := fs.Get(sp.File)
	if f == nil {
		return Location{Path: "-"}
	}
	start, _ := fs.Resolve(sp)
	return Location{Path: f.Path, Line: start.Line, Col: start.Col}
}

// ReportFormat selects the encoding of WriteReport.
type ReportFormat string

const (
	ReportJSON    ReportFormat = "json"
	ReportMsgpack ReportFormat = "msgpack"
	ReportYAML    ReportFormat = "yaml"
)

// ParseReportFormat validates a format name from flags or config.
func ParseReportFormat(s string) (ReportFormat, error) {
	switch f := ReportFormat(s); f {
	case ReportJSON, ReportMsgpack, ReportYAML:
		return f, nil
	}
	return "", fmt.Errorf("unknown report format %q (want json, msgpack or yaml)", s)
}

// WriteReport encodes reports to w.
func WriteReport(w io.Writer, reports []*InstantiationReport, format ReportFormat) error {
	if reports == nil {
		reports = []*InstantiationReport{}
	}
	switch format {
	case ReportJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	case ReportMsgpack:
		return msgpack.NewEncoder(w).Encode(reports)
	case ReportYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(reports); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown report format %q", format)
}
