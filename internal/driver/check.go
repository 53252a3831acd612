package driver

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/diag"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/sema"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/source"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/trace"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/unit"
)

// Options configure CheckUnits.
type Options struct {
	MaxDiagnostics int
	MaxDepth       int
	// Jobs caps the number of units checked at once; <= 0 means GOMAXPROCS.
	Jobs    int
	Dedup   bool
	Timings bool
	// Tracer defaults to the tracer carried by the context.
	Tracer   trace.Tracer
	Cache    *DiskCache
	Observer PhaseObserver
}

// CheckUnits loads the unit files at paths and checks each in its own
// session. Loading is sequential so listings get file ids in input order;
// checking runs in parallel. Problems with a unit are diagnostics in its
// session; the returned error is only set when ctx is cancelled.
func CheckUnits(ctx context.Context, paths []string, opts Options) (*Result, error) {
	tracer := opts.Tracer
	if tracer == nil {
		tracer = trace.FromContext(ctx)
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	fs := source.NewFileSet()
	res := &Result{FileSet: fs, Sessions: make([]*Session, 0, len(paths))}

	root := trace.Begin(tracer, trace.ScopeDriver, "check_units", trace.CurrentSpan(ctx)).
		WithExtra("units", fmt.Sprint(len(paths)))
	defer root.End("")

	done := opts.Observer.begin("load")
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			done()
			return res, err
		}
		s := newSession(path, opts.MaxDiagnostics)
		loadUnit(fs, s, &opts, tracer, root.ID())
		res.Sessions = append(res.Sessions, s)
	}
	done()

	done = opts.Observer.begin("check")
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for _, s := range res.Sessions {
		if s.Unit == nil || s.Cached {
			continue
		}
		s := s
		g.Go(func() error {
			checkSession(gctx, fs, s, &opts, tracer, root.ID())
			return nil
		})
	}
	err := g.Wait()
	done()
	if err == nil {
		err = ctx.Err()
	}

	if opts.Timings {
		for _, s := range res.Sessions {
			report := s.Timer.Report()
			instances := 0
			if s.Report != nil {
				instances = len(s.Report.Instances)
			}
			appendTimingDiagnostic(s.Bag, timingPayload{
				Path:      s.Path,
				Instances: instances,
				Cached:    s.Cached,
				TotalMS:   report.TotalMS,
				Phases:    report.Phases,
			})
		}
	}
	return res, err
}

// loadUnit reads and decodes one unit. The unit's listing, or for broken
// units the raw file, is registered in fs so diagnostics have a location.
func loadUnit(fs *source.FileSet, s *Session, opts *Options, tracer trace.Tracer, parent uint64) {
	idx := s.Timer.Begin("load")

	data, flags, err := source.ReadNormalized(s.Path)
	if err != nil {
		id := fs.AddVirtual(s.Path, nil)
		s.Bag.Add(diag.NewError(diag.UnitLoadError, source.Span{File: id}, fmt.Sprintf("cannot read unit: %v", err)))
		s.Timer.End(idx, "unreadable")
		return
	}

	u, err := unit.Parse(fs, s.Strings, s.Path, data)
	if err != nil {
		code := diag.UnitDecodeError
		if errors.Is(err, unit.ErrUnknownFormat) {
			code = diag.UnitUnknownFormat
		}
		id := fs.Add(s.Path, data, flags)
		s.Bag.Add(diag.NewError(code, source.Span{File: id}, err.Error()))
		s.Timer.End(idx, "undecodable")
		return
	}
	s.Unit = u
	s.digest = unitDigest(s.Path, data, opts)

	if opts.Cache != nil {
		var payload DiskPayload
		hit, err := opts.Cache.Get(s.digest, &payload)
		switch {
		case err != nil:
			trace.Point(tracer, trace.ScopeUnit, "disk_cache_get", err.Error(), parent)
		case hit:
			restoreSession(s, &payload)
		}
	}
	note := u.Format.String()
	if s.Cached {
		note += ", cached"
	}
	s.Timer.End(idx, note)
}

func checkSession(ctx context.Context, fs *source.FileSet, s *Session, opts *Options, tracer trace.Tracer, parent uint64) {
	span := trace.BeginSession(tracer, trace.ScopeUnit, s.Path, parent, s.ID)

	var rep diag.Reporter = diag.BagReporter{Bag: s.Bag}
	if opts.Dedup {
		rep = diag.NewDedupReporter(rep)
	}

	idx := s.Timer.Begin("check")
	res := sema.Check(ctx, s.Unit.File, sema.Options{
		Reporter:       rep,
		Types:          s.Types,
		Cache:          s.Cache,
		MaxDepth:       opts.MaxDepth,
		MaxDiagnostics: int(s.Bag.Cap()),
		Tracer:         tracer,
		Session:        s.ID,
		ParentSpan:     span.ID(),
	})
	s.Sema = &res
	s.Timer.End(idx, fmt.Sprintf("%d functions", len(res.Functions)))

	idx = s.Timer.Begin("report")
	s.Report = BuildReport(s.Path, s.ID, fs, &res)
	s.Timer.End(idx, fmt.Sprintf("%d instantiations", len(s.Report.Instances)))

	if opts.Cache != nil && ctx.Err() == nil {
		if err := opts.Cache.Put(s.digest, sessionToDiskPayload(s)); err != nil {
			trace.Point(tracer, trace.ScopeUnit, "disk_cache_put", err.Error(), span.ID())
		}
	}
	span.End(fmt.Sprintf("%d diagnostics", s.Bag.Len()))
}
