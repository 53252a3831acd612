package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/diag"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/source"
)

// Current schema version - increment when DiskPayload format changes
const diskCacheSchemaVersion uint16 = 1

// DiskCache хранит результаты проверки юнитов на диске, по Digest юнита.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// DiskPayload is what a checked unit leaves behind: its diagnostics with
// spans relative to its listing, and its instantiation report.
type DiskPayload struct {
	Schema      uint16
	Path        string
	Digest      Digest
	Broken      bool
	Diagnostics []cachedDiagnostic
	Report      *InstantiationReport
}

// cachedSpan drops the file id: listing ids differ between runs. Spans
// outside the listing come back as NoSpan.
type cachedSpan struct {
	InListing bool
	Start     uint32
	End       uint32
}

type cachedNote struct {
	Span cachedSpan
	Msg  string
}

type cachedDiagnostic struct {
	Severity uint8
	Code     uint16
	Message  string
	Primary  cachedSpan
	Notes    []cachedNote
}

// OpenDiskCache opens the cache in dir, or under $XDG_CACHE_HOME/app when
// dir is empty.
func OpenDiskCache(dir, app string) (*DiskCache, error) {
	if dir == "" {
		base := os.Getenv("XDG_CACHE_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			base = filepath.Join(home, ".cache")
		}
		dir = filepath.Join(base, app)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("open disk cache: %w", err)
	}
	return &DiskCache{dir: dir}, nil
}

// Dir returns the cache directory.
func (c *DiskCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *DiskCache) pathFor(key Digest) string {
	// Для удобства читаемости/очистки — подкаталог "units".
	return filepath.Join(c.dir, "units", key.String()+".mp")
}

// Put serializes and writes a payload to the disk cache.
func (c *DiskCache) Put(key Digest, payload *DiskPayload) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	if err = msgpack.NewEncoder(f).Encode(payload); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), p)
}

// Get reads a payload. A missing entry or one written by another schema
// version is a miss, not an error.
func (c *DiskCache) Get(key Digest, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer func() { _ = f.Close() }()

	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, fmt.Errorf("decode cache entry %s: %w", key, err)
	}
	if out.Schema != diskCacheSchemaVersion || out.Digest != key {
		return false, nil
	}
	return true, nil
}

// DropAll invalidates the cache, useful after format changes.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// тривиально: переименуем каталог и удалим
	units := filepath.Join(c.dir, "units")
	old := units + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(units, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return os.RemoveAll(old)
}

// sessionToDiskPayload captures a checked session for caching.
func sessionToDiskPayload(s *Session) *DiskPayload {
	listing := source.FileID(0)
	hasListing := s.Unit != nil
	if hasListing {
		listing = s.Unit.Listing
	}
	pack := func(sp source.Span) cachedSpan {
		if !hasListing || !sp.Valid() || sp.File != listing {
			return cachedSpan{}
		}
		return cachedSpan{InListing: true, Start: sp.Start, End: sp.End}
	}

	payload := &DiskPayload{
		Schema: diskCacheSchemaVersion,
		Path:   s.Path,
		Digest: s.digest,
		Broken: s.Bag.HasErrors(),
		Report: s.Report,
	}
	for _, d := range s.Bag.Items() {
		cd := cachedDiagnostic{
			Severity: uint8(d.Severity),
			Code:     uint16(d.Code),
			Message:  d.Message,
			Primary:  pack(d.Primary),
		}
		for _, n := range d.Notes {
			cd.Notes = append(cd.Notes, cachedNote{Span: pack(n.Span), Msg: n.Msg})
		}
		payload.Diagnostics = append(payload.Diagnostics, cd)
	}
	return payload
}

// restoreSession replays a payload into s, re-homing spans onto the
// listing registered in this run.
func restoreSession(s *Session, payload *DiskPayload) {
	listing := s.Unit.Listing
	unpack := func(cs cachedSpan) source.Span {
		if !cs.InListing {
			return source.NoSpan
		}
		return source.Span{File: listing, Start: cs.Start, End: cs.End}
	}
	for _, cd := range payload.Diagnostics {
		d := diag.New(diag.Severity(cd.Severity), diag.Code(cd.Code), unpack(cd.Primary), cd.Message)
		for _, n := range cd.Notes {
			d = d.WithNote(unpack(n.Span), n.Msg)
		}
		s.Bag.Add(d)
	}
	if payload.Report != nil {
		report := *payload.Report
		report.Session = s.ID
		s.Report = &report
	}
	s.Cached = true
}
