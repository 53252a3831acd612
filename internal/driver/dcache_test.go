package driver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/diag"
)

func TestDiskCacheReplaysUnits(t *testing.T) {
	dir := t.TempDir()
	cache, err := OpenDiskCache(filepath.Join(dir, "cache"), "ucb")
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	paths := []string{
		writeUnit(t, dir, "pair.toml", pairUnit),
		writeUnit(t, dir, "box.toml", brokenUnit),
	}
	opts := Options{MaxDiagnostics: 32, Cache: cache}

	first, err := CheckUnits(context.Background(), paths, opts)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := CheckUnits(context.Background(), paths, opts)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	for i := range paths {
		a, b := first.Sessions[i], second.Sessions[i]
		if a.Cached || !b.Cached {
			t.Fatalf("%s: cached flags %v/%v", paths[i], a.Cached, b.Cached)
		}
		if b.Sema != nil {
			t.Fatalf("%s: cache hit was re-checked", paths[i])
		}
		got := diag.FormatGoldenDiagnostics(b.Bag.Items(), second.FileSet, true)
		want := diag.FormatGoldenDiagnostics(a.Bag.Items(), first.FileSet, true)
		if got != want {
			t.Fatalf("%s: replayed diagnostics differ\nwant:\n%s\ngot:\n%s", paths[i], want, got)
		}
		if len(a.Report.Instances) != len(b.Report.Instances) || b.Report.Session != b.ID {
			t.Fatalf("%s: replayed report %+v", paths[i], b.Report)
		}
	}
	if !hasCode(second.Sessions[1].Bag, diag.TplUnusedParam) {
		t.Fatalf("replayed diagnostics lost the unused parameter error")
	}
}

func TestDiskCacheKeyedByContentAndOptions(t *testing.T) {
	dir := t.TempDir()
	cache, err := OpenDiskCache(filepath.Join(dir, "cache"), "ucb")
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	path := writeUnit(t, dir, "pair.toml", pairUnit)
	opts := Options{MaxDiagnostics: 32, Cache: cache}
	if _, err := CheckUnits(context.Background(), []string{path}, opts); err != nil {
		t.Fatalf("warm: %v", err)
	}

	opts.MaxDepth = 7
	res, _ := CheckUnits(context.Background(), []string{path}, opts)
	if res.Sessions[0].Cached {
		t.Fatalf("different options hit the cache")
	}

	writeUnit(t, dir, "pair.toml", brokenUnit)
	res, _ = CheckUnits(context.Background(), []string{path}, opts)
	if res.Sessions[0].Cached || !res.HasErrors() {
		t.Fatalf("changed content hit the cache")
	}
}

func TestDiskCacheDropAll(t *testing.T) {
	dir := t.TempDir()
	cache, err := OpenDiskCache(dir, "ucb")
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	key := combineDigest([]byte("unit"))
	if err := cache.Put(key, &DiskPayload{Schema: diskCacheSchemaVersion, Digest: key, Path: "a.toml"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	var out DiskPayload
	if hit, err := cache.Get(key, &out); err != nil || !hit || out.Path != "a.toml" {
		t.Fatalf("get: %v %v %+v", hit, err, out)
	}
	if err := cache.DropAll(); err != nil {
		t.Fatalf("drop: %v", err)
	}
	if hit, err := cache.Get(key, &out); err != nil || hit {
		t.Fatalf("entry survived DropAll: %v %v", hit, err)
	}
	if _, err := os.Stat(filepath.Join(dir, "units")); !os.IsNotExist(err) {
		t.Fatalf("units directory left behind: %v", err)
	}
}

func TestDiskCacheSchemaMismatchIsMiss(t *testing.T) {
	cache, err := OpenDiskCache(t.TempDir(), "ucb")
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	key := combineDigest([]byte("unit"))
	if err := cache.Put(key, &DiskPayload{Schema: diskCacheSchemaVersion + 1, Digest: key}); err != nil {
		t.Fatalf("put: %v", err)
	}
	var out DiskPayload
	if hit, err := cache.Get(key, &out); err != nil || hit {
		t.Fatalf("stale schema accepted: %v %v", hit, err)
	}
	var nilCache *DiskCache
	if hit, err := nilCache.Get(key, &out); hit || err != nil {
		t.Fatalf("nil cache: %v %v", hit, err)
	}
}
