package testkit

import (
	"strings"
	"testing"

	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/source"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/templates"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/types"
)

func TestCacheInvariants(t *testing.T) {
	strs := source.NewInterner()
	in := types.NewInterner(strs)
	b := in.Builtins()
	args := []types.Arg{types.TypeArg(b.I32)}

	c := templates.NewCache(in)
	key := c.EncodeKey(1, args)
	if err := c.Reserve(key, 1, args, templates.Handle{Kind: templates.HandleAlias}); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if err := CheckCacheInvariants(c, in); err == nil || !strings.Contains(err.Error(), "reserved") {
		t.Fatalf("reserved entry accepted: %v", err)
	}

	c.Complete(key, templates.Handle{Kind: templates.HandleAlias, Type: b.I32}, false)
	c.Record(key, source.Span{File: 0, Start: 1, End: 4})
	if err := CheckCacheInvariants(c, in); err != nil {
		t.Fatalf("valid cache rejected: %v", err)
	}

	bad := templates.NewCache(in)
	wrong := bad.EncodeKey(2, args)
	if err := bad.Reserve(wrong, 1, args, templates.Handle{}); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	bad.Complete(wrong, templates.Handle{Kind: templates.HandleAlias}, false)
	if err := CheckCacheInvariants(bad, in); err == nil || !strings.Contains(err.Error(), "does not encode") {
		t.Fatalf("mismatched key accepted: %v", err)
	}
}
