// Package testkit holds invariant checks shared by package tests.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/ast"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/source"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/templates"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/types"
)

// CheckListingSpans runs a minimal set of span invariants on a decoded
// unit and its rendered listing:
// 1) every declaration span is non-empty and points into the listing
// 2) declaration spans lie within the listing content
// 3) declarations follow each other in order without overlapping
func CheckListingSpans(f *ast.File, listing *source.File) error {
	if f == nil || listing == nil {
		return fmt.Errorf("nil file or listing")
	}
	lenContent, err := safecast.Conv[uint32](len(listing.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}

	var prev source.Span
	for i, d := range f.Decls {
		sp := d.Span()
		if sp.End <= sp.Start {
			return fmt.Errorf("decl[%d]: empty span %v", i, sp)
		}
		if sp.File != listing.ID {
			return fmt.Errorf("decl[%d]: span file mismatch: got=%d want=%d", i, sp.File, listing.ID)
		}
		if sp.End > lenContent {
			return fmt.Errorf("decl[%d]: span end beyond content: %d > %d", i, sp.End, lenContent)
		}
		if i > 0 && sp.Start < prev.End {
			return fmt.Errorf("decl[%d]: span %v overlaps previous %v", i, sp, prev)
		}
		prev = sp
	}
	return nil
}

// CheckCacheInvariants verifies an instantiation cache after a finished
// check:
// 1) entries are numbered in insertion order
// 2) every key is the encoding of its generic and arguments, and unique
// 3) no entry is left reserved
// 4) successful entries carry a handle, classes a type
// 5) use sites are valid and distinct
func CheckCacheInvariants(c *templates.Cache, in *types.Interner) error {
	if c == nil || in == nil {
		return fmt.Errorf("nil cache or interner")
	}
	seen := make(map[templates.Key]int, c.Len())
	for i, e := range c.Entries() {
		if e.Seq != i {
			return fmt.Errorf("entry %d has seq %d", i, e.Seq)
		}
		if want := templates.EncodeKey(in, e.Generic, e.Args); want != e.Key {
			return fmt.Errorf("entry %d: key %s does not encode its arguments (%s)", i, e.Key.Hex(), want.Hex())
		}
		if j, dup := seen[e.Key]; dup {
			return fmt.Errorf("entries %d and %d share key %s", j, i, e.Key.Hex())
		}
		seen[e.Key] = i
		if e.State != templates.EntryReady {
			return fmt.Errorf("entry %d is still %s", i, e.State)
		}
		if !e.Failed {
			if e.Handle.Kind == 0 {
				return fmt.Errorf("entry %d: ready without a handle", i)
			}
			if e.Handle.Kind == templates.HandleClass && e.Handle.Type == types.NoTypeID {
				return fmt.Errorf("entry %d: class handle without a type", i)
			}
		}
		sites := make(map[source.Span]struct{}, len(e.UseSites))
		for _, sp := range e.UseSites {
			if !sp.Valid() {
				return fmt.Errorf("entry %d: invalid use site", i)
			}
			if _, dup := sites[sp]; dup {
				return fmt.Errorf("entry %d: use site %v recorded twice", i, sp)
			}
			sites[sp] = struct{}{}
		}
	}
	return nil
}
