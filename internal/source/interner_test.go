package source

import "testing"

func TestInternerBasic(t *testing.T) {
	interner := NewInterner()

	if s, ok := interner.Lookup(NoStringID); !ok || s != "" {
		t.Fatalf("NoStringID must map to the empty string, got %q, %v", s, ok)
	}
	id1 := interner.Intern("hello")
	id2 := interner.Intern("hello")
	if id1 == NoStringID || id1 != id2 {
		t.Fatalf("Intern is not stable: %d, %d", id1, id2)
	}
	if interner.Intern("world") == id1 {
		t.Fatalf("different strings share an id")
	}
	if interner.Len() != 3 {
		t.Fatalf("Len = %d, want 3", interner.Len())
	}
}

func TestInternerNormalizesNames(t *testing.T) {
	interner := NewInterner()
	composed := interner.Intern("Z\u00e4hler")
	decomposed := interner.Intern("Za\u0308hler")
	if composed != decomposed {
		t.Fatalf("NFC and NFD spellings got different ids: %d, %d", composed, decomposed)
	}
	if s := interner.MustLookup(decomposed); s != "Z\u00e4hler" {
		t.Fatalf("stored spelling %q is not NFC", s)
	}
}
