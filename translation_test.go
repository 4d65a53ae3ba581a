package pagecache

import "testing"

func TestTranslationTable_BindLookupUnbind(t *testing.T) {
	tt := NewTranslationTable()

	if _, ok := tt.Lookup(7, 42); ok {
		t.Fatal("expected no binding before Bind")
	}

	tt.Bind(7, 42, PageRef(0x1000))
	ref, ok := tt.Lookup(7, 42)
	if !ok || ref != PageRef(0x1000) {
		t.Fatalf("expected bound ref 0x1000, got %v ok=%v", ref, ok)
	}

	tt.Unbind(7, 42, PageRef(0x1000))
	if _, ok := tt.Lookup(7, 42); ok {
		t.Fatal("expected no binding after Unbind")
	}
}

func TestTranslationTable_UnbindIgnoresStaleRef(t *testing.T) {
	tt := NewTranslationTable()

	tt.Bind(7, 42, PageRef(0x1000))
	tt.Bind(7, 42, PageRef(0x2000)) // page got evicted and refaulted elsewhere

	tt.Unbind(7, 42, PageRef(0x1000)) // late unbind for the old binding

	ref, ok := tt.Lookup(7, 42)
	if !ok || ref != PageRef(0x2000) {
		t.Fatalf("expected the newer binding 0x2000 to survive, got %v ok=%v", ref, ok)
	}
}
