package pagecache

import "sync"

// translationKey identifies a resident page by its binding.
type translationKey struct {
	swapperID  uint32
	filePageID uint64
}

// TranslationTable maps a bound (swapperId, filePageId) pair to the
// PageRef currently holding it. It is the index cursors consult before
// faulting: a hit means the page is already resident and only needs a
// read/write lock, not a Fault call.
//
// Built on sync.Map rather than a mutex-guarded map, matching the
// teacher's own choice for its hot, read-dominated lookup paths (see
// env.go's use of sync.Map for open database handles).
type TranslationTable struct {
	m sync.Map // translationKey -> PageRef
}

// NewTranslationTable creates an empty TranslationTable.
func NewTranslationTable() *TranslationTable {
	return &TranslationTable{}
}

// Lookup returns the PageRef bound to (swapperID, filePageID), if any.
func (t *TranslationTable) Lookup(swapperID uint32, filePageID uint64) (PageRef, bool) {
	v, ok := t.m.Load(translationKey{swapperID, filePageID})
	if !ok {
		return 0, false
	}
	return v.(PageRef), true
}

// Bind records that ref now holds (swapperID, filePageID). The caller
// must hold ref's exclusive lock; Bind itself does no locking, it only
// publishes the mapping the lock protects.
func (t *TranslationTable) Bind(swapperID uint32, filePageID uint64, ref PageRef) {
	t.m.Store(translationKey{swapperID, filePageID}, ref)
}

// Unbind removes the mapping for (swapperID, filePageID) if it still
// points at ref. Using a compare-and-delete means a page that got
// evicted and immediately refaulted elsewhere does not have its new
// binding erased by a late Unbind for the old one.
func (t *TranslationTable) Unbind(swapperID uint32, filePageID uint64, ref PageRef) {
	key := translationKey{swapperID, filePageID}
	if v, ok := t.m.Load(key); ok && v.(PageRef) == ref {
		t.m.CompareAndDelete(key, v)
	}
}
