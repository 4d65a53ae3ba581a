package pagecache

// Evictor runs a clock (second-chance) sweep over a PageTable to
// replenish a FreeList: each slot's usage counter is decremented on
// the way past, and a slot whose counter is zero, or reaches zero on
// this pass, is attempted for eviction. Grounded in the second-chance sweep shape
// found in the example pack's clock eviction code, adapted to walk
// PageTable slots instead of a plain page array.
type Evictor struct {
	table   *PageTable
	free    *FreeList
	tracing TracingHooks
	hand    int
}

// NewEvictor creates an Evictor sweeping table, pushing reclaimed
// slots onto free. tracing may be nil.
func NewEvictor(table *PageTable, free *FreeList, tracing TracingHooks) *Evictor {
	if tracing == nil {
		tracing = NoopTracingHooks{}
	}
	return &Evictor{table: table, free: free, tracing: tracing}
}

// Sweep advances the clock hand, attempting to reclaim up to want
// slots, and returns how many were actually pushed onto the free
// list. A slot locked by someone else, still at nonzero usage, or
// unloaded to begin with is skipped without blocking.
func (e *Evictor) Sweep(want int) int {
	if want <= 0 {
		return 0
	}
	reclaimed := 0
	n := e.table.PageCount()
	for i := 0; i < n && reclaimed < want; i++ {
		idx := e.hand
		e.hand = (e.hand + 1) % n
		ref := e.table.Deref(idx)

		if !e.table.IsLoaded(ref) {
			continue
		}
		if e.table.DecrementUsage(ref) {
			ok, err := e.table.TryEvict(ref, e.tracing)
			if err != nil || !ok {
				continue
			}
			if e.free.Push(ref) {
				reclaimed++
			} else {
				// Free list is full: release the exclusive lock we
				// still hold from a successful TryEvict rather than
				// leaking it.
				e.table.UnlockExclusive(ref)
			}
		}
	}
	return reclaimed
}
