package pagecache

import (
	"sync/atomic"
	"unsafe"
)

// MemoryManager allocates aligned off-heap memory regions. See
// memory.Manager for the concrete implementations this repo ships
// (mmap-backed for production, heap-backed for tests); PageTable
// depends only on this interface to keep the root package free of a
// platform-specific build-tag split.
type MemoryManager interface {
	AllocateAligned(byteSize uintptr) (uintptr, error)
}

// Config configures a PageTable.
type Config struct {
	// PageCount is the number of slots in the table.
	PageCount int

	// CachePageSize is the size, in bytes, of each cached data page.
	CachePageSize uint32

	// Memory allocates the off-heap metadata region and per-slot data
	// buffers.
	Memory MemoryManager

	// Swappers resolves a slot's swapperId to the Swapper that can
	// read/write its file.
	Swappers SwapperSet

	// Tracing receives fault/evict/flush telemetry. Defaults to
	// NoopTracingHooks when nil.
	Tracing TracingHooks

	// VictimPageAddress is a shared scratch buffer handed to cursors
	// whose fault failed. PageTable does not touch it; it only holds
	// it for callers, per spec §4.2.
	VictimPageAddress uintptr
}

// PageTable is a contiguous array of per-page metadata slots,
// addressable by index, with lock-word-guarded fault/evict
// transitions. See spec.md §4.2.
type PageTable struct {
	base              unsafe.Pointer
	pageCount         int
	cachePageSize     uint32
	memory            MemoryManager
	swappers          SwapperSet
	tracing           TracingHooks
	victimPageAddress uintptr
}

// NewPageTable allocates pageCount*SlotSize aligned bytes from
// cfg.Memory and initializes every slot per spec §3 Lifecycle:
// lockWord = exclusiveHeld, addressPtr = 0, filePageId = UNBOUND,
// swapperId = 0, usageCounter = 0, followed by a full memory fence.
func NewPageTable(cfg Config) (*PageTable, error) {
	if cfg.PageCount <= 0 {
		return nil, NewError(ErrInvalidConfig, "PageCount must be positive")
	}
	if cfg.CachePageSize == 0 {
		return nil, NewError(ErrInvalidConfig, "CachePageSize must be positive")
	}
	if cfg.Memory == nil {
		return nil, NewError(ErrInvalidConfig, "Memory must not be nil")
	}
	if cfg.Swappers == nil {
		cfg.Swappers = NewSwapperSet()
	}
	if cfg.Tracing == nil {
		cfg.Tracing = NoopTracingHooks{}
	}

	addr, err := cfg.Memory.AllocateAligned(uintptr(cfg.PageCount) * SlotSize)
	if err != nil {
		return nil, WrapError(ErrInvalidConfig, "allocating the slot metadata region", err)
	}

	t := &PageTable{
		base:              unsafe.Pointer(addr),
		pageCount:         cfg.PageCount,
		cachePageSize:     cfg.CachePageSize,
		memory:            cfg.Memory,
		swappers:          cfg.Swappers,
		tracing:           cfg.Tracing,
		victimPageAddress: cfg.VictimPageAddress,
	}

	for i := 0; i < t.pageCount; i++ {
		s := t.slotByIndex(i)
		atomic.StoreUint64(&s.LockWord, exclusiveHeldWord)
		atomic.StoreUint64(&s.AddressPtr, 0)
		atomic.StoreUint64(&s.FilePageID, UnboundPageID)
		atomic.StoreUint32(&s.SwapperID, UnboundSwapperID)
		atomic.StoreUint32(&s.UsageAndPad, 0)
	}
	// Full fence so the constructor hands out the table with
	// visibility of the zeroed slots to any goroutine, per spec §5.
	atomic.StoreUint64(&fenceWord, atomic.LoadUint64(&fenceWord)+1)

	return t, nil
}

// fenceWord backs the full-fence-on-construction requirement: a
// package-level atomic RMW is a full memory barrier on every
// architecture Go supports, independent of any one slot.
var fenceWord uint64

// PageCount returns the number of slots in the table.
func (t *PageTable) PageCount() int { return t.pageCount }

// CachePageSize returns the configured size of each data page.
func (t *PageTable) CachePageSize() uint32 { return t.cachePageSize }

// VictimPageAddress returns the shared scratch buffer address passed
// at construction time.
func (t *PageTable) VictimPageAddress() uintptr { return t.victimPageAddress }

func (t *PageTable) slotByIndex(idx int) *rawSlot {
	return (*rawSlot)(unsafe.Pointer(uintptr(t.base) + uintptr(idx)*SlotSize))
}

func (t *PageTable) slotAt(ref PageRef) *rawSlot {
	return (*rawSlot)(unsafe.Pointer(uintptr(ref)))
}

// Deref translates a slot index to its PageRef: ref = base + idx*32.
func (t *PageTable) Deref(idx int) PageRef {
	return PageRef(uintptr(t.base) + uintptr(idx)*SlotSize)
}

// ToID translates a PageRef back to its slot index: idx = (ref -
// base) >> 5.
func (t *PageTable) ToID(ref PageRef) int {
	return int((uintptr(ref) - uintptr(t.base)) / SlotSize)
}

func (t *PageTable) lockFor(ref PageRef) PageLock {
	return newPageLock(&t.slotAt(ref).LockWord)
}

// --- PageLock operations, forwarded with the slot's lock-word address ---

func (t *PageTable) TryOptimisticReadLock(ref PageRef) uint64 {
	return t.lockFor(ref).TryOptimisticReadLock()
}

func (t *PageTable) ValidateReadLock(ref PageRef, stamp uint64) bool {
	return t.lockFor(ref).ValidateReadLock(stamp)
}

func (t *PageTable) IsModified(ref PageRef) bool {
	return t.lockFor(ref).IsModified()
}

func (t *PageTable) IsExclusivelyLocked(ref PageRef) bool {
	return t.lockFor(ref).IsExclusivelyLocked()
}

func (t *PageTable) TryWriteLock(ref PageRef) bool {
	return t.lockFor(ref).TryWriteLock()
}

func (t *PageTable) UnlockWrite(ref PageRef) {
	t.lockFor(ref).UnlockWrite()
}

func (t *PageTable) UnlockWriteAndTryTakeFlushLock(ref PageRef) uint64 {
	return t.lockFor(ref).UnlockWriteAndTryTakeFlushLock()
}

func (t *PageTable) TryExclusiveLock(ref PageRef) bool {
	return t.lockFor(ref).TryExclusiveLock()
}

func (t *PageTable) UnlockExclusive(ref PageRef) uint64 {
	return t.lockFor(ref).UnlockExclusive()
}

func (t *PageTable) UnlockExclusiveAndTakeWriteLock(ref PageRef) {
	t.lockFor(ref).UnlockExclusiveAndTakeWriteLock()
}

func (t *PageTable) TryFlushLock(ref PageRef) uint64 {
	return t.lockFor(ref).TryFlushLock()
}

func (t *PageTable) UnlockFlush(ref PageRef, stamp uint64, success bool) {
	t.lockFor(ref).UnlockFlush(stamp, success)
}

func (t *PageTable) ExplicitlyMarkPageUnmodifiedUnderExclusiveLock(ref PageRef) {
	t.lockFor(ref).ExplicitlyMarkPageUnmodifiedUnderExclusiveLock()
}

// --- Slot field accessors ---

// GetAddress returns the address of ref's data buffer, or 0 if
// InitBuffer has not yet been called.
func (t *PageTable) GetAddress(ref PageRef) uintptr {
	return uintptr(atomic.LoadUint64(&t.slotAt(ref).AddressPtr))
}

// GetFilePageID returns ref's logical page number, or UnboundPageID.
func (t *PageTable) GetFilePageID(ref PageRef) uint64 {
	return atomic.LoadUint64(&t.slotAt(ref).FilePageID)
}

// GetSwapperID returns ref's bound swapper id, or UnboundSwapperID.
func (t *PageTable) GetSwapperID(ref PageRef) uint32 {
	return atomic.LoadUint32(&t.slotAt(ref).SwapperID)
}

func (t *PageTable) setFilePageID(ref PageRef, id uint64) {
	atomic.StoreUint64(&t.slotAt(ref).FilePageID, id)
}

func (t *PageTable) setSwapperID(ref PageRef, id uint32) {
	atomic.StoreUint32(&t.slotAt(ref).SwapperID, id)
}

// GetUsageCounter does a volatile read of ref's clock usage counter.
func (t *PageTable) GetUsageCounter(ref PageRef) uint8 {
	return uint8(atomic.LoadUint32(&t.slotAt(ref).UsageAndPad))
}

// SetUsageCounter does a volatile write of ref's clock usage counter.
func (t *PageTable) SetUsageCounter(ref PageRef, v uint8) {
	atomic.StoreUint32(&t.slotAt(ref).UsageAndPad, uint32(v))
}

// IncrementUsage bumps ref's usage counter by one, saturating at
// MaxUsageCounter. The read-compute-write is intentionally not atomic
// as a whole; lost updates are acceptable per spec §4.2.
func (t *PageTable) IncrementUsage(ref PageRef) {
	cur := t.GetUsageCounter(ref)
	if cur < MaxUsageCounter {
		t.SetUsageCounter(ref, cur+1)
	}
}

// DecrementUsage decrements ref's usage counter by one, floored at 0,
// and reports whether the value seen/written is 0.
func (t *PageTable) DecrementUsage(ref PageRef) bool {
	cur := t.GetUsageCounter(ref)
	if cur == 0 {
		return true
	}
	next := cur - 1
	t.SetUsageCounter(ref, next)
	return next == 0
}

// InitBuffer idempotently allocates a cachePageSize data buffer for
// ref if one has not already been assigned. The caller must hold the
// exclusive lock.
func (t *PageTable) InitBuffer(ref PageRef) error {
	s := t.slotAt(ref)
	if atomic.LoadUint64(&s.AddressPtr) != 0 {
		return nil
	}
	addr, err := t.memory.AllocateAligned(uintptr(t.cachePageSize))
	if err != nil {
		return WrapError(ErrInvalidConfig, "allocating a page buffer", err)
	}
	atomic.CompareAndSwapUint64(&s.AddressPtr, 0, uint64(addr))
	return nil
}

// IsLoaded reports whether ref has a file page loaded, bound or not.
func (t *PageTable) IsLoaded(ref PageRef) bool {
	return t.GetFilePageID(ref) != UnboundPageID
}

// IsBoundTo reports whether ref is bound to exactly (swapperID,
// filePageID).
func (t *PageTable) IsBoundTo(ref PageRef, swapperID uint32, filePageID uint64) bool {
	return t.GetSwapperID(ref) == swapperID && t.GetFilePageID(ref) == filePageID
}

func (t *PageTable) dataBuffer(ref PageRef) []byte {
	addr := t.GetAddress(ref)
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), t.cachePageSize)
}

// Fault binds an unbound slot to file data. The caller must hold the
// exclusive lock on ref. Order is load-bearing (spec §4.2/§5): the
// slot is written loaded-but-unbound before I/O, and bound only after
// a successful read; a failing read leaves it loaded-but-unbound so
// eviction can still reclaim it.
func (t *PageTable) Fault(ref PageRef, swapper Swapper, swapperID uint32, filePageID uint64, event PageFaultEvent) error {
	if swapper == nil {
		return NewError(ErrNullSwapper, "Fault called with a nil swapper")
	}
	if event == nil {
		event = noopPageFaultEvent
	}
	curSwapperID := t.GetSwapperID(ref)
	curFilePageID := t.GetFilePageID(ref)
	if filePageID == UnboundPageID || curSwapperID != UnboundSwapperID || curFilePageID != UnboundPageID {
		return newIllegalFaultState(ref, swapperID, filePageID, curSwapperID, curFilePageID)
	}

	// Step 1: write filePageId. The slot is now loaded but not bound;
	// the atomic store below is a release, ordering this write before
	// the I/O that follows.
	t.setFilePageID(ref, filePageID)

	n, err := swapper.Read(filePageID, t.dataBuffer(ref))
	event.AddBytesRead(n)
	event.SetCachePageID(t.ToID(ref))
	if err != nil {
		return WrapError(ErrIoFailure, "swapper read failed during fault", err)
	}

	// Step 4: write swapperId. The slot is now bound; translation
	// table lookups will match it.
	t.setSwapperID(ref, swapperID)
	return nil
}

// TryEvict attempts to reclaim ref. It acquires the exclusive lock;
// on success, evict() is delegated to and the caller retains
// exclusive ownership of the now-unbound slot (it is not released on
// the true path, per spec §4.2 - the intent is to hand the caller a
// reclaimed slot ready to push onto a free list).
func (t *PageTable) TryEvict(ref PageRef, opportunity EvictionOpportunity) (bool, error) {
	if !t.TryExclusiveLock(ref) {
		return false, nil
	}
	if !t.IsLoaded(ref) {
		t.UnlockExclusive(ref)
		return false, nil
	}

	var event EvictionEvent = noopEvictionEvent{}
	if opportunity != nil {
		event = opportunity.BeginEviction()
	}
	defer event.Close()

	if err := t.evict(ref, event); err != nil {
		return false, err
	}
	return true, nil
}

// evict flushes ref if dirty and clears its binding. It does not
// release the exclusive lock on success; on I/O failure it releases
// the lock itself and returns the error, per spec §4.2.
func (t *PageTable) evict(ref PageRef, event EvictionEvent) error {
	filePageID := t.GetFilePageID(ref)
	swapperID := t.GetSwapperID(ref)
	event.SetFilePageID(filePageID)
	event.SetCachePageID(t.ToID(ref))

	if swapperID != UnboundSwapperID {
		alloc, found := t.swappers.GetAllocation(swapperID)
		if found {
			event.SetSwapper(alloc.Swapper)
		}

		if t.IsModified(ref) {
			var flush FlushEvent = noopFlushEvent{}
			if fo := event.FlushEventOpportunity(); fo != nil {
				var s Swapper
				if found {
					s = alloc.Swapper
				}
				flush = fo.BeginFlush(filePageID, ref, s)
			}

			n, err := alloc.Swapper.Write(filePageID, t.dataBuffer(ref))
			if err != nil {
				flush.Done(err)
				t.UnlockExclusive(ref)
				event.ThrewException(err)
				return WrapError(ErrIoFailure, "swapper write failed during evict", err)
			}

			t.ExplicitlyMarkPageUnmodifiedUnderExclusiveLock(ref)
			flush.AddBytesWritten(n)
			flush.AddPagesFlushed(1)
			flush.Done(nil)
		}

		if found {
			alloc.Swapper.Evicted(filePageID)
		}
	}

	t.setFilePageID(ref, UnboundPageID)
	t.setSwapperID(ref, UnboundSwapperID)
	return nil
}
