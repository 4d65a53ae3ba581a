package pagecache

import "unsafe"

// rawSlot is the bit-exact, 32-byte, off-heap metadata record for one
// cache page. It is never heap-allocated: PageTable carves instances
// out of a single region returned by a MemoryManager and addresses
// them by unsafe pointer arithmetic, mirroring the teacher's page.go/
// meta.go byte-overlay style.
//
// Memory layout (native endianness, bit-exact per spec §3):
//
//	Offset  Size  Field
//	0       8     LockWord     packed sequence lock, see PageLock
//	8       8     AddressPtr   address of the associated page buffer, or 0
//	16      8     FilePageID   logical page number, or UnboundPageID
//	24      4     SwapperID    non-zero when bound, else UnboundSwapperID
//	28      4     UsageAndPad  low byte is the clock usage counter (0-4);
//	                           the remaining 3 bytes are padding, always
//	                           zero. Accessed as a single uint32 so the
//	                           counter's load/store is a genuine atomic
//	                           operation under the Go memory model - the
//	                           spec's "atomic single-byte" requirement
//	                           has no direct equivalent in sync/atomic.
type rawSlot struct {
	LockWord    uint64
	AddressPtr  uint64
	FilePageID  uint64
	SwapperID   uint32
	UsageAndPad uint32
}

func init() {
	if unsafe.Sizeof(rawSlot{}) != SlotSize {
		panic("pagecache: rawSlot size does not match SlotSize")
	}
}

// PageRef is an opaque handle to a slot: semantically the pair (table
// base, index), with ref = base + idx*SlotSize. It is valid only for
// the PageTable that minted it via Deref.
type PageRef uintptr
