package pagecache

// SlotSize is the fixed size, in bytes, of one Slot's metadata record.
// See the offset table on Slot for the layout.
const SlotSize = 32

// UnboundPageID is the sentinel filePageId value meaning "this slot is
// not loaded". See spec §6: UNBOUND_PAGE_ID = all-ones, 64-bit.
const UnboundPageID uint64 = 0xFFFFFFFFFFFFFFFF

// UnboundSwapperID is the sentinel swapperId value meaning "this slot
// is not bound to any file".
const UnboundSwapperID uint32 = 0

// MaxUsageCounter is the saturating ceiling for a slot's clock usage
// counter.
const MaxUsageCounter uint8 = 4

// DefaultCachePageSize is the default size of one cached data page.
// Not prescribed by the spec; chosen to match common OS page size.
const DefaultCachePageSize = 4096
