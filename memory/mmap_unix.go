//go:build unix

package memory

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// MmapManager allocates anonymous, private mappings via mmap(2). It
// never unmaps: per pagecache's contract, regions live for the life of
// the process.
type MmapManager struct {
	pageSize uintptr
}

// NewMmapManager creates a Manager backed by anonymous mmap.
func NewMmapManager() *MmapManager {
	return &MmapManager{pageSize: uintptr(unix.Getpagesize())}
}

// AllocateAligned implements Manager.
func (m *MmapManager) AllocateAligned(byteSize uintptr) (uintptr, error) {
	if byteSize == 0 {
		return 0, &Error{Op: "allocate", Err: unix.EINVAL}
	}
	size := alignUp(byteSize, m.pageSize)
	data, err := unix.Mmap(-1, 0, int(size),
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return 0, &Error{Op: "mmap", Err: err}
	}
	return uintptr(unsafe.Pointer(&data[0])), nil
}
