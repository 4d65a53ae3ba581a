//go:build windows

package memory

import (
	"golang.org/x/sys/windows"
)

// MmapManager allocates anonymous, private mappings via VirtualAlloc.
// It never frees: per pagecache's contract, regions live for the life
// of the process.
type MmapManager struct {
	pageSize uintptr
}

// NewMmapManager creates a Manager backed by VirtualAlloc.
func NewMmapManager() *MmapManager {
	var info windows.SystemInfo
	windows.GetSystemInfo(&info)
	return &MmapManager{pageSize: uintptr(info.PageSize)}
}

// AllocateAligned implements Manager.
func (m *MmapManager) AllocateAligned(byteSize uintptr) (uintptr, error) {
	if byteSize == 0 {
		return 0, &Error{Op: "allocate", Err: windows.ERROR_INVALID_PARAMETER}
	}
	size := alignUp(byteSize, m.pageSize)
	addr, err := windows.VirtualAlloc(0, size, windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_READWRITE)
	if err != nil {
		return 0, &Error{Op: "VirtualAlloc", Err: err}
	}
	return addr, nil
}
