package pagecache

import (
	"os"
	"sync"

	"github.com/ncw/directio"
)

// FileSwapper is the reference, production Swapper: one backing file,
// opened with O_DIRECT via directio.OpenFile so reads and writes
// bypass the OS page cache entirely - pagecache is the page cache, a
// second layer of caching underneath it would only waste memory and
// add a coherence hazard between the two.
//
// Buffers passed to Read/Write must already be directio.AlignSize
// aligned and a multiple of directio.BlockSize; PageTable's data
// buffers come from a MemoryManager allocation rounded up to the
// system page size, which satisfies both on every platform directio
// supports.
type FileSwapper struct {
	pageSize int64

	mu sync.Mutex
	f  *os.File
}

// NewFileSwapper opens (creating if necessary) path for direct,
// unbuffered I/O of fixed pageSize-byte pages.
func NewFileSwapper(path string, pageSize int64) (*FileSwapper, error) {
	f, err := directio.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, WrapError(ErrIoFailure, "opening backing file for direct I/O", err)
	}
	return &FileSwapper{pageSize: pageSize, f: f}, nil
}

// Read implements Swapper.
func (s *FileSwapper) Read(filePageID uint64, buf []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.f.ReadAt(buf, int64(filePageID)*s.pageSize)
	if err != nil {
		return n, WrapError(ErrIoFailure, "direct read", err)
	}
	return n, nil
}

// Write implements Swapper.
func (s *FileSwapper) Write(filePageID uint64, buf []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.f.WriteAt(buf, int64(filePageID)*s.pageSize)
	if err != nil {
		return n, WrapError(ErrIoFailure, "direct write", err)
	}
	return n, nil
}

// Evicted implements Swapper. FileSwapper keeps no cache of its own.
func (s *FileSwapper) Evicted(uint64) {}

// Close closes the backing file.
func (s *FileSwapper) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.f.Close()
}

var _ Swapper = (*FileSwapper)(nil)
