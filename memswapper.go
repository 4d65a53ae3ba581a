package pagecache

import (
	"sync"

	"github.com/dsnet/golib/memfile"
)

// MemSwapper is an in-memory Swapper backed by memfile.File, for tests
// and benchmarks that want Fault/evict round-trips without touching a
// real filesystem.
type MemSwapper struct {
	pageSize int64

	mu   sync.Mutex
	file *memfile.File
}

// NewMemSwapper creates an empty in-memory Swapper of fixed
// pageSize-byte pages.
func NewMemSwapper(pageSize int64) *MemSwapper {
	return &MemSwapper{pageSize: pageSize, file: memfile.New(nil)}
}

// Read implements Swapper. Reading past the end of what has been
// written yields a zero-filled page rather than an error, matching
// the semantics of a sparse backing file.
func (s *MemSwapper) Read(filePageID uint64, buf []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, _ := s.file.ReadAt(buf, int64(filePageID)*s.pageSize)
	if n < len(buf) {
		for i := n; i < len(buf); i++ {
			buf[i] = 0
		}
		n = len(buf)
	}
	return n, nil
}

// Write implements Swapper.
func (s *MemSwapper) Write(filePageID uint64, buf []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.file.WriteAt(buf, int64(filePageID)*s.pageSize)
	if err != nil {
		return n, WrapError(ErrIoFailure, "in-memory write", err)
	}
	return n, nil
}

// Evicted implements Swapper. MemSwapper keeps no cache of its own.
func (s *MemSwapper) Evicted(uint64) {}

var _ Swapper = (*MemSwapper)(nil)
