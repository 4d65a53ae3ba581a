package pagecache

import (
	"sync"
	"testing"
)

func TestPageLock_UnlockWriteSetsModified(t *testing.T) {
	var word uint64
	l := newPageLock(&word)

	for i := 0; i < 5; i++ {
		if !l.TryWriteLock() {
			t.Fatalf("round %d: TryWriteLock should succeed on an idle lock", i)
		}
		// Modified is clear before the first UnlockWrite and stays set
		// afterwards until an explicit clear.
		if got := l.IsModified(); got != (i > 0) {
			t.Fatalf("round %d: modified before UnlockWrite = %v, want %v", i, got, i > 0)
		}
		l.UnlockWrite()
		if !l.IsModified() {
			t.Fatalf("round %d: modified must be set after UnlockWrite", i)
		}
	}

	l.ExplicitlyMarkPageUnmodifiedUnderExclusiveLock()
	if l.IsModified() {
		t.Fatal("modified must be false after an explicit clear")
	}
}

func TestPageLock_MutualExclusion(t *testing.T) {
	var word uint64
	l := newPageLock(&word)

	const n = 64
	var wg sync.WaitGroup
	var successes int64
	var mu sync.Mutex

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.TryExclusiveLock() {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("expected exactly one successful TryExclusiveLock, got %d", successes)
	}
	if l.TryWriteLock() {
		t.Fatal("TryWriteLock must fail while exclusive is held")
	}
}

func TestPageLock_WriteLockExcludesExclusive(t *testing.T) {
	var word uint64
	l := newPageLock(&word)

	if !l.TryWriteLock() {
		t.Fatal("TryWriteLock should succeed on an idle lock")
	}
	if l.TryExclusiveLock() {
		t.Fatal("TryExclusiveLock must fail while a writer holds the lock")
	}
	l.UnlockWrite()
	if !l.TryExclusiveLock() {
		t.Fatal("TryExclusiveLock should succeed once the writer released")
	}
}

func TestPageLock_FlushPreservation(t *testing.T) {
	var word uint64
	l := newPageLock(&word)

	if !l.TryWriteLock() {
		t.Fatal("initial write lock should succeed")
	}
	l.UnlockWrite()

	stamp := l.TryFlushLock()
	if stamp == 0 {
		t.Fatal("TryFlushLock should succeed on an idle lock")
	}

	if !l.TryWriteLock() {
		t.Fatal("a write lock during a flush should still be permitted")
	}
	l.UnlockWrite()

	l.UnlockFlush(stamp, true)

	if !l.IsModified() {
		t.Fatal("a writer that ran during the flush must leave the page modified")
	}
}

func TestPageLock_FlushClearsModifiedWhenUncontended(t *testing.T) {
	var word uint64
	l := newPageLock(&word)

	l.TryWriteLock()
	l.UnlockWrite()
	if !l.IsModified() {
		t.Fatal("expected modified after write")
	}

	stamp := l.TryFlushLock()
	l.UnlockFlush(stamp, true)
	if l.IsModified() {
		t.Fatal("modified should be cleared when no writer raced the flush")
	}
}

func TestPageLock_OptimisticReadValidation(t *testing.T) {
	var word uint64
	l := newPageLock(&word)

	stamp := l.TryOptimisticReadLock()
	if !l.ValidateReadLock(stamp) {
		t.Fatal("stamp should validate with no intervening writer")
	}

	l.TryWriteLock()
	l.UnlockWrite()

	if l.ValidateReadLock(stamp) {
		t.Fatal("stamp must not validate once a writer has released")
	}

	newStamp := l.TryOptimisticReadLock()
	if !l.ValidateReadLock(newStamp) {
		t.Fatal("a freshly captured stamp should validate")
	}
}

func TestPageLock_OptimisticReadFailsUnderExclusive(t *testing.T) {
	var word uint64
	l := newPageLock(&word)

	stamp := l.TryOptimisticReadLock()
	if !l.TryExclusiveLock() {
		t.Fatal("TryExclusiveLock should succeed on an idle lock")
	}
	if l.ValidateReadLock(stamp) {
		t.Fatal("ValidateReadLock must fail while exclusive is held")
	}

	newStamp := l.TryOptimisticReadLock()
	if l.ValidateReadLock(newStamp) {
		t.Fatal("a stamp captured while exclusive is held must never validate")
	}
}

func TestPageLock_ExclusiveDowngradeToWrite(t *testing.T) {
	var word uint64
	l := newPageLock(&word)

	if !l.TryExclusiveLock() {
		t.Fatal("TryExclusiveLock should succeed")
	}
	l.UnlockExclusiveAndTakeWriteLock()

	if l.IsExclusivelyLocked() {
		t.Fatal("exclusive bit must be clear after downgrade")
	}
	if l.TryExclusiveLock() {
		t.Fatal("TryExclusiveLock must fail while the downgraded writer lock is held")
	}
	l.UnlockWrite()
}
