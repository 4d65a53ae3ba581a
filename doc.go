// Package pagecache implements the page metadata table at the heart of
// a database page cache: a bounded pool of fixed-size in-memory pages
// multiplexed across many backing files, addressed through a lock-free
// slot array and a custom sequence lock.
//
// The cache does not itself parse records, run queries, or provide
// durability guarantees - it owns exactly two things: the packed,
// off-heap slot metadata (PageTable) and the concurrency primitive
// guarding each slot (PageLock). File I/O, translation of (file,
// filePageId) to a resident page, background eviction, and the cursor
// API that callers use are built on top of this package.
//
// Basic usage:
//
//	swappers := pagecache.NewSwapperSet()
//	swappers.Register(7, mySwapper)
//
//	mm := memory.NewMmapManager()
//	table, err := pagecache.NewPageTable(pagecache.Config{
//	    PageCount:     1024,
//	    CachePageSize: 4096,
//	    Memory:        mm,
//	    Swappers:      swappers,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Every slot is created exclusively locked, so the caller already
//	// holds the lock that InitBuffer and Fault require.
//	ref := table.Deref(0)
//	table.InitBuffer(ref)
//	if err := table.Fault(ref, mySwapper, 7, 42, nil); err != nil {
//	    log.Fatal(err)
//	}
package pagecache
