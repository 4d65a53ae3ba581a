// Command pagecachecli exercises a pagecache.PageTable against a
// single backing file from the command line: it faults a page in,
// reports its state, optionally dirties and evicts it. It exists
// mainly as a manual smoke test for the library, not a production
// tool.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/Giulio2002/pagecache"
	"github.com/Giulio2002/pagecache/memory"
)

func main() {
	var (
		path      = flag.String("file", "", "backing file to page through")
		pageCount = flag.Int("pages", 256, "number of slots in the cache")
		pageSize  = flag.Int("pagesize", pagecache.DefaultCachePageSize, "bytes per page")
		faultID   = flag.Uint64("fault", 0, "file page id to fault in and report on")
		dirty     = flag.Bool("dirty", false, "take a write lock on the faulted page before evicting")
		evict     = flag.Bool("evict", false, "evict the page after faulting it")
	)
	flag.Parse()

	if *path == "" {
		fmt.Fprintln(os.Stderr, "usage: pagecachecli -file <path> [-fault N] [-dirty] [-evict]")
		os.Exit(2)
	}

	swapper, err := pagecache.NewFileSwapper(*path, int64(*pageSize))
	if err != nil {
		log.Fatalf("opening %s: %v", *path, err)
	}
	defer swapper.Close()

	swappers := pagecache.NewSwapperSet()
	const swapperID = 1
	swappers.Register(swapperID, swapper)

	tracing := &pagecache.CountingTracingHooks{}
	table, err := pagecache.NewPageTable(pagecache.Config{
		PageCount:     *pageCount,
		CachePageSize: uint32(*pageSize),
		Memory:        memory.NewMmapManager(),
		Swappers:      swappers,
		Tracing:       tracing,
	})
	if err != nil {
		log.Fatalf("creating page table: %v", err)
	}

	ref := table.Deref(0)
	// Every slot is created exclusively locked; release that initial
	// lock before taking it the way a caller of a free slot would.
	table.UnlockExclusive(ref)
	if !table.TryExclusiveLock(ref) {
		log.Fatal("could not acquire exclusive lock on slot 0")
	}
	if err := table.InitBuffer(ref); err != nil {
		log.Fatalf("allocating page buffer: %v", err)
	}
	if err := table.Fault(ref, swapper, swapperID, *faultID, tracing.NewPageFaultEvent()); err != nil {
		log.Fatalf("faulting page %d: %v", *faultID, err)
	}

	if *dirty {
		table.UnlockExclusiveAndTakeWriteLock(ref)
		table.UnlockWrite(ref)
	} else {
		table.UnlockExclusive(ref)
	}

	fmt.Printf("faulted file page %d into slot 0\n", *faultID)
	fmt.Printf("bound: %v  modified: %v  faults: %d  bytesRead: %d\n",
		table.IsBoundTo(ref, swapperID, *faultID),
		table.IsModified(ref),
		tracing.Faults.Load(),
		tracing.BytesRead.Load())

	if *evict {
		ok, err := table.TryEvict(ref, tracing)
		if err != nil {
			log.Fatalf("evicting: %v", err)
		}
		fmt.Printf("evicted: %v  loaded: %v  flushes: %d  bytesWritten: %d\n",
			ok, table.IsLoaded(ref), tracing.Flushes.Load(), tracing.BytesWritten.Load())
		if ok {
			table.UnlockExclusive(ref)
		}
	}
}
