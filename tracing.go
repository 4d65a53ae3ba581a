package pagecache

import "sync/atomic"

// PageFaultEvent records telemetry for one call to Fault. All methods
// must be safe to call even when the event is a no-op sink.
type PageFaultEvent interface {
	AddBytesRead(n int)
	SetCachePageID(id int)
}

// EvictionOpportunity begins a scoped EvictionEvent. TryEvict calls
// BeginEviction once it has decided a slot is worth attempting to
// evict, and closes the returned event on every exit path.
type EvictionOpportunity interface {
	BeginEviction() EvictionEvent
}

// EvictionEvent records telemetry for one eviction attempt and is
// always closed by its opener, success or failure.
type EvictionEvent interface {
	SetFilePageID(id uint64)
	SetCachePageID(id int)
	SetSwapper(s Swapper)
	ThrewException(err error)
	FlushEventOpportunity() FlushEventOpportunity
	Close()
}

// FlushEventOpportunity begins a scoped FlushEvent for a dirty page
// being written back during eviction.
type FlushEventOpportunity interface {
	BeginFlush(filePageID uint64, ref PageRef, s Swapper) FlushEvent
}

// FlushEvent records telemetry for one flush and must be finished via
// Done, success or failure.
type FlushEvent interface {
	AddBytesWritten(n int)
	AddPagesFlushed(n int)
	Done(err error)
}

// TracingHooks bundles the event sinks PageTable consumes. All
// implementations must be no-op safe; the zero value of
// NoopTracingHooks is the default when Config.Tracing is nil.
type TracingHooks interface {
	EvictionOpportunity
}

// NoopTracingHooks drops every event. It is the default collaborator
// when a caller does not care about telemetry.
type NoopTracingHooks struct{}

func (NoopTracingHooks) BeginEviction() EvictionEvent { return noopEvictionEvent{} }

type noopEvictionEvent struct{}

func (noopEvictionEvent) SetFilePageID(uint64)                         {}
func (noopEvictionEvent) SetCachePageID(int)                           {}
func (noopEvictionEvent) SetSwapper(Swapper)                           {}
func (noopEvictionEvent) ThrewException(error)                         {}
func (noopEvictionEvent) FlushEventOpportunity() FlushEventOpportunity { return noopFlushOpportunity{} }
func (noopEvictionEvent) Close()                                       {}

type noopFlushOpportunity struct{}

func (noopFlushOpportunity) BeginFlush(uint64, PageRef, Swapper) FlushEvent {
	return noopFlushEvent{}
}

type noopFlushEvent struct{}

func (noopFlushEvent) AddBytesWritten(int) {}
func (noopFlushEvent) AddPagesFlushed(int) {}
func (noopFlushEvent) Done(error)          {}

var noopPageFaultEvent PageFaultEvent = noopPageFault{}

type noopPageFault struct{}

func (noopPageFault) AddBytesRead(int)   {}
func (noopPageFault) SetCachePageID(int) {}

// CountingTracingHooks is a lightweight, atomic-counters
// implementation used by tests and the CLI's status output. It is not
// a metrics system - spec.md's non-goals exclude a full telemetry
// pipeline, but a handful of counters is the ambient observability the
// rest of the pack's repos carry even for "internal" components.
type CountingTracingHooks struct {
	Faults         atomic.Int64
	BytesRead      atomic.Int64
	Evictions      atomic.Int64
	EvictionErrors atomic.Int64
	Flushes        atomic.Int64
	BytesWritten   atomic.Int64
}

func (c *CountingTracingHooks) NewPageFaultEvent() PageFaultEvent {
	c.Faults.Add(1)
	return &countingPageFaultEvent{parent: c}
}

func (c *CountingTracingHooks) BeginEviction() EvictionEvent {
	return &countingEvictionEvent{parent: c}
}

type countingPageFaultEvent struct {
	parent *CountingTracingHooks
}

func (e *countingPageFaultEvent) AddBytesRead(n int) { e.parent.BytesRead.Add(int64(n)) }
func (e *countingPageFaultEvent) SetCachePageID(int) {}

type countingEvictionEvent struct {
	parent *CountingTracingHooks
	failed bool
}

func (e *countingEvictionEvent) SetFilePageID(uint64) {}
func (e *countingEvictionEvent) SetCachePageID(int)   {}
func (e *countingEvictionEvent) SetSwapper(Swapper)   {}
func (e *countingEvictionEvent) ThrewException(error) { e.failed = true }
func (e *countingEvictionEvent) FlushEventOpportunity() FlushEventOpportunity {
	return &countingFlushOpportunity{parent: e.parent}
}
func (e *countingEvictionEvent) Close() {
	e.parent.Evictions.Add(1)
	if e.failed {
		e.parent.EvictionErrors.Add(1)
	}
}

type countingFlushOpportunity struct {
	parent *CountingTracingHooks
}

func (o *countingFlushOpportunity) BeginFlush(uint64, PageRef, Swapper) FlushEvent {
	return &countingFlushEvent{parent: o.parent}
}

type countingFlushEvent struct {
	parent *CountingTracingHooks
}

func (e *countingFlushEvent) AddBytesWritten(n int) { e.parent.BytesWritten.Add(int64(n)) }
func (e *countingFlushEvent) AddPagesFlushed(int)   { e.parent.Flushes.Add(1) }
func (e *countingFlushEvent) Done(error)            {}
