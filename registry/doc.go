// Package registry implements the process-wide instance registry.
//
// The Registry caches fully initialized singletons, tracks which names are
// being created, keeps early references that break construction cycles and
// records dependency edges so instances can be destroyed dependents first.
//
// Creation is at most once per name for the lifetime of a Registry. A second
// caller asking for a name that is being created waits for the first one,
// unless waiting would close a cycle, in which case it receives the early
// reference registered for that name or a CIRCULAR_DEPENDENCY error. No lock
// is held while factories or early-reference callbacks run.
//
// Every logical resolution carries a Chain in its context.Context. The chain
// identifies the resolution and lists the names it is currently building.
package registry
