// Package scope defines the storage policies for managed instances.
//
// A Scope decides how many instances exist per managed name and how long they
// live. The process-wide scope is implemented by the container's instance
// registry; this package provides the Scope contract, the transient
// Prototype scope and two context-bound scopes:
//
//   - RequestScope stores instances for the lifetime of one request opened
//     with BeginRequest. Ending the request runs its destruction callbacks.
//   - SessionScope stores instances per session id carried in the context,
//     backed by a SessionManager that tears sessions down on invalidation.
//
// Custom scopes can keep their instances in a Store. Destroy empties a Store
// for the next container generation; Close retires it for good.
//
// Every Scope receives the caller's context because Go has no ambient
// per-request storage; a context without the scope's marker yields
// SCOPE_NOT_ACTIVE.
package scope
