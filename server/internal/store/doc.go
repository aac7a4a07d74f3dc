// Package store is the gateway's view of the coordination store.
//
// Client is the capability set the gateway needs (Get, Set, Children,
// DeleteAll) and Dialer hands out one Client per operation. Two backends
// implement it:
//   - ZooKeeper: a go-zookeeper session per handle, with connection timeout,
//     session timeout and a fixed-interval retry on connection loss
//   - Memory: an in-process node tree with ZooKeeper path rules, fault
//     injection and artificial latency; used for tests and local development
//
// Failures are reported as *Error wrapping one of the package sentinels
// (ErrNoNode, ErrNodeExists, ...) so callers can use errors.Is.
package store
