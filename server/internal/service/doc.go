// Package service maps gateway operations onto the coordination store.
//
// Service exposes Tree, List, Get, Set and Delete. Each call dials one store
// handle, runs the store calls and closes the handle on every exit path.
// Store failures never escape: they are returned as a failed Result carrying
// the store's message. The error return is reserved for faults outside the
// store interaction, such as failing to obtain a handle at all.
//
// BuildTree materializes a subtree by listing children recursively and
// sequentially; there is no depth or fan-out limit.
package service
