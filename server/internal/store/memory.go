package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zkrest/zkrest/server/internal/nodepath"
)

// FaultFunc is consulted before every call on a Memory handle. A non-nil
// return value fails the call with that error.
type FaultFunc func(op Op, path string) error

// MemoryOption configures a Memory store.
type MemoryOption func(*Memory)

// WithFault installs a fault hook on every handle.
func WithFault(fn FaultFunc) MemoryOption {
	return func(m *Memory) { m.fault = fn }
}

// WithLatency delays every call by d.
func WithLatency(d time.Duration) MemoryOption {
	return func(m *Memory) { m.latency = d }
}

// WithDialError makes Dial fail with err.
func WithDialError(err error) MemoryOption {
	return func(m *Memory) { m.dialErr = err }
}

type znode struct {
	data     []byte
	children map[string]struct{}
}

// Memory is a thread-safe in-process node tree that follows ZooKeeper's
// path rules. It backs the "memory" store backend and is the store used in
// tests.
type Memory struct {
	mu    sync.RWMutex
	nodes map[string]*znode

	fault   FaultFunc
	latency time.Duration
	dialErr error

	open   atomic.Int64
	writes atomic.Int64
}

// NewMemory creates a Memory store holding only the root node.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		nodes: map[string]*znode{
			nodepath.Root: {children: make(map[string]struct{})},
		},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Dial returns a new handle on the store.
func (m *Memory) Dial(_ context.Context) (Client, error) {
	if m.dialErr != nil {
		return nil, m.dialErr
	}
	m.open.Add(1)
	return &memoryConn{m: m}, nil
}

// Open returns the number of handles that have been dialled and not closed.
func (m *Memory) Open() int { return int(m.open.Load()) }

// Writes returns the number of successful Set calls.
func (m *Memory) Writes() int { return int(m.writes.Load()) }

// Len returns the number of nodes, including the root.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.nodes)
}

func (m *Memory) get(p string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.nodes[p]
	if !ok {
		return nil, ErrNoNode
	}
	return append([]byte{}, n.data...), nil
}

func (m *Memory) set(p string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range nodepath.Ancestors(p) {
		m.ensure(a)
	}
	m.ensure(p).data = append([]byte{}, data...)
	m.writes.Add(1)
	return nil
}

// ensure returns the node at p, creating it under its parent if needed.
// The parent must exist. Callers hold mu.
func (m *Memory) ensure(p string) *znode {
	if n, ok := m.nodes[p]; ok {
		return n
	}
	n := &znode{children: make(map[string]struct{})}
	m.nodes[p] = n
	m.nodes[nodepath.Parent(p)].children[nodepath.Base(p)] = struct{}{}
	return n
}

func (m *Memory) children(p string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.nodes[p]
	if !ok {
		return nil, ErrNoNode
	}
	out := make([]string, 0, len(n.children))
	for name := range n.children {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

func (m *Memory) deleteAll(p string) error {
	if p == nodepath.Root {
		return ErrBadArguments
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.nodes[p]; !ok {
		return ErrNoNode
	}
	prefix := p + "/"
	for k := range m.nodes {
		if k == p || strings.HasPrefix(k, prefix) {
			delete(m.nodes, k)
		}
	}
	delete(m.nodes[nodepath.Parent(p)].children, nodepath.Base(p))
	return nil
}

// memoryConn is one handle on a Memory store.
type memoryConn struct {
	m      *Memory
	closed bool
}

func (c *memoryConn) call(op Op, p string, fn func() error) error {
	if c.closed {
		return &Error{Op: op, Path: p, Err: fmt.Errorf("%w: handle closed", ErrConnectionLoss)}
	}
	if c.m.latency > 0 {
		time.Sleep(c.m.latency)
	}
	if c.m.fault != nil {
		if err := c.m.fault(op, p); err != nil {
			return err
		}
	}
	if err := nodepath.Validate(p); err != nil {
		return &Error{Op: op, Path: p, Err: ErrInvalidPath}
	}
	if err := fn(); err != nil {
		var serr *Error
		if errors.As(err, &serr) {
			return err
		}
		return &Error{Op: op, Path: p, Err: err}
	}
	return nil
}

func (c *memoryConn) Get(p string) ([]byte, error) {
	var data []byte
	err := c.call(OpGet, p, func() (err error) {
		data, err = c.m.get(p)
		return err
	})
	return data, err
}

func (c *memoryConn) Set(p string, data []byte) error {
	return c.call(OpSet, p, func() error { return c.m.set(p, data) })
}

func (c *memoryConn) Children(p string) ([]string, error) {
	var names []string
	err := c.call(OpChildren, p, func() (err error) {
		names, err = c.m.children(p)
		return err
	})
	return names, err
}

func (c *memoryConn) DeleteAll(p string) error {
	return c.call(OpDelete, p, func() error { return c.m.deleteAll(p) })
}

func (c *memoryConn) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.m.open.Add(-1)
	return nil
}
