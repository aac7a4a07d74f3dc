package store

import (
	"context"
	"errors"
)

// Op names a store operation. It is carried by Error and passed to fault
// hooks so callers can tell which call failed.
type Op string

const (
	OpGet      Op = "get"
	OpSet      Op = "set"
	OpChildren Op = "children"
	OpDelete   Op = "delete"
)

// Errors reported by every backend. Backend-specific errors are translated to
// these where a counterpart exists and passed through unchanged otherwise.
var (
	ErrNoNode         = errors.New("node does not exist")
	ErrNodeExists     = errors.New("node already exists")
	ErrNotEmpty       = errors.New("node has children")
	ErrInvalidPath    = errors.New("invalid path")
	ErrBadArguments   = errors.New("invalid arguments")
	ErrConnectionLoss = errors.New("connection lost")
)

// Error records a failed store call together with the path it was made on.
type Error struct {
	Op   Op
	Path string
	Err  error
}

func (e *Error) Error() string {
	return e.Err.Error() + ": " + e.Path
}

func (e *Error) Unwrap() error { return e.Err }

// Client is a handle on the coordination store. A Client is used by a single
// operation and must be closed when that operation finishes.
type Client interface {
	// Get returns the payload stored at path.
	Get(path string) ([]byte, error)

	// Set stores data at path, creating the node and any missing ancestors
	// first. Setting an existing node overwrites its payload.
	Set(path string, data []byte) error

	// Children lists the names of the direct children of path in the order
	// the store returns them.
	Children(path string) ([]string, error)

	// DeleteAll removes path and its whole subtree.
	DeleteAll(path string) error

	Close() error
}

// Dialer opens store handles. Implementations hold only read-only connection
// settings and are safe for concurrent use.
type Dialer interface {
	Dial(ctx context.Context) (Client, error)
}
