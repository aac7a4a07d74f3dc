package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/zkrest/zkrest/server/internal/metrics"
	"github.com/zkrest/zkrest/server/internal/store"
)

// Operation names, used in logs and metric labels.
const (
	OpTree   = "tree"
	OpList   = "list"
	OpGet    = "get"
	OpSet    = "set"
	OpDelete = "delete"
)

// Service runs gateway operations against the store. It holds no state
// besides its dependencies and is safe for concurrent use.
type Service struct {
	dialer  store.Dialer
	log     *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithMetrics records operation outcomes on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New creates a Service that opens a store handle per operation through d.
func New(d store.Dialer, opts ...Option) *Service {
	s := &Service{dialer: d, log: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Tree returns the full subtree below path.
func (s *Service) Tree(ctx context.Context, path string) (Result, error) {
	return s.run(ctx, OpTree, path, func(c store.Client) (Payload, error) {
		tree, err := BuildTree(c, path)
		if err != nil {
			return nil, err
		}
		s.metrics.ObserveTree(tree.Size())
		return tree, nil
	})
}

// List returns the direct children of path.
func (s *Service) List(ctx context.Context, path string) (Result, error) {
	return s.run(ctx, OpList, path, func(c store.Client) (Payload, error) {
		names, err := c.Children(path)
		if err != nil {
			return nil, err
		}
		if names == nil {
			names = []string{}
		}
		return List(names), nil
	})
}

// Get returns the payload of path.
func (s *Service) Get(ctx context.Context, path string) (Result, error) {
	return s.run(ctx, OpGet, path, func(c store.Client) (Payload, error) {
		data, err := c.Get(path)
		if err != nil {
			return nil, err
		}
		return Data(data), nil
	})
}

// Set writes data to path, creating it and its ancestors as needed.
func (s *Service) Set(ctx context.Context, path string, data []byte) (Result, error) {
	return s.run(ctx, OpSet, path, func(c store.Client) (Payload, error) {
		return nil, c.Set(path, data)
	})
}

// Delete removes path and everything below it.
func (s *Service) Delete(ctx context.Context, path string) (Result, error) {
	return s.run(ctx, OpDelete, path, func(c store.Client) (Payload, error) {
		return nil, c.DeleteAll(path)
	})
}

// run acquires a handle, runs fn and releases the handle. Store errors become
// a failed Result; only a failure to obtain a handle is returned as an error.
func (s *Service) run(ctx context.Context, op, path string, fn func(store.Client) (Payload, error)) (Result, error) {
	start := time.Now()
	s.log.DebugContext(ctx, "service: operation", "op", op, "path", path)

	c, err := s.dialer.Dial(ctx)
	if err != nil {
		s.metrics.ObserveOperation(op, metrics.StatusFault, time.Since(start))
		return Result{}, fmt.Errorf("%s %s: open store handle: %w", op, path, err)
	}
	defer func() {
		if err := c.Close(); err != nil {
			s.log.WarnContext(ctx, "service: close store handle", "op", op, "err", err)
		}
	}()

	payload, err := fn(c)
	if err != nil {
		s.metrics.ObserveOperation(op, metrics.StatusError, time.Since(start))
		s.log.DebugContext(ctx, "service: operation failed", "op", op, "path", path, "err", err)
		return Fail(path, err), nil
	}
	s.metrics.ObserveOperation(op, metrics.StatusOK, time.Since(start))
	return Ok(path, payload), nil
}
