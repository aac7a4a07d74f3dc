package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-zookeeper/zk"

	"github.com/zkrest/zkrest/server/internal/nodepath"
)

// Default ZooKeeper client settings.
const (
	DefaultConnectionTimeout = 3 * time.Second
	DefaultSessionTimeout    = 10 * time.Second
	DefaultRetryTimes        = 1
	DefaultRetryInterval     = 1 * time.Second
)

// ZooKeeperConfig holds the connection settings of a ZooKeeper ensemble.
type ZooKeeperConfig struct {
	// Servers lists host:port pairs. A missing port defaults to 2181.
	Servers []string

	// ConnectionTimeout bounds how long a call waits for a session before it
	// fails with ErrConnectionLoss.
	ConnectionTimeout time.Duration

	SessionTimeout time.Duration

	// RetryTimes is how many extra attempts a call gets after a connection
	// loss, RetryInterval apart.
	RetryTimes    int
	RetryInterval time.Duration
}

var acl = zk.WorldACL(zk.PermAll)

// ZooKeeper dials a fresh ZooKeeper session for every handle.
type ZooKeeper struct {
	cfg ZooKeeperConfig
	log *slog.Logger
}

// NewZooKeeper validates cfg and returns a ZooKeeper dialer. Zero timeouts
// and intervals are replaced by the package defaults.
func NewZooKeeper(cfg ZooKeeperConfig, log *slog.Logger) (*ZooKeeper, error) {
	if len(cfg.Servers) == 0 {
		return nil, fmt.Errorf("zookeeper: server list must not be empty")
	}
	if cfg.RetryTimes < 0 {
		return nil, fmt.Errorf("zookeeper: retry times must not be negative")
	}
	if cfg.ConnectionTimeout <= 0 {
		cfg.ConnectionTimeout = DefaultConnectionTimeout
	}
	if cfg.SessionTimeout <= 0 {
		cfg.SessionTimeout = DefaultSessionTimeout
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = DefaultRetryInterval
	}
	if log == nil {
		log = slog.Default()
	}
	return &ZooKeeper{cfg: cfg, log: log}, nil
}

// Config returns the effective settings.
func (z *ZooKeeper) Config() ZooKeeperConfig { return z.cfg }

// Dial starts a new session. The session is established lazily: Dial returns
// as soon as the client is constructed and the first call waits for it.
func (z *ZooKeeper) Dial(_ context.Context) (Client, error) {
	conn, events, err := zk.Connect(z.cfg.Servers, z.cfg.SessionTimeout,
		zk.WithLogger(zkLogger{z.log}))
	if err != nil {
		return nil, fmt.Errorf("zookeeper: connect %v: %w", z.cfg.Servers, err)
	}
	return &zkClient{conn: conn, events: events, cfg: z.cfg}, nil
}

// zkLogger routes the ZooKeeper library's own log lines to slog.
type zkLogger struct{ log *slog.Logger }

func (l zkLogger) Printf(format string, args ...interface{}) {
	l.log.Debug(fmt.Sprintf(format, args...), "component", "zk")
}

type zkClient struct {
	conn   *zk.Conn
	events <-chan zk.Event
	cfg    ZooKeeperConfig
}

// awaitSession blocks until the connection has a session or the connection
// timeout elapses.
func (c *zkClient) awaitSession() error {
	return waitForSession(c.conn.State, c.events, c.cfg.ConnectionTimeout)
}

// sessionPoll is how often waitForSession rechecks the connection state when
// no event arrives.
const sessionPoll = 50 * time.Millisecond

// waitForSession waits until state reports a session. Events only trigger a
// recheck: a buffered event can describe a session that has since been lost.
func waitForSession(state func() zk.State, events <-chan zk.Event, timeout time.Duration) error {
	if state() == zk.StateHasSession {
		return nil
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	ticker := time.NewTicker(sessionPoll)
	defer ticker.Stop()
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return zk.ErrConnectionClosed
			}
		case <-ticker.C:
		case <-timer.C:
			return zk.ErrNoServer
		}
		if state() == zk.StateHasSession {
			return nil
		}
	}
}

// do runs fn once a session is available, retrying after connection loss.
func (c *zkClient) do(op Op, p string, fn func() error) error {
	var err error
	for attempt := 0; attempt <= c.cfg.RetryTimes; attempt++ {
		if attempt > 0 {
			time.Sleep(c.cfg.RetryInterval)
		}
		if err = c.awaitSession(); err == nil {
			err = fn()
		}
		if !retryable(err) {
			break
		}
	}
	if err != nil {
		return &Error{Op: op, Path: p, Err: translate(err)}
	}
	return nil
}

func (c *zkClient) Get(p string) ([]byte, error) {
	var data []byte
	err := c.do(OpGet, p, func() (err error) {
		data, _, err = c.conn.Get(p)
		return err
	})
	return data, err
}

// Set creates p with data, creating missing parents, or overwrites the
// payload if p already exists.
func (c *zkClient) Set(p string, data []byte) error {
	return c.do(OpSet, p, func() error {
		_, err := c.conn.Create(p, data, 0, acl)
		if errors.Is(err, zk.ErrNoNode) {
			if err := c.createParents(p); err != nil {
				return err
			}
			_, err = c.conn.Create(p, data, 0, acl)
		}
		if errors.Is(err, zk.ErrNodeExists) {
			_, err = c.conn.Set(p, data, -1)
		}
		return err
	})
}

func (c *zkClient) createParents(p string) error {
	for _, a := range nodepath.Ancestors(p) {
		if _, err := c.conn.Create(a, nil, 0, acl); err != nil && !errors.Is(err, zk.ErrNodeExists) {
			return err
		}
	}
	return nil
}

func (c *zkClient) Children(p string) ([]string, error) {
	var names []string
	err := c.do(OpChildren, p, func() (err error) {
		names, _, err = c.conn.Children(p)
		return err
	})
	if err == nil && names == nil {
		names = []string{}
	}
	return names, err
}

// DeleteAll removes p and its subtree. The root is refused before anything
// is touched.
func (c *zkClient) DeleteAll(p string) error {
	if p == nodepath.Root {
		return &Error{Op: OpDelete, Path: p, Err: ErrBadArguments}
	}
	return c.do(OpDelete, p, func() error { return c.deleteAll(p) })
}

// deleteAll tries to delete p and descends into its children only when the
// server reports it is not empty. Children that vanish concurrently are
// ignored.
func (c *zkClient) deleteAll(p string) error {
	err := c.conn.Delete(p, -1)
	if !errors.Is(err, zk.ErrNotEmpty) {
		return err
	}
	children, _, err := c.conn.Children(p)
	if err != nil {
		return err
	}
	for _, name := range children {
		if err := c.deleteAll(nodepath.Child(p, name)); err != nil && !errors.Is(err, zk.ErrNoNode) {
			return err
		}
	}
	return c.conn.Delete(p, -1)
}

func (c *zkClient) Close() error {
	c.conn.Close()
	return nil
}

func retryable(err error) bool {
	return errors.Is(err, zk.ErrConnectionClosed) ||
		errors.Is(err, zk.ErrNoServer) ||
		errors.Is(err, zk.ErrSessionExpired) ||
		errors.Is(err, zk.ErrSessionMoved)
}

// translate maps ZooKeeper library errors to the package errors.
func translate(err error) error {
	switch {
	case errors.Is(err, zk.ErrNoNode):
		return ErrNoNode
	case errors.Is(err, zk.ErrNodeExists):
		return ErrNodeExists
	case errors.Is(err, zk.ErrNotEmpty):
		return ErrNotEmpty
	case errors.Is(err, zk.ErrInvalidPath):
		return ErrInvalidPath
	case errors.Is(err, zk.ErrBadArguments):
		return ErrBadArguments
	case retryable(err):
		return ErrConnectionLoss
	}
	return err
}
