package service

// Payload is the body of a successful Result: Data, Tree or List.
type Payload interface {
	payload()
}

// Data is a node's raw payload.
type Data []byte

// Tree maps each child name to that child's own subtree. Leaves map to an
// empty, non-nil Tree.
type Tree map[string]Tree

// List holds the direct children of a node in store order.
type List []string

func (Data) payload() {}
func (Tree) payload() {}
func (List) payload() {}

// Size returns the number of descendants in t.
func (t Tree) Size() int {
	n := len(t)
	for _, sub := range t {
		n += sub.Size()
	}
	return n
}

// Result is the outcome of one gateway operation. Exactly one of Payload and
// Err may be set; set and delete succeed with neither.
type Result struct {
	Path    string
	Payload Payload
	Err     error
}

// Ok builds a successful Result. payload may be nil.
func Ok(path string, payload Payload) Result {
	return Result{Path: path, Payload: payload}
}

// Fail builds a failed Result carrying the store's error.
func Fail(path string, err error) Result {
	return Result{Path: path, Err: err}
}

// OK reports whether the operation succeeded.
func (r Result) OK() bool { return r.Err == nil }
