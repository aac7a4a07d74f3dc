package nodepath

import (
	"errors"
	"fmt"
	"strings"
)

// Root is the path of the top-level node.
const Root = "/"

// ErrInvalidPath is returned by Validate for paths the store would reject.
var ErrInvalidPath = errors.New("invalid path")

// Resolve converts the URL segments captured after a route prefix into an
// absolute node path. An empty segment list resolves to Root.
//
// No validation happens here: "a//b" resolves to "/a//b" and it is up to the
// store to reject it.
func Resolve(segments []string) string {
	return "/" + strings.Join(segments, "/")
}

// FromWildcard resolves a decoded wildcard remainder such as "one/two".
func FromWildcard(remainder string) string {
	if remainder == "" {
		return Root
	}
	return Resolve(strings.Split(remainder, "/"))
}

// Child returns the full path of the child called name under parent.
func Child(parent, name string) string {
	if parent == Root {
		return Root + name
	}
	return parent + "/" + name
}

// Parent returns the path of the node directly above p. The parent of a
// top-level node, and of Root itself, is Root.
func Parent(p string) string {
	i := strings.LastIndexByte(p, '/')
	if i <= 0 {
		return Root
	}
	return p[:i]
}

// Base returns the last segment of p, or "" for Root.
func Base(p string) string {
	return p[strings.LastIndexByte(p, '/')+1:]
}

// Ancestors lists the proper ancestors of p from the shallowest down,
// excluding Root. Ancestors("/a/b/c") is ["/a", "/a/b"].
func Ancestors(p string) []string {
	var out []string
	for i := 1; i < len(p); i++ {
		if p[i] == '/' {
			out = append(out, p[:i])
		}
	}
	return out
}

// Validate reports whether p is a well-formed absolute node path: a leading
// slash, no empty segments, no trailing slash (except Root), no "." or ".."
// segments and no NUL characters.
func Validate(p string) error {
	if p == "" {
		return fmt.Errorf("%w: path must not be empty", ErrInvalidPath)
	}
	if p[0] != '/' {
		return fmt.Errorf("%w: %q must start with /", ErrInvalidPath, p)
	}
	if p == Root {
		return nil
	}
	if strings.HasSuffix(p, "/") {
		return fmt.Errorf("%w: %q must not end with /", ErrInvalidPath, p)
	}
	if strings.ContainsRune(p, 0) {
		return fmt.Errorf("%w: %q contains a null character", ErrInvalidPath, p)
	}
	for _, seg := range strings.Split(p[1:], "/") {
		switch seg {
		case "":
			return fmt.Errorf("%w: %q contains an empty segment", ErrInvalidPath, p)
		case ".", "..":
			return fmt.Errorf("%w: %q contains a relative segment", ErrInvalidPath, p)
		}
	}
	return nil
}
