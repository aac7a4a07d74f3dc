package service

import (
	"github.com/zkrest/zkrest/server/internal/nodepath"
	"github.com/zkrest/zkrest/server/internal/store"
)

// BuildTree lists the whole subtree below path, one Children call per node,
// depth first. The first failing call aborts the walk and its error is
// returned with no partial tree.
func BuildTree(c store.Client, path string) (Tree, error) {
	names, err := c.Children(path)
	if err != nil {
		return nil, err
	}
	tree := make(Tree, len(names))
	for _, name := range names {
		sub, err := BuildTree(c, nodepath.Child(path, name))
		if err != nil {
			return nil, err
		}
		tree[name] = sub
	}
	return tree, nil
}
