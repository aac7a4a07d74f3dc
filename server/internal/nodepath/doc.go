// Package nodepath builds and inspects absolute node paths.
//
// Resolve and FromWildcard turn a route's wildcard remainder into a path
// ("one/two" -> "/one/two", "" -> "/") without checking it; Child, Parent,
// Base and Ancestors are the string helpers the store backends and the tree
// builder share. Validate applies ZooKeeper's path rules and is only used by
// backends that have to enforce them themselves.
package nodepath
