// Package validate implements the bulk-put precondition of spec.md §4.E: a
// multiset reachability walk proving that a pending root plus an Id->node
// map forms a well-formed rooted tree with no dangling Local references
// and no orphan entries.
//
// The walk is correct only for tree-shaped inputs. In a DAG with sharing,
// the visit count can exceed the map size and the check incorrectly
// reports UnreachableNodes; this is an accepted precondition on callers
// (spec.md §9), not a bug this package works around.
package validate

import (
	"fmt"

	"github.com/dagcache/dagstore/internal/dagerr"
	"github.com/dagcache/dagstore/internal/dagtypes"
)

// InvalidLinkError reports a Local link whose Id has no entry in the
// node map.
type InvalidLinkError struct {
	Id dagtypes.Id
}

func (e *InvalidLinkError) Error() string {
	return fmt.Sprintf("validate: invalid link: id %d not present in node map", e.Id)
}

// UnreachableNodesError reports that the total visit count did not match
// the number of entries in the node map — either some entries were never
// reached from root, or (for non-tree inputs) shared subtrees inflated the
// count past the map size.
type UnreachableNodesError struct {
	Visited int
	MapSize int
}

func (e *UnreachableNodesError) Error() string {
	return fmt.Sprintf("validate: unreachable nodes: visited %d of %d map entries", e.Visited, e.MapSize)
}

// Tree validates that root plus nodes forms a rooted tree per spec.md
// §4.E:
//
//  1. Push every Local child of root onto a stack.
//  2. Pop ids until the stack is empty; for each popped id, increment a
//     visit counter, look the id up in nodes (InvalidLinkError if absent),
//     and push its Local children.
//  3. If the final visit counter does not equal len(nodes), fail with
//     UnreachableNodesError.
//
// Duplicate ids pushed onto the stack are walked each time — the visited
// count is a multiset cardinality, correct only when the reachable
// subgraph is in fact a tree (see package doc).
func Tree(root dagtypes.PendingNode, nodes map[dagtypes.Id]dagtypes.PendingNode) (dagtypes.ValidatedTree, error) {
	stack := append([]dagtypes.Id(nil), root.LocalChildren()...)
	visited := 0

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node, ok := nodes[id]
		if !ok {
			return dagtypes.ValidatedTree{}, dagerr.Wrap(dagerr.Decode, &InvalidLinkError{Id: id}, "validate tree")
		}
		visited++
		stack = append(stack, node.LocalChildren()...)
	}

	if visited != len(nodes) {
		return dagtypes.ValidatedTree{}, dagerr.Wrap(dagerr.Decode, &UnreachableNodesError{Visited: visited, MapSize: len(nodes)}, "validate tree")
	}

	return dagtypes.ValidatedTree{Root: root, Nodes: nodes}, nil
}
