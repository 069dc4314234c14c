// Package recursiveget implements the recursive-get engine of spec.md
// §4.G: a concurrent top-down unfold ("anamorphism") that streams a root
// node and every transitively reachable node exactly once, memoizing
// across concurrent workers that share an output channel and a
// scheduled-hash set.
//
// Ordering is "root first" only; emission is otherwise arbitrary and
// interleaved across workers (spec.md §5). Backpressure and cancellation
// are expressed through a context.Context: a worker that cannot deliver
// because the consumer has stopped reading abandons its subtree rather
// than blocking forever.
package recursiveget
