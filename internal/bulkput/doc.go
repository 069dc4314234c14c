// Package bulkput implements the bulk-put engine of spec.md §4.F: a
// concurrent bottom-up fold ("catamorphism") over a validated tree that
// resolves every child before materializing and storing its parent,
// replacing each client-local Id with the content hash the child
// published to.
//
// Concurrency: every Local child of a node is resolved on its own
// goroutine started through an errgroup.Group, and each goroutine writes
// its resolved header into the child's own slot of the parent's header
// slice. A node's own publish does not proceed past its children until
// the group's Wait has returned, but sibling resolution order is
// otherwise unconstrained — hashing uses the static link order recorded
// in the pending node, never completion order, so this has no effect on
// the output hash.
package bulkput
