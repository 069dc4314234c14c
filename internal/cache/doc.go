// Package cache implements the LRU node cache of spec.md §4.C: a bounded,
// thread-safe hash -> Node cache sitting in front of the blob store. Both
// Get and Put update recency; eviction is by entry count, not bytes.
package cache
