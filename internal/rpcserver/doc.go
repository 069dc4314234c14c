// Package rpcserver is the RPC facade of spec.md §4.I: it parses wire
// requests into domain objects, invokes the corresponding core component
// (validate+bulkput for puts, recursiveget/oneget for reads), and
// serializes the result.
//
// Transport is HTTP with JSON bodies, matching the teacher's established
// net/http idiom (see SPEC_FULL.md §6 for why this module does not
// hand-generate protobuf/gRPC bindings). GetNodes streams its response as
// newline-delimited JSON over a chunked transfer encoding, flushing after
// each item — the direct HTTP analog of gRPC server-streaming.
package rpcserver
