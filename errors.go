package kvcache

import "errors"

// ErrBadCapacity is returned by New when capacity is not a positive integer.
var ErrBadCapacity = errors.New("kvcache: capacity must be a positive integer")

// ErrOutOfMemory names allocation failure of the cache's index or queues.
// Go's garbage-collected allocator does not surface allocation failure to
// callers (it terminates the process instead), so no function in this
// module returns it; it exists to keep the error taxonomy of §7
// representable across the boundary.
var ErrOutOfMemory = errors.New("kvcache: allocation failed")
