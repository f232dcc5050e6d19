/*
Package alloc implements the monotonic, free-list-reusing ID allocators
used for node, buffer, audio-bus, and control-bus identifiers (§4.4).
Each allocator covers a closed range [low, high] and is independent and
mutex-protected; contention is expected to be low.
*/
package alloc
