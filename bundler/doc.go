/*
Package bundler implements the hierarchical OSC bundle builder (§4.5),
the central component of this library. A Bundler stages messages and
nested child bundlers at relative offsets from a chosen timetag base,
and flattens them into a single nested OSC datagram at send time.

A goroutine may also enter a Bundler as its "current" scope: while
entered, code that would otherwise send directly can redirect into the
active bundler instead (see Current). Scopes nest per-goroutine; when a
bundler's own outermost scope is exited, that bundler is flattened and
sent unless it was constructed with WithSendOnExit(false). A distinct
bundler entered inside another one's scope therefore sends on its own
exit rather than merging into the enclosing bundle.
*/
package bundler
