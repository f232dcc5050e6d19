/*
Package replyqueue implements the named, bounded, blocking reply queues the
transport routes decoded messages into, and the skip-on-stale retrieval
policy waiters use to consume them (§4.2).
*/
package replyqueue
