/*
Package sched implements the timed dispatch queue (§4.6): a priority
queue of tasks keyed by (deadline, insertion sequence), drained by a
single worker goroutine that sleeps until the earliest deadline and
wakes early when an earlier task is enqueued. Tasks are either an
arbitrary callback or a prepared bundle+peer send, letting callers
stream OSC events faster than the engine's own input buffer could
accept them if sent all at once.
*/
package sched
