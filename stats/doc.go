/*
Package stats collects and exports runtime counters for the control
library: messages sent/received per address, reply-queue skips,
allocator exhaustion, and scheduler queue depth. The default
implementation is backed by github.com/prometheus/client_golang and
exposed over HTTP, mirroring the exporter shape used elsewhere in the
wider PTP tooling this library's ambient stack is drawn from.
*/
package stats
