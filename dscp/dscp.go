// Package dscp optionally marks the transport's outgoing socket with a
// DSCP traffic class, for deployments where the engine and host share a
// congested link and control traffic should be prioritized over bulk
// audio/data transport. Linux-only; Enable is a no-op returning nil on
// other platforms (see dscp_other.go).
package dscp
