package engine

import "errors"

// ErrNoReplyAddress is returned by MsgAwait when address has no entry in
// the reply-address registry.
var ErrNoReplyAddress = errors.New("engine: address has no registered reply address")

// ErrProtocolMismatch is returned by Connect when the engine's handshake
// replies do not parse as expected (§7).
var ErrProtocolMismatch = errors.New("engine: handshake reply did not match the expected protocol")
