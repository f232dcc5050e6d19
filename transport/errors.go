package transport

import "errors"

// ErrPacketTooLarge is returned by Send when the encoded datagram exceeds
// the configured MTU. Callers are expected to split the payload across
// multiple bundles rather than retry.
var ErrPacketTooLarge = errors.New("transport: packet exceeds configured MTU")

// ErrUnknownPeer is returned when a send or lookup names a peer that was
// never registered.
var ErrUnknownPeer = errors.New("transport: unknown peer")

// ErrClosed is returned by Send and Msg once the transport has been
// closed.
var ErrClosed = errors.New("transport: closed")

// ErrNoReplyAddress is returned by Msg when await_reply is requested for
// an address with no entry in the reply-address registry.
var ErrNoReplyAddress = errors.New("transport: address has no registered reply address")
