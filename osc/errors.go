package osc

import "errors"

// ErrMalformedPacket is returned by Decode when a datagram does not parse as
// a valid OSC message or bundle: a misaligned string, a truncated element,
// or an unrecognized type tag.
var ErrMalformedPacket = errors.New("osc: malformed packet")

// ErrArgumentTooLarge is returned by Bytes when a blob or string argument
// would overflow the 32-bit length prefix the wire format uses.
var ErrArgumentTooLarge = errors.New("osc: argument too large to encode")

// ErrUnsupportedArgument is returned by Infer when the supplied value has no
// corresponding OSC argument type.
var ErrUnsupportedArgument = errors.New("osc: unsupported argument type")
