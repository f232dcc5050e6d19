package osc

import (
	"bytes"
	"fmt"
	"strings"
)

// Message is a single OSC message: an address pattern and an ordered list of
// arguments (§3). Once built it is treated as immutable by the rest of this
// module.
type Message struct {
	Address string
	Args    []Arg
}

// NewMessage builds a Message from untyped argument values, inferring each
// one's OSC type via Infer.
func NewMessage(address string, args ...any) (Message, error) {
	if !strings.HasPrefix(address, "/") {
		return Message{}, fmt.Errorf("%w: address %q must start with '/'", ErrMalformedPacket, address)
	}
	typed, err := InferAll(args)
	if err != nil {
		return Message{}, err
	}
	return Message{Address: address, Args: typed}, nil
}

// isPacket marks Message as a Packet.
func (Message) isPacket() {}

// Bytes serializes the message to its OSC wire representation: the address,
// a type-tag string, then each argument's payload in order.
func (m Message) Bytes() ([]byte, error) {
	buf := new(bytes.Buffer)
	writePaddedString(buf, m.Address)

	tags := make([]byte, 1, len(m.Args)+1)
	tags[0] = ','
	for _, a := range m.Args {
		tags = append(tags, a.typeTag())
	}
	writePaddedString(buf, string(tags))

	for _, a := range m.Args {
		if err := a.encode(buf); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// decodeMessage decodes a Message from data starting at off. off must point
// at the leading '/' of the address.
func decodeMessage(data []byte, off int) (Message, int, error) {
	address, next, err := readPaddedString(data, off)
	if err != nil {
		return Message{}, 0, err
	}
	tags, next, err := readPaddedString(data, next)
	if err != nil {
		return Message{}, 0, err
	}
	if tags == "" || tags[0] != ',' {
		return Message{}, 0, fmt.Errorf("%w: type tag string missing leading ','", ErrMalformedPacket)
	}
	tags = tags[1:]

	args := make([]Arg, 0, len(tags))
	for i := 0; i < len(tags); i++ {
		var arg Arg
		arg, next, err = decodeArg(tags[i], data, next)
		if err != nil {
			return Message{}, 0, err
		}
		args = append(args, arg)
	}
	return Message{Address: address, Args: args}, next, nil
}

// DecodeMessage parses a complete datagram as a single OSC message (no
// bundle wrapper). Use Decode to accept either a message or a bundle.
func DecodeMessage(data []byte) (Message, error) {
	m, next, err := decodeMessage(data, 0)
	if err != nil {
		return Message{}, err
	}
	if next != len(data) {
		return Message{}, fmt.Errorf("%w: %d trailing bytes after message", ErrMalformedPacket, len(data)-next)
	}
	return m, nil
}
