package osc

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// bundleTag is the literal string every OSC bundle datagram begins with.
const bundleTag = "#bundle"

// Packet is the interface implemented by Message and Bundle: anything that
// can appear standalone on the wire, or nested as a bundle element.
type Packet interface {
	isPacket()
	Bytes() ([]byte, error)
}

// Bundle is an OSC bundle: an absolute timetag plus an ordered sequence of
// elements, each either a Message or a nested Bundle (§3).
type Bundle struct {
	Timetag  Timetag
	Elements []Packet
}

// NewBundle constructs an empty bundle at the given timetag.
func NewBundle(tt Timetag) *Bundle {
	return &Bundle{Timetag: tt}
}

func (*Bundle) isPacket() {}

// Append adds one element (message or nested bundle) to the bundle.
func (b *Bundle) Append(p Packet) {
	b.Elements = append(b.Elements, p)
}

// Bytes serializes the bundle to its OSC wire representation: "#bundle\0",
// the 8-byte timetag, then each element prefixed by its own big-endian
// 32-bit size.
func (b *Bundle) Bytes() ([]byte, error) {
	buf := new(bytes.Buffer)
	writePaddedString(buf, bundleTag)
	var ttb [8]byte
	binary.BigEndian.PutUint64(ttb[:], uint64(b.Timetag))
	buf.Write(ttb[:])

	for _, elem := range b.Elements {
		eb, err := elem.Bytes()
		if err != nil {
			return nil, err
		}
		if len(eb) > maxArgLen {
			return nil, fmt.Errorf("%w: bundle element of %d bytes", ErrArgumentTooLarge, len(eb))
		}
		if err := binary.Write(buf, binary.BigEndian, int32(len(eb))); err != nil {
			return nil, err
		}
		buf.Write(eb)
	}
	return buf.Bytes(), nil
}

// Decode parses a complete datagram as either a Message or a *Bundle,
// dispatching on the leading byte per §4.3 ('/'  for a message, '#' for a
// bundle).
func Decode(data []byte) (Packet, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty packet", ErrMalformedPacket)
	}
	switch data[0] {
	case '/':
		return DecodeMessage(data)
	case '#':
		b, next, err := decodeBundle(data, 0)
		if err != nil {
			return nil, err
		}
		if next != len(data) {
			return nil, fmt.Errorf("%w: %d trailing bytes after bundle", ErrMalformedPacket, len(data)-next)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("%w: unrecognized leading byte %q", ErrMalformedPacket, data[0])
	}
}

func decodeBundle(data []byte, off int) (*Bundle, int, error) {
	tag, next, err := readPaddedString(data, off)
	if err != nil {
		return nil, 0, err
	}
	if tag != bundleTag {
		return nil, 0, fmt.Errorf("%w: expected %q, got %q", ErrMalformedPacket, bundleTag, tag)
	}
	tt, err := decodeTimetag(data, next)
	if err != nil {
		return nil, 0, err
	}
	next += 8

	b := NewBundle(tt)
	for next < len(data) {
		if next+4 > len(data) {
			return nil, 0, fmt.Errorf("%w: truncated bundle element size", ErrMalformedPacket)
		}
		size := int(int32(binary.BigEndian.Uint32(data[next:])))
		if size < 0 {
			return nil, 0, fmt.Errorf("%w: negative bundle element size %d", ErrMalformedPacket, size)
		}
		next += 4
		end := next + size
		if end > len(data) {
			return nil, 0, fmt.Errorf("%w: truncated bundle element payload", ErrMalformedPacket)
		}

		var elem Packet
		switch {
		case size > 0 && data[next] == '#':
			nested, nestedNext, err := decodeBundle(data, next)
			if err != nil {
				return nil, 0, err
			}
			if nestedNext != end {
				return nil, 0, fmt.Errorf("%w: nested bundle length mismatch", ErrMalformedPacket)
			}
			elem = nested
		default:
			msg, msgNext, err := decodeMessage(data, next)
			if err != nil {
				return nil, 0, err
			}
			if msgNext != end {
				return nil, 0, fmt.Errorf("%w: message length mismatch", ErrMalformedPacket)
			}
			elem = msg
		}
		b.Append(elem)
		next = end
	}
	return b, next, nil
}
