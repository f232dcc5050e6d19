package osc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// Arg is the tagged union of OSC argument types (§3): Int, Float, Str, Blob,
// and Timetag. Values are immutable once constructed.
type Arg interface {
	// typeTag returns the OSC type-tag character for this argument.
	typeTag() byte
	// encode appends this argument's payload (not its type tag) to buf.
	encode(buf *bytes.Buffer) error
}

// Int is a 32-bit signed integer argument ('i').
type Int int32

func (Int) typeTag() byte { return 'i' }

func (a Int) encode(buf *bytes.Buffer) error {
	return binary.Write(buf, binary.BigEndian, int32(a))
}

// Float is a 64-bit float argument ('d' — double precision, matching the
// engine's convention of always sending doubles rather than the narrower
// 'f' float32 tag).
type Float float64

func (Float) typeTag() byte { return 'd' }

func (a Float) encode(buf *bytes.Buffer) error {
	return binary.Write(buf, binary.BigEndian, float64(a))
}

// Str is a UTF-8 string argument ('s').
type Str string

func (Str) typeTag() byte { return 's' }

func (a Str) encode(buf *bytes.Buffer) error {
	if len(a) > maxArgLen {
		return fmt.Errorf("%w: string of %d bytes", ErrArgumentTooLarge, len(a))
	}
	writePaddedString(buf, string(a))
	return nil
}

// Blob is a raw byte-blob argument ('b').
type Blob []byte

func (Blob) typeTag() byte { return 'b' }

func (a Blob) encode(buf *bytes.Buffer) error {
	return writeBlob(buf, a)
}

func (t Timetag) typeTag() byte { return 't' }

func (t Timetag) encode(buf *bytes.Buffer) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(t))
	buf.Write(b[:])
	return nil
}

// Infer converts an untyped Go value into the matching Arg, for caller
// ergonomics (§4.1). Nested slices/maps are rejected: data of that shape
// has to be sent as separate messages, never as a nested sequence inside
// one message.
func Infer(v any) (Arg, error) {
	switch t := v.(type) {
	case Arg:
		return t, nil
	case int:
		return Int(t), nil
	case int32:
		return Int(t), nil
	case int64:
		return Int(int32(t)), nil
	case float32:
		return Float(t), nil
	case float64:
		return Float(t), nil
	case string:
		return Str(t), nil
	case []byte:
		return Blob(t), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedArgument, v)
	}
}

// InferAll converts a slice of untyped values into Args in order.
func InferAll(vs []any) ([]Arg, error) {
	args := make([]Arg, len(vs))
	for i, v := range vs {
		a, err := Infer(v)
		if err != nil {
			return nil, err
		}
		args[i] = a
	}
	return args, nil
}

// decodeArg decodes one argument of the given type tag out of data at off,
// returning the argument and the offset of the next argument.
func decodeArg(tag byte, data []byte, off int) (Arg, int, error) {
	switch tag {
	case 'i':
		if off+4 > len(data) {
			return nil, 0, fmt.Errorf("%w: truncated int32", ErrMalformedPacket)
		}
		return Int(int32(binary.BigEndian.Uint32(data[off:]))), off + 4, nil
	case 'd':
		if off+8 > len(data) {
			return nil, 0, fmt.Errorf("%w: truncated float64", ErrMalformedPacket)
		}
		bits := binary.BigEndian.Uint64(data[off:])
		return Float(math.Float64frombits(bits)), off + 8, nil
	case 's':
		s, next, err := readPaddedString(data, off)
		if err != nil {
			return nil, 0, err
		}
		return Str(s), next, nil
	case 'b':
		b, next, err := readBlob(data, off)
		if err != nil {
			return nil, 0, err
		}
		return Blob(b), next, nil
	case 't':
		tt, err := decodeTimetag(data, off)
		if err != nil {
			return nil, 0, err
		}
		return tt, off + 8, nil
	default:
		return nil, 0, fmt.Errorf("%w: unknown type tag %q", ErrMalformedPacket, tag)
	}
}
