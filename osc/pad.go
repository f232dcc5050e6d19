package osc

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const maxArgLen = 1<<31 - 1

// padBytesNeeded returns how many padding bytes must follow a string of
// length n so the total (including at least one NUL terminator) is a
// multiple of 4. Blobs carry no terminator and compute their own padding.
func padBytesNeeded(n int) int {
	return 4 - n%4
}

// writePaddedString writes an OSC-string: the bytes of s, a NUL terminator,
// and zero or more additional NUL pad bytes bringing the total to a 4-byte
// boundary.
func writePaddedString(buf *bytes.Buffer, s string) {
	buf.WriteString(s)
	pad := padBytesNeeded(len(s))
	buf.Write(make([]byte, pad))
}

// readPaddedString reads an OSC-string out of data starting at off, and
// returns the decoded string plus the offset of the first byte following it.
func readPaddedString(data []byte, off int) (string, int, error) {
	if off > len(data) {
		return "", 0, fmt.Errorf("%w: string offset %d past end (len %d)", ErrMalformedPacket, off, len(data))
	}
	nul := bytes.IndexByte(data[off:], 0)
	if nul < 0 {
		return "", 0, fmt.Errorf("%w: unterminated string", ErrMalformedPacket)
	}
	s := string(data[off : off+nul])
	total := nul + padBytesNeeded(nul)
	end := off + total
	if end > len(data) {
		return "", 0, fmt.Errorf("%w: string padding runs past end", ErrMalformedPacket)
	}
	return s, end, nil
}

// writeBlob writes an OSC-blob: a big-endian int32 length followed by the
// raw bytes and zero-padding to a 4-byte boundary (no NUL terminator, unlike
// strings).
func writeBlob(buf *bytes.Buffer, b []byte) error {
	if len(b) > maxArgLen {
		return fmt.Errorf("%w: blob of %d bytes", ErrArgumentTooLarge, len(b))
	}
	if err := binary.Write(buf, binary.BigEndian, int32(len(b))); err != nil {
		return err
	}
	buf.Write(b)
	pad := (4 - len(b)%4) % 4
	buf.Write(make([]byte, pad))
	return nil
}

// readBlob reads an OSC-blob out of data starting at off.
func readBlob(data []byte, off int) ([]byte, int, error) {
	if off+4 > len(data) {
		return nil, 0, fmt.Errorf("%w: truncated blob length", ErrMalformedPacket)
	}
	n := int(int32(binary.BigEndian.Uint32(data[off:])))
	if n < 0 {
		return nil, 0, fmt.Errorf("%w: negative blob length %d", ErrMalformedPacket, n)
	}
	start := off + 4
	end := start + n
	if end > len(data) {
		return nil, 0, fmt.Errorf("%w: truncated blob payload", ErrMalformedPacket)
	}
	pad := (4 - n%4) % 4
	blob := make([]byte, n)
	copy(blob, data[start:end])
	return blob, end + pad, nil
}
