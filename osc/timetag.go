package osc

import (
	"encoding/binary"
	"time"
)

// secondsFrom1900To1970 is the offset between the NTP epoch (1900-01-01 UTC)
// and the Unix epoch (1970-01-01 UTC).
const secondsFrom1900To1970 = 2208988800

// relativeThreshold is the boundary below which a caller-supplied timestamp
// is interpreted as a relative offset in seconds from "now" rather than an
// absolute Unix time (§4.1, §4.5).
const relativeThreshold = 1e6

// Immediate is the sentinel timetag meaning "execute immediately": 63 zero
// bits followed by a one in the least significant bit.
const Immediate Timetag = 1

// Timetag is a 64-bit NTP-format time value: the high 32 bits are whole
// seconds since the NTP epoch, the low 32 bits are a binary fraction of a
// second.
type Timetag uint64

// NewTimetag converts a wall-clock time to its NTP-format representation.
func NewTimetag(t time.Time) Timetag {
	secs := uint64(t.Unix() + secondsFrom1900To1970)
	frac := uint64(float64(t.Nanosecond()) * (1 << 32) / 1e9)
	return Timetag(secs<<32 | (frac & 0xffffffff))
}

// IsRelative reports whether seconds falls below relativeThreshold and
// would therefore be interpreted by FromSeconds as an offset from now
// rather than an absolute Unix timestamp. Exported so callers composing
// their own timetag arithmetic (e.g. the bundler's nested-base rule,
// §4.5) can apply the identical small-value/large-value distinction.
func IsRelative(seconds float64) bool {
	return seconds < relativeThreshold
}

// FromSeconds builds a timetag from a float64 count of seconds, applying the
// small-value/large-value distinction from §4.1: values below
// relativeThreshold are treated as an offset added to now; larger values are
// treated as absolute Unix seconds.
func FromSeconds(seconds float64, now time.Time) Timetag {
	if seconds < relativeThreshold {
		return NewTimetag(now.Add(time.Duration(seconds * float64(time.Second))))
	}
	whole := int64(seconds)
	frac := seconds - float64(whole)
	return NewTimetag(time.Unix(whole, int64(frac*1e9)).UTC())
}

// Time converts the timetag back to a wall-clock time.
func (t Timetag) Time() time.Time {
	secs := int64(uint64(t)>>32) - secondsFrom1900To1970
	frac := uint64(t) & 0xffffffff
	nsec := int64(float64(frac) * 1e9 / (1 << 32))
	return time.Unix(secs, nsec).UTC()
}

// Seconds returns the whole-seconds field (high 32 bits).
func (t Timetag) Seconds() uint32 {
	return uint32(uint64(t) >> 32)
}

// Fraction returns the fractional-seconds field (low 32 bits).
func (t Timetag) Fraction() uint32 {
	return uint32(uint64(t) & 0xffffffff)
}

// appendBytes appends the big-endian wire representation of the timetag.
func (t Timetag) appendBytes(buf []byte) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(t))
	return append(buf, b[:]...)
}

// decodeTimetag reads a timetag out of data at off.
func decodeTimetag(data []byte, off int) (Timetag, error) {
	if off+8 > len(data) {
		return 0, ErrMalformedPacket
	}
	return Timetag(binary.BigEndian.Uint64(data[off:])), nil
}
