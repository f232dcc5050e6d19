package osc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTimetagRoundTrip(t *testing.T) {
	now := time.Unix(1700000000, 500000000).UTC()
	tt := NewTimetag(now)
	back := tt.Time()
	require.WithinDuration(t, now, back, time.Millisecond)
}

func TestFromSecondsRelative(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	tt := FromSeconds(0.5, now)
	expected := NewTimetag(now.Add(500 * time.Millisecond))
	require.Equal(t, expected, tt)
}

func TestFromSecondsAbsolute(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	tt := FromSeconds(2000000000, now)
	expected := NewTimetag(time.Unix(2000000000, 0).UTC())
	require.Equal(t, expected, tt)
}

func TestStatusDecode(t *testing.T) {
	args := []Arg{Int(1), Int(10), Int(2), Int(1), Int(3), Float(0.1), Float(0.2), Float(44100), Float(44100.0)}
	st, err := DecodeStatus(args)
	require.NoError(t, err)
	require.Equal(t, int32(10), st.UGens)
	require.Equal(t, int32(2), st.Synths)
	require.Equal(t, int32(3), st.SynthDefs)
	require.InDelta(t, 44100.0, st.ActualSampleRate, 0.001)
}
