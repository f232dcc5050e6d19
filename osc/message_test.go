package osc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMessageRoundTrip(t *testing.T) {
	m, err := NewMessage("/s_new", "s1", int32(-1), int32(1), int32(0), "freq", 200.0)
	require.NoError(t, err)

	b, err := m.Bytes()
	require.NoError(t, err)
	require.Equal(t, 0, len(b)%4)

	decoded, err := DecodeMessage(b)
	require.NoError(t, err)
	require.Equal(t, m.Address, decoded.Address)
	require.Equal(t, m.Args, decoded.Args)
}

func TestMessageAddressMustStartWithSlash(t *testing.T) {
	_, err := NewMessage("s_new")
	require.ErrorIs(t, err, ErrMalformedPacket)
}

func TestInferRejectsUnsupportedType(t *testing.T) {
	_, err := Infer(struct{}{})
	require.ErrorIs(t, err, ErrUnsupportedArgument)
}

func TestDecodeMalformedTruncated(t *testing.T) {
	_, err := DecodeMessage([]byte{'/', 'a', 0, 0})
	require.ErrorIs(t, err, ErrMalformedPacket)
}

func TestBlobRoundTrip(t *testing.T) {
	m, err := NewMessage("/b_setn", int32(0), []byte{1, 2, 3, 4, 5})
	require.NoError(t, err)
	b, err := m.Bytes()
	require.NoError(t, err)

	decoded, err := DecodeMessage(b)
	require.NoError(t, err)
	require.Equal(t, Blob([]byte{1, 2, 3, 4, 5}), decoded.Args[1])
}
