package buffer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppendReadRoundTrip(t *testing.T) {
	b := New(nil)
	b.AppendUint8(0x7f)
	b.AppendUint16(0xBEEF)
	b.AppendUint32(0xDEADBEEF)
	b.AppendUint64(0x0102030405060708)
	require.Equal(t, 15, b.Len())

	v8, err := b.ReadByte()
	require.NoError(t, err)
	require.EqualValues(t, 0x7f, v8)

	v16, err := b.ReadUint16()
	require.NoError(t, err)
	require.EqualValues(t, 0xBEEF, v16)

	v32, err := b.ReadUint32()
	require.NoError(t, err)
	require.EqualValues(t, 0xDEADBEEF, v32)

	v64, err := b.ReadUint64()
	require.NoError(t, err)
	require.EqualValues(t, 0x0102030405060708, v64)

	require.Zero(t, b.Len())
}

func TestNextShortRead(t *testing.T) {
	b := New([]byte{1, 2, 3})
	_, err := b.Next(4)
	require.ErrorIs(t, err, ErrShort)
}

func TestResetReusesStorage(t *testing.T) {
	b := New(nil)
	b.AppendUint32(1)
	cap1 := b.Cap()
	b.Reset()
	require.Zero(t, b.Len())
	b.AppendUint8(1)
	require.LessOrEqual(t, cap1, b.Cap())
}

func TestPeekDoesNotConsume(t *testing.T) {
	b := New([]byte{0xAA, 0xBB})
	p, err := b.Peek(1)
	require.NoError(t, err)
	require.Equal(t, []byte{0xAA}, p)
	require.Equal(t, 2, b.Len())
}
