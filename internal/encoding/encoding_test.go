package encoding

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/wirebroker/amqp/internal/buffer"
)

func TestShortStringRoundTrip(t *testing.T) {
	b := buffer.New(nil)
	require.NoError(t, WriteShortString(b, "get.test"))
	got, err := ReadShortString(b)
	require.NoError(t, err)
	require.Equal(t, "get.test", got)
}

func TestLongStringRoundTrip(t *testing.T) {
	payload := []byte(`{"data":"some data to publish for test"}`)
	b := buffer.New(nil)
	require.NoError(t, WriteLongString(b, payload))
	got, err := ReadLongString(b)
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestTimestampRoundTrip(t *testing.T) {
	now := time.Now().Truncate(time.Second).UTC()
	b := buffer.New(nil)
	WriteTimestamp(b, now)
	got, err := ReadTimestamp(b)
	require.NoError(t, err)
	require.True(t, now.Equal(got))
}

func TestDecimalRoundTrip(t *testing.T) {
	d := Decimal{Scale: 2, Value: 12345}
	b := buffer.New(nil)
	WriteDecimal(b, d)
	got, err := ReadDecimal(b)
	require.NoError(t, err)
	require.Equal(t, d, got)
}

func TestTableRoundTrip(t *testing.T) {
	in := Table{
		"x-max-length": int32(10),
		"x-match":      "all",
		"enabled":      true,
		"nested":       Table{"inner": uint32(7)},
		"list":         []interface{}{int32(1), int32(2), "three"},
	}
	b := buffer.New(nil)
	require.NoError(t, WriteTable(b, in))
	out, err := ReadTable(b)
	require.NoError(t, err)
	if diff := cmp.Diff(in, out); diff != "" {
		t.Fatalf("table round-trip mismatch (-want +got):\n%s", diff)
	}
}

func TestFieldValueUnknownTag(t *testing.T) {
	b := buffer.New([]byte{0xFF})
	_, err := ReadFieldValue(b)
	require.Error(t, err)
}

func TestBitSet(t *testing.T) {
	var bs BitSet
	bs.Set(0, true)
	bs.Set(3, true)
	require.True(t, bs.Get(0))
	require.False(t, bs.Get(1))
	require.True(t, bs.Get(3))
	bs.Set(0, false)
	require.False(t, bs.Get(0))
}
