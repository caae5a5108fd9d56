package record

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, Encode(&buf, Set("a", []byte("1"))))
	require.NoError(t, Encode(&buf, Set("b", []byte("2"))))
	require.NoError(t, Encode(&buf, Remove("a")))

	dec := NewDecoder(&buf, 0)

	rec, _, err := dec.Next()
	require.NoError(t, err)
	require.Equal(t, Set("a", []byte("1")), rec)

	rec, _, err = dec.Next()
	require.NoError(t, err)
	require.Equal(t, Set("b", []byte("2")), rec)

	rec, _, err = dec.Next()
	require.NoError(t, err)
	require.Equal(t, Remove("a"), rec)

	_, _, err = dec.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestEncodeHasNoSeparatorBytes(t *testing.T) {
	var a, b bytes.Buffer
	require.NoError(t, Encode(&a, Set("k", []byte("v"))))
	require.NoError(t, Encode(&b, Set("k", []byte("v"))))

	var combined bytes.Buffer
	combined.Write(a.Bytes())
	combined.Write(b.Bytes())

	require.Equal(t, len(a.Bytes())+len(b.Bytes()), combined.Len())

	dec := NewDecoder(&combined, 0)
	first, end1, err := dec.Next()
	require.NoError(t, err)
	require.Equal(t, int64(len(a.Bytes())), end1)

	second, _, err := dec.Next()
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestDecoderTracksAbsoluteOffset(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, Set("k", []byte("v"))))
	first := buf.Len()
	require.NoError(t, Encode(&buf, Set("k2", []byte("v2"))))

	dec := NewDecoder(&buf, 100)
	_, end, err := dec.Next()
	require.NoError(t, err)
	require.Equal(t, int64(100+first), end)
}
