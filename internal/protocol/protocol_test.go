package protocol

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRequestEncodeDecodeRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)

	require.NoError(t, enc.EncodeRequest(GetRequest("a")))
	require.NoError(t, enc.EncodeRequest(SetRequest("a", "1")))
	require.NoError(t, enc.EncodeRequest(RemoveRequest("a")))

	dec := NewDecoder(&buf)

	req, err := dec.DecodeRequest()
	require.NoError(t, err)
	require.Equal(t, GetRequest("a"), req)

	req, err = dec.DecodeRequest()
	require.NoError(t, err)
	require.Equal(t, SetRequest("a", "1"), req)

	req, err = dec.DecodeRequest()
	require.NoError(t, err)
	require.Equal(t, RemoveRequest("a"), req)

	_, err = dec.DecodeRequest()
	require.ErrorIs(t, err, io.EOF)
}

func TestResponseEncodeDecodeRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)

	value := "hello"
	require.NoError(t, enc.EncodeResponse(OkResponse(&value)))
	require.NoError(t, enc.EncodeResponse(OkResponse(nil)))
	require.NoError(t, enc.EncodeResponse(ErrResponse("Key not found")))

	dec := NewDecoder(&buf)

	resp, err := dec.DecodeResponse()
	require.NoError(t, err)
	require.True(t, resp.Ok)
	require.NotNil(t, resp.Value)
	require.Equal(t, "hello", *resp.Value)

	resp, err = dec.DecodeResponse()
	require.NoError(t, err)
	require.True(t, resp.Ok)
	require.Nil(t, resp.Value)

	resp, err = dec.DecodeResponse()
	require.NoError(t, err)
	require.False(t, resp.Ok)
	require.Equal(t, "Key not found", resp.Err)

	_, err = dec.DecodeResponse()
	require.ErrorIs(t, err, io.EOF)
}

func TestEncodeHasNoSeparatorBytes(t *testing.T) {
	var a, b, combined bytes.Buffer

	require.NoError(t, NewEncoder(&a).EncodeRequest(SetRequest("k1", "v1")))
	require.NoError(t, NewEncoder(&b).EncodeRequest(SetRequest("k2", "v2")))

	combined.Write(a.Bytes())
	combined.Write(b.Bytes())
	require.Equal(t, a.Len()+b.Len(), combined.Len())

	dec := NewDecoder(&combined)
	first, err := dec.DecodeRequest()
	require.NoError(t, err)
	require.Equal(t, SetRequest("k1", "v1"), first)

	second, err := dec.DecodeRequest()
	require.NoError(t, err)
	require.Equal(t, SetRequest("k2", "v2"), second)
}
