// Package protocol defines the wire request/response shapes clients and
// servers exchange over a single connection, and the self-delimiting JSON
// codec used to stream them. Each request and each response is one JSON
// value with no framing bytes, decoded the same way the on-disk log is:
// by reading successive values off a streaming decoder rather than
// relying on a length prefix or delimiter.
package protocol

import (
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/iamNilotpal/ignite/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Kind distinguishes the three request shapes a connection can send.
type Kind string

const (
	KindGet    Kind = "get"
	KindSet    Kind = "set"
	KindRemove Kind = "rm"
)

// Request is one client message. Value is only meaningful for KindSet.
type Request struct {
	Kind  Kind   `json:"kind"`
	Key   string `json:"key"`
	Value string `json:"value,omitempty"`
}

// GetRequest builds a KindGet request.
func GetRequest(key string) Request { return Request{Kind: KindGet, Key: key} }

// SetRequest builds a KindSet request.
func SetRequest(key, value string) Request { return Request{Kind: KindSet, Key: key, Value: value} }

// RemoveRequest builds a KindRemove request.
func RemoveRequest(key string) Request { return Request{Kind: KindRemove, Key: key} }

// Response is one server reply. Ok is false exactly when Err is set. Value
// is only populated for a successful Get that found the key.
type Response struct {
	Ok    bool    `json:"ok"`
	Value *string `json:"value,omitempty"`
	Err   string  `json:"err,omitempty"`
}

// OkResponse builds a successful response. value is nil for Set/Remove and
// for a Get that found nothing.
func OkResponse(value *string) Response { return Response{Ok: true, Value: value} }

// ErrResponse builds a failed response carrying message as its error text.
func ErrResponse(message string) Response { return Response{Ok: false, Err: message} }

// Encoder writes requests or responses to a stream with no separator
// bytes between messages, mirroring internal/record's log codec.
type Encoder struct {
	w io.Writer
}

// NewEncoder wraps w.
func NewEncoder(w io.Writer) *Encoder { return &Encoder{w: w} }

// EncodeRequest writes req as a single JSON value.
func (e *Encoder) EncodeRequest(req Request) error {
	b, err := json.Marshal(req)
	if err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeCodec, "failed to encode request")
	}
	_, err = e.w.Write(b)
	return err
}

// EncodeResponse writes resp as a single JSON value.
func (e *Encoder) EncodeResponse(resp Response) error {
	b, err := json.Marshal(resp)
	if err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeCodec, "failed to encode response")
	}
	_, err = e.w.Write(b)
	return err
}

// Decoder reads a back-to-back stream of requests or responses from a
// connection, one JSON value at a time.
type Decoder struct {
	dec *jsoniter.Decoder
}

// NewDecoder wraps r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{dec: json.NewDecoder(r)}
}

// DecodeRequest reads the next request. io.EOF is returned, unwrapped,
// when the peer has closed the connection cleanly between messages.
func (d *Decoder) DecodeRequest() (Request, error) {
	var req Request
	if err := d.dec.Decode(&req); err != nil {
		if err == io.EOF {
			return Request{}, io.EOF
		}
		return Request{}, errors.NewStorageError(err, errors.ErrorCodeProtocol, "malformed request")
	}
	return req, nil
}

// DecodeResponse reads the next response.
func (d *Decoder) DecodeResponse() (Response, error) {
	var resp Response
	if err := d.dec.Decode(&resp); err != nil {
		if err == io.EOF {
			return Response{}, io.EOF
		}
		return Response{}, errors.NewStorageError(err, errors.ErrorCodeProtocol, "malformed response")
	}
	return resp, nil
}
