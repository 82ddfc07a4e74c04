// Package ipc implements native messaging framing over stdio.
//
// A frame is a 4-byte unsigned length in host byte order followed by that
// many bytes of UTF-8 JSON. The browser encodes the prefix in its own native
// order, so no normalization is performed here.
package ipc

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/pithecene-io/ccshost/types"
)

// Frame size constants.
const (
	// LengthPrefixSize is the size of the length prefix in bytes.
	LengthPrefixSize = 4
	// DefaultMaxPayloadSize is the default payload limit (64 MiB).
	DefaultMaxPayloadSize = 64 * 1024 * 1024
)

// byteOrder is the prefix byte order. Both ends run on the same machine.
var byteOrder = binary.NativeEndian

// FrameErrorKind classifies frame errors.
type FrameErrorKind int

const (
	// FrameErrorIO indicates the underlying stream failed.
	FrameErrorIO FrameErrorKind = iota
	// FrameErrorPartial indicates the stream ended inside a payload.
	FrameErrorPartial
	// FrameErrorTooLarge indicates a payload exceeding the configured limit.
	FrameErrorTooLarge
	// FrameErrorDecode indicates a payload that is not a valid request.
	FrameErrorDecode
	// FrameErrorEncode indicates a response that could not be serialized.
	FrameErrorEncode
)

// String returns the log name of the kind.
func (k FrameErrorKind) String() string {
	switch k {
	case FrameErrorIO:
		return "io"
	case FrameErrorPartial:
		return "partial"
	case FrameErrorTooLarge:
		return "too_large"
	case FrameErrorDecode:
		return "decode"
	case FrameErrorEncode:
		return "encode"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// FrameError represents a framing failure.
// Every kind is fatal: a bad prefix poisons all later frames, and a
// failed write means the caller is gone.
type FrameError struct {
	Kind FrameErrorKind
	Msg  string
	Err  error
}

func (e *FrameError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *FrameError) Unwrap() error {
	return e.Err
}

// IsFrameError reports whether err carries a *FrameError of the given kind.
func IsFrameError(err error, kind FrameErrorKind) bool {
	var frameErr *FrameError
	if errors.As(err, &frameErr) {
		return frameErr.Kind == kind
	}
	return false
}

// FrameDecoder reads length-prefixed frames from a stream.
type FrameDecoder struct {
	reader     io.Reader
	maxPayload uint32
	stray      int
}

// NewFrameDecoder creates a new frame decoder with the default payload limit.
func NewFrameDecoder(r io.Reader) *FrameDecoder {
	return &FrameDecoder{
		reader:     r,
		maxPayload: DefaultMaxPayloadSize,
	}
}

// SetMaxPayloadSize updates the payload limit. Zero keeps the current limit.
func (d *FrameDecoder) SetMaxPayloadSize(n uint32) {
	if n > 0 {
		d.maxPayload = n
	}
}

// StrayBytes returns how many bytes of an incomplete length prefix were
// discarded when the stream ended.
func (d *FrameDecoder) StrayBytes() int {
	return d.stray
}

// ReadFrame reads a single frame and returns its raw JSON payload.
//
// Errors:
//   - io.EOF: stream ended before a complete length prefix (clean shutdown)
//   - *FrameError with Kind=FrameErrorPartial: stream ended inside a payload
//   - *FrameError with Kind=FrameErrorTooLarge: payload exceeds the limit
//   - *FrameError with Kind=FrameErrorIO: any other read failure
func (d *FrameDecoder) ReadFrame() ([]byte, error) {
	var lengthBuf [LengthPrefixSize]byte
	n, err := io.ReadFull(d.reader, lengthBuf[:])
	if err != nil {
		// Fewer than four bytes before EOF means the browser closed the
		// port. It is not reported as an error.
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			d.stray = n
			return nil, io.EOF
		}
		return nil, &FrameError{
			Kind: FrameErrorIO,
			Msg:  "failed to read length prefix",
			Err:  err,
		}
	}

	payloadSize := byteOrder.Uint32(lengthBuf[:])
	if payloadSize > d.maxPayload {
		return nil, &FrameError{
			Kind: FrameErrorTooLarge,
			Msg:  fmt.Sprintf("payload size %d exceeds maximum %d", payloadSize, d.maxPayload),
		}
	}

	payload := make([]byte, payloadSize)
	if _, err := io.ReadFull(d.reader, payload); err != nil {
		kind := FrameErrorIO
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			kind = FrameErrorPartial
		}
		return nil, &FrameError{
			Kind: kind,
			Msg:  fmt.Sprintf("failed to read %d-byte payload", payloadSize),
			Err:  err,
		}
	}

	return payload, nil
}

// FrameEncoder writes length-prefixed frames to a stream.
// Every frame is flushed before WriteFrame returns.
type FrameEncoder struct {
	writer     *bufio.Writer
	maxPayload uint32
}

// NewFrameEncoder creates a new frame encoder with the default payload limit.
func NewFrameEncoder(w io.Writer) *FrameEncoder {
	return &FrameEncoder{
		writer:     bufio.NewWriter(w),
		maxPayload: DefaultMaxPayloadSize,
	}
}

// SetMaxPayloadSize updates the payload limit. Zero keeps the current limit.
func (e *FrameEncoder) SetMaxPayloadSize(n uint32) {
	if n > 0 {
		e.maxPayload = n
	}
}

// WriteFrame writes payload with its length prefix and flushes.
func (e *FrameEncoder) WriteFrame(payload []byte) error {
	if uint64(len(payload)) > uint64(e.maxPayload) {
		return &FrameError{
			Kind: FrameErrorTooLarge,
			Msg:  fmt.Sprintf("payload size %d exceeds maximum %d", len(payload), e.maxPayload),
		}
	}

	var lengthBuf [LengthPrefixSize]byte
	byteOrder.PutUint32(lengthBuf[:], uint32(len(payload)))

	if _, err := e.writer.Write(lengthBuf[:]); err != nil {
		return &FrameError{Kind: FrameErrorIO, Msg: "failed to write length prefix", Err: err}
	}
	if _, err := e.writer.Write(payload); err != nil {
		return &FrameError{Kind: FrameErrorIO, Msg: "failed to write payload", Err: err}
	}
	if err := e.writer.Flush(); err != nil {
		return &FrameError{Kind: FrameErrorIO, Msg: "failed to flush frame", Err: err}
	}
	return nil
}

// WriteResponse serializes resp as JSON and writes it as one frame.
// Returns the payload size on success.
func (e *FrameEncoder) WriteResponse(resp types.Response) (int, error) {
	payload, err := json.Marshal(resp)
	if err != nil {
		return 0, &FrameError{Kind: FrameErrorEncode, Msg: "failed to encode response", Err: err}
	}
	if err := e.WriteFrame(payload); err != nil {
		return 0, err
	}
	return len(payload), nil
}

// EncodeFrame returns payload prefixed with its native-order length.
func EncodeFrame(payload []byte) []byte {
	buf := make([]byte, LengthPrefixSize+len(payload))
	byteOrder.PutUint32(buf[:LengthPrefixSize], uint32(len(payload)))
	copy(buf[LengthPrefixSize:], payload)
	return buf
}
