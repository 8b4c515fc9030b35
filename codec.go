package voevent

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"net"

	"github.com/pkg/errors"
)

// PrefixLen is the width of the big-endian length prefix in front of every payload.
const PrefixLen = 4

// preallocLimit is the largest payload allocated in full before reading.
// Larger payloads grow with the bytes actually received.
const preallocLimit = 64 * 1024

// Errors returned by the framing codec.
var (
	// ErrEndOfStream is returned when the peer closed the stream, either
	// before a frame started or in the middle of one.
	ErrEndOfStream = errors.New("end of stream")
	// ErrFrameTooLarge is returned when a payload does not fit the length
	// prefix or exceeds the configured maximum frame size.
	ErrFrameTooLarge = errors.New("frame too large")
)

// TransportError reports a read failure on the underlying stream.
// It never describes a graceful close; that is ErrEndOfStream.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the failure was a read deadline expiring.
func (e *TransportError) Timeout() bool {
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// Frame is a single payload extracted from the stream.
type Frame []byte

// Length returns the payload length.
func (f Frame) Length() int {
	return len(f)
}

// Body returns the raw payload bytes.
func (f Frame) Body() []byte {
	return f
}

// Codec is the interface for frame encoding and decoding.
//
// Decode reads from an io.Reader so that the codec controls exactly how many
// bytes are consumed, which takes care of TCP stream reassembly.
type Codec interface {
	// Decode reads one complete frame. It returns ErrEndOfStream when the
	// peer closed the stream and a *TransportError for any other read failure.
	Decode(r io.Reader) (Frame, error)
	// Encode returns the wire representation of a frame.
	Encode(Frame) ([]byte, error)
}

// LengthPrefixCodec implements the VOEvent Transport Protocol framing:
// a 4-byte big-endian unsigned length followed by that many payload bytes.
type LengthPrefixCodec struct {
	// MaxFrameSize bounds the declared payload length. Zero means no limit.
	MaxFrameSize uint32
}

// Decode implements Codec.
func (c LengthPrefixCodec) Decode(r io.Reader) (Frame, error) {
	var prefix [PrefixLen]byte
	if err := readFull(r, prefix[:], "read length prefix"); err != nil {
		return nil, err
	}

	n := binary.BigEndian.Uint32(prefix[:])
	if c.MaxFrameSize > 0 && n > c.MaxFrameSize {
		return nil, &TransportError{
			Op:  "read length prefix",
			Err: errors.Wrapf(ErrFrameTooLarge, "declared %d bytes, limit %d", n, c.MaxFrameSize),
		}
	}

	payload, err := readPayload(r, n)
	if err != nil {
		return nil, err
	}
	return Frame(payload), nil
}

// Encode implements Codec.
func (c LengthPrefixCodec) Encode(f Frame) ([]byte, error) {
	if uint64(len(f)) > math.MaxUint32 {
		return nil, errors.Wrapf(ErrFrameTooLarge, "payload of %d bytes", len(f))
	}
	if c.MaxFrameSize > 0 && uint32(len(f)) > c.MaxFrameSize {
		return nil, errors.Wrapf(ErrFrameTooLarge, "payload of %d bytes, limit %d", len(f), c.MaxFrameSize)
	}

	buf := make([]byte, PrefixLen+len(f))
	binary.BigEndian.PutUint32(buf, uint32(len(f)))
	copy(buf[PrefixLen:], f)
	return buf, nil
}

// Encode frames payload with the default codec.
func Encode(payload []byte) ([]byte, error) {
	return LengthPrefixCodec{}.Encode(payload)
}

// ReadFrame reads the next frame from r with the default codec.
func ReadFrame(r io.Reader) (Frame, error) {
	return LengthPrefixCodec{}.Decode(r)
}

// WriteFrame encodes payload and writes it to w in a single call.
func WriteFrame(w io.Writer, payload []byte) error {
	buf, err := Encode(payload)
	if err != nil {
		return err
	}
	_, err = w.Write(buf)
	return err
}

// readFull fills p, accumulating short reads. A stream that ends before p is
// full, even after some bytes, is a graceful close.
func readFull(r io.Reader, p []byte, op string) error {
	_, err := io.ReadFull(r, p)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return ErrEndOfStream
	default:
		return &TransportError{Op: op, Err: err}
	}
}

// readPayload reads exactly n bytes. The declared length is not trusted for
// allocation: beyond preallocLimit the buffer only grows as data arrives.
func readPayload(r io.Reader, n uint32) ([]byte, error) {
	if n <= preallocLimit {
		payload := make([]byte, n)
		if err := readFull(r, payload, "read payload"); err != nil {
			return nil, err
		}
		return payload, nil
	}

	var buf bytes.Buffer
	buf.Grow(preallocLimit)
	_, err := io.CopyN(&buf, r, int64(n))
	switch {
	case err == nil:
		return buf.Bytes(), nil
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return nil, ErrEndOfStream
	default:
		return nil, &TransportError{Op: "read payload", Err: err}
	}
}
