// Package pktline reads and writes the length-prefixed line framing used
// by the Smart HTTP transfer protocol. Each unit is a 4-hex-digit length
// (counting the prefix itself) followed by that many payload bytes; the
// length "0000" is a flush marker ending a logical message.
package pktline

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// MaxPayloadLen is the maximum length of a pkt-line payload.
const MaxPayloadLen = 65520

// ErrProtocol reports a malformed pkt-line or a wire-protocol violation.
// The remote client reuses this sentinel for all protocol-level failures.
var ErrProtocol = errors.New("protocol error")

// A Reader reads pkt-line records from an underlying reader.
type Reader struct {
	r *bufio.Reader
}

// NewReader creates a new Reader from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// ReadLine returns the payload of the next pkt-line. A flush marker decodes
// as (nil, nil) — end of logical message, not an error. io.EOF is returned
// at the end of the underlying stream.
func (r *Reader) ReadLine() ([]byte, error) {
	var prefix [4]byte
	if _, err := io.ReadFull(r.r, prefix[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("%w: truncated length prefix", ErrProtocol)
		}
		return nil, err
	}

	n, err := strconv.ParseUint(string(prefix[:]), 16, 32)
	if err != nil {
		return nil, fmt.Errorf("%w: bad length prefix %q", ErrProtocol, prefix)
	}
	if n == 0 {
		return nil, nil // flush-pkt
	}
	if n < 4 {
		return nil, fmt.Errorf("%w: declared length %d below prefix size", ErrProtocol, n)
	}
	if n-4 > MaxPayloadLen {
		return nil, fmt.Errorf("%w: declared length %d exceeds maximum", ErrProtocol, n)
	}

	payload := make([]byte, n-4)
	if _, err := io.ReadFull(r.r, payload); err != nil {
		return nil, fmt.Errorf("%w: truncated payload: %v", ErrProtocol, err)
	}
	return payload, nil
}

// ReadLineString behaves like ReadLine with the payload as a string. A
// flush marker decodes as ("", nil).
func (r *Reader) ReadLineString() (string, error) {
	p, err := r.ReadLine()
	return string(p), err
}

// Raw exposes the buffered remainder of the stream. The pack payload of a
// negotiation response follows the framed portion unframed, so the caller
// must continue from the same buffer.
func (r *Reader) Raw() *bufio.Reader {
	return r.r
}

// A Writer writes pkt-line records to an underlying writer.
type Writer struct {
	w io.Writer
}

// NewWriter creates a new Writer from w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Flush writes the flush marker.
func (w *Writer) Flush() error {
	_, err := w.w.Write([]byte("0000"))
	return err
}

// WriteLine writes p as a single pkt-line record. An empty payload writes
// the flush marker.
func (w *Writer) WriteLine(p []byte) error {
	if len(p) == 0 {
		return w.Flush()
	}
	if len(p) > MaxPayloadLen {
		return fmt.Errorf("%w: payload length %d exceeds maximum", ErrProtocol, len(p))
	}
	if _, err := fmt.Fprintf(w.w, "%04x", len(p)+4); err != nil {
		return err
	}
	_, err := w.w.Write(p)
	return err
}

// WriteLineString writes s as a single pkt-line record.
func (w *Writer) WriteLineString(s string) error {
	return w.WriteLine([]byte(s))
}
