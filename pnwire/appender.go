// Package pnwire implements the bit-exact wire codec shared by the PPM and
// LLDP engines: a bounded (buf, pos) appender plus the Ethernet/VLAN and
// LLDP TLV field layouts described by the PROFINET and IEEE 802.1AB specs.
package pnwire

import (
	"encoding/binary"
	"errors"
)

// FrameBufferSize is the hard cap on any frame this stack constructs,
// matching PF_FRAME_BUFFER_SIZE (max Ethernet frame with one VLAN tag).
const FrameBufferSize = 1522

// ErrOverflow is returned by any write that would run past the end of the
// backing buffer.
var ErrOverflow = errors.New("pnwire: write overflows frame buffer")

// ErrUnderflow is returned by any read that would run past the end of the
// backing buffer.
var ErrUnderflow = errors.New("pnwire: read underflows frame buffer")

// Appender is a fail-fast writer over a fixed-capacity byte slice. It never
// grows the slice; a write that would not fit returns ErrOverflow and
// leaves pos unchanged.
type Appender struct {
	buf []byte
	pos int
}

// NewAppender wraps buf for writing starting at offset 0.
func NewAppender(buf []byte) *Appender {
	return &Appender{buf: buf}
}

// NewAppenderAt wraps buf for writing starting at the given offset, used
// when the caller has already written a fixed header out of band.
func NewAppenderAt(buf []byte, pos int) *Appender {
	return &Appender{buf: buf, pos: pos}
}

// Pos returns the current write offset.
func (a *Appender) Pos() int { return a.pos }

// Remaining returns the number of bytes left before overflow.
func (a *Appender) Remaining() int { return len(a.buf) - a.pos }

// Bytes returns the written prefix of the backing buffer.
func (a *Appender) Bytes() []byte { return a.buf[:a.pos] }

func (a *Appender) reserve(n int) error {
	if a.pos+n > len(a.buf) {
		return ErrOverflow
	}
	return nil
}

// PutBytes appends b verbatim.
func (a *Appender) PutBytes(b []byte) error {
	if err := a.reserve(len(b)); err != nil {
		return err
	}
	copy(a.buf[a.pos:], b)
	a.pos += len(b)
	return nil
}

// PutUint8 appends a single byte.
func (a *Appender) PutUint8(v uint8) error {
	if err := a.reserve(1); err != nil {
		return err
	}
	a.buf[a.pos] = v
	a.pos++
	return nil
}

// PutUint16 appends v big-endian.
func (a *Appender) PutUint16(v uint16) error {
	if err := a.reserve(2); err != nil {
		return err
	}
	binary.BigEndian.PutUint16(a.buf[a.pos:], v)
	a.pos += 2
	return nil
}

// PutUint32 appends v big-endian.
func (a *Appender) PutUint32(v uint32) error {
	if err := a.reserve(4); err != nil {
		return err
	}
	binary.BigEndian.PutUint32(a.buf[a.pos:], v)
	a.pos += 4
	return nil
}

// Reader is the read-side counterpart of Appender, used to decode frames
// received off the wire.
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps buf for reading starting at the given offset (the caller
// has already consumed any leading Ethernet header).
func NewReader(buf []byte, pos int) *Reader {
	return &Reader{buf: buf, pos: pos}
}

// Pos returns the current read offset.
func (r *Reader) Pos() int { return r.pos }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

func (r *Reader) need(n int) error {
	if r.pos+n > len(r.buf) {
		return ErrUnderflow
	}
	return nil
}

// GetUint8 reads a single byte.
func (r *Reader) GetUint8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

// GetUint16 reads a big-endian uint16.
func (r *Reader) GetUint16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v, nil
}

// GetBytes reads n raw bytes.
func (r *Reader) GetBytes(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// Skip advances the read cursor by n bytes without returning them, used to
// discard unknown TLV payloads.
func (r *Reader) Skip(n int) error {
	if err := r.need(n); err != nil {
		return err
	}
	r.pos += n
	return nil
}
