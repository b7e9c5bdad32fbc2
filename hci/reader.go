package hci

import (
	"encoding/binary"

	"github.com/pkg/errors"
	ble "github.com/rigado/ble-spi"
)

// Reader consumes a byte slice front to back. Reads past the end fail with
// ble.ErrMalformedFrame and leave the offset untouched.
type Reader struct {
	b   []byte
	off int
}

// NewReader ...
func NewReader(b []byte) *Reader {
	return &Reader{b: b}
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int {
	return r.off
}

// Len returns the number of unread bytes.
func (r *Reader) Len() int {
	return len(r.b) - r.off
}

// Rest returns the unread bytes without consuming them.
func (r *Reader) Rest() []byte {
	return r.b[r.off:]
}

// Skip consumes n bytes.
func (r *Reader) Skip(n int) error {
	_, err := r.Bytes(n)
	return err
}

// Uint8 ...
func (r *Reader) Uint8() (uint8, error) {
	bb, err := r.Bytes(1)
	if err != nil {
		return 0, err
	}
	return bb[0], nil
}

// Uint16LE ...
func (r *Reader) Uint16LE() (uint16, error) {
	bb, err := r.Bytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(bb), nil
}

// Bytes consumes and returns the next n bytes.
func (r *Reader) Bytes(n int) ([]byte, error) {
	if n < 0 || r.off+n > len(r.b) {
		return nil, errors.Wrapf(ble.ErrMalformedFrame, "need %v bytes at offset %v, have %v", n, r.off, r.Len())
	}
	bb := r.b[r.off : r.off+n]
	r.off += n
	return bb, nil
}
