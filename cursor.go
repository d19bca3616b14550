package smfreader

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// A forward-only reader over an in-memory buffer. Every read is bounds
// checked; a read that fails leaves the position where it was.
type ByteCursor struct {
	data []byte
	pos  int
}

func NewByteCursor(data []byte) *ByteCursor {
	return &ByteCursor{
		data: data,
	}
}

// Returns the number of unread bytes.
func (c *ByteCursor) Remaining() int {
	return len(c.data) - c.pos
}

// Returns the offset of the next unread byte, relative to the start of the
// buffer.
func (c *ByteCursor) Position() int {
	return c.pos
}

func (c *ByteCursor) outOfBounds(n int) error {
	return errors.Wrapf(ErrOutOfBounds, "Need %d byte(s) at offset %d, but "+
		"only %d remain", n, c.pos, c.Remaining())
}

// Returns the next byte without consuming it.
func (c *ByteCursor) Peek() (uint8, error) {
	if c.Remaining() < 1 {
		return 0, c.outOfBounds(1)
	}
	return c.data[c.pos], nil
}

func (c *ByteCursor) ReadU8() (uint8, error) {
	b, e := c.Peek()
	if e != nil {
		return 0, e
	}
	c.pos++
	return b, nil
}

// Consumes and returns the next n bytes. The returned slice aliases the
// cursor's buffer.
func (c *ByteCursor) ReadBytes(n int) ([]byte, error) {
	if (n < 0) || (n > c.Remaining()) {
		return nil, c.outOfBounds(n)
	}
	toReturn := c.data[c.pos : c.pos+n : c.pos+n]
	c.pos += n
	return toReturn, nil
}

// Skips n bytes.
func (c *ByteCursor) Advance(n int) error {
	_, e := c.ReadBytes(n)
	return e
}

// Reads a big-endian 16-bit integer.
func (c *ByteCursor) ReadU16() (uint16, error) {
	b, e := c.ReadBytes(2)
	if e != nil {
		return 0, e
	}
	return binary.BigEndian.Uint16(b), nil
}

// Reads a big-endian 32-bit integer.
func (c *ByteCursor) ReadU32() (uint32, error) {
	b, e := c.ReadBytes(4)
	if e != nil {
		return 0, e
	}
	return binary.BigEndian.Uint32(b), nil
}
