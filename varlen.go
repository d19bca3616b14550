package smfreader

import (
	"github.com/pkg/errors"
)

// SMF variable-length quantities never exceed four bytes, which limits them
// to 0x0fffffff.
const maxVarLenBytes = 4

// Reads a MIDI-format variable-length quantity from c, returning its value and
// the number of bytes it occupied. Returns an ErrMalformedVarLen error if the
// cursor runs out of bytes before the quantity's final byte, or if the
// quantity is longer than 4 bytes. The cursor's position is unspecified after
// an error.
func ReadVarLen(c *ByteCursor) (uint32, int, error) {
	toReturn := uint32(0)
	for i := 0; i < maxVarLenBytes; i++ {
		b, e := c.ReadU8()
		if e != nil {
			return 0, i, errors.Wrapf(ErrMalformedVarLen, "Data ended after "+
				"%d byte(s) of a variable-length quantity", i)
		}
		toReturn = (toReturn << 7) | uint32(b&0x7f)
		if (b & 0x80) == 0 {
			return toReturn, i + 1, nil
		}
	}
	return 0, maxVarLenBytes, errors.Wrapf(ErrMalformedVarLen, "Highest bit "+
		"not clear on byte %d", maxVarLenBytes)
}
