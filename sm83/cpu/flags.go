package cpu

import (
	"fmt"

	"github.com/valerio/go-sm83/sm83/bit"
)

// Flag is one of the 4 flags in the high nibble of F. Its value is the bit
// index inside F.
type Flag uint8

const (
	Zero        Flag = 4
	HalfCarry   Flag = 5
	Subtraction Flag = 6
	Carry       Flag = 7
)

// Flags lists the flags from the lowest bit upward.
var Flags = [...]Flag{Zero, HalfCarry, Subtraction, Carry}

func (f Flag) String() string {
	switch f {
	case Zero:
		return "Z"
	case HalfCarry:
		return "H"
	case Subtraction:
		return "N"
	case Carry:
		return "C"
	default:
		return fmt.Sprintf("Flag(%d)", uint8(f))
	}
}

// Flag reports whether f is set in F.
func (c *CPU) Flag(f Flag) (bool, error) {
	v, err := c.Get8(Reg(F))
	if err != nil {
		return false, err
	}
	return bit.IsSet(uint8(f), v), nil
}

// SetFlag sets or clears f, leaving every other bit of F untouched.
func (c *CPU) SetFlag(f Flag, on bool) error {
	v, err := c.Get8(Reg(F))
	if err != nil {
		return err
	}
	return c.Set8(Reg(F), bit.SetTo(uint8(f), v, on))
}
