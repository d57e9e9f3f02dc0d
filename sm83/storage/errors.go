package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrAccessViolation is returned when a view's access mode forbids the
	// requested width or direction.
	ErrAccessViolation = errors.New("access violation")
	// ErrMemoryFault is returned when an access falls outside the bytes a
	// view can address.
	ErrMemoryFault = errors.New("memory fault")
)

// AccessError describes an access rejected by a view's access mode.
type AccessError struct {
	Op     string
	Offset uint16
	Width  int
	Mode   Mode
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("%s: %s%d at offset 0x%04X with %s access", ErrAccessViolation, e.Op, e.Width, e.Offset, e.Mode)
}

func (e *AccessError) Unwrap() error { return ErrAccessViolation }

// RangeError describes an access that does not fit in a view.
type RangeError struct {
	Op     string
	Offset int
	Width  int
	Len    int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s: %s of %d byte(s) at offset 0x%04X outside view of length %d", ErrMemoryFault, e.Op, e.Width, e.Offset, e.Len)
}

func (e *RangeError) Unwrap() error { return ErrMemoryFault }
