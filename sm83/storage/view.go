package storage

import "github.com/valerio/go-sm83/sm83/bit"

// View is a window onto a Store. It is a small value: copying a view never
// copies the underlying bytes. A view either spans the store from its base
// to the end, or a fixed sub-range of it when created with Sub.
type View struct {
	store   *Store
	base    int
	length  int
	bounded bool
	mode8   Mode
	mode16  Mode
}

// Len returns the number of bytes currently addressable through the view.
func (v View) Len() int {
	n := v.store.Len() - v.base
	if n < 0 {
		return 0
	}
	if v.bounded && v.length < n {
		return v.length
	}
	return n
}

// Mode8 returns the access mode for 8-bit accesses.
func (v View) Mode8() Mode { return v.mode8 }

// Mode16 returns the access mode for 16-bit accesses.
func (v View) Mode16() Mode { return v.mode16 }

// Duplicate returns a view over the same bytes and range with other modes.
func (v View) Duplicate(mode8, mode16 Mode) View {
	v.mode8 = mode8
	v.mode16 = mode16
	return v
}

// Sub returns a view narrowed to length bytes starting at offset, keeping
// the access modes of v.
func (v View) Sub(offset, length int) (View, error) {
	if offset < 0 || length < 0 || offset+length > v.Len() {
		return View{}, &RangeError{Op: "sub", Offset: offset, Width: length, Len: v.Len()}
	}
	v.base += offset
	v.length = length
	v.bounded = true
	return v, nil
}

func (v View) index(op string, offset uint16, width int) (int, error) {
	if int(offset)+width > v.Len() {
		return 0, &RangeError{Op: op, Offset: int(offset), Width: width, Len: v.Len()}
	}
	return v.base + int(offset), nil
}

// Read8 reads the byte at offset.
func (v View) Read8(offset uint16) (uint8, error) {
	if !v.mode8.CanRead() {
		return 0, &AccessError{Op: "read", Offset: offset, Width: 8, Mode: v.mode8}
	}
	i, err := v.index("read8", offset, 1)
	if err != nil {
		return 0, err
	}
	return v.store.data[i], nil
}

// Write8 writes value at offset.
func (v View) Write8(offset uint16, value uint8) error {
	if !v.mode8.CanWrite() {
		return &AccessError{Op: "write", Offset: offset, Width: 8, Mode: v.mode8}
	}
	i, err := v.index("write8", offset, 1)
	if err != nil {
		return err
	}
	v.store.data[i] = value
	return nil
}

// Read16 reads the little-endian word at offset.
func (v View) Read16(offset uint16) (uint16, error) {
	if !v.mode16.CanRead() {
		return 0, &AccessError{Op: "read", Offset: offset, Width: 16, Mode: v.mode16}
	}
	i, err := v.index("read16", offset, 2)
	if err != nil {
		return 0, err
	}
	return bit.Combine(v.store.data[i+1], v.store.data[i]), nil
}

// Write16 writes value at offset, low byte first.
func (v View) Write16(offset uint16, value uint16) error {
	if !v.mode16.CanWrite() {
		return &AccessError{Op: "write", Offset: offset, Width: 16, Mode: v.mode16}
	}
	i, err := v.index("write16", offset, 2)
	if err != nil {
		return err
	}
	v.store.data[i] = bit.Low(value)
	v.store.data[i+1] = bit.High(value)
	return nil
}
