package storage

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestView_roundTrip16(t *testing.T) {
	v := NewStore(4).View(ReadWrite, ReadWrite)

	for _, value := range []uint16{0x0000, 0x00FF, 0x1234, 0xABCD, 0xFFFF} {
		require.NoError(t, v.Write16(1, value))

		got, err := v.Read16(1)
		require.NoError(t, err)
		assert.Equal(t, value, got)

		low, err := v.Read8(1)
		require.NoError(t, err)
		high, err := v.Read8(2)
		require.NoError(t, err)
		assert.Equal(t, uint8(value&0xFF), low)
		assert.Equal(t, uint8(value>>8), high)
	}
}

func TestView_accessModes(t *testing.T) {
	s := NewStore(2)
	bytes := s.View(ReadWrite, None)
	words := bytes.Duplicate(None, ReadWrite)
	rom := bytes.Duplicate(ReadOnly, ReadOnly)

	tests := []struct {
		name string
		op   func() error
	}{
		{"read16 through byte view", func() error { _, err := bytes.Read16(0); return err }},
		{"write16 through byte view", func() error { return bytes.Write16(0, 1) }},
		{"read8 through word view", func() error { _, err := words.Read8(0); return err }},
		{"write8 through word view", func() error { return words.Write8(0, 1) }},
		{"write8 read-only", func() error { return rom.Write8(0, 1) }},
		{"write16 read-only", func() error { return rom.Write16(0, 1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.op()
			assert.ErrorIs(t, err, ErrAccessViolation)

			var accessErr *AccessError
			assert.True(t, errors.As(err, &accessErr))
		})
	}

	_, err := rom.Read8(1)
	assert.NoError(t, err)
	_, err = rom.Read16(0)
	assert.NoError(t, err)
}

func TestView_bounds(t *testing.T) {
	v := NewStore(3).View(ReadWrite, ReadWrite)

	_, err := v.Read8(3)
	assert.ErrorIs(t, err, ErrMemoryFault)

	_, err = v.Read16(2)
	assert.ErrorIs(t, err, ErrMemoryFault, "second byte of a word must be in range")

	assert.ErrorIs(t, v.Write16(2, 0xFFFF), ErrMemoryFault)
	assert.NoError(t, v.Write16(1, 0xFFFF))
}

func TestView_sharesBytes(t *testing.T) {
	s := NewStore(4)
	bytes := s.View(ReadWrite, None)
	words := bytes.Duplicate(None, ReadWrite)

	require.NoError(t, bytes.Write8(2, 0x34))
	require.NoError(t, bytes.Write8(3, 0x12))

	got, err := words.Read16(2)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), got)

	require.NoError(t, words.Write16(0, 0xABCD))
	low, _ := bytes.Read8(0)
	high, _ := bytes.Read8(1)
	assert.Equal(t, uint8(0xCD), low)
	assert.Equal(t, uint8(0xAB), high)
}

func TestView_sub(t *testing.T) {
	s := NewStore(8)
	whole := s.View(ReadWrite, ReadWrite)

	sub, err := whole.Sub(4, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, sub.Len())

	require.NoError(t, sub.Write16(0, 0xBEEF))
	got, err := whole.Read16(4)
	require.NoError(t, err)
	assert.Equal(t, uint16(0xBEEF), got)

	_, err = sub.Read8(2)
	assert.ErrorIs(t, err, ErrMemoryFault)
	_, err = sub.Read16(1)
	assert.ErrorIs(t, err, ErrMemoryFault)

	_, err = whole.Sub(7, 2)
	assert.ErrorIs(t, err, ErrMemoryFault)

	dup := sub.Duplicate(ReadOnly, None)
	assert.Equal(t, 2, dup.Len())
	assert.ErrorIs(t, dup.Write8(0, 1), ErrAccessViolation)
}

func TestStore_resize(t *testing.T) {
	s := NewStoreFrom([]byte{1, 2, 3, 4})
	v := s.View(ReadWrite, ReadWrite)
	sub, err := v.Sub(2, 2)
	require.NoError(t, err)

	s.Resize(3)
	assert.Equal(t, 3, v.Len())
	assert.Equal(t, 1, sub.Len())
	_, err = sub.Read16(0)
	assert.ErrorIs(t, err, ErrMemoryFault)

	s.Resize(6)
	assert.Equal(t, 6, v.Len())
	assert.Equal(t, 2, sub.Len())
	got, err := v.Read8(4)
	require.NoError(t, err)
	assert.Zero(t, got)
	assert.Equal(t, []byte{1, 2, 3, 0, 0, 0}, s.Bytes())
}

func TestZeroView(t *testing.T) {
	var v View
	assert.Equal(t, 0, v.Len())
	_, err := v.Read8(0)
	assert.ErrorIs(t, err, ErrAccessViolation)
}
