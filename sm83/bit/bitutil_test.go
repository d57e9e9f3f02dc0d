package bit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCombine(t *testing.T) {
	tests := []struct {
		high, low uint8
		expected  uint16
	}{
		{0xAB, 0xCD, 0xABCD},
		{0x00, 0x00, 0x0000},
		{0xFF, 0xFF, 0xFFFF},
		{0x12, 0x34, 0x1234},
	}

	for _, tt := range tests {
		result := Combine(tt.high, tt.low)
		if result != tt.expected {
			t.Errorf("Combine(%X, %X) = %X; want %X", tt.high, tt.low, result, tt.expected)
		}
	}
}

func TestLowHigh(t *testing.T) {
	assert.Equal(t, uint8(0xCD), Low(0xABCD))
	assert.Equal(t, uint8(0xAB), High(0xABCD))
	assert.Equal(t, uint16(0xABCD), Combine(High(0xABCD), Low(0xABCD)))
}

func TestSetClear(t *testing.T) {
	tests := []struct {
		name  string
		index uint8
		value uint8
		set   uint8
		clear uint8
	}{
		{"bit 0", 0, 0b0000_0000, 0b0000_0001, 0b0000_0000},
		{"bit 4 already set", 4, 0b0001_0000, 0b0001_0000, 0b0000_0000},
		{"bit 7 keeps others", 7, 0b0101_0101, 0b1101_0101, 0b0101_0101},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.set, Set(tt.index, tt.value))
			assert.Equal(t, tt.clear, Clear(tt.index, tt.value))
			assert.True(t, IsSet(tt.index, Set(tt.index, tt.value)))
			assert.False(t, IsSet(tt.index, Clear(tt.index, tt.value)))
			assert.Equal(t, Set(tt.index, tt.value), SetTo(tt.index, tt.value, true))
			assert.Equal(t, Clear(tt.index, tt.value), SetTo(tt.index, tt.value, false))
		})
	}
}

func TestSwap(t *testing.T) {
	assert.Equal(t, uint8(0x21), Swap(0x12))
	assert.Equal(t, uint8(0x0F), Swap(0xF0))
}

func TestHalfCarry(t *testing.T) {
	assert.True(t, HalfCarryAdd(0x0F, 0x01, 0))
	assert.False(t, HalfCarryAdd(0x0E, 0x01, 0))
	assert.True(t, HalfCarryAdd(0x0E, 0x01, 1))
	assert.True(t, HalfBorrowSub(0x10, 0x01, 0))
	assert.False(t, HalfBorrowSub(0x11, 0x01, 0))
}
