package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-sm83/sm83/storage"
)

func writeROM(t *testing.T, code ...byte) string {
	t.Helper()
	image := make([]byte, 0x0100+len(code))
	copy(image[0x0100:], code)
	path := filepath.Join(t.TempDir(), "test.gb")
	require.NoError(t, os.WriteFile(path, image, 0o644))
	return path
}

func TestParsePC(t *testing.T) {
	tests := []struct {
		in      string
		want    uint16
		wantErr bool
	}{
		{"", 0, false},
		{"0x0150", 0x0150, false},
		{"336", 336, false},
		{"0xFFFF", 0xFFFF, false},
		{"0x10000", 0, true},
		{"start", 0, true},
	}

	for _, tt := range tests {
		got, err := parsePC(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseLogLevel(t *testing.T) {
	level, err := parseLogLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	level, err = parseLogLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	_, err = parseLogLevel("loud")
	assert.Error(t, err)
}

func TestRun_headless(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	rom := writeROM(t)

	err := newApp().Run([]string{"sm83", "--headless", "--steps", "32", "--batch", "8", "--log-level", "error", rom})
	assert.NoError(t, err)

	err = newApp().Run([]string{"sm83", "--headless", "--log-level", "error", "--rom", rom})
	assert.ErrorIs(t, err, storage.ErrMemoryFault)

	err = newApp().Run([]string{"sm83", "--headless", "--read-only-rom", "--log-level", "error", writeROM(t, 0x36, 0x00)})
	assert.ErrorIs(t, err, storage.ErrAccessViolation)
}

func TestRun_errors(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	rom := writeROM(t)

	assert.Error(t, newApp().Run([]string{"sm83", "--headless", "--pc", "nowhere", rom}))
	assert.Error(t, newApp().Run([]string{"sm83", "--headless", "--log-level", "loud", rom}))
	assert.Error(t, newApp().Run([]string{"sm83", "--headless", "--steps", "-1", rom}))
	assert.ErrorIs(t, newApp().Run([]string{"sm83", "--headless", filepath.Join(t.TempDir(), "missing.gb")}), os.ErrNotExist)
}
