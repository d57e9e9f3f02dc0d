// Package memory decodes the 16-bit address space into its backing regions.
package memory

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/valerio/go-sm83/sm83/addr"
	"github.com/valerio/go-sm83/sm83/bit"
	"github.com/valerio/go-sm83/sm83/storage"
)

// Region is one of the backing windows of the address space.
type Region uint8

const (
	ROM Region = iota
	WRAM
	IO
	HRAM
	IE
	regionCount
)

var regionNames = [regionCount]string{
	ROM:  "ROM",
	WRAM: "WRAM",
	IO:   "IO",
	HRAM: "HRAM",
	IE:   "IE",
}

func (r Region) String() string {
	if r < regionCount {
		return regionNames[r]
	}
	return fmt.Sprintf("Region(%d)", uint8(r))
}

type window struct {
	region     Region
	start, end uint16
}

var windows = [regionCount]window{
	{ROM, addr.ROMStart, addr.ROMEnd},
	{WRAM, addr.WRAMStart, addr.WRAMEnd},
	{IO, addr.IOStart, addr.IOEnd},
	{HRAM, addr.HRAMStart, addr.HRAMEnd},
	{IE, addr.IE, addr.IE},
}

// ROMSize is the size of the fixed ROM window.
const ROMSize = int(addr.ROMEnd) - int(addr.ROMStart) + 1

// ErrROMTooLarge is returned by New when the image does not fit the ROM window.
var ErrROMTooLarge = errors.New("rom too large")

// UnmappedError is returned for addresses outside every region.
type UnmappedError struct {
	Address uint16
}

func (e *UnmappedError) Error() string {
	return fmt.Sprintf("%s: address 0x%04X is not mapped", storage.ErrMemoryFault, e.Address)
}

func (e *UnmappedError) Unwrap() error { return storage.ErrMemoryFault }

// Regions returns every mapped region in address order.
func Regions() []Region {
	return []Region{ROM, WRAM, IO, HRAM, IE}
}

// Bounds returns the first and last address of a region.
func (r Region) Bounds() (start, end uint16) {
	w := windows[r]
	return w.start, w.end
}

// Option configures an MMU.
type Option func(*MMU)

// WithReadOnlyROM makes the ROM window reject writes of either width.
func WithReadOnlyROM() Option {
	return func(m *MMU) {
		m.readOnlyROM = true
	}
}

// MMU owns one store per region and resolves addresses to views over them.
type MMU struct {
	views       [regionCount]storage.View
	readOnlyROM bool
}

// New builds the address space around a ROM image. The image is zero padded
// to the size of the ROM window.
func New(rom []byte, opts ...Option) (*MMU, error) {
	if len(rom) > ROMSize {
		return nil, fmt.Errorf("%w: %d bytes, window holds %d", ErrROMTooLarge, len(rom), ROMSize)
	}

	m := &MMU{}
	for _, opt := range opts {
		opt(m)
	}

	romStore := storage.NewStoreFrom(rom)
	romStore.Resize(ROMSize)
	romMode := storage.ReadWrite
	if m.readOnlyROM {
		romMode = storage.ReadOnly
	}
	m.views[ROM] = romStore.View(romMode, romMode)

	for _, w := range windows[WRAM:] {
		m.views[w.region] = storage.NewStore(addr.Size(w.start, w.end)).View(storage.ReadWrite, storage.ReadWrite)
	}

	slog.Debug("Memory map initialized", "rom_bytes", len(rom), "read_only_rom", m.readOnlyROM)
	return m, nil
}

// Decode returns the region holding address, a view over it and the
// region-relative offset.
func (m *MMU) Decode(address uint16) (Region, storage.View, uint16, error) {
	for _, w := range windows {
		if address >= w.start && address <= w.end {
			return w.region, m.views[w.region], address - w.start, nil
		}
	}
	return 0, storage.View{}, 0, &UnmappedError{Address: address}
}

// View returns the view backing a region.
func (m *MMU) View(r Region) storage.View {
	return m.views[r]
}

// Dump returns a copy of a region's bytes, ignoring access modes.
func (m *MMU) Dump(r Region) []byte {
	v := m.views[r].Duplicate(storage.ReadOnly, storage.None)
	out := make([]byte, v.Len())
	for i := range out {
		out[i], _ = v.Read8(uint16(i))
	}
	return out
}

func annotate(r Region, address uint16, err error) error {
	return fmt.Errorf("%s 0x%04X: %w", r, address, err)
}

// Read8 reads the byte at address.
func (m *MMU) Read8(address uint16) (uint8, error) {
	r, v, offset, err := m.Decode(address)
	if err != nil {
		return 0, err
	}
	value, err := v.Read8(offset)
	if err != nil {
		return 0, annotate(r, address, err)
	}
	return value, nil
}

// Write8 writes value at address.
func (m *MMU) Write8(address uint16, value uint8) error {
	r, v, offset, err := m.Decode(address)
	if err != nil {
		return err
	}
	if err := v.Write8(offset, value); err != nil {
		return annotate(r, address, err)
	}
	return nil
}

// half is one byte of a word that straddles two regions, viewed with the
// 16-bit access mode of its region.
type half struct {
	region Region
	view   storage.View
	offset uint16
}

// split resolves a word at address whose second byte lies in the next
// region. ok is false when the word fits in one region or cannot be split.
func (m *MMU) split(r Region, address uint16, v storage.View, offset uint16) (lo, hi half, ok bool, err error) {
	if int(offset)+2 <= v.Len() || address == 0xFFFF {
		return half{}, half{}, false, nil
	}
	hiRegion, hiView, hiOffset, err := m.Decode(address + 1)
	if err != nil {
		return half{}, half{}, false, err
	}
	lo = half{r, v.Duplicate(v.Mode16(), storage.None), offset}
	hi = half{hiRegion, hiView.Duplicate(hiView.Mode16(), storage.None), hiOffset}
	return lo, hi, true, nil
}

// Read16 reads the little-endian word at address.
func (m *MMU) Read16(address uint16) (uint16, error) {
	r, v, offset, err := m.Decode(address)
	if err != nil {
		return 0, err
	}
	lo, hi, split, err := m.split(r, address, v, offset)
	if err != nil {
		return 0, err
	}
	if !split {
		value, err := v.Read16(offset)
		if err != nil {
			return 0, annotate(r, address, err)
		}
		return value, nil
	}

	low, err := lo.view.Read8(lo.offset)
	if err != nil {
		return 0, annotate(lo.region, address, err)
	}
	high, err := hi.view.Read8(hi.offset)
	if err != nil {
		return 0, annotate(hi.region, address+1, err)
	}
	return bit.Combine(high, low), nil
}

// Write16 writes value at address, low byte first. Nothing is written
// unless both bytes are writable.
func (m *MMU) Write16(address uint16, value uint16) error {
	r, v, offset, err := m.Decode(address)
	if err != nil {
		return err
	}
	lo, hi, split, err := m.split(r, address, v, offset)
	if err != nil {
		return err
	}
	if !split {
		if err := v.Write16(offset, value); err != nil {
			return annotate(r, address, err)
		}
		return nil
	}

	for _, h := range []half{lo, hi} {
		if !h.view.Mode8().CanWrite() {
			err := &storage.AccessError{Op: "write", Offset: h.offset, Width: 16, Mode: h.view.Mode8()}
			return annotate(h.region, address, err)
		}
	}
	if err := lo.view.Write8(lo.offset, bit.Low(value)); err != nil {
		return annotate(lo.region, address, err)
	}
	if err := hi.view.Write8(hi.offset, bit.High(value)); err != nil {
		return annotate(hi.region, address+1, err)
	}
	return nil
}
