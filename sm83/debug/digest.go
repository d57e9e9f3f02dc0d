package debug

import (
	"github.com/cespare/xxhash"
	"github.com/valerio/go-sm83/sm83/memory"
)

// RegionDigest hashes the bytes of one memory region.
func RegionDigest(m *memory.MMU, r memory.Region) uint64 {
	return xxhash.Sum64(m.Dump(r))
}

// MemoryDigest hashes every mapped region in address order, so two machines
// with equal digests hold the same memory contents.
func MemoryDigest(m *memory.MMU) uint64 {
	h := xxhash.New()
	for _, r := range memory.Regions() {
		_, _ = h.Write(m.Dump(r))
	}
	return h.Sum64()
}
