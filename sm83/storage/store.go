// Package storage provides shared byte buffers and permissioned views onto
// them. The same bytes can be exposed as 8-bit and 16-bit quantities through
// different views, each allowing only the widths and directions it was
// created with.
package storage

// Mode is the access a view permits for a single access width.
type Mode uint8

const (
	None Mode = iota
	ReadOnly
	ReadWrite
)

func (m Mode) String() string {
	switch m {
	case None:
		return "none"
	case ReadOnly:
		return "read-only"
	case ReadWrite:
		return "read-write"
	default:
		return "unknown"
	}
}

// CanRead reports whether reads are permitted.
func (m Mode) CanRead() bool { return m == ReadOnly || m == ReadWrite }

// CanWrite reports whether writes are permitted.
func (m Mode) CanWrite() bool { return m == ReadWrite }

// Store owns a resizable byte buffer shared by every view created over it.
type Store struct {
	data []byte
}

// NewStore returns a zero filled store of the given size.
func NewStore(size int) *Store {
	return &Store{data: make([]byte, size)}
}

// NewStoreFrom returns a store holding a copy of b.
func NewStoreFrom(b []byte) *Store {
	data := make([]byte, len(b))
	copy(data, b)
	return &Store{data: data}
}

// Len returns the current length of the buffer.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.data)
}

// Resize grows the buffer with zero bytes or truncates it. Views over the
// store observe the new length on their next access.
func (s *Store) Resize(size int) {
	switch {
	case size < len(s.data):
		s.data = s.data[:size]
	case size > len(s.data):
		s.data = append(s.data, make([]byte, size-len(s.data))...)
	}
}

// Bytes returns a copy of the buffer.
func (s *Store) Bytes() []byte {
	out := make([]byte, len(s.data))
	copy(out, s.data)
	return out
}

// CopyTo copies the buffer into dst and returns the number of bytes copied.
func (s *Store) CopyTo(dst []byte) int {
	return copy(dst, s.data)
}

// CopyFrom overwrites the start of the buffer with src, never growing it,
// and returns the number of bytes copied.
func (s *Store) CopyFrom(src []byte) int {
	return copy(s.data, src)
}

// View returns a view over the whole store with the given access modes.
func (s *Store) View(mode8, mode16 Mode) View {
	return View{store: s, mode8: mode8, mode16: mode16}
}
