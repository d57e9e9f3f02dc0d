package cpu

import (
	"fmt"

	"github.com/valerio/go-sm83/sm83/storage"
)

// Register names an 8-bit register, a 16-bit register pair or IME.
type Register uint8

const (
	A Register = iota
	F
	B
	C
	D
	E
	H
	L
	AF
	BC
	DE
	HL
	SP
	PC
	IME
	registerCount
)

var registerNames = [registerCount]string{
	A: "A", F: "F", B: "B", C: "C", D: "D", E: "E", H: "H", L: "L",
	AF: "AF", BC: "BC", DE: "DE", HL: "HL", SP: "SP", PC: "PC",
	IME: "IME",
}

func (r Register) String() string {
	if r < registerCount {
		return registerNames[r]
	}
	return fmt.Sprintf("Register(%d)", uint8(r))
}

// Wide reports whether r is one of the 16-bit registers.
func (r Register) Wide() bool {
	return r >= AF && r <= PC
}

// byte offsets inside the register file; the halves of a pair sit low byte
// first so that the pair reads back little-endian.
var registerOffsets = [registerCount]uint16{
	F: 0, A: 1, C: 2, B: 3, E: 4, D: 5, L: 6, H: 7,
	AF: 0, BC: 2, DE: 4, HL: 6, SP: 8, PC: 10,
}

const registerFileSize = 12

// registerFile is one 12-byte store seen through two views over the same
// bytes: one that only allows 8-bit access and one that only allows 16-bit
// access. IME lives in a store of its own.
type registerFile struct {
	store *storage.Store
	bytes storage.View
	words storage.View

	imeStore *storage.Store
	ime      storage.View
}

func newRegisterFile() *registerFile {
	store := storage.NewStore(registerFileSize)
	bytes := store.View(storage.ReadWrite, storage.None)
	imeStore := storage.NewStore(1)

	return &registerFile{
		store:    store,
		bytes:    bytes,
		words:    bytes.Duplicate(storage.None, storage.ReadWrite),
		imeStore: imeStore,
		ime:      imeStore.View(storage.ReadWrite, storage.None),
	}
}

func (rf *registerFile) view(r Register) (storage.View, uint16, error) {
	switch {
	case r == IME:
		return rf.ime, 0, nil
	case r.Wide():
		return rf.words, registerOffsets[r], nil
	case r < AF:
		return rf.bytes, registerOffsets[r], nil
	default:
		return storage.View{}, 0, fmt.Errorf("%w: no such register %s", storage.ErrAccessViolation, r)
	}
}

type registerSnapshot [registerFileSize + 1]byte

func (rf *registerFile) save() registerSnapshot {
	var s registerSnapshot
	rf.store.CopyTo(s[:registerFileSize])
	rf.imeStore.CopyTo(s[registerFileSize:])
	return s
}

func (rf *registerFile) restore(s registerSnapshot) {
	rf.store.CopyFrom(s[:registerFileSize])
	rf.imeStore.CopyFrom(s[registerFileSize:])
}

// Loc is a named location: a register, IME or a memory address.
type Loc struct {
	reg     Register
	address uint16
	memory  bool
}

// Reg returns the location of a register.
func Reg(r Register) Loc {
	return Loc{reg: r}
}

// Mem returns the location of a memory address.
func Mem(address uint16) Loc {
	return Loc{address: address, memory: true}
}

func (l Loc) String() string {
	if l.memory {
		return fmt.Sprintf("(0x%04X)", l.address)
	}
	return l.reg.String()
}
