package vm

import "encoding/binary"

// Memory is the flat byte image backing a running VM: ROM, writable RAM,
// and a zero-initialised extended-RAM tail, all addressed as one 32-bit
// space. It owns its backing slice for the lifetime of the VM.
//
// Bounds checking lives here, on every accessor; ROM-write protection lives
// in the Set* methods, because every writer in the interpreter (operand
// stores, MCOPY/MZERO, ASTORE*, ...) must honour it the same way.
type Memory struct {
	raw      []byte
	ramStart uint32
	extStart uint32
}

// NewMemory validates and wraps raw as a Memory. raw must be at least
// headerSize bytes and begin with the Glulx magic number. The returned
// Memory is zero-padded up to header.EndMem if raw is shorter.
func NewMemory(raw []byte) (*Memory, error) {
	if len(raw) < headerSize {
		return nil, &NotEnoughDataError{Got: len(raw)}
	}
	if !hasMagic(raw) {
		return nil, errBadMagic
	}

	hdr := parseHeader(raw)
	if err := validateLayout(hdr, len(raw)); err != nil {
		return nil, err
	}

	buf := make([]byte, hdr.EndMem)
	copy(buf, raw)

	return &Memory{raw: buf, ramStart: hdr.RAMStart, extStart: hdr.ExtStart}, nil
}

func validateLayout(hdr Header, rawLen int) error {
	if rawLen%4 != 0 {
		return &InconsistentLayoutError{Reason: "image length is not a multiple of 4"}
	}
	if !(hdr.RAMStart <= hdr.ExtStart && hdr.ExtStart <= hdr.EndMem) {
		return &InconsistentLayoutError{Reason: "header fields do not satisfy ram_start <= ext_start <= end_mem"}
	}
	if uint64(hdr.ExtStart) > uint64(rawLen) {
		return &InconsistentLayoutError{Reason: "image is shorter than ext_start"}
	}
	return nil
}

// Len reports the current size of the memory image, including the
// zero-initialised tail.
func (m *Memory) Len() uint32 {
	return uint32(len(m.raw))
}

// RAMStart is the boundary between read-only ROM and writable RAM.
func (m *Memory) RAMStart() uint32 {
	return m.ramStart
}

// Header re-parses and returns the current 36-byte prologue.
func (m *Memory) Header() Header {
	return parseHeader(m.raw)
}

func (m *Memory) checkRange(addr uint32, width int) error {
	end := uint64(addr) + uint64(width)
	if end > uint64(len(m.raw)) {
		return &AddressOutOfRangeError{Addr: addr, Width: width}
	}
	return nil
}

// GetU8 reads one byte at an absolute address.
func (m *Memory) GetU8(addr uint32) (uint8, error) {
	if err := m.checkRange(addr, 1); err != nil {
		return 0, err
	}
	return m.raw[addr], nil
}

// GetU16 reads a big-endian 16-bit word at an absolute address.
func (m *Memory) GetU16(addr uint32) (uint16, error) {
	if err := m.checkRange(addr, 2); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(m.raw[addr:]), nil
}

// GetU32 reads a big-endian 32-bit word at an absolute address.
func (m *Memory) GetU32(addr uint32) (uint32, error) {
	if err := m.checkRange(addr, 4); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(m.raw[addr:]), nil
}

// SetU8 writes one byte at an absolute address. Writes into [0, ramStart)
// are rejected.
func (m *Memory) SetU8(addr uint32, value uint8) error {
	if err := m.checkRange(addr, 1); err != nil {
		return err
	}
	if addr < m.ramStart {
		return &WriteToROMError{Addr: addr}
	}
	m.raw[addr] = value
	return nil
}

// SetU16 writes a big-endian 16-bit word at an absolute address.
func (m *Memory) SetU16(addr uint32, value uint16) error {
	if err := m.checkRange(addr, 2); err != nil {
		return err
	}
	if addr < m.ramStart {
		return &WriteToROMError{Addr: addr}
	}
	binary.BigEndian.PutUint16(m.raw[addr:], value)
	return nil
}

// SetU32 writes a big-endian 32-bit word at an absolute address.
func (m *Memory) SetU32(addr uint32, value uint32) error {
	if err := m.checkRange(addr, 4); err != nil {
		return err
	}
	if addr < m.ramStart {
		return &WriteToROMError{Addr: addr}
	}
	binary.BigEndian.PutUint32(m.raw[addr:], value)
	return nil
}

func (m *Memory) ramAddr(offset uint32) uint32 {
	return m.ramStart + offset // wraps on 32-bit overflow, same as the VM's own arithmetic
}

// GetRAMU8, GetRAMU16, GetRAMU32 read relative to ram_start, wrapping the
// address computation on 32-bit overflow.
func (m *Memory) GetRAMU8(offset uint32) (uint8, error)   { return m.GetU8(m.ramAddr(offset)) }
func (m *Memory) GetRAMU16(offset uint32) (uint16, error) { return m.GetU16(m.ramAddr(offset)) }
func (m *Memory) GetRAMU32(offset uint32) (uint32, error) { return m.GetU32(m.ramAddr(offset)) }

// SetRAMU8, SetRAMU16, SetRAMU32 write relative to ram_start.
func (m *Memory) SetRAMU8(offset uint32, value uint8) error   { return m.SetU8(m.ramAddr(offset), value) }
func (m *Memory) SetRAMU16(offset uint32, value uint16) error { return m.SetU16(m.ramAddr(offset), value) }
func (m *Memory) SetRAMU32(offset uint32, value uint32) error { return m.SetU32(m.ramAddr(offset), value) }

// Resize implements SETMEMSIZE/GETMEMSIZE's backing contract: it grows or
// shrinks the image, zero-filling on growth, and refuses to shrink below
// ext_start (the end of the on-disk RAM region).
func (m *Memory) Resize(newEndMem uint32) error {
	if newEndMem < m.extStart {
		return &InconsistentLayoutError{Reason: "cannot shrink memory below ext_start"}
	}

	switch {
	case uint64(newEndMem) > uint64(len(m.raw)):
		grown := make([]byte, newEndMem)
		copy(grown, m.raw)
		m.raw = grown
	case uint64(newEndMem) < uint64(len(m.raw)):
		m.raw = m.raw[:newEndMem]
	}
	return nil
}

// Cursor returns a read cursor positioned at addr, for use by the decoder.
func (m *Memory) Cursor(addr uint32) *Cursor {
	return &Cursor{mem: m, pos: addr}
}

// Cursor is a forward-only byte reader over a Memory, tracking how many
// bytes have been consumed so the decoder can report the next PC.
type Cursor struct {
	mem *Memory
	pos uint32
}

// Pos reports the cursor's current absolute address.
func (c *Cursor) Pos() uint32 { return c.pos }

func (c *Cursor) readU8() (uint8, error) {
	v, err := c.mem.GetU8(c.pos)
	if err != nil {
		return 0, &TruncatedInstructionError{PC: c.pos}
	}
	c.pos++
	return v, nil
}

func (c *Cursor) readU16() (uint16, error) {
	v, err := c.mem.GetU16(c.pos)
	if err != nil {
		return 0, &TruncatedInstructionError{PC: c.pos}
	}
	c.pos += 2
	return v, nil
}

func (c *Cursor) readU32() (uint32, error) {
	v, err := c.mem.GetU32(c.pos)
	if err != nil {
		return 0, &TruncatedInstructionError{PC: c.pos}
	}
	c.pos += 4
	return v, nil
}
