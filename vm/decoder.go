package vm

// Decode reads one instruction starting at pc: the variable-length opcode
// number, its packed operand-mode nibbles, and each operand's immediate. It
// returns the decoded Instruction and the address just past the last byte
// consumed.
//
// Decoding never mutates mem (aside from the read cursor's own position
// bookkeeping) — it only borrows mem for the duration of this call, per the
// single-threaded contract in spec §5.
func Decode(mem *Memory, pc uint32) (Instruction, uint32, error) {
	c := mem.Cursor(pc)

	value, err := decodeOpcodeNumber(c)
	if err != nil {
		return Instruction{}, 0, err
	}

	code := OPCode(value)
	loads, stores, ok := code.arity()
	if !ok {
		return Instruction{}, 0, &UnknownOpcodeError{Value: value, PC: pc}
	}

	operands, err := decodeOperands(c, code, loads, stores)
	if err != nil {
		return Instruction{}, 0, err
	}

	return Instruction{Code: code, Operands: operands}, c.Pos(), nil
}

// decodeOpcodeNumber implements the three opcode-length encodings: a single
// byte whose top bit is 0, two bytes whose first byte's top two bits are
// 10, or four bytes whose first byte's top two bits are 11.
func decodeOpcodeNumber(c *Cursor) (uint32, error) {
	b0, err := c.readU8()
	if err != nil {
		return 0, err
	}

	switch b0 >> 6 {
	case 0b00, 0b01:
		return uint32(b0), nil
	case 0b10:
		b1, err := c.readU8()
		if err != nil {
			return 0, err
		}
		return (uint32(b0&0x7F) << 8) | uint32(b1), nil
	default: // 0b11
		b1, err := c.readU8()
		if err != nil {
			return 0, err
		}
		b2, err := c.readU8()
		if err != nil {
			return 0, err
		}
		b3, err := c.readU8()
		if err != nil {
			return 0, err
		}
		raw := (uint32(b0) << 24) | (uint32(b1) << 16) | (uint32(b2) << 8) | uint32(b3)
		return raw - 0xC0000000, nil
	}
}

// decodeOperands reads the mode-packing bytes (two 4-bit codes per byte, low
// nibble first) and then each operand's immediate, in encoding order. Every
// opcode decodes loads before stores except CATCH, whose single store comes
// first.
func decodeOperands(c *Cursor, code OPCode, loads, stores int) ([]Operand, error) {
	n := loads + stores
	if n == 0 {
		return nil, nil
	}

	nibbles := make([]ModeCode, 0, n)
	for i := 0; i < (n+1)/2; i++ {
		b, err := c.readU8()
		if err != nil {
			return nil, err
		}
		nibbles = append(nibbles, ModeCode(b&0x0F))
		if len(nibbles) < n {
			nibbles = append(nibbles, ModeCode((b>>4)&0x0F))
		}
	}

	directions := make([]Direction, n)
	if code == OpCATCH {
		// Store first, then load: the one documented exception to the
		// load-before-store rule (see spec §4.3/§4.5).
		for i := 0; i < stores; i++ {
			directions[i] = Store
		}
		for i := stores; i < n; i++ {
			directions[i] = Load
		}
	} else {
		for i := 0; i < loads; i++ {
			directions[i] = Load
		}
		for i := loads; i < n; i++ {
			directions[i] = Store
		}
	}

	operands := make([]Operand, n)
	for i := 0; i < n; i++ {
		mode, err := decodeAddressingMode(c, nibbles[i])
		if err != nil {
			return nil, err
		}
		operands[i] = Operand{Direction: directions[i], Mode: mode}
	}

	return operands, nil
}
