package vm

import "math/rand"

// registerMiscHandlers wires game-state, output, gestalt, accelerator and
// search opcodes into m.
func registerMiscHandlers(m map[OPCode]handlerFunc) {
	m[OpQUIT] = func(it *Interpreter, ins Instruction, l []uint32) error {
		return &HaltedError{Reason: "quit"}
	}
	m[OpRESTART] = func(it *Interpreter, ins Instruction, l []uint32) error {
		return &HaltedError{Reason: "restart"}
	}
	m[OpVERIFY] = func(it *Interpreter, ins Instruction, l []uint32) error {
		return it.storeResult(ins, 0) // 0 == verification succeeded
	}
	m[OpSAVE] = func(it *Interpreter, ins Instruction, l []uint32) error {
		return it.storeResult(ins, 1) // 1 == save failed; no writer attached here
	}
	m[OpRESTORE] = func(it *Interpreter, ins Instruction, l []uint32) error {
		return it.storeResult(ins, 1)
	}
	m[OpSAVEUNDO] = func(it *Interpreter, ins Instruction, l []uint32) error {
		if err := it.Collab.Persistence.SaveUndo(it.Mem); err != nil {
			return it.storeResult(ins, 1)
		}
		return it.storeResult(ins, 0)
	}
	m[OpRESTOREUNDO] = func(it *Interpreter, ins Instruction, l []uint32) error {
		if err := it.Collab.Persistence.RestoreUndo(it.Mem); err != nil {
			return it.storeResult(ins, 1)
		}
		return it.storeResult(ins, 0)
	}
	m[OpHASUNDO] = func(it *Interpreter, ins Instruction, l []uint32) error {
		if it.Collab.Persistence.HasUndo() {
			return it.storeResult(ins, 0)
		}
		return it.storeResult(ins, 1)
	}
	m[OpDISCARDUNDO] = func(it *Interpreter, ins Instruction, l []uint32) error {
		it.Collab.Persistence.DiscardUndo()
		return nil
	}
	m[OpPROTECT] = func(it *Interpreter, ins Instruction, l []uint32) error {
		it.protectStart, it.protectLen = l[0], l[1]
		return nil
	}

	m[OpSTREAMCHAR] = func(it *Interpreter, ins Instruction, l []uint32) error {
		return it.Collab.Glk.StreamChar(rune(byte(l[0])))
	}
	m[OpSTREAMUNICHAR] = func(it *Interpreter, ins Instruction, l []uint32) error {
		return it.Collab.Glk.StreamUnichar(rune(l[0]))
	}
	m[OpSTREAMNUM] = func(it *Interpreter, ins Instruction, l []uint32) error {
		return it.Collab.Glk.StreamNum(int32(l[0]))
	}
	m[OpSTREAMSTR] = func(it *Interpreter, ins Instruction, l []uint32) error {
		return it.Collab.Glk.StreamStr(l[0], it.Mem)
	}
	m[OpGETSTRINGTBL] = func(it *Interpreter, ins Instruction, l []uint32) error {
		return it.storeResult(ins, it.stringTable)
	}
	m[OpSETSTRINGTBL] = func(it *Interpreter, ins Instruction, l []uint32) error {
		it.stringTable = l[0]
		return nil
	}
	m[OpGETIOSYS] = func(it *Interpreter, ins Instruction, l []uint32) error {
		stores := storeOperands(ins)
		if err := it.resolver().Store(stores[0], it.ioSysMode); err != nil {
			return err
		}
		return it.resolver().Store(stores[1], it.ioSysRock)
	}
	m[OpSETIOSYS] = func(it *Interpreter, ins Instruction, l []uint32) error {
		it.ioSysMode, it.ioSysRock = l[0], l[1]
		return nil
	}

	m[OpGESTALT] = func(it *Interpreter, ins Instruction, l []uint32) error {
		return it.storeResult(ins, gestalt(l[0], l[1]))
	}
	m[OpDEBUGTRAP] = func(it *Interpreter, ins Instruction, l []uint32) error {
		if it.Log != nil {
			it.Log.WithField("code", l[0]).Warn("glulx: debugtrap")
		}
		return nil
	}
	m[OpGLK] = func(it *Interpreter, ins Instruction, l []uint32) error {
		selector, argc := l[0], l[1]
		args, err := popArgs(it, argc)
		if err != nil {
			return err
		}
		result, err := it.Collab.Glk.Dispatch(selector, args)
		if err != nil {
			return err
		}
		return it.storeResult(ins, result)
	}

	m[OpRANDOM] = func(it *Interpreter, ins Instruction, l []uint32) error {
		n := int32(l[0])
		switch {
		case n > 0:
			return it.storeResult(ins, uint32(it.rng.Int31n(n)))
		case n < 0:
			return it.storeResult(ins, uint32(-it.rng.Int31n(-n)))
		default:
			return it.storeResult(ins, it.rng.Uint32())
		}
	}
	m[OpSETRANDOM] = func(it *Interpreter, ins Instruction, l []uint32) error {
		if l[0] == 0 {
			it.rng = rand.New(rand.NewSource(1))
		} else {
			it.rng = rand.New(rand.NewSource(int64(l[0])))
		}
		return nil
	}

	m[OpACCELFUNC] = func(it *Interpreter, ins Instruction, l []uint32) error {
		it.Collab.Accelerators.SetFunction(l[0], l[1])
		return nil
	}
	m[OpACCELPARAM] = func(it *Interpreter, ins Instruction, l []uint32) error {
		it.Collab.Accelerators.SetParam(l[0], l[1])
		return nil
	}

	m[OpLINEARSEARCH] = linearSearchHandler
	m[OpBINARYSEARCH] = binarySearchHandler
	m[OpLINKEDSEARCH] = linkedSearchHandler
}

// gestalt answers a handful of the most commonly queried selectors; an
// unrecognised selector returns 0, which is the documented "unsupported"
// answer rather than an error.
func gestalt(selector, arg uint32) uint32 {
	const (
		gestaltVersion      = 0
		gestaltMemCopy      = 4
		gestaltMAlloc       = 5
		gestaltAcceleration = 7
		gestaltAccelFunc    = 8
		gestaltFloat        = 9
		gestaltDouble       = 11
	)
	switch selector {
	case gestaltVersion:
		return 0x00030103
	case gestaltMemCopy, gestaltMAlloc, gestaltAcceleration, gestaltAccelFunc, gestaltFloat, gestaltDouble:
		return 1
	default:
		return 0
	}
}

// resolveKeyBytes builds the search key as a byte span of the given size
// for comparison against each entry's in-memory key. The search handlers
// act on two option bits: bit 0 (KeyIndirect, the supplied key is an
// address rather than an immediate) and bit 1 (ReturnIndex, answer an index
// instead of an address). searchZeroKeyEnds is defined but no handler
// consults it.
const (
	searchKeyIndirect = 1 << 0
	searchReturnIndex = 1 << 1
	searchZeroKeyEnds = 1 << 2
)

func compareKey(mem *Memory, addr, keySize uint32, keyBytes []byte) (bool, error) {
	for i := uint32(0); i < keySize; i++ {
		b, err := mem.GetU8(addr + i)
		if err != nil {
			return false, err
		}
		if b != keyBytes[i] {
			return false, nil
		}
	}
	return true, nil
}

func resolveKeyBytes(mem *Memory, key, keySize, options uint32) ([]byte, error) {
	buf := make([]byte, keySize)
	if options&searchKeyIndirect != 0 {
		for i := uint32(0); i < keySize; i++ {
			b, err := mem.GetU8(key + i)
			if err != nil {
				return nil, err
			}
			buf[i] = b
		}
		return buf, nil
	}
	for i := uint32(0); i < keySize && i < 4; i++ {
		buf[keySize-1-i] = byte(key >> (8 * i))
	}
	return buf, nil
}

func linearSearchHandler(it *Interpreter, ins Instruction, l []uint32) error {
	key, keySize, start, structSize, numStructs, keyOffset, options := l[0], l[1], l[2], l[3], l[4], l[5], l[6]
	keyBytes, err := resolveKeyBytes(it.Mem, key, keySize, options)
	if err != nil {
		return err
	}
	for i := uint32(0); i < numStructs; i++ {
		addr := start + i*structSize
		match, err := compareKey(it.Mem, addr+keyOffset, keySize, keyBytes)
		if err != nil {
			return err
		}
		if match {
			if options&searchReturnIndex != 0 {
				return it.storeResult(ins, i)
			}
			return it.storeResult(ins, addr)
		}
	}
	if options&searchReturnIndex != 0 {
		return it.storeResult(ins, 0xFFFFFFFF)
	}
	return it.storeResult(ins, 0)
}

func binarySearchHandler(it *Interpreter, ins Instruction, l []uint32) error {
	key, keySize, start, structSize, numStructs, keyOffset, options := l[0], l[1], l[2], l[3], l[4], l[5], l[6]
	keyBytes, err := resolveKeyBytes(it.Mem, key, keySize, options)
	if err != nil {
		return err
	}
	lo, hi := int64(0), int64(numStructs)-1
	for lo <= hi {
		mid := (lo + hi) / 2
		addr := start + uint32(mid)*structSize
		var cur uint32
		for i := uint32(0); i < keySize && i < 4; i++ {
			b, err := it.Mem.GetU8(addr + keyOffset + i)
			if err != nil {
				return err
			}
			cur = cur<<8 | uint32(b)
		}
		var want uint32
		for _, b := range keyBytes {
			want = want<<8 | uint32(b)
		}
		switch {
		case cur == want:
			if options&searchReturnIndex != 0 {
				return it.storeResult(ins, uint32(mid))
			}
			return it.storeResult(ins, addr)
		case cur < want:
			lo = mid + 1
		default:
			hi = mid - 1
		}
	}
	if options&searchReturnIndex != 0 {
		return it.storeResult(ins, 0xFFFFFFFF)
	}
	return it.storeResult(ins, 0)
}

func linkedSearchHandler(it *Interpreter, ins Instruction, l []uint32) error {
	key, keySize, start, keyOffset, nextOffset, options := l[0], l[1], l[2], l[3], l[4], l[5]
	keyBytes, err := resolveKeyBytes(it.Mem, key, keySize, options)
	if err != nil {
		return err
	}
	addr := start
	for addr != 0 {
		match, err := compareKey(it.Mem, addr+keyOffset, keySize, keyBytes)
		if err != nil {
			return err
		}
		if match {
			return it.storeResult(ins, addr)
		}
		addr, err = it.Mem.GetU32(addr + nextOffset)
		if err != nil {
			return err
		}
	}
	return it.storeResult(ins, 0)
}
