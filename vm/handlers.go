package vm

// handlerFunc executes one decoded instruction against an Interpreter.
// loads holds the already-resolved values of ins.Operands' Load operands,
// in encoding order; by the time a handler runs, it.PC already points past
// the instruction (the default "fall through" target), so only handlers
// that branch, call, or return need to touch it.PC themselves.
type handlerFunc func(it *Interpreter, ins Instruction, loads []uint32) error

// handlers maps every opcode this core can actually execute. Opcodes whose
// semantics belong entirely to an external collaborator still get an entry
// here; the entry just forwards to Collab and lets the collaborator decide
// whether that's supported.
var handlers = map[OPCode]handlerFunc{
	OpNOP: func(it *Interpreter, ins Instruction, loads []uint32) error { return nil },

	OpADD:      func(it *Interpreter, ins Instruction, l []uint32) error { return it.storeResult(ins, l[0]+l[1]) },
	OpSUB:      func(it *Interpreter, ins Instruction, l []uint32) error { return it.storeResult(ins, l[0]-l[1]) },
	OpMUL:      func(it *Interpreter, ins Instruction, l []uint32) error { return it.storeResult(ins, l[0]*l[1]) },
	OpNEG:      func(it *Interpreter, ins Instruction, l []uint32) error { return it.storeResult(ins, uint32(-int32(l[0]))) },
	OpBITAND:   func(it *Interpreter, ins Instruction, l []uint32) error { return it.storeResult(ins, l[0]&l[1]) },
	OpBITOR:    func(it *Interpreter, ins Instruction, l []uint32) error { return it.storeResult(ins, l[0]|l[1]) },
	OpBITXOR:   func(it *Interpreter, ins Instruction, l []uint32) error { return it.storeResult(ins, l[0]^l[1]) },
	OpBITNOT:   func(it *Interpreter, ins Instruction, l []uint32) error { return it.storeResult(ins, ^l[0]) },

	OpDIV: func(it *Interpreter, ins Instruction, l []uint32) error {
		if int32(l[1]) == 0 {
			return errDivisionByZero
		}
		return it.storeResult(ins, uint32(int32(l[0])/int32(l[1])))
	},
	OpMOD: func(it *Interpreter, ins Instruction, l []uint32) error {
		if int32(l[1]) == 0 {
			return errDivisionByZero
		}
		return it.storeResult(ins, uint32(int32(l[0])%int32(l[1])))
	},
	OpSHIFTL: func(it *Interpreter, ins Instruction, l []uint32) error {
		if l[1] >= 32 {
			return it.storeResult(ins, 0)
		}
		return it.storeResult(ins, l[0]<<l[1])
	},
	OpUSHIFTR: func(it *Interpreter, ins Instruction, l []uint32) error {
		if l[1] >= 32 {
			return it.storeResult(ins, 0)
		}
		return it.storeResult(ins, l[0]>>l[1])
	},
	OpSSHIFTR: func(it *Interpreter, ins Instruction, l []uint32) error {
		if l[1] >= 32 {
			if int32(l[0]) < 0 {
				return it.storeResult(ins, 0xFFFFFFFF)
			}
			return it.storeResult(ins, 0)
		}
		return it.storeResult(ins, uint32(int32(l[0])>>l[1]))
	},

	// Branches.
	OpJUMP:    func(it *Interpreter, ins Instruction, l []uint32) error { return it.takeBranch(l[0]) },
	OpJUMPABS: func(it *Interpreter, ins Instruction, l []uint32) error { it.PC = l[0]; return nil },
	OpJZ:      condBranch(func(l []uint32) bool { return l[0] == 0 }),
	OpJNZ:     condBranch(func(l []uint32) bool { return l[0] != 0 }),
	OpJEQ:     condBranch(func(l []uint32) bool { return l[0] == l[1] }),
	OpJNE:     condBranch(func(l []uint32) bool { return l[0] != l[1] }),
	OpJLT:     condBranch(func(l []uint32) bool { return int32(l[0]) < int32(l[1]) }),
	OpJGE:     condBranch(func(l []uint32) bool { return int32(l[0]) >= int32(l[1]) }),
	OpJGT:     condBranch(func(l []uint32) bool { return int32(l[0]) > int32(l[1]) }),
	OpJLE:     condBranch(func(l []uint32) bool { return int32(l[0]) <= int32(l[1]) }),
	OpJLTU:    condBranch(func(l []uint32) bool { return l[0] < l[1] }),
	OpJGEU:    condBranch(func(l []uint32) bool { return l[0] >= l[1] }),
	OpJGTU:    condBranch(func(l []uint32) bool { return l[0] > l[1] }),
	OpJLEU:    condBranch(func(l []uint32) bool { return l[0] <= l[1] }),

	// Moving data.
	OpCOPY:  func(it *Interpreter, ins Instruction, l []uint32) error { return it.storeResult(ins, l[0]) },
	OpCOPYS: func(it *Interpreter, ins Instruction, l []uint32) error { return it.storeResult(ins, l[0]&0xFFFF) },
	OpCOPYB: func(it *Interpreter, ins Instruction, l []uint32) error { return it.storeResult(ins, l[0]&0xFF) },
	OpSEXS:  func(it *Interpreter, ins Instruction, l []uint32) error { return it.storeResult(ins, signExtend16(uint16(l[0]))) },
	OpSEXB:  func(it *Interpreter, ins Instruction, l []uint32) error { return it.storeResult(ins, signExtend8(uint8(l[0]))) },

	// Array data: L1 is the array base, L2 the element index.
	OpALOAD: func(it *Interpreter, ins Instruction, l []uint32) error {
		v, err := it.Mem.GetU32(l[0] + l[1]*4)
		if err != nil {
			return err
		}
		return it.storeResult(ins, v)
	},
	OpALOADS: func(it *Interpreter, ins Instruction, l []uint32) error {
		v, err := it.Mem.GetU16(l[0] + l[1]*2)
		if err != nil {
			return err
		}
		return it.storeResult(ins, uint32(v))
	},
	OpALOADB: func(it *Interpreter, ins Instruction, l []uint32) error {
		v, err := it.Mem.GetU8(l[0] + l[1])
		if err != nil {
			return err
		}
		return it.storeResult(ins, uint32(v))
	},
	OpALOADBIT: func(it *Interpreter, ins Instruction, l []uint32) error {
		bit := int32(l[1])
		addr := l[0] + uint32(bit>>3)
		shift := uint((bit%8+8)%8)
		v, err := it.Mem.GetU8(addr)
		if err != nil {
			return err
		}
		if v&(1<<shift) != 0 {
			return it.storeResult(ins, 1)
		}
		return it.storeResult(ins, 0)
	},
	OpASTORE:  func(it *Interpreter, ins Instruction, l []uint32) error { return it.Mem.SetU32(l[0]+l[1]*4, l[2]) },
	OpASTORES: func(it *Interpreter, ins Instruction, l []uint32) error { return it.Mem.SetU16(l[0]+l[1]*2, uint16(l[2])) },
	OpASTOREB: func(it *Interpreter, ins Instruction, l []uint32) error { return it.Mem.SetU8(l[0]+l[1], byte(l[2])) },
	OpASTOREBIT: func(it *Interpreter, ins Instruction, l []uint32) error {
		bit := int32(l[1])
		addr := l[0] + uint32(bit>>3)
		shift := uint((bit%8+8)%8)
		v, err := it.Mem.GetU8(addr)
		if err != nil {
			return err
		}
		if l[2] != 0 {
			v |= 1 << shift
		} else {
			v &^= 1 << shift
		}
		return it.Mem.SetU8(addr, v)
	},

	// The stack.
	OpSTKCOUNT: func(it *Interpreter, ins Instruction, l []uint32) error {
		return it.storeResult(ins, uint32(it.Stack.Count()))
	},
	OpSTKPEEK: func(it *Interpreter, ins Instruction, l []uint32) error {
		v, err := it.Stack.Peek(int(l[0]))
		if err != nil {
			return err
		}
		return it.storeResult(ins, v)
	},
	OpSTKSWAP: func(it *Interpreter, ins Instruction, l []uint32) error { return it.Stack.Swap() },
	OpSTKROLL: func(it *Interpreter, ins Instruction, l []uint32) error {
		return it.Stack.Roll(int(l[0]), int(int32(l[1])))
	},
	OpSTKCOPY: func(it *Interpreter, ins Instruction, l []uint32) error { return it.Stack.CopyTop(int(l[0])) },

	// Block copy/clear.
	OpMZERO: func(it *Interpreter, ins Instruction, l []uint32) error {
		for i := uint32(0); i < l[0]; i++ {
			if err := it.Mem.SetU8(l[1]+i, 0); err != nil {
				return err
			}
		}
		return nil
	},
	OpMCOPY: func(it *Interpreter, ins Instruction, l []uint32) error {
		n, src, dst := l[0], l[1], l[2]
		buf := make([]byte, n)
		for i := uint32(0); i < n; i++ {
			b, err := it.Mem.GetU8(src + i)
			if err != nil {
				return err
			}
			buf[i] = b
		}
		for i := uint32(0); i < n; i++ {
			if err := it.Mem.SetU8(dst+i, buf[i]); err != nil {
				return err
			}
		}
		return nil
	},
}

// condBranch builds a handlerFunc for a conditional-jump opcode whose last
// operand (not included in cond's slice) is the branch offset.
func condBranch(cond func(loads []uint32) bool) handlerFunc {
	return func(it *Interpreter, ins Instruction, l []uint32) error {
		offset := l[len(l)-1]
		if cond(l[:len(l)-1]) {
			return it.takeBranch(offset)
		}
		return nil
	}
}

func init() {
	registerCallHandlers(handlers)
	registerMiscHandlers(handlers)
	registerFloatHandlers(handlers)
}
