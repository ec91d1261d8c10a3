package vm

// catchRecord is the state a CATCH opcode captures so a later THROW can
// unwind back to it: how deep the call-frame and value stacks were, where
// execution resumes, and where the thrown value should be stored.
type catchRecord struct {
	targetPC   uint32
	dest       Operand
	frameDepth int
	stackDepth int
}

// registerCallHandlers wires CALL/RETURN/TAILCALL/CALLF* and CATCH/THROW
// into m. Split out from handlers.go because call machinery needs helpers
// (argument popping, frame bookkeeping) that the simple arithmetic/branch
// handlers don't.
func registerCallHandlers(m map[OPCode]handlerFunc) {
	m[OpCALL] = func(it *Interpreter, ins Instruction, l []uint32) error {
		args, err := popArgs(it, l[1])
		if err != nil {
			return err
		}
		if handled, err := it.tryAccelCall(ins, l[0], args); handled || err != nil {
			return err
		}
		return it.doCall(l[0], args, storeOperands(ins)[0], true)
	}
	m[OpCALLF] = fixedCall(0)
	m[OpCALLFI] = fixedCall(1)
	m[OpCALLFII] = fixedCall(2)
	m[OpCALLFIII] = fixedCall(3)

	m[OpTAILCALL] = func(it *Interpreter, ins Instruction, l []uint32) error {
		args, err := popArgs(it, l[1])
		if err != nil {
			return err
		}
		var returnPC uint32
		var dest Operand
		var hasDest bool
		if f := it.currentFrame(); f != nil {
			returnPC, dest, hasDest = f.returnPC, f.resultDest, f.hasDest
			it.frames = it.frames[:len(it.frames)-1]
		}
		if fn, ok := it.Collab.Accelerators.Lookup(l[0]); ok {
			v, err := fn(it.Mem, args)
			if err != nil {
				return err
			}
			it.PC = returnPC
			if !hasDest {
				return nil
			}
			return it.resolver().Store(dest, v)
		}
		if err := it.doCall(l[0], args, dest, hasDest); err != nil {
			return err
		}
		if f := it.currentFrame(); f != nil {
			f.returnPC = returnPC
		}
		return nil
	}

	m[OpRETURN] = func(it *Interpreter, ins Instruction, l []uint32) error {
		return it.doReturn(l[0])
	}

	m[OpCATCH] = func(it *Interpreter, ins Instruction, l []uint32) error {
		offset := l[0]
		var target uint32
		switch int32(offset) {
		case 0, 1:
			target = it.PC // a THROW back to here just falls through to the return below
		default:
			target = it.PC + offset - 2
		}

		rec := catchRecord{
			targetPC:   target,
			dest:       storeOperands(ins)[0],
			frameDepth: len(it.frames),
			stackDepth: it.Stack.Count(),
		}
		it.catches = append(it.catches, rec)
		token := uint32(len(it.catches))
		return it.storeResult(ins, token)
	}

	m[OpTHROW] = func(it *Interpreter, ins Instruction, l []uint32) error {
		value, token := l[0], l[1]
		idx := int(token) - 1
		if idx < 0 || idx >= len(it.catches) {
			return errInvalidCatchToken
		}
		rec := it.catches[idx]
		it.catches = it.catches[:idx]
		if err := it.Stack.TruncateTo(rec.stackDepth); err != nil {
			return err
		}
		it.frames = it.frames[:rec.frameDepth]
		it.PC = rec.targetPC
		return it.resolver().Store(rec.dest, value)
	}

	m[OpGETMEMSIZE] = func(it *Interpreter, ins Instruction, l []uint32) error {
		return it.storeResult(ins, it.Mem.Len())
	}
	m[OpSETMEMSIZE] = func(it *Interpreter, ins Instruction, l []uint32) error {
		if err := it.Mem.Resize(l[0]); err != nil {
			return it.storeResult(ins, 1)
		}
		return it.storeResult(ins, 0)
	}

	m[OpMALLOC] = func(it *Interpreter, ins Instruction, l []uint32) error {
		return it.storeResult(ins, it.heap.Alloc(l[0]))
	}
	m[OpMFREE] = func(it *Interpreter, ins Instruction, l []uint32) error {
		it.heap.Free(l[0])
		return nil
	}
}

// fixedCall builds the handler for a CALLF-family opcode taking exactly n
// fixed arguments (argc is implied by the opcode itself, unlike CALL).
func fixedCall(n int) handlerFunc {
	return func(it *Interpreter, ins Instruction, l []uint32) error {
		args := append([]uint32(nil), l[1:1+n]...)
		if handled, err := it.tryAccelCall(ins, l[0], args); handled || err != nil {
			return err
		}
		return it.doCall(l[0], args, storeOperands(ins)[0], true)
	}
}

// tryAccelCall checks the accelerated-function table before an ordinary
// CALL/CALLF* falls through to interpreting addr byte by byte. If a native
// implementation is registered, it runs in place of the call and its result
// is stored directly; handled is false when nothing is registered for addr,
// and the caller should proceed with its normal doCall.
func (it *Interpreter) tryAccelCall(ins Instruction, addr uint32, args []uint32) (handled bool, err error) {
	fn, ok := it.Collab.Accelerators.Lookup(addr)
	if !ok {
		return false, nil
	}
	v, err := fn(it.Mem, args)
	if err != nil {
		return true, err
	}
	return true, it.storeResult(ins, v)
}

// popArgs pops argc words pushed by the caller (most recently pushed last)
// and returns them in first-argument-first order for locals assignment.
func popArgs(it *Interpreter, argc uint32) ([]uint32, error) {
	args := make([]uint32, argc)
	for i := int(argc) - 1; i >= 0; i-- {
		v, err := it.Stack.Pop()
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}
