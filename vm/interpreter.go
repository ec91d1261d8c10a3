package vm

import (
	"math/rand"

	"github.com/sirupsen/logrus"
)

// Interpreter holds all the state needed to actually run a loaded image:
// memory, the value stack, the call-frame stack, and the external
// collaborators opcodes may need. It never blocks on its own — every
// potentially-blocking operation (Glk dispatch, save/restore) is handed to
// a Collaborators implementation instead, per the single-threaded contract
// a caller can run inside its own goroutine if it wants concurrency.
type Interpreter struct {
	Mem    *Memory
	Stack  *Stack
	Collab *Collaborators
	Log    *logrus.Logger

	PC     uint32
	frames []*Frame

	stringTable uint32
	ioSysMode   uint32
	ioSysRock   uint32

	protectStart uint32
	protectLen   uint32

	heap    *heapAllocator
	rng     *rand.Rand
	catches []catchRecord

	// MaxInstructions bounds a single Run call; zero means unbounded. It
	// exists so an embedder (or a test) can guarantee termination without
	// relying on the program itself behaving.
	MaxInstructions uint64
	executed        uint64
}

// NewInterpreter builds a ready-to-run Interpreter from an already-loaded
// Memory, starting execution at startPC (as returned by Load).
func NewInterpreter(mem *Memory, startPC uint32, collab *Collaborators) *Interpreter {
	if collab == nil {
		collab = NewNullCollaborators()
	}
	stackWords := int(mem.Header().StackSize / 4)
	return &Interpreter{
		Mem:    mem,
		Stack:  NewStack(stackWords),
		Collab: collab,
		Log:    logrus.StandardLogger(),
		PC:     startPC,
		heap:   newHeapAllocator(mem),
		rng:    rand.New(rand.NewSource(1)),
	}
}

func (it *Interpreter) currentFrame() *Frame {
	if len(it.frames) == 0 {
		return nil
	}
	return it.frames[len(it.frames)-1]
}

func (it *Interpreter) resolver() *OperandResolver {
	return &OperandResolver{Mem: it.Mem, Stack: it.Stack, Frame: it.currentFrame()}
}

// Run decodes and executes instructions starting from it.PC until a halt
// condition (QUIT, an unrecoverable error, or MaxInstructions) is reached.
// A clean halt is reported as a *HaltedError so callers can distinguish it
// from a real failure.
func (it *Interpreter) Run() error {
	for {
		if it.MaxInstructions != 0 && it.executed >= it.MaxInstructions {
			return &HaltedError{Reason: "instruction budget exhausted"}
		}
		if err := it.Step(); err != nil {
			return err
		}
	}
}

// Step decodes and executes exactly one instruction.
func (it *Interpreter) Step() error {
	pc := it.PC
	ins, nextPC, err := Decode(it.Mem, pc)
	if err != nil {
		return err
	}

	r := it.resolver()
	loads, err := r.LoadAll(ins.Operands)
	if err != nil {
		return err
	}

	it.PC = nextPC
	it.executed++

	h, ok := handlers[ins.Code]
	if !ok {
		return errUnsupportedFeature
	}

	if it.Log != nil && it.Log.IsLevelEnabled(logrus.TraceLevel) {
		it.Log.WithFields(logrus.Fields{"pc": pc, "opcode": ins.Code.String()}).Trace("glulx: step")
	}

	return h(it, ins, loads)
}

func storeOperands(ins Instruction) []Operand {
	var out []Operand
	for _, op := range ins.Operands {
		if op.Direction == Store {
			out = append(out, op)
		}
	}
	return out
}

// storeResult writes value to the single store operand an instruction is
// expected to have; most handlers have exactly one.
func (it *Interpreter) storeResult(ins Instruction, value uint32) error {
	stores := storeOperands(ins)
	if len(stores) == 0 {
		return nil
	}
	return it.resolver().Store(stores[0], value)
}

// takeBranch implements the shared branch-offset convention used by JUMP
// and every conditional jump: offset 0 returns false from the current
// function, offset 1 returns true, anything else is a PC-relative jump
// measured from the instruction immediately following the branch.
func (it *Interpreter) takeBranch(offset uint32) error {
	switch int32(offset) {
	case 0:
		return it.doReturn(0)
	case 1:
		return it.doReturn(1)
	default:
		it.PC = it.PC + offset - 2
		return nil
	}
}

// doCall pushes a new Frame for a call to addr with args, remembering where
// to resume the caller and where its result should land.
func (it *Interpreter) doCall(addr uint32, args []uint32, dest Operand, hasDest bool) error {
	f, entryPC, err := newFrame(it.Mem, it.Stack, addr, args)
	if err != nil {
		return err
	}
	f.returnPC = it.PC
	f.resultDest = dest
	f.hasDest = hasDest
	it.frames = append(it.frames, f)
	it.PC = entryPC
	return nil
}

// doReturn pops the current frame, resuming its caller with value stored
// wherever the original call requested. Returning with no frame left halts
// the program.
func (it *Interpreter) doReturn(value uint32) error {
	if len(it.frames) == 0 {
		return &HaltedError{Reason: "returned from the outermost frame"}
	}
	f := it.frames[len(it.frames)-1]
	it.frames = it.frames[:len(it.frames)-1]
	it.PC = f.returnPC

	if !f.hasDest {
		return nil
	}
	return it.resolver().Store(f.resultDest, value)
}
