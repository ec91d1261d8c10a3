package vm

import (
	"encoding/binary"
	"testing"
)

func TestInterpreterAddAndQuit(t *testing.T) {
	code := []byte{
		byte(OpADD), 0x11, 0x0F, 3, 4, 0, 0, 0, 0, // add #3 #4 -> ram[0]
		0x81, 0x20, // quit (opcode 0x120, 2-byte form)
	}
	raw := buildImage(t, code, 64)
	mem := mustMemory(t, raw)

	it := NewInterpreter(mem, headerSize, nil)
	err := it.Run()

	halted, ok := err.(*HaltedError)
	assert(t, ok, "expected a clean halt, got %v", err)
	assert(t, halted.Reason == "quit", "expected quit as the halt reason, got %q", halted.Reason)

	v, gerr := mem.GetU32(mem.RAMStart())
	assert(t, gerr == nil && v == 7, "expected ram[0] == 7, got %d (%v)", v, gerr)
}

func TestInterpreterDivisionByZero(t *testing.T) {
	code := []byte{
		byte(OpDIV), 0x11, 0x0F, 9, 0, 0, 0, 0, 0, // div #9 #0 -> ram[0]
	}
	raw := buildImage(t, code, 64)
	mem := mustMemory(t, raw)

	it := NewInterpreter(mem, headerSize, nil)
	err := it.Run()
	assert(t, err == errDivisionByZero, "expected errDivisionByZero, got %v", err)
}

func TestInterpreterCallAndReturn(t *testing.T) {
	// Function body: returns the constant 42, no locals.
	funcHeader := []byte{0xC0, 0, 0}
	funcBody := []byte{byte(OpRETURN), 0x01, 42}
	funcCode := append(funcHeader, funcBody...)

	// call(funcAddr, 0) -> ram[0]; quit.
	callPrefix := []byte{byte(OpCALL), 0x13, 0x0F}
	funcAddrPlaceholder := make([]byte, 4)
	callSuffix := []byte{0, 0, 0, 0, 0}      // argc byte + store offset (4 bytes)
	quit := []byte{0x81, 0x20}

	mainLen := len(callPrefix) + len(funcAddrPlaceholder) + len(callSuffix) + len(quit)
	funcAddr := uint32(headerSize + mainLen)
	binary.BigEndian.PutUint32(funcAddrPlaceholder, funcAddr)

	code := append([]byte{}, callPrefix...)
	code = append(code, funcAddrPlaceholder...)
	code = append(code, callSuffix...)
	code = append(code, quit...)
	code = append(code, funcCode...)

	raw := buildImage(t, code, 64)
	mem := mustMemory(t, raw)

	it := NewInterpreter(mem, headerSize, nil)
	err := it.Run()
	halted, ok := err.(*HaltedError)
	assert(t, ok, "expected a clean halt, got %v", err)
	assert(t, halted.Reason == "quit", "expected quit, got %q", halted.Reason)

	v, gerr := mem.GetU32(mem.RAMStart())
	assert(t, gerr == nil && v == 42, "expected the call's return value 42 in ram[0], got %d (%v)", v, gerr)
}

func TestInterpreterJZBranchesOnZero(t *testing.T) {
	// jz #0 -> offset 11 (skip the next add, which would otherwise run).
	// L1 mode const1=0; L2(offset) mode const1, value chosen so target
	// lands past a dummy add onto a ram[0]=1 store, then quit.
	skip := []byte{byte(OpADD), 0x11, 0x0F, 9, 9, 0, 0, 0, 0} // would set ram[0]=18 if executed
	land := []byte{byte(OpCOPY), 0xF1, 1, 0, 0, 0, 0}         // copy #1 -> ram[0]
	quit := []byte{0x81, 0x20}

	offset := int32(len(skip) + 2) // +2 for the branch-offset convention, measured from after the JZ instruction

	code := []byte{byte(OpJZ), 0x11, 0, byte(offset)}
	code = append(code, skip...)
	code = append(code, land...)
	code = append(code, quit...)

	raw := buildImage(t, code, 64)
	mem := mustMemory(t, raw)

	it := NewInterpreter(mem, headerSize, nil)
	err := it.Run()
	_, ok := err.(*HaltedError)
	assert(t, ok, "expected a clean halt, got %v", err)

	v, gerr := mem.GetU32(mem.RAMStart())
	assert(t, gerr == nil && v == 1, "expected the branch to skip the add, got ram[0] == %d", v)
}
