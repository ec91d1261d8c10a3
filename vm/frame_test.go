package vm

import "testing"

func TestReadFunctionHeaderAlignsGroups(t *testing.T) {
	header := []byte{0xC0, 4, 2, 2, 1, 0, 0}
	raw := buildImage(t, header, 64)
	mem := mustMemory(t, raw)

	ct, groups, entryPC, err := readFunctionHeader(mem, headerSize)
	assert(t, err == nil, "readFunctionHeader failed: %v", err)
	assert(t, ct == callTypeLocalsOnly, "expected locals-only call type")
	assert(t, len(groups) == 2, "expected 2 local groups, got %d", len(groups))
	assert(t, groups[0].offset == 0 && groups[0].width == 4 && groups[0].count == 2, "unexpected first group: %+v", groups[0])
	assert(t, groups[1].offset == 8 && groups[1].width == 2 && groups[1].count == 1, "unexpected second group: %+v", groups[1])
	assert(t, entryPC == uint32(headerSize+len(header)), "expected entry PC right after the terminator, got %#x", entryPC)
}

func TestNewFrameLocalsOnlyFillsArgs(t *testing.T) {
	header := []byte{0xC0, 4, 2, 2, 1, 0, 0}
	raw := buildImage(t, header, 64)
	mem := mustMemory(t, raw)
	stack := NewStack(16)

	f, _, err := newFrame(mem, stack, headerSize, []uint32{0xAAAAAAAA, 0xBBBBBBBB, 0x0000CCCC})
	assert(t, err == nil, "newFrame failed: %v", err)

	v0, err := f.GetLocal(0)
	assert(t, err == nil && v0 == 0xAAAAAAAA, "expected local at offset 0 to be first arg, got %#x", v0)
	v1, err := f.GetLocal(4)
	assert(t, err == nil && v1 == 0xBBBBBBBB, "expected local at offset 4 to be second arg, got %#x", v1)
	v2, err := f.GetLocal(8)
	assert(t, err == nil && v2 == 0x0000CCCC, "expected 2-byte local at offset 8, got %#x", v2)

	width, ok := f.widthAt(8)
	assert(t, ok && width == 2, "expected width 2 at offset 8, got %d (%v)", width, ok)
}

func TestNewFrameStackArgsPushesArgsAndCount(t *testing.T) {
	header := []byte{0xC1, 0, 0}
	raw := buildImage(t, header, 64)
	mem := mustMemory(t, raw)
	stack := NewStack(16)

	_, _, err := newFrame(mem, stack, headerSize, []uint32{1, 2, 3})
	assert(t, err == nil, "newFrame failed: %v", err)
	assert(t, stack.Count() == 4, "expected 3 args plus a count word, got %d", stack.Count())

	top, _ := stack.Peek(0)
	assert(t, top == 3, "expected the count word (3) on top, got %d", top)
}

func TestFrameSetLocalRejectsUnknownOffset(t *testing.T) {
	header := []byte{0xC0, 4, 1, 0, 0}
	raw := buildImage(t, header, 64)
	mem := mustMemory(t, raw)
	stack := NewStack(16)

	f, _, err := newFrame(mem, stack, headerSize, nil)
	assert(t, err == nil, "newFrame failed: %v", err)

	err = f.SetLocal(1, 5) // offset 1 isn't a declared local's start
	assert(t, err != nil, "expected an error setting an undeclared local offset")
}
