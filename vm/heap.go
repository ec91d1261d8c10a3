package vm

// heapAllocator backs MALLOC/MFREE with a simple bump allocator over the
// extended-memory region: MALLOC always grows the image via Memory.Resize,
// MFREE only forgets the allocation's bookkeeping rather than reclaiming
// the bytes. Real interpreters run a free-list over the same region; this
// is the straightforward version of the same idea, sized for how rarely a
// story file's heap traffic actually matters to correctness.
type heapAllocator struct {
	mem    *Memory
	blocks map[uint32]uint32 // address -> size, for allocations currently live
}

func newHeapAllocator(mem *Memory) *heapAllocator {
	return &heapAllocator{mem: mem, blocks: make(map[uint32]uint32)}
}

// Alloc grows the memory image by size bytes and returns the address of
// the new block, or 0 if the request can't be satisfied.
func (h *heapAllocator) Alloc(size uint32) uint32 {
	if size == 0 {
		return 0
	}
	addr := h.mem.Len()
	if err := h.mem.Resize(addr + size); err != nil {
		return 0
	}
	h.blocks[addr] = size
	return addr
}

// Free forgets addr's bookkeeping. Freeing an address MALLOC never
// returned is a no-op, matching Glulx's documented tolerance for
// double-frees of address zero.
func (h *heapAllocator) Free(addr uint32) {
	delete(h.blocks, addr)
}
