package vm

import (
	"encoding/binary"
	"fmt"
	"testing"
)

func assert(t *testing.T, cond bool, format string, args ...any) {
	t.Helper()
	if !cond {
		t.Fatalf(fmt.Sprintf("%v %s", cond, format), args...)
	}
}

// buildImage assembles a minimal but well-formed Glulx image: a 36-byte
// header followed by code (placed at headerSize, so StartFunc always
// points at it) and enough RAM padding to be a legal layout. The checksum
// is computed for real, so callers that want a BadChecksumError should
// mutate a byte afterwards.
func buildImage(t *testing.T, code []byte, ramPad uint32) []byte {
	t.Helper()
	start := uint32(headerSize)
	codeLen := uint32(len(code))
	ramStart := align4(start + codeLen)
	endMem := ramStart + align4(ramPad)

	raw := make([]byte, endMem)
	copy(raw[0:4], magic[:])
	binary.BigEndian.PutUint16(raw[4:6], 3)  // version major
	raw[6] = 1                               // minor
	raw[7] = 3                               // patch
	binary.BigEndian.PutUint32(raw[8:12], ramStart)
	binary.BigEndian.PutUint32(raw[12:16], ramStart)
	binary.BigEndian.PutUint32(raw[16:20], endMem)
	binary.BigEndian.PutUint32(raw[20:24], 256) // stack_size
	binary.BigEndian.PutUint32(raw[24:28], start)
	binary.BigEndian.PutUint32(raw[28:32], 0)
	copy(raw[start:], code)

	sum := checksum(raw)
	binary.BigEndian.PutUint32(raw[32:36], sum)
	return raw
}

func align4(v uint32) uint32 {
	if v%4 == 0 {
		return v
	}
	return v + (4 - v%4)
}

func mustMemory(t *testing.T, raw []byte) *Memory {
	t.Helper()
	mem, err := NewMemory(raw)
	assert(t, err == nil, "NewMemory failed: %v", err)
	return mem
}
