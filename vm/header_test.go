package vm

import "testing"

func TestParseHeaderFields(t *testing.T) {
	raw := buildImage(t, []byte{0x00, 0x00, 0x00, 0x00}, 128)
	hdr := parseHeader(raw)

	assert(t, hdr.Version.Major == 3, "expected version major 3, got %d", hdr.Version.Major)
	assert(t, hdr.StartFunc == headerSize, "expected start_func to point at headerSize, got %#x", hdr.StartFunc)
	assert(t, hdr.RAMStart == hdr.ExtStart, "test images place ram_start == ext_start")
	assert(t, hdr.EndMem > hdr.ExtStart, "expected end_mem to be past ext_start")
}

func TestHasMagic(t *testing.T) {
	raw := buildImage(t, []byte{0x00}, 64)
	assert(t, hasMagic(raw), "expected a freshly built image to carry the magic number")

	raw[1] = 'X'
	assert(t, !hasMagic(raw), "expected a corrupted magic number to be rejected")
}
