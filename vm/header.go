package vm

import "encoding/binary"

// headerSize is the length in bytes of the fixed Glulx prologue.
const headerSize = 36

var magic = [4]byte{'G', 'l', 'u', 'l'}

// Version is the three-part story-file format version held in the header.
type Version struct {
	Major uint16
	Minor uint8
	Patch uint8
}

// Header is the parsed form of the 36-byte prologue at offset 0 of every
// Glulx image. It is re-derived on demand from the raw bytes rather than
// cached, so it can never drift from the memory it describes.
type Header struct {
	Version      Version
	RAMStart     uint32
	ExtStart     uint32
	EndMem       uint32
	StackSize    uint32
	StartFunc    uint32
	DecodingTree uint32
	Checksum     uint32
}

// checksumOffset is the byte offset of the checksum field within the header.
const checksumOffset = 32

// parseHeader reads the 36-byte prologue out of raw. The caller is
// responsible for having already verified len(raw) >= headerSize and that
// raw[0:4] equals the magic number.
func parseHeader(raw []byte) Header {
	return Header{
		Version: Version{
			Major: binary.BigEndian.Uint16(raw[4:6]),
			Minor: raw[6],
			Patch: raw[7],
		},
		RAMStart:     binary.BigEndian.Uint32(raw[8:12]),
		ExtStart:     binary.BigEndian.Uint32(raw[12:16]),
		EndMem:       binary.BigEndian.Uint32(raw[16:20]),
		StackSize:    binary.BigEndian.Uint32(raw[20:24]),
		StartFunc:    binary.BigEndian.Uint32(raw[24:28]),
		DecodingTree: binary.BigEndian.Uint32(raw[28:32]),
		Checksum:     binary.BigEndian.Uint32(raw[32:36]),
	}
}

func hasMagic(raw []byte) bool {
	return raw[0] == magic[0] && raw[1] == magic[1] && raw[2] == magic[2] && raw[3] == magic[3]
}
