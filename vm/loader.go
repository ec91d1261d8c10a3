package vm

import (
	"encoding/binary"

	log "github.com/sirupsen/logrus"
)

// Load validates raw as a Glulx story-file image and builds the Memory and
// initial program counter an interpreter needs to start running it. It is
// the only entry point that accepts a raw byte sequence; everything else
// in this package operates on an already-validated Memory.
func Load(raw []byte) (*Memory, uint32, error) {
	if len(raw) < headerSize {
		return nil, 0, &NotEnoughDataError{Got: len(raw)}
	}
	if !hasMagic(raw) {
		return nil, 0, errBadMagic
	}

	hdr := parseHeader(raw)
	if err := validateLayout(hdr, len(raw)); err != nil {
		return nil, 0, err
	}

	computed := checksum(raw)
	if computed != hdr.Checksum {
		return nil, 0, &BadChecksumError{Expected: hdr.Checksum, Computed: computed}
	}

	mem, err := NewMemory(raw)
	if err != nil {
		return nil, 0, err
	}

	log.WithFields(log.Fields{
		"ram_start":  hdr.RAMStart,
		"ext_start":  hdr.ExtStart,
		"end_mem":    hdr.EndMem,
		"start_func": hdr.StartFunc,
		"version":    hdr.Version,
	}).Info("glulx: image loaded")

	return mem, hdr.StartFunc, nil
}

// checksum sums every 32-bit big-endian word of raw, treating the word at
// the checksum field's offset as zero, wrapping on uint32 overflow. raw's
// length must already be known to be a multiple of 4 (validateLayout
// enforces this before checksum is ever called).
func checksum(raw []byte) uint32 {
	var sum uint32
	for i := 0; i+4 <= len(raw); i += 4 {
		word := binary.BigEndian.Uint32(raw[i : i+4])
		if i == checksumOffset {
			word = 0
		}
		sum += word
	}
	return sum
}
