package vm_test

import (
	"encoding/binary"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"glulxvm/vm"
)

func TestProperties(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Glulx Core Properties")
}

// buildTestImage mirrors S1: a 36-byte header plus a 4-byte body, zero
// padded out to ram_start, with a correctly computed checksum. NewMemory
// rejects images whose length is not a multiple of 4, so the specs below
// zero-pad any code they append.
func buildTestImage(t testing.TB, mutateBodyByte bool) []byte {
	raw := make([]byte, 0x40)
	copy(raw[0:4], []byte("Glul"))
	binary.BigEndian.PutUint16(raw[4:6], 3)
	raw[6], raw[7] = 1, 1
	binary.BigEndian.PutUint32(raw[8:12], 0x40)
	binary.BigEndian.PutUint32(raw[12:16], 0x40)
	binary.BigEndian.PutUint32(raw[16:20], 0x100)
	binary.BigEndian.PutUint32(raw[20:24], 0x100)
	binary.BigEndian.PutUint32(raw[24:28], 0x40)
	binary.BigEndian.PutUint32(raw[28:32], 0)
	// body bytes at 0x24..0x28 (inside the header's own tail, per S1)
	copy(raw[0x24:0x28], []byte{0, 0, 0, 0})

	sum := uint32(0)
	for i := 0; i < len(raw); i += 4 {
		if uint32(i) == 32 {
			continue
		}
		sum += binary.BigEndian.Uint32(raw[i : i+4])
	}
	binary.BigEndian.PutUint32(raw[32:36], sum)

	if mutateBodyByte {
		raw[0x24] ^= 0xFF
	}
	return raw
}

var _ = Describe("Image loading", func() {
	It("S1: loads a well-formed image and starts at start_func", func() {
		raw := buildTestImage(GinkgoT(), false)
		_, start, err := vm.Load(raw)
		Expect(err).NotTo(HaveOccurred())
		Expect(start).To(Equal(uint32(0x40)))
	})

	It("S2: rejects a mutated body with BadChecksum", func() {
		raw := buildTestImage(GinkgoT(), true)
		_, _, err := vm.Load(raw)
		Expect(err).To(BeAssignableToTypeOf(&vm.BadChecksumError{}))
	})

	It("invariant 1: an image without the Glul magic is rejected, even when too short for a header", func() {
		raw := []byte("XYZZ")
		_, _, err := vm.Load(raw)
		Expect(err).To(HaveOccurred())
	})

	It("invariant 2: an image shorter than 36 bytes fails with NotEnoughData", func() {
		_, err := vm.NewMemory(make([]byte, 35))
		Expect(err).To(BeAssignableToTypeOf(&vm.NotEnoughDataError{}))
	})
})

var _ = Describe("Decoding", func() {
	It("S3: ADD consumes 2 mode bytes for 3 operands and decodes their immediates", func() {
		raw := buildTestImage(GinkgoT(), false)
		raw = append(raw, 0x10, 0x01, 0x05, 0x03, 0x07, 0, 0, 0)
		mem, err := vm.NewMemory(raw)
		Expect(err).NotTo(HaveOccurred())

		ins, next, err := vm.Decode(mem, 0x40)
		Expect(err).NotTo(HaveOccurred())
		Expect(ins.Code).To(Equal(vm.OpADD))
		Expect(ins.Operands).To(HaveLen(3))
		Expect(next).To(Equal(uint32(0x40 + 5)))
	})

	It("S4: decodes the 2-byte opcode form 81 04 as JUMPABS", func() {
		raw := buildTestImage(GinkgoT(), false)
		raw = append(raw, 0x81, 0x04, 0x00, 0x00)
		mem, err := vm.NewMemory(raw)
		Expect(err).NotTo(HaveOccurred())

		ins, _, err := vm.Decode(mem, 0x40)
		Expect(err).NotTo(HaveOccurred())
		Expect(ins.Code).To(Equal(vm.OpJUMPABS))
	})

	It("S5: decodes the 4-byte opcode form C0 00 01 04 as JUMPABS", func() {
		raw := buildTestImage(GinkgoT(), false)
		raw = append(raw, 0xC0, 0x00, 0x01, 0x04, 0x00, 0, 0, 0)
		mem, err := vm.NewMemory(raw)
		Expect(err).NotTo(HaveOccurred())

		ins, _, err := vm.Decode(mem, 0x40)
		Expect(err).NotTo(HaveOccurred())
		Expect(ins.Code).To(Equal(vm.OpJUMPABS))
	})

	It("S6: CATCH's mode byte 0x81 makes the store a Constant-1Byte (invalid) and the load Stack", func() {
		raw := buildTestImage(GinkgoT(), false)
		raw = append(raw, 0x32, 0x81, 0x00, 0x00)
		mem, err := vm.NewMemory(raw)
		Expect(err).NotTo(HaveOccurred())

		_, _, err = vm.Decode(mem, 0x40)
		Expect(err).NotTo(HaveOccurred())
		// CATCH's store resolves without complaint at decode time; the
		// InvalidStoreTarget only surfaces when a resolver actually tries
		// to write through it.
		ins, _, _ := vm.Decode(mem, 0x40)
		Expect(ins.Operands[0].Direction).To(Equal(vm.Store))
		Expect(ins.Operands[1].Direction).To(Equal(vm.Load))

		r := &vm.OperandResolver{Mem: mem, Stack: vm.NewStack(4)}
		err = r.Store(ins.Operands[0], 1)
		Expect(err).To(BeAssignableToTypeOf(&vm.InvalidStoreTargetError{}))
	})

	It("invariant 5: an odd operand count ignores the trailing high nibble", func() {
		raw := buildTestImage(GinkgoT(), false)
		// ASTOREB: 3 loads, 0 stores -> 2 mode bytes, second byte's high nibble unused.
		raw = append(raw, byte(vm.OpASTOREB), 0x11, 0xF1, 1, 2, 3, 0, 0)
		mem, err := vm.NewMemory(raw)
		Expect(err).NotTo(HaveOccurred())

		ins, _, err := vm.Decode(mem, 0x40)
		Expect(err).NotTo(HaveOccurred())
		Expect(ins.Operands).To(HaveLen(3))
	})

	It("invariant 6: CATCH orders Store before Load; every other opcode orders loads before stores", func() {
		raw := buildTestImage(GinkgoT(), false)
		raw = append(raw, byte(vm.OpADD), 0x11, 0x0F, 1, 2, 0, 0, 0, 0, 0, 0, 0)
		mem, err := vm.NewMemory(raw)
		Expect(err).NotTo(HaveOccurred())

		ins, _, err := vm.Decode(mem, 0x40)
		Expect(err).NotTo(HaveOccurred())
		Expect(ins.Operands[0].Direction).To(Equal(vm.Load))
		Expect(ins.Operands[1].Direction).To(Equal(vm.Load))
		Expect(ins.Operands[2].Direction).To(Equal(vm.Store))
	})

	It("invariant 7: reserved modes 4 and 12 fail regardless of opcode", func() {
		raw := buildTestImage(GinkgoT(), false)
		raw = append(raw, byte(vm.OpNEG), 0x04, 0, 0)
		mem, err := vm.NewMemory(raw)
		Expect(err).NotTo(HaveOccurred())

		_, _, err = vm.Decode(mem, 0x40)
		Expect(err).To(BeAssignableToTypeOf(&vm.ReservedOperandModeError{}))
	})

	It("invariant 4: an opcode outside the table fails with UnknownOpcode", func() {
		raw := buildTestImage(GinkgoT(), false)
		raw = append(raw, 0xC0, 0x00, 0x4F, 0xFF)
		mem, err := vm.NewMemory(raw)
		Expect(err).NotTo(HaveOccurred())

		_, _, err = vm.Decode(mem, 0x40)
		Expect(err).To(BeAssignableToTypeOf(&vm.UnknownOpcodeError{}))
	})

	It("invariant 9: round-trips the minimal encoding for boundary opcode values", func() {
		// 0x00 (1-byte) and 0x120 (2-byte, QUIT) are real opcodes and
		// decode cleanly end to end. 0x7F and 0x4FFF have no table entry,
		// but UnknownOpcodeError still reports the exact numeric value the
		// length-form math produced, which is what this invariant is about.
		cases := []struct {
			name  string
			bytes []byte
			want  uint32
		}{
			{"0x00 1-byte", []byte{0x00}, 0x00},
			{"0x7F 1-byte", []byte{0x7F}, 0x7F},
			{"0x120 2-byte (quit)", []byte{0x81, 0x20}, 0x120},
			{"0x3FFF 2-byte", []byte{0xBF, 0xFF}, 0x3FFF},
			{"0x4FFF 4-byte", []byte{0xC0, 0x00, 0x4F, 0xFF}, 0x4FFF},
		}
		for _, c := range cases {
			raw := buildTestImage(GinkgoT(), false)
			raw = append(raw, c.bytes...)
			for len(raw)%4 != 0 {
				raw = append(raw, 0)
			}
			mem, err := vm.NewMemory(raw)
			Expect(err).NotTo(HaveOccurred())

			_, _, err = vm.Decode(mem, 0x40)
			if err == nil {
				continue // 0x00 and 0x120 decode successfully; nothing further to check
			}
			unk, ok := err.(*vm.UnknownOpcodeError)
			Expect(ok).To(BeTrue(), c.name)
			Expect(unk.Value).To(Equal(c.want), c.name)
		}
	})
})

var _ = Describe("RAM addressing", func() {
	It("invariant 8: ram_start + offset wraps on 32-bit overflow without panicking", func() {
		raw := buildTestImage(GinkgoT(), false)
		mem, err := vm.NewMemory(raw)
		Expect(err).NotTo(HaveOccurred())

		Expect(func() { _, _ = mem.GetRAMU8(0xFFFFFFFF) }).NotTo(Panic())
	})
})
