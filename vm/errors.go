package vm

import (
	"errors"
	"fmt"
)

// Load errors. These abort image loading before any Memory exists.
var (
	errBadMagic = errors.New("glulx: bad magic, expected 'Glul'")
)

// NotEnoughDataError is returned when the image is too short to hold a header.
type NotEnoughDataError struct {
	Got int
}

func (e *NotEnoughDataError) Error() string {
	return fmt.Sprintf("glulx: image is %d bytes, need at least %d for the header", e.Got, headerSize)
}

// InconsistentLayoutError is returned when the header's size fields don't
// describe a sane memory layout.
type InconsistentLayoutError struct {
	Reason string
}

func (e *InconsistentLayoutError) Error() string {
	return fmt.Sprintf("glulx: inconsistent memory layout: %s", e.Reason)
}

// BadChecksumError is returned when the header checksum doesn't match the
// computed checksum of the image.
type BadChecksumError struct {
	Expected, Computed uint32
}

func (e *BadChecksumError) Error() string {
	return fmt.Sprintf("glulx: bad checksum: header says %#08x, computed %#08x", e.Expected, e.Computed)
}

// Decode errors. These terminate the current decode at the PC they arose at;
// they never recover locally.

// UnknownOpcodeError is returned when the decoder reads an opcode number not
// present in the opcode table.
type UnknownOpcodeError struct {
	Value  uint32
	PC     uint32
}

func (e *UnknownOpcodeError) Error() string {
	return fmt.Sprintf("glulx: unknown opcode %#x at %#x", e.Value, e.PC)
}

// ReservedOperandModeError is returned when an operand's addressing mode
// nibble is one of the two reserved-but-unused codes (4 or 12).
type ReservedOperandModeError struct {
	Code uint8
}

func (e *ReservedOperandModeError) Error() string {
	return fmt.Sprintf("glulx: reserved operand addressing mode %#x", e.Code)
}

// TruncatedInstructionError is returned when the decoder runs off the end of
// memory while reading an opcode, its mode bytes, or an immediate.
type TruncatedInstructionError struct {
	PC uint32
}

func (e *TruncatedInstructionError) Error() string {
	return fmt.Sprintf("glulx: truncated instruction at %#x", e.PC)
}

// Execution errors.

// AddressOutOfRangeError is returned by any Memory accessor whose address
// (plus width) falls outside [0, len(memory)).
type AddressOutOfRangeError struct {
	Addr  uint32
	Width int
}

func (e *AddressOutOfRangeError) Error() string {
	return fmt.Sprintf("glulx: address %#x (width %d) is out of range", e.Addr, e.Width)
}

// WriteToROMError is returned when a write's affected bytes intersect the
// read-only region [0, ram_start).
type WriteToROMError struct {
	Addr uint32
}

func (e *WriteToROMError) Error() string {
	return fmt.Sprintf("glulx: write to ROM address %#x", e.Addr)
}

// InvalidStoreTargetError is returned when a Store operand decodes to an
// addressing mode that cannot be a store destination (a constant).
type InvalidStoreTargetError struct {
	Mode AddressingMode
}

func (e *InvalidStoreTargetError) Error() string {
	return fmt.Sprintf("glulx: addressing mode %v is not a valid store target", e.Mode)
}

var (
	errStackUnderflow     = errors.New("glulx: stack underflow")
	errStackOverflow      = errors.New("glulx: stack overflow")
	errDivisionByZero     = errors.New("glulx: division by zero")
	errUnsupportedFeature = errors.New("glulx: feature not supported by this build")
	errNoCurrentFrame     = errors.New("glulx: no active call frame")
	errInvalidCatchToken  = errors.New("glulx: throw given a token no active catch produced")
)

// HaltedError is the only normal (non-error) termination condition; it is
// still threaded through the error return of Step so callers have a single
// place to check for "the interpreter stopped".
type HaltedError struct {
	Reason string
}

func (e *HaltedError) Error() string {
	return fmt.Sprintf("glulx: halted: %s", e.Reason)
}

func isHalted(err error) bool {
	_, ok := err.(*HaltedError)
	return ok
}
