package vm

import "fmt"

// OPCode is a Glulx opcode number. The numeric values are authoritative and
// come straight from the Glulx specification; see arity() below for the
// (loads, stores) table copied from the reference implementation.
type OPCode uint32

// Opcode numbers, grouped as in the Glulx specification.
const (
	// 2.1. Integer Math
	OpADD OPCode = 0x10 + iota
	OpSUB
	OpMUL
	OpDIV
	OpMOD
	OpNEG
)

const (
	OpBITAND OPCode = 0x18 + iota
	OpBITOR
	OpBITXOR
	OpBITNOT
	OpSHIFTL
	OpSSHIFTR
	OpUSHIFTR
)

// 2.2. Branches
const OpJUMP OPCode = 0x20

const (
	OpJZ OPCode = 0x22 + iota
	OpJNZ
	OpJEQ
	OpJNE
	OpJLT
	OpJGE
	OpJGT
	OpJLE
	OpJLTU
	OpJGEU
	OpJGTU
	OpJLEU
)

const OpJUMPABS OPCode = 0x104

const (
	// 2.3. Moving Data
	OpCOPY OPCode = 0x40 + iota
	OpCOPYS
	OpCOPYB
)

const (
	OpSEXS OPCode = 0x44 + iota
	OpSEXB
)

const (
	// 2.4. Array Data
	OpALOAD OPCode = 0x48 + iota
	OpALOADS
	OpALOADB
	OpALOADBIT
	OpASTORE
	OpASTORES
	OpASTOREB
	OpASTOREBIT
)

const (
	// 2.5. The Stack
	OpSTKCOUNT OPCode = 0x50 + iota
	OpSTKPEEK
	OpSTKSWAP
	OpSTKROLL
	OpSTKCOPY
)

const (
	// 2.6. Functions
	OpCALL     OPCode = 0x30
	OpRETURN   OPCode = 0x31
	OpTAILCALL OPCode = 0x34
)

const (
	OpCALLF OPCode = 0x160 + iota
	OpCALLFI
	OpCALLFII
	OpCALLFIII
)

const (
	// 2.7. Continuations
	OpCATCH OPCode = 0x32
	OpTHROW OPCode = 0x33
)

const (
	// 2.8. Memory Map
	OpGETMEMSIZE OPCode = 0x102
	OpSETMEMSIZE OPCode = 0x103
)

const (
	// 2.9. Memory Allocation Heap
	OpMALLOC OPCode = 0x178
	OpMFREE  OPCode = 0x179
)

const (
	// 2.10. Game State
	OpQUIT OPCode = 0x120 + iota
	OpVERIFY
	OpRESTART
	OpSAVE
	OpRESTORE
	OpSAVEUNDO
	OpRESTOREUNDO
	OpPROTECT
	OpHASUNDO
	OpDISCARDUNDO
)

const (
	// 2.11. Output
	OpSTREAMCHAR OPCode = 0x70 + iota
	OpSTREAMNUM
	OpSTREAMSTR
	OpSTREAMUNICHAR
)

const (
	OpGETSTRINGTBL OPCode = 0x140 + iota
	OpSETSTRINGTBL
)

const (
	OpGETIOSYS OPCode = 0x148 + iota
	OpSETIOSYS
)

const (
	// 2.12. Floating-Point Math
	OpNUMTOF OPCode = 0x190 + iota
	OpFTONUMZ
	OpFTONUMN
)

const (
	OpCEIL OPCode = 0x198 + iota
	OpFLOOR
)

const (
	OpFADD OPCode = 0x1A0 + iota
	OpFSUB
	OpFMUL
	OpFDIV
	OpFMOD
)

const (
	OpSQRT OPCode = 0x1A8 + iota
	OpEXP
	OpLOG
	OpPOW
)

const (
	OpSIN OPCode = 0x1B0 + iota
	OpCOS
	OpTAN
	OpASIN
	OpACOS
	OpATAN
	OpATAN2
)

const (
	// 2.13. Double-Precision Math
	OpNUMTOD OPCode = 0x200 + iota
	OpDTONUMZ
	OpDTONUMN
	OpFTOD
	OpDTOF
)

const (
	OpDCEIL OPCode = 0x208 + iota
	OpDFLOOR
)

const (
	OpDADD OPCode = 0x210 + iota
	OpDSUB
	OpDMUL
	OpDDIV
	OpDMODR
	OpDMODQ
)

const (
	OpDSQRT OPCode = 0x218 + iota
	OpDEXP
)

const OpDLOG OPCode = 0x21A
const OpDPOW OPCode = 0x21B

const (
	OpDSIN OPCode = 0x220 + iota
	OpDCOS
	OpDTAN
	OpDASIN
	OpDACOS
	OpDATAN
	OpDATAN2
)

const (
	// 2.14. Floating-Point Comparisons
	OpJFEQ OPCode = 0x1C0 + iota
	OpJFNE
	OpJFLT
	OpJFLE
	OpJFGT
	OpJFGE
)

const (
	OpJISNAN OPCode = 0x1C8 + iota
	OpJISINF
)

const (
	// 2.15. Double-Precision Comparisons
	OpJDEQ OPCode = 0x230 + iota
	OpJDNE
	OpJDLT
	OpJDLE
	OpJDGT
	OpJDGE
)

const (
	OpJDISNAN OPCode = 0x238 + iota
	OpJDISINF
)

const (
	// 2.16. Random Number Generator
	OpRANDOM OPCode = 0x110 + iota
	OpSETRANDOM
)

const (
	// 2.17. Block Copy and Clear
	OpMZERO OPCode = 0x170 + iota
	OpMCOPY
)

const (
	// 2.18. Searching
	OpLINEARSEARCH OPCode = 0x150 + iota
	OpBINARYSEARCH
	OpLINKEDSEARCH
)

const (
	// 2.19. Accelerated Functions
	OpACCELFUNC OPCode = 0x180 + iota
	OpACCELPARAM
)

const (
	// 2.20. Miscellaneous
	OpNOP      OPCode = 0x00
	OpGESTALT  OPCode = 0x100
	OpDEBUGTRAP OPCode = 0x101
	OpGLK      OPCode = 0x130
)

// opcodeNames gives a symbolic name for error messages and -debug tracing.
var opcodeNames = map[OPCode]string{
	OpADD: "add", OpSUB: "sub", OpMUL: "mul", OpDIV: "div", OpMOD: "mod", OpNEG: "neg",
	OpBITAND: "bitand", OpBITOR: "bitor", OpBITXOR: "bitxor", OpBITNOT: "bitnot",
	OpSHIFTL: "shiftl", OpSSHIFTR: "sshiftr", OpUSHIFTR: "ushiftr",
	OpJUMP: "jump", OpJZ: "jz", OpJNZ: "jnz", OpJEQ: "jeq", OpJNE: "jne",
	OpJLT: "jlt", OpJGE: "jge", OpJGT: "jgt", OpJLE: "jle",
	OpJLTU: "jltu", OpJGEU: "jgeu", OpJGTU: "jgtu", OpJLEU: "jleu", OpJUMPABS: "jumpabs",
	OpCOPY: "copy", OpCOPYS: "copys", OpCOPYB: "copyb", OpSEXS: "sexs", OpSEXB: "sexb",
	OpALOAD: "aload", OpALOADS: "aloads", OpALOADB: "aloadb", OpALOADBIT: "aloadbit",
	OpASTORE: "astore", OpASTORES: "astores", OpASTOREB: "astoreb", OpASTOREBIT: "astorebit",
	OpSTKCOUNT: "stkcount", OpSTKPEEK: "stkpeek", OpSTKSWAP: "stkswap", OpSTKROLL: "stkroll", OpSTKCOPY: "stkcopy",
	OpCALL: "call", OpRETURN: "return", OpTAILCALL: "tailcall",
	OpCALLF: "callf", OpCALLFI: "callfi", OpCALLFII: "callfii", OpCALLFIII: "callfiii",
	OpCATCH: "catch", OpTHROW: "throw",
	OpGETMEMSIZE: "getmemsize", OpSETMEMSIZE: "setmemsize",
	OpMALLOC: "malloc", OpMFREE: "mfree",
	OpQUIT: "quit", OpVERIFY: "verify", OpRESTART: "restart", OpSAVE: "save", OpRESTORE: "restore",
	OpSAVEUNDO: "saveundo", OpRESTOREUNDO: "restoreundo", OpPROTECT: "protect",
	OpHASUNDO: "hasundo", OpDISCARDUNDO: "discardundo",
	OpSTREAMCHAR: "streamchar", OpSTREAMNUM: "streamnum", OpSTREAMSTR: "streamstr", OpSTREAMUNICHAR: "streamunichar",
	OpGETSTRINGTBL: "getstringtbl", OpSETSTRINGTBL: "setstringtbl",
	OpGETIOSYS: "getiosys", OpSETIOSYS: "setiosys",
	OpNUMTOF: "numtof", OpFTONUMZ: "ftonumz", OpFTONUMN: "ftonumn",
	OpCEIL: "ceil", OpFLOOR: "floor",
	OpFADD: "fadd", OpFSUB: "fsub", OpFMUL: "fmul", OpFDIV: "fdiv", OpFMOD: "fmod",
	OpSQRT: "sqrt", OpEXP: "exp", OpLOG: "log", OpPOW: "pow",
	OpSIN: "sin", OpCOS: "cos", OpTAN: "tan", OpASIN: "asin", OpACOS: "acos", OpATAN: "atan", OpATAN2: "atan2",
	OpNUMTOD: "numtod", OpDTONUMZ: "dtonumz", OpDTONUMN: "dtonumn", OpFTOD: "ftod", OpDTOF: "dtof",
	OpDCEIL: "dceil", OpDFLOOR: "dfloor",
	OpDADD: "dadd", OpDSUB: "dsub", OpDMUL: "dmul", OpDDIV: "ddiv", OpDMODR: "dmodr", OpDMODQ: "dmodq",
	OpDSQRT: "dsqrt", OpDEXP: "dexp", OpDLOG: "dlog", OpDPOW: "dpow",
	OpDSIN: "dsin", OpDCOS: "dcos", OpDTAN: "dtan", OpDASIN: "dasin", OpDACOS: "dacos", OpDATAN: "datan", OpDATAN2: "datan2",
	OpJFEQ: "jfeq", OpJFNE: "jfne", OpJFLT: "jflt", OpJFLE: "jfle", OpJFGT: "jfgt", OpJFGE: "jfge",
	OpJISNAN: "jisnan", OpJISINF: "jisinf",
	OpJDEQ: "jdeq", OpJDNE: "jdne", OpJDLT: "jdlt", OpJDLE: "jdle", OpJDGT: "jdgt", OpJDGE: "jdge",
	OpJDISNAN: "jdisnan", OpJDISINF: "jdisinf",
	OpRANDOM: "random", OpSETRANDOM: "setrandom",
	OpMZERO: "mzero", OpMCOPY: "mcopy",
	OpLINEARSEARCH: "linearsearch", OpBINARYSEARCH: "binarysearch", OpLINKEDSEARCH: "linkedsearch",
	OpACCELFUNC: "accelfunc", OpACCELPARAM: "accelparam",
	OpNOP: "nop", OpGESTALT: "gestalt", OpDEBUGTRAP: "debugtrap", OpGLK: "glk",
}

func (c OPCode) String() string {
	if name, ok := opcodeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("opcode(%#x)", uint32(c))
}

// arity returns (loads, stores) for a known opcode, and ok=false for any
// value not in the Glulx opcode space. This table is copied verbatim (in
// meaning) from the reference implementation's OPCode::get_operand_types.
func (c OPCode) arity() (loads, stores int, ok bool) {
	switch c {
	case OpSTKSWAP, OpQUIT, OpRESTART, OpDISCARDUNDO, OpNOP:
		return 0, 0, true

	case OpSTKCOUNT, OpGETMEMSIZE, OpSAVEUNDO, OpRESTOREUNDO, OpHASUNDO, OpVERIFY, OpGETSTRINGTBL:
		return 0, 1, true

	case OpGETIOSYS:
		return 0, 2, true

	case OpJUMP, OpJUMPABS, OpSTKCOPY, OpRETURN, OpMFREE, OpSTREAMCHAR, OpSTREAMUNICHAR,
		OpSTREAMNUM, OpSTREAMSTR, OpSETSTRINGTBL, OpSETRANDOM, OpDEBUGTRAP:
		return 1, 0, true

	case OpNEG, OpBITNOT, OpCOPY, OpCOPYS, OpCOPYB, OpSEXS, OpSEXB, OpSTKPEEK, OpCALLF,
		OpCATCH, // special case: store comes before load, see decoder
		OpSETMEMSIZE, OpMALLOC, OpSAVE, OpRESTORE,
		OpNUMTOF, OpFTONUMZ, OpFTONUMN, OpCEIL, OpFLOOR,
		OpSQRT, OpEXP, OpLOG, OpSIN, OpCOS, OpTAN, OpACOS, OpASIN, OpATAN, OpRANDOM:
		return 1, 1, true

	case OpNUMTOD, OpFTOD:
		return 1, 2, true

	case OpJZ, OpJNZ, OpSTKROLL, OpTAILCALL, OpTHROW, OpPROTECT, OpSETIOSYS,
		OpJISNAN, OpJISINF, OpMZERO, OpACCELFUNC, OpACCELPARAM:
		return 2, 0, true

	case OpADD, OpSUB, OpMUL, OpDIV, OpMOD, OpBITAND, OpBITOR, OpBITXOR,
		OpSHIFTL, OpUSHIFTR, OpSSHIFTR, OpALOAD, OpALOADS, OpALOADB, OpALOADBIT,
		OpCALL, OpCALLFI, OpFADD, OpFSUB, OpFMUL, OpFDIV, OpPOW, OpATAN2,
		OpDTONUMZ, OpDTONUMN, OpDTOF, OpGESTALT, OpGLK:
		return 2, 1, true

	case OpFMOD, OpDCEIL, OpDFLOOR, OpDSQRT, OpDEXP, OpDLOG, OpDSIN, OpDCOS, OpDTAN,
		OpDACOS, OpDASIN, OpDATAN:
		return 2, 2, true

	case OpJEQ, OpJNE, OpJLT, OpJLE, OpJGT, OpJGE, OpJLTU, OpJLEU, OpJGTU, OpJGEU,
		OpASTORE, OpASTORES, OpASTOREB, OpASTOREBIT,
		OpJFLT, OpJFLE, OpJFGT, OpJFGE, OpJDISNAN, OpJDISINF, OpMCOPY:
		return 3, 0, true

	case OpCALLFII:
		return 3, 1, true

	case OpJFEQ, OpJFNE:
		return 4, 0, true

	case OpCALLFIII:
		return 4, 1, true

	case OpDADD, OpDSUB, OpDMUL, OpDDIV, OpDMODR, OpDMODQ, OpDPOW, OpDATAN2:
		return 4, 2, true

	case OpJDLT, OpJDLE, OpJDGT, OpJDGE:
		return 5, 0, true

	case OpLINKEDSEARCH:
		return 6, 1, true

	case OpJDEQ, OpJDNE:
		return 7, 0, true

	case OpLINEARSEARCH, OpBINARYSEARCH:
		return 7, 1, true

	default:
		return 0, 0, false
	}
}
