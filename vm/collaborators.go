package vm

import "io"

// Glk models the Glk terminal/windowing library that handles all real
// input and output for a running story. Real implementations route through
// a platform's actual window system; this core only needs somewhere to
// send the handful of opcodes that touch it.
type Glk interface {
	StreamChar(r rune) error
	StreamUnichar(r rune) error
	StreamNum(n int32) error
	StreamStr(addr uint32, mem *Memory) error
	Dispatch(selector uint32, args []uint32) (uint32, error)
}

// Persistence models save-game and undo storage (SAVE/RESTORE/SAVEUNDO/
// RESTOREUNDO and their opcodes' underlying behavior).
type Persistence interface {
	Save(w io.Writer, mem *Memory) error
	Restore(r io.Reader, mem *Memory) error
	SaveUndo(mem *Memory) error
	RestoreUndo(mem *Memory) error
	HasUndo() bool
	DiscardUndo()
}

// Accelerators models the accelerated-function table: native
// reimplementations of common Glulx functions an interpreter may install
// so it doesn't have to interpret them byte by byte.
type Accelerators interface {
	Lookup(funcAddr uint32) (AccelFunc, bool)
	SetFunction(index uint32, funcAddr uint32)
	SetParam(index uint32, value uint32)
}

// AccelFunc is a native stand-in for one accelerated Glulx function.
type AccelFunc func(mem *Memory, args []uint32) (uint32, error)

// FloatMath models the floating-point and double-precision transcendental
// operations (the 0x190-0x1B6 and 0x200-0x226 opcode ranges). Splitting
// this out keeps the core's arithmetic handlers free of the IEEE-754
// corner-case handling that real Glulx interpreters lean on a platform
// math library for. Add/Sub/Mul/Div are mechanical (bit-level IEEE-754
// arithmetic); the rest are genuine transcendentals, whose numeric
// implementation a collaborator may decline by returning
// errUnsupportedFeature.
type FloatMath interface {
	Add(x, y float32) (float32, error)
	Sub(x, y float32) (float32, error)
	Mul(x, y float32) (float32, error)
	Div(x, y float32) (float32, error)
	Sqrt(x float32) (float32, error)
	Exp(x float32) (float32, error)
	Log(x float32) (float32, error)
	Pow(x, y float32) (float32, error)
	Sin(x float32) (float32, error)
	Cos(x float32) (float32, error)
	Tan(x float32) (float32, error)
	Asin(x float32) (float32, error)
	Acos(x float32) (float32, error)
	Atan(x float32) (float32, error)
	Atan2(x, y float32) (float32, error)

	AddD(x, y float64) (float64, error)
	SubD(x, y float64) (float64, error)
	MulD(x, y float64) (float64, error)
	DivD(x, y float64) (float64, error)
	SqrtD(x float64) (float64, error)
	ExpD(x float64) (float64, error)
	LogD(x float64) (float64, error)
	PowD(x, y float64) (float64, error)
	SinD(x float64) (float64, error)
	CosD(x float64) (float64, error)
	TanD(x float64) (float64, error)
	AsinD(x float64) (float64, error)
	AcosD(x float64) (float64, error)
	AtanD(x float64) (float64, error)
	Atan2D(x, y float64) (float64, error)
}

// Collaborators bundles the four external services an interpreter needs;
// a fresh, unconfigured one is ready to run with sensible no-op/real-math
// defaults via NewNullCollaborators.
type Collaborators struct {
	Glk          Glk
	Persistence  Persistence
	Accelerators Accelerators
	Float        FloatMath
}

// NewNullCollaborators returns a Collaborators bundle whose Glk and
// Persistence are inert stubs (matching the no-op device the core falls
// back to when nothing is attached, see teacher's nodevice), whose
// Accelerators table starts empty, and whose FloatMath answers the
// mechanical ops (Add/Sub/Mul/Div) but declines every genuine
// transcendental, since their numeric implementation is out of scope here.
func NewNullCollaborators() *Collaborators {
	return &Collaborators{
		Glk:          nullGlk{},
		Persistence:  nullPersistence{},
		Accelerators: newAccelTable(),
		Float:        nullFloatMath{},
	}
}

// nullGlk discards all output and answers dispatch calls with
// errUnsupportedFeature, the same shape as the teacher's nodevice.
type nullGlk struct{}

func (nullGlk) StreamChar(rune) error                 { return nil }
func (nullGlk) StreamUnichar(rune) error               { return nil }
func (nullGlk) StreamNum(int32) error                  { return nil }
func (nullGlk) StreamStr(uint32, *Memory) error        { return nil }
func (nullGlk) Dispatch(uint32, []uint32) (uint32, error) {
	return 0, errUnsupportedFeature
}

// nullPersistence rejects every save/restore request; undo is tracked as
// permanently empty.
type nullPersistence struct{}

func (nullPersistence) Save(io.Writer, *Memory) error    { return errUnsupportedFeature }
func (nullPersistence) Restore(io.Reader, *Memory) error { return errUnsupportedFeature }
func (nullPersistence) SaveUndo(*Memory) error           { return errUnsupportedFeature }
func (nullPersistence) RestoreUndo(*Memory) error        { return errUnsupportedFeature }
func (nullPersistence) HasUndo() bool                    { return false }
func (nullPersistence) DiscardUndo()                     {}

// accelTable is the default in-memory Accelerators implementation: a
// lookup table an embedder populates, empty until then.
type accelTable struct {
	funcs  map[uint32]uint32
	params map[uint32]uint32
}

func newAccelTable() *accelTable {
	return &accelTable{funcs: make(map[uint32]uint32), params: make(map[uint32]uint32)}
}

func (t *accelTable) Lookup(uint32) (AccelFunc, bool) {
	// No native reimplementations are registered by default; every
	// accelerated call falls back to ordinary interpretation.
	return nil, false
}

func (t *accelTable) SetFunction(index, funcAddr uint32) { t.funcs[index] = funcAddr }
func (t *accelTable) SetParam(index, value uint32)       { t.params[index] = value }

// nullFloatMath answers the mechanical IEEE-754 ops directly (no library
// beyond the `+`/`-`/`*`/`/` operators themselves) and reports every
// genuine transcendental as unsupported, per spec.md's "floating-point
// transcendentals...numeric implementation is not in scope".
type nullFloatMath struct{}

func (nullFloatMath) Add(x, y float32) (float32, error) { return x + y, nil }
func (nullFloatMath) Sub(x, y float32) (float32, error) { return x - y, nil }
func (nullFloatMath) Mul(x, y float32) (float32, error) { return x * y, nil }
func (nullFloatMath) Div(x, y float32) (float32, error) { return x / y, nil }

func (nullFloatMath) Sqrt(float32) (float32, error)     { return 0, errUnsupportedFeature }
func (nullFloatMath) Exp(float32) (float32, error)      { return 0, errUnsupportedFeature }
func (nullFloatMath) Log(float32) (float32, error)      { return 0, errUnsupportedFeature }
func (nullFloatMath) Pow(x, y float32) (float32, error) { return 0, errUnsupportedFeature }
func (nullFloatMath) Sin(float32) (float32, error)      { return 0, errUnsupportedFeature }
func (nullFloatMath) Cos(float32) (float32, error)      { return 0, errUnsupportedFeature }
func (nullFloatMath) Tan(float32) (float32, error)      { return 0, errUnsupportedFeature }
func (nullFloatMath) Asin(float32) (float32, error)     { return 0, errUnsupportedFeature }
func (nullFloatMath) Acos(float32) (float32, error)     { return 0, errUnsupportedFeature }
func (nullFloatMath) Atan(float32) (float32, error)     { return 0, errUnsupportedFeature }
func (nullFloatMath) Atan2(x, y float32) (float32, error) {
	return 0, errUnsupportedFeature
}

func (nullFloatMath) AddD(x, y float64) (float64, error) { return x + y, nil }
func (nullFloatMath) SubD(x, y float64) (float64, error) { return x - y, nil }
func (nullFloatMath) MulD(x, y float64) (float64, error) { return x * y, nil }
func (nullFloatMath) DivD(x, y float64) (float64, error) { return x / y, nil }

func (nullFloatMath) SqrtD(float64) (float64, error)     { return 0, errUnsupportedFeature }
func (nullFloatMath) ExpD(float64) (float64, error)      { return 0, errUnsupportedFeature }
func (nullFloatMath) LogD(float64) (float64, error)      { return 0, errUnsupportedFeature }
func (nullFloatMath) PowD(x, y float64) (float64, error) { return 0, errUnsupportedFeature }
func (nullFloatMath) SinD(float64) (float64, error)      { return 0, errUnsupportedFeature }
func (nullFloatMath) CosD(float64) (float64, error)      { return 0, errUnsupportedFeature }
func (nullFloatMath) TanD(float64) (float64, error)      { return 0, errUnsupportedFeature }
func (nullFloatMath) AsinD(float64) (float64, error)     { return 0, errUnsupportedFeature }
func (nullFloatMath) AcosD(float64) (float64, error)     { return 0, errUnsupportedFeature }
func (nullFloatMath) AtanD(float64) (float64, error)     { return 0, errUnsupportedFeature }
func (nullFloatMath) Atan2D(x, y float64) (float64, error) {
	return 0, errUnsupportedFeature
}
