package vm

import "math"

func toFloat(bits uint32) float32  { return math.Float32frombits(bits) }
func fromFloat(f float32) uint32   { return math.Float32bits(f) }
func toDouble(hi, lo uint32) float64 {
	return math.Float64frombits(uint64(hi)<<32 | uint64(lo))
}
func fromDouble(f float64) (hi, lo uint32) {
	bits := math.Float64bits(f)
	return uint32(bits >> 32), uint32(bits)
}

// registerFloatHandlers wires the single- and double-precision arithmetic,
// conversion, and comparison opcodes into m. Add/sub/mul/div and the
// transcendentals delegate to it.Collab.Float; conversions, ceil/floor,
// remainders and comparisons are computed here directly.
func registerFloatHandlers(m map[OPCode]handlerFunc) {
	m[OpNUMTOF] = func(it *Interpreter, ins Instruction, l []uint32) error {
		return it.storeResult(ins, fromFloat(float32(int32(l[0]))))
	}
	m[OpFTONUMZ] = func(it *Interpreter, ins Instruction, l []uint32) error {
		return it.storeResult(ins, uint32(int32(math.Trunc(float64(toFloat(l[0]))))))
	}
	m[OpFTONUMN] = func(it *Interpreter, ins Instruction, l []uint32) error {
		return it.storeResult(ins, uint32(int32(math.Round(float64(toFloat(l[0]))))))
	}
	m[OpCEIL] = func(it *Interpreter, ins Instruction, l []uint32) error {
		return it.storeResult(ins, fromFloat(float32(math.Ceil(float64(toFloat(l[0]))))))
	}
	m[OpFLOOR] = func(it *Interpreter, ins Instruction, l []uint32) error {
		return it.storeResult(ins, fromFloat(float32(math.Floor(float64(toFloat(l[0]))))))
	}
	m[OpFADD] = floatBinary(func(f FloatMath, x, y float32) (float32, error) { return f.Add(x, y) })
	m[OpFSUB] = floatBinary(func(f FloatMath, x, y float32) (float32, error) { return f.Sub(x, y) })
	m[OpFMUL] = floatBinary(func(f FloatMath, x, y float32) (float32, error) { return f.Mul(x, y) })
	m[OpFDIV] = floatBinary(func(f FloatMath, x, y float32) (float32, error) { return f.Div(x, y) })
	m[OpSQRT] = floatUnary(func(f FloatMath, x float32) (float32, error) { return f.Sqrt(x) })
	m[OpEXP] = floatUnary(func(f FloatMath, x float32) (float32, error) { return f.Exp(x) })
	m[OpLOG] = floatUnary(func(f FloatMath, x float32) (float32, error) { return f.Log(x) })
	m[OpPOW] = floatBinary(func(f FloatMath, x, y float32) (float32, error) { return f.Pow(x, y) })
	m[OpSIN] = floatUnary(func(f FloatMath, x float32) (float32, error) { return f.Sin(x) })
	m[OpCOS] = floatUnary(func(f FloatMath, x float32) (float32, error) { return f.Cos(x) })
	m[OpTAN] = floatUnary(func(f FloatMath, x float32) (float32, error) { return f.Tan(x) })
	m[OpASIN] = floatUnary(func(f FloatMath, x float32) (float32, error) { return f.Asin(x) })
	m[OpACOS] = floatUnary(func(f FloatMath, x float32) (float32, error) { return f.Acos(x) })
	m[OpATAN] = floatUnary(func(f FloatMath, x float32) (float32, error) { return f.Atan(x) })
	m[OpATAN2] = floatBinary(func(f FloatMath, x, y float32) (float32, error) { return f.Atan2(x, y) })
	m[OpFMOD] = func(it *Interpreter, ins Instruction, l []uint32) error {
		x, y := toFloat(l[0]), toFloat(l[1])
		rem := float32(math.Mod(float64(x), float64(y)))
		quot := (x - rem) / y
		stores := storeOperands(ins)
		if err := it.resolver().Store(stores[0], fromFloat(rem)); err != nil {
			return err
		}
		return it.resolver().Store(stores[1], fromFloat(quot))
	}

	m[OpNUMTOD] = func(it *Interpreter, ins Instruction, l []uint32) error {
		hi, lo := fromDouble(float64(int32(l[0])))
		return storeTwo(it, ins, hi, lo)
	}
	m[OpFTOD] = func(it *Interpreter, ins Instruction, l []uint32) error {
		hi, lo := fromDouble(float64(toFloat(l[0])))
		return storeTwo(it, ins, hi, lo)
	}
	m[OpDTONUMZ] = func(it *Interpreter, ins Instruction, l []uint32) error {
		return it.storeResult(ins, uint32(int32(math.Trunc(toDouble(l[0], l[1])))))
	}
	m[OpDTONUMN] = func(it *Interpreter, ins Instruction, l []uint32) error {
		return it.storeResult(ins, uint32(int32(math.Round(toDouble(l[0], l[1])))))
	}
	m[OpDTOF] = func(it *Interpreter, ins Instruction, l []uint32) error {
		return it.storeResult(ins, fromFloat(float32(toDouble(l[0], l[1]))))
	}
	m[OpDCEIL] = func(it *Interpreter, ins Instruction, l []uint32) error {
		hi, lo := fromDouble(math.Ceil(toDouble(l[0], l[1])))
		return storeTwo(it, ins, hi, lo)
	}
	m[OpDFLOOR] = func(it *Interpreter, ins Instruction, l []uint32) error {
		hi, lo := fromDouble(math.Floor(toDouble(l[0], l[1])))
		return storeTwo(it, ins, hi, lo)
	}
	m[OpDSQRT] = doubleUnary(func(f FloatMath, x float64) (float64, error) { return f.SqrtD(x) })
	m[OpDEXP] = doubleUnary(func(f FloatMath, x float64) (float64, error) { return f.ExpD(x) })
	m[OpDLOG] = doubleUnary(func(f FloatMath, x float64) (float64, error) { return f.LogD(x) })
	m[OpDSIN] = doubleUnary(func(f FloatMath, x float64) (float64, error) { return f.SinD(x) })
	m[OpDCOS] = doubleUnary(func(f FloatMath, x float64) (float64, error) { return f.CosD(x) })
	m[OpDTAN] = doubleUnary(func(f FloatMath, x float64) (float64, error) { return f.TanD(x) })
	m[OpDASIN] = doubleUnary(func(f FloatMath, x float64) (float64, error) { return f.AsinD(x) })
	m[OpDACOS] = doubleUnary(func(f FloatMath, x float64) (float64, error) { return f.AcosD(x) })
	m[OpDATAN] = doubleUnary(func(f FloatMath, x float64) (float64, error) { return f.AtanD(x) })
	m[OpDADD] = doubleBinary(func(f FloatMath, x, y float64) (float64, error) { return f.AddD(x, y) })
	m[OpDSUB] = doubleBinary(func(f FloatMath, x, y float64) (float64, error) { return f.SubD(x, y) })
	m[OpDMUL] = doubleBinary(func(f FloatMath, x, y float64) (float64, error) { return f.MulD(x, y) })
	m[OpDDIV] = doubleBinary(func(f FloatMath, x, y float64) (float64, error) { return f.DivD(x, y) })
	m[OpDPOW] = doubleBinary(func(f FloatMath, x, y float64) (float64, error) { return f.PowD(x, y) })
	m[OpDATAN2] = doubleBinary(func(f FloatMath, x, y float64) (float64, error) { return f.Atan2D(x, y) })
	m[OpDMODR] = func(it *Interpreter, ins Instruction, l []uint32) error {
		x, y := toDouble(l[0], l[1]), toDouble(l[2], l[3])
		rem := math.Mod(x, y)
		hi, lo := fromDouble(rem)
		return storeTwo(it, ins, hi, lo)
	}
	m[OpDMODQ] = func(it *Interpreter, ins Instruction, l []uint32) error {
		x, y := toDouble(l[0], l[1]), toDouble(l[2], l[3])
		rem := math.Mod(x, y)
		quot := (x - rem) / y
		hi, lo := fromDouble(quot)
		return storeTwo(it, ins, hi, lo)
	}

	m[OpJFEQ] = func(it *Interpreter, ins Instruction, l []uint32) error {
		a, b, eps := toFloat(l[0]), toFloat(l[1]), toFloat(l[2])
		if floatNearlyEqual(a, b, eps) {
			return it.takeBranch(l[3])
		}
		return nil
	}
	m[OpJFNE] = func(it *Interpreter, ins Instruction, l []uint32) error {
		a, b, eps := toFloat(l[0]), toFloat(l[1]), toFloat(l[2])
		if !floatNearlyEqual(a, b, eps) {
			return it.takeBranch(l[3])
		}
		return nil
	}
	m[OpJFLT] = floatCompareBranch(func(a, b float32) bool { return a < b })
	m[OpJFLE] = floatCompareBranch(func(a, b float32) bool { return a <= b })
	m[OpJFGT] = floatCompareBranch(func(a, b float32) bool { return a > b })
	m[OpJFGE] = floatCompareBranch(func(a, b float32) bool { return a >= b })
	m[OpJISNAN] = func(it *Interpreter, ins Instruction, l []uint32) error {
		if math.IsNaN(float64(toFloat(l[0]))) {
			return it.takeBranch(l[1])
		}
		return nil
	}
	m[OpJISINF] = func(it *Interpreter, ins Instruction, l []uint32) error {
		if math.IsInf(float64(toFloat(l[0])), 0) {
			return it.takeBranch(l[1])
		}
		return nil
	}

	m[OpJDEQ] = func(it *Interpreter, ins Instruction, l []uint32) error {
		a, b := toDouble(l[0], l[1]), toDouble(l[2], l[3])
		eps := toDouble(l[4], l[5])
		if math.Abs(a-b) <= eps {
			return it.takeBranch(l[6])
		}
		return nil
	}
	m[OpJDNE] = func(it *Interpreter, ins Instruction, l []uint32) error {
		a, b := toDouble(l[0], l[1]), toDouble(l[2], l[3])
		eps := toDouble(l[4], l[5])
		if math.Abs(a-b) > eps {
			return it.takeBranch(l[6])
		}
		return nil
	}
	m[OpJDLT] = doubleCompareBranch(func(a, b float64) bool { return a < b })
	m[OpJDLE] = doubleCompareBranch(func(a, b float64) bool { return a <= b })
	m[OpJDGT] = doubleCompareBranch(func(a, b float64) bool { return a > b })
	m[OpJDGE] = doubleCompareBranch(func(a, b float64) bool { return a >= b })
	m[OpJDISNAN] = func(it *Interpreter, ins Instruction, l []uint32) error {
		if math.IsNaN(toDouble(l[0], l[1])) {
			return it.takeBranch(l[2])
		}
		return nil
	}
	m[OpJDISINF] = func(it *Interpreter, ins Instruction, l []uint32) error {
		if math.IsInf(toDouble(l[0], l[1]), 0) {
			return it.takeBranch(l[2])
		}
		return nil
	}
}

func floatNearlyEqual(a, b, eps float32) bool {
	if math.IsInf(float64(eps), 1) {
		return true
	}
	return math.Abs(float64(a-b)) <= float64(eps)
}

func floatUnary(f func(FloatMath, float32) (float32, error)) handlerFunc {
	return func(it *Interpreter, ins Instruction, l []uint32) error {
		v, err := f(it.Collab.Float, toFloat(l[0]))
		if err != nil {
			return err
		}
		return it.storeResult(ins, fromFloat(v))
	}
}

func floatBinary(f func(FloatMath, float32, float32) (float32, error)) handlerFunc {
	return func(it *Interpreter, ins Instruction, l []uint32) error {
		v, err := f(it.Collab.Float, toFloat(l[0]), toFloat(l[1]))
		if err != nil {
			return err
		}
		return it.storeResult(ins, fromFloat(v))
	}
}

func floatCompareBranch(cmp func(a, b float32) bool) handlerFunc {
	return func(it *Interpreter, ins Instruction, l []uint32) error {
		if cmp(toFloat(l[0]), toFloat(l[1])) {
			return it.takeBranch(l[2])
		}
		return nil
	}
}

func doubleUnary(f func(FloatMath, float64) (float64, error)) handlerFunc {
	return func(it *Interpreter, ins Instruction, l []uint32) error {
		v, err := f(it.Collab.Float, toDouble(l[0], l[1]))
		if err != nil {
			return err
		}
		hi, lo := fromDouble(v)
		return storeTwo(it, ins, hi, lo)
	}
}

func doubleBinary(f func(FloatMath, float64, float64) (float64, error)) handlerFunc {
	return func(it *Interpreter, ins Instruction, l []uint32) error {
		x, y := toDouble(l[0], l[1]), toDouble(l[2], l[3])
		v, err := f(it.Collab.Float, x, y)
		if err != nil {
			return err
		}
		hi, lo := fromDouble(v)
		return storeTwo(it, ins, hi, lo)
	}
}

func doubleCompareBranch(cmp func(a, b float64) bool) handlerFunc {
	return func(it *Interpreter, ins Instruction, l []uint32) error {
		a, b := toDouble(l[0], l[1]), toDouble(l[2], l[3])
		if cmp(a, b) {
			return it.takeBranch(l[4])
		}
		return nil
	}
}

func storeTwo(it *Interpreter, ins Instruction, hi, lo uint32) error {
	stores := storeOperands(ins)
	if err := it.resolver().Store(stores[0], hi); err != nil {
		return err
	}
	return it.resolver().Store(stores[1], lo)
}
