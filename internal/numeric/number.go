// Package numeric implements the arbitrary-precision Number value from
// §4.1: signed integers and base-10 decimals with NaN/±∞ and a complex
// extension, total arithmetic with exceptional-value propagation, and the
// radix literal grammar from §6.
package numeric

import "strings"

type kind uint8

const (
	kindBasic kind = iota
	kindNaN
	kindPosInf
	kindNegInf
	kindComplex
)

// Number is the tagged value described in §3/§4.1. The zero value is the
// Basic number 0.
type Number struct {
	k    kind
	neg  bool    // sign for kindBasic
	mag  decimal // magnitude for kindBasic
	real *Number // kindComplex components, always kindBasic
	imag *Number
}

func NaN() Number    { return Number{k: kindNaN} }
func PosInf() Number { return Number{k: kindPosInf} }
func NegInf() Number { return Number{k: kindNegInf} }
func Zero() Number   { return Number{k: kindBasic} }

func FromInt64(v int64) Number {
	neg := v < 0
	u := v
	if neg {
		u = -v
	}
	return Number{k: kindBasic, neg: neg && u != 0, mag: decimalFromUint(uintFromUint64(uint64(u)))}
}

func basic(neg bool, mag decimal) Number {
	n := Number{k: kindBasic, neg: neg, mag: mag}
	if n.mag.isZero() {
		n.neg = false
	}
	return n
}

func NewComplex(real, imag Number) Number {
	r, i := real, imag
	return Number{k: kindComplex, real: &r, imag: &i}
}

func (n Number) IsNaN() bool     { return n.k == kindNaN }
func (n Number) IsInf() bool     { return n.k == kindPosInf || n.k == kindNegInf }
func (n Number) IsComplex() bool { return n.k == kindComplex }
func (n Number) IsInteger() bool { return n.k == kindBasic && n.mag.isInteger() }
func (n Number) IsZero() bool    { return n.k == kindBasic && n.mag.isZero() }

// String renders the canonical form used for equality (§3: "Equality
// compares by canonical string form").
func (n Number) String() string {
	switch n.k {
	case kindNaN:
		return "NeN"
	case kindPosInf:
		return "infinito"
	case kindNegInf:
		return "-infinito"
	case kindComplex:
		sign := "+"
		imagStr := n.imag.String()
		if n.imag.neg {
			sign = "-"
			imagStr = strings.TrimPrefix(imagStr, "-")
		}
		return n.real.String() + sign + imagStr + "i"
	default:
		s := n.mag.toString()
		if n.neg && s != "0" {
			return "-" + s
		}
		return s
	}
}

func (a Number) Equals(b Number) bool {
	if a.IsNaN() || b.IsNaN() {
		return false
	}
	return a.String() == b.String()
}

// Cmp returns (-1|0|1, true) for ordered pairs, or (0, false) when either
// operand is NaN or the pair is otherwise unordered (§3, §4.1).
func (a Number) Cmp(b Number) (int, bool) {
	if a.IsNaN() || b.IsNaN() || a.IsComplex() || b.IsComplex() {
		return 0, false
	}
	ra := rank(a)
	rb := rank(b)
	if ra != rb {
		if ra < rb {
			return -1, true
		}
		return 1, true
	}
	if a.k != kindBasic {
		return 0, true // both +inf or both -inf
	}
	if a.neg != b.neg {
		if a.neg {
			return -1, true
		}
		return 1, true
	}
	c := a.mag.cmp(b.mag)
	if a.neg {
		c = -c
	}
	return c, true
}

// rank orders -inf < finite < +inf for Cmp's fast path.
func rank(n Number) int {
	switch n.k {
	case kindNegInf:
		return -1
	case kindPosInf:
		return 1
	default:
		return 0
	}
}

// TotalOrderLess implements §8 item 2's scheduler total order, where NaN
// sorts greater than every finite value (distinct from Cmp's IEEE-style
// unordered NaN).
func TotalOrderLess(a, b Number) bool {
	if a.IsNaN() {
		return false
	}
	if b.IsNaN() {
		return !a.IsNaN()
	}
	c, ok := a.Cmp(b)
	return ok && c < 0
}

func (a Number) Neg() Number {
	switch a.k {
	case kindPosInf:
		return NegInf()
	case kindNegInf:
		return PosInf()
	case kindNaN:
		return a
	case kindComplex:
		r, i := a.real.Neg(), a.imag.Neg()
		return NewComplex(r, i)
	default:
		return basic(!a.neg, a.mag)
	}
}

func (a Number) Add(b Number) Number {
	if a.IsComplex() || b.IsComplex() {
		ac, bc := a.asComplex(), b.asComplex()
		return NewComplex(ac.real.Add(*bc.real), ac.imag.Add(*bc.imag))
	}
	if a.IsNaN() || b.IsNaN() {
		return NaN()
	}
	if a.IsInf() || b.IsInf() {
		return addInf(a, b)
	}
	if a.neg == b.neg {
		return basic(a.neg, a.mag.add(b.mag))
	}
	// opposite signs: subtract smaller magnitude from larger
	switch a.mag.cmp(b.mag) {
	case 0:
		return Zero()
	case 1:
		return basic(a.neg, a.mag.sub(b.mag))
	default:
		return basic(b.neg, b.mag.sub(a.mag))
	}
}

func addInf(a, b Number) Number {
	if a.IsInf() && b.IsInf() {
		if (a.k == kindPosInf) == (b.k == kindPosInf) {
			return a
		}
		return NaN() // +inf + -inf
	}
	if a.IsInf() {
		return a
	}
	return b
}

func (a Number) Sub(b Number) Number { return a.Add(b.Neg()) }

func (a Number) Mul(b Number) Number {
	if a.IsComplex() || b.IsComplex() {
		ac, bc := a.asComplex(), b.asComplex()
		// (ar+ai*i)(br+bi*i) = (ar*br - ai*bi) + (ar*bi + ai*br)i
		real := ac.real.Mul(*bc.real).Sub(ac.imag.Mul(*bc.imag))
		imag := ac.real.Mul(*bc.imag).Add(ac.imag.Mul(*bc.real))
		return NewComplex(real, imag)
	}
	if a.IsNaN() || b.IsNaN() {
		return NaN()
	}
	if a.IsInf() || b.IsInf() {
		if a.IsZero() || b.IsZero() {
			return NaN()
		}
		neg := signOf(a) != signOf(b)
		if neg {
			return NegInf()
		}
		return PosInf()
	}
	return basic(a.neg != b.neg, a.mag.mul(b.mag))
}

func signOf(n Number) bool {
	switch n.k {
	case kindNegInf:
		return true
	case kindPosInf:
		return false
	default:
		return n.neg
	}
}

// Div implements §4.1's failure rule: nonzero/0 yields ±∞ following the
// numerator's sign, 0/0 yields NaN.
func (a Number) Div(b Number) Number {
	if a.IsComplex() || b.IsComplex() {
		ac, bc := a.asComplex(), b.asComplex()
		denom := bc.real.Mul(*bc.real).Add(bc.imag.Mul(*bc.imag))
		real := ac.real.Mul(*bc.real).Add(ac.imag.Mul(*bc.imag)).Div(denom)
		imag := ac.imag.Mul(*bc.real).Sub(ac.real.Mul(*bc.imag)).Div(denom)
		return NewComplex(real, imag)
	}
	if a.IsNaN() || b.IsNaN() {
		return NaN()
	}
	if b.IsZero() {
		if a.IsZero() {
			return NaN()
		}
		if signOf(a) {
			return NegInf()
		}
		return PosInf()
	}
	if a.IsInf() || b.IsInf() {
		if a.IsInf() && b.IsInf() {
			return NaN()
		}
		if a.IsInf() {
			if signOf(a) != signOf(b) {
				return NegInf()
			}
			return PosInf()
		}
		return Zero()
	}
	return basic(a.neg != b.neg, a.mag.div(b.mag))
}

func (a Number) Mod(b Number) Number {
	if a.IsNaN() || b.IsNaN() || a.IsInf() || b.IsZero() {
		return NaN()
	}
	if b.IsInf() {
		return a
	}
	q := a.Div(b).Trunc()
	return a.Sub(q.Mul(b))
}

// Pow supports exact integer exponents only (§4.1); non-integer exponent
// or 0^0 yield NaN, 0^negative yields +∞.
func (a Number) Pow(b Number) Number {
	if a.IsComplex() {
		return a.powComplexInt(b)
	}
	if a.IsNaN() || b.IsNaN() || !b.IsInteger() || b.IsComplex() {
		return NaN()
	}
	if a.IsZero() && b.IsZero() {
		return NaN()
	}
	negExp := signOf(b)
	if a.IsZero() && negExp {
		return PosInf()
	}
	exp := b.mag.truncInt()
	if negExp {
		base := a
		result := FromInt64(1)
		n := exp
		one := uintFromUint64(1)
		for !n.isZero() {
			result = result.Mul(base)
			n = n.sub(one)
		}
		return FromInt64(1).Div(result)
	}
	result := FromInt64(1)
	n := exp
	one := uintFromUint64(1)
	for !n.isZero() {
		result = result.Mul(a)
		n = n.sub(one)
	}
	return result
}

// powComplexInt cycles i^n through the four-step period (§6, §9).
func (a Number) powComplexInt(b Number) Number {
	if b.IsNaN() || b.IsComplex() || !b.IsInteger() {
		return NaN()
	}
	result := NewComplex(FromInt64(1), Zero())
	n := b.mag.truncInt()
	one := uintFromUint64(1)
	neg := signOf(b)
	base := a
	if neg {
		denom := a.real.Mul(*a.real).Add(a.imag.Mul(*a.imag))
		base = NewComplex(a.real.Div(denom), a.imag.Neg().Div(denom))
	}
	for !n.isZero() {
		result = result.Mul(base)
		n = n.sub(one)
	}
	return result
}

func (a Number) asComplex() Number {
	if a.IsComplex() {
		return a
	}
	return NewComplex(a, Zero())
}

// Floor/Ceil/Round/Trunc operate on the Basic decimal portion (§4.1);
// applied to ±∞/NaN they are identities.
func (a Number) Floor() Number {
	if a.k != kindBasic || a.mag.isInteger() {
		return a
	}
	ip := a.mag.truncInt()
	if !a.neg {
		return basic(false, decimalFromUint(ip))
	}
	return basic(true, decimalFromUint(ip.add(uintFromUint64(1))))
}

func (a Number) Ceil() Number {
	if a.k != kindBasic || a.mag.isInteger() {
		return a
	}
	ip := a.mag.truncInt()
	if a.neg {
		return basic(true, decimalFromUint(ip))
	}
	return basic(false, decimalFromUint(ip.add(uintFromUint64(1))))
}

func (a Number) Trunc() Number {
	if a.k != kindBasic || a.mag.isInteger() {
		return a
	}
	return basic(a.neg, decimalFromUint(a.mag.truncInt()))
}

// Round uses banker's rounding at exactly .5 (§4.1, confirmed against
// original_source/src/compiler/value/number.rs's round()).
func (a Number) Round() Number {
	if a.k != kindBasic || a.mag.isInteger() {
		return a
	}
	ip := a.mag.truncInt()
	one := uintFromUint64(1)
	switch a.mag.halfCompare() {
	case 1: // > .5
		return basic(a.neg, decimalFromUint(ip.add(one)))
	case -1: // < .5
		return basic(a.neg, decimalFromUint(ip))
	default: // == .5: round to even
		_, isOdd := ip.divmod(uintFromUint64(2))
		if !isOdd.isZero() {
			return basic(a.neg, decimalFromUint(ip.add(one)))
		}
		return basic(a.neg, decimalFromUint(ip))
	}
}

// AsUsize fails if the number is negative, non-integer, too large, NaN,
// infinite or complex (§4.1).
func (a Number) AsUsize() (int, bool) {
	if a.k != kindBasic || a.neg || !a.mag.isInteger() {
		return 0, false
	}
	if a.mag.mantissa.bitLen() > 31 {
		return 0, false
	}
	v := 0
	for i := len(a.mag.mantissa.digits) - 1; i >= 0; i-- {
		v = v<<8 | int(a.mag.mantissa.digits[i])
	}
	return v, true
}

func (a Number) IsTruthy() bool {
	switch a.k {
	case kindNaN:
		return false
	case kindPosInf, kindNegInf:
		return true
	case kindComplex:
		return !a.real.IsZero() || !a.imag.IsZero()
	default:
		return !a.mag.isZero()
	}
}
