package numeric

// decimal is an unsigned mantissa with a base-10 exponent: value represents
// mantissa * 10^-exponent, with exponent capped at 255 (§4.1, §9 constant
// pool note doesn't apply here but the exponent cap does: "capped at
// 255, truncating excess low digits").
type decimal struct {
	mantissa uint256
	exponent uint8
}

const maxExponent = 255

func decimalFromUint(v uint256) decimal {
	return decimal{mantissa: v, exponent: 0}
}

func (d decimal) isZero() bool { return d.mantissa.isZero() }

// alignedMantissas returns both mantissas scaled to a common exponent
// (the larger of the two), and that common exponent.
func alignedMantissas(a, b decimal) (am, bm uint256, exp uint8) {
	if a.exponent == b.exponent {
		return a.mantissa, b.mantissa, a.exponent
	}
	if a.exponent > b.exponent {
		shift := a.exponent - b.exponent
		return a.mantissa, b.mantissa.mul(pow10(int(shift))), a.exponent
	}
	shift := b.exponent - a.exponent
	return a.mantissa.mul(pow10(int(shift))), b.mantissa, b.exponent
}

func (d decimal) cmp(o decimal) int {
	am, bm, _ := alignedMantissas(d, o)
	return am.cmp(bm)
}

func (d decimal) add(o decimal) decimal {
	am, bm, exp := alignedMantissas(d, o)
	return decimal{mantissa: am.add(bm), exponent: exp}.reduce()
}

// sub computes d-o assuming unsigned magnitudes; caller handles sign.
func (d decimal) sub(o decimal) decimal {
	am, bm, exp := alignedMantissas(d, o)
	if am.cmp(bm) < 0 {
		return decimal{mantissa: bm.sub(am), exponent: exp}.reduce()
	}
	return decimal{mantissa: am.sub(bm), exponent: exp}.reduce()
}

func (d decimal) mul(o decimal) decimal {
	exp := int(d.exponent) + int(o.exponent)
	m := d.mantissa.mul(o.mantissa)
	if exp > maxExponent {
		// truncate excess low (least-significant, i.e. most precise) digits
		excess := exp - maxExponent
		m, _ = m.divmod(pow10(excess))
		exp = maxExponent
	}
	return decimal{mantissa: m, exponent: uint8(exp)}.reduce()
}

// div divides d by o, expanding the numerator by 10^255 for precision
// before the integer division and then capping the resulting exponent
// (§4.1). o must be nonzero.
func (d decimal) div(o decimal) decimal {
	expandedNum := d.mantissa.mul(pow10(maxExponent))
	q, _ := expandedNum.divmod(o.mantissa)
	exp := maxExponent + int(d.exponent) - int(o.exponent)
	for exp > maxExponent {
		q, _ = q.divmod(uintFromUint64(10))
		exp--
	}
	for exp < 0 {
		q = q.mul(uintFromUint64(10))
		exp++
	}
	return decimal{mantissa: q, exponent: uint8(exp)}.reduce()
}

// reduce strips common trailing zero digits down to exponent 0 where
// possible, keeping the canonical string form stable (§3 Number equality).
func (d decimal) reduce() decimal {
	if d.mantissa.isZero() {
		return decimal{}
	}
	ten := uintFromUint64(10)
	for d.exponent > 0 {
		q, r := d.mantissa.divmod(ten)
		if !r.isZero() {
			break
		}
		d.mantissa = q
		d.exponent--
	}
	return d
}

func (d decimal) isInteger() bool { return d.exponent == 0 }

// split returns the integer part and the fractional mantissa (as a
// 0-padded string of `exponent` digits) for rounding operations.
func (d decimal) split() (intPart uint256, fracDigits string) {
	if d.exponent == 0 {
		return d.mantissa, ""
	}
	divisor := pow10(int(d.exponent))
	q, r := d.mantissa.divmod(divisor)
	frac := r.toDecimalString()
	if r.isZero() {
		frac = ""
	}
	for len(frac) < int(d.exponent) {
		frac = "0" + frac
	}
	return q, frac
}

func (d decimal) truncInt() uint256 {
	ip, _ := d.split()
	return ip
}

// halfCompare reports whether the fractional part is <, ==, > one half.
func (d decimal) halfCompare() int {
	_, frac := d.split()
	if frac == "" {
		return -1
	}
	// compare frac (as fraction over 10^len) against 5 followed by zeros
	half := "5"
	for len(half) < len(frac) {
		half += "0"
	}
	a := uintFromDecimalString(frac)
	b := uintFromDecimalString(half)
	return a.cmp(b)
}

func (d decimal) toString() string {
	if d.exponent == 0 {
		return d.mantissa.toDecimalString()
	}
	ip, frac := d.split()
	if frac == "" {
		return ip.toDecimalString()
	}
	return ip.toDecimalString() + "." + frac
}
