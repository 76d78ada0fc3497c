package numeric

import "strings"

// Parse implements the literal grammar of §4.1/§6: decimal floats with
// '.', base prefixes 0b/0o/0d/0x, the arbitrary-base form 0nB|digits (B in
// 2..=36), '_' separators ignored anywhere, and a trailing 'i' marking an
// imaginary literal. An invalid literal yields NaN rather than an error
// (§4.1 Failure rule) since the runtime has no other channel to reject a
// constant-pool entry after compilation.
func Parse(lit string) Number {
	s := strings.ReplaceAll(lit, "_", "")
	if s == "" {
		return NaN()
	}
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	imaginary := false
	if strings.HasSuffix(s, "i") {
		imaginary = true
		s = s[:len(s)-1]
	}
	n, ok := parseMagnitude(s)
	if !ok {
		return NaN()
	}
	if neg {
		n = n.Neg()
	}
	if imaginary {
		return NewComplex(Zero(), n)
	}
	return n
}

func parseMagnitude(s string) (Number, bool) {
	if s == "" {
		return Number{}, false
	}
	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(lower, "0b") && len(s) > 2:
		return Number{k: kindBasic, mag: decimalFromUint(uintFromRadixString(s[2:], 2))}, validDigits(s[2:], 2)
	case strings.HasPrefix(lower, "0o") && len(s) > 2:
		return Number{k: kindBasic, mag: decimalFromUint(uintFromRadixString(s[2:], 8))}, validDigits(s[2:], 8)
	case strings.HasPrefix(lower, "0d") && len(s) > 2:
		return parseDecimal(s[2:])
	case strings.HasPrefix(lower, "0x") && len(s) > 2:
		return Number{k: kindBasic, mag: decimalFromUint(uintFromRadixString(s[2:], 16))}, validDigits(s[2:], 16)
	case strings.HasPrefix(lower, "0n") && strings.Contains(s, "|"):
		parts := strings.SplitN(s[2:], "|", 2)
		if len(parts) != 2 {
			return Number{}, false
		}
		base := 0
		for _, c := range parts[0] {
			if c < '0' || c > '9' {
				return Number{}, false
			}
			base = base*10 + int(c-'0')
		}
		if base < 2 || base > 36 {
			return Number{}, false
		}
		return Number{k: kindBasic, mag: decimalFromUint(uintFromRadixString(parts[1], base))}, validDigits(parts[1], base)
	default:
		return parseDecimal(s)
	}
}

func parseDecimal(s string) (Number, bool) {
	if s == "" {
		return Number{}, false
	}
	if !strings.Contains(s, ".") {
		if !validDigits(s, 10) {
			return Number{}, false
		}
		return Number{k: kindBasic, mag: decimalFromUint(uintFromDecimalString(s))}, true
	}
	parts := strings.SplitN(s, ".", 2)
	if len(parts) != 2 {
		return Number{}, false
	}
	intPart, fracPart := parts[0], parts[1]
	if intPart == "" {
		intPart = "0"
	}
	if !validDigits(intPart, 10) || !validDigits(fracPart, 10) {
		return Number{}, false
	}
	exponent := len(fracPart)
	if exponent > maxExponent {
		fracPart = fracPart[:maxExponent]
		exponent = maxExponent
	}
	mantissa := uintFromDecimalString(intPart + fracPart)
	return Number{k: kindBasic, mag: decimal{mantissa: mantissa, exponent: uint8(exponent)}.reduce()}, true
}

func validDigits(s string, base int) bool {
	if s == "" {
		return false
	}
	for _, c := range strings.ToLower(s) {
		var d int
		switch {
		case c >= '0' && c <= '9':
			d = int(c - '0')
		case c >= 'a' && c <= 'z':
			d = int(c-'a') + 10
		default:
			return false
		}
		if d >= base {
			return false
		}
	}
	return true
}

// ParseByte implements the `0bY…` binary byte literal form, returning the
// byte value (§4.1); the caller (the value layer) wraps it as a Byte.
func ParseByte(digits string) (byte, bool) {
	digits = strings.ReplaceAll(digits, "_", "")
	if !validDigits(digits, 2) || len(digits) == 0 {
		return 0, false
	}
	u := uintFromRadixString(digits, 2)
	if u.bitLen() > 8 {
		return 0, false
	}
	var v byte
	for i := len(u.digits) - 1; i >= 0; i-- {
		v = v<<8 | u.digits[i]
	}
	return v, true
}
