package numeric

// uint256 is an arbitrary-precision unsigned integer stored as base-256
// digits, least-significant byte first, normalized (no trailing zero high
// digit; the zero value is the empty slice). This is the schoolbook
// digit-array representation §4.1 calls for, not a math/big wrapper: the
// spec normatively describes base-256 add/sub/mul/div, so the algorithm
// itself is the grounded behavior rather than something a library could
// stand in for.
type uint256 struct {
	digits []byte // little-endian base-256
}

func uintFromUint64(v uint64) uint256 {
	var d []byte
	for v > 0 {
		d = append(d, byte(v&0xff))
		v >>= 8
	}
	return uint256{digits: d}
}

func (a uint256) isZero() bool { return len(a.digits) == 0 }

func (a uint256) normalize() uint256 {
	n := len(a.digits)
	for n > 0 && a.digits[n-1] == 0 {
		n--
	}
	return uint256{digits: a.digits[:n]}
}

func (a uint256) clone() uint256 {
	d := make([]byte, len(a.digits))
	copy(d, a.digits)
	return uint256{digits: d}
}

// cmp returns -1, 0, 1 for a<b, a==b, a>b.
func (a uint256) cmp(b uint256) int {
	a, b = a.normalize(), b.normalize()
	if len(a.digits) != len(b.digits) {
		if len(a.digits) < len(b.digits) {
			return -1
		}
		return 1
	}
	for i := len(a.digits) - 1; i >= 0; i-- {
		if a.digits[i] != b.digits[i] {
			if a.digits[i] < b.digits[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

func (a uint256) add(b uint256) uint256 {
	n := len(a.digits)
	if len(b.digits) > n {
		n = len(b.digits)
	}
	out := make([]byte, n+1)
	carry := uint16(0)
	for i := 0; i < n; i++ {
		var x, y uint16
		if i < len(a.digits) {
			x = uint16(a.digits[i])
		}
		if i < len(b.digits) {
			y = uint16(b.digits[i])
		}
		sum := x + y + carry
		out[i] = byte(sum & 0xff)
		carry = sum >> 8
	}
	out[n] = byte(carry)
	return uint256{digits: out}.normalize()
}

// sub computes a-b; caller must ensure a >= b.
func (a uint256) sub(b uint256) uint256 {
	out := make([]byte, len(a.digits))
	borrow := int16(0)
	for i := 0; i < len(a.digits); i++ {
		x := int16(a.digits[i])
		var y int16
		if i < len(b.digits) {
			y = int16(b.digits[i])
		}
		d := x - y - borrow
		if d < 0 {
			d += 256
			borrow = 1
		} else {
			borrow = 0
		}
		out[i] = byte(d)
	}
	return uint256{digits: out}.normalize()
}

func (a uint256) mul(b uint256) uint256 {
	if a.isZero() || b.isZero() {
		return uint256{}
	}
	out := make([]uint32, len(a.digits)+len(b.digits))
	for i, da := range a.digits {
		if da == 0 {
			continue
		}
		carry := uint32(0)
		for j, db := range b.digits {
			out[i+j] += uint32(da)*uint32(db) + carry
			carry = out[i+j] >> 8
			out[i+j] &= 0xff
		}
		k := i + len(b.digits)
		for carry > 0 {
			out[k] += carry
			carry = out[k] >> 8
			out[k] &= 0xff
			k++
		}
	}
	digits := make([]byte, len(out))
	for i, v := range out {
		digits[i] = byte(v)
	}
	return uint256{digits: digits}.normalize()
}

// divmod performs long division; b must be nonzero.
func (a uint256) divmod(b uint256) (q, r uint256) {
	if b.isZero() {
		panic("numeric: division by zero")
	}
	rem := uint256{}
	quot := make([]byte, len(a.digits))
	for i := len(a.digits) - 1; i >= 0; i-- {
		rem = rem.shiftLeftByte(a.digits[i])
		// binary search the digit 0..255 such that b*digit <= rem
		lo, hi := 0, 255
		for lo < hi {
			mid := (lo + hi + 1) / 2
			if b.mul(uintFromUint64(uint64(mid))).cmp(rem) <= 0 {
				lo = mid
			} else {
				hi = mid - 1
			}
		}
		quot[i] = byte(lo)
		rem = rem.sub(b.mul(uintFromUint64(uint64(lo))))
	}
	return uint256{digits: quot}.normalize(), rem.normalize()
}

func (a uint256) shiftLeftByte(newLow byte) uint256 {
	out := make([]byte, len(a.digits)+1)
	out[0] = newLow
	copy(out[1:], a.digits)
	return uint256{digits: out}.normalize()
}

// pow10 returns 10^n as a uint256.
func pow10(n int) uint256 {
	r := uintFromUint64(1)
	ten := uintFromUint64(10)
	for i := 0; i < n; i++ {
		r = r.mul(ten)
	}
	return r
}

func (a uint256) toDecimalString() string {
	if a.isZero() {
		return "0"
	}
	ten := uintFromUint64(10)
	var rev []byte
	cur := a
	for !cur.isZero() {
		q, r := cur.divmod(ten)
		var d byte
		if len(r.digits) > 0 {
			d = r.digits[0]
		}
		rev = append(rev, '0'+d)
		cur = q
	}
	out := make([]byte, len(rev))
	for i, c := range rev {
		out[len(rev)-1-i] = c
	}
	return string(out)
}

func uintFromDecimalString(s string) uint256 {
	r := uint256{}
	ten := uintFromUint64(10)
	for _, c := range s {
		if c < '0' || c > '9' {
			continue
		}
		r = r.mul(ten).add(uintFromUint64(uint64(c - '0')))
	}
	return r
}

func uintFromRadixString(s string, base int) uint256 {
	r := uint256{}
	b := uintFromUint64(uint64(base))
	for _, c := range s {
		var d int
		switch {
		case c >= '0' && c <= '9':
			d = int(c - '0')
		case c >= 'a' && c <= 'z':
			d = int(c-'a') + 10
		case c >= 'A' && c <= 'Z':
			d = int(c-'A') + 10
		default:
			continue
		}
		if d >= base {
			continue
		}
		r = r.mul(b).add(uintFromUint64(uint64(d)))
	}
	return r
}

// isqrt-free integer bit length, used only for sizing heuristics.
func (a uint256) bitLen() int {
	if a.isZero() {
		return 0
	}
	n := (len(a.digits) - 1) * 8
	top := a.digits[len(a.digits)-1]
	for top > 0 {
		n++
		top >>= 1
	}
	return n
}
