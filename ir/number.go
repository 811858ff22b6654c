package ir

import (
	"math"
	"strconv"
)

type numberKind uint8

const (
	intNumber numberKind = iota
	uintNumber
	floatNumber
)

// Number is a numeric scalar holding a signed integer, an unsigned integer
// or a float. Two Numbers are equal when they are numerically equal,
// regardless of which representation produced them; all NaN floats form a
// single equivalence class.
type Number struct {
	kind numberKind
	i    int64
	u    uint64
	f    float64
}

func IntNumber(i int64) Number {
	if i >= 0 {
		return Number{kind: uintNumber, u: uint64(i)}
	}
	return Number{kind: intNumber, i: i}
}

func UintNumber(u uint64) Number {
	return Number{kind: uintNumber, u: u}
}

func FloatNumber(f float64) Number {
	return Number{kind: floatNumber, f: f}
}

// IsInt reports whether the number was written as an integer.
func (n Number) IsInt() bool {
	return n.kind != floatNumber
}

// IsFloat reports whether the number was written as a float.
func (n Number) IsFloat() bool {
	return n.kind == floatNumber
}

// AsInt64 returns the value as an int64 when it is an integer in range.
func (n Number) AsInt64() (int64, bool) {
	switch n.kind {
	case intNumber:
		return n.i, true
	case uintNumber:
		if n.u <= math.MaxInt64 {
			return int64(n.u), true
		}
	}
	return 0, false
}

// AsUint64 returns the value as a uint64 when it is a non-negative integer.
func (n Number) AsUint64() (uint64, bool) {
	switch n.kind {
	case intNumber:
		if n.i >= 0 {
			return uint64(n.i), true
		}
	case uintNumber:
		return n.u, true
	}
	return 0, false
}

// AsFloat64 returns the value converted to a float64.
func (n Number) AsFloat64() float64 {
	switch n.kind {
	case intNumber:
		return float64(n.i)
	case uintNumber:
		return float64(n.u)
	default:
		return n.f
	}
}

// Equal reports numeric equality across representations. NaN equals NaN.
func (n Number) Equal(o Number) bool {
	if n.kind != floatNumber && o.kind != floatNumber {
		a, aok := n.AsUint64()
		b, bok := o.AsUint64()
		if aok != bok {
			return false // one negative, one not
		}
		if aok {
			return a == b
		}
		return n.i == o.i
	}
	a, b := n.AsFloat64(), o.AsFloat64()
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	return a == b
}

func (n Number) String() string {
	switch n.kind {
	case intNumber:
		return strconv.FormatInt(n.i, 10)
	case uintNumber:
		return strconv.FormatUint(n.u, 10)
	default:
		switch {
		case math.IsNaN(n.f):
			return ".nan"
		case math.IsInf(n.f, 1):
			return ".inf"
		case math.IsInf(n.f, -1):
			return "-.inf"
		}
		s := strconv.FormatFloat(n.f, 'g', -1, 64)
		// keep floats recognizable as floats
		if !hasFloatSyntax(s) {
			s += ".0"
		}
		return s
	}
}

func hasFloatSyntax(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '.', 'e', 'E':
			return true
		}
	}
	return false
}
