// Package fixed provides the scaled integer arithmetic used by the
// bytecode format : values are stored as multiples of 1/1024
// (10 fractional bits), which is enough for CSS lengths, angles and
// percentages without pulling floating point into the wire format.
package fixed

import "math"

// Fixed is a 22.10 fixed point number.
type Fixed int32

const (
	// RadixPoint is the number of fractional bits.
	RadixPoint = 10

	// One is the representation of 1.
	One Fixed = 1 << RadixPoint

	Max Fixed = math.MaxInt32
	Min Fixed = math.MinInt32
)

// FromInt converts an integer, clamping on overflow.
func FromInt(i int) Fixed {
	if i > math.MaxInt32>>RadixPoint {
		return Max
	}
	if i < math.MinInt32>>RadixPoint {
		return Min
	}
	return Fixed(i) << RadixPoint
}

// FromFloat converts a float, rounding away from zero, clamping on
// overflow.
func FromFloat(f float64) Fixed {
	f *= 1 << RadixPoint
	if f < 0 {
		f -= 0.5
	} else {
		f += 0.5
	}
	if f >= math.MaxInt32 {
		return Max
	}
	if f <= math.MinInt32 {
		return Min
	}
	return Fixed(f)
}

// ToInt truncates the fractional bits (rounds toward negative
// infinity, as an arithmetic shift does).
func (f Fixed) ToInt() int { return int(f >> RadixPoint) }

// ToFloat converts back to a float64.
func (f Fixed) ToFloat() float64 { return float64(f) / (1 << RadixPoint) }

// Mul returns a*b, keeping the intermediate product in 64 bits.
func Mul(a, b Fixed) Fixed {
	return clamp64((int64(a) * int64(b)) >> RadixPoint)
}

// Div returns a/b. Division by zero saturates.
func Div(a, b Fixed) Fixed {
	if b == 0 {
		if a < 0 {
			return Min
		}
		return Max
	}
	return clamp64((int64(a) << RadixPoint) / int64(b))
}

func clamp64(v int64) Fixed {
	if v > math.MaxInt32 {
		return Max
	}
	if v < math.MinInt32 {
		return Min
	}
	return Fixed(v)
}

// Parse reads a decimal number at the start of s and returns its fixed
// point value along with the number of bytes consumed. When
// integerOnly is set, parsing stops before any fractional part.
// consumed == 0 means s does not start with a number.
func Parse(s string, integerOnly bool) (Fixed, int) {
	pos := 0
	negative := false
	if pos < len(s) && (s[pos] == '+' || s[pos] == '-') {
		negative = s[pos] == '-'
		pos++
	}

	start := pos
	var intPart int64
	for pos < len(s) && s[pos] >= '0' && s[pos] <= '9' {
		intPart = intPart*10 + int64(s[pos]-'0')
		if intPart > math.MaxInt32 {
			intPart = math.MaxInt32
		}
		pos++
	}
	intDigits := pos - start

	var frac float64
	fracDigits := 0
	if !integerOnly && pos < len(s) && s[pos] == '.' {
		mark := pos
		pos++
		scale := 0.1
		for pos < len(s) && s[pos] >= '0' && s[pos] <= '9' {
			frac += float64(s[pos]-'0') * scale
			scale /= 10
			pos++
			fracDigits++
		}
		if fracDigits == 0 {
			// A lone "." is not part of the number.
			pos = mark
		}
	}

	if intDigits == 0 && fracDigits == 0 {
		return 0, 0
	}

	value := float64(intPart) + frac
	if negative {
		value = -value
	}
	return FromFloat(value), pos
}
