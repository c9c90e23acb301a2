package parse

import (
	"fmt"
	"strings"

	"github.com/tilford/csscade"
	"github.com/tilford/csscade/css/bytecode"
	"github.com/tilford/csscade/css/fixed"
)

// unitNames maps a dimension suffix to its unit code. Lookup is case
// insensitive.
var unitNames = map[string]bytecode.Unit{
	"px":  bytecode.UnitPX,
	"ex":  bytecode.UnitEX,
	"em":  bytecode.UnitEM,
	"in":  bytecode.UnitIN,
	"cm":  bytecode.UnitCM,
	"mm":  bytecode.UnitMM,
	"pt":  bytecode.UnitPT,
	"pc":  bytecode.UnitPC,
	"ch":  bytecode.UnitCH,
	"rem": bytecode.UnitREM,
	"vh":  bytecode.UnitVH,
	"vw":  bytecode.UnitVW,
	"deg": bytecode.UnitDeg,
	"fr":  bytecode.UnitFr,
}

// parseNumber reads the current token as a plain number. The cursor
// only advances on success.
func parseNumber(v Vector, ctx *int, integerOnly bool) (fixed.Fixed, error) {
	tok := v.Peek(*ctx)
	if tok == nil || tok.Type != TokenNumber {
		return 0, csscade.ErrInvalid
	}
	val, consumed := fixed.Parse(tok.Value, integerOnly)
	if consumed != len(tok.Value) {
		return 0, csscade.ErrInvalid
	}
	v.Iterate(ctx)
	return val, nil
}

// parseUnitSpecifier reads a number, percentage or dimension token and
// returns the value with its unit. A bare number takes defaultUnit,
// matching the quirky unitless length handling of legacy stylesheets.
func parseUnitSpecifier(v Vector, ctx *int, defaultUnit bytecode.Unit) (fixed.Fixed, bytecode.Unit, error) {
	tok := v.Peek(*ctx)
	if tok == nil {
		return 0, 0, csscade.ErrInvalid
	}
	switch tok.Type {
	case TokenNumber:
		val, consumed := fixed.Parse(tok.Value, false)
		if consumed != len(tok.Value) {
			return 0, 0, csscade.ErrInvalid
		}
		v.Iterate(ctx)
		return val, defaultUnit, nil
	case TokenPercentage:
		val, consumed := fixed.Parse(tok.Value, false)
		if consumed != len(tok.Value) {
			return 0, 0, csscade.ErrInvalid
		}
		v.Iterate(ctx)
		return val, bytecode.UnitPct, nil
	case TokenDimension:
		val, consumed := fixed.Parse(tok.Value, false)
		if consumed == 0 {
			return 0, 0, csscade.ErrInvalid
		}
		unit, ok := unitNames[strings.ToLower(tok.Value[consumed:])]
		if !ok {
			return 0, 0, csscade.ErrInvalid
		}
		v.Iterate(ctx)
		return val, unit, nil
	}
	return 0, 0, csscade.ErrInvalid
}

// namedColours is the subset of CSS colour keywords the engine
// understands, as 0xAARRGGBB.
var namedColours = map[string]uint32{
	"black":   0xff000000,
	"silver":  0xffc0c0c0,
	"gray":    0xff808080,
	"white":   0xffffffff,
	"maroon":  0xff800000,
	"red":     0xffff0000,
	"purple":  0xff800080,
	"fuchsia": 0xffff00ff,
	"green":   0xff008000,
	"lime":    0xff00ff00,
	"olive":   0xff808000,
	"yellow":  0xffffff00,
	"navy":    0xff000080,
	"blue":    0xff0000ff,
	"teal":    0xff008080,
	"aqua":    0xff00ffff,
	"orange":  0xffffa500,
}

// colourValue is the result of parseColourSpecifier : either a
// concrete 0xAARRGGBB value or one of the two keyword forms.
type colourValue struct {
	op   uint16 // ColorSet, ColorTransparent or ColorCurrentColor
	argb uint32
}

// parseColourSpecifier reads one colour token sequence : a keyword, a
// hex hash or an rgb()/rgba() function. The cursor only advances on
// success.
func parseColourSpecifier(v Vector, ctx *int) (colourValue, error) {
	tok := v.Peek(*ctx)
	if tok == nil {
		return colourValue{}, csscade.ErrInvalid
	}
	switch {
	case tok.Type == TokenIdent:
		name := strings.ToLower(tok.Value)
		if name == "transparent" {
			v.Iterate(ctx)
			return colourValue{op: bytecode.ColorTransparent}, nil
		}
		if name == "currentcolor" {
			v.Iterate(ctx)
			return colourValue{op: bytecode.ColorCurrentColor}, nil
		}
		if argb, ok := namedColours[name]; ok {
			v.Iterate(ctx)
			return colourValue{op: bytecode.ColorSet, argb: argb}, nil
		}
		return colourValue{}, csscade.ErrInvalid
	case tok.Type == TokenHash:
		argb, err := parseHexColour(tok.Value)
		if err != nil {
			return colourValue{}, err
		}
		v.Iterate(ctx)
		return colourValue{op: bytecode.ColorSet, argb: argb}, nil
	case tok.IsFunction("rgb") || tok.IsFunction("rgba"):
		return parseRGBFunction(v, ctx)
	}
	return colourValue{}, csscade.ErrInvalid
}

func parseHexColour(hex string) (uint32, error) {
	digits := make([]uint32, len(hex))
	for i := 0; i < len(hex); i++ {
		d, err := hexDigit(hex[i])
		if err != nil {
			return 0, err
		}
		digits[i] = d
	}
	switch len(hex) {
	case 3:
		r, g, b := digits[0], digits[1], digits[2]
		return 0xff000000 | r<<20 | r<<16 | g<<12 | g<<8 | b<<4 | b, nil
	case 6:
		var rgb uint32
		for _, d := range digits {
			rgb = rgb<<4 | d
		}
		return 0xff000000 | rgb, nil
	}
	return 0, csscade.ErrInvalid
}

func hexDigit(c byte) (uint32, error) {
	switch {
	case c >= '0' && c <= '9':
		return uint32(c - '0'), nil
	case c >= 'a' && c <= 'f':
		return uint32(c-'a') + 10, nil
	case c >= 'A' && c <= 'F':
		return uint32(c-'A') + 10, nil
	}
	return 0, csscade.ErrInvalid
}

// parseRGBFunction consumes rgb(r, g, b) or rgba(r, g, b, a). All
// three channels must agree on numbers versus percentages ; the alpha
// channel is a plain number clamped to [0, 1].
func parseRGBFunction(v Vector, ctx *int) (colourValue, error) {
	entry := *ctx
	fn := v.Peek(*ctx)
	hasAlpha := strings.EqualFold(fn.Value, "rgba")
	v.Iterate(ctx)
	v.ConsumeWhitespace(ctx)

	var channels [3]uint32
	percentages := false
	for i := 0; i < 3; i++ {
		if i > 0 {
			if err := expectChar(v, ctx, ','); err != nil {
				*ctx = entry
				return colourValue{}, err
			}
		}
		tok := v.Peek(*ctx)
		if tok == nil || (tok.Type != TokenNumber && tok.Type != TokenPercentage) {
			*ctx = entry
			return colourValue{}, csscade.ErrInvalid
		}
		isPct := tok.Type == TokenPercentage
		if i == 0 {
			percentages = isPct
		} else if isPct != percentages {
			*ctx = entry
			return colourValue{}, csscade.ErrInvalid
		}
		val, consumed := fixed.Parse(tok.Value, false)
		if consumed != len(tok.Value) {
			*ctx = entry
			return colourValue{}, csscade.ErrInvalid
		}
		if isPct {
			val = fixed.Div(fixed.Mul(val, fixed.FromInt(255)), fixed.FromInt(100))
		}
		channels[i] = clampChannel(val)
		v.Iterate(ctx)
		v.ConsumeWhitespace(ctx)
	}

	alpha := uint32(0xff)
	if hasAlpha {
		if err := expectChar(v, ctx, ','); err != nil {
			*ctx = entry
			return colourValue{}, err
		}
		tok := v.Peek(*ctx)
		if tok == nil || tok.Type != TokenNumber {
			*ctx = entry
			return colourValue{}, csscade.ErrInvalid
		}
		val, consumed := fixed.Parse(tok.Value, false)
		if consumed != len(tok.Value) {
			*ctx = entry
			return colourValue{}, csscade.ErrInvalid
		}
		alpha = clampChannel(fixed.Mul(val, fixed.FromInt(255)))
		v.Iterate(ctx)
		v.ConsumeWhitespace(ctx)
	}

	if err := expectChar(v, ctx, ')'); err != nil {
		*ctx = entry
		return colourValue{}, err
	}
	argb := alpha<<24 | channels[0]<<16 | channels[1]<<8 | channels[2]
	return colourValue{op: bytecode.ColorSet, argb: argb}, nil
}

func clampChannel(val fixed.Fixed) uint32 {
	i := val.ToInt()
	if i < 0 {
		return 0
	}
	if i > 255 {
		return 255
	}
	return uint32(i)
}

// expectChar consumes the given punctuation character, skipping any
// whitespace after it.
func expectChar(v Vector, ctx *int, c byte) error {
	tok := v.Peek(*ctx)
	if tok == nil || !tok.IsChar(c) {
		return fmt.Errorf("expected %q: %w", string(c), csscade.ErrInvalid)
	}
	v.Iterate(ctx)
	v.ConsumeWhitespace(ctx)
	return nil
}
