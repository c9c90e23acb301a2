package parse

import (
	"github.com/tilford/csscade"
	"github.com/tilford/csscade/css/bytecode"
	"github.com/tilford/csscade/css/fixed"
)

// lengthParser option flags.
const (
	lengthAllowAuto = 1 << iota
	lengthAllowNone
	lengthAllowNegative
)

// lengthParser builds a parser for the box model length properties :
// width, height, the min/max variants, margins and paddings. The
// flags select which keywords the property accepts and whether
// negative values are legal.
func lengthParser(prop bytecode.Property, flags int) parseFunc {
	return func(c *Context, v Vector, ctx *int, result *bytecode.Style) error {
		tok := v.Peek(*ctx)
		if tok == nil {
			return csscade.ErrInvalid
		}
		if tok.Type == TokenIdent {
			switch {
			case flags&lengthAllowAuto != 0 && tok.IsIdent("auto"):
				v.Iterate(ctx)
				return result.AppendOPV(prop, 0, bytecode.LengthAuto)
			case flags&lengthAllowNone != 0 && tok.IsIdent("none"):
				v.Iterate(ctx)
				return result.AppendOPV(prop, 0, bytecode.LengthNone)
			}
			return csscade.ErrInvalid
		}
		val, unit, err := parseUnitSpecifier(v, ctx, bytecode.UnitPX)
		if err != nil {
			return err
		}
		if val < 0 && flags&lengthAllowNegative == 0 {
			return csscade.ErrInvalid
		}
		if !isLengthUnit(unit) {
			return csscade.ErrInvalid
		}
		return appendLength(result, prop, val, unit)
	}
}

// isLengthUnit reports whether unit is a length or a percentage, as
// opposed to an angle or a grid track unit.
func isLengthUnit(unit bytecode.Unit) bool {
	return unit <= bytecode.UnitVW || unit == bytecode.UnitPct
}

func appendLength(result *bytecode.Style, prop bytecode.Property, val fixed.Fixed, unit bytecode.Unit) error {
	if err := result.AppendOPV(prop, 0, bytecode.LengthSet); err != nil {
		return err
	}
	if err := result.Append(bytecode.WordFromFixed(val)); err != nil {
		return err
	}
	return result.Append(uint32(unit))
}
