package parse

import (
	"github.com/tilford/csscade"
	"github.com/tilford/csscade/css/bytecode"
	"github.com/tilford/csscade/css/fixed"
)

// parseOpacity accepts a number, clamped to [0, 1].
func parseOpacity(c *Context, v Vector, ctx *int, result *bytecode.Style) error {
	val, err := parseNumber(v, ctx, false)
	if err != nil {
		return err
	}
	if val < 0 {
		val = 0
	} else if val > fixed.One {
		val = fixed.One
	}
	if err := result.AppendOPV(bytecode.PropOpacity, 0, bytecode.NumberSet); err != nil {
		return err
	}
	return result.Append(bytecode.WordFromFixed(val))
}

// parseZIndex accepts auto or an integer.
func parseZIndex(c *Context, v Vector, ctx *int, result *bytecode.Style) error {
	tok := v.Peek(*ctx)
	if tok != nil && tok.IsIdent("auto") {
		v.Iterate(ctx)
		return result.AppendOPV(bytecode.PropZIndex, 0, bytecode.ZIndexAuto)
	}
	val, err := parseNumber(v, ctx, true)
	if err != nil {
		return err
	}
	if err := result.AppendOPV(bytecode.PropZIndex, 0, bytecode.ZIndexSet); err != nil {
		return err
	}
	return result.Append(uint32(int32(val.ToInt())))
}

// parseLineHeight accepts normal, a unitless multiplier, or a length
// or percentage. Negative values are invalid in every form.
func parseLineHeight(c *Context, v Vector, ctx *int, result *bytecode.Style) error {
	tok := v.Peek(*ctx)
	if tok == nil {
		return csscade.ErrInvalid
	}
	if tok.IsIdent("normal") {
		v.Iterate(ctx)
		return result.AppendOPV(bytecode.PropLineHeight, 0, bytecode.LineHeightNormal)
	}
	if tok.Type == TokenNumber {
		val, err := parseNumber(v, ctx, false)
		if err != nil {
			return err
		}
		if val < 0 {
			return csscade.ErrInvalid
		}
		if err := result.AppendOPV(bytecode.PropLineHeight, 0, bytecode.LineHeightNumber); err != nil {
			return err
		}
		return result.Append(bytecode.WordFromFixed(val))
	}
	val, unit, err := parseUnitSpecifier(v, ctx, bytecode.UnitPX)
	if err != nil {
		return err
	}
	if val < 0 || !isLengthUnit(unit) {
		return csscade.ErrInvalid
	}
	if err := result.AppendOPV(bytecode.PropLineHeight, 0, bytecode.LineHeightDimension); err != nil {
		return err
	}
	if err := result.Append(bytecode.WordFromFixed(val)); err != nil {
		return err
	}
	return result.Append(uint32(unit))
}

// parseFlexBasis accepts auto, content, or a non negative length or
// percentage.
func parseFlexBasis(c *Context, v Vector, ctx *int, result *bytecode.Style) error {
	tok := v.Peek(*ctx)
	if tok == nil {
		return csscade.ErrInvalid
	}
	if tok.IsIdent("auto") {
		v.Iterate(ctx)
		return result.AppendOPV(bytecode.PropFlexBasis, 0, bytecode.FlexBasisAuto)
	}
	if tok.IsIdent("content") {
		v.Iterate(ctx)
		return result.AppendOPV(bytecode.PropFlexBasis, 0, bytecode.FlexBasisContent)
	}
	val, unit, err := parseUnitSpecifier(v, ctx, bytecode.UnitPX)
	if err != nil {
		return err
	}
	if val < 0 || !isLengthUnit(unit) {
		return csscade.ErrInvalid
	}
	if err := result.AppendOPV(bytecode.PropFlexBasis, 0, bytecode.FlexBasisSet); err != nil {
		return err
	}
	if err := result.Append(bytecode.WordFromFixed(val)); err != nil {
		return err
	}
	return result.Append(uint32(unit))
}

// numberParser builds the parser shared by flex-grow and flex-shrink :
// a single non negative number.
func numberParser(prop bytecode.Property) parseFunc {
	return func(c *Context, v Vector, ctx *int, result *bytecode.Style) error {
		val, err := parseNumber(v, ctx, false)
		if err != nil {
			return err
		}
		if val < 0 {
			return csscade.ErrInvalid
		}
		if err := result.AppendOPV(prop, 0, bytecode.NumberSet); err != nil {
			return err
		}
		return result.Append(bytecode.WordFromFixed(val))
	}
}
