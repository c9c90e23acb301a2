package parse

import (
	"strings"

	"github.com/tilford/csscade"
	"github.com/tilford/csscade/css/bytecode"
)

var displayKeywords = map[string]uint16{
	"inline":       bytecode.DisplayInline,
	"block":        bytecode.DisplayBlock,
	"inline-block": bytecode.DisplayInlineBlock,
	"flex":         bytecode.DisplayFlex,
	"inline-flex":  bytecode.DisplayInlineFlex,
	"grid":         bytecode.DisplayGrid,
	"inline-grid":  bytecode.DisplayInlineGrid,
	"none":         bytecode.DisplayNone,
}

var floatKeywords = map[string]uint16{
	"none":  bytecode.FloatNone,
	"left":  bytecode.FloatLeft,
	"right": bytecode.FloatRight,
}

var positionKeywords = map[string]uint16{
	"static":   bytecode.PositionStatic,
	"relative": bytecode.PositionRelative,
	"absolute": bytecode.PositionAbsolute,
	"fixed":    bytecode.PositionFixed,
}

var visibilityKeywords = map[string]uint16{
	"visible":  bytecode.VisibilityVisible,
	"hidden":   bytecode.VisibilityHidden,
	"collapse": bytecode.VisibilityCollapse,
}

var overflowKeywords = map[string]uint16{
	"visible": bytecode.OverflowVisible,
	"hidden":  bytecode.OverflowHidden,
	"scroll":  bytecode.OverflowScroll,
	"auto":    bytecode.OverflowAuto,
}

// keywordParser builds a parser for a pure keyword property : one
// ident token from the table, nothing else.
func keywordParser(prop bytecode.Property, table map[string]uint16) parseFunc {
	return func(c *Context, v Vector, ctx *int, result *bytecode.Style) error {
		tok := v.Peek(*ctx)
		if tok == nil || tok.Type != TokenIdent {
			return csscade.ErrInvalid
		}
		op, ok := table[strings.ToLower(tok.Value)]
		if !ok {
			return csscade.ErrInvalid
		}
		v.Iterate(ctx)
		return result.AppendOPV(prop, 0, op)
	}
}

// parseColorValue builds the parser shared by color and
// background-color.
func parseColorValue(prop bytecode.Property) parseFunc {
	return func(c *Context, v Vector, ctx *int, result *bytecode.Style) error {
		col, err := parseColourSpecifier(v, ctx)
		if err != nil {
			return err
		}
		if err := result.AppendOPV(prop, 0, col.op); err != nil {
			return err
		}
		if col.op == bytecode.ColorSet {
			return result.Append(col.argb)
		}
		return nil
	}
}
