package parse

import (
	"fmt"
	"strings"

	"github.com/tdewolff/parse/v2"
	tcss "github.com/tdewolff/parse/v2/css"
	"go.uber.org/multierr"

	"github.com/tilford/csscade"
	"github.com/tilford/csscade/css/bytecode"
	"github.com/tilford/csscade/css/fixed"
	"github.com/tilford/csscade/logger"
)

// URLResolver turns a relative url() argument into an absolute url.
type URLResolver func(baseURL, rel string) (string, error)

// Context carries the parse time environment : the stylesheet base
// url and the resolver callback for url() values.
type Context struct {
	BaseURL string
	Resolve URLResolver
}

func (c *Context) resolveURL(rel string) (string, error) {
	if c.Resolve == nil {
		return rel, nil
	}
	return c.Resolve(c.BaseURL, rel)
}

// Declaration is one "name: value [!important]" pair, tokenized.
type Declaration struct {
	Name      string
	Value     Vector
	Important bool
}

// DeferredVar is a declaration whose value contains var() references.
// It cannot be compiled until the custom property map is known, so the
// tokens are kept verbatim and resolved during cascade.
type DeferredVar struct {
	Prop      bytecode.Property
	Important bool
	Tokens    Vector
}

// Block is the compiled form of one declaration block : the bytecode
// for every declaration that could be resolved at parse time, plus
// the deferred var() declarations.
type Block struct {
	Style    *bytecode.Style
	Deferred []DeferredVar
}

// parseFunc is the per property parser contract : consume tokens from
// the shared cursor, append one property record (or several, for
// shorthands). On malformed input it restores the cursor to its entry
// value and returns csscade.ErrInvalid ; the caller discards any
// partially appended words.
type parseFunc = func(c *Context, v Vector, ctx *int, result *bytecode.Style) error

var parsers [bytecode.NumProperties]parseFunc

func init() {
	parsers = [bytecode.NumProperties]parseFunc{
		bytecode.PropColor:               parseColorValue(bytecode.PropColor),
		bytecode.PropBackgroundColor:     parseColorValue(bytecode.PropBackgroundColor),
		bytecode.PropBackgroundImage:     parseBackgroundImage,
		bytecode.PropDisplay:             keywordParser(bytecode.PropDisplay, displayKeywords),
		bytecode.PropFloat:               keywordParser(bytecode.PropFloat, floatKeywords),
		bytecode.PropPosition:            keywordParser(bytecode.PropPosition, positionKeywords),
		bytecode.PropVisibility:          keywordParser(bytecode.PropVisibility, visibilityKeywords),
		bytecode.PropOverflow:            keywordParser(bytecode.PropOverflow, overflowKeywords),
		bytecode.PropWidth:               lengthParser(bytecode.PropWidth, lengthAllowAuto),
		bytecode.PropHeight:              lengthParser(bytecode.PropHeight, lengthAllowAuto),
		bytecode.PropMinWidth:            lengthParser(bytecode.PropMinWidth, 0),
		bytecode.PropMinHeight:           lengthParser(bytecode.PropMinHeight, 0),
		bytecode.PropMaxWidth:            lengthParser(bytecode.PropMaxWidth, lengthAllowNone),
		bytecode.PropMaxHeight:           lengthParser(bytecode.PropMaxHeight, lengthAllowNone),
		bytecode.PropMarginTop:           lengthParser(bytecode.PropMarginTop, lengthAllowAuto|lengthAllowNegative),
		bytecode.PropMarginRight:         lengthParser(bytecode.PropMarginRight, lengthAllowAuto|lengthAllowNegative),
		bytecode.PropMarginBottom:        lengthParser(bytecode.PropMarginBottom, lengthAllowAuto|lengthAllowNegative),
		bytecode.PropMarginLeft:          lengthParser(bytecode.PropMarginLeft, lengthAllowAuto|lengthAllowNegative),
		bytecode.PropPaddingTop:          lengthParser(bytecode.PropPaddingTop, 0),
		bytecode.PropPaddingRight:        lengthParser(bytecode.PropPaddingRight, 0),
		bytecode.PropPaddingBottom:       lengthParser(bytecode.PropPaddingBottom, 0),
		bytecode.PropPaddingLeft:         lengthParser(bytecode.PropPaddingLeft, 0),
		bytecode.PropOpacity:             parseOpacity,
		bytecode.PropZIndex:              parseZIndex,
		bytecode.PropLineHeight:          parseLineHeight,
		bytecode.PropFlexBasis:           parseFlexBasis,
		bytecode.PropFlexGrow:            numberParser(bytecode.PropFlexGrow),
		bytecode.PropFlexShrink:          numberParser(bytecode.PropFlexShrink),
		bytecode.PropGridTemplateColumns: gridTemplateParser(bytecode.PropGridTemplateColumns),
		bytecode.PropGridTemplateRows:    gridTemplateParser(bytecode.PropGridTemplateRows),
		bytecode.PropGridRowStart:        gridLineParser(bytecode.PropGridRowStart),
		bytecode.PropGridRowEnd:          gridLineParser(bytecode.PropGridRowEnd),
		bytecode.PropGridColumnStart:     gridLineParser(bytecode.PropGridColumnStart),
		bytecode.PropGridColumnEnd:       gridLineParser(bytecode.PropGridColumnEnd),
		bytecode.PropGridAutoFlow:        parseGridAutoFlow,
	}
}

// propertyByName resolves a declaration name, including the two grid
// shorthands which do not have their own bytecode property id.
var propertyByName = map[string]bytecode.Property{
	"color":                 bytecode.PropColor,
	"background-color":      bytecode.PropBackgroundColor,
	"background-image":      bytecode.PropBackgroundImage,
	"display":               bytecode.PropDisplay,
	"float":                 bytecode.PropFloat,
	"position":              bytecode.PropPosition,
	"visibility":            bytecode.PropVisibility,
	"overflow":              bytecode.PropOverflow,
	"width":                 bytecode.PropWidth,
	"height":                bytecode.PropHeight,
	"min-width":             bytecode.PropMinWidth,
	"min-height":            bytecode.PropMinHeight,
	"max-width":             bytecode.PropMaxWidth,
	"max-height":            bytecode.PropMaxHeight,
	"margin-top":            bytecode.PropMarginTop,
	"margin-right":          bytecode.PropMarginRight,
	"margin-bottom":         bytecode.PropMarginBottom,
	"margin-left":           bytecode.PropMarginLeft,
	"padding-top":           bytecode.PropPaddingTop,
	"padding-right":         bytecode.PropPaddingRight,
	"padding-bottom":        bytecode.PropPaddingBottom,
	"padding-left":          bytecode.PropPaddingLeft,
	"opacity":               bytecode.PropOpacity,
	"z-index":               bytecode.PropZIndex,
	"line-height":           bytecode.PropLineHeight,
	"flex-basis":            bytecode.PropFlexBasis,
	"flex-grow":             bytecode.PropFlexGrow,
	"flex-shrink":           bytecode.PropFlexShrink,
	"grid-template-columns": bytecode.PropGridTemplateColumns,
	"grid-template-rows":    bytecode.PropGridTemplateRows,
	"grid-row-start":        bytecode.PropGridRowStart,
	"grid-row-end":          bytecode.PropGridRowEnd,
	"grid-column-start":     bytecode.PropGridColumnStart,
	"grid-column-end":       bytecode.PropGridColumnEnd,
	"grid-auto-flow":        bytecode.PropGridAutoFlow,
}

// shorthand parsers, keyed by name since they expand to several
// property records.
var shorthands = map[string]parseFunc{
	"grid-row":    gridShorthandParser(bytecode.PropGridRowStart, bytecode.PropGridRowEnd),
	"grid-column": gridShorthandParser(bytecode.PropGridColumnStart, bytecode.PropGridColumnEnd),
}

// ParseBlock compiles a list of declarations into a bytecode block.
// Invalid declarations are dropped (and logged), per the CSS error
// recovery model ; the combined parse errors are also returned for
// callers that want them.
func (c *Context) ParseBlock(decls []Declaration, strings *bytecode.StringTable) (*Block, error) {
	block := &Block{Style: bytecode.NewStyle(strings)}
	var errs error
	for _, d := range decls {
		if err := c.ParseDeclaration(d, block); err != nil {
			logger.Warning.Warnf("ignored declaration %q: %v", d.Name, err)
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", d.Name, err))
		}
	}
	return block, errs
}

// ParseDeclaration compiles one declaration into block. The style
// buffer is left untouched when an error is returned.
func (c *Context) ParseDeclaration(d Declaration, block *Block) error {
	name := strings.TrimSpace(d.Name)
	if !strings.HasPrefix(name, "--") {
		// property names are matched caselessly, custom property
		// names are not
		name = strings.ToLower(name)
	}
	style := block.Style
	checkpoint := style.Checkpoint()

	commit := func(err error) error {
		if err != nil {
			style.Truncate(checkpoint)
			return err
		}
		if d.Important {
			if err := bytecode.MarkImportant(style, checkpoint); err != nil {
				style.Truncate(checkpoint)
				return err
			}
		}
		return nil
	}

	if strings.HasPrefix(name, "--") {
		return commit(appendCustomProperty(style, name, d.Value))
	}

	if containsVar(d.Value) {
		prop, ok := propertyByName[name]
		if !ok {
			return fmt.Errorf("unknown property: %w", csscade.ErrInvalid)
		}
		block.Deferred = append(block.Deferred, DeferredVar{
			Prop:      prop,
			Important: d.Important,
			Tokens:    append(Vector(nil), d.Value...),
		})
		return nil
	}

	if meta, ok := metaKeyword(d.Value); ok {
		props, err := expandName(name)
		if err != nil {
			return err
		}
		for _, p := range props {
			if err := appendMeta(style, p, meta); err != nil {
				return commit(err)
			}
		}
		return commit(nil)
	}

	fn := shorthands[name]
	if fn == nil {
		prop, ok := propertyByName[name]
		if !ok {
			return fmt.Errorf("unknown property: %w", csscade.ErrInvalid)
		}
		fn = parsers[prop]
	}

	ctx := 0
	d.Value.ConsumeWhitespace(&ctx)
	if err := fn(c, d.Value, &ctx, style); err != nil {
		return commit(err)
	}

	// Trailing junk after a valid value invalidates the declaration.
	d.Value.ConsumeWhitespace(&ctx)
	if d.Value.Peek(ctx) != nil {
		return commit(fmt.Errorf("unexpected trailing tokens: %w", csscade.ErrInvalid))
	}
	return commit(nil)
}

func appendCustomProperty(style *bytecode.Style, name string, value Vector) error {
	raw := Serialize(value)
	if raw == "" {
		return fmt.Errorf("empty custom property value: %w", csscade.ErrInvalid)
	}
	if err := style.AppendOPV(bytecode.PropCustom, 0, bytecode.CustomSet); err != nil {
		return err
	}
	if err := style.Append(style.Strings().Add(name)); err != nil {
		return err
	}
	return style.Append(style.Strings().Add(raw))
}

// metaKeyword recognises a value made of exactly one CSS wide
// keyword.
func metaKeyword(v Vector) (string, bool) {
	ctx := 0
	v.ConsumeWhitespace(&ctx)
	tok := v.Peek(ctx)
	if tok == nil || tok.Type != TokenIdent {
		return "", false
	}
	kw := strings.ToLower(tok.Value)
	switch kw {
	case "inherit", "initial", "unset", "revert":
	default:
		return "", false
	}
	v.Iterate(&ctx)
	v.ConsumeWhitespace(&ctx)
	if v.Peek(ctx) != nil {
		return "", false
	}
	return kw, true
}

// expandName maps a declaration name to the bytecode properties it
// sets : one for longhands, several for shorthands.
func expandName(name string) ([]bytecode.Property, error) {
	switch name {
	case "grid-row":
		return []bytecode.Property{bytecode.PropGridRowStart, bytecode.PropGridRowEnd}, nil
	case "grid-column":
		return []bytecode.Property{bytecode.PropGridColumnStart, bytecode.PropGridColumnEnd}, nil
	}
	prop, ok := propertyByName[name]
	if !ok {
		return nil, fmt.Errorf("unknown property: %w", csscade.ErrInvalid)
	}
	return []bytecode.Property{prop}, nil
}

func appendMeta(style *bytecode.Style, prop bytecode.Property, kw string) error {
	switch kw {
	case "inherit":
		return style.AppendInherit(prop, 0)
	case "unset":
		return style.AppendUnset(prop, 0)
	case "revert":
		return style.AppendRevert(prop, 0)
	case "initial":
		return appendInitial(style, prop)
	}
	return csscade.ErrBadParm
}

// appendInitial emits the property's initial value as a concrete
// record, so that "initial" needs no special handling at cascade time.
func appendInitial(style *bytecode.Style, prop bytecode.Property) error {
	switch prop {
	case bytecode.PropColor:
		if err := style.AppendOPV(prop, 0, bytecode.ColorSet); err != nil {
			return err
		}
		return style.Append(0xff000000)
	case bytecode.PropBackgroundColor:
		return style.AppendOPV(prop, 0, bytecode.ColorTransparent)
	case bytecode.PropBackgroundImage:
		return style.AppendOPV(prop, 0, bytecode.BackgroundImageNone)
	case bytecode.PropDisplay:
		return style.AppendOPV(prop, 0, bytecode.DisplayInline)
	case bytecode.PropFloat:
		return style.AppendOPV(prop, 0, bytecode.FloatNone)
	case bytecode.PropPosition:
		return style.AppendOPV(prop, 0, bytecode.PositionStatic)
	case bytecode.PropVisibility:
		return style.AppendOPV(prop, 0, bytecode.VisibilityVisible)
	case bytecode.PropOverflow:
		return style.AppendOPV(prop, 0, bytecode.OverflowVisible)
	case bytecode.PropWidth, bytecode.PropHeight:
		return style.AppendOPV(prop, 0, bytecode.LengthAuto)
	case bytecode.PropMinWidth, bytecode.PropMinHeight,
		bytecode.PropMarginTop, bytecode.PropMarginRight,
		bytecode.PropMarginBottom, bytecode.PropMarginLeft,
		bytecode.PropPaddingTop, bytecode.PropPaddingRight,
		bytecode.PropPaddingBottom, bytecode.PropPaddingLeft:
		if err := style.AppendOPV(prop, 0, bytecode.LengthSet); err != nil {
			return err
		}
		if err := style.Append(0); err != nil {
			return err
		}
		return style.Append(uint32(bytecode.UnitPX))
	case bytecode.PropMaxWidth, bytecode.PropMaxHeight:
		return style.AppendOPV(prop, 0, bytecode.LengthNone)
	case bytecode.PropOpacity:
		if err := style.AppendOPV(prop, 0, bytecode.NumberSet); err != nil {
			return err
		}
		return style.Append(bytecode.WordFromFixed(fixed.One))
	case bytecode.PropZIndex:
		return style.AppendOPV(prop, 0, bytecode.ZIndexAuto)
	case bytecode.PropLineHeight:
		return style.AppendOPV(prop, 0, bytecode.LineHeightNormal)
	case bytecode.PropFlexBasis:
		return style.AppendOPV(prop, 0, bytecode.FlexBasisAuto)
	case bytecode.PropFlexGrow:
		if err := style.AppendOPV(prop, 0, bytecode.NumberSet); err != nil {
			return err
		}
		return style.Append(0)
	case bytecode.PropFlexShrink:
		if err := style.AppendOPV(prop, 0, bytecode.NumberSet); err != nil {
			return err
		}
		return style.Append(bytecode.WordFromFixed(fixed.One))
	case bytecode.PropGridTemplateColumns, bytecode.PropGridTemplateRows:
		return style.AppendOPV(prop, 0, bytecode.GridTemplateNone)
	case bytecode.PropGridRowStart, bytecode.PropGridRowEnd,
		bytecode.PropGridColumnStart, bytecode.PropGridColumnEnd:
		return style.AppendOPV(prop, 0, bytecode.GridLineAuto)
	case bytecode.PropGridAutoFlow:
		return style.AppendOPV(prop, 0, bytecode.GridAutoFlowRow)
	}
	return csscade.ErrBadParm
}

func containsVar(v Vector) bool {
	for i := range v {
		if v[i].IsFunction("var") {
			return true
		}
	}
	return false
}

// ParseProperty compiles a single property value ; it is the entry
// point used when a deferred var() declaration is finally resolved.
func (c *Context) ParseProperty(prop bytecode.Property, v Vector, style *bytecode.Style) error {
	fn := parsers[prop]
	if fn == nil {
		return fmt.Errorf("no parser for %s: %w", prop, csscade.ErrBadParm)
	}
	checkpoint := style.Checkpoint()
	ctx := 0
	v.ConsumeWhitespace(&ctx)
	if err := fn(c, v, &ctx, style); err != nil {
		style.Truncate(checkpoint)
		return err
	}
	v.ConsumeWhitespace(&ctx)
	if v.Peek(ctx) != nil {
		style.Truncate(checkpoint)
		return fmt.Errorf("unexpected trailing tokens: %w", csscade.ErrInvalid)
	}
	return nil
}

// ParseDeclarationList tokenizes an inline declaration list such as
// the content of a style attribute or a rule body.
func ParseDeclarationList(css string) []Declaration {
	p := tcss.NewParser(parse.NewInputString(css), true)
	var out []Declaration
	for {
		gt, _, data := p.Next()
		switch gt {
		case tcss.ErrorGrammar:
			return out
		case tcss.DeclarationGrammar, tcss.CustomPropertyGrammar:
			var sb strings.Builder
			for _, v := range p.Values() {
				sb.Write(v.Data)
			}
			out = append(out, ParseDeclarationValue(string(data), sb.String()))
		}
	}
}

// ParseDeclarationValue tokenizes one declaration value and peels a
// trailing "!important".
func ParseDeclarationValue(name, value string) Declaration {
	tokens := Tokenize(value)

	important := false
	end := len(tokens)
	for end > 0 && tokens[end-1].Type == TokenWhitespace {
		end--
	}
	if end >= 2 && tokens[end-1].IsIdent("important") {
		j := end - 2
		for j > 0 && tokens[j].Type == TokenWhitespace {
			j--
		}
		if tokens[j].IsChar('!') {
			important = true
			end = j
		}
	}
	return Declaration{Name: name, Value: tokens[:end], Important: important}
}
