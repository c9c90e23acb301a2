package parse

import (
	"errors"
	"strings"
	"testing"

	"github.com/tilford/csscade"
	"github.com/tilford/csscade/css/bytecode"
	"github.com/tilford/csscade/css/fixed"
	tu "github.com/tilford/csscade/utils/testutils"
)

// compile parses one declaration and returns the emitted words.
func compile(t *testing.T, name, value string, important bool) []uint32 {
	t.Helper()
	c := &Context{}
	block := &Block{Style: bytecode.NewStyle(bytecode.NewStringTable())}
	err := c.ParseDeclaration(Declaration{Name: name, Value: Tokenize(value), Important: important}, block)
	tu.AssertNoErr(t, err)
	return block.Style.Words()
}

func compileErr(t *testing.T, name, value string) error {
	t.Helper()
	c := &Context{}
	block := &Block{Style: bytecode.NewStyle(bytecode.NewStringTable())}
	err := c.ParseDeclaration(Declaration{Name: name, Value: Tokenize(value)}, block)
	if err == nil {
		t.Fatalf("expected error for %s: %s", name, value)
	}
	tu.AssertEqual(t, block.Style.Len(), 0)
	return err
}

func opv(prop bytecode.Property, flags uint8, value uint16) uint32 {
	return bytecode.MakeOPV(prop, flags, value)
}

func fx(i int) uint32 { return bytecode.WordFromFixed(fixed.FromInt(i)) }

func TestParseColours(t *testing.T) {
	for _, test := range []struct {
		value string
		exp   []uint32
	}{
		{"red", []uint32{opv(bytecode.PropColor, 0, bytecode.ColorSet), 0xffff0000}},
		{"#0f0", []uint32{opv(bytecode.PropColor, 0, bytecode.ColorSet), 0xff00ff00}},
		{"#123456", []uint32{opv(bytecode.PropColor, 0, bytecode.ColorSet), 0xff123456}},
		{"rgb(1, 2, 3)", []uint32{opv(bytecode.PropColor, 0, bytecode.ColorSet), 0xff010203}},
		{"rgb(100%, 0%, 0%)", []uint32{opv(bytecode.PropColor, 0, bytecode.ColorSet), 0xffff0000}},
		{"rgba(255, 0, 0, 0.5)", []uint32{opv(bytecode.PropColor, 0, bytecode.ColorSet), 0x7fff0000}},
		{"transparent", []uint32{opv(bytecode.PropColor, 0, bytecode.ColorTransparent)}},
		{"currentColor", []uint32{opv(bytecode.PropColor, 0, bytecode.ColorCurrentColor)}},
	} {
		tu.AssertEqual(t, compile(t, "color", test.value, false), test.exp)
	}

	for _, invalid := range []string{"#12345", "notacolour", "rgb(10%, 20, 30)", "rgb(1, 2"} {
		err := compileErr(t, "color", invalid)
		if !errors.Is(err, csscade.ErrInvalid) {
			t.Fatalf("expected invalid value error, got %s", err)
		}
	}
}

func TestParseLengths(t *testing.T) {
	tu.AssertEqual(t, compile(t, "width", "10px", false),
		[]uint32{opv(bytecode.PropWidth, 0, bytecode.LengthSet), fx(10), uint32(bytecode.UnitPX)})
	tu.AssertEqual(t, compile(t, "width", "50%", false),
		[]uint32{opv(bytecode.PropWidth, 0, bytecode.LengthSet), fx(50), uint32(bytecode.UnitPct)})
	tu.AssertEqual(t, compile(t, "width", "auto", false),
		[]uint32{opv(bytecode.PropWidth, 0, bytecode.LengthAuto)})
	tu.AssertEqual(t, compile(t, "max-height", "none", false),
		[]uint32{opv(bytecode.PropMaxHeight, 0, bytecode.LengthNone)})
	tu.AssertEqual(t, compile(t, "margin-left", "-4em", false),
		[]uint32{opv(bytecode.PropMarginLeft, 0, bytecode.LengthSet), fx(-4), uint32(bytecode.UnitEM)})

	// unitless numbers default to px
	tu.AssertEqual(t, compile(t, "height", "12", false),
		[]uint32{opv(bytecode.PropHeight, 0, bytecode.LengthSet), fx(12), uint32(bytecode.UnitPX)})

	compileErr(t, "padding-top", "-1px")
	compileErr(t, "min-width", "auto")
	compileErr(t, "width", "5fr")
	compileErr(t, "width", "10px 20px") // trailing junk
}

func TestParseKeywordProperties(t *testing.T) {
	tu.AssertEqual(t, compile(t, "display", "inline-block", false),
		[]uint32{opv(bytecode.PropDisplay, 0, bytecode.DisplayInlineBlock)})
	tu.AssertEqual(t, compile(t, "float", "LEFT", false),
		[]uint32{opv(bytecode.PropFloat, 0, bytecode.FloatLeft)})
	tu.AssertEqual(t, compile(t, "overflow", "scroll", false),
		[]uint32{opv(bytecode.PropOverflow, 0, bytecode.OverflowScroll)})
	compileErr(t, "display", "bold")
}

func TestParseMetaKeywords(t *testing.T) {
	tu.AssertEqual(t, compile(t, "color", "inherit", false),
		[]uint32{opv(bytecode.PropColor, bytecode.FlagInherit, 0)})
	tu.AssertEqual(t, compile(t, "width", "unset", false),
		[]uint32{opv(bytecode.PropWidth, bytecode.FlagValueUnset, 0)})
	tu.AssertEqual(t, compile(t, "width", "revert", false),
		[]uint32{opv(bytecode.PropWidth, bytecode.FlagValueRevert, 0)})
	// initial is lowered to the concrete initial value
	tu.AssertEqual(t, compile(t, "background-color", "initial", false),
		[]uint32{opv(bytecode.PropBackgroundColor, 0, bytecode.ColorTransparent)})
	// shorthands expand the meta keyword
	tu.AssertEqual(t, compile(t, "grid-row", "inherit", false),
		[]uint32{
			opv(bytecode.PropGridRowStart, bytecode.FlagInherit, 0),
			opv(bytecode.PropGridRowEnd, bytecode.FlagInherit, 0),
		})
}

func TestImportantFlag(t *testing.T) {
	words := compile(t, "width", "10px", true)
	tu.AssertEqual(t, bytecode.IsImportant(words[0]), true)
	// only the OPV word carries the flag, operands are untouched
	tu.AssertEqual(t, words[1], fx(10))

	words = compile(t, "grid-row", "1 / span 2", true)
	tu.AssertEqual(t, bytecode.IsImportant(words[0]), true)
	tu.AssertEqual(t, bytecode.IsImportant(words[2]), true)
}

func TestParseMisc(t *testing.T) {
	// opacity clamps into [0, 1]
	tu.AssertEqual(t, compile(t, "opacity", "2.5", false),
		[]uint32{opv(bytecode.PropOpacity, 0, bytecode.NumberSet), fx(1)})

	tu.AssertEqual(t, compile(t, "z-index", "auto", false),
		[]uint32{opv(bytecode.PropZIndex, 0, bytecode.ZIndexAuto)})
	tu.AssertEqual(t, compile(t, "z-index", "-3", false),
		[]uint32{opv(bytecode.PropZIndex, 0, bytecode.ZIndexSet), uint32(0xfffffffd)})
	compileErr(t, "z-index", "1.5")

	tu.AssertEqual(t, compile(t, "line-height", "normal", false),
		[]uint32{opv(bytecode.PropLineHeight, 0, bytecode.LineHeightNormal)})
	tu.AssertEqual(t, compile(t, "line-height", "1.5", false),
		[]uint32{opv(bytecode.PropLineHeight, 0, bytecode.LineHeightNumber), bytecode.WordFromFixed(fixed.FromFloat(1.5))})
	tu.AssertEqual(t, compile(t, "line-height", "120%", false),
		[]uint32{opv(bytecode.PropLineHeight, 0, bytecode.LineHeightDimension), fx(120), uint32(bytecode.UnitPct)})
	compileErr(t, "line-height", "-1")

	tu.AssertEqual(t, compile(t, "flex-basis", "content", false),
		[]uint32{opv(bytecode.PropFlexBasis, 0, bytecode.FlexBasisContent)})
	tu.AssertEqual(t, compile(t, "flex-grow", "2", false),
		[]uint32{opv(bytecode.PropFlexGrow, 0, bytecode.NumberSet), fx(2)})
	compileErr(t, "flex-shrink", "-1")
}

func TestParseBackgroundImage(t *testing.T) {
	tu.AssertEqual(t, compile(t, "background-image", "none", false),
		[]uint32{opv(bytecode.PropBackgroundImage, 0, bytecode.BackgroundImageNone)})

	words := compile(t, "background-image", "url(pic.png)", false)
	tu.AssertEqual(t, words[0], opv(bytecode.PropBackgroundImage, 0, bytecode.BackgroundImageURI))
	tu.AssertEqual(t, len(words), 2)
}

func TestLinearGradient(t *testing.T) {
	grad := opv(bytecode.PropBackgroundImage, 0, bytecode.BackgroundImageLinearGradient)

	// explicit direction and offsets
	tu.AssertEqual(t, compile(t, "background-image", "linear-gradient(to right, red 10%, blue 90%)", false),
		[]uint32{grad, bytecode.GradientToRight, 2, 0xffff0000, fx(10), 0xff0000ff, fx(90)})

	// default direction is to bottom, stops are spread evenly
	tu.AssertEqual(t, compile(t, "background-image", "linear-gradient(red, green, blue)", false),
		[]uint32{grad, bytecode.GradientToBottom, 3,
			0xffff0000, fx(0), 0xff008000, fx(50), 0xff0000ff, fx(100)})

	// a single automatic stop sits at 0%
	tu.AssertEqual(t, compile(t, "background-image", "linear-gradient(red)", false),
		[]uint32{grad, bytecode.GradientToBottom, 1, 0xffff0000, fx(0)})

	// angles snap to the nearest cardinal direction
	for _, test := range []struct {
		angle string
		dir   uint32
	}{
		{"0deg", bytecode.GradientToTop},
		{"44deg", bytecode.GradientToTop},
		{"90deg", bytecode.GradientToRight},
		{"180deg", bytecode.GradientToBottom},
		{"270deg", bytecode.GradientToLeft},
		{"-45deg", bytecode.GradientToTop},
		{"-90deg", bytecode.GradientToLeft},
		{"405deg", bytecode.GradientToRight},
	} {
		words := compile(t, "background-image", "linear-gradient("+test.angle+", red, blue)", false)
		tu.AssertEqual(t, words[1], test.dir)
	}

	// unterminated linear gradients are invalid
	compileErr(t, "background-image", "linear-gradient(red, blue")
	// direction without a following stop list is invalid
	compileErr(t, "background-image", "linear-gradient(to top)")
}

func TestRadialGradient(t *testing.T) {
	grad := opv(bytecode.PropBackgroundImage, 0, bytecode.BackgroundImageRadialGradient)

	tu.AssertEqual(t, compile(t, "background-image", "radial-gradient(ellipse, red, blue)", false),
		[]uint32{grad, bytecode.RadialShapeEllipse, 2, 0xffff0000, fx(0), 0xff0000ff, fx(100)})

	// shape defaults to circle
	words := compile(t, "background-image", "radial-gradient(red, blue)", false)
	tu.AssertEqual(t, words[1], bytecode.RadialShapeCircle)

	// a radial gradient cut short before the next stop keeps the
	// stops seen so far
	tu.AssertEqual(t, compile(t, "background-image", "radial-gradient(red,", false),
		[]uint32{grad, bytecode.RadialShapeCircle, 1, 0xffff0000, fx(0)})

	// but end of input in the middle of a stop is invalid
	compileErr(t, "background-image", "radial-gradient(red")
}

func TestGradientStopLimit(t *testing.T) {
	atLimit := "linear-gradient(" + strings.Repeat("red, ", bytecode.MaxGradientStops-1) + "blue)"
	words := compile(t, "background-image", atLimit, false)
	tu.AssertEqual(t, words[2], uint32(bytecode.MaxGradientStops))

	overLimit := "linear-gradient(" + strings.Repeat("red, ", bytecode.MaxGradientStops) + "blue)"
	err := compileErr(t, "background-image", overLimit)
	if !errors.Is(err, csscade.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %s", err)
	}
}

func TestGridTemplates(t *testing.T) {
	set := opv(bytecode.PropGridTemplateColumns, 0, bytecode.GridTemplateSet)

	tu.AssertEqual(t, compile(t, "grid-template-columns", "none", false),
		[]uint32{opv(bytecode.PropGridTemplateColumns, 0, bytecode.GridTemplateNone)})

	tu.AssertEqual(t, compile(t, "grid-template-columns", "100px 1fr", false),
		[]uint32{set, 2, fx(100), uint32(bytecode.UnitPX), fx(1), uint32(bytecode.UnitFr)})

	// auto is normalised to 1fr
	tu.AssertEqual(t, compile(t, "grid-template-rows", "auto min-content", false),
		[]uint32{opv(bytecode.PropGridTemplateRows, 0, bytecode.GridTemplateSet), 2,
			fx(1), uint32(bytecode.UnitFr), 0, uint32(bytecode.UnitMinContent)})

	// repeat() expands at parse time
	tu.AssertEqual(t, compile(t, "grid-template-columns", "repeat(3, 1fr)", false),
		[]uint32{set, 3, fx(1), uint32(bytecode.UnitFr), fx(1), uint32(bytecode.UnitFr), fx(1), uint32(bytecode.UnitFr)})

	// minmax takes the six word form
	tu.AssertEqual(t, compile(t, "grid-template-columns", "minmax(100px, 1fr)", false),
		[]uint32{set, 1, 0, uint32(bytecode.UnitMinmax),
			fx(100), uint32(bytecode.UnitPX), fx(1), uint32(bytecode.UnitFr)})

	compileErr(t, "grid-template-columns", "")
	compileErr(t, "grid-template-columns", "1fr oops")
	compileErr(t, "grid-template-columns", "repeat(0, 1fr)")
}

func TestGridTrackLimit(t *testing.T) {
	// expansion clamps at the track cap
	words := compile(t, "grid-template-columns", "repeat(20, 1fr) repeat(20, 1fr)", false)
	exp := []uint32{opv(bytecode.PropGridTemplateColumns, 0, bytecode.GridTemplateSet),
		uint32(bytecode.MaxGridTracks)}
	for i := 0; i < bytecode.MaxGridTracks; i++ {
		exp = append(exp, fx(1), uint32(bytecode.UnitFr))
	}
	tu.AssertEqual(t, words, exp)

	// a repeat count past the cap is not a track at all
	compileErr(t, "grid-template-columns", "repeat(33, 1fr)")
}

func TestGridLines(t *testing.T) {
	tu.AssertEqual(t, compile(t, "grid-row-start", "auto", false),
		[]uint32{opv(bytecode.PropGridRowStart, 0, bytecode.GridLineAuto)})
	tu.AssertEqual(t, compile(t, "grid-column-start", "-2", false),
		[]uint32{opv(bytecode.PropGridColumnStart, 0, bytecode.GridLineSet), fx(-2)})
	tu.AssertEqual(t, compile(t, "grid-row-end", "span 3", false),
		[]uint32{opv(bytecode.PropGridRowEnd, 0, bytecode.GridLineSpan), fx(3)})
	// bare span means span 1
	tu.AssertEqual(t, compile(t, "grid-row-end", "span", false),
		[]uint32{opv(bytecode.PropGridRowEnd, 0, bytecode.GridLineSpan), fx(1)})

	// line zero does not exist
	compileErr(t, "grid-row-start", "0")
	compileErr(t, "grid-row-start", "1.5")

	// shorthand emits both longhands ; a single value leaves the end auto
	tu.AssertEqual(t, compile(t, "grid-column", "2 / span 3", false),
		[]uint32{
			opv(bytecode.PropGridColumnStart, 0, bytecode.GridLineSet), fx(2),
			opv(bytecode.PropGridColumnEnd, 0, bytecode.GridLineSpan), fx(3),
		})
	tu.AssertEqual(t, compile(t, "grid-row", "4", false),
		[]uint32{
			opv(bytecode.PropGridRowStart, 0, bytecode.GridLineSet), fx(4),
			opv(bytecode.PropGridRowEnd, 0, bytecode.GridLineAuto),
		})
}

func TestGridAutoFlow(t *testing.T) {
	for _, test := range []struct {
		value string
		exp   uint16
	}{
		{"row", bytecode.GridAutoFlowRow},
		{"column", bytecode.GridAutoFlowColumn},
		{"row dense", bytecode.GridAutoFlowRowDense},
		{"column dense", bytecode.GridAutoFlowColumnDense},
		{"dense", bytecode.GridAutoFlowRowDense},
	} {
		tu.AssertEqual(t, compile(t, "grid-auto-flow", test.value, false),
			[]uint32{opv(bytecode.PropGridAutoFlow, 0, test.exp)})
	}
	compileErr(t, "grid-auto-flow", "diagonal")
}

func TestCustomProperties(t *testing.T) {
	c := &Context{}
	table := bytecode.NewStringTable()
	block := &Block{Style: bytecode.NewStyle(table)}
	err := c.ParseDeclaration(Declaration{Name: "--main-color", Value: Tokenize("red")}, block)
	tu.AssertNoErr(t, err)

	words := block.Style.Words()
	tu.AssertEqual(t, words[0], opv(bytecode.PropCustom, 0, bytecode.CustomSet))
	name, err := table.Get(words[1])
	tu.AssertNoErr(t, err)
	tu.AssertEqual(t, name, "--main-color")
	value, err := table.Get(words[2])
	tu.AssertNoErr(t, err)
	tu.AssertEqual(t, value, "red")
}

func TestVarIsDeferred(t *testing.T) {
	c := &Context{}
	block := &Block{Style: bytecode.NewStyle(bytecode.NewStringTable())}
	err := c.ParseDeclaration(Declaration{Name: "color", Value: Tokenize("var(--main-color)")}, block)
	tu.AssertNoErr(t, err)

	tu.AssertEqual(t, block.Style.Len(), 0)
	tu.AssertEqual(t, len(block.Deferred), 1)
	tu.AssertEqual(t, block.Deferred[0].Prop, bytecode.PropColor)
}

func TestParseBlockDropsInvalid(t *testing.T) {
	logs := tu.CaptureLogs(t)

	c := &Context{}
	decls := []Declaration{
		{Name: "color", Value: Tokenize("red")},
		{Name: "width", Value: Tokenize("fast")},
		{Name: "display", Value: Tokenize("block")},
	}
	block, err := c.ParseBlock(decls, bytecode.NewStringTable())
	if err == nil {
		t.Fatal("expected aggregated parse errors")
	}

	tu.AssertEqual(t, block.Style.Words(), []uint32{
		opv(bytecode.PropColor, 0, bytecode.ColorSet), 0xffff0000,
		opv(bytecode.PropDisplay, 0, bytecode.DisplayBlock),
	})
	tu.AssertEqual(t, logs.Len(), 1)
}

func TestParseDeclarationList(t *testing.T) {
	decls := ParseDeclarationList("color: red; width: 10px !important; --x: 1fr")
	tu.AssertEqual(t, len(decls), 3)
	tu.AssertEqual(t, decls[0].Name, "color")
	tu.AssertEqual(t, decls[0].Important, false)
	tu.AssertEqual(t, decls[1].Name, "width")
	tu.AssertEqual(t, decls[1].Important, true)
	tu.AssertEqual(t, decls[2].Name, "--x")
}
