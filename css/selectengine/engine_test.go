package selectengine

import (
	"testing"

	"github.com/andybalholm/cascadia"

	"github.com/tilford/csscade/css/bytecode"
	"github.com/tilford/csscade/css/fixed"
	"github.com/tilford/csscade/css/parse"
	tu "github.com/tilford/csscade/utils/testutils"
)

// rule compiles a declaration list into a matched rule.
func rule(t *testing.T, css string, origin Origin, spec cascadia.Specificity, order int) MatchedRule {
	t.Helper()
	c := &parse.Context{}
	block, err := c.ParseBlock(parse.ParseDeclarationList(css), bytecode.NewStringTable())
	tu.AssertNoErr(t, err)
	return MatchedRule{Block: block, Origin: origin, Specificity: spec, Order: order}
}

func resolve(t *testing.T, parent *ComputedStyle, rules ...MatchedRule) *ComputedStyle {
	t.Helper()
	SortRules(rules)
	style, err := NewEngine(nil).Cascade(rules, parent)
	tu.AssertNoErr(t, err)
	return style
}

func TestCascadeOriginOrder(t *testing.T) {
	style := resolve(t, nil,
		rule(t, "color: red", OriginAuthor, cascadia.Specificity{0, 0, 1}, 0),
		rule(t, "color: blue", OriginUserAgent, cascadia.Specificity{0, 0, 1}, 0),
	)
	tu.AssertEqual(t, style.Color, Colour{Kind: ColourRGBA, ARGB: 0xffff0000})
}

func TestCascadeImportance(t *testing.T) {
	// an important user declaration beats an important author one
	style := resolve(t, nil,
		rule(t, "color: red !important", OriginUser, cascadia.Specificity{0, 0, 1}, 0),
		rule(t, "color: blue !important", OriginAuthor, cascadia.Specificity{1, 0, 0}, 0),
	)
	tu.AssertEqual(t, style.Color.ARGB, uint32(0xffff0000))

	// an important author declaration beats a later normal one
	style = resolve(t, nil,
		rule(t, "width: 10px !important", OriginAuthor, cascadia.Specificity{0, 0, 1}, 0),
		rule(t, "width: 20px", OriginAuthor, cascadia.Specificity{1, 0, 0}, 1),
	)
	tu.AssertEqual(t, style.Width.Value, fixed.FromInt(10))
}

func TestCascadeSpecificityAndOrder(t *testing.T) {
	// higher specificity wins
	style := resolve(t, nil,
		rule(t, "display: block", OriginAuthor, cascadia.Specificity{1, 0, 0}, 0),
		rule(t, "display: flex", OriginAuthor, cascadia.Specificity{0, 0, 1}, 1),
	)
	tu.AssertEqual(t, style.Display, bytecode.DisplayBlock)

	// equal specificity resolves to the later rule
	style = resolve(t, nil,
		rule(t, "display: block", OriginAuthor, cascadia.Specificity{0, 1, 0}, 0),
		rule(t, "display: flex", OriginAuthor, cascadia.Specificity{0, 1, 0}, 1),
	)
	tu.AssertEqual(t, style.Display, bytecode.DisplayFlex)
}

func TestInheritance(t *testing.T) {
	parent := resolve(t, nil,
		rule(t, "color: red; width: 100px; line-height: 2", OriginAuthor, cascadia.Specificity{0, 0, 1}, 0),
	)

	child := resolve(t, parent)
	// color and line-height inherit by default, width does not
	tu.AssertEqual(t, child.Color.ARGB, uint32(0xffff0000))
	tu.AssertEqual(t, child.LineHeight, LineHeight{Kind: LineHeightNumber, Value: fixed.FromInt(2)})
	tu.AssertEqual(t, child.Width, Length{Kind: LengthAuto})

	// explicit inherit pulls a non inherited property down
	child = resolve(t, parent,
		rule(t, "width: inherit", OriginAuthor, cascadia.Specificity{0, 0, 1}, 0),
	)
	tu.AssertEqual(t, child.Width, Length{Kind: LengthValue, Value: fixed.FromInt(100), Unit: bytecode.UnitPX})

	// unset on an inherited property inherits, on others resets
	child = resolve(t, parent,
		rule(t, "color: unset; width: 5px; width: unset", OriginAuthor, cascadia.Specificity{0, 0, 1}, 0),
	)
	tu.AssertEqual(t, child.Color.ARGB, uint32(0xffff0000))
	tu.AssertEqual(t, child.Width, Length{Kind: LengthAuto})
}

func TestLosingDeclarationsKeepCursorSync(t *testing.T) {
	// the user agent gradient loses, but its multi word record must
	// be decoded cleanly so the following declaration still applies
	style := resolve(t, nil,
		rule(t, "background-image: url(x.png)", OriginAuthor, cascadia.Specificity{0, 0, 1}, 0),
		rule(t, "background-image: linear-gradient(to top, red, blue); display: grid",
			OriginUserAgent, cascadia.Specificity{0, 0, 0}, 0),
	)
	tu.AssertEqual(t, style.BackgroundImage, Background{Kind: BackgroundURI, URI: "x.png"})
	tu.AssertEqual(t, style.Display, bytecode.DisplayGrid)
}

func TestComputedSubstructures(t *testing.T) {
	style := resolve(t, nil,
		rule(t, "background-image: linear-gradient(to right, red, blue);"+
			"grid-template-columns: minmax(100px, 1fr) auto;"+
			"grid-row: 2 / span 3", OriginAuthor, cascadia.Specificity{0, 0, 1}, 0),
	)

	tu.AssertEqual(t, style.BackgroundImage, Background{
		Kind:      BackgroundLinearGradient,
		Direction: bytecode.GradientToRight,
		Stops: []GradientStop{
			{Colour: 0xffff0000, Offset: 0},
			{Colour: 0xff0000ff, Offset: fixed.FromInt(100)},
		},
	})

	tu.AssertEqual(t, style.GridTemplateColumns, []GridTrack{
		{Unit: bytecode.UnitMinmax,
			Min: TrackBound{Value: fixed.FromInt(100), Unit: bytecode.UnitPX},
			Max: TrackBound{Value: fixed.One, Unit: bytecode.UnitFr}},
		{Value: fixed.One, Unit: bytecode.UnitFr},
	})

	tu.AssertEqual(t, style.GridRowStart, GridLine{Kind: GridLineNumber, Value: 2})
	tu.AssertEqual(t, style.GridRowEnd, GridLine{Kind: GridLineSpan, Value: 3})
}

func TestCascadeIdempotence(t *testing.T) {
	r := rule(t, "opacity: 0.5; z-index: 7", OriginAuthor, cascadia.Specificity{0, 0, 1}, 0)

	once := resolve(t, nil, r)
	twice := resolve(t, nil, r, r)
	tu.AssertEqual(t, twice, once)
}

func TestCustomPropertyResolution(t *testing.T) {
	style := resolve(t, nil,
		rule(t, "--main: #0000ff; color: var(--main)", OriginAuthor, cascadia.Specificity{0, 0, 1}, 0),
	)
	tu.AssertEqual(t, style.Color, Colour{Kind: ColourRGBA, ARGB: 0xff0000ff})

	// fallback applies when the name is undefined
	style = resolve(t, nil,
		rule(t, "color: var(--missing, red)", OriginAuthor, cascadia.Specificity{0, 0, 1}, 0),
	)
	tu.AssertEqual(t, style.Color.ARGB, uint32(0xffff0000))

	// an unresolvable reference drops the declaration
	logs := tu.CaptureLogs(t)
	style = resolve(t, nil,
		rule(t, "color: var(--missing)", OriginAuthor, cascadia.Specificity{0, 0, 1}, 0),
	)
	tu.AssertEqual(t, style.Color.ARGB, uint32(0xff000000))
	tu.AssertEqual(t, logs.Len(), 1)
}

func TestCustomPropertiesInherit(t *testing.T) {
	parent := resolve(t, nil,
		rule(t, "--a: red; --b: 1px", OriginAuthor, cascadia.Specificity{0, 0, 1}, 0),
	)

	child := resolve(t, parent,
		rule(t, "--b: 2px; color: var(--a)", OriginAuthor, cascadia.Specificity{0, 0, 1}, 0),
	)
	tu.AssertEqual(t, child.Color.ARGB, uint32(0xffff0000))

	b, ok := child.Custom.Get("--b")
	tu.AssertEqual(t, ok, true)
	tu.AssertEqual(t, b, "2px")

	// the parent map is untouched by the child's override
	b, _ = parent.Custom.Get("--b")
	tu.AssertEqual(t, b, "1px")
}

func TestVarCycleIsRejected(t *testing.T) {
	logs := tu.CaptureLogs(t)
	style := resolve(t, nil,
		rule(t, "--a: var(--b); --b: var(--a); color: var(--a)", OriginAuthor, cascadia.Specificity{0, 0, 1}, 0),
	)
	tu.AssertEqual(t, style.Color.ARGB, uint32(0xff000000))
	tu.AssertEqual(t, logs.Len(), 1)
}

func TestCopyIsDeep(t *testing.T) {
	style := resolve(t, nil,
		rule(t, "background-image: linear-gradient(red, blue); grid-template-columns: 1fr 2fr; --x: 1",
			OriginAuthor, cascadia.Specificity{0, 0, 1}, 0),
	)

	dup := style.Copy()
	dup.BackgroundImage.Stops[0].Colour = 0
	dup.GridTemplateColumns[0].Value = 0
	dup.Custom.Set("--x", "2")

	tu.AssertEqual(t, style.BackgroundImage.Stops[0].Colour, uint32(0xffff0000))
	tu.AssertEqual(t, style.GridTemplateColumns[0].Value, fixed.One)
	x, _ := style.Custom.Get("--x")
	tu.AssertEqual(t, x, "1")
}
