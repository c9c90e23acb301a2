package styler

import (
	"strings"
	"testing"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/tilford/csscade/css/bytecode"
	"github.com/tilford/csscade/css/fixed"
	"github.com/tilford/csscade/css/selectengine"
	tu "github.com/tilford/csscade/utils/testutils"
)

func parseDoc(t *testing.T, src string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(src))
	tu.AssertNoErr(t, err)
	return doc
}

func query(t *testing.T, doc *html.Node, selector string) *html.Node {
	t.Helper()
	sel, err := cascadia.Parse(selector)
	tu.AssertNoErr(t, err)
	n := cascadia.Query(doc, sel)
	if n == nil {
		t.Fatalf("no node matches %q", selector)
	}
	return n
}

func TestParseStylesheet(t *testing.T) {
	sheet := ParseStylesheet(`
		div { color: red; width: 10px }
		.note, p { display: block }
		@media print { div { color: blue } }
	`, selectengine.OriginAuthor, nil)

	tu.AssertEqual(t, len(sheet.Rules), 2)
	tu.AssertEqual(t, sheet.Rules[0].SelectorText, "div")
	tu.AssertEqual(t, len(sheet.Rules[1].Selectors), 2)
}

func TestParseStylesheetDropsBadRules(t *testing.T) {
	logs := tu.CaptureLogs(t)
	sheet := ParseStylesheet(`
		div { color: nonsense }
		p { color: red }
	`, selectengine.OriginAuthor, nil)

	// the div rule has no surviving declarations
	tu.AssertEqual(t, len(sheet.Rules), 1)
	tu.AssertEqual(t, sheet.Rules[0].SelectorText, "p")
	tu.AssertEqual(t, logs.Len(), 2)
}

func TestStyleDocument(t *testing.T) {
	doc := parseDoc(t, `<html><body>
		<div id="box" class="wide"><span>text</span></div>
		<p style="color: #00ff00">para</p>
	</body></html>`)

	s := New(nil)
	s.AddSheet(ParseStylesheet("div { color: red }", selectengine.OriginUserAgent, nil))
	s.AddSheet(ParseStylesheet(`
		div { width: 10px }
		.wide { width: 80% }
		div { height: 4px }
		p { color: red }
	`, selectengine.OriginAuthor, nil))

	styles, err := s.StyleDocument(doc)
	tu.AssertNoErr(t, err)

	box := styles[query(t, doc, "#box")]
	// class selector outranks the tag selector
	tu.AssertEqual(t, box.Width, selectengine.Length{
		Kind: selectengine.LengthValue, Value: fixed.FromInt(80), Unit: bytecode.UnitPct,
	})
	tu.AssertEqual(t, box.Height, selectengine.Length{
		Kind: selectengine.LengthValue, Value: fixed.FromInt(4), Unit: bytecode.UnitPX,
	})
	// user agent colour survives, nothing overrode it
	tu.AssertEqual(t, box.Color.ARGB, uint32(0xffff0000))

	// the span inherits colour from its parent div but not width
	span := styles[query(t, doc, "span")]
	tu.AssertEqual(t, span.Color.ARGB, uint32(0xffff0000))
	tu.AssertEqual(t, span.Width, selectengine.Length{Kind: selectengine.LengthAuto})

	// the style attribute beats any selector
	para := styles[query(t, doc, "p")]
	tu.AssertEqual(t, para.Color.ARGB, uint32(0xff00ff00))
}

func TestCustomPropertiesAcrossTree(t *testing.T) {
	doc := parseDoc(t, `<html><body><main><em>hi</em></main></body></html>`)

	s := New(nil)
	s.AddSheet(ParseStylesheet(`
		body { --accent: #0000ff }
		em { color: var(--accent) }
	`, selectengine.OriginAuthor, nil))

	styles, err := s.StyleDocument(doc)
	tu.AssertNoErr(t, err)

	em := styles[query(t, doc, "em")]
	tu.AssertEqual(t, em.Color.ARGB, uint32(0xff0000ff))
}
