// Package styler drives the full pipeline : stylesheets are compiled
// to bytecode once, then matched against an HTML document and cascaded
// element by element in tree order.
package styler

import (
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/tdewolff/parse/v2"
	tcss "github.com/tdewolff/parse/v2/css"
	"golang.org/x/net/html"

	"github.com/tilford/csscade/css/bytecode"
	cssparse "github.com/tilford/csscade/css/parse"
	"github.com/tilford/csscade/css/selectengine"
	"github.com/tilford/csscade/logger"
)

// Rule is one compiled ruleset : the parsed selector group and the
// bytecode of its declaration block.
type Rule struct {
	SelectorText string
	Selectors    []cascadia.Sel
	Block        *cssparse.Block
}

// Stylesheet is a compiled stylesheet with its cascade origin.
type Stylesheet struct {
	Origin  selectengine.Origin
	Rules   []Rule
	Strings *bytecode.StringTable
}

// ParseStylesheet compiles CSS source into bytecode rules. Rules whose
// selectors do not parse, and declarations that do not compile, are
// dropped with a warning, per the CSS error recovery model. At-rules
// are not interpreted.
func ParseStylesheet(css string, origin selectengine.Origin, ctx *cssparse.Context) *Stylesheet {
	if ctx == nil {
		ctx = &cssparse.Context{}
	}
	sheet := &Stylesheet{Origin: origin, Strings: bytecode.NewStringTable()}

	p := tcss.NewParser(parse.NewInputString(css), false)
	var (
		selParts []string
		selector string
		decls    []cssparse.Declaration
		inRule   bool
		atDepth  int
	)

	flush := func() {
		if !inRule {
			return
		}
		inRule = false
		if rule, ok := sheet.compileRule(ctx, selector, decls); ok {
			sheet.Rules = append(sheet.Rules, rule)
		}
		decls = nil
	}

	for {
		gt, _, data := p.Next()
		switch gt {
		case tcss.ErrorGrammar:
			flush()
			return sheet
		case tcss.BeginAtRuleGrammar:
			atDepth++
		case tcss.EndAtRuleGrammar:
			if atDepth > 0 {
				atDepth--
			}
		case tcss.QualifiedRuleGrammar:
			// one selector of a comma separated group ; the last one
			// arrives with the ruleset itself
			if atDepth == 0 {
				selParts = append(selParts, valuesText(p.Values()))
			}
		case tcss.BeginRulesetGrammar:
			if atDepth == 0 {
				inRule = true
				selParts = append(selParts, valuesText(p.Values()))
				selector = strings.Join(selParts, ", ")
				selParts = nil
			} else {
				selParts = nil
			}
		case tcss.EndRulesetGrammar:
			flush()
		case tcss.DeclarationGrammar, tcss.CustomPropertyGrammar:
			if inRule {
				decls = append(decls, buildDecl(string(data), p.Values()))
			}
		}
	}
}

func (s *Stylesheet) compileRule(ctx *cssparse.Context, selector string, decls []cssparse.Declaration) (Rule, bool) {
	sels, err := cascadia.ParseGroup(selector)
	if err != nil {
		logger.Warning.Warnf("ignored rule with unsupported selector %q: %v", selector, err)
		return Rule{}, false
	}

	block, err := ctx.ParseBlock(decls, s.Strings)
	if err != nil {
		logger.Warning.Warnf("in rule %q: %v", selector, err)
	}
	if block.Style.Len() == 0 && len(block.Deferred) == 0 {
		return Rule{}, false
	}
	return Rule{SelectorText: selector, Selectors: sels, Block: block}, true
}

func valuesText(values []tcss.Token) string {
	var sb strings.Builder
	for _, v := range values {
		sb.Write(v.Data)
	}
	return strings.TrimSpace(sb.String())
}

func buildDecl(name string, values []tcss.Token) cssparse.Declaration {
	var sb strings.Builder
	for _, v := range values {
		sb.Write(v.Data)
	}
	return cssparse.ParseDeclarationValue(name, sb.String())
}

// styleAttrSpecificity ranks inline style declarations above any
// selector based rule of the same origin.
var styleAttrSpecificity = cascadia.Specificity{1 << 20, 0, 0}

// Styler matches compiled stylesheets against a document and resolves
// computed styles.
type Styler struct {
	engine *selectengine.Engine
	ctx    *cssparse.Context
	sheets []*Stylesheet
}

func New(ctx *cssparse.Context) *Styler {
	if ctx == nil {
		ctx = &cssparse.Context{}
	}
	return &Styler{engine: selectengine.NewEngine(ctx), ctx: ctx}
}

// AddSheet appends a stylesheet. Within an origin, sheets cascade in
// the order they were added.
func (s *Styler) AddSheet(sheet *Stylesheet) {
	s.sheets = append(s.sheets, sheet)
}

// matchedRules collects and sorts every rule matching the element,
// including its style attribute.
func (s *Styler) matchedRules(n *html.Node) []selectengine.MatchedRule {
	var out []selectengine.MatchedRule
	order := 0
	for _, sheet := range s.sheets {
		for _, rule := range sheet.Rules {
			order++
			for _, sel := range rule.Selectors {
				if sel.Match(n) {
					out = append(out, selectengine.MatchedRule{
						Block:       rule.Block,
						Origin:      sheet.Origin,
						Specificity: sel.Specificity(),
						Order:       order,
					})
					break
				}
			}
		}
	}

	if attr := attrValue(n, "style"); attr != "" {
		block, err := s.ctx.ParseBlock(cssparse.ParseDeclarationList(attr), bytecode.NewStringTable())
		if err != nil {
			logger.Warning.Warnf("in style attribute of <%s>: %v", n.Data, err)
		}
		if block.Style.Len() > 0 || len(block.Deferred) > 0 {
			out = append(out, selectengine.MatchedRule{
				Block:       block,
				Origin:      selectengine.OriginAuthor,
				Specificity: styleAttrSpecificity,
				Order:       order + 1,
			})
		}
	}

	selectengine.SortRules(out)
	return out
}

// StyleDocument resolves the computed style of every element in tree
// order, composing each parent into its children.
func (s *Styler) StyleDocument(doc *html.Node) (map[*html.Node]*selectengine.ComputedStyle, error) {
	styles := make(map[*html.Node]*selectengine.ComputedStyle)
	logger.Progress.Infof("styling document with %d stylesheets", len(s.sheets))

	var walk func(n *html.Node, parent *selectengine.ComputedStyle) error
	walk = func(n *html.Node, parent *selectengine.ComputedStyle) error {
		style := parent
		if n.Type == html.ElementNode {
			resolved, err := s.engine.Cascade(s.matchedRules(n), parent)
			if err != nil {
				return fmt.Errorf("styling <%s>: %w", n.Data, err)
			}
			styles[n] = resolved
			style = resolved
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if err := walk(c, style); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(doc, nil); err != nil {
		return nil, err
	}
	return styles, nil
}

func attrValue(n *html.Node, name string) string {
	if n.Type != html.ElementNode {
		return ""
	}
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}
