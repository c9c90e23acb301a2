// Command csscade is a debugging tool for the style pipeline : it can
// disassemble the bytecode compiled from a stylesheet and dump the
// computed style of an element.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/urfave/cli/v3"
	"golang.org/x/net/html"

	"github.com/tilford/csscade/css/bytecode"
	cssparse "github.com/tilford/csscade/css/parse"
	"github.com/tilford/csscade/css/selectengine"
	"github.com/tilford/csscade/html/styler"
	"github.com/tilford/csscade/logger"
	"github.com/tilford/csscade/version"
)

func main() {
	logger.UseDevelopment()

	cmd := &cli.Command{
		Name:    "csscade",
		Usage:   "inspect the CSS bytecode compiler and cascade",
		Version: version.Version,
		Commands: []*cli.Command{
			{
				Name:      "disasm",
				Usage:     "compile a stylesheet and print its bytecode",
				ArgsUsage: "stylesheet.css",
				Action:    runDisasm,
			},
			{
				Name:      "compute",
				Usage:     "print the computed style of the first element matching a selector",
				ArgsUsage: "page.html",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "css",
						Usage: "stylesheet `FILE` applied as author styles",
					},
					&cli.StringFlag{
						Name:  "selector",
						Value: "body",
						Usage: "element to inspect",
					},
				},
				Action: runCompute,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runDisasm(_ context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("missing stylesheet argument")
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	sheet := styler.ParseStylesheet(string(src), selectengine.OriginAuthor, nil)
	for _, rule := range sheet.Rules {
		fmt.Printf("%s {\n", rule.SelectorText)
		lines, err := bytecode.Disassemble(rule.Block.Style)
		if err != nil {
			return fmt.Errorf("rule %q: %w", rule.SelectorText, err)
		}
		for _, l := range lines {
			fmt.Printf("\t%s\n", l)
		}
		for _, d := range rule.Block.Deferred {
			fmt.Printf("\tdeferred %s: %s\n", d.Prop, cssparse.Serialize(d.Tokens))
		}
		fmt.Println("}")
	}
	return nil
}

func runCompute(_ context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("missing html argument")
	}
	page, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	doc, err := html.Parse(strings.NewReader(string(page)))
	if err != nil {
		return err
	}

	s := styler.New(nil)
	if cssPath := cmd.String("css"); cssPath != "" {
		src, err := os.ReadFile(cssPath)
		if err != nil {
			return err
		}
		s.AddSheet(styler.ParseStylesheet(string(src), selectengine.OriginAuthor, nil))
	}

	styles, err := s.StyleDocument(doc)
	if err != nil {
		return err
	}

	sel, err := cascadia.Parse(cmd.String("selector"))
	if err != nil {
		return err
	}
	node := cascadia.Query(doc, sel)
	if node == nil {
		return fmt.Errorf("no element matches %q", cmd.String("selector"))
	}

	dumpStyle(styles[node])
	return nil
}

func dumpStyle(s *selectengine.ComputedStyle) {
	fmt.Printf("color:            %s\n", colourString(s.Color))
	fmt.Printf("background-color: %s\n", colourString(s.BackgroundColor))
	fmt.Printf("background-image: %s\n", backgroundString(s.BackgroundImage))
	fmt.Printf("display:          %d\n", s.Display)
	fmt.Printf("position:         %d\n", s.Position)
	fmt.Printf("width:            %s\n", lengthString(s.Width))
	fmt.Printf("height:           %s\n", lengthString(s.Height))
	fmt.Printf("opacity:          %g\n", s.Opacity.ToFloat())
	if s.ZIndex.Auto {
		fmt.Printf("z-index:          auto\n")
	} else {
		fmt.Printf("z-index:          %d\n", s.ZIndex.Value)
	}
	if len(s.Custom) > 0 {
		fmt.Println("custom properties:")
		for name, value := range s.Custom {
			fmt.Printf("\t%s: %s\n", name, value)
		}
	}
}

func colourString(c selectengine.Colour) string {
	switch c.Kind {
	case selectengine.ColourTransparent:
		return "transparent"
	case selectengine.ColourCurrent:
		return "currentColor"
	}
	return fmt.Sprintf("#%08x", c.ARGB)
}

func lengthString(l selectengine.Length) string {
	switch l.Kind {
	case selectengine.LengthAuto:
		return "auto"
	case selectengine.LengthNone:
		return "none"
	}
	return fmt.Sprintf("%g (unit %#x)", l.Value.ToFloat(), uint32(l.Unit))
}

func backgroundString(b selectengine.Background) string {
	switch b.Kind {
	case selectengine.BackgroundURI:
		return "url(" + b.URI + ")"
	case selectengine.BackgroundLinearGradient:
		return fmt.Sprintf("linear-gradient (direction %d, %d stops)", b.Direction, len(b.Stops))
	case selectengine.BackgroundRadialGradient:
		return fmt.Sprintf("radial-gradient (shape %d, %d stops)", b.Direction, len(b.Stops))
	}
	return "none"
}
