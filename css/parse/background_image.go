package parse

import (
	"fmt"
	"strings"

	"github.com/tilford/csscade"
	"github.com/tilford/csscade/css/bytecode"
	"github.com/tilford/csscade/css/fixed"
)

// gradientStop is one parsed colour stop. An offset of autoOffset
// marks a stop whose position is distributed after parsing.
type gradientStop struct {
	colour uint32
	offset fixed.Fixed
}

var autoOffset = fixed.FromInt(-1)

// parseBackgroundImage accepts none, url(), linear-gradient() or
// radial-gradient().
func parseBackgroundImage(c *Context, v Vector, ctx *int, result *bytecode.Style) error {
	tok := v.Peek(*ctx)
	if tok == nil {
		return csscade.ErrInvalid
	}
	switch {
	case tok.IsIdent("none"):
		v.Iterate(ctx)
		return result.AppendOPV(bytecode.PropBackgroundImage, 0, bytecode.BackgroundImageNone)
	case tok.Type == TokenURI:
		v.Iterate(ctx)
		uri, err := c.resolveURL(tok.Value)
		if err != nil {
			return fmt.Errorf("resolving %q: %w", tok.Value, err)
		}
		if err := result.AppendOPV(bytecode.PropBackgroundImage, 0, bytecode.BackgroundImageURI); err != nil {
			return err
		}
		return result.Append(result.Strings().Add(uri))
	case tok.IsFunction("linear-gradient"):
		v.Iterate(ctx)
		return parseLinearGradient(v, ctx, result)
	case tok.IsFunction("radial-gradient"):
		v.Iterate(ctx)
		return parseRadialGradient(v, ctx, result)
	}
	return csscade.ErrInvalid
}

// parseLinearGradient parses the argument list of linear-gradient(),
// the function token already being consumed. The direction is an
// optional leading angle or "to <side>" keyword, followed by a comma ;
// it defaults to bottom. An angle is snapped to the nearest of the
// four cardinal directions.
func parseLinearGradient(v Vector, ctx *int, result *bytecode.Style) error {
	direction := bytecode.GradientToBottom
	hasDirection := false

	v.ConsumeWhitespace(ctx)
	checkpoint := *ctx

	if tok := v.Peek(*ctx); tok != nil && tok.Type == TokenDimension {
		if deg, ok := parseAngleDegrees(tok.Value); ok {
			direction = snapAngle(deg)
			hasDirection = true
			v.Iterate(ctx)
			v.ConsumeWhitespace(ctx)
			if next := v.Iterate(ctx); next == nil || !next.IsChar(',') {
				return csscade.ErrInvalid
			}
			v.ConsumeWhitespace(ctx)
		}
	}

	if !hasDirection {
		if dir, err := parseGradientDirection(v, ctx); err == nil {
			direction = dir
			hasDirection = true
			v.ConsumeWhitespace(ctx)
			if next := v.Iterate(ctx); next == nil || !next.IsChar(',') {
				return csscade.ErrInvalid
			}
			v.ConsumeWhitespace(ctx)
		} else {
			*ctx = checkpoint
		}
	}

	var stops []gradientStop
	for len(stops) < bytecode.MaxGradientStops {
		v.ConsumeWhitespace(ctx)

		col, err := parseColourSpecifier(v, ctx)
		if err != nil {
			return err
		}
		stop := gradientStop{colour: gradientColour(col), offset: autoOffset}

		v.ConsumeWhitespace(ctx)
		if tok := v.Peek(*ctx); tok != nil && tok.Type == TokenPercentage {
			off, consumed := fixed.Parse(tok.Value, false)
			if consumed != len(tok.Value) {
				return csscade.ErrInvalid
			}
			stop.offset = off
			v.Iterate(ctx)
			v.ConsumeWhitespace(ctx)
		}
		stops = append(stops, stop)

		tok := v.Peek(*ctx)
		switch {
		case tok == nil:
			return csscade.ErrInvalid
		case tok.IsChar(')'):
			v.Iterate(ctx)
			return appendGradient(result, bytecode.BackgroundImageLinearGradient, direction, stops)
		case tok.IsChar(','):
			v.Iterate(ctx)
		default:
			return csscade.ErrInvalid
		}
	}
	return csscade.ErrInvalid
}

// parseRadialGradient parses the argument list of radial-gradient().
// The shape keyword is optional and defaults to circle. Unlike the
// linear form, a gradient cut short by end of input is accepted with
// the stops seen so far.
func parseRadialGradient(v Vector, ctx *int, result *bytecode.Style) error {
	shape := bytecode.RadialShapeCircle

	v.ConsumeWhitespace(ctx)
	if tok := v.Peek(*ctx); tok != nil && tok.Type == TokenIdent {
		switch {
		case tok.IsIdent("circle"):
			shape = bytecode.RadialShapeCircle
			v.Iterate(ctx)
		case tok.IsIdent("ellipse"):
			shape = bytecode.RadialShapeEllipse
			v.Iterate(ctx)
		}
		v.ConsumeWhitespace(ctx)
		// A comma after the shape is optional.
		if tok := v.Peek(*ctx); tok != nil && tok.IsChar(',') {
			v.Iterate(ctx)
			v.ConsumeWhitespace(ctx)
		}
	}

	var stops []gradientStop
	for len(stops) < bytecode.MaxGradientStops {
		v.ConsumeWhitespace(ctx)
		if v.Peek(*ctx) == nil {
			break
		}

		col, err := parseColourSpecifier(v, ctx)
		if err != nil {
			return err
		}
		stop := gradientStop{colour: gradientColour(col), offset: autoOffset}

		v.ConsumeWhitespace(ctx)
		if tok := v.Peek(*ctx); tok != nil && tok.Type == TokenPercentage {
			off, consumed := fixed.Parse(tok.Value, false)
			if consumed != len(tok.Value) {
				return csscade.ErrInvalid
			}
			stop.offset = off
			v.Iterate(ctx)
			v.ConsumeWhitespace(ctx)
		}
		stops = append(stops, stop)

		tok := v.Peek(*ctx)
		switch {
		case tok == nil:
			return csscade.ErrInvalid
		case tok.IsChar(')'):
			v.Iterate(ctx)
			return appendGradient(result, bytecode.BackgroundImageRadialGradient, shape, stops)
		case tok.IsChar(','):
			v.Iterate(ctx)
		default:
			return csscade.ErrInvalid
		}
	}
	return appendGradient(result, bytecode.BackgroundImageRadialGradient, shape, stops)
}

// parseGradientDirection reads "to top|bottom|left|right".
func parseGradientDirection(v Vector, ctx *int) (uint32, error) {
	tok := v.Peek(*ctx)
	if tok == nil || !tok.IsIdent("to") {
		return 0, csscade.ErrInvalid
	}
	v.Iterate(ctx)
	v.ConsumeWhitespace(ctx)

	tok = v.Iterate(ctx)
	if tok == nil || tok.Type != TokenIdent {
		return 0, csscade.ErrInvalid
	}
	switch strings.ToLower(tok.Value) {
	case "top":
		return bytecode.GradientToTop, nil
	case "bottom":
		return bytecode.GradientToBottom, nil
	case "left":
		return bytecode.GradientToLeft, nil
	case "right":
		return bytecode.GradientToRight, nil
	}
	return 0, csscade.ErrInvalid
}

// parseAngleDegrees recognises a dimension with a deg suffix and
// returns the whole degrees.
func parseAngleDegrees(value string) (int, bool) {
	if len(value) <= 3 || !strings.EqualFold(value[len(value)-3:], "deg") {
		return 0, false
	}
	val, consumed := fixed.Parse(value[:len(value)-3], false)
	if consumed == 0 {
		return 0, false
	}
	return val.ToInt(), true
}

// snapAngle maps an angle in degrees to the nearest cardinal gradient
// direction. 0deg points up, angles grow clockwise.
func snapAngle(deg int) uint32 {
	deg = ((deg % 360) + 360) % 360
	switch {
	case deg >= 315 || deg < 45:
		return bytecode.GradientToTop
	case deg < 135:
		return bytecode.GradientToRight
	case deg < 225:
		return bytecode.GradientToBottom
	default:
		return bytecode.GradientToLeft
	}
}

// gradientColour flattens a colour specifier for gradient storage ;
// the keyword forms have no dedicated encoding inside a gradient.
func gradientColour(col colourValue) uint32 {
	switch col.op {
	case bytecode.ColorTransparent:
		return 0
	case bytecode.ColorCurrentColor:
		// Stored as opaque black ; gradients do not track the
		// current colour.
		return 0xff000000
	}
	return col.argb
}

// appendGradient distributes the automatic stop offsets and writes the
// gradient record. Stops without an explicit position are spread
// evenly between 0% and 100% by their index.
func appendGradient(result *bytecode.Style, op uint16, directionOrShape uint32, stops []gradientStop) error {
	n := len(stops)
	for i := range stops {
		if stops[i].offset != autoOffset {
			continue
		}
		if n == 1 {
			stops[i].offset = 0
			continue
		}
		stops[i].offset = fixed.Div(fixed.FromInt(i*100), fixed.FromInt(n-1))
	}

	if err := result.AppendOPV(bytecode.PropBackgroundImage, 0, op); err != nil {
		return err
	}
	if err := result.Append(directionOrShape); err != nil {
		return err
	}
	if err := result.Append(uint32(n)); err != nil {
		return err
	}
	for _, s := range stops {
		if err := result.Append(s.colour); err != nil {
			return err
		}
		if err := result.Append(bytecode.WordFromFixed(s.offset)); err != nil {
			return err
		}
	}
	return nil
}
