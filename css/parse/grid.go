package parse

import (
	"github.com/tilford/csscade"
	"github.com/tilford/csscade/css/bytecode"
	"github.com/tilford/csscade/css/fixed"
)

// gridTrack is one parsed track size. A minmax track is marked by
// unit == UnitMinmax, with both bounds carried alongside.
type gridTrack struct {
	value   fixed.Fixed
	unit    bytecode.Unit
	minUnit bytecode.Unit
	maxVal  fixed.Fixed
	maxUnit bytecode.Unit
}

func (t gridTrack) isMinmax() bool { return t.unit == bytecode.UnitMinmax }

// parseTrackSize reads a single track size : a keyword, a minmax()
// function, or a dimension. auto is normalised to 1fr at parse time.
func parseTrackSize(v Vector, ctx *int) (gridTrack, error) {
	tok := v.Peek(*ctx)
	if tok == nil {
		return gridTrack{}, csscade.ErrInvalid
	}

	if tok.Type == TokenIdent {
		switch {
		case tok.IsIdent("auto"):
			v.Iterate(ctx)
			return gridTrack{value: fixed.One, unit: bytecode.UnitFr}, nil
		case tok.IsIdent("min-content"):
			v.Iterate(ctx)
			return gridTrack{unit: bytecode.UnitMinContent}, nil
		case tok.IsIdent("max-content"):
			v.Iterate(ctx)
			return gridTrack{unit: bytecode.UnitMaxContent}, nil
		}
		return gridTrack{}, csscade.ErrInvalid
	}

	if tok.IsFunction("minmax") {
		return parseMinmax(v, ctx)
	}

	val, unit, err := parseUnitSpecifier(v, ctx, bytecode.UnitPX)
	if err != nil {
		return gridTrack{}, err
	}
	return gridTrack{value: val, unit: unit}, nil
}

// parseMinmax reads minmax(min, max). Each bound is a keyword or a
// dimension ; the comma between them is optional.
func parseMinmax(v Vector, ctx *int) (gridTrack, error) {
	entry := *ctx
	v.Iterate(ctx)
	v.ConsumeWhitespace(ctx)

	minVal, minUnit, err := parseMinmaxBound(v, ctx)
	if err != nil {
		*ctx = entry
		return gridTrack{}, err
	}

	v.ConsumeWhitespace(ctx)
	if tok := v.Peek(*ctx); tok != nil && tok.IsChar(',') {
		v.Iterate(ctx)
	}
	v.ConsumeWhitespace(ctx)

	maxVal, maxUnit, err := parseMinmaxBound(v, ctx)
	if err != nil {
		*ctx = entry
		return gridTrack{}, err
	}

	v.ConsumeWhitespace(ctx)
	if tok := v.Iterate(ctx); tok == nil || !tok.IsChar(')') {
		*ctx = entry
		return gridTrack{}, csscade.ErrInvalid
	}

	return gridTrack{
		value:   minVal,
		unit:    bytecode.UnitMinmax,
		minUnit: minUnit,
		maxVal:  maxVal,
		maxUnit: maxUnit,
	}, nil
}

func parseMinmaxBound(v Vector, ctx *int) (fixed.Fixed, bytecode.Unit, error) {
	tok := v.Peek(*ctx)
	if tok == nil {
		return 0, 0, csscade.ErrInvalid
	}
	if tok.Type == TokenIdent {
		switch {
		case tok.IsIdent("min-content"):
			v.Iterate(ctx)
			return 0, bytecode.UnitMinContent, nil
		case tok.IsIdent("max-content"):
			v.Iterate(ctx)
			return 0, bytecode.UnitMaxContent, nil
		case tok.IsIdent("auto"):
			v.Iterate(ctx)
			return fixed.One, bytecode.UnitFr, nil
		}
		return 0, 0, csscade.ErrInvalid
	}
	return parseUnitSpecifier(v, ctx, bytecode.UnitPX)
}

// gridTemplateParser builds the parser shared by grid-template-columns
// and grid-template-rows : none, or a whitespace separated track list
// with repeat() expanded in place. The track loop stops quietly at the
// first token that is not a track ; an empty list is invalid.
func gridTemplateParser(prop bytecode.Property) parseFunc {
	return func(c *Context, v Vector, ctx *int, result *bytecode.Style) error {
		if tok := v.Peek(*ctx); tok != nil && tok.IsIdent("none") {
			v.Iterate(ctx)
			return result.AppendOPV(prop, 0, bytecode.GridTemplateNone)
		}

		var tracks []gridTrack
		for len(tracks) < bytecode.MaxGridTracks {
			v.ConsumeWhitespace(ctx)
			tok := v.Peek(*ctx)
			if tok == nil {
				break
			}

			if tok.IsFunction("repeat") {
				count, track, err := parseRepeat(v, ctx)
				if err != nil {
					break
				}
				for r := 0; r < count && len(tracks) < bytecode.MaxGridTracks; r++ {
					tracks = append(tracks, track)
				}
				continue
			}

			track, err := parseTrackSize(v, ctx)
			if err != nil {
				break
			}
			tracks = append(tracks, track)
		}

		if len(tracks) == 0 {
			return csscade.ErrInvalid
		}
		return appendTrackList(result, prop, tracks)
	}
}

// parseRepeat reads repeat(N, track). The count must be a positive
// integer no larger than the track limit. The cursor is restored on
// failure so the caller can stop the list cleanly.
func parseRepeat(v Vector, ctx *int) (int, gridTrack, error) {
	entry := *ctx
	fail := func() (int, gridTrack, error) {
		*ctx = entry
		return 0, gridTrack{}, csscade.ErrInvalid
	}

	v.Iterate(ctx)
	v.ConsumeWhitespace(ctx)

	tok := v.Peek(*ctx)
	if tok == nil || tok.Type != TokenNumber {
		return fail()
	}
	val, consumed := fixed.Parse(tok.Value, true)
	if consumed != len(tok.Value) {
		return fail()
	}
	count := val.ToInt()
	if count <= 0 || count > bytecode.MaxGridTracks {
		return fail()
	}
	v.Iterate(ctx)

	v.ConsumeWhitespace(ctx)
	if tok := v.Iterate(ctx); tok == nil || !tok.IsChar(',') {
		return fail()
	}
	v.ConsumeWhitespace(ctx)

	track, err := parseTrackSize(v, ctx)
	if err != nil {
		return fail()
	}

	v.ConsumeWhitespace(ctx)
	if tok := v.Iterate(ctx); tok == nil || !tok.IsChar(')') {
		return fail()
	}
	return count, track, nil
}

// appendTrackList writes a GridTemplateSet record : the track count,
// then per track either [value, unit] or the six word minmax form.
func appendTrackList(result *bytecode.Style, prop bytecode.Property, tracks []gridTrack) error {
	if err := result.AppendOPV(prop, 0, bytecode.GridTemplateSet); err != nil {
		return err
	}
	if err := result.Append(uint32(len(tracks))); err != nil {
		return err
	}
	for _, t := range tracks {
		if t.isMinmax() {
			words := []uint32{
				0, uint32(bytecode.UnitMinmax),
				bytecode.WordFromFixed(t.value), uint32(t.minUnit),
				bytecode.WordFromFixed(t.maxVal), uint32(t.maxUnit),
			}
			for _, w := range words {
				if err := result.Append(w); err != nil {
					return err
				}
			}
			continue
		}
		if err := result.Append(bytecode.WordFromFixed(t.value)); err != nil {
			return err
		}
		if err := result.Append(uint32(t.unit)); err != nil {
			return err
		}
	}
	return nil
}

// gridLineValue is a parsed <grid-line> : auto, span N, or a non zero
// line number.
type gridLineValue struct {
	op  uint16
	num fixed.Fixed
}

// parseGridLineValue reads one <grid-line>. A bare span defaults to
// span 1 ; line numbers may be negative but never zero.
func parseGridLineValue(v Vector, ctx *int) (gridLineValue, error) {
	tok := v.Peek(*ctx)
	if tok == nil {
		return gridLineValue{}, csscade.ErrInvalid
	}

	if tok.IsIdent("auto") {
		v.Iterate(ctx)
		return gridLineValue{op: bytecode.GridLineAuto}, nil
	}

	if tok.IsIdent("span") {
		v.Iterate(ctx)
		v.ConsumeWhitespace(ctx)
		count := fixed.One
		if tok := v.Peek(*ctx); tok != nil && tok.Type == TokenNumber {
			val, consumed := fixed.Parse(tok.Value, true)
			if consumed != len(tok.Value) || val <= 0 {
				return gridLineValue{}, csscade.ErrInvalid
			}
			count = val
			v.Iterate(ctx)
		}
		return gridLineValue{op: bytecode.GridLineSpan, num: count}, nil
	}

	if tok.Type == TokenNumber {
		val, consumed := fixed.Parse(tok.Value, true)
		if consumed != len(tok.Value) || val == 0 {
			return gridLineValue{}, csscade.ErrInvalid
		}
		v.Iterate(ctx)
		return gridLineValue{op: bytecode.GridLineSet, num: val}, nil
	}

	return gridLineValue{}, csscade.ErrInvalid
}

func appendGridLine(result *bytecode.Style, prop bytecode.Property, line gridLineValue) error {
	if err := result.AppendOPV(prop, 0, line.op); err != nil {
		return err
	}
	if line.op == bytecode.GridLineSet || line.op == bytecode.GridLineSpan {
		return result.Append(bytecode.WordFromFixed(line.num))
	}
	return nil
}

// gridLineParser builds the parser for the four grid line longhands.
func gridLineParser(prop bytecode.Property) parseFunc {
	return func(c *Context, v Vector, ctx *int, result *bytecode.Style) error {
		line, err := parseGridLineValue(v, ctx)
		if err != nil {
			return err
		}
		return appendGridLine(result, prop, line)
	}
}

// gridShorthandParser builds the grid-row and grid-column parsers :
// "<grid-line> [/ <grid-line>]?", emitting both longhand records. A
// missing second value means auto.
func gridShorthandParser(start, end bytecode.Property) parseFunc {
	return func(c *Context, v Vector, ctx *int, result *bytecode.Style) error {
		startLine, err := parseGridLineValue(v, ctx)
		if err != nil {
			return err
		}

		endLine := gridLineValue{op: bytecode.GridLineAuto}
		v.ConsumeWhitespace(ctx)
		if tok := v.Peek(*ctx); tok != nil && tok.IsChar('/') {
			v.Iterate(ctx)
			v.ConsumeWhitespace(ctx)
			endLine, err = parseGridLineValue(v, ctx)
			if err != nil {
				return err
			}
		}

		if err := appendGridLine(result, start, startLine); err != nil {
			return err
		}
		return appendGridLine(result, end, endLine)
	}
}

// parseGridAutoFlow accepts row, column, dense, row dense and
// column dense. A lone dense means row dense.
func parseGridAutoFlow(c *Context, v Vector, ctx *int, result *bytecode.Style) error {
	tok := v.Peek(*ctx)
	if tok == nil || tok.Type != TokenIdent {
		return csscade.ErrInvalid
	}

	var value uint16
	switch {
	case tok.IsIdent("row"):
		value = bytecode.GridAutoFlowRow
	case tok.IsIdent("column"):
		value = bytecode.GridAutoFlowColumn
	case tok.IsIdent("dense"):
		value = bytecode.GridAutoFlowRowDense
	default:
		return csscade.ErrInvalid
	}
	v.Iterate(ctx)

	v.ConsumeWhitespace(ctx)
	if tok := v.Peek(*ctx); tok != nil && tok.IsIdent("dense") {
		v.Iterate(ctx)
		switch value {
		case bytecode.GridAutoFlowRow:
			value = bytecode.GridAutoFlowRowDense
		case bytecode.GridAutoFlowColumn:
			value = bytecode.GridAutoFlowColumnDense
		}
	}

	return result.AppendOPV(bytecode.PropGridAutoFlow, 0, value)
}
