package selectengine

import (
	"fmt"

	"github.com/tilford/csscade"
	"github.com/tilford/csscade/css/bytecode"
	"github.com/tilford/csscade/css/fixed"
)

// decodeRecord decodes the operands of one non-meta record and, when
// the declaration outranks the slot's claim, commits the value. The
// operands are always consumed in full so the cursor lands on the next
// record whether the declaration wins or not.
func (st *cascade) decodeRecord(r *bytecode.Reader, opv uint32, rank uint8) error {
	prop := bytecode.Opcode(opv)
	value := bytecode.Value(opv)

	commit := func(assign func(*ComputedStyle)) {
		if st.outranksExisting(prop, rank) {
			assign(st.style)
			st.claim(prop, rank, srcValue)
		}
	}

	switch prop {
	case bytecode.PropColor, bytecode.PropBackgroundColor:
		col, err := decodeColour(r, value)
		if err != nil {
			return err
		}
		commit(func(s *ComputedStyle) {
			if prop == bytecode.PropColor {
				s.Color = col
			} else {
				s.BackgroundColor = col
			}
		})

	case bytecode.PropBackgroundImage:
		bg, err := decodeBackground(r, value)
		if err != nil {
			return err
		}
		commit(func(s *ComputedStyle) { s.BackgroundImage = bg })

	case bytecode.PropDisplay:
		commit(func(s *ComputedStyle) { s.Display = value })
	case bytecode.PropFloat:
		commit(func(s *ComputedStyle) { s.Float = value })
	case bytecode.PropPosition:
		commit(func(s *ComputedStyle) { s.Position = value })
	case bytecode.PropVisibility:
		commit(func(s *ComputedStyle) { s.Visibility = value })
	case bytecode.PropOverflow:
		commit(func(s *ComputedStyle) { s.Overflow = value })
	case bytecode.PropGridAutoFlow:
		commit(func(s *ComputedStyle) { s.GridAutoFlow = value })

	case bytecode.PropWidth, bytecode.PropHeight,
		bytecode.PropMinWidth, bytecode.PropMinHeight,
		bytecode.PropMaxWidth, bytecode.PropMaxHeight,
		bytecode.PropMarginTop, bytecode.PropMarginRight,
		bytecode.PropMarginBottom, bytecode.PropMarginLeft,
		bytecode.PropPaddingTop, bytecode.PropPaddingRight,
		bytecode.PropPaddingBottom, bytecode.PropPaddingLeft:
		length, err := decodeLength(r, value)
		if err != nil {
			return err
		}
		commit(func(s *ComputedStyle) { *lengthSlot(s, prop) = length })

	case bytecode.PropOpacity:
		w, err := r.Next()
		if err != nil {
			return err
		}
		commit(func(s *ComputedStyle) { s.Opacity = bytecode.FixedWord(w) })

	case bytecode.PropFlexGrow, bytecode.PropFlexShrink:
		w, err := r.Next()
		if err != nil {
			return err
		}
		commit(func(s *ComputedStyle) {
			if prop == bytecode.PropFlexGrow {
				s.FlexGrow = bytecode.FixedWord(w)
			} else {
				s.FlexShrink = bytecode.FixedWord(w)
			}
		})

	case bytecode.PropZIndex:
		z := ZIndex{Auto: true}
		if value == bytecode.ZIndexSet {
			w, err := r.Next()
			if err != nil {
				return err
			}
			z = ZIndex{Value: int32(w)}
		}
		commit(func(s *ComputedStyle) { s.ZIndex = z })

	case bytecode.PropLineHeight:
		lh, err := decodeLineHeight(r, value)
		if err != nil {
			return err
		}
		commit(func(s *ComputedStyle) { s.LineHeight = lh })

	case bytecode.PropFlexBasis:
		fb, err := decodeFlexBasis(r, value)
		if err != nil {
			return err
		}
		commit(func(s *ComputedStyle) { s.FlexBasis = fb })

	case bytecode.PropGridTemplateColumns, bytecode.PropGridTemplateRows:
		tracks, err := decodeTrackList(r, value)
		if err != nil {
			return err
		}
		commit(func(s *ComputedStyle) {
			if prop == bytecode.PropGridTemplateColumns {
				s.GridTemplateColumns = tracks
			} else {
				s.GridTemplateRows = tracks
			}
		})

	case bytecode.PropGridRowStart, bytecode.PropGridRowEnd,
		bytecode.PropGridColumnStart, bytecode.PropGridColumnEnd:
		line, err := decodeGridLine(r, value)
		if err != nil {
			return err
		}
		commit(func(s *ComputedStyle) { *gridLineSlot(s, prop) = line })

	default:
		return fmt.Errorf("no decoder for property %s: %w", prop, csscade.ErrInvalid)
	}
	return nil
}

func lengthSlot(s *ComputedStyle, prop bytecode.Property) *Length {
	switch prop {
	case bytecode.PropWidth:
		return &s.Width
	case bytecode.PropHeight:
		return &s.Height
	case bytecode.PropMinWidth:
		return &s.MinWidth
	case bytecode.PropMinHeight:
		return &s.MinHeight
	case bytecode.PropMaxWidth:
		return &s.MaxWidth
	case bytecode.PropMaxHeight:
		return &s.MaxHeight
	case bytecode.PropMarginTop:
		return &s.MarginTop
	case bytecode.PropMarginRight:
		return &s.MarginRight
	case bytecode.PropMarginBottom:
		return &s.MarginBottom
	case bytecode.PropMarginLeft:
		return &s.MarginLeft
	case bytecode.PropPaddingTop:
		return &s.PaddingTop
	case bytecode.PropPaddingRight:
		return &s.PaddingRight
	case bytecode.PropPaddingBottom:
		return &s.PaddingBottom
	default:
		return &s.PaddingLeft
	}
}

func gridLineSlot(s *ComputedStyle, prop bytecode.Property) *GridLine {
	switch prop {
	case bytecode.PropGridRowStart:
		return &s.GridRowStart
	case bytecode.PropGridRowEnd:
		return &s.GridRowEnd
	case bytecode.PropGridColumnStart:
		return &s.GridColumnStart
	default:
		return &s.GridColumnEnd
	}
}

func decodeColour(r *bytecode.Reader, value uint16) (Colour, error) {
	switch value {
	case bytecode.ColorTransparent:
		return Colour{Kind: ColourTransparent}, nil
	case bytecode.ColorCurrentColor:
		return Colour{Kind: ColourCurrent}, nil
	}
	w, err := r.Next()
	if err != nil {
		return Colour{}, err
	}
	return Colour{Kind: ColourRGBA, ARGB: w}, nil
}

func decodeLength(r *bytecode.Reader, value uint16) (Length, error) {
	switch value {
	case bytecode.LengthAuto:
		return Length{Kind: LengthAuto}, nil
	case bytecode.LengthNone:
		return Length{Kind: LengthNone}, nil
	}
	val, unit, err := decodeValueUnit(r)
	if err != nil {
		return Length{}, err
	}
	return Length{Kind: LengthValue, Value: val, Unit: unit}, nil
}

func decodeLineHeight(r *bytecode.Reader, value uint16) (LineHeight, error) {
	switch value {
	case bytecode.LineHeightNormal:
		return LineHeight{Kind: LineHeightNormal}, nil
	case bytecode.LineHeightNumber:
		w, err := r.Next()
		if err != nil {
			return LineHeight{}, err
		}
		return LineHeight{Kind: LineHeightNumber, Value: bytecode.FixedWord(w)}, nil
	}
	val, unit, err := decodeValueUnit(r)
	if err != nil {
		return LineHeight{}, err
	}
	return LineHeight{Kind: LineHeightDimension, Value: val, Unit: unit}, nil
}

func decodeFlexBasis(r *bytecode.Reader, value uint16) (FlexBasis, error) {
	switch value {
	case bytecode.FlexBasisAuto:
		return FlexBasis{Kind: FlexBasisAuto}, nil
	case bytecode.FlexBasisContent:
		return FlexBasis{Kind: FlexBasisContent}, nil
	}
	val, unit, err := decodeValueUnit(r)
	if err != nil {
		return FlexBasis{}, err
	}
	return FlexBasis{Kind: FlexBasisValue, Value: val, Unit: unit}, nil
}

func decodeValueUnit(r *bytecode.Reader) (fixed.Fixed, bytecode.Unit, error) {
	v, err := r.Next()
	if err != nil {
		return 0, 0, err
	}
	u, err := r.Next()
	if err != nil {
		return 0, 0, err
	}
	return bytecode.FixedWord(v), bytecode.Unit(u), nil
}
