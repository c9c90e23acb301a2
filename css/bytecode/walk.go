package bytecode

import (
	"fmt"

	"github.com/tilford/csscade"
	"github.com/tilford/csscade/css/fixed"
)

// OperandWords returns the number of operand words following the OPV
// at words[i]. It is the authoritative description of every record
// shape ; cascade decoders must consume exactly this many words.
func OperandWords(words []uint32, i int) (int, error) {
	if i >= len(words) {
		return 0, fmt.Errorf("opv offset %d out of range: %w", i, csscade.ErrBadParm)
	}
	opv := words[i]
	if HasFlagValue(opv) {
		return 0, nil
	}

	switch Opcode(opv) {
	case PropColor, PropBackgroundColor:
		if Value(opv) == ColorSet {
			return 1, nil
		}
		return 0, nil

	case PropBackgroundImage:
		switch Value(opv) {
		case BackgroundImageURI:
			return 1, nil
		case BackgroundImageLinearGradient, BackgroundImageRadialGradient:
			// direction/shape word, stop count word, then two words
			// per stop
			if i+2 >= len(words) {
				return 0, fmt.Errorf("truncated gradient record: %w", csscade.ErrInvalid)
			}
			return 2 + 2*int(words[i+2]), nil
		}
		return 0, nil

	case PropWidth, PropHeight, PropMinWidth, PropMinHeight,
		PropMaxWidth, PropMaxHeight,
		PropMarginTop, PropMarginRight, PropMarginBottom, PropMarginLeft,
		PropPaddingTop, PropPaddingRight, PropPaddingBottom, PropPaddingLeft:
		if Value(opv) == LengthSet {
			return 2, nil
		}
		return 0, nil

	case PropFlexBasis:
		if Value(opv) == FlexBasisSet {
			return 2, nil
		}
		return 0, nil

	case PropOpacity, PropFlexGrow, PropFlexShrink:
		return 1, nil

	case PropZIndex:
		if Value(opv) == ZIndexSet {
			return 1, nil
		}
		return 0, nil

	case PropLineHeight:
		switch Value(opv) {
		case LineHeightNumber:
			return 1, nil
		case LineHeightDimension:
			return 2, nil
		}
		return 0, nil

	case PropGridTemplateColumns, PropGridTemplateRows:
		if Value(opv) != GridTemplateSet {
			return 0, nil
		}
		if i+1 >= len(words) {
			return 0, fmt.Errorf("truncated track list record: %w", csscade.ErrInvalid)
		}
		n := int(words[i+1])
		j := i + 2
		for t := 0; t < n; t++ {
			if j+1 >= len(words) {
				return 0, fmt.Errorf("truncated track list record: %w", csscade.ErrInvalid)
			}
			if Unit(words[j+1]) == UnitMinmax {
				j += 6
			} else {
				j += 2
			}
		}
		return j - i - 1, nil

	case PropGridRowStart, PropGridRowEnd, PropGridColumnStart, PropGridColumnEnd:
		if Value(opv) == GridLineAuto {
			return 0, nil
		}
		return 1, nil

	case PropDisplay, PropFloat, PropPosition, PropVisibility, PropOverflow,
		PropGridAutoFlow:
		return 0, nil

	case PropCustom:
		return 2, nil
	}

	return 0, fmt.Errorf("unknown property %d in bytecode: %w", Opcode(opv), csscade.ErrInvalid)
}

// MarkImportant sets the !important flag on every OPV word appended
// after the checkpoint. Declaration parsers emit flags-clear records ;
// importance is a suffix of the declaration and fixed up afterwards.
func MarkImportant(s *Style, checkpoint int) error {
	words := s.words
	for i := checkpoint; i < len(words); {
		words[i] |= uint32(FlagImportant) << flagsShift
		n, err := OperandWords(words, i)
		if err != nil {
			return err
		}
		i += 1 + n
	}
	return nil
}

var propertyNames = map[Property]string{
	PropColor:               "color",
	PropBackgroundColor:     "background-color",
	PropBackgroundImage:     "background-image",
	PropDisplay:             "display",
	PropFloat:               "float",
	PropPosition:            "position",
	PropVisibility:          "visibility",
	PropOverflow:            "overflow",
	PropWidth:               "width",
	PropHeight:              "height",
	PropMinWidth:            "min-width",
	PropMinHeight:           "min-height",
	PropMaxWidth:            "max-width",
	PropMaxHeight:           "max-height",
	PropMarginTop:           "margin-top",
	PropMarginRight:         "margin-right",
	PropMarginBottom:        "margin-bottom",
	PropMarginLeft:          "margin-left",
	PropPaddingTop:          "padding-top",
	PropPaddingRight:        "padding-right",
	PropPaddingBottom:       "padding-bottom",
	PropPaddingLeft:         "padding-left",
	PropOpacity:             "opacity",
	PropZIndex:              "z-index",
	PropLineHeight:          "line-height",
	PropFlexBasis:           "flex-basis",
	PropFlexGrow:            "flex-grow",
	PropFlexShrink:          "flex-shrink",
	PropGridTemplateColumns: "grid-template-columns",
	PropGridTemplateRows:    "grid-template-rows",
	PropGridRowStart:        "grid-row-start",
	PropGridRowEnd:          "grid-row-end",
	PropGridColumnStart:     "grid-column-start",
	PropGridColumnEnd:       "grid-column-end",
	PropGridAutoFlow:        "grid-auto-flow",
	PropCustom:              "--custom",
}

func (p Property) String() string {
	if s, ok := propertyNames[p]; ok {
		return s
	}
	return fmt.Sprintf("property(%d)", uint16(p))
}

// Disassemble renders the buffer one record per line, for debugging.
func Disassemble(s *Style) ([]string, error) {
	var out []string
	words := s.words
	for i := 0; i < len(words); {
		opv := words[i]
		n, err := OperandWords(words, i)
		if err != nil {
			return out, err
		}
		if i+1+n > len(words) {
			return out, fmt.Errorf("record at word %d overruns buffer: %w", i, csscade.ErrInvalid)
		}

		line := fmt.Sprintf("%04d %-22s", i, Opcode(opv))
		switch {
		case IsInherit(opv):
			line += " inherit"
		case FlagValue(opv) == FlagValueUnset:
			line += " unset"
		case FlagValue(opv) == FlagValueRevert:
			line += " revert"
		default:
			line += fmt.Sprintf(" v=%d", Value(opv))
			for _, w := range words[i+1 : i+1+n] {
				line += fmt.Sprintf(" %#x", w)
			}
		}
		if IsImportant(opv) {
			line += " !important"
		}
		out = append(out, line)
		i += 1 + n
	}
	return out, nil
}

// FixedWord reinterprets an operand word as a fixed point value.
func FixedWord(w uint32) fixed.Fixed { return fixed.Fixed(int32(w)) }

// WordFromFixed encodes a fixed point value as an operand word.
func WordFromFixed(f fixed.Fixed) uint32 { return uint32(int32(f)) }
