package selectengine

import (
	"fmt"

	"github.com/tilford/csscade"
	"github.com/tilford/csscade/css/bytecode"
)

// decodeBackground reads the operands of a background-image record.
func decodeBackground(r *bytecode.Reader, value uint16) (Background, error) {
	switch value {
	case bytecode.BackgroundImageNone:
		return Background{Kind: BackgroundNone}, nil

	case bytecode.BackgroundImageURI:
		idx, err := r.Next()
		if err != nil {
			return Background{}, err
		}
		uri, err := r.LookupString(idx)
		if err != nil {
			return Background{}, err
		}
		return Background{Kind: BackgroundURI, URI: uri}, nil

	case bytecode.BackgroundImageLinearGradient, bytecode.BackgroundImageRadialGradient:
		kind := BackgroundLinearGradient
		if value == bytecode.BackgroundImageRadialGradient {
			kind = BackgroundRadialGradient
		}
		direction, err := r.Next()
		if err != nil {
			return Background{}, err
		}
		count, err := r.Next()
		if err != nil {
			return Background{}, err
		}
		if count > bytecode.MaxGradientStops {
			return Background{}, fmt.Errorf("gradient stop count %d out of range: %w", count, csscade.ErrInvalid)
		}
		stops := make([]GradientStop, count)
		for i := range stops {
			colour, err := r.Next()
			if err != nil {
				return Background{}, err
			}
			offset, err := r.Next()
			if err != nil {
				return Background{}, err
			}
			stops[i] = GradientStop{Colour: colour, Offset: bytecode.FixedWord(offset)}
		}
		return Background{Kind: kind, Direction: direction, Stops: stops}, nil
	}

	return Background{}, fmt.Errorf("unknown background-image opcode %d: %w", value, csscade.ErrInvalid)
}
