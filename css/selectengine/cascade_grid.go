package selectengine

import (
	"fmt"

	"github.com/tilford/csscade"
	"github.com/tilford/csscade/css/bytecode"
)

// decodeTrackList reads a grid-template record, word for word the way
// the parser wrote it : the track count, then per track either a
// simple [value, unit] pair or the six word minmax form.
func decodeTrackList(r *bytecode.Reader, value uint16) ([]GridTrack, error) {
	if value == bytecode.GridTemplateNone {
		return nil, nil
	}

	count, err := r.Next()
	if err != nil {
		return nil, err
	}
	if count == 0 || count > bytecode.MaxGridTracks {
		return nil, fmt.Errorf("track count %d out of range: %w", count, csscade.ErrInvalid)
	}

	tracks := make([]GridTrack, count)
	for i := range tracks {
		v, err := r.Next()
		if err != nil {
			return nil, err
		}
		u, err := r.Next()
		if err != nil {
			return nil, err
		}

		if bytecode.Unit(u) != bytecode.UnitMinmax {
			tracks[i] = GridTrack{Value: bytecode.FixedWord(v), Unit: bytecode.Unit(u)}
			continue
		}

		minV, err := r.Next()
		if err != nil {
			return nil, err
		}
		minU, err := r.Next()
		if err != nil {
			return nil, err
		}
		maxV, err := r.Next()
		if err != nil {
			return nil, err
		}
		maxU, err := r.Next()
		if err != nil {
			return nil, err
		}
		tracks[i] = GridTrack{
			Unit: bytecode.UnitMinmax,
			Min:  TrackBound{Value: bytecode.FixedWord(minV), Unit: bytecode.Unit(minU)},
			Max:  TrackBound{Value: bytecode.FixedWord(maxV), Unit: bytecode.Unit(maxU)},
		}
	}
	return tracks, nil
}

// decodeGridLine reads a grid placement record.
func decodeGridLine(r *bytecode.Reader, value uint16) (GridLine, error) {
	switch value {
	case bytecode.GridLineAuto:
		return GridLine{Kind: GridLineAuto}, nil
	case bytecode.GridLineSet, bytecode.GridLineSpan:
		w, err := r.Next()
		if err != nil {
			return GridLine{}, err
		}
		kind := GridLineNumber
		if value == bytecode.GridLineSpan {
			kind = GridLineSpan
		}
		return GridLine{Kind: kind, Value: int32(bytecode.FixedWord(w).ToInt())}, nil
	}
	return GridLine{}, fmt.Errorf("unknown grid line opcode %d: %w", value, csscade.ErrInvalid)
}
