package path

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedInterchange is returned when serialized path data has an unknown
// segment tag or the wrong number of coordinates.
var ErrMalformedInterchange = errors.New("malformed interchange data")

// InterchangeError describes which segment of a serialized path failed to decode.
type InterchangeError struct {
	Index  int
	Tag    string
	Reason string
}

func (e *InterchangeError) Error() string {
	if e.Tag == "" {
		return fmt.Sprintf("segment %d: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("segment %d (%q): %s", e.Index, e.Tag, e.Reason)
}

func (e *InterchangeError) Unwrap() error {
	return ErrMalformedInterchange
}

// arity is the number of coordinates each segment tag carries.
var arity = map[string]int{
	"M": 2,
	"L": 2,
	"Q": 4,
	"C": 6,
	"Z": 0,
}

// MarshalJSON encodes the path as [["M",[x,y]],["L",[x,y]],...,["Z",[]]].
func (s Segments) MarshalJSON() ([]byte, error) {
	out := make([][2]any, 0, len(s))
	for _, seg := range s {
		var tag string
		var args []float32
		switch v := seg.(type) {
		case MoveTo:
			tag, args = "M", []float32{v.X, v.Y}
		case LineTo:
			tag, args = "L", []float32{v.X, v.Y}
		case QuadTo:
			tag, args = "Q", []float32{v.CX, v.CY, v.X, v.Y}
		case CubicTo:
			tag, args = "C", []float32{v.C1X, v.C1Y, v.C2X, v.C2Y, v.X, v.Y}
		case Close:
			tag, args = "Z", []float32{}
		default:
			return nil, fmt.Errorf("unknown segment %T", seg)
		}
		out = append(out, [2]any{tag, args})
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the form written by MarshalJSON. Any error wraps
// ErrMalformedInterchange and names the offending segment.
func (s *Segments) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return &InterchangeError{Index: -1, Reason: err.Error()}
	}

	out := make(Segments, 0, len(raw))
	for i, entry := range raw {
		seg, err := decodeSegment(i, entry)
		if err != nil {
			return err
		}
		out = append(out, seg)
	}
	*s = out
	return nil
}

func decodeSegment(index int, entry json.RawMessage) (Segment, error) {
	var pair []json.RawMessage
	if err := json.Unmarshal(entry, &pair); err != nil || len(pair) != 2 {
		return nil, &InterchangeError{Index: index, Reason: "expected [tag, [coordinates]]"}
	}

	var tag string
	if err := json.Unmarshal(pair[0], &tag); err != nil {
		return nil, &InterchangeError{Index: index, Reason: "tag is not a string"}
	}

	want, ok := arity[tag]
	if !ok {
		return nil, &InterchangeError{Index: index, Tag: tag, Reason: "unknown segment tag"}
	}

	// Pointers tell a null coordinate apart from zero.
	var raw []*float32
	if err := json.Unmarshal(pair[1], &raw); err != nil {
		return nil, &InterchangeError{Index: index, Tag: tag, Reason: "coordinates are not numbers"}
	}
	if raw == nil {
		return nil, &InterchangeError{Index: index, Tag: tag, Reason: "coordinates are not a list"}
	}
	if len(raw) != want {
		return nil, &InterchangeError{
			Index:  index,
			Tag:    tag,
			Reason: fmt.Sprintf("expected %d coordinates, got %d", want, len(raw)),
		}
	}
	args := make([]float32, len(raw))
	for i, v := range raw {
		if v == nil {
			return nil, &InterchangeError{Index: index, Tag: tag, Reason: fmt.Sprintf("coordinate %d is null", i)}
		}
		args[i] = *v
	}

	switch tag {
	case "M":
		return MoveTo{args[0], args[1]}, nil
	case "L":
		return LineTo{args[0], args[1]}, nil
	case "Q":
		return QuadTo{args[0], args[1], args[2], args[3]}, nil
	case "C":
		return CubicTo{args[0], args[1], args[2], args[3], args[4], args[5]}, nil
	default:
		return Close{}, nil
	}
}
