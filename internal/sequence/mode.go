package sequence

import (
	"fmt"
	"strings"
)

// RoadMode is fixed when a document is created.
type RoadMode int

const (
	SingleWay RoadMode = iota
	TwoWay
)

// String returns the wire spelling, "single" or "two".
func (m RoadMode) String() string {
	if m == TwoWay {
		return "two"
	}
	return "single"
}

// Title returns the human-readable name used in reports.
func (m RoadMode) Title() string {
	if m == TwoWay {
		return "Two Way"
	}
	return "Single Way"
}

// Sides lists the sides that exist in this mode.
func (m RoadMode) Sides() []Side {
	if m == TwoWay {
		return []Side{Side1, Side2}
	}
	return []Side{Side1}
}

// Has reports whether s is a usable side in this mode.
func (m RoadMode) Has(s Side) bool {
	return s == Side1 || (s == Side2 && m == TwoWay)
}

// ParseRoadMode accepts "single", "single-way", "two" and "two-way".
func ParseRoadMode(s string) (RoadMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "single", "single-way", "single way", "1":
		return SingleWay, nil
	case "two", "two-way", "two way", "2":
		return TwoWay, nil
	default:
		return SingleWay, invalidf("mode", "unknown road mode %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m RoadMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *RoadMode) UnmarshalText(b []byte) error {
	v, err := ParseRoadMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Side is one of the two lamp directions. Side 1 is drawn blue on the left
// half of a marker, side 2 red on the right.
type Side int

const (
	Side1 Side = 1
	Side2 Side = 2
)

func (s Side) String() string {
	return fmt.Sprintf("side %d", int(s))
}

// Valid reports whether s is 1 or 2.
func (s Side) Valid() bool {
	return s == Side1 || s == Side2
}
