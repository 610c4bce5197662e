package hex

import (
	"fmt"
	"strings"

	"hexterrain.dev/internal/logic/mathx"
)

// Direction is one of the six sides of a pointy-top hexagon, numbered
// clockwise from north-east.
type Direction uint8

const (
	NE Direction = iota
	E
	SE
	SW
	W
	NW
)

// All lists the directions in clockwise order starting at NE.
var All = [6]Direction{NE, E, SE, SW, W, NW}

// Primary directions are the ones whose edges a tile owns.
var Primary = [3]Direction{NE, E, SE}

var (
	clockwise        = [6]Direction{E, SE, SW, W, NW, NE}
	counterClockwise = [6]Direction{NW, NE, E, SE, SW, W}
	opposite         = [6]Direction{SW, W, NW, NE, E, SE}
	names            = [6]string{"NE", "E", "SE", "SW", "W", "NW"}
)

func (d Direction) Clockwise() Direction        { return clockwise[d%6] }
func (d Direction) CounterClockwise() Direction { return counterClockwise[d%6] }
func (d Direction) Opposite() Direction         { return opposite[d%6] }
func (d Direction) IsPrimary() bool             { return d%6 <= SE }

// Rotate turns d clockwise by n steps; n may be negative.
func (d Direction) Rotate(n int) Direction {
	return Direction(mathx.Mod(int(d%6)+n, 6))
}

// Offset is the number of clockwise steps from d to o, in [0,6).
func (d Direction) Offset(o Direction) int {
	return mathx.Mod(int(o%6)-int(d%6), 6)
}

func (d Direction) String() string { return names[d%6] }

// ParseDirection accepts the short names (NE, E, ...) and their long forms
// (NORTH_EAST, EAST, ...), case-insensitively.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "NE", "NORTH_EAST", "NORTHEAST":
		return NE, nil
	case "E", "EAST":
		return E, nil
	case "SE", "SOUTH_EAST", "SOUTHEAST":
		return SE, nil
	case "SW", "SOUTH_WEST", "SOUTHWEST":
		return SW, nil
	case "W", "WEST":
		return W, nil
	case "NW", "NORTH_WEST", "NORTHWEST":
		return NW, nil
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

func (d Direction) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Direction) UnmarshalText(b []byte) error {
	v, err := ParseDirection(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}
