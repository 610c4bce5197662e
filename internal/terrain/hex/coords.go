package hex

import "fmt"

// Coords are offset coordinates: X is the column, Y the row. Odd rows are
// shifted half a tile towards +X.
type Coords struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

func (c Coords) String() string { return fmt.Sprintf("(%d,%d)", c.X, c.Y) }

// Neighbor returns the coordinates of the adjacent tile in direction d.
func (c Coords) Neighbor(d Direction) Coords {
	odd := c.Y & 1
	switch d % 6 {
	case NE:
		return Coords{c.X + odd, c.Y + 1}
	case E:
		return Coords{c.X + 1, c.Y}
	case SE:
		return Coords{c.X + odd, c.Y - 1}
	case SW:
		return Coords{c.X - 1 + odd, c.Y - 1}
	case W:
		return Coords{c.X - 1, c.Y}
	default: // NW
		return Coords{c.X - 1 + odd, c.Y + 1}
	}
}

// DirectionTo reports which direction o lies in when it is adjacent to c.
func (c Coords) DirectionTo(o Coords) (Direction, bool) {
	for _, d := range All {
		if c.Neighbor(d) == o {
			return d, true
		}
	}
	return 0, false
}

// Less orders coordinates row-major, used wherever iteration must be stable.
func (c Coords) Less(o Coords) bool {
	if c.Y != o.Y {
		return c.Y < o.Y
	}
	return c.X < o.X
}
