package intersection

import "fmt"

// Direction is one of the four approaches into the intersection. The zero
// value means no direction, which is the light's state before its first
// rotation.
type Direction uint8

// The four cardinal approaches.
const (
	North Direction = iota + 1
	South
	East
	West
)

var directions = [...]Direction{North, South, East, West}

// Directions returns the four directions in fixed order: North, South, East, West.
func Directions() []Direction {
	return directions[:]
}

// Valid reports whether d is one of the four cardinal directions.
func (d Direction) Valid() bool {
	return d >= North && d <= West
}

func (d Direction) String() string {
	switch d {
	case North:
		return "North"
	case South:
		return "South"
	case East:
		return "East"
	case West:
		return "West"
	default:
		return "none"
	}
}

// ParseDirection parses a direction name, case-sensitively in its canonical
// form or lower case ("North" or "north").
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "North", "north":
		return North, nil
	case "South", "south":
		return South, nil
	case "East", "east":
		return East, nil
	case "West", "west":
		return West, nil
	default:
		return 0, fmt.Errorf("intersection: unknown direction %q", s)
	}
}

// MarshalText encodes the direction name. The zero value encodes as an
// empty string.
func (d Direction) MarshalText() ([]byte, error) {
	if d == 0 {
		return []byte{}, nil
	}
	if !d.Valid() {
		return nil, fmt.Errorf("intersection: invalid direction %d", uint8(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText decodes a direction name; an empty string yields the zero value.
func (d *Direction) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*d = 0
		return nil
	}
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
