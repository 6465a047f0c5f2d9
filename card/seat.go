package card

import "fmt"

// Seat is one of the four positions at the table, in clockwise order.
type Seat uint8

const (
	North Seat = iota
	East
	South
	West
)

// Seats lists the four seats in clockwise order starting from North.
var Seats = [4]Seat{North, East, South, West}

var seatLetters = [4]string{"N", "E", "S", "W"}
var seatNames = [4]string{"North", "East", "South", "West"}

func (s Seat) String() string {
	return seatLetters[s]
}

// Name returns the full seat name, for display.
func (s Seat) Name() string {
	return seatNames[s]
}

// Clockwise returns the next seat to act.
func (s Seat) Clockwise() Seat {
	return (s + 1) % 4
}

// Partner returns the seat across the table.
func (s Seat) Partner() Seat {
	return (s + 2) % 4
}

// SameSide reports whether two seats belong to the same partnership.
func (s Seat) SameSide(o Seat) bool {
	return s%2 == o%2
}

// ParseSeat reads a seat letter (N, E, S, W) or full name.
func ParseSeat(tok string) (Seat, error) {
	for i := range seatLetters {
		if tok == seatLetters[i] || tok == seatNames[i] {
			return Seat(i), nil
		}
	}
	return 0, fmt.Errorf("unrecognized seat %q", tok)
}
