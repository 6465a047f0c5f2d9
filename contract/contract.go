// Package contract models the result of the auction: the contract itself,
// vulnerability, and derivation of a contract from a call sequence.
package contract

import (
	"fmt"
	"regexp"

	"github.com/cardsoft/bridgetutor/card"
)

// Strain is what the contract is played in: one of the four suits or
// notrump. The numeric order is bidding order, clubs lowest.
type Strain uint8

const (
	Clubs Strain = iota
	Diamonds
	Hearts
	Spades
	NoTrump
)

var strainSymbols = [5]string{"♣", "♦", "♥", "♠", "NT"}

func (s Strain) String() string {
	return strainSymbols[s]
}

// TrumpSuit returns the trump suit, or false for notrump.
func (s Strain) TrumpSuit() (card.Suit, bool) {
	if s == NoTrump {
		return 0, false
	}
	return card.Suit(s), true
}

// ParseStrain accepts a suit symbol, a suit letter, or "NT".
func ParseStrain(tok string) (Strain, error) {
	if tok == "NT" || tok == "nt" || tok == "N" {
		return NoTrump, nil
	}
	suit, err := card.ParseSuit(tok)
	if err != nil {
		return 0, fmt.Errorf("unrecognized strain %q", tok)
	}
	return Strain(suit), nil
}

// Doubling is the doubling state of a contract.
type Doubling uint8

const (
	Undoubled Doubling = iota
	Doubled
	Redoubled
)

func (d Doubling) String() string {
	switch d {
	case Doubled:
		return "X"
	case Redoubled:
		return "XX"
	}
	return ""
}

// Multiplier returns the trick-score multiplier for the doubling state.
func (d Doubling) Multiplier() int {
	switch d {
	case Doubled:
		return 2
	case Redoubled:
		return 4
	}
	return 1
}

// Contract is the final contract of an auction.
type Contract struct {
	Level    int // 1..7
	Strain   Strain
	Declarer card.Seat
	Doubling Doubling
}

// TrumpSuit returns the contract's trump suit, or false for notrump.
func (c Contract) TrumpSuit() (card.Suit, bool) {
	return c.Strain.TrumpSuit()
}

// Dummy is declarer's partner; the dummy hand is exposed after the
// opening lead.
func (c Contract) Dummy() card.Seat {
	return c.Declarer.Partner()
}

// OpeningLeader is declarer's left-hand opponent.
func (c Contract) OpeningLeader() card.Seat {
	return c.Declarer.Clockwise()
}

// TricksNeeded is the number of tricks the declaring side must take.
func (c Contract) TricksNeeded() int {
	return c.Level + 6
}

func (c Contract) String() string {
	return fmt.Sprintf("%d%v%v by %v", c.Level, c.Strain, c.Doubling, c.Declarer)
}

// ParseError reports a malformed contract or vulnerability string, naming
// the substring that failed to parse.
type ParseError struct {
	Input     string
	Offending string
	Reason    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %q: %s in %q", e.Input, e.Reason, e.Offending)
}

var reContract = regexp.MustCompile(`^([1-7])(♣|♦|♥|♠|NT|[CDHScdhs])(XX|X)? by ([NESW])$`)

// Parse reads a contract in canonical form, e.g. "4♠X by N". Level 1-7,
// strain as a symbol, suit letter or NT, an optional X or XX marker, and a
// declarer letter. Anything else is a ParseError.
func Parse(s string) (Contract, error) {
	m := reContract.FindStringSubmatch(s)
	if m == nil {
		return Contract{}, &ParseError{Input: s, Offending: s, Reason: "not of the form <level><strain>[X|XX] by <seat>"}
	}
	level := int(m[1][0] - '0')
	strain, err := ParseStrain(m[2])
	if err != nil {
		return Contract{}, &ParseError{Input: s, Offending: m[2], Reason: "bad strain"}
	}
	doubling := Undoubled
	switch m[3] {
	case "X":
		doubling = Doubled
	case "XX":
		doubling = Redoubled
	}
	declarer, err := card.ParseSeat(m[4])
	if err != nil {
		return Contract{}, &ParseError{Input: s, Offending: m[4], Reason: "bad declarer seat"}
	}
	return Contract{Level: level, Strain: strain, Declarer: declarer, Doubling: doubling}, nil
}
