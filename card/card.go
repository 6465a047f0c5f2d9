// Package card holds the value types for bridge trick play: ranks, suits,
// cards, seats, hands, and dealt boards. Everything here is either immutable
// or mutated only through the play engine.
package card

import (
	"fmt"
	"strings"
)

// Suit is one of the four suits. The numeric order is the standard bridge
// ranking order, clubs lowest. During trick play no suit outranks another
// except the trump suit; the ordering matters for display and serialization.
type Suit uint8

const (
	Clubs Suit = iota
	Diamonds
	Hearts
	Spades
)

// Suits lists all four suits in ranking order.
var Suits = [4]Suit{Clubs, Diamonds, Hearts, Spades}

var suitSymbols = [4]string{"♣", "♦", "♥", "♠"}
var suitLetters = [4]string{"C", "D", "H", "S"}

func (s Suit) String() string {
	return suitSymbols[s]
}

// Letter returns the ASCII letter form of the suit (C, D, H, S).
func (s Suit) Letter() string {
	return suitLetters[s]
}

// ParseSuit accepts either the suit symbol or its ASCII letter.
func ParseSuit(tok string) (Suit, error) {
	for i := range suitSymbols {
		if tok == suitSymbols[i] || strings.EqualFold(tok, suitLetters[i]) {
			return Suit(i), nil
		}
	}
	return 0, fmt.Errorf("unrecognized suit %q", tok)
}

// Rank is a card rank, valued 2 through 14 so that rank comparison is
// integer comparison. Ace is high; there is no rank order across suits.
type Rank uint8

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

const rankChars = "23456789TJQKA"

func (r Rank) String() string {
	if r < Two || r > Ace {
		return "?"
	}
	return string(rankChars[r-Two])
}

// HCP returns the Milton Work high-card points for the rank.
func (r Rank) HCP() int {
	switch r {
	case Ace:
		return 4
	case King:
		return 3
	case Queen:
		return 2
	case Jack:
		return 1
	}
	return 0
}

// ParseRank reads a single rank character (2-9, T, J, Q, K, A).
func ParseRank(ch byte) (Rank, error) {
	idx := strings.IndexByte(rankChars, toUpperByte(ch))
	if idx < 0 {
		return 0, fmt.Errorf("unrecognized rank %q", string(ch))
	}
	return Rank(idx) + Two, nil
}

func toUpperByte(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 0x20
	}
	return b
}

// Card is an immutable (rank, suit) pair. Cards compare equal iff both
// fields are equal; a deal contains exactly one of each.
type Card struct {
	Rank Rank
	Suit Suit
}

func (c Card) String() string {
	return c.Suit.String() + c.Rank.String()
}

// Index maps the card onto 0..51, suit-major. Used for hashing and compact
// storage.
func (c Card) Index() int {
	return int(c.Suit)*13 + int(c.Rank-Two)
}

// FromIndex is the inverse of Index.
func FromIndex(i int) Card {
	return Card{Rank: Rank(i%13) + Two, Suit: Suit(i / 13)}
}

// Parse reads a card in suit-first form, e.g. "♠A" or "SA".
func Parse(tok string) (Card, error) {
	if len(tok) < 2 {
		return Card{}, fmt.Errorf("card %q too short", tok)
	}
	suitTok := tok[:len(tok)-1]
	suit, err := ParseSuit(suitTok)
	if err != nil {
		return Card{}, fmt.Errorf("card %q: %w", tok, err)
	}
	rank, err := ParseRank(tok[len(tok)-1])
	if err != nil {
		return Card{}, fmt.Errorf("card %q: %w", tok, err)
	}
	return Card{Rank: rank, Suit: suit}, nil
}

// MustParse is Parse for tests and literals; it panics on bad input.
func MustParse(tok string) Card {
	c, err := Parse(tok)
	if err != nil {
		panic(err)
	}
	return c
}
