package contract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cardsoft/bridgetutor/card"
)

// CallType is the kind of a single auction call.
type CallType uint8

const (
	CallPass CallType = iota
	CallBid
	CallDouble
	CallRedouble
)

// Call is one call in the auction. Level and Strain are meaningful only for
// CallBid.
type Call struct {
	Type   CallType
	Level  int
	Strain Strain
}

// Pass is the pass call.
var Pass = Call{Type: CallPass}

// Bid builds a contract bid call.
func Bid(level int, strain Strain) Call {
	return Call{Type: CallBid, Level: level, Strain: strain}
}

func (c Call) String() string {
	switch c.Type {
	case CallPass:
		return "Pass"
	case CallDouble:
		return "X"
	case CallRedouble:
		return "XX"
	}
	return fmt.Sprintf("%d%v", c.Level, c.Strain)
}

// ParseCall reads a single auction token: "P"/"Pass", "X", "XX", or a bid
// like "1C", "3NT", "4♠".
func ParseCall(tok string) (Call, error) {
	switch {
	case strings.EqualFold(tok, "p"), strings.EqualFold(tok, "pass"):
		return Pass, nil
	case strings.EqualFold(tok, "x"), strings.EqualFold(tok, "dbl"):
		return Call{Type: CallDouble}, nil
	case strings.EqualFold(tok, "xx"), strings.EqualFold(tok, "rdbl"):
		return Call{Type: CallRedouble}, nil
	}
	runes := []rune(tok)
	if len(runes) < 2 || runes[0] < '1' || runes[0] > '7' {
		return Call{}, &ParseError{Input: tok, Offending: tok, Reason: "not a recognizable call"}
	}
	strain, err := ParseStrain(string(runes[1:]))
	if err != nil {
		return Call{}, err
	}
	return Bid(int(runes[0]-'0'), strain), nil
}

// higherThan reports whether a bid outranks another bid.
func (c Call) higherThan(o Call) bool {
	if c.Level != o.Level {
		return c.Level > o.Level
	}
	return c.Strain > o.Strain
}

// Auction is a finished or in-progress call sequence starting at the
// dealer and proceeding clockwise.
type Auction struct {
	Dealer card.Seat
	Calls  []Call
}

// ErrPassedOut is returned when all four players pass and there is no
// contract to play.
var ErrPassedOut = errors.New("auction passed out")

// Result derives the contract from a finished auction. The declarer is the
// seat that made the final contract bid, the one followed by three passes
// and never outbid. Doubles and redoubles after that bid set the doubling
// state; an intervening bid resets it.
func (a *Auction) Result() (Contract, error) {
	if len(a.Calls) < 4 {
		return Contract{}, fmt.Errorf("auction has %d calls; not finished", len(a.Calls))
	}
	for i := len(a.Calls) - 3; i < len(a.Calls); i++ {
		if a.Calls[i].Type != CallPass {
			return Contract{}, errors.New("auction is not finished: needs three closing passes")
		}
	}

	var (
		haveBid  bool
		lastBid  Call
		declarer card.Seat
		doubling Doubling
	)
	seat := a.Dealer
	for i, call := range a.Calls {
		switch call.Type {
		case CallBid:
			if call.Level < 1 || call.Level > 7 {
				return Contract{}, fmt.Errorf("call %d: bid level %d out of range", i, call.Level)
			}
			if haveBid && !call.higherThan(lastBid) {
				return Contract{}, fmt.Errorf("call %d: bid %v does not outrank %v", i, call, lastBid)
			}
			haveBid = true
			lastBid = call
			declarer = seat
			doubling = Undoubled
		case CallDouble:
			if !haveBid || doubling != Undoubled {
				return Contract{}, fmt.Errorf("call %d: double out of turn", i)
			}
			if seat.SameSide(declarer) {
				return Contract{}, fmt.Errorf("call %d: double of own side's bid", i)
			}
			doubling = Doubled
		case CallRedouble:
			if doubling != Doubled {
				return Contract{}, fmt.Errorf("call %d: redouble without a double", i)
			}
			if !seat.SameSide(declarer) {
				return Contract{}, fmt.Errorf("call %d: redouble by the doubling side", i)
			}
			doubling = Redoubled
		}
		seat = seat.Clockwise()
	}
	if !haveBid {
		return Contract{}, ErrPassedOut
	}
	return Contract{
		Level:    lastBid.Level,
		Strain:   lastBid.Strain,
		Declarer: declarer,
		Doubling: doubling,
	}, nil
}
