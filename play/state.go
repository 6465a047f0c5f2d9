// Package play is the trick-play rules engine: legal-move computation,
// state transition on a played card, trick resolution, and simulation
// support for the search layer. A State is owned by its caller; nothing in
// this package reads from process-wide storage.
package play

import (
	"fmt"

	"github.com/cardsoft/bridgetutor/card"
	"github.com/cardsoft/bridgetutor/contract"
)

// PlayedCard is a card together with the seat that played it.
type PlayedCard struct {
	Card card.Card
	Seat card.Seat
}

// Trick is a completed round of four cards.
type Trick struct {
	Cards  [4]PlayedCard // in play order
	Leader card.Seat
	Winner card.Seat
}

// LedSuit is the suit of the first card of the trick.
func (t Trick) LedSuit() card.Suit {
	return t.Cards[0].Card.Suit
}

// BackupMode controls whether state transitions are recorded for undo.
type BackupMode uint8

const (
	// NoBackup is for live play driven by the session layer.
	NoBackup BackupMode = iota
	// SimulationMode keeps a backup stack so a solver can unplay moves.
	SimulationMode
)

// State is a snapshot of trick-play progress for one hand of bridge. It is
// created by StartPlay (or NewEndgamePosition for constructed positions),
// mutated exactly once per legal play, and terminal once every card is gone.
type State struct {
	contract contract.Contract
	vul      contract.Vulnerability
	hands    [4]*card.Hand

	trick         []PlayedCard
	leader        card.Seat
	onTurn        card.Seat
	tricksWon     [4]int
	history       []Trick
	tricksTotal   int
	dummyRevealed bool

	backupMode BackupMode
	stateStack []*stateBackup
	stackPtr   int
}

// stateBackup captures everything PlayCard can change. One entry per card
// played; restoring an entry puts the played card back in its hand.
type stateBackup struct {
	played        PlayedCard
	trick         []PlayedCard
	leader        card.Seat
	onTurn        card.Seat
	tricksWon     [4]int
	historyLen    int
	dummyRevealed bool
}

func (s *State) Contract() contract.Contract {
	return s.contract
}

func (s *State) Vulnerability() contract.Vulnerability {
	return s.vul
}

// NextToPlay is the seat on turn.
func (s *State) NextToPlay() card.Seat {
	return s.onTurn
}

// TrickLeader is the seat that led the current trick (or will lead the
// next one if the trick is empty).
func (s *State) TrickLeader() card.Seat {
	return s.leader
}

// CurrentTrick returns a copy of the in-progress trick, at most 3 cards at
// decision time: the fourth card resolves the trick immediately.
func (s *State) CurrentTrick() []PlayedCard {
	out := make([]PlayedCard, len(s.trick))
	copy(out, s.trick)
	return out
}

// History returns a copy of the completed tricks.
func (s *State) History() []Trick {
	out := make([]Trick, len(s.history))
	copy(out, s.history)
	return out
}

// TricksWon returns the tricks won by one seat. Tricks are credited to the
// seat that won them; use SideTricks for the partnership total.
func (s *State) TricksWon(seat card.Seat) int {
	return s.tricksWon[seat]
}

// SideTricks returns the tricks won by the seat's partnership.
func (s *State) SideTricks(seat card.Seat) int {
	return s.tricksWon[seat] + s.tricksWon[seat.Partner()]
}

// DeclarerTricks is the declaring side's trick count so far.
func (s *State) DeclarerTricks() int {
	return s.SideTricks(s.contract.Declarer)
}

// DefenderTricks is the defending side's trick count so far.
func (s *State) DefenderTricks() int {
	return s.SideTricks(s.contract.Declarer.Clockwise())
}

// TricksRemaining is how many tricks are still to be resolved, counting an
// in-progress trick.
func (s *State) TricksRemaining() int {
	return s.tricksTotal - len(s.history)
}

// Over reports whether every card has been played.
func (s *State) Over() bool {
	return len(s.history) == s.tricksTotal && len(s.trick) == 0
}

// DummyRevealed flips to true the instant the opening lead is played and
// never flips back.
func (s *State) DummyRevealed() bool {
	return s.dummyRevealed
}

// Remaining returns a copy of a seat's unplayed cards.
func (s *State) Remaining(seat card.Seat) []card.Card {
	return s.hands[seat].Remaining()
}

// Hand exposes a seat's hand for valuation reads (HCP, suit lengths).
func (s *State) Hand(seat card.Seat) *card.Hand {
	return s.hands[seat]
}

// SetBackupMode switches undo recording on or off. Turning backups off
// discards the stack.
func (s *State) SetBackupMode(m BackupMode) {
	s.backupMode = m
	if m == NoBackup {
		s.stateStack = nil
		s.stackPtr = 0
	}
}

// SetStateStackLength preallocates the backup stack for a search of the
// given depth.
func (s *State) SetStateStackLength(n int) {
	s.stateStack = make([]*stateBackup, 0, n)
	s.stackPtr = 0
}

func (s *State) backup(played PlayedCard) {
	if s.backupMode == NoBackup {
		return
	}
	b := &stateBackup{
		played:        played,
		trick:         make([]PlayedCard, len(s.trick)),
		leader:        s.leader,
		onTurn:        s.onTurn,
		tricksWon:     s.tricksWon,
		historyLen:    len(s.history),
		dummyRevealed: s.dummyRevealed,
	}
	copy(b.trick, s.trick)
	if s.stackPtr < len(s.stateStack) {
		s.stateStack[s.stackPtr] = b
	} else {
		s.stateStack = append(s.stateStack, b)
	}
	s.stackPtr++
}

// UnplayLastMove restores the state to just before the last PlayCard. It
// is only valid in SimulationMode with at least one play recorded.
func (s *State) UnplayLastMove() error {
	if s.backupMode != SimulationMode {
		return fmt.Errorf("unplay requires simulation mode")
	}
	if s.stackPtr == 0 {
		return fmt.Errorf("nothing to unplay")
	}
	s.stackPtr--
	b := s.stateStack[s.stackPtr]
	s.trick = s.trick[:0]
	s.trick = append(s.trick, b.trick...)
	s.leader = b.leader
	s.onTurn = b.onTurn
	s.tricksWon = b.tricksWon
	s.history = s.history[:b.historyLen]
	s.dummyRevealed = b.dummyRevealed
	return s.hands[b.played.Seat].Restore(b.played.Card)
}

// Copy returns a deep copy of the state with an empty backup stack. Search
// layers copy the live state and simulate on the copy.
func (s *State) Copy() *State {
	ns := &State{
		contract:      s.contract,
		vul:           s.vul,
		leader:        s.leader,
		onTurn:        s.onTurn,
		tricksWon:     s.tricksWon,
		tricksTotal:   s.tricksTotal,
		dummyRevealed: s.dummyRevealed,
	}
	for _, seat := range card.Seats {
		ns.hands[seat] = s.hands[seat].Copy()
	}
	ns.trick = make([]PlayedCard, len(s.trick))
	copy(ns.trick, s.trick)
	ns.history = make([]Trick, len(s.history))
	copy(ns.history, s.history)
	return ns
}
