// Package ai assembles the tutoring opponents. Each tier is a Strategy: a
// card chooser of a fixed strength, from a one-ply heuristic up to an
// external double-dummy oracle, all safe to call concurrently with each
// other but not with the state they are choosing for.
package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/cardsoft/bridgetutor/ai/minimax"
	"github.com/cardsoft/bridgetutor/ai/oracle"
	"github.com/cardsoft/bridgetutor/card"
	"github.com/cardsoft/bridgetutor/config"
	"github.com/cardsoft/bridgetutor/play"
)

// Tier orders the playing strengths.
type Tier int

const (
	// Beginner plays a one-ply heuristic with no lookahead.
	Beginner Tier = iota
	// Intermediate searches a bounded number of plies ahead.
	Intermediate
	// Advanced searches deep enough to play most endings perfectly.
	Advanced
	// Expert consults the external double-dummy oracle, falling back to
	// the Advanced search when it is unavailable.
	Expert
)

var tierNames = map[Tier]string{
	Beginner:     "beginner",
	Intermediate: "intermediate",
	Advanced:     "advanced",
	Expert:       "expert",
}

func (t Tier) String() string {
	if n, ok := tierNames[t]; ok {
		return n
	}
	return fmt.Sprintf("tier(%d)", int(t))
}

func ParseTier(s string) (Tier, error) {
	for t, n := range tierNames {
		if strings.EqualFold(s, n) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown tier %q (want beginner, intermediate, advanced, or expert)", s)
}

// Strategy picks a card for the seat on turn. Implementations never mutate
// the passed state and always return a legal card when one exists.
type Strategy interface {
	ChooseCard(ctx context.Context, st *play.State, seat card.Seat) (card.Card, error)
	Name() string
	Tier() Tier
}

type strategy struct {
	tier    Tier
	name    string
	chooser interface {
		ChooseCard(ctx context.Context, st *play.State, seat card.Seat) (card.Card, error)
	}
}

func (s *strategy) ChooseCard(ctx context.Context, st *play.State, seat card.Seat) (card.Card, error) {
	return s.chooser.ChooseCard(ctx, st, seat)
}

func (s *strategy) Name() string { return s.name }
func (s *strategy) Tier() Tier   { return s.tier }

// New builds the strategy for a tier. The switch is exhaustive; an unknown
// tier is a programming error, not a fallback case.
func New(tier Tier, cfg *config.Config) (Strategy, error) {
	switch tier {
	case Beginner:
		return &strategy{
			tier:    Beginner,
			name:    "one-ply heuristic",
			chooser: &Heuristic{},
		}, nil
	case Intermediate:
		p := minimax.NewPlayer(cfg.IntermediateDepth, cfg.SearchBudget, cfg.TTMemFraction)
		return &strategy{tier: Intermediate, name: p.String(), chooser: p}, nil
	case Advanced:
		p := minimax.NewPlayer(cfg.AdvancedDepth, cfg.SearchBudget, cfg.TTMemFraction)
		return &strategy{tier: Advanced, name: p.String(), chooser: p}, nil
	case Expert:
		fallback := minimax.NewPlayer(cfg.AdvancedDepth, cfg.SearchBudget, cfg.TTMemFraction)
		c := oracle.NewClient(cfg.OracleURL, cfg.OracleDenylist, fallback)
		return &strategy{tier: Expert, name: "double-dummy oracle", chooser: c}, nil
	}
	return nil, fmt.Errorf("no strategy for tier %v", tier)
}
