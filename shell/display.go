package shell

import (
	"fmt"
	"strings"

	"github.com/cardsoft/bridgetutor/card"
	"github.com/cardsoft/bridgetutor/contract"
	"github.com/cardsoft/bridgetutor/scoring"
)

func dealText(deal *card.Deal) string {
	var sb strings.Builder
	for _, seat := range card.Seats {
		fmt.Fprintf(&sb, "%-6s", seat.Name()+":")
		for i, suit := range []card.Suit{card.Spades, card.Hearts, card.Diamonds, card.Clubs} {
			if i > 0 {
				sb.WriteString(" ")
			}
			sb.WriteString(suit.String())
			for _, c := range deal.Cards(seat) {
				if c.Suit == suit {
					sb.WriteString(c.Rank.String())
				}
			}
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (sc *ShellController) gameText() string {
	g := sc.game
	var sb strings.Builder
	fmt.Fprintf(&sb, "contract %v  vul %v  tricks N/S %d E/W %d\n",
		g.Contract(), sc.vul, g.SideTricks(card.North), g.SideTricks(card.East))
	for _, seat := range card.Seats {
		marker := " "
		if !g.Over() && seat == g.NextToPlay() {
			marker = "*"
		}
		fmt.Fprintf(&sb, "%s %-6s%v\n", marker, seat.Name()+":", g.Hand(seat))
	}
	if trick := g.CurrentTrick(); len(trick) > 0 {
		sb.WriteString("trick:")
		for _, pc := range trick {
			fmt.Fprintf(&sb, " %v:%v", pc.Seat, pc.Card)
		}
		sb.WriteString("\n")
	}
	if g.Over() {
		sb.WriteString("hand over; `score` shows the result\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// afterPlayText reports the just-completed trick when one closed, then the
// position.
func (sc *ShellController) afterPlayText() string {
	g := sc.game
	var sb strings.Builder
	if history := g.History(); len(history) > 0 && len(g.CurrentTrick()) == 0 {
		last := history[len(history)-1]
		fmt.Fprintf(&sb, "trick %d to %v\n", len(history), last.Winner)
	}
	sb.WriteString(sc.gameText())
	return sb.String()
}

func scoreText(c contract.Contract, declTricks int, r scoring.Result) string {
	var sb strings.Builder
	outcome := fmt.Sprintf("down %d", r.Undertricks)
	if r.Made {
		outcome = "made"
		if r.Overtricks > 0 {
			outcome = fmt.Sprintf("made +%d", r.Overtricks)
		}
	}
	fmt.Fprintf(&sb, "%v, %d tricks: %s, score %+d\n", c, declTricks, outcome, r.Total)
	line := func(label string, v int) {
		if v != 0 {
			fmt.Fprintf(&sb, "  %-18s%d\n", label, v)
		}
	}
	line("trick score", r.TrickScore)
	line("overtricks", r.OvertrickScore)
	line("game bonus", r.GameBonus)
	line("part score", r.PartScoreBonus)
	line("slam bonus", r.SlamBonus)
	line("insult", r.InsultBonus)
	line("undertricks", -r.UndertrickPenalty)
	return strings.TrimRight(sb.String(), "\n")
}
