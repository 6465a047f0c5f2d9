// Package scoring converts a finished play result into a duplicate-bridge
// score from the declarer's perspective, with a full component breakdown.
package scoring

import (
	"github.com/cardsoft/bridgetutor/contract"
)

// Result is the score breakdown for one hand. Total is signed from the
// declarer's perspective: positive when the contract makes, negative when
// it is defeated.
type Result struct {
	Made        bool
	Overtricks  int
	Undertricks int

	TrickScore        int
	OvertrickScore    int
	GameBonus         int
	PartScoreBonus    int
	SlamBonus         int
	InsultBonus       int
	UndertrickPenalty int // positive magnitude; subtracted from Total

	Total int
}

// perTrickRate is the bid-and-made rate for a strain; notrump adds 10 for
// the first trick on top of the major rate.
func perTrickRate(s contract.Strain) int {
	switch s {
	case contract.Clubs, contract.Diamonds:
		return 20
	case contract.Hearts, contract.Spades:
		return 30
	}
	return 30 // notrump after the first trick
}

// Score computes the duplicate score for a contract with the given number
// of tricks taken by the declaring side.
func Score(c contract.Contract, tricksTaken int, vul contract.Vulnerability) Result {
	var r Result
	needed := c.TricksNeeded()
	declVul := vul.IsVulnerable(c.Declarer)

	if tricksTaken < needed {
		r.Undertricks = needed - tricksTaken
		r.UndertrickPenalty = undertrickPenalty(r.Undertricks, c.Doubling, declVul)
		r.Total = -r.UndertrickPenalty
		return r
	}

	r.Made = true
	r.Overtricks = tricksTaken - needed

	r.TrickScore = perTrickRate(c.Strain) * c.Level
	if c.Strain == contract.NoTrump {
		r.TrickScore += 10
	}
	r.TrickScore *= c.Doubling.Multiplier()

	// Game requires 100 points of bid-and-made trick score; doubling counts
	// toward it, overtricks never do.
	if r.TrickScore >= 100 {
		if declVul {
			r.GameBonus = 500
		} else {
			r.GameBonus = 300
		}
	} else {
		r.PartScoreBonus = 50
	}

	switch c.Level {
	case 6:
		if declVul {
			r.SlamBonus = 750
		} else {
			r.SlamBonus = 500
		}
	case 7:
		if declVul {
			r.SlamBonus = 1500
		} else {
			r.SlamBonus = 1000
		}
	}

	switch c.Doubling {
	case contract.Undoubled:
		r.OvertrickScore = r.Overtricks * perTrickRate(c.Strain)
	case contract.Doubled:
		r.InsultBonus = 50
		if declVul {
			r.OvertrickScore = r.Overtricks * 200
		} else {
			r.OvertrickScore = r.Overtricks * 100
		}
	case contract.Redoubled:
		r.InsultBonus = 100
		if declVul {
			r.OvertrickScore = r.Overtricks * 400
		} else {
			r.OvertrickScore = r.Overtricks * 200
		}
	}

	r.Total = r.TrickScore + r.OvertrickScore + r.GameBonus + r.PartScoreBonus +
		r.SlamBonus + r.InsultBonus
	return r
}

// undertrickPenalty is the standard duplicate chart. Undoubled tricks are
// flat 50 (100 vulnerable). Doubled not vulnerable: 100 for the first, 200
// for the second and third, 300 from the fourth. Doubled vulnerable: 200
// for the first, 300 thereafter. Redoubled doubles the doubled values.
func undertrickPenalty(down int, d contract.Doubling, vul bool) int {
	if d == contract.Undoubled {
		if vul {
			return down * 100
		}
		return down * 50
	}
	total := 0
	for trick := 1; trick <= down; trick++ {
		var p int
		switch {
		case vul && trick == 1:
			p = 200
		case vul:
			p = 300
		case trick == 1:
			p = 100
		case trick <= 3:
			p = 200
		default:
			p = 300
		}
		total += p
	}
	if d == contract.Redoubled {
		total *= 2
	}
	return total
}
