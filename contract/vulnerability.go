package contract

import "github.com/cardsoft/bridgetutor/card"

// Vulnerability is a per-partnership flag that scales certain bonuses and
// penalties.
type Vulnerability uint8

const (
	NoneVul Vulnerability = iota
	NSVul
	EWVul
	BothVul
)

var vulNames = [4]string{"None", "NS", "EW", "Both"}

func (v Vulnerability) String() string {
	return vulNames[v]
}

// IsVulnerable reports whether the given seat's partnership is vulnerable.
func (v Vulnerability) IsVulnerable(seat card.Seat) bool {
	ns := seat == card.North || seat == card.South
	switch v {
	case BothVul:
		return true
	case NSVul:
		return ns
	case EWVul:
		return !ns
	}
	return false
}

// ParseVulnerability reads one of the four canonical vulnerability strings:
// None, NS, EW, Both. It is strict; no aliases.
func ParseVulnerability(s string) (Vulnerability, error) {
	for i, name := range vulNames {
		if s == name {
			return Vulnerability(i), nil
		}
	}
	return 0, &ParseError{Input: s, Offending: s, Reason: "vulnerability must be one of None, NS, EW, Both"}
}
