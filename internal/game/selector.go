package game

import (
	"strconv"
	"strings"
)

// SelectorKind is the family a wager selector belongs to.
type SelectorKind uint8

const (
	SelectUnmatched SelectorKind = iota
	SelectNumber
	SelectColor
	SelectParity
	SelectDozen
)

func (k SelectorKind) String() string {
	switch k {
	case SelectNumber:
		return "number"
	case SelectColor:
		return "color"
	case SelectParity:
		return "parity"
	case SelectDozen:
		return "dozen"
	}
	return "unmatched"
}

// Payout multipliers, applied to the stake as profit.
const (
	NumberMultiplier = 35
	ColorMultiplier  = 1
	ParityMultiplier = 1
	DozenMultiplier  = 2
)

// Selector is a parsed wager target. Parsing never fails: anything that is
// not recognised becomes an unmatched selector, which loses on every spin.
type Selector struct {
	Kind   SelectorKind
	Number int
	Color  Color
	Odd    bool
	Dozen  int
}

// ParseSelector recognises "0".."36", "red", "black", "green", "even", "odd",
// "1st12"/"2nd12"/"3rd12" and the short forms "d1".."d3".
func ParseSelector(raw string) Selector {
	s := strings.ToLower(strings.TrimSpace(raw))
	if n, err := strconv.Atoi(s); err == nil {
		if n >= 0 && n < WheelSize {
			return Selector{Kind: SelectNumber, Number: n}
		}
		return Selector{}
	}
	switch s {
	case "red":
		return Selector{Kind: SelectColor, Color: Red}
	case "black":
		return Selector{Kind: SelectColor, Color: Black}
	case "green":
		return Selector{Kind: SelectColor, Color: Green}
	case "even":
		return Selector{Kind: SelectParity}
	case "odd":
		return Selector{Kind: SelectParity, Odd: true}
	case "1st12", "d1":
		return Selector{Kind: SelectDozen, Dozen: 1}
	case "2nd12", "d2":
		return Selector{Kind: SelectDozen, Dozen: 2}
	case "3rd12", "d3":
		return Selector{Kind: SelectDozen, Dozen: 3}
	}
	return Selector{}
}

// Multiplier returns the profit multiplier when the selector covers n, and
// false when the wager loses.
func (s Selector) Multiplier(n int) (int, bool) {
	switch s.Kind {
	case SelectNumber:
		if s.Number == n {
			return NumberMultiplier, true
		}
	case SelectColor:
		if ColorOf(n) == s.Color {
			return ColorMultiplier, true
		}
	case SelectParity:
		// Zero is neither even nor odd for betting purposes.
		if n != 0 && (n%2 == 1) == s.Odd {
			return ParityMultiplier, true
		}
	case SelectDozen:
		if n != 0 && (n-1)/12+1 == s.Dozen {
			return DozenMultiplier, true
		}
	}
	return 0, false
}
