package games

import (
	"fmt"
	"strings"
)

var rouletteReds = map[int64]bool{
	1: true, 3: true, 5: true, 7: true, 9: true, 12: true,
	14: true, 16: true, 18: true, 19: true, 21: true, 23: true,
	25: true, 27: true, 30: true, 32: true, 34: true, 36: true,
}

// ColorOf maps a wheel number to its color on a single-zero wheel.
// Zero is the house green.
func ColorOf(number int64) string {
	switch {
	case number == 0:
		return "green"
	case rouletteReds[number]:
		return "red"
	default:
		return "black"
	}
}

// Roulette takes a color bet on a single-zero wheel. Green pays 14x
// but only hits on zero; red and black pay 2x on a match.
type Roulette struct{}

func NewRoulette() *Roulette { return &Roulette{} }

func (g *Roulette) Name() string { return "roulette" }

func (g *Roulette) Play(round Round) (*Result, error) {
	choice := strings.ToLower(strings.TrimSpace(round.Choice))
	if choice == "" {
		choice = "red"
	}
	if choice != "red" && choice != "black" && choice != "green" {
		return nil, fmt.Errorf("%w: roulette takes red, black or green", ErrInvalidSelection)
	}

	number := randBelow(37)
	color := ColorOf(number)

	var payout int64
	switch {
	case choice == "green" && number == 0:
		payout = round.Bet * 14
	case choice != "green" && color == choice:
		payout = round.Bet * 2
	}

	display := fmt.Sprintf("Ball landed on %d (%s), you bet %s.", number, color, choice)
	if payout > 0 {
		display += fmt.Sprintf(" You won %d chips!", payout)
	} else {
		display += " Not this time."
	}

	return &Result{
		Payout:  payout,
		Display: display,
		State: map[string]any{
			"number": number,
			"color":  color,
			"choice": choice,
			"payout": payout,
		},
	}, nil
}
