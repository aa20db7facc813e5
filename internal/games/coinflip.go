package games

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// CoinFlip pays out on a correct call of a fair two-way flip. The
// multiplier is below 2x so the house keeps an edge.
type CoinFlip struct {
	multiplier decimal.Decimal
}

func NewCoinFlip() *CoinFlip {
	return &CoinFlip{multiplier: decimal.NewFromFloat(1.9)}
}

func (g *CoinFlip) Name() string { return "coinflip" }

func (g *CoinFlip) Play(round Round) (*Result, error) {
	choice := strings.ToLower(strings.TrimSpace(round.Choice))
	if choice != "heads" && choice != "tails" {
		return nil, fmt.Errorf("%w: coinflip takes heads or tails", ErrInvalidSelection)
	}

	outcome := "tails"
	if randBelow(2) == 0 {
		outcome = "heads"
	}
	win := outcome == choice

	var payout int64
	verdict := "House wins."
	if win {
		payout = scaledPayout(round.Bet, g.multiplier)
		verdict = "You win!"
	}

	multiplier, _ := g.multiplier.Float64()
	return &Result{
		Payout:  payout,
		Display: fmt.Sprintf("Coin landed %s, you called %s. %s", outcome, choice, verdict),
		State: map[string]any{
			"bet":               round.Bet,
			"choice":            choice,
			"outcome":           outcome,
			"win":               win,
			"payout_multiplier": multiplier,
		},
	}, nil
}
