package games

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Crash draws a crash point in [1.00, 10.00] and an auto-cashout
// threshold in [1.30, 3.50], both to two decimals. If the curve
// survives to the threshold the player cashes out at the threshold
// multiplier; otherwise the stake is lost. A single-shot round, no
// mid-flight action.
type Crash struct{}

func NewCrash() *Crash { return &Crash{} }

func (g *Crash) Name() string { return "crash" }

func (g *Crash) Play(round Round) (*Result, error) {
	crashCents := randCents(100, 1000)
	cashoutCents := randCents(130, 350)

	multiplierCents := crashCents
	var payout int64
	outcome := "Crashed before the cashout."
	if crashCents >= cashoutCents {
		multiplierCents = cashoutCents
		payout = scaledPayout(round.Bet, decimal.New(cashoutCents, -2))
		outcome = "You cashed out in time!"
	}

	crashPoint := float64(crashCents) / 100
	autoCashout := float64(cashoutCents) / 100
	return &Result{
		Payout: payout,
		Display: fmt.Sprintf("Auto-cashout at x%.2f, curve peaked at x%.2f. %s",
			autoCashout, crashPoint, outcome),
		State: map[string]any{
			"auto_cashout": autoCashout,
			"crash_point":  crashPoint,
			"multiplier":   float64(multiplierCents) / 100,
			"payout":       payout,
		},
	}, nil
}
