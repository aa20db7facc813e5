package games

import "fmt"

// DiceDuel rolls one die for the player and one for the house. The
// higher roll takes it; a tie returns the stake.
type DiceDuel struct{}

func NewDiceDuel() *DiceDuel { return &DiceDuel{} }

func (g *DiceDuel) Name() string { return "dice" }

func (g *DiceDuel) Play(round Round) (*Result, error) {
	playerRoll := randBelow(6) + 1
	dealerRoll := randBelow(6) + 1

	var payout int64
	var summary string
	switch {
	case playerRoll > dealerRoll:
		payout = round.Bet * 2
		summary = "You beat the dealer!"
	case playerRoll == dealerRoll:
		payout = round.Bet
		summary = "Push, stake returned."
	default:
		summary = "Dealer takes it."
	}

	return &Result{
		Payout:  payout,
		Display: fmt.Sprintf("You rolled %d, dealer rolled %d. %s", playerRoll, dealerRoll, summary),
		State: map[string]any{
			"player_roll": playerRoll,
			"dealer_roll": dealerRoll,
			"payout":      payout,
		},
	}, nil
}
