package games

import (
	"fmt"
	"strings"
)

// Symbol is one reel face with the multiplier a full row of it pays.
type Symbol struct {
	Emoji      string
	Multiplier int64
}

// jackpotSymbol is the top-tier face. Any row holding one pays at
// least 5x even without a full match.
const jackpotSymbol = "7️⃣"

var slotSymbols = []Symbol{
	{"🍒", 2},
	{"🍋", 3},
	{"🔔", 5},
	{"⭐", 7},
	{jackpotSymbol, 10},
}

// SlotMachine spins a 3x3 grid, each cell drawn uniformly from the
// symbol set, and pays the best row multiplier.
type SlotMachine struct{}

func NewSlotMachine() *SlotMachine { return &SlotMachine{} }

func (g *SlotMachine) Name() string { return "slots" }

func (g *SlotMachine) Play(round Round) (*Result, error) {
	reels := make([][]Symbol, 3)
	for i := range reels {
		row := make([]Symbol, 3)
		for j := range row {
			row[j] = slotSymbols[randBelow(int64(len(slotSymbols)))]
		}
		reels[i] = row
	}

	payout := g.PayoutFor(round.Bet, reels)

	rows := make([]string, len(reels))
	grid := make([][]string, len(reels))
	for i, row := range reels {
		faces := make([]string, len(row))
		for j, symbol := range row {
			faces[j] = symbol.Emoji
		}
		rows[i] = strings.Join(faces, "")
		grid[i] = faces
	}

	display := "Spin result:\n" + strings.Join(rows, "\n")
	if payout > 0 {
		display += fmt.Sprintf("\nYou won %d chips!", payout)
	} else {
		display += "\nNo luck this time."
	}

	return &Result{
		Payout:  payout,
		Display: display,
		State: map[string]any{
			"bet":    round.Bet,
			"reels":  grid,
			"payout": payout,
		},
	}, nil
}

// PayoutFor scores a spun grid: a row of three identical faces pays
// that face's multiplier, a row containing the jackpot face pays at
// least 5x, and the best row wins. No qualifying row pays nothing.
func (g *SlotMachine) PayoutFor(bet int64, reels [][]Symbol) int64 {
	var best int64
	for _, row := range reels {
		if row[0].Emoji == row[1].Emoji && row[1].Emoji == row[2].Emoji && row[0].Multiplier > best {
			best = row[0].Multiplier
		}
		for _, symbol := range row {
			if symbol.Emoji == jackpotSymbol {
				if best < 5 {
					best = 5
				}
				break
			}
		}
	}
	return bet * best
}
