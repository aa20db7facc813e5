package games

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	cardSuits = []string{"♠", "♥", "♦", "♣"}
	cardRanks = []string{"A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}

	cardValues = map[string]int{
		"A": 11, "2": 2, "3": 3, "4": 4, "5": 5, "6": 6, "7": 7,
		"8": 8, "9": 9, "10": 10, "J": 10, "Q": 10, "K": 10,
	}

	blackjackMultiplier = decimal.NewFromFloat(2.5)
)

// Card is a single playing card.
type Card struct {
	Rank string
	Suit string
}

func (c Card) String() string { return c.Rank + c.Suit }

// CardRound is an in-progress blackjack round. It lives in a session
// store between start and settlement and is never persisted mid-round.
type CardRound struct {
	Bet      int64
	Deck     []Card
	Player   []Card
	Dealer   []Card
	Doubled  bool
	Finished bool
}

func (r *CardRound) draw() Card {
	card := r.Deck[len(r.Deck)-1]
	r.Deck = r.Deck[:len(r.Deck)-1]
	return card
}

// HandValue totals a hand. An ace counts as 11 and is demoted to 1,
// one ace at a time, while the total exceeds 21. The second return
// reports a soft hand, an ace still counted as 11.
func HandValue(hand []Card) (int, bool) {
	value, aces := 0, 0
	for _, card := range hand {
		value += cardValues[card.Rank]
		if card.Rank == "A" {
			aces++
		}
	}
	for value > 21 && aces > 0 {
		value -= 10
		aces--
	}
	return value, aces > 0
}

// IsNatural reports a two-card 21.
func IsNatural(hand []Card) bool {
	if len(hand) != 2 {
		return false
	}
	value, _ := HandValue(hand)
	return value == 21
}

// CardNames renders a hand as strings for display and round state.
func CardNames(hand []Card) []string {
	names := make([]string, len(hand))
	for i, card := range hand {
		names[i] = card.String()
	}
	return names
}

// Blackjack runs the dealer and the round state machine. The
// single-call Play deals a round and finishes it immediately with no
// player action, which is what the stale-session sweep settles with.
type Blackjack struct{}

func NewBlackjack() *Blackjack { return &Blackjack{} }

func (g *Blackjack) Name() string { return "blackjack" }

func (g *Blackjack) Play(round Round) (*Result, error) {
	return g.Finish(g.NewRound(round.Bet)), nil
}

// NewRound shuffles a fresh 52-card deck and deals two cards each. An
// opening 21 on either side ends the round before any player action.
func (g *Blackjack) NewRound(bet int64) *CardRound {
	r := &CardRound{Bet: bet, Deck: newDeck()}
	r.Player = append(r.Player, r.draw(), r.draw())
	r.Dealer = append(r.Dealer, r.draw(), r.draw())
	if IsNatural(r.Player) || IsNatural(r.Dealer) {
		r.Finished = true
	}
	return r
}

// Hit draws one card for the player. Going over 21 finishes the round
// as a bust.
func (g *Blackjack) Hit(r *CardRound) {
	if r.Finished || len(r.Deck) == 0 {
		return
	}
	r.Player = append(r.Player, r.draw())
	if value, _ := HandValue(r.Player); value > 21 {
		r.Finished = true
	}
}

// Double doubles the stake, draws exactly one card and ends the
// player's turn. Allowed once per round; the caller must reserve the
// extra stake through the ledger before calling this.
func (g *Blackjack) Double(r *CardRound) {
	if r.Finished || r.Doubled {
		return
	}
	r.Doubled = true
	r.Bet *= 2
	g.Hit(r)
	r.Finished = true
}

// Stand ends the player's turn without drawing.
func (g *Blackjack) Stand(r *CardRound) {
	if r.Finished {
		return
	}
	r.Finished = true
}

// Finish runs the dealer to the house policy, hit below 17 and stand
// otherwise, then resolves the round. Call it once per round.
func (g *Blackjack) Finish(r *CardRound) *Result {
	playerValue, playerSoft := HandValue(r.Player)
	dealerValue, dealerSoft := HandValue(r.Dealer)

	// The dealer only plays a live hand: not against a player bust, and
	// not when both sides opened on 21.
	if playerValue <= 21 && !(IsNatural(r.Player) && IsNatural(r.Dealer)) {
		for dealerValue < 17 && len(r.Deck) > 0 {
			r.Dealer = append(r.Dealer, r.draw())
			dealerValue, dealerSoft = HandValue(r.Dealer)
		}
	}
	r.Finished = true

	var payout int64
	var outcome string
	switch {
	case playerValue > 21:
		outcome = "bust"
	case dealerValue > 21:
		payout = r.Bet * 2
		outcome = "dealer bust"
	case playerValue > dealerValue:
		if IsNatural(r.Player) && !IsNatural(r.Dealer) {
			payout = scaledPayout(r.Bet, blackjackMultiplier)
			outcome = "blackjack win"
		} else {
			payout = r.Bet * 2
			outcome = "win"
		}
	case playerValue == dealerValue:
		payout = r.Bet
		outcome = "push"
	default:
		outcome = "loss"
	}

	display := fmt.Sprintf("Your hand (%s): %s\nDealer hand (%s): %s\nOutcome: %s",
		describeValue(playerValue, playerSoft), strings.Join(CardNames(r.Player), " "),
		describeValue(dealerValue, dealerSoft), strings.Join(CardNames(r.Dealer), " "),
		outcome)

	return &Result{
		Payout:  payout,
		Display: display,
		State: map[string]any{
			"bet":          r.Bet,
			"player":       CardNames(r.Player),
			"dealer":       CardNames(r.Dealer),
			"doubled":      r.Doubled,
			"finished":     r.Finished,
			"player_value": playerValue,
			"dealer_value": dealerValue,
			"outcome":      outcome,
			"payout":       payout,
		},
	}
}

func describeValue(value int, soft bool) string {
	if soft {
		return fmt.Sprintf("soft %d", value)
	}
	return fmt.Sprintf("%d", value)
}

func newDeck() []Card {
	deck := make([]Card, 0, 52)
	for _, rank := range cardRanks {
		for _, suit := range cardSuits {
			deck = append(deck, Card{Rank: rank, Suit: suit})
		}
	}
	for i := len(deck) - 1; i > 0; i-- {
		j := randBelow(int64(i + 1))
		deck[i], deck[j] = deck[j], deck[i]
	}
	return deck
}
