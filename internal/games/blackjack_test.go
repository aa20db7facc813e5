package games_test

import (
	"testing"

	"fantasy-casino-backend/internal/games"
)

func card(rank, suit string) games.Card {
	return games.Card{Rank: rank, Suit: suit}
}

func TestHandValue(t *testing.T) {
	tests := []struct {
		name string
		hand []games.Card
		want int
		soft bool
	}{
		{"lone ace", []games.Card{card("A", "♠")}, 11, true},
		{"natural", []games.Card{card("A", "♠"), card("K", "♥")}, 21, true},
		{"two aces", []games.Card{card("A", "♠"), card("A", "♥")}, 12, true},
		{"soft twenty one", []games.Card{card("A", "♠"), card("A", "♥"), card("9", "♦")}, 21, true},
		{"demoted ace", []games.Card{card("A", "♠"), card("5", "♥"), card("10", "♦")}, 16, false},
		{"hard nineteen", []games.Card{card("10", "♠"), card("9", "♥")}, 19, false},
		{"three card twenty one", []games.Card{card("K", "♠"), card("Q", "♥"), card("A", "♦")}, 21, false},
		{"four aces", []games.Card{card("A", "♠"), card("A", "♥"), card("A", "♦"), card("8", "♣")}, 21, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, soft := games.HandValue(tt.hand)
			if value != tt.want || soft != tt.soft {
				t.Errorf("HandValue = (%d, %v), want (%d, %v)", value, soft, tt.want, tt.soft)
			}
		})
	}
}

func TestIsNatural(t *testing.T) {
	if !games.IsNatural([]games.Card{card("A", "♠"), card("K", "♥")}) {
		t.Error("Ace plus king should be a natural")
	}
	if !games.IsNatural([]games.Card{card("10", "♠"), card("A", "♥")}) {
		t.Error("Ten plus ace should be a natural")
	}
	if games.IsNatural([]games.Card{card("K", "♠"), card("Q", "♥"), card("A", "♦")}) {
		t.Error("Three cards can total 21 but are not a natural")
	}
	if games.IsNatural([]games.Card{card("10", "♠"), card("9", "♥")}) {
		t.Error("Nineteen is not a natural")
	}
}

func TestNewRoundDeals(t *testing.T) {
	game := games.NewBlackjack()

	for i := 0; i < 20; i++ {
		round := game.NewRound(100)
		if len(round.Player) != 2 || len(round.Dealer) != 2 {
			t.Fatalf("Expected two cards each, got %d/%d", len(round.Player), len(round.Dealer))
		}
		if len(round.Deck) != 48 {
			t.Fatalf("Expected 48 cards left in the deck, got %d", len(round.Deck))
		}
		if round.Bet != 100 {
			t.Fatalf("Bet not recorded: %d", round.Bet)
		}
		opening21 := games.IsNatural(round.Player) || games.IsNatural(round.Dealer)
		if round.Finished != opening21 {
			t.Fatalf("Finished flag %v inconsistent with opening hands", round.Finished)
		}
	}
}

func TestNaturalPaysThreeToTwo(t *testing.T) {
	game := games.NewBlackjack()
	round := &games.CardRound{
		Bet:      100,
		Deck:     []games.Card{card("5", "♦")},
		Player:   []games.Card{card("A", "♠"), card("K", "♥")},
		Dealer:   []games.Card{card("9", "♦"), card("8", "♣")},
		Finished: true,
	}

	result := game.Finish(round)
	if result.Payout != 250 {
		t.Errorf("Natural against a standing dealer should pay 250, got %d", result.Payout)
	}
	if outcome, _ := result.State["outcome"].(string); outcome != "blackjack win" {
		t.Errorf("Expected outcome blackjack win, got %q", outcome)
	}
	if len(round.Dealer) != 2 {
		t.Errorf("Dealer at 17 must stand, drew to %d cards", len(round.Dealer))
	}
}

func TestBothNaturalsPush(t *testing.T) {
	game := games.NewBlackjack()
	round := &games.CardRound{
		Bet:      100,
		Deck:     []games.Card{card("5", "♦")},
		Player:   []games.Card{card("A", "♠"), card("K", "♥")},
		Dealer:   []games.Card{card("A", "♦"), card("Q", "♣")},
		Finished: true,
	}

	result := game.Finish(round)
	if result.Payout != 100 {
		t.Errorf("Matching naturals should push, got payout %d", result.Payout)
	}
	if outcome, _ := result.State["outcome"].(string); outcome != "push" {
		t.Errorf("Expected outcome push, got %q", outcome)
	}
	if len(round.Dealer) != 2 {
		t.Error("Dealer must not draw when both sides open on 21")
	}
}

func TestDealerDrawsToSeventeen(t *testing.T) {
	game := games.NewBlackjack()
	round := &games.CardRound{
		Bet:    100,
		Deck:   []games.Card{card("5", "♥")},
		Player: []games.Card{card("10", "♠"), card("10", "♥")},
		Dealer: []games.Card{card("6", "♦"), card("10", "♣")},
	}
	game.Stand(round)

	result := game.Finish(round)
	if len(round.Dealer) != 3 {
		t.Fatalf("Dealer at 16 must draw, has %d cards", len(round.Dealer))
	}
	if value, _ := games.HandValue(round.Dealer); value != 21 {
		t.Fatalf("Dealer should sit on 21, got %d", value)
	}
	if result.Payout != 0 {
		t.Errorf("Player 20 against dealer 21 should pay 0, got %d", result.Payout)
	}
	if outcome, _ := result.State["outcome"].(string); outcome != "loss" {
		t.Errorf("Expected outcome loss, got %q", outcome)
	}
}

func TestDealerBustPaysDouble(t *testing.T) {
	game := games.NewBlackjack()
	round := &games.CardRound{
		Bet:    100,
		Deck:   []games.Card{card("K", "♥")},
		Player: []games.Card{card("10", "♠"), card("9", "♥")},
		Dealer: []games.Card{card("6", "♦"), card("10", "♣")},
	}
	game.Stand(round)

	result := game.Finish(round)
	if result.Payout != 200 {
		t.Errorf("Dealer bust should pay 200, got %d", result.Payout)
	}
	if outcome, _ := result.State["outcome"].(string); outcome != "dealer bust" {
		t.Errorf("Expected outcome dealer bust, got %q", outcome)
	}
}

func TestPlayerBust(t *testing.T) {
	game := games.NewBlackjack()
	round := &games.CardRound{
		Bet:    100,
		Deck:   []games.Card{card("9", "♥"), card("5", "♦")},
		Player: []games.Card{card("10", "♠"), card("10", "♥")},
		Dealer: []games.Card{card("2", "♠"), card("3", "♠")},
	}

	game.Hit(round)
	if !round.Finished {
		t.Fatal("Busting hit should finish the round")
	}

	result := game.Finish(round)
	if result.Payout != 0 {
		t.Errorf("Bust should pay 0, got %d", result.Payout)
	}
	if outcome, _ := result.State["outcome"].(string); outcome != "bust" {
		t.Errorf("Expected outcome bust, got %q", outcome)
	}
	if len(round.Dealer) != 2 {
		t.Error("Dealer must not play against a busted hand")
	}
}

func TestPush(t *testing.T) {
	game := games.NewBlackjack()
	round := &games.CardRound{
		Bet:    100,
		Player: []games.Card{card("10", "♠"), card("9", "♥")},
		Dealer: []games.Card{card("10", "♦"), card("9", "♣")},
	}
	game.Stand(round)

	result := game.Finish(round)
	if result.Payout != 100 {
		t.Errorf("Push should refund the stake, got %d", result.Payout)
	}
}

func TestDouble(t *testing.T) {
	game := games.NewBlackjack()
	round := &games.CardRound{
		Bet:    100,
		Deck:   []games.Card{card("10", "♣")},
		Player: []games.Card{card("5", "♠"), card("6", "♥")},
		Dealer: []games.Card{card("10", "♦"), card("7", "♣")},
	}

	game.Double(round)
	if round.Bet != 200 {
		t.Fatalf("Double should double the stake, got %d", round.Bet)
	}
	if !round.Doubled || !round.Finished {
		t.Fatal("Double should mark the round doubled and finished")
	}
	if len(round.Player) != 3 {
		t.Fatalf("Double draws exactly one card, player has %d", len(round.Player))
	}

	// A second double must not touch the round.
	game.Double(round)
	if round.Bet != 200 || len(round.Player) != 3 {
		t.Error("Repeat double should be a no-op")
	}

	result := game.Finish(round)
	if result.Payout != 400 {
		t.Errorf("Doubled 21 against dealer 17 should pay 400, got %d", result.Payout)
	}
	if outcome, _ := result.State["outcome"].(string); outcome != "win" {
		t.Errorf("Three-card 21 is a plain win, got %q", outcome)
	}
}

func TestActionsAfterFinishAreNoOps(t *testing.T) {
	game := games.NewBlackjack()
	round := &games.CardRound{
		Bet:    100,
		Deck:   []games.Card{card("2", "♥"), card("3", "♦")},
		Player: []games.Card{card("10", "♠"), card("9", "♥")},
		Dealer: []games.Card{card("10", "♦"), card("8", "♣")},
	}
	game.Stand(round)

	game.Hit(round)
	if len(round.Player) != 2 {
		t.Error("Hit on a finished round should not draw")
	}
	game.Double(round)
	if round.Bet != 100 {
		t.Error("Double on a finished round should not touch the stake")
	}
}

func TestAutoPlay(t *testing.T) {
	game := games.NewBlackjack()

	for i := 0; i < 20; i++ {
		result, err := game.Play(games.Round{Bet: 100})
		if err != nil {
			t.Fatalf("Play failed: %v", err)
		}
		switch result.Payout {
		case 0, 100, 200, 250:
		default:
			t.Fatalf("Auto-played round paid an impossible amount: %d", result.Payout)
		}
		if outcome, _ := result.State["outcome"].(string); outcome == "" {
			t.Fatal("Round state missing outcome")
		}
	}
}
