package services_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"fantasy-casino-backend/internal/games"
	"fantasy-casino-backend/internal/services"
)

func TestSessionStoreLifecycle(t *testing.T) {
	store := services.NewSessionStore()

	if _, err := store.Get(7); !errors.Is(err, services.ErrNoActiveRound) {
		t.Fatalf("get without session: err = %v, want ErrNoActiveRound", err)
	}

	round := &games.CardRound{Bet: 100}
	session, err := store.Put(7, round)
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if session.ID == "" || session.UserID != 7 {
		t.Fatalf("session = %+v", session)
	}

	if _, err := store.Put(7, &games.CardRound{Bet: 50}); !errors.Is(err, services.ErrRoundInProgress) {
		t.Fatalf("second put: err = %v, want ErrRoundInProgress", err)
	}

	got, err := store.Get(7)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Round != round {
		t.Fatal("get returned a different round")
	}

	store.End(7)
	if _, err := store.Get(7); !errors.Is(err, services.ErrNoActiveRound) {
		t.Fatalf("get after end: err = %v, want ErrNoActiveRound", err)
	}

	// A fresh round can open once the old one ended.
	if _, err := store.Put(7, &games.CardRound{Bet: 50}); err != nil {
		t.Fatalf("put after end: %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("len = %d, want 1", store.Len())
	}
}

func TestSessionStoreStaleUserIDs(t *testing.T) {
	store := services.NewSessionStore()

	fresh, err := store.Put(1, &games.CardRound{Bet: 100})
	if err != nil {
		t.Fatalf("put fresh: %v", err)
	}
	stale, err := store.Put(2, &games.CardRound{Bet: 100})
	if err != nil {
		t.Fatalf("put stale: %v", err)
	}
	stale.StartedAt = time.Now().Add(-time.Hour)

	ids := store.StaleUserIDs(time.Now().Add(-30 * time.Minute))
	if len(ids) != 1 || ids[0] != 2 {
		t.Fatalf("stale ids = %v, want [2]", ids)
	}
	_ = fresh
}

func TestSessionStoreWithUserSerializes(t *testing.T) {
	store := services.NewSessionStore()

	var counter int
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.WithUser(1, func() error {
				counter++
				return nil
			})
		}()
	}
	wg.Wait()

	if counter != 50 {
		t.Fatalf("counter = %d, want 50", counter)
	}
}

func TestSessionStoreWithUserReturnsError(t *testing.T) {
	store := services.NewSessionStore()

	want := errors.New("boom")
	if err := store.WithUser(1, func() error { return want }); !errors.Is(err, want) {
		t.Fatalf("err = %v, want %v", err, want)
	}
}
