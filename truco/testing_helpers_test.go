package truco

import "testing"

// identityShuffler leaves the deck in newDeck's fixed order, making deals
// deterministic for tests that only care about mechanics, not which exact
// cards land where.
type identityShuffler struct{}

func (identityShuffler) Shuffle(n int, swap func(i, j int)) {}

func newStartedGame(t *testing.T, p1, p2 PlayerId) Game {
	t.Helper()
	g := New(p1, "alice", WithShuffler(identityShuffler{}))
	g, err := g.Join(Player{ID: p2, Name: "bob"})
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	g, err = g.Start()
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	return g
}

// withHands overrides the dealt hands directly, the way a test fixture
// sets up a known scenario without depending on deck shuffling order.
func withHands(g Game, hands map[PlayerId][]Card) Game {
	ng := g.clone()
	ng.State.Cards = cloneCardMap(hands)
	return ng
}
