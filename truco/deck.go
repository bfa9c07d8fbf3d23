package truco

import (
	"crypto/rand"
	"encoding/binary"
	mathrand "math/rand"
)

// Shuffler is anything that can shuffle n items by repeatedly calling swap.
// math/rand.Rand already satisfies it; tests inject a seeded one to make
// dealHands deterministic.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// newDeck returns the 40 cards of the Spanish deck in a fixed order.
func newDeck() []Card {
	deck := make([]Card, 0, 40)
	for _, s := range allSuits {
		for _, n := range cardNumbers {
			deck = append(deck, Card{Suit: s, Number: n})
		}
	}
	return deck
}

// defaultShuffler returns a math/rand source seeded from a
// cryptographically secure value, so consecutive processes (and
// consecutive calls within one) never repeat a sequence.
func defaultShuffler() (Shuffler, error) {
	var seed [8]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return nil, err
	}
	return mathrand.New(mathrand.NewSource(int64(binary.BigEndian.Uint64(seed[:])))), nil
}

// dealHands deals two disjoint 3-card hands from a freshly shuffled deck.
// A nil shuffler means "use a securely-seeded default"; tests pass their
// own to make deals reproducible.
func dealHands(p1, p2 PlayerId, shuffler Shuffler) (map[PlayerId][]Card, error) {
	if shuffler == nil {
		s, err := defaultShuffler()
		if err != nil {
			return nil, err
		}
		shuffler = s
	}
	deck := newDeck()
	shuffler.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })

	return map[PlayerId][]Card{
		p1: append([]Card(nil), deck[0:3]...),
		p2: append([]Card(nil), deck[3:6]...),
	}, nil
}
