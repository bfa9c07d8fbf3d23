package truco

// CanJoin reports whether userId may join this game as the second player.
func (g Game) CanJoin(userId PlayerId) bool {
	return !g.State.Started && len(g.Players) == 1 && g.Players[0].ID != userId
}

// Join seats the second player. No event is emitted: the lobby observes
// this purely through the repository, per the external-interfaces
// contract (join-game auto-starts at the transport boundary).
func (g Game) Join(user Player) (Game, error) {
	if g.State.Started {
		return Game{}, ErrGameAlreadyStarted
	}
	if len(g.Players) != 1 {
		return Game{}, ErrGameFull
	}
	if g.Players[0].ID == user.ID {
		return Game{}, ErrGameFull
	}

	ng := g.clone()
	ng.Players = append(ng.Players, user)
	return ng, nil
}

// Start deals hands, zeroes match points and begins round 1. Preconditions:
// two seated players and not already started.
func (g Game) Start() (Game, error) {
	if g.State.Started {
		return Game{}, ErrGameAlreadyStarted
	}
	if len(g.Players) != 2 {
		return Game{}, ErrGameNotStarted
	}

	ng := g.clone()
	p1, p2 := ng.Players[0].ID, ng.Players[1].ID

	ng.State.Started = true
	ng.State.FirstPlayer = p1
	ng.State.PlayerTurn = p1
	ng.State.Round = 1
	ng.State.TrucoPoints = 1
	ng.State.Points = map[PlayerId]int{p1: 0, p2: 0}
	ng.State.ThrownCards = map[PlayerId][]Card{p1: nil, p2: nil}
	ng.State.Envido = newEnvidoNegotiation()
	ng.State.Truco = newTrucoNegotiation()

	hands, err := dealHands(p1, p2, g.shuffler)
	if err != nil {
		return Game{}, err
	}
	ng.State.Cards = hands

	ng.emit(StartEvent{})
	ng.emit(NextRoundEvent{
		Round:        1,
		Cards:        cloneCardMap(hands),
		NextPlayerId: p1,
	})

	return ng, nil
}
