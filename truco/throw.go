package truco

// ThrowCard plays a card face-up from the caller's hand to the table.
func (g Game) ThrowCard(userId PlayerId, card Card) (Game, error) {
	if err := g.checkTurn(userId); err != nil {
		return Game{}, err
	}
	if err := g.checkNotWaiting(); err != nil {
		return Game{}, err
	}
	if err := g.checkPlayable(); err != nil {
		return Game{}, err
	}

	idx := indexOfCard(g.State.Cards[userId], card)
	if idx < 0 {
		return Game{}, ErrInvalidCard
	}

	ng := g.clone()
	hand := ng.State.Cards[userId]
	ng.State.Cards[userId] = append(append([]Card(nil), hand[:idx]...), hand[idx+1:]...)
	ng.State.ThrownCards[userId] = append(ng.State.ThrownCards[userId], card)

	ng.setNextTurnPlayer()
	ng.emit(ThrowCardEvent{PlayerId: userId, Card: card, NextPlayerId: ng.State.PlayerTurn})

	return ng.withRoundWinnerValidation()
}

func indexOfCard(hand []Card, card Card) int {
	for i, c := range hand {
		if c == card {
			return i
		}
	}
	return -1
}

// setNextTurnPlayer is invoked after every card throw. When the trick is
// complete (both players have thrown the same count), the lead passes to
// the trick's winner, or on a parda the turn passes from the player who
// just threw to the other one; otherwise whoever has thrown fewer cards
// plays next.
func (g *Game) setNextTurnPlayer() {
	ids := g.PlayerIds()
	p1, p2 := ids[0], ids[1]
	n1, n2 := len(g.State.ThrownCards[p1]), len(g.State.ThrownCards[p2])

	if n1 != n2 {
		if n1 < n2 {
			g.State.PlayerTurn = p1
		} else {
			g.State.PlayerTurn = p2
		}
		return
	}

	// Trick complete: find its winner, if any.
	trickIdx := n1 - 1
	if trickIdx < 0 {
		return
	}
	c1, c2 := g.State.ThrownCards[p1][trickIdx], g.State.ThrownCards[p2][trickIdx]
	v1, v2 := cardTrucoValue(c1), cardTrucoValue(c2)
	switch {
	case v1 > v2:
		g.State.PlayerTurn = p1
	case v2 > v1:
		g.State.PlayerTurn = p2
	default: // parda: the player who led this trick leads again
		g.State.PlayerTurn = g.OpponentOf(g.State.PlayerTurn)
	}
}

// roundWinner consults the Truco trick-taking rules and returns the round
// winner, or nil if the round is still undecided.
func roundWinner(p1, p2, mano PlayerId, thrown map[PlayerId][]Card) *PlayerId {
	t1, t2 := thrown[p1], thrown[p2]
	n := len(t1)
	if len(t2) < n {
		n = len(t2)
	}
	if n == 0 {
		return nil
	}

	results := make([]PlayerId, n)
	isParda := make([]bool, n)
	for i := 0; i < n; i++ {
		v1, v2 := cardTrucoValue(t1[i]), cardTrucoValue(t2[i])
		switch {
		case v1 > v2:
			results[i] = p1
		case v2 > v1:
			results[i] = p2
		default:
			isParda[i] = true
		}
	}

	winsP1, winsP2 := 0, 0
	var firstDecisive PlayerId
	haveFirstDecisive := false
	for i := 0; i < n; i++ {
		if isParda[i] {
			continue
		}
		if results[i] == p1 {
			winsP1++
		} else {
			winsP2++
		}
		if !haveFirstDecisive {
			firstDecisive, haveFirstDecisive = results[i], true
		}
	}
	if winsP1 >= 2 {
		return &p1
	}
	if winsP2 >= 2 {
		return &p2
	}

	if n == 2 && haveFirstDecisive && winsP1+winsP2 == 1 {
		// One trick decisive, the other parda: the parda doesn't give
		// either side a second win, so the decisive trick's winner takes
		// the round without needing a third card from either player.
		w := firstDecisive
		return &w
	}

	if n < 3 {
		// At most one decisive trick and/or pardas so far: undecided.
		return nil
	}

	// All three tricks played, nobody reached two outright wins.
	if isParda[2] {
		if haveFirstDecisive {
			w := firstDecisive
			return &w
		}
		w := mano
		return &w
	}
	// A decisive third trick that gives nobody a second win follows two
	// pardas, so it is the only decisive trick and its winner takes the
	// round.
	if haveFirstDecisive {
		w := firstDecisive
		return &w
	}
	w := mano
	return &w
}

// withRoundWinnerValidation is called after every card throw; if the round
// is now decided, it resolves it.
func (g Game) withRoundWinnerValidation() (Game, error) {
	ids := g.PlayerIds()
	winner := roundWinner(ids[0], ids[1], g.State.FirstPlayer, g.State.ThrownCards)
	if winner == nil {
		return g, nil
	}
	return g.setRoundWinner(*winner)
}

// setRoundWinner awards the round's trucoPoints to winner and advances the
// match (next round, or match end).
func (g Game) setRoundWinner(winner PlayerId) (Game, error) {
	ng := g.clone()
	ng.State.Points[winner] += ng.State.TrucoPoints
	ng.emit(RoundResultEvent{Winner: winner, Points: clonePointsMap(ng.State.Points)})
	return ng.withNextRoundOrWin()
}

// withNextRoundOrWin checks for a match winner; absent one, it deals the
// next round.
func (g Game) withNextRoundOrWin() (Game, error) {
	if decided, err := g.withWinnerResult(); err != nil {
		return Game{}, err
	} else if decided.State.Winner != nil {
		return decided, nil
	}

	ng := g.clone()
	ids := ng.PlayerIds()
	p1, p2 := ids[0], ids[1]

	ng.State.Round++
	ng.State.FirstPlayer = ng.OpponentOf(ng.State.FirstPlayer)
	ng.State.PlayerTurn = ng.State.FirstPlayer
	ng.State.ThrownCards = map[PlayerId][]Card{p1: nil, p2: nil}
	ng.State.TrucoPoints = 1
	ng.State.Envido = newEnvidoNegotiation()
	ng.State.Truco = newTrucoNegotiation()

	hands, err := dealHands(p1, p2, g.shuffler)
	if err != nil {
		return Game{}, err
	}
	ng.State.Cards = hands

	ng.emit(NextRoundEvent{
		Round:        ng.State.Round,
		Cards:        cloneCardMap(hands),
		NextPlayerId: ng.State.PlayerTurn,
	})

	return ng, nil
}

// GoToDeck forfeits the round to the opponent at the current trucoPoints.
func (g Game) GoToDeck(userId PlayerId) (Game, error) {
	if err := g.checkTurn(userId); err != nil {
		return Game{}, err
	}
	if err := g.checkNotWaiting(); err != nil {
		return Game{}, err
	}
	if err := g.checkPlayable(); err != nil {
		return Game{}, err
	}

	ng := g.clone()
	ng.emit(ToDeckEvent{PlayerId: userId})
	return ng.setRoundWinner(ng.OpponentOf(userId))
}

func (g Game) checkTurn(userId PlayerId) error {
	if g.State.PlayerTurn != userId {
		return ErrNotYourTurn
	}
	return nil
}

func (g Game) checkNotWaiting() error {
	if g.State.Envido.WaitingResponse || g.State.Truco.WaitingResponse {
		return ErrWaitingResponse
	}
	return nil
}

// checkPlayable guards every player action against a game that hasn't
// started yet or has already been decided.
func (g Game) checkPlayable() error {
	if !g.State.Started {
		return ErrGameNotStarted
	}
	if g.State.Winner != nil {
		return ErrGameFinished
	}
	return nil
}
