package truco

// withWinnerResult is idempotent: called after every round resolution, it
// only has an effect the first time a player's points reach the game's
// target.
func (g Game) withWinnerResult() (Game, error) {
	if g.State.Winner != nil {
		return g, nil
	}

	ids := g.PlayerIds()
	p1, p2 := ids[0], ids[1]
	pts1, pts2 := g.State.Points[p1], g.State.Points[p2]
	target := g.MaxPoints()

	if pts1 < target && pts2 < target {
		return g, nil
	}

	winner := p1
	switch {
	case pts2 > pts1:
		winner = p2
	case pts1 == pts2:
		winner = g.State.FirstPlayer // mano wins ties; impossible under regulation scoring
	}

	ng := g.clone()
	w := winner
	ng.State.Winner = &w
	ng.State.Rematch = map[PlayerId]RematchChoice{p1: RematchUndecided, p2: RematchUndecided}
	ng.emit(ResultEvent{Winner: winner, Points: clonePointsMap(ng.State.Points)})

	return ng, nil
}

// PlayAgain records that userId wants a rematch. Only valid once the match
// has a decided winner.
func (g Game) PlayAgain(userId PlayerId) (Game, error) {
	return g.setRematchChoice(userId, RematchWants)
}

// NoPlayAgain records that userId declines a rematch.
func (g Game) NoPlayAgain(userId PlayerId) (Game, error) {
	return g.setRematchChoice(userId, RematchRefuses)
}

func (g Game) setRematchChoice(userId PlayerId, choice RematchChoice) (Game, error) {
	if g.State.Winner == nil {
		return Game{}, ErrGameNotStarted
	}
	if !g.hasPlayer(userId) {
		return Game{}, ErrNotYourTurn
	}

	ng := g.clone()
	if ng.State.Rematch == nil {
		ng.State.Rematch = map[PlayerId]RematchChoice{}
	}
	ng.State.Rematch[userId] = choice
	return ng, nil
}

// RematchOutcome reports the result of rematch negotiation once both
// players have signaled; ok is false until then.
func (g Game) RematchOutcome() (bothWant bool, ok bool) {
	if g.State.Winner == nil || g.State.Rematch == nil {
		return false, false
	}
	for _, id := range g.PlayerIds() {
		if g.State.Rematch[id] == RematchUndecided {
			return false, false
		}
	}
	for _, id := range g.PlayerIds() {
		if g.State.Rematch[id] != RematchWants {
			return false, true
		}
	}
	return true, true
}
