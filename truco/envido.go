package truco

// CallEnvido opens or escalates the envido sub-protocol. Only legal in
// step 1, i.e. while the first trick is not yet complete; the player due
// to answer a pending envido call may raise it instead.
func (g Game) CallEnvido(userId PlayerId, call EnvidoCall) (Game, error) {
	if err := g.checkTurn(userId); err != nil {
		return Game{}, err
	}
	if g.State.Truco.WaitingResponse {
		return Game{}, ErrWaitingResponse
	}
	if err := g.checkPlayable(); err != nil {
		return Game{}, err
	}
	if g.step() != 1 {
		return Game{}, ErrInvalidStep
	}
	if !isValidEnvidoCall(g.State.Envido.Calls, call) {
		return Game{}, ErrInvalidEnvidoCall
	}

	ng := g.clone()
	if len(ng.State.Envido.Calls) == 0 {
		ng.State.Envido.FirstCaller = userId
	}
	ng.State.Envido.Calls = append(ng.State.Envido.Calls, call)
	ng.State.Envido.LastCaller = userId
	ng.State.Envido.WaitingResponse = true
	ng.State.PlayerTurn = ng.OpponentOf(userId)

	ng.emit(EnvidoCallEvent{Call: call, Caller: userId})
	return ng, nil
}

// isValidEnvidoCall checks call against the escalation ladder implied by
// calls made so far this round.
func isValidEnvidoCall(calls []EnvidoCall, call EnvidoCall) bool {
	if len(calls) == 0 {
		return call == Envido || call == RealEnvido || call == FaltaEnvido
	}
	last := calls[len(calls)-1]
	switch last {
	case Envido:
		if call == Envido {
			// A second ENVIDO is legal, but never a third.
			count := 0
			for _, c := range calls {
				if c == Envido {
					count++
				}
			}
			return count < 2
		}
		return call == RealEnvido || call == FaltaEnvido
	case RealEnvido:
		return call == FaltaEnvido
	default: // FaltaEnvido
		return false
	}
}

// AnswerEnvido resolves a pending envido call, either by acceptance or
// decline.
func (g Game) AnswerEnvido(userId PlayerId, accepted bool) (Game, error) {
	if err := g.checkTurn(userId); err != nil {
		return Game{}, err
	}
	if !g.State.Envido.WaitingResponse {
		return Game{}, ErrNotWaitingResponse
	}

	ng := g.clone()
	winner, awarded := analyzeEnvido(ng, accepted)

	ng.State.Points[winner] += awarded
	ng.State.Envido.WaitingResponse = false
	ng.State.Envido.AcceptedBy = userId
	ng.State.Envido.Accepted = accepted
	ng.State.Envido.Resolved = true
	ng.State.Envido.Winner = winner
	ng.State.Envido.PlayersPoints = map[PlayerId]int{winner: awarded, ng.OpponentOf(winner): 0}
	ng.State.PlayerTurn = ng.State.Envido.FirstCaller

	if accepted {
		ng.emit(EnvidoAcceptedEvent{AcceptedBy: userId, Points: clonePointsMap(ng.State.Points)})
	} else {
		ng.emit(EnvidoDeclinedEvent{DeclinedBy: userId, Points: clonePointsMap(ng.State.Points)})
	}

	return ng.withWinnerResult()
}

// analyzeEnvido computes the winner and the points to award, without
// mutating g.
func analyzeEnvido(g Game, accepted bool) (winner PlayerId, awarded int) {
	if !accepted {
		return g.State.Envido.LastCaller, len(g.State.Envido.Calls)
	}

	ids := g.PlayerIds()
	p1, p2 := ids[0], ids[1]
	v1 := envidoValue(allEnvidoCards(g, p1))
	v2 := envidoValue(allEnvidoCards(g, p2))

	switch {
	case v1 > v2:
		winner = p1
	case v2 > v1:
		winner = p2
	default:
		winner = g.State.FirstPlayer
	}

	loser := g.OpponentOf(winner)
	loserPoints := g.State.Points[loser]

	total := 0
	for _, c := range g.State.Envido.Calls {
		switch c {
		case Envido:
			total += 2
		case RealEnvido:
			total += 3
		case FaltaEnvido:
			// Falta Envido's payout ceiling is conventionally double the
			// match target (the historical "a 30" envido scale even in a
			// shortened "a 15" match); since the match always ends once a
			// player reaches the target, loserPoints < g.MaxPoints() always
			// holds here.
			total += 2*g.MaxPoints() - loserPoints
		}
	}
	return winner, total
}

// allEnvidoCards is a player's full six-card universe: cards still held
// plus cards already thrown this round.
func allEnvidoCards(g Game, player PlayerId) []Card {
	cards := append([]Card(nil), g.State.Cards[player]...)
	return append(cards, g.State.ThrownCards[player]...)
}
