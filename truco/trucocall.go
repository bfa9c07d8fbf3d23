package truco

// CallTruco opens or escalates the truco sub-protocol. Its own
// waitingResponse does not block a further escalation: raising over a
// pending call implicitly accepts it, which is why only the envido
// response precondition applies here (the Envido.WaitingResponse check
// below, rather than checkNotWaiting).
func (g Game) CallTruco(userId PlayerId, call TrucoCall) (Game, error) {
	if err := g.checkTurn(userId); err != nil {
		return Game{}, err
	}
	if g.State.Envido.WaitingResponse {
		return Game{}, ErrWaitingResponse
	}
	if err := g.checkPlayable(); err != nil {
		return Game{}, err
	}
	if g.State.Truco.Level != "" && !g.State.Truco.WaitingResponse && g.State.Truco.Caller == userId {
		// An accepted call only escalates at the opponent's initiative; the
		// caller regaining the turn to play a card must not let them raise
		// their own standing call.
		return Game{}, ErrInvalidTrucoCall
	}

	expected, ok := nextTrucoCall(g.State.Truco.Level)
	if !ok || call != expected {
		return Game{}, ErrInvalidTrucoCall
	}

	ng := g.clone()
	if ng.State.Truco.WaitingResponse {
		// Raising over a pending call implicitly accepts it at its value.
		ng.State.TrucoPoints = trucoCallPoints(ng.State.Truco.Level)
	}
	ng.State.Truco.Level = call
	ng.State.Truco.Caller = userId
	ng.State.Truco.WaitingResponse = true
	ng.State.PlayerTurn = ng.OpponentOf(userId)

	ng.emit(TrucoCallEvent{Call: call, Caller: userId})
	return ng, nil
}

// AnswerTruco resolves the pending truco call.
func (g Game) AnswerTruco(userId PlayerId, accepted bool) (Game, error) {
	if err := g.checkTurn(userId); err != nil {
		return Game{}, err
	}
	if !g.State.Truco.WaitingResponse {
		return Game{}, ErrNotWaitingResponse
	}

	pendingCall := g.State.Truco.Level
	ng := g.clone()

	if !accepted {
		ng.emit(TrucoDeclineEvent{DeclinedBy: userId, Call: pendingCall})
		return ng.setRoundWinner(ng.State.Truco.Caller)
	}

	ng.State.TrucoPoints = trucoCallPoints(pendingCall)
	ng.State.Truco.WaitingResponse = false
	ng.State.PlayerTurn = ng.State.Truco.Caller

	ng.emit(TrucoAcceptEvent{AcceptedBy: userId, Call: pendingCall})
	return ng, nil
}
