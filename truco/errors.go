package truco

import "errors"

// Domain errors are a closed enumeration; offending clients get exactly one
// of these keyed to their request, and the game state is left untouched.
var (
	ErrNotYourTurn        = errors.New("truco: not your turn")
	ErrWaitingResponse    = errors.New("truco: a sub-protocol is waiting for a response")
	ErrInvalidCard        = errors.New("truco: card not in hand")
	ErrInvalidStep        = errors.New("truco: envido may only be called in step 1")
	ErrInvalidEnvidoCall  = errors.New("truco: invalid envido escalation")
	ErrInvalidTrucoCall   = errors.New("truco: invalid truco escalation")
	ErrNotWaitingResponse = errors.New("truco: no call is pending an answer")
	ErrGameAlreadyStarted = errors.New("truco: game already started")
	ErrGameNotStarted     = errors.New("truco: game not started")
	ErrGameFull           = errors.New("truco: game already has two players")
	ErrGameFinished       = errors.New("truco: game already finished")
	ErrUnknownEventType   = errors.New("truco: unknown event type")
)
