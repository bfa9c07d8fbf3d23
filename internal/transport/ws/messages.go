package ws

import (
	"context"
	"encoding/json"

	"github.com/marianogappa/truco-backend/truco"
)

// clientEnvelope is the shape of every inbound message, named after the
// client-to-server catalog: register-connection, games-list, create-game,
// join-game, throw-card, envido, answer-envido, truco, answer-truco,
// to-deck, play-again, no-play-again.
type clientEnvelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type serverEnvelope struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type registerConnectionPayload struct {
	UserID truco.PlayerId `json:"userId"`
	Name   string         `json:"name"`
}

type createGamePayload struct {
	Name string `json:"name"`
}

type joinGamePayload struct {
	GameID int `json:"gameId"`
}

type throwCardPayload struct {
	Card truco.Card `json:"card"`
}

type envidoCallPayload struct {
	Call truco.EnvidoCall `json:"call"`
}

type answerPayload struct {
	Accepted bool `json:"accepted"`
}

type trucoCallPayload struct {
	Call truco.TrucoCall `json:"call"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type gameJoinedPayload struct {
	GameID int `json:"gameId"`
}

type gamesListPayload struct {
	Games []gameSummary `json:"games"`
}

type gameSummary struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type newEventsPayload struct {
	GameID int               `json:"gameId"`
	Events []json.RawMessage `json:"events"`
}

func (c *Client) sendEnvelope(env serverEnvelope) {
	data, err := json.Marshal(env)
	if err != nil {
		c.log.WithError(err).Error("failed to marshal outbound envelope")
		return
	}
	select {
	case c.send <- data:
	default:
		c.log.Warn("dropping outbound envelope, send buffer full")
	}
}

func (c *Client) sendError(message string) {
	c.sendEnvelope(serverEnvelope{Type: "error", Payload: errorPayload{Message: message}})
}

// hubBroadcaster adapts Hub to match.Broadcaster, encoding each new event
// tail as one new-events envelope per connection in the room.
type hubBroadcaster struct {
	hub *Hub
}

// NewBroadcaster exposes hub as a match.Broadcaster, so it can be handed
// to match.New before the Dispatcher (and therefore the Server) exists.
func NewBroadcaster(hub *Hub) *hubBroadcaster {
	return &hubBroadcaster{hub: hub}
}

// redactForRecipient strips NextRoundEvent.Cards down to recipient's own
// hand before it goes out over the wire. Per spec.md §4.5/§6, the cards
// map is dealt server-side for both players but a connection must never
// see its opponent's hand.
func redactForRecipient(e truco.GameEvent, recipient truco.PlayerId) truco.GameEvent {
	nr, ok := e.(truco.NextRoundEvent)
	if !ok {
		return e
	}
	nr.Cards = map[truco.PlayerId][]truco.Card{recipient: nr.Cards[recipient]}
	return nr
}

func (b *hubBroadcaster) Broadcast(_ context.Context, gameID int, events []truco.GameEvent) {
	b.hub.sendPerClient(gameID, func(c *Client) []byte {
		wire := make([]json.RawMessage, len(events))
		for i, e := range events {
			raw, err := truco.SerializeEvent(redactForRecipient(e, c.UserID))
			if err != nil {
				b.hub.log.WithError(err).Error("failed to serialize event for broadcast")
				return nil
			}
			wire[i] = raw
		}
		data, err := json.Marshal(serverEnvelope{
			Type:    "new-events",
			Payload: newEventsPayload{GameID: gameID, Events: wire},
		})
		if err != nil {
			b.hub.log.WithError(err).Error("failed to marshal new-events envelope")
			return nil
		}
		return data
	})
}
