package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marianogappa/truco-backend/internal/match"
	"github.com/marianogappa/truco-backend/internal/repository"
	"github.com/marianogappa/truco-backend/truco"
)

func newTestServer() *Server {
	hub := NewHub(nil)
	store := repository.NewInMemory()
	d := match.New(store, NewBroadcaster(hub), nil, 0)
	return NewServer(hub, d, nil)
}

func sendAndRecv(t *testing.T, s *Server, c *Client, msgType string, payload interface{}) serverEnvelope {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	s.handleMessage(c, mustMarshal(t, clientEnvelope{Type: msgType, Payload: raw}))
	return recvEnvelope(t, c)
}

func recvEnvelope(t *testing.T, c *Client) serverEnvelope {
	t.Helper()
	select {
	case data := <-c.send:
		var env serverEnvelope
		require.NoError(t, json.Unmarshal(data, &env))
		return env
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for response envelope")
		return serverEnvelope{}
	}
}

func decodePayload(t *testing.T, env serverEnvelope, v interface{}) {
	t.Helper()
	raw, err := json.Marshal(env.Payload)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, v))
}

func mustMarshal(t *testing.T, v interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

// decodeNextRoundCards finds the NEXT_ROUND event among a new-events
// envelope's payload and returns its (already on-the-wire, possibly
// redacted) Cards map.
func decodeNextRoundCards(t *testing.T, env serverEnvelope) map[truco.PlayerId][]truco.Card {
	t.Helper()
	require.Equal(t, "new-events", env.Type)
	var payload newEventsPayload
	decodePayload(t, env, &payload)
	for _, raw := range payload.Events {
		e, err := truco.DeserializeEvent(raw)
		require.NoError(t, err)
		if nr, ok := e.(truco.NextRoundEvent); ok {
			return nr.Cards
		}
	}
	t.Fatal("no NEXT_ROUND event found in envelope")
	return nil
}

func TestCreateGameFlowReturnsGameJoined(t *testing.T) {
	s := newTestServer()
	c := newClient(s.hub, nil, 1, "alice")

	env := sendAndRecv(t, s, c, "create-game", createGamePayload{Name: "alice's table"})
	assert.Equal(t, "game-joined", env.Type)

	var payload gameJoinedPayload
	decodePayload(t, env, &payload)
	assert.NotZero(t, payload.GameID)
	assert.Equal(t, payload.GameID, c.GameID)
}

func TestUnknownMessageTypeSendsError(t *testing.T) {
	s := newTestServer()
	c := newClient(s.hub, nil, 1, "alice")

	env := sendAndRecv(t, s, c, "not-a-real-message", struct{}{})
	assert.Equal(t, "error", env.Type)
}

func TestJoinGameSeatsClientAndBroadcastsStart(t *testing.T) {
	s := newTestServer()
	host := newClient(s.hub, nil, 1, "alice")
	guest := newClient(s.hub, nil, 2, "bob")

	createEnv := sendAndRecv(t, s, host, "create-game", createGamePayload{Name: "table"})
	var created gameJoinedPayload
	decodePayload(t, createEnv, &created)

	s.handleMessage(guest, mustMarshal(t, clientEnvelope{
		Type:    "join-game",
		Payload: mustMarshal(t, joinGamePayload{GameID: created.GameID}),
	}))

	// The guest is seated before Join/Start run, so it is in the room for
	// the Start broadcast, same as the host; the guest then additionally
	// gets its own game-joined ack once the call returns.
	hostEnv := recvEnvelope(t, host)
	assert.Equal(t, "new-events", hostEnv.Type)

	guestNewEvents := recvEnvelope(t, guest)
	assert.Equal(t, "new-events", guestNewEvents.Type)

	guestJoined := recvEnvelope(t, guest)
	assert.Equal(t, "game-joined", guestJoined.Type)
	var joined gameJoinedPayload
	decodePayload(t, guestJoined, &joined)
	assert.Equal(t, created.GameID, joined.GameID)
	assert.Equal(t, created.GameID, guest.GameID)
}

func TestNewEventsBroadcastRedactsOpponentHand(t *testing.T) {
	s := newTestServer()
	host := newClient(s.hub, nil, 1, "alice")
	guest := newClient(s.hub, nil, 2, "bob")

	createEnv := sendAndRecv(t, s, host, "create-game", createGamePayload{Name: "table"})
	var created gameJoinedPayload
	decodePayload(t, createEnv, &created)

	s.handleMessage(guest, mustMarshal(t, clientEnvelope{
		Type:    "join-game",
		Payload: mustMarshal(t, joinGamePayload{GameID: created.GameID}),
	}))

	hostCards := decodeNextRoundCards(t, recvEnvelope(t, host))
	require.Len(t, hostCards, 1)
	hostHand, ok := hostCards[host.UserID]
	require.True(t, ok, "host must see its own hand")
	assert.Len(t, hostHand, 3)
	_, sawGuestHand := hostCards[guest.UserID]
	assert.False(t, sawGuestHand, "host must never receive the opponent's hand")

	guestCards := decodeNextRoundCards(t, recvEnvelope(t, guest))
	require.Len(t, guestCards, 1)
	guestHand, ok := guestCards[guest.UserID]
	require.True(t, ok, "guest must see its own hand")
	assert.Len(t, guestHand, 3)
	_, sawHostHand := guestCards[host.UserID]
	assert.False(t, sawHostHand, "guest must never receive the opponent's hand")
}
