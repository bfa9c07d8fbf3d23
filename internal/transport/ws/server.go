package ws

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/marianogappa/truco-backend/internal/match"
	"github.com/marianogappa/truco-backend/truco"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server wires the hub and the match dispatcher to an HTTP mux, the
// transport-level piece spec.md explicitly leaves outside the core.
type Server struct {
	hub        *Hub
	dispatcher *match.Dispatcher
	log        *logrus.Logger
}

// NewServer wires a Server around an existing Hub (so its Broadcaster can
// be handed to match.New before the Dispatcher exists) and the Dispatcher
// that already holds that Broadcaster.
func NewServer(hub *Hub, dispatcher *match.Dispatcher, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{hub: hub, dispatcher: dispatcher, log: log}
}

// Router builds the mux.Router exposing the single websocket endpoint.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/ws", s.handleUpgrade)
	return r
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	c := newClient(s.hub, conn, 0, "")
	c.log.Info("connection opened")
	go c.writePump()
	c.readPump(s.handleMessage)
}

func (s *Server) handleMessage(c *Client, data []byte) {
	var env clientEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		c.sendError("malformed message")
		return
	}

	ctx := context.Background()

	switch env.Type {
	case "register-connection":
		var p registerConnectionPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			c.sendError("malformed register-connection payload")
			return
		}
		c.UserID = p.UserID
		c.Name = p.Name
		c.log = c.log.WithField("userId", p.UserID)

	case "games-list":
		games, err := s.dispatcher.ListJoinable(ctx)
		if err != nil {
			c.sendError(err.Error())
			return
		}
		summaries := make([]gameSummary, len(games))
		for i, g := range games {
			summaries[i] = gameSummary{ID: g.ID, Name: g.Name}
		}
		c.sendEnvelope(serverEnvelope{Type: "games-list", Payload: gamesListPayload{Games: summaries}})

	case "create-game":
		var p createGamePayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			c.sendError("malformed create-game payload")
			return
		}
		g, err := s.dispatcher.CreateGame(ctx, c.UserID, p.Name)
		if err != nil {
			c.sendError(err.Error())
			return
		}
		s.hub.seat(c, g.ID)
		c.sendEnvelope(serverEnvelope{Type: "game-joined", Payload: gameJoinedPayload{GameID: g.ID}})

	case "join-game":
		var p joinGamePayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			c.sendError("malformed join-game payload")
			return
		}
		s.hub.seat(c, p.GameID)
		if _, err := s.dispatcher.JoinGame(ctx, p.GameID, truco.Player{ID: c.UserID, Name: c.Name}); err != nil {
			c.sendError(err.Error())
			return
		}
		c.sendEnvelope(serverEnvelope{Type: "game-joined", Payload: gameJoinedPayload{GameID: p.GameID}})

	case "throw-card":
		var p throwCardPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			c.sendError("malformed throw-card payload")
			return
		}
		if _, err := s.dispatcher.ThrowCard(ctx, c.GameID, c.UserID, p.Card); err != nil {
			c.sendError(err.Error())
		}

	case "envido":
		var p envidoCallPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			c.sendError("malformed envido payload")
			return
		}
		if _, err := s.dispatcher.CallEnvido(ctx, c.GameID, c.UserID, p.Call); err != nil {
			c.sendError(err.Error())
		}

	case "answer-envido":
		var p answerPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			c.sendError("malformed answer-envido payload")
			return
		}
		if _, err := s.dispatcher.AnswerEnvido(ctx, c.GameID, c.UserID, p.Accepted); err != nil {
			c.sendError(err.Error())
		}

	case "truco":
		var p trucoCallPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			c.sendError("malformed truco payload")
			return
		}
		if _, err := s.dispatcher.CallTruco(ctx, c.GameID, c.UserID, p.Call); err != nil {
			c.sendError(err.Error())
		}

	case "answer-truco":
		var p answerPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			c.sendError("malformed answer-truco payload")
			return
		}
		if _, err := s.dispatcher.AnswerTruco(ctx, c.GameID, c.UserID, p.Accepted); err != nil {
			c.sendError(err.Error())
		}

	case "to-deck":
		if _, err := s.dispatcher.ToDeck(ctx, c.GameID, c.UserID); err != nil {
			c.sendError(err.Error())
		}

	case "play-again":
		if _, err := s.dispatcher.PlayAgain(ctx, c.GameID, c.UserID); err != nil {
			c.sendError(err.Error())
		}

	case "no-play-again":
		if _, err := s.dispatcher.NoPlayAgain(ctx, c.GameID, c.UserID); err != nil {
			c.sendError(err.Error())
		}

	default:
		c.sendError("unknown message type: " + env.Type)
	}
}
