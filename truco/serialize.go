package truco

import "encoding/json"

// gameWire is the JSON shape of a persisted Game: players, state and the
// event log, each event carrying its own discriminator so it can be
// replayed without the reader needing to know every type up front.
type gameWire struct {
	ID        int               `json:"id"`
	Name      string            `json:"name"`
	Players   []Player          `json:"players"`
	State     GameState         `json:"state"`
	Events    []json.RawMessage `json:"events"`
	MaxPoints int               `json:"maxPoints,omitempty"`
}

// MarshalJSON encodes the full aggregate, the shape the repository layer
// persists by id.
func (g Game) MarshalJSON() ([]byte, error) {
	events := make([]json.RawMessage, len(g.Events))
	for i, e := range g.Events {
		raw, err := SerializeEvent(e)
		if err != nil {
			return nil, err
		}
		events[i] = raw
	}
	return json.Marshal(gameWire{
		ID:        g.ID,
		Name:      g.Name,
		Players:   g.Players,
		State:     g.State,
		Events:    events,
		MaxPoints: g.maxPoints,
	})
}

// UnmarshalJSON decodes a persisted aggregate, replaying each event
// through DeserializeEvent so the closed sum type stays exhaustive.
func (g *Game) UnmarshalJSON(data []byte) error {
	var w gameWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	events := make([]GameEvent, len(w.Events))
	for i, raw := range w.Events {
		e, err := DeserializeEvent(raw)
		if err != nil {
			return err
		}
		events[i] = e
	}
	g.ID = w.ID
	g.Name = w.Name
	g.Players = w.Players
	g.State = w.State
	g.Events = events
	g.maxPoints = w.MaxPoints
	return nil
}
