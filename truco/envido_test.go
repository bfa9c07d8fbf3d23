package truco

import "testing"

func TestScenarioHappyEnvidoDecline(t *testing.T) {
	g := newStartedGame(t, 1, 2)

	g, err := g.CallEnvido(1, Envido)
	if err != nil {
		t.Fatalf("call envido: %v", err)
	}
	g, err = g.AnswerEnvido(2, false)
	if err != nil {
		t.Fatalf("answer envido: %v", err)
	}

	if g.State.Points[1] != 1 || g.State.Points[2] != 0 {
		t.Fatalf("expected points {1:1, 2:0}, got %v", g.State.Points)
	}
	if g.State.PlayerTurn != 1 {
		t.Fatalf("expected turn to return to player 1, got %v", g.State.PlayerTurn)
	}

	wantTypes := []EventType{EventStart, EventNextRound, EventEnvidoCall, EventEnvidoDeclined}
	assertEventTypes(t, g.Events, wantTypes)
}

func TestScenarioEnvidoChainAccepted(t *testing.T) {
	g := newStartedGame(t, 1, 2)
	g = withHands(g, map[PlayerId][]Card{
		1: {{Oro, 6}, {Oro, 5}, {Espada, 1}},  // envido 31
		2: {{Basto, 7}, {Basto, 6}, {Copa, 1}}, // envido 33
	})

	g, err := g.CallEnvido(1, Envido)
	if err != nil {
		t.Fatalf("p1 envido: %v", err)
	}
	g, err = g.CallEnvido(2, Envido)
	if err != nil {
		t.Fatalf("p2 envido: %v", err)
	}
	g, err = g.CallEnvido(1, RealEnvido)
	if err != nil {
		t.Fatalf("p1 real envido: %v", err)
	}
	g, err = g.AnswerEnvido(2, true)
	if err != nil {
		t.Fatalf("p2 accept: %v", err)
	}

	if g.State.Points[2] != 7 {
		t.Fatalf("expected winner p2 awarded 7 points, got %v", g.State.Points)
	}
	if g.State.Points[1] != 0 {
		t.Fatalf("expected loser p1 awarded 0, got %v", g.State.Points)
	}
}

func TestScenarioFaltaEnvidoPastThreshold(t *testing.T) {
	g := newStartedGame(t, 1, 2)
	g = g.clone()
	g.State.Points = map[PlayerId]int{1: 14, 2: 10}
	g = withHands(g, map[PlayerId][]Card{
		1: {{Oro, 4}, {Oro, 2}, {Espada, 4}},   // mano, envido 26
		2: {{Basto, 7}, {Basto, 6}, {Copa, 1}}, // envido 33, a clean win
	})

	g, err := g.CallEnvido(1, FaltaEnvido)
	if err != nil {
		t.Fatalf("falta envido: %v", err)
	}
	g, err = g.AnswerEnvido(2, true)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}

	if g.State.Points[2] != 10+16 || g.State.Points[1] != 14 {
		t.Fatalf("expected opponent to gain 30-14=16 points, got %v", g.State.Points)
	}
}

func TestIsValidEnvidoCallLadder(t *testing.T) {
	cases := []struct {
		calls []EnvidoCall
		call  EnvidoCall
		want  bool
	}{
		{nil, Envido, true},
		{nil, RealEnvido, true},
		{nil, FaltaEnvido, true},
		{[]EnvidoCall{Envido}, Envido, true},
		{[]EnvidoCall{Envido, Envido}, Envido, false},
		{[]EnvidoCall{Envido}, RealEnvido, true},
		{[]EnvidoCall{Envido}, FaltaEnvido, true},
		{[]EnvidoCall{RealEnvido}, FaltaEnvido, true},
		{[]EnvidoCall{RealEnvido}, Envido, false},
		{[]EnvidoCall{FaltaEnvido}, Envido, false},
		{[]EnvidoCall{FaltaEnvido}, RealEnvido, false},
	}
	for _, c := range cases {
		got := isValidEnvidoCall(c.calls, c.call)
		if got != c.want {
			t.Errorf("isValidEnvidoCall(%v, %v) = %v, want %v", c.calls, c.call, got, c.want)
		}
	}
}

func assertEventTypes(t *testing.T, events []GameEvent, want []EventType) {
	t.Helper()
	if len(events) != len(want) {
		t.Fatalf("expected %d events, got %d: %v", len(want), len(events), events)
	}
	for i, e := range events {
		if e.Type() != want[i] {
			t.Fatalf("event %d: expected %v, got %v", i, want[i], e.Type())
		}
	}
}
