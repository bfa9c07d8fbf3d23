// Package match is the orchestration layer described as component 5 of
// the truco package's own design: stateless glue that invokes a
// transition on behalf of a request, snapshots the prior event count,
// and hands the new tail to the transport. It is where the per-game
// serialization spec.md's concurrency model requires actually lives,
// since the core itself is pure and cannot serialize anything.
package match

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/marianogappa/truco-backend/internal/repository"
	"github.com/marianogappa/truco-backend/truco"
)

// Broadcaster is the transport's collaborator: given a game id and a
// slice of new events, push them to the connections in that room.
type Broadcaster interface {
	Broadcast(ctx context.Context, gameID int, events []truco.GameEvent)
}

// Transition is any truco.Game method shaped like the ones that return a
// derived Game (ThrowCard, CallEnvido, Start, ...), partially applied by
// the caller over its non-Game arguments.
type Transition func(truco.Game) (truco.Game, error)

// Dispatcher serializes transitions per game id, so a game never has two
// transitions racing against its persisted state, while different games
// proceed fully in parallel (spec forbids a global lock here).
type Dispatcher struct {
	store       repository.Store
	broadcaster Broadcaster
	log         *logrus.Logger
	maxPoints   int
	joinIndex   *repository.JoinableIndex

	locksMu sync.Mutex
	locks   map[int]*sync.Mutex
}

// New builds a Dispatcher. maxPoints configures the partida target every
// game it creates uses; 0 keeps truco.MaxPoints' default.
func New(store repository.Store, broadcaster Broadcaster, log *logrus.Logger, maxPoints int) *Dispatcher {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Dispatcher{
		store:       store,
		broadcaster: broadcaster,
		log:         log,
		maxPoints:   maxPoints,
		locks:       map[int]*sync.Mutex{},
	}
}

// WithJoinableIndex attaches a cross-process joinable-games index, backed
// by Redis, that CreateGame/JoinGame/ListJoinable keep in sync so
// "games-list" scales past one process holding the authoritative store.
// Absent one (the zero value, or when Redis isn't configured), every
// affected method falls back to the store alone.
func (d *Dispatcher) WithJoinableIndex(idx *repository.JoinableIndex) *Dispatcher {
	d.joinIndex = idx
	return d
}

func (d *Dispatcher) lockFor(gameID int) *sync.Mutex {
	d.locksMu.Lock()
	defer d.locksMu.Unlock()
	l, ok := d.locks[gameID]
	if !ok {
		l = &sync.Mutex{}
		d.locks[gameID] = l
	}
	return l
}

// Apply loads gameID, runs transition against it, persists the result and
// broadcasts whatever events the transition appended. On a domain error
// the stored game is untouched and nothing is broadcast.
func (d *Dispatcher) Apply(ctx context.Context, gameID int, transition Transition) (truco.Game, error) {
	lock := d.lockFor(gameID)
	lock.Lock()
	defer lock.Unlock()

	g, err := d.store.Load(ctx, gameID)
	if err != nil {
		return truco.Game{}, err
	}

	priorEventCount := len(g.Events)

	ng, err := transition(g)
	if err != nil {
		d.log.WithFields(logrus.Fields{"gameId": gameID}).WithError(err).Debug("rejected action")
		return truco.Game{}, err
	}

	saved, err := d.store.Save(ctx, ng)
	if err != nil {
		d.log.WithFields(logrus.Fields{"gameId": gameID}).WithError(err).Error("failed to persist game")
		return truco.Game{}, err
	}

	if newEvents := saved.GetNewEvents(priorEventCount); len(newEvents) > 0 && d.broadcaster != nil {
		d.broadcaster.Broadcast(ctx, saved.ID, newEvents)
	}

	return saved, nil
}

// CreateGame persists a fresh single-player Game and returns it with its
// assigned id.
func (d *Dispatcher) CreateGame(ctx context.Context, creatorID truco.PlayerId, creatorName string) (truco.Game, error) {
	var opts []truco.Option
	if d.maxPoints != 0 {
		opts = append(opts, truco.WithMaxPoints(d.maxPoints))
	}
	g := truco.New(creatorID, creatorName, opts...)
	saved, err := d.store.Save(ctx, g)
	if err != nil {
		return truco.Game{}, err
	}
	d.log.WithFields(logrus.Fields{"gameId": saved.ID, "creator": creatorID}).Info("game created")

	if d.joinIndex != nil {
		if err := d.joinIndex.Add(ctx, saved.ID); err != nil {
			d.log.WithFields(logrus.Fields{"gameId": saved.ID}).WithError(err).Warn("failed to add game to joinable index")
		}
	}

	return saved, nil
}

// JoinGame seats the second player and, per the transport contract,
// immediately starts the match.
func (d *Dispatcher) JoinGame(ctx context.Context, gameID int, user truco.Player) (truco.Game, error) {
	g, err := d.Apply(ctx, gameID, func(g truco.Game) (truco.Game, error) {
		return g.Join(user)
	})
	if err != nil {
		return truco.Game{}, err
	}

	started, err := d.Apply(ctx, gameID, func(g truco.Game) (truco.Game, error) {
		return g.Start()
	})
	if err != nil {
		return truco.Game{}, err
	}

	if d.joinIndex != nil {
		if err := d.joinIndex.Remove(ctx, gameID); err != nil {
			d.log.WithFields(logrus.Fields{"gameId": gameID}).WithError(err).Warn("failed to remove game from joinable index")
		}
	}

	return started, nil
}

func (d *Dispatcher) ThrowCard(ctx context.Context, gameID int, userID truco.PlayerId, card truco.Card) (truco.Game, error) {
	return d.Apply(ctx, gameID, func(g truco.Game) (truco.Game, error) { return g.ThrowCard(userID, card) })
}

func (d *Dispatcher) CallEnvido(ctx context.Context, gameID int, userID truco.PlayerId, call truco.EnvidoCall) (truco.Game, error) {
	return d.Apply(ctx, gameID, func(g truco.Game) (truco.Game, error) { return g.CallEnvido(userID, call) })
}

func (d *Dispatcher) AnswerEnvido(ctx context.Context, gameID int, userID truco.PlayerId, accepted bool) (truco.Game, error) {
	return d.Apply(ctx, gameID, func(g truco.Game) (truco.Game, error) { return g.AnswerEnvido(userID, accepted) })
}

func (d *Dispatcher) CallTruco(ctx context.Context, gameID int, userID truco.PlayerId, call truco.TrucoCall) (truco.Game, error) {
	return d.Apply(ctx, gameID, func(g truco.Game) (truco.Game, error) { return g.CallTruco(userID, call) })
}

func (d *Dispatcher) AnswerTruco(ctx context.Context, gameID int, userID truco.PlayerId, accepted bool) (truco.Game, error) {
	return d.Apply(ctx, gameID, func(g truco.Game) (truco.Game, error) { return g.AnswerTruco(userID, accepted) })
}

func (d *Dispatcher) ToDeck(ctx context.Context, gameID int, userID truco.PlayerId) (truco.Game, error) {
	return d.Apply(ctx, gameID, func(g truco.Game) (truco.Game, error) { return g.GoToDeck(userID) })
}

func (d *Dispatcher) PlayAgain(ctx context.Context, gameID int, userID truco.PlayerId) (truco.Game, error) {
	return d.Apply(ctx, gameID, func(g truco.Game) (truco.Game, error) { return g.PlayAgain(userID) })
}

func (d *Dispatcher) NoPlayAgain(ctx context.Context, gameID int, userID truco.PlayerId) (truco.Game, error) {
	return d.Apply(ctx, gameID, func(g truco.Game) (truco.Game, error) { return g.NoPlayAgain(userID) })
}

// ListJoinable returns every game still waiting for a second player. When a
// JoinableIndex is attached it is consulted instead of scanning the store,
// since it's the structure meant to scale that query past one process.
func (d *Dispatcher) ListJoinable(ctx context.Context) ([]truco.Game, error) {
	if d.joinIndex == nil {
		return d.store.ListJoinable(ctx)
	}

	ids, err := d.joinIndex.Members(ctx)
	if err != nil {
		return nil, err
	}
	games := make([]truco.Game, 0, len(ids))
	for _, id := range ids {
		g, err := d.store.Load(ctx, id)
		if err != nil {
			d.log.WithFields(logrus.Fields{"gameId": id}).WithError(err).Warn("joinable index referenced a game the store couldn't load")
			continue
		}
		games = append(games, g)
	}
	return games, nil
}
