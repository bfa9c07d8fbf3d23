package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marianogappa/truco-backend/truco"
)

// Postgres is a Store that keeps the durable copy of every game as a JSON
// blob keyed by id, grounded on cambia-service's internal/database
// pgxpool.New(ctx, os.Getenv("DATABASE_URL")) wiring.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres opens a pool against databaseURL and ensures the backing
// table exists.
func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if _, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS games (
			id SERIAL PRIMARY KEY,
			data JSONB NOT NULL
		)
	`); err != nil {
		pool.Close()
		return nil, err
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Close() {
	p.pool.Close()
}

func (p *Postgres) Load(ctx context.Context, id int) (truco.Game, error) {
	var data []byte
	err := p.pool.QueryRow(ctx, `SELECT data FROM games WHERE id = $1`, id).Scan(&data)
	if err != nil {
		return truco.Game{}, ErrNotFound
	}
	var g truco.Game
	if err := json.Unmarshal(data, &g); err != nil {
		return truco.Game{}, err
	}
	return g, nil
}

func (p *Postgres) Save(ctx context.Context, g truco.Game) (truco.Game, error) {
	if g.ID == 0 {
		data, err := json.Marshal(g)
		if err != nil {
			return truco.Game{}, err
		}
		if err := p.pool.QueryRow(ctx,
			`INSERT INTO games (data) VALUES ($1) RETURNING id`, data,
		).Scan(&g.ID); err != nil {
			return truco.Game{}, err
		}
	}

	data, err := json.Marshal(g)
	if err != nil {
		return truco.Game{}, err
	}
	if _, err := p.pool.Exec(ctx,
		`UPDATE games SET data = $1 WHERE id = $2`, data, g.ID,
	); err != nil {
		return truco.Game{}, err
	}
	return g, nil
}

func (p *Postgres) ListJoinable(ctx context.Context) ([]truco.Game, error) {
	rows, err := p.pool.Query(ctx, `SELECT data FROM games WHERE data->'state'->>'started' = 'false'`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var joinable []truco.Game
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var g truco.Game
		if err := json.Unmarshal(data, &g); err != nil {
			return nil, err
		}
		if len(g.Players) == 1 {
			joinable = append(joinable, g)
		}
	}
	return joinable, rows.Err()
}
