package repository

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const joinableGamesKey = "truco:joinable-games"

// NewRedisClient opens a client against addr/db, the same shape as
// cambia-service's internal/cache.ConnectRedis.
func NewRedisClient(addr string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr, DB: db})
}

// JoinableIndex is a cross-process secondary index of joinable games
// backed by a Redis SET, so "games-list" scales past one process holding
// the authoritative InMemory/Postgres Store.
type JoinableIndex struct {
	rdb *redis.Client
}

func NewJoinableIndex(rdb *redis.Client) *JoinableIndex {
	return &JoinableIndex{rdb: rdb}
}

func (j *JoinableIndex) Add(ctx context.Context, gameID int) error {
	return j.rdb.SAdd(ctx, joinableGamesKey, gameID).Err()
}

func (j *JoinableIndex) Remove(ctx context.Context, gameID int) error {
	return j.rdb.SRem(ctx, joinableGamesKey, gameID).Err()
}

func (j *JoinableIndex) Members(ctx context.Context) ([]int, error) {
	raw, err := j.rdb.SMembers(ctx, joinableGamesKey).Result()
	if err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(raw))
	for _, s := range raw {
		id, err := strconv.Atoi(s)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
