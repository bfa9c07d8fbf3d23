package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marianogappa/truco-backend/truco"
)

func TestInMemorySaveAssignsIDOnFirstSave(t *testing.T) {
	s := NewInMemory()
	g := truco.New(1, "alice")
	require.Zero(t, g.ID)

	saved, err := s.Save(context.Background(), g)
	require.NoError(t, err)
	assert.NotZero(t, saved.ID)

	loaded, err := s.Load(context.Background(), saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, loaded.ID)
	assert.Equal(t, "alice", loaded.Players[0].Name)
}

func TestInMemoryLoadUnknownIDReturnsErrNotFound(t *testing.T) {
	s := NewInMemory()
	_, err := s.Load(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInMemoryListJoinableExcludesStartedAndFullGames(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()

	unstarted, err := s.Save(ctx, truco.New(1, "alice"))
	require.NoError(t, err)

	full := truco.New(2, "bob")
	full, err = full.Join(truco.Player{ID: 3, Name: "carol"})
	require.NoError(t, err)
	_, err = s.Save(ctx, full)
	require.NoError(t, err)

	joinable, err := s.ListJoinable(ctx)
	require.NoError(t, err)
	require.Len(t, joinable, 1)
	assert.Equal(t, unstarted.ID, joinable[0].ID)
}

func TestInMemorySaveOverwritesExistingID(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()

	g, err := s.Save(ctx, truco.New(1, "alice"))
	require.NoError(t, err)

	g, err = g.Join(truco.Player{ID: 2, Name: "bob"})
	require.NoError(t, err)
	_, err = s.Save(ctx, g)
	require.NoError(t, err)

	loaded, err := s.Load(ctx, g.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.Players, 2)
}
