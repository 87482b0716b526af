package azul

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryGameRepository(t *testing.T) {
	repo := NewInMemoryGameRepository()
	g1, _, _ := newScriptedGame(t)
	g2, _, _ := newScriptedGame(t)
	require.NoError(t, repo.Add(g1))
	require.NoError(t, repo.Add(g2))
	require.NoError(t, repo.Add(g1))
	assert.ErrorIs(t, repo.Add(nil), ErrArgumentInvalid)

	got, err := repo.GetByID(g2.ID)
	require.NoError(t, err)
	assert.Same(t, g2, got)
	assert.Equal(t, []*Game{g1, g2}, repo.List())

	_, err = repo.GetByID(uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	repo.Remove(g1.ID)
	assert.Equal(t, []*Game{g2}, repo.List())
}
