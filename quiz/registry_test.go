package quiz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	src := newMemorySource(card("a", "A cat sleeps.", "g"))
	e := newTestEngine(src)
	reg := NewRegistry()

	s, err := e.Start(context.Background(), "g")
	require.NoError(t, err)
	reg.Put(s)
	assert.Equal(t, 1, reg.Len())

	got, err := reg.Get(s.ID())
	require.NoError(t, err)
	assert.Same(t, s, got)

	_, err = reg.Get("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	next, err := s.Restart(context.Background())
	require.NoError(t, err)
	reg.Replace(s.ID(), next)
	assert.Equal(t, 1, reg.Len())
	_, err = reg.Get(s.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)

	edited := src.card("a")
	edited.Favorite = true
	assert.Equal(t, 1, reg.Refresh(edited))
	assert.True(t, next.View().Favorite)

	removed, err := reg.Remove(next.ID())
	require.NoError(t, err)
	assert.Same(t, next, removed)
	assert.Zero(t, reg.Len())
	_, err = reg.Remove(next.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
