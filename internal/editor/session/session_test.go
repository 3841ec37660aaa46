package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mjcf-editor/internal/editor/models"
	"mjcf-editor/internal/editor/store"
)

func TestOpenResolveClose(t *testing.T) {
	m := NewManager(store.Options{})

	id, st := m.Open()
	require.NotEmpty(t, id)
	assert.Equal(t, 1, m.Count())

	got, err := m.Resolve(id)
	require.NoError(t, err)
	assert.Same(t, st, got)

	require.NoError(t, m.Close(id))
	assert.Equal(t, 0, m.Count())

	_, err = m.Resolve(id)
	assert.ErrorIs(t, err, ErrUnknownSession)
	assert.ErrorIs(t, m.Close(id), ErrUnknownSession)
}

func TestSessionsAreIsolated(t *testing.T) {
	m := NewManager(store.Options{})
	_, a := m.Open()
	_, b := m.Open()

	a.AddPrimitive(models.GeomBox)
	assert.Len(t, a.Snapshot().Nodes, 1)
	assert.Empty(t, b.Snapshot().Nodes)
}

func TestLifecycleHooks(t *testing.T) {
	m := NewManager(store.Options{})
	var opened, closed []string
	m.OnLifecycle(func(id string, _ *store.Store) {
		opened = append(opened, id)
	}, func(id string) {
		closed = append(closed, id)
	})

	id, _ := m.Open()
	require.NoError(t, m.Close(id))
	assert.Equal(t, []string{id}, opened)
	assert.Equal(t, []string{id}, closed)
}
