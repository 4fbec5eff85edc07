package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"floor-layout/internal/layout/editor"
	"floor-layout/internal/layout/gateway"
	"floor-layout/internal/layout/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGateway struct {
	mu      sync.Mutex
	commits []models.Update
	err     error
}

func (g *stubGateway) UpdateEntity(_ context.Context, u models.Update) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.commits = append(g.commits, u)
	return g.err
}

func (g *stubGateway) UpdateEntities(_ context.Context, updates []models.Update) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.commits = append(g.commits, updates...)
	return g.err
}

var floor = models.Floor{ID: "f1", GridSize: models.GridSize{Width: 20, Height: 20}, SnapToGrid: true}

func tables() []models.Entity {
	return []models.Entity{
		{ID: "1", FloorID: "f1", Shape: models.ShapeSquare},
		{ID: "2", FloorID: "f1", Shape: models.ShapeSquare},
	}
}

func drag(c *editor.Controller) (*models.Commit, error) {
	if err := c.PointerDown(editor.PointerEvent{Point: models.Point{X: 50, Y: 50}}); err != nil {
		return nil, err
	}
	if err := c.PointerMove(editor.PointerEvent{Point: models.Point{X: 200, Y: 200}}); err != nil {
		return nil, err
	}
	return c.PointerUp(), nil
}

func TestSessionDispatchesCommit(t *testing.T) {
	gw := &stubGateway{}
	d := gateway.NewDispatcher(gw, 0)
	m := NewSessionManager(editor.DefaultOptions(), d)
	s := m.Open(floor, tables())

	require.NoError(t, s.Do(drag))
	d.Wait()

	assert.Equal(t, []models.Update{{ID: "1", Position: models.Point{X: 200, Y: 200}}}, gw.commits)
	assert.Empty(t, s.Inbox().Drain())
}

func TestSessionKeepsOptimisticPositionOnFailure(t *testing.T) {
	gw := &stubGateway{err: errors.New("validation failed")}
	d := gateway.NewDispatcher(gw, 0)
	m := NewSessionManager(editor.DefaultOptions(), d)
	s := m.Open(floor, tables())

	require.NoError(t, s.Do(drag))
	d.Wait()

	notes := s.Inbox().Drain()
	require.Len(t, notes, 1)
	assert.Equal(t, gateway.LevelError, notes[0].Level)
	s.View(func(c *editor.Controller) {
		e, _ := c.Store().Get("1")
		assert.Equal(t, models.Point{X: 200, Y: 200}, e.Position)
	})
}

func TestSessionManager(t *testing.T) {
	m := NewSessionManager(editor.DefaultOptions(), gateway.NewDispatcher(&stubGateway{}, 0))
	a := m.Open(floor, tables())
	b := m.Open(models.Floor{ID: "f2"}, nil)
	assert.NotEqual(t, a.ID, b.ID)

	got, err := m.Get(a.ID)
	require.NoError(t, err)
	assert.Same(t, a, got)
	assert.Len(t, m.ForFloor("f1"), 1)

	require.NoError(t, m.Close(a.ID))
	_, err = m.Get(a.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, m.Close(a.ID), ErrSessionNotFound)
}

func TestInboxDropsOldest(t *testing.T) {
	b := NewInbox(3)
	for i := range 5 {
		b.Notify(gateway.Notification{Message: fmt.Sprint(i)})
	}
	items := b.Drain()
	require.Len(t, items, 3)
	assert.Equal(t, "2", items[0].Message)
	assert.Empty(t, b.Drain())
}
