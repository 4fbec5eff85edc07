package gateway

import (
	"context"
	"errors"
	"sync"
	"testing"

	"floor-layout/internal/layout/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	mu     sync.Mutex
	single []models.Update
	batch  [][]models.Update
	err    error
}

func (g *fakeGateway) UpdateEntity(_ context.Context, u models.Update) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.single = append(g.single, u)
	return g.err
}

func (g *fakeGateway) UpdateEntities(_ context.Context, updates []models.Update) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.batch = append(g.batch, updates)
	return g.err
}

type recordingNotifier struct {
	mu    sync.Mutex
	items []Notification
}

func (n *recordingNotifier) Notify(x Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.items = append(n.items, x)
}

func TestSend(t *testing.T) {
	one := models.Update{ID: "a", Position: models.Point{X: 1, Y: 2}}
	two := models.Update{ID: "b", Position: models.Point{X: 3, Y: 4}}

	t.Run("single", func(t *testing.T) {
		gw := &fakeGateway{}
		require.NoError(t, Send(context.Background(), gw, models.Commit{Updates: []models.Update{one}}))
		assert.Equal(t, []models.Update{one}, gw.single)
		assert.Empty(t, gw.batch)
	})
	t.Run("batch", func(t *testing.T) {
		gw := &fakeGateway{}
		require.NoError(t, Send(context.Background(), gw, models.Commit{Batch: true, Updates: []models.Update{one, two}}))
		assert.Empty(t, gw.single)
		assert.Equal(t, [][]models.Update{{one, two}}, gw.batch)
	})
	t.Run("empty", func(t *testing.T) {
		gw := &fakeGateway{}
		require.NoError(t, Send(context.Background(), gw, models.Commit{}))
		assert.Empty(t, gw.single)
		assert.Empty(t, gw.batch)
	})
}

func TestDispatcherNotifiesOnFailure(t *testing.T) {
	gw := &fakeGateway{err: errors.New("boom")}
	d := NewDispatcher(gw, 0)
	n := &recordingNotifier{}

	d.Dispatch(models.Commit{Updates: []models.Update{{ID: "a"}}}, n)
	d.Wait()

	require.Len(t, n.items, 1)
	assert.Equal(t, LevelError, n.items[0].Level)
	assert.Equal(t, []string{"a"}, n.items[0].TableIDs)
	assert.Contains(t, n.items[0].Message, "boom")
}

func TestDispatcherSuccessIsSilent(t *testing.T) {
	gw := &fakeGateway{}
	d := NewDispatcher(gw, 0)
	n := &recordingNotifier{}

	for i := range 5 {
		d.Dispatch(models.Commit{Updates: []models.Update{{ID: "a", Position: models.Point{X: float64(i)}}}}, n)
	}
	d.Wait()

	assert.Empty(t, n.items)
	assert.Len(t, gw.single, 5)
}
