package editor

import (
	"testing"

	"floor-layout/internal/layout/geometry"
	"floor-layout/internal/layout/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(id string, x, y float64) models.Entity {
	return models.Entity{ID: id, FloorID: "f1", Position: models.Point{X: x, Y: y}, Shape: models.ShapeSquare}
}

func newController(snap bool, tables ...models.Entity) *Controller {
	c := New(DefaultOptions())
	c.Load(models.Floor{ID: "f1", GridSize: models.GridSize{Width: 20, Height: 20}, SnapToGrid: snap}, tables)
	return c
}

func at(x, y float64) PointerEvent {
	return PointerEvent{Point: models.Point{X: x, Y: y}}
}

func withToggle(x, y float64) PointerEvent {
	return PointerEvent{Point: models.Point{X: x, Y: y}, Modifiers: Modifiers{Toggle: true}}
}

func withRange(x, y float64) PointerEvent {
	return PointerEvent{Point: models.Point{X: x, Y: y}, Modifiers: Modifiers{Range: true}}
}

func position(t *testing.T, c *Controller, id string) models.Point {
	t.Helper()
	e, ok := c.Store().Get(id)
	require.True(t, ok, "table %s", id)
	return e.Position
}

func TestSingleDrag(t *testing.T) {
	c := newController(false, square("a", 100, 100))
	require.NoError(t, c.PointerDown(at(110, 120)))
	assert.Equal(t, DraggingSingle, c.State())
	assert.Equal(t, []string{"a"}, c.Selection().IDs())

	require.NoError(t, c.PointerMove(at(160, 150)))
	assert.Equal(t, models.Point{X: 150, Y: 130}, position(t, c, "a"))

	commit := c.PointerUp()
	require.NotNil(t, commit)
	assert.False(t, commit.Batch)
	assert.Equal(t, []models.Update{{ID: "a", Position: models.Point{X: 150, Y: 130}}}, commit.Updates)
	assert.Equal(t, Idle, c.State())
}

func TestSingleDragSnaps(t *testing.T) {
	c := newController(true, square("a", 100, 100))
	require.NoError(t, c.PointerDown(at(100, 100)))
	require.NoError(t, c.PointerMove(at(147, 133)))
	assert.Equal(t, models.Point{X: 140, Y: 140}, position(t, c, "a"))
}

func TestClickWithoutMoveDoesNotCommit(t *testing.T) {
	c := newController(false, square("a", 100, 100))
	require.NoError(t, c.PointerDown(at(110, 110)))
	assert.Nil(t, c.PointerUp())
}

func TestMultiDragPreservesRelativeOffsets(t *testing.T) {
	c := newController(false, square("a", 10, 10), square("b", 50, 10))
	c.SelectAll()

	require.NoError(t, c.PointerDown(at(20, 20)))
	require.Equal(t, DraggingMulti, c.State())
	assert.Equal(t, "a", c.Session().Anchor)

	require.NoError(t, c.PointerMove(at(25, 20)))
	assert.Equal(t, models.Point{X: 15, Y: 10}, position(t, c, "a"))
	assert.Equal(t, models.Point{X: 55, Y: 10}, position(t, c, "b"))

	commit := c.PointerUp()
	require.NotNil(t, commit)
	assert.True(t, commit.Batch)
	assert.Equal(t, []string{"a", "b"}, commit.IDs())
}

func TestMultiDragWithSnapUsesAnchorDelta(t *testing.T) {
	c := newController(true, square("a", 20, 20), square("b", 53, 7))
	c.SelectAll()

	require.NoError(t, c.PointerDown(at(30, 30)))
	require.NoError(t, c.PointerMove(at(58, 41)))

	a := position(t, c, "a")
	b := position(t, c, "b")
	assert.Equal(t, models.Point{X: 40, Y: 40}, a)
	assert.Equal(t, models.Point{X: 33, Y: -13}, b.Sub(a))
}

func TestToggleClickBuildsMultiSelection(t *testing.T) {
	c := newController(false, square("a", 10, 10), square("b", 200, 10))
	require.NoError(t, c.PointerDown(at(20, 20)))
	c.PointerUp()
	require.NoError(t, c.PointerDown(withToggle(210, 20)))
	assert.Equal(t, DraggingMulti, c.State())
	assert.Equal(t, []string{"a", "b"}, c.Selection().IDs())
	c.PointerUp()

	// повторный toggle снимает стол и не начинает перетаскивание
	require.NoError(t, c.PointerDown(withToggle(210, 20)))
	assert.Equal(t, Idle, c.State())
	assert.Equal(t, []string{"a"}, c.Selection().IDs())
}

func TestRangeClick(t *testing.T) {
	c := newController(false, square("a", 0, 10), square("b", 100, 10), square("c", 200, 10), square("d", 300, 10))
	require.NoError(t, c.PointerDown(at(110, 20)))
	c.PointerUp()
	require.NoError(t, c.PointerDown(withRange(310, 20)))
	assert.Equal(t, DraggingMulti, c.State())
	assert.Equal(t, []string{"b", "c", "d"}, c.Selection().IDs())
	primary, _ := c.Selection().Primary()
	assert.Equal(t, "b", primary)
}

func TestPlainClickOnMemberOfSingleSelectionReselects(t *testing.T) {
	c := newController(false, square("a", 10, 10), square("b", 200, 10))
	c.SelectAll()
	c.Deselect()
	require.NoError(t, c.PointerDown(at(210, 20)))
	assert.Equal(t, DraggingSingle, c.State())
	assert.Equal(t, []string{"b"}, c.Selection().IDs())
}

func TestBoxSelect(t *testing.T) {
	c := newController(false, square("a", 100, 100), square("b", 300, 100), square("c", 500, 100))
	c.SelectAll()

	require.NoError(t, c.PointerDown(at(50, 50)))
	assert.Equal(t, BoxSelecting, c.State())
	assert.True(t, c.Selection().IsEmpty())

	require.NoError(t, c.PointerMove(at(550, 150)))
	assert.Equal(t, []string{"a", "b", "c"}, c.Selection().IDs())

	require.NoError(t, c.PointerMove(at(150, 150)))
	assert.Equal(t, []string{"a"}, c.Selection().IDs())

	assert.Nil(t, c.PointerUp())
	assert.Equal(t, Idle, c.State())
	assert.Equal(t, []string{"a"}, c.Selection().IDs())
}

func TestBoxSelectBackwards(t *testing.T) {
	c := newController(false, square("a", 100, 100))
	require.NoError(t, c.PointerDown(at(300, 300)))
	require.NoError(t, c.PointerMove(at(150, 150)))
	assert.Equal(t, models.Rect{X: 150, Y: 150, Width: 150, Height: 150}, c.Session().Box)
	assert.Equal(t, []string{"a"}, c.Selection().IDs())
}

func TestZeroAreaBoxSelectsNothing(t *testing.T) {
	c := newController(false, square("a", 100, 100))
	require.NoError(t, c.PointerDown(at(50, 120)))
	require.NoError(t, c.PointerMove(at(300, 120)))
	assert.True(t, c.Selection().IsEmpty())
}

func TestModifierClickOnEmptyCanvasIsIgnored(t *testing.T) {
	c := newController(false, square("a", 100, 100))
	c.SelectAll()
	require.NoError(t, c.PointerDown(withToggle(5, 5)))
	assert.Equal(t, Idle, c.State())
	assert.Equal(t, []string{"a"}, c.Selection().IDs())
}

func TestPointerLeaveCommitsLikeUp(t *testing.T) {
	c := newController(false, square("a", 100, 100))
	require.NoError(t, c.PointerDown(at(100, 100)))
	require.NoError(t, c.PointerMove(at(130, 100)))
	commit := c.PointerLeave()
	require.NotNil(t, commit)
	assert.Equal(t, Idle, c.State())
	assert.Equal(t, models.Point{X: 130, Y: 100}, commit.Updates[0].Position)
}

func TestCancelRestoresPositions(t *testing.T) {
	c := newController(false, square("a", 10, 10), square("b", 50, 10))
	c.SelectAll()
	require.NoError(t, c.PointerDown(at(20, 20)))
	require.NoError(t, c.PointerMove(at(300, 300)))
	c.Cancel()
	assert.Equal(t, Idle, c.State())
	assert.Equal(t, models.Point{X: 10, Y: 10}, position(t, c, "a"))
	assert.Equal(t, models.Point{X: 50, Y: 10}, position(t, c, "b"))
	assert.Nil(t, c.PointerUp())
}

func TestCancelBoxRestoresSelection(t *testing.T) {
	c := newController(false, square("a", 100, 100), square("b", 300, 100))
	c.SelectAll()
	require.NoError(t, c.PointerDown(at(50, 50)))
	require.NoError(t, c.PointerMove(at(150, 150)))
	c.Cancel()
	assert.Equal(t, []string{"a", "b"}, c.Selection().IDs())
}

func TestLockSuppressesPointerDown(t *testing.T) {
	c := newController(false, square("a", 100, 100))
	c.SetLocked(true)
	require.NoError(t, c.PointerDown(at(110, 110)))
	assert.Equal(t, Idle, c.State())
	assert.True(t, c.Selection().IsEmpty())
	require.NoError(t, c.PointerDown(at(5, 5)))
	assert.Equal(t, Idle, c.State())
	assert.Nil(t, c.RotateSelected())
}

func TestZoomAffectsPointerMapping(t *testing.T) {
	c := newController(false, square("a", 100, 100))
	assert.Equal(t, 2.0, c.SetZoom(5))
	require.NoError(t, c.PointerDown(at(220, 220)))
	require.Equal(t, DraggingSingle, c.State())
	require.NoError(t, c.PointerMove(at(240, 220)))
	assert.Equal(t, models.Point{X: 110, Y: 100}, position(t, c, "a"))
	assert.Equal(t, 0.5, c.SetZoom(0))
}

func TestViewportOriginAndScroll(t *testing.T) {
	c := newController(false, square("a", 100, 100))
	c.SetViewport(models.Point{X: 200, Y: 50}, models.Point{X: 40, Y: 0})
	require.NoError(t, c.PointerDown(at(270, 160)))
	assert.Equal(t, DraggingSingle, c.State())
}

func TestInvalidZoomIsReported(t *testing.T) {
	c := newController(false, square("a", 100, 100))
	c.viewport.Zoom = 0
	assert.ErrorIs(t, c.PointerDown(at(110, 110)), geometry.ErrInvalidZoom)
	assert.Equal(t, Idle, c.State())
}

func TestRotateSelected(t *testing.T) {
	c := newController(false, square("a", 10, 10), square("b", 200, 10))
	require.NoError(t, c.PointerDown(at(20, 20)))
	c.PointerUp()

	commit := c.RotateSelected()
	require.NotNil(t, commit)
	assert.False(t, commit.Batch)
	assert.Equal(t, 45.0, commit.Updates[0].Rotation)

	c.SelectAll()
	commit = c.RotateSelected()
	require.NotNil(t, commit)
	assert.True(t, commit.Batch)
	assert.Equal(t, []models.Update{
		{ID: "a", Position: models.Point{X: 10, Y: 10}, Rotation: 90},
		{ID: "b", Position: models.Point{X: 200, Y: 10}, Rotation: 45},
	}, commit.Updates)
}

func TestRotationWraps(t *testing.T) {
	tbl := square("a", 10, 10)
	tbl.Rotation = 315
	c := newController(false, tbl)
	c.SelectAll()
	commit := c.RotateSelected()
	require.NotNil(t, commit)
	assert.Equal(t, 0.0, commit.Updates[0].Rotation)
}

func TestReloadPrunesSelectionAndDropsGesture(t *testing.T) {
	c := newController(false, square("a", 10, 10), square("b", 200, 10))
	c.SelectAll()
	require.NoError(t, c.PointerDown(at(20, 20)))
	c.Reload([]models.Entity{square("a", 40, 40)})
	assert.Equal(t, Idle, c.State())
	assert.Equal(t, []string{"a"}, c.Selection().IDs())
	assert.Equal(t, models.Point{X: 40, Y: 40}, position(t, c, "a"))
}

func TestEndToEndAutoArrangeAndDrag(t *testing.T) {
	c := newController(true, square("1", 0, 0), square("2", 0, 0))
	assert.Equal(t, models.Point{X: 50, Y: 50}, position(t, c, "1"))
	assert.Equal(t, models.Point{X: 150, Y: 50}, position(t, c, "2"))

	require.NoError(t, c.PointerDown(at(50, 50)))
	require.NoError(t, c.PointerMove(at(200, 200)))
	commit := c.PointerUp()

	require.NotNil(t, commit)
	assert.Equal(t, models.Commit{
		Batch:   false,
		Updates: []models.Update{{ID: "1", Position: models.Point{X: 200, Y: 200}}},
	}, *commit)
}
