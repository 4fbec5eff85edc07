package editor

import (
	"log"

	"floor-layout/internal/layout/geometry"
	"floor-layout/internal/layout/models"
	"floor-layout/internal/layout/selection"
	"floor-layout/internal/layout/store"
)

// ============================================================
// Drag Controller
// ============================================================

// Options - настройки редактора, не зависящие от этажа.
type Options struct {
	ZoomMin      float64
	ZoomMax      float64
	RotationStep float64
	Arrange      store.ArrangeOptions
}

func DefaultOptions() Options {
	return Options{
		ZoomMin:      0.5,
		ZoomMax:      2.0,
		RotationStep: geometry.RotationStep,
		Arrange:      store.DefaultArrangeOptions(),
	}
}

// Controller превращает события указателя в перемещения столов, изменения
// выделения и запросы на коммит. Сеть не трогает: коммит возвращается вызывающему.
type Controller struct {
	opts     Options
	floor    models.Floor
	store    *store.Store
	sel      selection.Selection
	viewport geometry.Viewport
	session  DragSession
	locked   bool
	showGrid bool
}

func New(opts Options) *Controller {
	return &Controller{
		opts:     opts,
		store:    store.New(opts.Arrange),
		viewport: geometry.Viewport{Zoom: 1},
		showGrid: true,
	}
}

// Load выбирает этаж и засевает store его столами. Незавершённый жест сбрасывается.
func (c *Controller) Load(floor models.Floor, tables []models.Entity) {
	c.floor = floor
	c.Reload(tables)
}

// Reload перезаписывает store авторитетным списком столов.
// Из выделения выпадают столы, которых больше нет на этаже.
func (c *Controller) Reload(tables []models.Entity) {
	c.session = DragSession{}
	c.store.Seed(c.floor.ID, tables)
	c.sel = c.sel.Retain(c.store.Has)
	if arranged := c.store.Arranged(); len(arranged) > 0 {
		log.Printf("[EDITOR] floor %s: auto-arranged %d unplaced tables", c.floor.ID, len(arranged))
	}
}

func (c *Controller) Floor() models.Floor            { return c.floor }
func (c *Controller) Store() *store.Store            { return c.store }
func (c *Controller) Selection() selection.Selection { return c.sel }
func (c *Controller) Session() DragSession           { return c.session }
func (c *Controller) State() Kind                    { return c.session.Kind }
func (c *Controller) Viewport() geometry.Viewport    { return c.viewport }
func (c *Controller) Locked() bool                   { return c.locked }
func (c *Controller) GridVisible() bool              { return c.showGrid }

// SetFloorLayout применяет новые настройки сетки этажа без перезагрузки столов.
func (c *Controller) SetFloorLayout(floor models.Floor) {
	c.floor = floor
}

// SetZoom ограничивает зум диапазоном [ZoomMin, ZoomMax] и возвращает итоговое значение.
func (c *Controller) SetZoom(z float64) float64 {
	c.viewport.Zoom = geometry.ClampZoom(z, c.opts.ZoomMin, c.opts.ZoomMax)
	return c.viewport.Zoom
}

func (c *Controller) SetViewport(origin, scroll models.Point) {
	c.viewport.Origin = origin
	c.viewport.Scroll = scroll
}

// SetLocked блокирует все переходы, начинающиеся с нажатия.
func (c *Controller) SetLocked(locked bool) { c.locked = locked }

func (c *Controller) SetGridVisible(v bool) { c.showGrid = v }

func (c *Controller) SelectAll() {
	c.sel = c.sel.SelectBox(c.store.Order())
}

func (c *Controller) Deselect() {
	c.sel = c.sel.Clear()
}

// ============================================================
// Transitions
// ============================================================

// PointerDown обрабатывает нажатие. Ошибка возможна только при некорректном зуме.
func (c *Controller) PointerDown(ev PointerEvent) error {
	if c.locked || c.session.Active() {
		return nil
	}
	p, err := c.viewport.ScreenToLogical(ev.Point)
	if err != nil {
		return err
	}

	id, hit := c.store.HitTest(p)
	if !hit {
		if ev.Modifiers.Any() {
			return nil
		}
		c.session = DragSession{
			Kind:      BoxSelecting,
			BoxOrigin: p,
			Box:       models.Rect{X: p.X, Y: p.Y},
			before:    c.sel,
		}
		c.sel = c.sel.Clear()
		return nil
	}

	switch {
	case ev.Modifiers.Toggle:
		c.sel = c.sel.Toggle(id)
		if !c.sel.Contains(id) {
			return nil
		}
	case ev.Modifiers.Range:
		if primary, ok := c.sel.Primary(); ok {
			c.sel = c.sel.SelectRange(primary, id, c.store.Order())
		} else {
			c.sel = c.sel.SelectOnly(id)
		}
	case c.sel.Contains(id) && c.sel.Size() > 1:
		// тащим всю группу как есть
	default:
		c.sel = c.sel.SelectOnly(id)
	}
	c.beginDrag(id, p)
	return nil
}

func (c *Controller) beginDrag(anchor string, p models.Point) {
	members := []string{anchor}
	kind := DraggingSingle
	if c.sel.Size() > 1 {
		kind = DraggingMulti
		members = members[:0]
		for _, id := range c.sel.IDs() {
			if c.store.Has(id) {
				members = append(members, id)
			}
		}
	}
	s := DragSession{
		Kind:    kind,
		Anchor:  anchor,
		Offsets: make(map[string]models.Point, len(members)),
		Start:   make(map[string]models.Point, len(members)),
	}
	for _, id := range members {
		e, _ := c.store.Get(id)
		s.Offsets[id] = p.Sub(e.Position)
		s.Start[id] = e.Position
	}
	c.session = s
}

// PointerMove обновляет позиции в store синхронно, без обращения к сети.
func (c *Controller) PointerMove(ev PointerEvent) error {
	if !c.session.Active() {
		return nil
	}
	p, err := c.viewport.ScreenToLogical(ev.Point)
	if err != nil {
		return err
	}

	switch c.session.Kind {
	case DraggingSingle:
		id := c.session.Anchor
		c.store.Move(id, c.snap(p.Sub(c.session.Offsets[id])))
	case DraggingMulti:
		c.moveGroup(p)
	case BoxSelecting:
		c.session.Box = models.RectFromCorners(c.session.BoxOrigin, p)
		c.sel = c.sel.SelectBox(c.store.Intersecting(c.session.Box))
	}
	return nil
}

// moveGroup сдвигает все столы группы на одну дельту, вычисленную по якорю,
// поэтому взаимное расположение сохраняется точно.
func (c *Controller) moveGroup(p models.Point) {
	anchor, ok := c.store.Get(c.session.Anchor)
	if !ok {
		return
	}
	next := c.snap(p.Sub(c.session.Offsets[c.session.Anchor]))
	delta := next.Sub(anchor.Position)
	if delta == (models.Point{}) {
		return
	}
	for id := range c.session.Offsets {
		e, ok := c.store.Get(id)
		if !ok {
			continue
		}
		c.store.Move(id, e.Position.Add(delta))
	}
}

func (c *Controller) snap(p models.Point) models.Point {
	return geometry.Snap(p, c.floor.GridSize, c.floor.SnapToGrid)
}

// PointerUp завершает жест. Для перетаскивания возвращает коммит с абсолютными
// позициями сдвинутых столов; nil если ничего не сдвинулось или это была рамка.
func (c *Controller) PointerUp() *models.Commit {
	s := c.session
	c.session = DragSession{}

	if s.Kind != DraggingSingle && s.Kind != DraggingMulti {
		return nil
	}
	var updates []models.Update
	for _, id := range c.store.Order() {
		start, ok := s.Start[id]
		if !ok {
			continue
		}
		u, ok := c.store.Update(id)
		if !ok || u.Position == start {
			continue
		}
		updates = append(updates, u)
	}
	if len(updates) == 0 {
		return nil
	}
	return &models.Commit{Batch: s.Kind == DraggingMulti, Updates: updates}
}

// PointerLeave ведёт себя так же, как PointerUp.
func (c *Controller) PointerLeave() *models.Commit {
	return c.PointerUp()
}

// Cancel прерывает жест без коммита: столы возвращаются на исходные позиции,
// для рамки восстанавливается прежнее выделение.
func (c *Controller) Cancel() {
	s := c.session
	c.session = DragSession{}
	switch s.Kind {
	case DraggingSingle, DraggingMulti:
		for id, pos := range s.Start {
			c.store.Move(id, pos)
		}
	case BoxSelecting:
		c.sel = s.before.Retain(c.store.Has)
	}
}

// RotateSelected поворачивает каждый выбранный стол на шаг RotationStep.
// Один стол - одиночный коммит, несколько - пакетный.
func (c *Controller) RotateSelected() *models.Commit {
	if c.locked || c.session.Active() || c.sel.IsEmpty() {
		return nil
	}
	var updates []models.Update
	for _, id := range c.store.Order() {
		if !c.sel.Contains(id) {
			continue
		}
		e, _ := c.store.Get(id)
		c.store.SetRotation(id, geometry.QuantizeRotation(e.Rotation, c.opts.RotationStep))
		u, _ := c.store.Update(id)
		updates = append(updates, u)
	}
	if len(updates) == 0 {
		return nil
	}
	return &models.Commit{Batch: len(updates) > 1, Updates: updates}
}
