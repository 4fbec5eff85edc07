package store

import (
	"slices"

	"floor-layout/internal/layout/geometry"
	"floor-layout/internal/layout/models"
)

// ============================================================
// Layout Store
// ============================================================

// ArrangeOptions - параметры авто-раскладки столов, стоящих в (0, 0).
type ArrangeOptions struct {
	Columns int
	Spacing float64
	Margin  float64
}

func DefaultArrangeOptions() ArrangeOptions {
	return ArrangeOptions{Columns: 5, Spacing: 100, Margin: 50}
}

// Store - рабочая копия позиций столов активного этажа. Источник истины:
// внешний список столов, который перезаписывает Store целиком при перезагрузке.
// Не потокобезопасен: все изменения идут из одного обработчика событий.
type Store struct {
	floorID  string
	order    []string
	entities map[string]models.Entity
	arrange  ArrangeOptions
	arranged []string
}

func New(opts ArrangeOptions) *Store {
	if opts.Columns <= 0 {
		opts.Columns = DefaultArrangeOptions().Columns
	}
	return &Store{
		entities: make(map[string]models.Entity),
		arrange:  opts,
	}
}

// Seed заменяет содержимое store столами выбранного этажа (порядок сохраняется).
func (s *Store) Seed(floorID string, entities []models.Entity) {
	s.floorID = floorID
	s.order = s.order[:0]
	s.entities = make(map[string]models.Entity, len(entities))
	s.arranged = nil
	for _, e := range entities {
		if e.FloorID != floorID {
			continue
		}
		if _, dup := s.entities[e.ID]; dup {
			continue
		}
		s.order = append(s.order, e.ID)
		s.entities[e.ID] = e
	}
	s.autoArrange()
}

// autoArrange раскладывает столы сеткой, если больше одного стола стоит в (0, 0).
// Это эвристика отображения, в хранилище ничего не пишется.
func (s *Store) autoArrange() {
	var unplaced []string
	for _, id := range s.order {
		if s.entities[id].Position == (models.Point{}) {
			unplaced = append(unplaced, id)
		}
	}
	if len(unplaced) <= 1 {
		return
	}
	for i, id := range unplaced {
		e := s.entities[id]
		e.Position = models.Point{
			X: s.arrange.Margin + float64(i%s.arrange.Columns)*s.arrange.Spacing,
			Y: s.arrange.Margin + float64(i/s.arrange.Columns)*s.arrange.Spacing,
		}
		s.entities[id] = e
	}
	s.arranged = unplaced
}

func (s *Store) FloorID() string { return s.floorID }

// Arranged возвращает id столов, расставленных авто-раскладкой при последнем Seed.
func (s *Store) Arranged() []string { return slices.Clone(s.arranged) }

func (s *Store) Len() int { return len(s.order) }

func (s *Store) Has(id string) bool {
	_, ok := s.entities[id]
	return ok
}

func (s *Store) Get(id string) (models.Entity, bool) {
	e, ok := s.entities[id]
	return e, ok
}

// Order - id в порядке отрисовки.
func (s *Store) Order() []string { return slices.Clone(s.order) }

// Entities возвращает копии столов в порядке отрисовки.
func (s *Store) Entities() []models.Entity {
	out := make([]models.Entity, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.entities[id])
	}
	return out
}

func (s *Store) Move(id string, p models.Point) bool {
	e, ok := s.entities[id]
	if !ok {
		return false
	}
	e.Position = p
	s.entities[id] = e
	return true
}

func (s *Store) SetRotation(id string, deg float64) bool {
	e, ok := s.entities[id]
	if !ok {
		return false
	}
	e.Rotation = deg
	s.entities[id] = e
	return true
}

// HitTest возвращает верхний (последний в порядке отрисовки) стол под точкой.
func (s *Store) HitTest(p models.Point) (string, bool) {
	for i := len(s.order) - 1; i >= 0; i-- {
		id := s.order[i]
		if s.entities[id].Bounds().Contains(p) {
			return id, true
		}
	}
	return "", false
}

// Intersecting возвращает id столов, пересекающих рамку, в порядке отрисовки.
func (s *Store) Intersecting(r models.Rect) []string {
	var ids []string
	for _, id := range s.order {
		if geometry.Intersects(s.entities[id].Bounds(), r) {
			ids = append(ids, id)
		}
	}
	return ids
}

// Update собирает payload коммита из текущего состояния стола.
func (s *Store) Update(id string) (models.Update, bool) {
	e, ok := s.entities[id]
	if !ok {
		return models.Update{}, false
	}
	return models.Update{ID: e.ID, Position: e.Position, Rotation: e.Rotation}, true
}
