package models

// ============================================================
// Geometry primitives
// ============================================================

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) Add(o Point) Point { return Point{X: p.X + o.X, Y: p.Y + o.Y} }
func (p Point) Sub(o Point) Point { return Point{X: p.X - o.X, Y: p.Y - o.Y} }

type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Rect - прямоугольник в логических единицах этажа (X, Y - левый верхний угол).
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// RectFromCorners строит нормализованный прямоугольник по двум произвольным углам.
func RectFromCorners(a, b Point) Rect {
	r := Rect{X: a.X, Y: a.Y, Width: b.X - a.X, Height: b.Y - a.Y}
	if r.Width < 0 {
		r.X, r.Width = b.X, -r.Width
	}
	if r.Height < 0 {
		r.Y, r.Height = b.Y, -r.Height
	}
	return r
}

func (r Rect) MaxX() float64 { return r.X + r.Width }
func (r Rect) MaxY() float64 { return r.Y + r.Height }

// Contains - точка внутри или на границе.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.MaxX() && p.Y >= r.Y && p.Y <= r.MaxY()
}

// ============================================================
// Tables (entities on the floor plan)
// ============================================================

type Shape string

const (
	ShapeRound     Shape = "round"
	ShapeSquare    Shape = "square"
	ShapeRectangle Shape = "rectangle"
	ShapeBooth     Shape = "booth"
)

// Status влияет только на цвет отрисовки, не на геометрию.
type Status string

const (
	StatusAvailable Status = "available"
	StatusOccupied  Status = "occupied"
	StatusReserved  Status = "reserved"
	StatusCleaning  Status = "cleaning"
)

var shapeSizes = map[Shape]Size{
	ShapeRound:     {Width: 80, Height: 80},
	ShapeSquare:    {Width: 80, Height: 80},
	ShapeRectangle: {Width: 120, Height: 80},
	ShapeBooth:     {Width: 120, Height: 100},
}

var defaultSize = Size{Width: 80, Height: 80}

type Entity struct {
	ID       string  `json:"id"`
	FloorID  string  `json:"floor_id"`
	Name     string  `json:"name"`
	Position Point   `json:"position"`
	Rotation float64 `json:"rotation"`
	Shape    Shape   `json:"shape"`
	Width    float64 `json:"width,omitempty"`
	Height   float64 `json:"height,omitempty"`
	Capacity int     `json:"capacity"`
	Status   Status  `json:"status"`
}

// Dimensions возвращает явные размеры стола либо размеры по форме.
func (e Entity) Dimensions() Size {
	if e.Width > 0 && e.Height > 0 {
		return Size{Width: e.Width, Height: e.Height}
	}
	if s, ok := shapeSizes[e.Shape]; ok {
		return s
	}
	return defaultSize
}

// Bounds - axis-aligned bounding box, поворот не учитывается.
func (e Entity) Bounds() Rect {
	d := e.Dimensions()
	return Rect{X: e.Position.X, Y: e.Position.Y, Width: d.Width, Height: d.Height}
}

// ============================================================
// Floors
// ============================================================

type GridSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type Floor struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	GridSize        GridSize `json:"grid_size"`
	SnapToGrid      bool     `json:"snap_to_grid"`
	BackgroundImage string   `json:"background_image,omitempty"`
	Dimensions      Size     `json:"dimensions"`
}

// ============================================================
// Commit payloads
// ============================================================

// Update - абсолютная итоговая позиция стола. Идемпотентна, порядок применения неважен.
type Update struct {
	ID       string  `json:"id"`
	Position Point   `json:"position"`
	Rotation float64 `json:"rotation"`
}

// Commit - один запрос к CommitGateway по завершении жеста.
// Batch=false означает одиночный updateEntity, иначе updateEntities.
type Commit struct {
	Batch   bool     `json:"batch"`
	Updates []Update `json:"updates"`
}

func (c Commit) IDs() []string {
	ids := make([]string, 0, len(c.Updates))
	for _, u := range c.Updates {
		ids = append(ids, u.ID)
	}
	return ids
}
