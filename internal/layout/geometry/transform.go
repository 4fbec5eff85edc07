package geometry

import (
	"errors"
	"fmt"

	"floor-layout/internal/layout/models"
)

// ============================================================
// Coordinate Transform
// ============================================================

var ErrInvalidZoom = errors.New("invalid zoom")

func checkZoom(zoom float64) error {
	if zoom <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidZoom, zoom)
	}
	return nil
}

// ToLogical переводит экранную точку (относительно холста) в логические единицы этажа.
// Зум здесь не ограничивается, ошибка только при zoom <= 0.
func ToLogical(screen models.Point, zoom float64, scroll models.Point) (models.Point, error) {
	if err := checkZoom(zoom); err != nil {
		return models.Point{}, err
	}
	return models.Point{
		X: (screen.X + scroll.X) / zoom,
		Y: (screen.Y + scroll.Y) / zoom,
	}, nil
}

// ToScreen переводит логическую точку в пиксели холста.
func ToScreen(p models.Point, zoom float64) (models.Point, error) {
	if err := checkZoom(zoom); err != nil {
		return models.Point{}, err
	}
	return models.Point{X: p.X * zoom, Y: p.Y * zoom}, nil
}

// ============================================================
// Viewport
// ============================================================

// Viewport заменяет чтение bounding rect холста: Origin - положение холста
// на экране, Scroll - прокрутка контейнера в пикселях.
type Viewport struct {
	Origin models.Point `json:"origin"`
	Scroll models.Point `json:"scroll"`
	Zoom   float64      `json:"zoom"`
}

func (v Viewport) ScreenToLogical(client models.Point) (models.Point, error) {
	return ToLogical(client.Sub(v.Origin), v.Zoom, v.Scroll)
}

func (v Viewport) LogicalToScreen(p models.Point) (models.Point, error) {
	s, err := ToScreen(p, v.Zoom)
	if err != nil {
		return models.Point{}, err
	}
	return s.Sub(v.Scroll).Add(v.Origin), nil
}
