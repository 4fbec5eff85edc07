package geometry

import (
	"math"

	"floor-layout/internal/layout/models"
)

// ============================================================
// Geometry Engine
// ============================================================

const RotationStep = 45.0

// Snap округляет каждую ось до ближайшего кратного шага сетки.
// Ось с неположительным шагом не меняется.
func Snap(p models.Point, grid models.GridSize, enabled bool) models.Point {
	if !enabled {
		return p
	}
	return models.Point{
		X: snapAxis(p.X, grid.Width),
		Y: snapAxis(p.Y, grid.Height),
	}
}

func snapAxis(v, step float64) float64 {
	if step <= 0 {
		return v
	}
	snapped := math.Round(v/step) * step
	if snapped == 0 {
		return 0 // без -0
	}
	return snapped
}

// Intersects проверяет пересечение bbox стола с рамкой выделения по открытым
// интервалам: касание краями не считается. Рамка нулевой площади ничего не выбирает.
func Intersects(bounds, sel models.Rect) bool {
	if sel.Width <= 0 || sel.Height <= 0 {
		return false
	}
	return bounds.X < sel.MaxX() && bounds.MaxX() > sel.X &&
		bounds.Y < sel.MaxY() && bounds.MaxY() > sel.Y
}

// QuantizeRotation возвращает (current + step) mod 360 в диапазоне [0, 360).
func QuantizeRotation(current, step float64) float64 {
	r := math.Mod(current+step, 360)
	if r < 0 {
		r += 360
	}
	if r >= 360 || r == 0 {
		return 0
	}
	return r
}

// ClampZoom ограничивает зум диапазоном [lo, hi].
func ClampZoom(z, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, z))
}
