package editor

import (
	"floor-layout/internal/layout/models"
	"floor-layout/internal/layout/selection"
)

// ============================================================
// Drag State
// ============================================================

type Kind int

const (
	Idle Kind = iota
	DraggingSingle
	DraggingMulti
	BoxSelecting
)

func (k Kind) String() string {
	switch k {
	case DraggingSingle:
		return "single"
	case DraggingMulti:
		return "multi"
	case BoxSelecting:
		return "box-select"
	default:
		return "idle"
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// DragSession живёт только пока зажата кнопка указателя.
// Нулевое значение - состояние Idle.
type DragSession struct {
	Kind   Kind
	Anchor string
	// Offsets - смещение указателя относительно каждого перетаскиваемого стола
	// в момент нажатия.
	Offsets map[string]models.Point
	// Start - позиции на момент нажатия, для отмены и определения, был ли сдвиг.
	Start map[string]models.Point
	// BoxOrigin и Box - рамка выделения в логических координатах.
	BoxOrigin models.Point
	Box       models.Rect
	// before - выделение до начала рамки, восстанавливается при отмене.
	before selection.Selection
}

func (d DragSession) Active() bool { return d.Kind != Idle }

// Modifiers - клавиши-модификаторы при нажатии.
// Toggle соответствует ctrl/cmd, Range - shift.
type Modifiers struct {
	Toggle bool `json:"toggle"`
	Range  bool `json:"range"`
}

func (m Modifiers) Any() bool { return m.Toggle || m.Range }

// PointerEvent - событие указателя в экранных координатах клиента.
type PointerEvent struct {
	Point     models.Point `json:"point"`
	Modifiers Modifiers    `json:"modifiers"`
}
