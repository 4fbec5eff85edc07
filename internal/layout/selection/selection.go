// Package selection хранит набор выбранных столов и "основной" стол.
package selection

import (
	"slices"

	"github.com/ErikKalkoken/go-set"
)

// ============================================================
// Selection Model
// ============================================================

// Selection - неизменяемое значение: каждая операция возвращает новую копию.
// Инвариант: Primary либо пуст, либо входит в набор.
type Selection struct {
	ids     set.Set[string]
	primary string
}

func Empty() Selection {
	return Selection{}
}

func (s Selection) Size() int { return s.ids.Size() }

func (s Selection) IsEmpty() bool { return s.ids.Size() == 0 }

func (s Selection) Contains(id string) bool { return s.ids.Contains(id) }

// Primary возвращает основной стол, ok=false если его нет.
func (s Selection) Primary() (string, bool) {
	return s.primary, s.primary != ""
}

// IDs возвращает отсортированный список выбранных id.
func (s Selection) IDs() []string {
	return slices.Sorted(s.ids.All())
}

// SelectOnly заменяет набор на {id}.
func (s Selection) SelectOnly(id string) Selection {
	return Selection{ids: set.Of(id), primary: id}
}

// Toggle добавляет id (и делает его основным) или убирает его.
func (s Selection) Toggle(id string) Selection {
	if s.ids.Contains(id) {
		primary := s.primary
		if primary == id {
			primary = ""
		}
		return Selection{ids: s.filter(func(v string) bool { return v != id }), primary: primary}
	}
	ids := s.filter(nil)
	ids.Add(id)
	return Selection{ids: ids, primary: id}
}

// SelectRange добавляет все id между fromID и toID включительно в порядке отрисовки.
// Если одного из концов нет в ordered, выделение не меняется.
func (s Selection) SelectRange(fromID, toID string, ordered []string) Selection {
	from := slices.Index(ordered, fromID)
	to := slices.Index(ordered, toID)
	if from < 0 || to < 0 {
		return s
	}
	if from > to {
		from, to = to, from
	}
	ids := s.filter(nil)
	for _, id := range ordered[from : to+1] {
		ids.Add(id)
	}
	return Selection{ids: ids, primary: s.primary}
}

// SelectBox заменяет набор ровно на ids (не аддитивно).
func (s Selection) SelectBox(ids []string) Selection {
	next := Selection{ids: set.Of(ids...)}
	if next.ids.Contains(s.primary) {
		next.primary = s.primary
	}
	return next
}

// Retain оставляет только id, для которых keep возвращает true.
func (s Selection) Retain(keep func(id string) bool) Selection {
	ids := s.filter(keep)
	next := Selection{ids: ids}
	if ids.Contains(s.primary) {
		next.primary = s.primary
	}
	return next
}

// filter возвращает копию набора с элементами, прошедшими keep (nil - все).
func (s Selection) filter(keep func(id string) bool) set.Set[string] {
	var out set.Set[string]
	for id := range s.ids.All() {
		if keep == nil || keep(id) {
			out.Add(id)
		}
	}
	return out
}

func (s Selection) Clear() Selection {
	return Selection{}
}
