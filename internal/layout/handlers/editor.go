package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"floor-layout/internal/layout/editor"
	"floor-layout/internal/layout/gateway"
	"floor-layout/internal/layout/geometry"
	"floor-layout/internal/layout/models"
	"floor-layout/internal/layout/repository"
	"floor-layout/internal/layout/service"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Editor Handler
// ============================================================

type EditorHandler struct {
	repo     *repository.Repository
	sessions *service.SessionManager
}

func NewEditorHandler(repo *repository.Repository, sessions *service.SessionManager) *EditorHandler {
	return &EditorHandler{repo: repo, sessions: sessions}
}

type sessionPayload struct {
	ID            string                 `json:"id"`
	Floor         models.Floor           `json:"floor"`
	State         editor.Kind            `json:"state"`
	Selection     []string               `json:"selection"`
	Primary       string                 `json:"primary,omitempty"`
	Box           *models.Rect           `json:"box,omitempty"`
	Viewport      geometry.Viewport      `json:"viewport"`
	Locked        bool                   `json:"locked"`
	ShowGrid      bool                   `json:"show_grid"`
	Tables        []models.Entity        `json:"tables"`
	Notifications []gateway.Notification `json:"notifications,omitempty"`
}

type viewportRequest struct {
	Zoom   float64       `json:"zoom"`
	Origin *models.Point `json:"origin,omitempty"`
	Scroll *models.Point `json:"scroll,omitempty"`
}

type toggleRequest struct {
	Value bool `json:"value"`
}

func snapshot(s *service.Session) sessionPayload {
	var p sessionPayload
	s.View(func(c *editor.Controller) {
		sel := c.Selection()
		primary, _ := sel.Primary()
		p = sessionPayload{
			ID:        s.ID,
			Floor:     c.Floor(),
			State:     c.State(),
			Selection: sel.IDs(),
			Primary:   primary,
			Viewport:  c.Viewport(),
			Locked:    c.Locked(),
			ShowGrid:  c.GridVisible(),
			Tables:    c.Store().Entities(),
		}
		if sess := c.Session(); sess.Kind == editor.BoxSelecting {
			box := sess.Box
			p.Box = &box
		}
	})
	p.Notifications = s.Inbox().Drain()
	return p
}

// OpenSession открывает редактор этажа, засеянный текущим списком столов.
func (h *EditorHandler) OpenSession(c fiber.Ctx) error {
	ctx := context.Background()
	floor, err := h.repo.GetFloor(ctx, c.Params("id"))
	if err != nil {
		return storageError(c, err)
	}
	tables, err := h.repo.ListTables(ctx, floor.ID)
	if err != nil {
		return storageError(c, err)
	}
	s := h.sessions.Open(*floor, tables)
	return c.Status(http.StatusCreated).JSON(snapshot(s))
}

func (h *EditorHandler) GetSession(c fiber.Ctx) error {
	return h.with(c, nil)
}

func (h *EditorHandler) CloseSession(c fiber.Ctx) error {
	if err := h.sessions.Close(c.Params("sid")); err != nil {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(http.StatusNoContent)
}

// Pointer принимает down/move/up/leave.
func (h *EditorHandler) Pointer(c fiber.Ctx) error {
	action := c.Params("action")
	var ev editor.PointerEvent
	if action == "down" || action == "move" {
		if err := json.Unmarshal(c.Body(), &ev); err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
		}
	}

	var fn func(ctl *editor.Controller) (*models.Commit, error)
	switch action {
	case "down":
		fn = func(ctl *editor.Controller) (*models.Commit, error) { return nil, ctl.PointerDown(ev) }
	case "move":
		fn = func(ctl *editor.Controller) (*models.Commit, error) { return nil, ctl.PointerMove(ev) }
	case "up":
		fn = func(ctl *editor.Controller) (*models.Commit, error) { return ctl.PointerUp(), nil }
	case "leave":
		fn = func(ctl *editor.Controller) (*models.Commit, error) { return ctl.PointerLeave(), nil }
	default:
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "unknown pointer action"})
	}
	return h.with(c, fn)
}

// Rotate поворачивает выбранные столы на шаг.
func (h *EditorHandler) Rotate(c fiber.Ctx) error {
	return h.with(c, func(ctl *editor.Controller) (*models.Commit, error) {
		return ctl.RotateSelected(), nil
	})
}

// Cancel прерывает текущий жест без коммита.
func (h *EditorHandler) Cancel(c fiber.Ctx) error {
	return h.with(c, func(ctl *editor.Controller) (*models.Commit, error) {
		ctl.Cancel()
		return nil, nil
	})
}

func (h *EditorHandler) SelectAll(c fiber.Ctx) error {
	return h.with(c, func(ctl *editor.Controller) (*models.Commit, error) {
		ctl.SelectAll()
		return nil, nil
	})
}

func (h *EditorHandler) Deselect(c fiber.Ctx) error {
	return h.with(c, func(ctl *editor.Controller) (*models.Commit, error) {
		ctl.Deselect()
		return nil, nil
	})
}

// Reload перечитывает столы этажа из хранилища.
func (h *EditorHandler) Reload(c fiber.Ctx) error {
	s, err := h.sessions.Get(c.Params("sid"))
	if err != nil {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	tables, err := h.repo.ListTables(context.Background(), s.FloorID)
	if err != nil {
		return storageError(c, err)
	}
	return h.with(c, func(ctl *editor.Controller) (*models.Commit, error) {
		ctl.Reload(tables)
		return nil, nil
	})
}

// SetViewport меняет зум (с ограничением) и положение холста.
func (h *EditorHandler) SetViewport(c fiber.Ctx) error {
	var req viewportRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}
	return h.with(c, func(ctl *editor.Controller) (*models.Commit, error) {
		v := ctl.Viewport()
		if req.Origin != nil {
			v.Origin = *req.Origin
		}
		if req.Scroll != nil {
			v.Scroll = *req.Scroll
		}
		ctl.SetViewport(v.Origin, v.Scroll)
		if req.Zoom != 0 {
			ctl.SetZoom(req.Zoom)
		}
		return nil, nil
	})
}

func (h *EditorHandler) SetLock(c fiber.Ctx) error {
	return h.toggle(c, (*editor.Controller).SetLocked)
}

func (h *EditorHandler) SetGrid(c fiber.Ctx) error {
	return h.toggle(c, (*editor.Controller).SetGridVisible)
}

func (h *EditorHandler) toggle(c fiber.Ctx, set func(*editor.Controller, bool)) error {
	var req toggleRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}
	return h.with(c, func(ctl *editor.Controller) (*models.Commit, error) {
		set(ctl, req.Value)
		return nil, nil
	})
}

// ============================================================
// Helpers
// ============================================================

// with применяет fn к сессии и отвечает её снимком.
func (h *EditorHandler) with(c fiber.Ctx, fn func(ctl *editor.Controller) (*models.Commit, error)) error {
	s, err := h.sessions.Get(c.Params("sid"))
	if err != nil {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	c.Locals("session", s.ID)
	if fn != nil {
		if err := s.Do(fn); err != nil {
			if errors.Is(err, geometry.ErrInvalidZoom) {
				return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
			}
			log.Printf("[EDITOR] session %s: %v", s.ID, err)
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "editor error"})
		}
	}
	return c.JSON(snapshot(s))
}
