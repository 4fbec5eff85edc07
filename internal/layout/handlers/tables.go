package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"floor-layout/internal/layout/editor"
	"floor-layout/internal/layout/models"
	"floor-layout/internal/layout/repository"
	"floor-layout/internal/layout/service"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Floors & Tables Handler
// ============================================================

type TablesHandler struct {
	repo     *repository.Repository
	sessions *service.SessionManager
}

func NewTablesHandler(repo *repository.Repository, sessions *service.SessionManager) *TablesHandler {
	return &TablesHandler{repo: repo, sessions: sessions}
}

type positionRequest struct {
	Position models.Point `json:"position"`
	Rotation float64      `json:"rotation"`
}

type batchRequest struct {
	Updates []models.Update `json:"updates"`
}

type layoutRequest struct {
	GridSize        models.GridSize `json:"grid_size"`
	SnapToGrid      bool            `json:"snap_to_grid"`
	BackgroundImage string          `json:"background_image"`
}

// ListFloors возвращает все этажи.
func (h *TablesHandler) ListFloors(c fiber.Ctx) error {
	floors, err := h.repo.ListFloors(context.Background())
	if err != nil {
		return storageError(c, err)
	}
	if floors == nil {
		floors = []models.Floor{}
	}
	return c.JSON(floors)
}

// GetFloor возвращает этаж с настройками сетки.
func (h *TablesHandler) GetFloor(c fiber.Ctx) error {
	floor, err := h.repo.GetFloor(context.Background(), c.Params("id"))
	if err != nil {
		return storageError(c, err)
	}
	return c.JSON(floor)
}

// UpdateFloorLayout меняет сетку/фон этажа и применяет их к открытым редакторам.
func (h *TablesHandler) UpdateFloorLayout(c fiber.Ctx) error {
	var req layoutRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}
	if req.GridSize.Width <= 0 || req.GridSize.Height <= 0 {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "grid size must be positive"})
	}

	ctx := context.Background()
	floor, err := h.repo.GetFloor(ctx, c.Params("id"))
	if err != nil {
		return storageError(c, err)
	}
	floor.GridSize = req.GridSize
	floor.SnapToGrid = req.SnapToGrid
	floor.BackgroundImage = req.BackgroundImage
	if err := h.repo.UpdateFloorLayout(ctx, *floor); err != nil {
		return storageError(c, err)
	}

	for _, s := range h.sessions.ForFloor(floor.ID) {
		_ = s.Do(func(ctl *editor.Controller) (*models.Commit, error) {
			ctl.SetFloorLayout(*floor)
			return nil, nil
		})
	}
	return c.JSON(floor)
}

// ListTables возвращает авторитетный список столов этажа.
func (h *TablesHandler) ListTables(c fiber.Ctx) error {
	tables, err := h.repo.ListTables(context.Background(), c.Params("id"))
	if err != nil {
		return storageError(c, err)
	}
	if tables == nil {
		tables = []models.Entity{}
	}
	return c.JSON(tables)
}

// UpdatePosition - одиночный коммит позиции стола.
func (h *TablesHandler) UpdatePosition(c fiber.Ctx) error {
	var req positionRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}
	u := models.Update{ID: c.Params("id"), Position: req.Position, Rotation: req.Rotation}
	if err := h.repo.UpdateEntity(context.Background(), u); err != nil {
		return storageError(c, err)
	}
	return c.JSON(u)
}

// UpdatePositions - пакетный коммит (групповое перетаскивание, поворот).
func (h *TablesHandler) UpdatePositions(c fiber.Ctx) error {
	var req batchRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}
	if len(req.Updates) == 0 {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "updates required"})
	}
	if err := h.repo.UpdateEntities(context.Background(), req.Updates); err != nil {
		return storageError(c, err)
	}
	return c.JSON(fiber.Map{"updated": len(req.Updates)})
}

func storageError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrInvalidUpdate):
		return c.Status(http.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}
	log.Printf("[REPO] error: %v", err)
	return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "storage error"})
}
