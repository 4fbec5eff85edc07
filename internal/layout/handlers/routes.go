package handlers

import (
	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Routes
// ============================================================

// Register вешает API раскладки на router (обычно /api/v1).
func Register(api fiber.Router, tables *TablesHandler, editors *EditorHandler) {
	api.Get("/floors", tables.ListFloors)
	api.Get("/floors/:id", tables.GetFloor)
	api.Put("/floors/:id/layout", tables.UpdateFloorLayout)
	api.Get("/floors/:id/tables", tables.ListTables)

	// CommitGateway
	api.Put("/tables/positions", tables.UpdatePositions)
	api.Put("/tables/:id/position", tables.UpdatePosition)

	// Editor sessions
	api.Post("/floors/:id/sessions", editors.OpenSession)
	api.Get("/sessions/:sid", editors.GetSession)
	api.Delete("/sessions/:sid", editors.CloseSession)
	api.Post("/sessions/:sid/pointer/:action", editors.Pointer)
	api.Post("/sessions/:sid/rotate", editors.Rotate)
	api.Post("/sessions/:sid/cancel", editors.Cancel)
	api.Post("/sessions/:sid/reload", editors.Reload)
	api.Post("/sessions/:sid/select-all", editors.SelectAll)
	api.Post("/sessions/:sid/deselect", editors.Deselect)
	api.Put("/sessions/:sid/viewport", editors.SetViewport)
	api.Put("/sessions/:sid/lock", editors.SetLock)
	api.Put("/sessions/:sid/grid", editors.SetGrid)
}
