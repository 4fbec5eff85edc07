package middleware

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

// ============================================================
// Logger Middleware
// ============================================================

// Logger возвращает middleware access-лога. Для событий указателя в строку
// попадает id сессии редактора.
func Logger() fiber.Handler {
	return logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path} | session=${locals:session}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	})
}
