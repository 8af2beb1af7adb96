package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты API v1
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	authenticated := AuthMiddleware(h.tokens, h.logger)

	users := api.Group("/users")
	{
		users.POST("", h.registerUser)
		users.GET("/me", authenticated, h.getCurrentUser)
	}

	// Отметки создаются только авторизованными пользователями, чтение открыто
	positions := api.Group("/positions")
	{
		positions.POST("", authenticated, h.createPosition)
		positions.GET("", h.listPositions)
		positions.GET("/:id", h.getPosition)
	}

	api.POST("/validate", authenticated, h.validatePosition)
	api.POST("/route", h.planRoute)

	// Маршрут Health-check
	api.GET("/system/health", h.healthCheck)
}
