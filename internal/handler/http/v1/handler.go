package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shenikar/safe_route_system/internal/auth"
	"github.com/shenikar/safe_route_system/internal/service"
	"github.com/sirupsen/logrus"
)

// Services — сервисы, которые обслуживает HTTP-слой
type Services struct {
	Users      service.UserService
	Reports    service.ReportService
	Validation service.ValidationService
	Routes     service.RouteService
}

type Handler struct {
	userService       service.UserService
	reportService     service.ReportService
	validationService service.ValidationService
	routeService      service.RouteService
	tokens            *auth.TokenManager
	logger            *logrus.Logger
	validate          *validator.Validate
}

func NewHandler(services Services, tokens *auth.TokenManager, logger *logrus.Logger) *Handler {
	return &Handler{
		userService:       services.Users,
		reportService:     services.Reports,
		validationService: services.Validation,
		routeService:      services.Routes,
		tokens:            tokens,
		logger:            logger,
		validate:          validator.New(),
	}
}

// bind читает JSON тела запроса и проверяет его по тегам validate.
// При ошибке ответ уже отправлен и возвращается false.
func (h *Handler) bind(c *gin.Context, log *logrus.Entry, input any) bool {
	if err := c.ShouldBindJSON(input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

// @Summary Get application health status
// @Description Get health status of the application
// @Tags System
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string "Status OK"
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
