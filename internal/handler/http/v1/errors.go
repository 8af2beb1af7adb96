package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shenikar/safe_route_system/pkg/e"
	"github.com/sirupsen/logrus"
)

// errorStatus сопоставляет ошибку сервиса с HTTP-статусом
func errorStatus(err error) int {
	switch {
	case errors.Is(err, e.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, e.ErrSelfValidation):
		return http.StatusForbidden
	case errors.Is(err, e.ErrAlreadyResolved):
		return http.StatusConflict
	case errors.Is(err, e.ErrInvalidCoordinates),
		errors.Is(err, e.ErrInvalidProfile),
		errors.Is(err, e.ErrMalformedInput):
		return http.StatusBadRequest
	case errors.Is(err, e.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, e.ErrRoutingUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, e.ErrDeadline):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError пишет ответ с ошибкой. Детали инфраструктурных ошибок наружу не отдаются.
func respondError(c *gin.Context, log *logrus.Entry, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError && status != http.StatusBadGateway {
		log.WithError(err).Error("Request failed")
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}

	log.WithError(err).Warn("Request rejected")
	c.JSON(status, gin.H{"error": err.Error()})
}
