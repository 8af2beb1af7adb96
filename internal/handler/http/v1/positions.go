package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shenikar/safe_route_system/internal/models"
	"github.com/shenikar/safe_route_system/internal/service"
)

// @Summary Report a hazard
// @Description Create a hazard report at the given point. Reports from trusted users are valid immediately.
// @Tags Positions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param position body CreatePositionRequest true "Hazard report"
// @Success 201 {object} CreatePositionResponse
// @Failure 400 {object} map[string]string "Invalid request body, classification or coordinates"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /positions [post]
func (h *Handler) createPosition(c *gin.Context) {
	var input CreatePositionRequest
	log := h.logger.WithField("method", "createPosition")

	if !h.bind(c, log, &input) {
		return
	}

	report, err := h.reportService.CreateReport(c.Request.Context(), service.CreateReportInput{
		CreatorID:      currentUserID(c),
		Origin:         input.Origin,
		Classification: models.Classification(input.Classification),
		Description:    input.Description,
	})
	if err != nil {
		respondError(c, log, err)
		return
	}

	c.JSON(http.StatusCreated, CreatePositionResponse{
		ID:      report.ID,
		IsValid: report.IsValid,
	})
}

// @Summary List hazard reports
// @Description Get all known hazard reports as a GeoJSON FeatureCollection
// @Tags Positions
// @Produce json
// @Success 200 {object} map[string]interface{} "GeoJSON FeatureCollection"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /positions [get]
func (h *Handler) listPositions(c *gin.Context) {
	log := h.logger.WithField("method", "listPositions")

	reports, err := h.reportService.ListReports(c.Request.Context())
	if err != nil {
		respondError(c, log, err)
		return
	}

	c.JSON(http.StatusOK, ModelsToFeatureCollection(reports))
}

// @Summary Get hazard report by ID
// @Description Get a single hazard report as a GeoJSON Feature
// @Tags Positions
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} map[string]interface{} "GeoJSON Feature"
// @Failure 400 {object} map[string]string "Invalid report ID"
// @Failure 404 {object} map[string]string "Report not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /positions/{id} [get]
func (h *Handler) getPosition(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report ID"})
		return
	}
	log := h.logger.WithField("method", "getPosition").WithField("id", id)

	report, err := h.reportService.GetReport(c.Request.Context(), id)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToFeature(report))
}
