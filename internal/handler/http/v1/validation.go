package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shenikar/safe_route_system/internal/models"
)

// @Summary Vote on a hazard report
// @Description Approve or reject a pending hazard report created by another user. Approval confirms the report, rejection removes it.
// @Tags Validation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param vote body ValidateRequest true "Vote"
// @Success 200 {object} ValidateResponse
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Voting on own report"
// @Failure 404 {object} map[string]string "Report not found"
// @Failure 409 {object} map[string]string "Report already confirmed"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /validate [post]
func (h *Handler) validatePosition(c *gin.Context) {
	var input ValidateRequest
	log := h.logger.WithField("method", "validatePosition")

	if !h.bind(c, log, &input) {
		return
	}

	result, err := h.validationService.CastVote(c.Request.Context(), models.Vote{
		ReportID: uuid.MustParse(input.ReportID),
		VoterID:  currentUserID(c),
		Approve:  *input.Approve,
	})
	if err != nil {
		respondError(c, log, err)
		return
	}

	c.JSON(http.StatusOK, ValidateResponse{
		ReportID:     result.ReportID,
		Outcome:      string(result.Outcome),
		CreatorScore: result.NewScore,
	})
}
