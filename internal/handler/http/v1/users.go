package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// @Summary Register a new user
// @Description Create a user with the initial reputation score and return a bearer token
// @Tags Users
// @Accept json
// @Produce json
// @Success 201 {object} RegisterUserResponse
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /users [post]
func (h *Handler) registerUser(c *gin.Context) {
	log := h.logger.WithField("method", "registerUser")

	user, err := h.userService.Register(c.Request.Context())
	if err != nil {
		respondError(c, log, err)
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		log.WithError(err).Error("Failed to issue token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, RegisterUserResponse{
		ID:    user.ID,
		Score: user.Score,
		Token: token,
	})
}

// @Summary Get current user
// @Description Get the reputation of the authenticated user
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "User not found"
// @Router /users/me [get]
func (h *Handler) getCurrentUser(c *gin.Context) {
	userID := currentUserID(c)
	log := h.logger.WithFields(logrus.Fields{"method": "getCurrentUser", "user_id": userID})

	user, err := h.userService.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToUserResponse(user))
}
