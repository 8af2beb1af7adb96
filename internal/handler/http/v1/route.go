package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shenikar/safe_route_system/internal/service"
)

// @Summary Plan a route
// @Description Plan a route between two points avoiding confirmed hazards. Returns the routing engine GeoJSON unchanged.
// @Tags Route
// @Accept json
// @Produce json
// @Param route body RouteRequest true "Route request"
// @Success 200 {object} map[string]interface{} "GeoJSON route"
// @Header 200 {string} X-Route-Profile "Routing profile used"
// @Header 200 {integer} X-Avoided-Zones "Number of avoided hazard zones"
// @Failure 400 {object} map[string]string "Invalid coordinates or profile"
// @Failure 502 {object} map[string]string "Routing engine unavailable"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /route [post]
func (h *Handler) planRoute(c *gin.Context) {
	var input RouteRequest
	log := h.logger.WithField("method", "planRoute")

	if !h.bind(c, log, &input) {
		return
	}

	route, err := h.routeService.PlanRoute(c.Request.Context(), service.RouteRequest{
		Origin:      input.Origin,
		Destination: input.Destination,
		Profile:     input.Profile,
	})
	if err != nil {
		respondError(c, log, err)
		return
	}

	c.Header("X-Route-Profile", string(route.Profile))
	c.Header("X-Avoided-Zones", strconv.Itoa(route.AvoidedZones))
	c.Data(http.StatusOK, "application/json; charset=utf-8", route.Result)
}
