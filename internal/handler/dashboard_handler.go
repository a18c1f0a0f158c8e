package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/altius-edu/tuition-admin-api/internal/service"
	"github.com/altius-edu/tuition-admin-api/pkg/response"
)

// DashboardHandler handles the KPI snapshot endpoint.
type DashboardHandler struct {
	service *service.DashboardService
}

// NewDashboardHandler constructs a dashboard handler.
func NewDashboardHandler(svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: svc}
}

// Stats godoc
// @Summary Admin dashboard KPI snapshot
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, cacheHit, err := h.service.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil, map[string]interface{}{"cache_hit": cacheHit})
}
