package http

import (
	"log/slog"
	"net/http"

	"github.com/yahyahetari/electronics-admin/internal/service"
	"github.com/yahyahetari/electronics-admin/pkg/httputil"
)

// DashboardHandler handles HTTP requests for the dashboard stats endpoint.
type DashboardHandler struct {
	service *service.DashboardService
	logger  *slog.Logger
}

// NewDashboardHandler creates a new dashboard HTTP handler.
func NewDashboardHandler(service *service.DashboardService, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		logger:  logger,
	}
}

// GetStats handles GET /api/v1/dashboard/stats
// Returns revenue, cost, and profit aggregates over all orders, bucketed
// into this-month, last-month, and all-time, plus a monthly series and
// customer counts. Results are cached briefly.
// @Summary Dashboard statistics
// @Tags dashboard
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/dashboard/stats [get]
func (h *DashboardHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: stats})
}
