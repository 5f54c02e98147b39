package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aquaflow/servicecrm/internal/core/ports"
)

// DashboardHandler serves the landing view and the ranked alert list.
type DashboardHandler struct {
	dashboard ports.DashboardService
	assets    ports.AssetService
}

func NewDashboardHandler(dashboard ports.DashboardService, assets ports.AssetService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, assets: assets}
}

// Dashboard handles GET /v1/dashboard. When the store is unavailable the
// last good snapshot is returned with stale=true.
//
// @Summary      Dashboard
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ports.Dashboard
// @Failure      500  {object}  ErrorResponse
// @Router       /v1/dashboard [get]
func (h *DashboardHandler) Dashboard(c echo.Context) error {
	d, err := h.dashboard.Dashboard(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

// Alerts handles GET /v1/alerts.
//
// @Summary      Assets due for service
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  maintenance.Report
// @Router       /v1/alerts [get]
func (h *DashboardHandler) Alerts(c echo.Context) error {
	report, err := h.assets.DueForService(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}
