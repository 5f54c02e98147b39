package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aquaflow/servicecrm/internal/core/ports"
)

type AssetHandler struct {
	service ports.AssetService
}

func NewAssetHandler(service ports.AssetService) *AssetHandler {
	return &AssetHandler{service: service}
}

// List handles GET /v1/assets.
//
// @Summary      List installed assets
// @Tags         assets
// @Produce      json
// @Security     BearerAuth
// @Param        q            query     string  false  "Free-text search over serial, customer and product"
// @Param        status       query     string  false  "active, inactive, removed or all"
// @Param        customer     query     string  false  "Customer id or all"
// @Param        due_service  query     string  false  "true, false or all"
// @Success      200          {array}   ports.AssetView
// @Failure      422          {object}  ErrorResponse
// @Router       /v1/assets [get]
func (h *AssetHandler) List(c echo.Context) error {
	list, err := h.service.List(c.Request().Context(), listQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// Get handles GET /v1/assets/:id.
//
// @Summary      Get an asset
// @Tags         assets
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Asset id"
// @Success      200  {object}  ports.AssetView
// @Failure      404  {object}  ErrorResponse
// @Router       /v1/assets/{id} [get]
func (h *AssetHandler) Get(c echo.Context) error {
	a, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

// Create handles POST /v1/assets.
//
// @Summary      Install an asset
// @Tags         assets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      assetRequest  true  "Asset"
// @Success      201   {object}  domain.Asset
// @Failure      404   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Failure      422   {object}  ErrorResponse
// @Router       /v1/assets [post]
func (h *AssetHandler) Create(c echo.Context) error {
	var req assetRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	a, err := h.service.Create(c.Request().Context(), req.toDomain())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, a)
}

// Update handles PUT /v1/assets/:id.
//
// @Summary      Update an asset
// @Tags         assets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string        true  "Asset id"
// @Param        body  body      assetRequest  true  "Asset"
// @Success      200   {object}  domain.Asset
// @Failure      404   {object}  ErrorResponse
// @Failure      422   {object}  ErrorResponse
// @Router       /v1/assets/{id} [put]
func (h *AssetHandler) Update(c echo.Context) error {
	var req assetRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	in := req.toDomain()
	in.AssetID = c.Param("id")

	a, err := h.service.Update(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

// Delete handles DELETE /v1/assets/:id.
//
// @Summary      Delete an asset
// @Tags         assets
// @Security     BearerAuth
// @Param        id   path  string  true  "Asset id"
// @Success      204
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /v1/assets/{id} [delete]
func (h *AssetHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// DraftOrder handles GET /v1/assets/:id/draft-order ("schedule maintenance").
//
// @Summary      Pre-filled maintenance order for an asset
// @Tags         assets
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Asset id"
// @Success      200  {object}  domain.ServiceOrder
// @Failure      404  {object}  ErrorResponse
// @Router       /v1/assets/{id}/draft-order [get]
func (h *AssetHandler) DraftOrder(c echo.Context) error {
	o, err := h.service.DraftOrder(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, o)
}
