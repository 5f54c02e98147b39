package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aquaflow/servicecrm/internal/core/ports"
)

// CustomerHandler serves customer accounts and their derived views.
type CustomerHandler struct {
	service ports.CustomerService
}

func NewCustomerHandler(service ports.CustomerService) *CustomerHandler {
	return &CustomerHandler{service: service}
}

// List handles GET /v1/customers.
//
// @Summary      List customers
// @Tags         customers
// @Produce      json
// @Security     BearerAuth
// @Param        q       query     string  false  "Free-text search over id, name, email and phone"
// @Param        status  query     string  false  "lead, active, inactive, archived or all"
// @Success      200     {array}   domain.Customer
// @Failure      401     {object}  ErrorResponse
// @Router       /v1/customers [get]
func (h *CustomerHandler) List(c echo.Context) error {
	list, err := h.service.List(c.Request().Context(), listQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// Get handles GET /v1/customers/:id.
//
// @Summary      Get a customer
// @Tags         customers
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Customer id"
// @Success      200  {object}  domain.Customer
// @Failure      404  {object}  ErrorResponse
// @Router       /v1/customers/{id} [get]
func (h *CustomerHandler) Get(c echo.Context) error {
	cust, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cust)
}

// Create handles POST /v1/customers. The customer id is chosen by the caller.
//
// @Summary      Create a customer
// @Tags         customers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      customerRequest  true  "Customer"
// @Success      201   {object}  domain.Customer
// @Failure      409   {object}  ErrorResponse
// @Failure      422   {object}  ErrorResponse
// @Router       /v1/customers [post]
func (h *CustomerHandler) Create(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req customerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	cust, err := h.service.Create(c.Request().Context(), p, req.toDomain())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, cust)
}

// Update handles PUT /v1/customers/:id.
//
// @Summary      Update a customer
// @Tags         customers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string           true  "Customer id"
// @Param        body  body      customerRequest  true  "Customer"
// @Success      200   {object}  domain.Customer
// @Failure      404   {object}  ErrorResponse
// @Failure      422   {object}  ErrorResponse
// @Router       /v1/customers/{id} [put]
func (h *CustomerHandler) Update(c echo.Context) error {
	var req customerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	in := req.toDomain()
	in.CustomerID = c.Param("id")

	cust, err := h.service.Update(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cust)
}

// Delete handles DELETE /v1/customers/:id. Customers with assets or orders
// are refused with 409.
//
// @Summary      Delete a customer
// @Tags         customers
// @Security     BearerAuth
// @Param        id   path  string  true  "Customer id"
// @Success      204
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /v1/customers/{id} [delete]
func (h *CustomerHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Detail handles GET /v1/customers/:id/detail.
//
// @Summary      Customer account view
// @Description  Customer, assets with maintenance status, orders, summary, timeline and alerts.
// @Tags         customers
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Customer id"
// @Success      200  {object}  ports.CustomerDetail
// @Failure      404  {object}  ErrorResponse
// @Router       /v1/customers/{id}/detail [get]
func (h *CustomerHandler) Detail(c echo.Context) error {
	d, err := h.service.Detail(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

// Timeline handles GET /v1/customers/:id/timeline.
//
// @Summary      Customer timeline
// @Tags         customers
// @Produce      json
// @Security     BearerAuth
// @Param        id      path      string  true   "Customer id"
// @Param        offset  query     int     false  "Items to skip"
// @Param        limit   query     int     false  "Page size (default 20)"
// @Success      200     {object}  ports.TimelinePage
// @Failure      404     {object}  ErrorResponse
// @Failure      422     {object}  ErrorResponse
// @Router       /v1/customers/{id}/timeline [get]
func (h *CustomerHandler) Timeline(c echo.Context) error {
	offset, err := intParam(c, "offset", 0)
	if err != nil {
		return err
	}
	limit, err := intParam(c, "limit", 0)
	if err != nil {
		return err
	}

	page, err := h.service.Timeline(c.Request().Context(), c.Param("id"), offset, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// DraftOrder handles GET /v1/customers/:id/draft-order.
//
// @Summary      Blank service order for a customer
// @Tags         customers
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Customer id"
// @Success      200  {object}  domain.ServiceOrder
// @Failure      404  {object}  ErrorResponse
// @Router       /v1/customers/{id}/draft-order [get]
func (h *CustomerHandler) DraftOrder(c echo.Context) error {
	o, err := h.service.DraftOrder(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, o)
}
