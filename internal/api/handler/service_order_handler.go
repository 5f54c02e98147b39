package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/aquaflow/servicecrm/internal/api/metrics"
	"github.com/aquaflow/servicecrm/internal/core/ports"
)

const idempotencyHeader = "Idempotency-Key"

type ServiceOrderHandler struct {
	service ports.ServiceOrderService
}

func NewServiceOrderHandler(service ports.ServiceOrderService) *ServiceOrderHandler {
	return &ServiceOrderHandler{service: service}
}

// List handles GET /v1/service-orders.
//
// @Summary      List service orders
// @Tags         service-orders
// @Produce      json
// @Security     BearerAuth
// @Param        q               query     string  false  "Free-text search over customer, technician and asset serial"
// @Param        status          query     string  false  "Order status or all"
// @Param        customer        query     string  false  "Customer id or all"
// @Param        technician      query     string  false  "Technician user id or all"
// @Param        payment_status  query     string  false  "pending, paid, canceled or all"
// @Success      200             {array}   domain.ServiceOrder
// @Router       /v1/service-orders [get]
func (h *ServiceOrderHandler) List(c echo.Context) error {
	list, err := h.service.List(c.Request().Context(), listQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// Get handles GET /v1/service-orders/:id.
//
// @Summary      Get a service order
// @Tags         service-orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Service order id"
// @Success      200  {object}  domain.ServiceOrder
// @Failure      404  {object}  ErrorResponse
// @Router       /v1/service-orders/{id} [get]
func (h *ServiceOrderHandler) Get(c echo.Context) error {
	o, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, o)
}

// Create handles POST /v1/service-orders. A repeated Idempotency-Key returns
// the order created the first time with 200 instead of 201.
//
// @Summary      Create a service order
// @Tags         service-orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string               false  "Idempotency key to prevent duplicate submissions"
// @Param        body             body      serviceOrderRequest  true   "Service order"
// @Success      201              {object}  createOrderResponse
// @Success      200              {object}  createOrderResponse
// @Failure      404              {object}  ErrorResponse
// @Failure      422              {object}  ErrorResponse
// @Router       /v1/service-orders [post]
func (h *ServiceOrderHandler) Create(c echo.Context) error {
	var req serviceOrderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	key := strings.TrimSpace(c.Request().Header.Get(idempotencyHeader))

	res, err := h.service.Create(c.Request().Context(), req.toDomain(), key)
	if err != nil {
		return err
	}

	if res.AlreadyExisted {
		return c.JSON(http.StatusOK, createOrderResponse{ServiceOrder: res.Order, AlreadyExisted: true})
	}
	metrics.OrdersCreatedTotal.WithLabelValues(string(res.Order.ServiceType)).Inc()
	return c.JSON(http.StatusCreated, createOrderResponse{ServiceOrder: res.Order})
}

// Update handles PUT /v1/service-orders/:id.
//
// @Summary      Update a service order
// @Tags         service-orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Service order id"
// @Param        body  body      serviceOrderRequest  true  "Service order"
// @Success      200   {object}  domain.ServiceOrder
// @Failure      404   {object}  ErrorResponse
// @Failure      422   {object}  ErrorResponse
// @Router       /v1/service-orders/{id} [put]
func (h *ServiceOrderHandler) Update(c echo.Context) error {
	var req serviceOrderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	in := req.toDomain()
	in.ServiceID = c.Param("id")

	o, err := h.service.Update(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, o)
}

// Delete handles DELETE /v1/service-orders/:id.
//
// @Summary      Delete a service order
// @Tags         service-orders
// @Security     BearerAuth
// @Param        id   path  string  true  "Service order id"
// @Success      204
// @Failure      404  {object}  ErrorResponse
// @Router       /v1/service-orders/{id} [delete]
func (h *ServiceOrderHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Complete handles POST /v1/service-orders/:id/complete. Completing an
// already completed order returns it unchanged.
//
// @Summary      Complete a service order
// @Tags         service-orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Service order id"
// @Success      200  {object}  domain.ServiceOrder
// @Failure      404  {object}  ErrorResponse
// @Failure      422  {object}  ErrorResponse
// @Router       /v1/service-orders/{id}/complete [post]
func (h *ServiceOrderHandler) Complete(c echo.Context) error {
	o, err := h.service.Complete(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	metrics.OrdersCompletedTotal.WithLabelValues(string(o.ServiceType)).Inc()
	return c.JSON(http.StatusOK, o)
}
