package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/druk-utility/consumer-registry/internal/api/metrics"
	"github.com/druk-utility/consumer-registry/internal/core/ports"
)

type ConsumerHandler struct {
	service ports.ConsumerService
}

func NewConsumerHandler(service ports.ConsumerService) *ConsumerHandler {
	return &ConsumerHandler{service: service}
}

// Create registers a household connection.
//
// @Summary      Create consumer
// @Tags         consumer
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createConsumerRequest  true  "Consumer"
// @Success      201   {object}  dataResponse{data=domain.Consumer}
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      422   {object}  ErrorResponse
// @Router       /api/v1/consumer [post]
func (h *ConsumerHandler) Create(c echo.Context) error {
	var req createConsumerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	consumer, err := h.service.Create(c.Request().Context(), toConsumer(req))
	if err != nil {
		return err
	}

	metrics.ConsumersCreatedTotal.WithLabelValues(string(consumer.TariffCategory)).Inc()
	return c.JSON(http.StatusCreated, dataResponse{Message: "Consumer created successfully", Data: consumer})
}

// List returns one page of consumers.
//
// @Summary      List consumers
// @Tags         consumer
// @Produce      json
// @Security     BearerAuth
// @Param        page            query     int     false  "Page (default 1)"
// @Param        limit           query     int     false  "Page size (default 10, max 100)"
// @Param        search          query     string  false  "Household head name or CID"
// @Param        gewog           query     string  false  "Gewog id"
// @Param        status          query     string  false  "Status"
// @Param        tariffCategory  query     string  false  "Tariff category"
// @Param        sortBy          query     string  false  "createdAt, householdId, meterNumber or connectionDate"
// @Param        order           query     string  false  "asc or desc (default desc)"
// @Success      200             {object}  listConsumersResponse
// @Failure      400             {object}  ErrorResponse
// @Router       /api/v1/consumer [get]
func (h *ConsumerHandler) List(c echo.Context) error {
	var q listConsumersQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}

	res, err := h.service.List(c.Request().Context(), toListConsumersInput(q))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listConsumersResponse{
		Data: res.Items,
		Meta: pageMeta{
			Total:      res.Total,
			Page:       res.Page,
			Limit:      res.Limit,
			TotalPages: res.TotalPages,
		},
	})
}

// Get returns one consumer with household head and gewog populated.
//
// @Summary      Get consumer
// @Tags         consumer
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Consumer id"
// @Success      200  {object}  dataResponse{data=domain.Consumer}
// @Failure      404  {object}  ErrorResponse
// @Router       /api/v1/consumer/{id} [get]
func (h *ConsumerHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	consumer, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dataResponse{Data: consumer})
}

// Update applies a partial change.
//
// @Summary      Update consumer
// @Tags         consumer
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "Consumer id"
// @Param        body  body      updateConsumerRequest  true  "Fields to change"
// @Success      200   {object}  dataResponse{data=domain.Consumer}
// @Failure      404   {object}  ErrorResponse
// @Router       /api/v1/consumer/{id} [patch]
func (h *ConsumerHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req updateConsumerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	consumer, err := h.service.Update(c.Request().Context(), id, toConsumerPatch(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dataResponse{Message: "Consumer updated successfully", Data: consumer})
}

// Delete removes a consumer.
//
// @Summary      Delete consumer
// @Tags         consumer
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Consumer id"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /api/v1/consumer/{id} [delete]
func (h *ConsumerHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Consumer deleted successfully"})
}
