package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/druk-utility/consumer-registry/internal/core/ports"
)

type GewogHandler struct {
	service ports.GewogService
}

func NewGewogHandler(service ports.GewogService) *GewogHandler {
	return &GewogHandler{service: service}
}

// Create adds a gewog under an existing dzongkhag.
//
// @Summary      Create gewog
// @Tags         gewog
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createGewogRequest  true  "Gewog"
// @Success      201   {object}  dataResponse{data=domain.Gewog}
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      422   {object}  ErrorResponse
// @Router       /api/v1/gewog [post]
func (h *GewogHandler) Create(c echo.Context) error {
	var req createGewogRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	g, err := h.service.Create(c.Request().Context(), toGewog(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, dataResponse{Message: "Gewog added", Data: g})
}

// List returns gewogs with their dzongkhag populated, optionally filtered by
// dzongkhag.
//
// @Summary      List gewogs
// @Tags         gewog
// @Produce      json
// @Security     BearerAuth
// @Param        dzongkhag  query     string  false  "Dzongkhag id"
// @Success      200        {object}  dataResponse{data=[]domain.Gewog}
// @Router       /api/v1/gewog [get]
func (h *GewogHandler) List(c echo.Context) error {
	var q listGewogsQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}

	list, err := h.service.List(c.Request().Context(), q.Dzongkhag)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dataResponse{Data: list})
}

// Get returns one gewog with its dzongkhag populated.
//
// @Summary      Get gewog
// @Tags         gewog
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Gewog id"
// @Success      200  {object}  dataResponse{data=domain.Gewog}
// @Failure      404  {object}  ErrorResponse
// @Router       /api/v1/gewog/{id} [get]
func (h *GewogHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	g, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dataResponse{Data: g})
}

// Update applies a partial change.
//
// @Summary      Update gewog
// @Tags         gewog
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Gewog id"
// @Param        body  body      updateGewogRequest  true  "Fields to change"
// @Success      200   {object}  dataResponse{data=domain.Gewog}
// @Failure      404   {object}  ErrorResponse
// @Router       /api/v1/gewog/{id} [patch]
func (h *GewogHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req updateGewogRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	g, err := h.service.Update(c.Request().Context(), id, toGewogPatch(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dataResponse{Message: "Gewog updated", Data: g})
}

// Delete removes a gewog that no consumer references.
//
// @Summary      Delete gewog
// @Tags         gewog
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Gewog id"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /api/v1/gewog/{id} [delete]
func (h *GewogHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Gewog deleted successfully"})
}
