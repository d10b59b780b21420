package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/druk-utility/consumer-registry/internal/core/ports"
)

type DzongkhagHandler struct {
	service ports.DzongkhagService
}

func NewDzongkhagHandler(service ports.DzongkhagService) *DzongkhagHandler {
	return &DzongkhagHandler{service: service}
}

// Create adds a dzongkhag. The code is stored upper-cased.
//
// @Summary      Create dzongkhag
// @Tags         dzongkhag
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createDzongkhagRequest  true  "Dzongkhag"
// @Success      201   {object}  dataResponse{data=domain.Dzongkhag}
// @Failure      403   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Failure      422   {object}  ErrorResponse
// @Router       /api/v1/dzongkhag [post]
func (h *DzongkhagHandler) Create(c echo.Context) error {
	var req createDzongkhagRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	d, err := h.service.Create(c.Request().Context(), toDzongkhag(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, dataResponse{Message: "Dzongkhag added", Data: d})
}

// List returns all dzongkhags sorted by name.
//
// @Summary      List dzongkhags
// @Tags         dzongkhag
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dataResponse{data=[]domain.Dzongkhag}
// @Router       /api/v1/dzongkhag [get]
func (h *DzongkhagHandler) List(c echo.Context) error {
	list, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dataResponse{Data: list})
}

// Get returns one dzongkhag.
//
// @Summary      Get dzongkhag
// @Tags         dzongkhag
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Dzongkhag id"
// @Success      200  {object}  dataResponse{data=domain.Dzongkhag}
// @Failure      404  {object}  ErrorResponse
// @Router       /api/v1/dzongkhag/{id} [get]
func (h *DzongkhagHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	d, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dataResponse{Data: d})
}

// Update applies a partial change.
//
// @Summary      Update dzongkhag
// @Tags         dzongkhag
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                  true  "Dzongkhag id"
// @Param        body  body      updateDzongkhagRequest  true  "Fields to change"
// @Success      200   {object}  dataResponse{data=domain.Dzongkhag}
// @Failure      404   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Router       /api/v1/dzongkhag/{id} [patch]
func (h *DzongkhagHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req updateDzongkhagRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	d, err := h.service.Update(c.Request().Context(), id, toDzongkhagPatch(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dataResponse{Message: "Dzongkhag updated", Data: d})
}

// Delete removes a dzongkhag that no gewog references.
//
// @Summary      Delete dzongkhag
// @Tags         dzongkhag
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Dzongkhag id"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /api/v1/dzongkhag/{id} [delete]
func (h *DzongkhagHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Dzongkhag deleted successfully"})
}
