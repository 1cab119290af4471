package handler

import (
	"net/http"
	"net/url"
	"strings"

	"bulkdelete/internal/sandbox/model"
	"bulkdelete/internal/sandbox/service"

	"github.com/labstack/echo/v4"
)

type ResourceHandler struct {
	Service service.ResourceService
}

func NewResourceHandler(s service.ResourceService) *ResourceHandler {
	return &ResourceHandler{Service: s}
}

// PostResources handles POST /resources (Seed)
func (h *ResourceHandler) PostResources(c echo.Context) error {
	var req model.SeedResourcesReq
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, model.ErrorResponse{
			Error: model.ErrorDetail{Code: "bad_request", Message: "Invalid body"},
		})
	}

	if err := req.Validate(); err != nil {
		status, body := validationError(err)
		return respondError(c, status, body)
	}

	result, err := h.Service.SeedResources(c.Request().Context(), req)
	if err != nil {
		status, body := httpError(err)
		return respondError(c, status, body)
	}

	return c.JSON(http.StatusCreated, result)
}

// GetResource handles GET /resources/:id
func (h *ResourceHandler) GetResource(c echo.Context) error {
	res, err := h.Service.GetResource(c.Request().Context(), resourceID(c))
	if err != nil {
		status, body := httpError(err)
		return respondError(c, status, body)
	}
	return c.JSON(http.StatusOK, res)
}

// DeleteResource handles DELETE /resources/:id
func (h *ResourceHandler) DeleteResource(c echo.Context) error {
	if err := h.Service.DeleteResource(c.Request().Context(), resourceID(c)); err != nil {
		status, body := httpError(err)
		return respondError(c, status, body)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "deleted"})
}

// resourceID returns the :id path parameter. Echo matches on the raw path
// when the request has one, so the parameter is still escaped in that case.
func resourceID(c echo.Context) string {
	id := c.Param("id")
	if c.Request().URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(id); err == nil {
			id = unescaped
		}
	}
	return strings.TrimSpace(id)
}
