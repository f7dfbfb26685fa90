package lens

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handler serves the catalogue.
type Handler struct {
	registry *Registry
}

// NewHandler creates a new catalogue handler.
func NewHandler(registry *Registry) *Handler {
	return &Handler{registry: registry}
}

// RegisterRoutes registers catalogue routes on the API group.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/catalogue", h.GetCatalogue)
	api.GET("/catalogue/operands", h.ListOperands)
}

// GetCatalogue handles GET /api/v1/catalogue?kinds=patient,specimen&format=yaml
func (h *Handler) GetCatalogue(c echo.Context) error {
	kinds, err := ParseKinds(c.QueryParam("kinds"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	format, err := ParseFormat(c.QueryParam("format"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	catalogue, err := h.registry.BuildCatalogue(kinds)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if format == FormatJSON {
		return c.JSON(http.StatusOK, catalogue)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, catalogue, format); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.Blob(http.StatusOK, format.ContentType(), buf.Bytes())
}

// ListOperands handles GET /api/v1/catalogue/operands
func (h *Handler) ListOperands(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"operands":       Operands(),
		"conditionTypes": []ConditionType{ConditionEquals},
	})
}
