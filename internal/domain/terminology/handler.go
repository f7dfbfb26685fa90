package terminology

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cce/oncogen/internal/platform/fhir"
)

// Handler provides REST endpoints for terminology services.
type Handler struct {
	svc *Service
}

// NewHandler creates a new terminology handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers terminology routes on the FHIR group.
func (h *Handler) RegisterRoutes(fhirGroup *echo.Group) {
	fhirGroup.GET("/CodeSystem", h.ListCodeSystems)
	fhirGroup.GET("/CodeSystem/:name", h.GetCodeSystem)
	fhirGroup.GET("/CodeSystem/$lookup", h.FHIRLookup)
	fhirGroup.POST("/CodeSystem/$lookup", h.FHIRLookup)
	fhirGroup.POST("/CodeSystem/$validate-code", h.FHIRValidateCode)
	fhirGroup.GET("/ValueSet/$expand", h.ExpandValueSet)
}

// ListCodeSystems handles GET /fhir/CodeSystem
func (h *Handler) ListCodeSystems(c echo.Context) error {
	systems, err := h.svc.CodeSystems()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, fhir.ErrorOutcome(err.Error()))
	}
	bundle := &fhir.Bundle{ResourceType: "Bundle", Type: "searchset"}
	for _, cs := range systems {
		bundle.Entry = append(bundle.Entry, fhir.BundleEntry{FullURL: cs.URL, Resource: cs})
	}
	return fhir.Respond(c, http.StatusOK, bundle)
}

// GetCodeSystem handles GET /fhir/CodeSystem/:name
func (h *Handler) GetCodeSystem(c echo.Context) error {
	name := c.Param("name")
	cs, err := h.svc.CodeSystem(name)
	if errors.Is(err, ErrUnknownCodeSystem) {
		return c.JSON(http.StatusNotFound, fhir.NotFoundOutcome("CodeSystem", name))
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, fhir.ErrorOutcome(err.Error()))
	}
	return fhir.Respond(c, http.StatusOK, cs)
}

// FHIRLookup handles GET|POST /fhir/CodeSystem/$lookup
func (h *Handler) FHIRLookup(c echo.Context) error {
	var req LookupRequest
	if err := c.Bind(&req); err != nil {
		return bindError(c, err)
	}
	resp, err := h.svc.Lookup(c.Request().Context(), &req)
	if err != nil {
		return c.JSON(lookupStatus(err), fhir.ErrorOutcome(err.Error()))
	}
	return c.JSON(http.StatusOK, resp)
}

// FHIRValidateCode handles POST /fhir/CodeSystem/$validate-code
func (h *Handler) FHIRValidateCode(c echo.Context) error {
	var req ValidateCodeRequest
	if err := c.Bind(&req); err != nil {
		return bindError(c, err)
	}
	resp, err := h.svc.ValidateCode(c.Request().Context(), &req)
	if err != nil {
		return c.JSON(lookupStatus(err), fhir.ErrorOutcome(err.Error()))
	}
	return c.JSON(http.StatusOK, resp)
}

// ExpandValueSet handles GET /fhir/ValueSet/$expand?url=...
func (h *Handler) ExpandValueSet(c echo.Context) error {
	vs, err := h.svc.Expand(c.Request().Context(), c.QueryParam("url"))
	if err != nil {
		return c.JSON(lookupStatus(err), fhir.ErrorOutcome(err.Error()))
	}
	return c.JSON(http.StatusOK, vs)
}

// bindError keeps the status of a body read that failed in middleware, such
// as an oversized body.
func bindError(c echo.Context, err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) && he.Code != http.StatusBadRequest {
		return he
	}
	return c.JSON(http.StatusBadRequest, fhir.ErrorOutcome(err.Error()))
}

func lookupStatus(err error) int {
	if errors.Is(err, ErrUnknownCodeSystem) || errors.Is(err, ErrUnknownCode) {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}
