package synthetic

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/cce/oncogen/internal/platform/fhir"
	"github.com/cce/oncogen/internal/platform/output"
)

// maxCount bounds a single HTTP generation request.
const maxCount = 1000

// Handler exposes generation and bundle validation over HTTP.
type Handler struct {
	svc     *Service
	archive output.Sink
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithArchive keeps a copy of every generated bundle in sink, encoded in the
// negotiated format.
func WithArchive(sink output.Sink) HandlerOption {
	return func(h *Handler) { h.archive = sink }
}

// NewHandler creates a new synthetic data handler.
func NewHandler(svc *Service, opts ...HandlerOption) *Handler {
	h := &Handler{svc: svc}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes registers generator routes on the FHIR group.
func (h *Handler) RegisterRoutes(fhirGroup *echo.Group) {
	fhirGroup.POST("/$generate", h.Generate)
	fhirGroup.POST("/Bundle/$validate", h.ValidateBundle)
}

// Generate handles POST /fhir/$generate?kind=...&count=...
func (h *Handler) Generate(c echo.Context) error {
	kind := KindBundle
	if raw := c.QueryParam("kind"); raw != "" {
		k, err := ParseKind(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, fhir.ErrorOutcome(err.Error()))
		}
		kind = k
	}

	count := 1
	if raw := c.QueryParam("count"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > maxCount {
			return c.JSON(http.StatusBadRequest, fhir.ErrorOutcome("count must be an integer between 1 and "+strconv.Itoa(maxCount)))
		}
		count = v
	}

	res, err := h.svc.Generate(kind, count)
	switch {
	case errors.Is(err, ErrNotImplemented):
		return c.JSON(http.StatusNotImplemented, fhir.NotSupportedOutcome(err.Error()))
	case err != nil:
		return c.JSON(http.StatusInternalServerError, fhir.ErrorOutcome(err.Error()))
	}
	if h.archive != nil {
		doc, err := res.Document(fhir.NegotiatedFormat(c))
		if err == nil {
			err = h.archive.Write(c.Request().Context(), doc)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		if err != nil {
			return c.JSON(http.StatusInternalServerError, fhir.ErrorOutcome(err.Error()))
		}
	}
	return fhir.Respond(c, http.StatusOK, res.Bundle)
}

// ValidateBundle handles POST /fhir/Bundle/$validate. The body is a JSON
// transaction Bundle; the response lists every closure or structure issue.
func (h *Handler) ValidateBundle(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return he
		}
		return c.JSON(http.StatusBadRequest, fhir.ErrorOutcome(err.Error()))
	}
	bundle, err := fhir.ParseTransactionBundle(body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, fhir.ErrorOutcome(err.Error()))
	}
	outcome := fhir.ValidationOutcome(fhir.ValidateTransactionBundle(bundle))
	status := http.StatusOK
	if outcome.HasErrors() {
		status = http.StatusUnprocessableEntity
	}
	return c.JSON(status, outcome)
}
