package terminology

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofhir/fhir/r4"
	"github.com/labstack/echo/v4"

	"github.com/cce/oncogen/internal/platform/middleware"
)

func newTestHandler(t *testing.T) (*Handler, *echo.Echo) {
	return NewHandler(newTestService(t)), echo.New()
}

func TestHandler_ListCodeSystems(t *testing.T) {
	h, e := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/fhir/CodeSystem", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ListCodeSystems(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var body struct {
		Type  string        `json:"type"`
		Entry []interface{} `json:"entry"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.Type != "searchset" || len(body.Entry) != 9 {
		t.Errorf("expected searchset with 9 entries, got %s with %d", body.Type, len(body.Entry))
	}
}

func TestHandler_GetCodeSystem(t *testing.T) {
	h, e := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/fhir/CodeSystem/SitelocationCS", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("name")
	c.SetParamValues("SitelocationCS")

	if err := h.GetCodeSystem(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var cs r4.CodeSystem
	if err := json.Unmarshal(rec.Body.Bytes(), &cs); err != nil {
		t.Fatalf("response is not an R4 CodeSystem: %v", err)
	}
	if len(cs.Concept) != 6 {
		t.Errorf("expected 6 concepts, got %d", len(cs.Concept))
	}
}

func TestHandler_GetCodeSystem_NotFound(t *testing.T) {
	h, e := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/fhir/CodeSystem/Missing", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("name")
	c.SetParamValues("Missing")

	if err := h.GetCodeSystem(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestHandler_GetCodeSystem_ExportFailure(t *testing.T) {
	d := &Definition{
		Name:     "VitalStatusCS",
		URL:      vitalStatusURL,
		Concepts: []Concept{{Code: "alive", Display: "alive"}},
		Count:    1,
	}
	svc, err := NewService([]*Definition{d})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d.Count = 3
	h, e := NewHandler(svc), echo.New()

	for _, name := range []string{"", "VitalStatusCS"} {
		req := httptest.NewRequest(http.MethodGet, "/fhir/CodeSystem/"+name, nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		if name == "" {
			err = h.ListCodeSystems(c)
		} else {
			c.SetParamNames("name")
			c.SetParamValues(name)
			err = h.GetCodeSystem(c)
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("%q: expected 500, got %d", name, rec.Code)
		}
	}
}

func TestHandler_FHIRLookup_Post(t *testing.T) {
	h, e := newTestHandler(t)

	body := `{"system":"` + vitalStatusURL + `","code":"alive"}`
	req := httptest.NewRequest(http.MethodPost, "/fhir/CodeSystem/$lookup", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.FHIRLookup(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandler_FHIRLookup_OversizedChunkedBody(t *testing.T) {
	h, e := newTestHandler(t)
	lookup := middleware.BodyLimit("8", "8")(h.FHIRLookup)

	body := `{"system":"` + vitalStatusURL + `","code":"alive"}`
	req := httptest.NewRequest(http.MethodPost, "/fhir/CodeSystem/$lookup", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.ContentLength = -1
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := lookup(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected a 413 error, got %v (status %d)", err, rec.Code)
	}
}

func TestHandler_FHIRLookup_Get(t *testing.T) {
	h, e := newTestHandler(t)

	q := url.Values{"system": {vitalStatusURL}, "code": {"zombie"}}
	req := httptest.NewRequest(http.MethodGet, "/fhir/CodeSystem/$lookup?"+q.Encode(), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.FHIRLookup(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown code, got %d", rec.Code)
	}
}

func TestHandler_FHIRValidateCode(t *testing.T) {
	h, e := newTestHandler(t)

	body := `{"system":"` + vitalStatusURL + `","code":"unknown"}`
	req := httptest.NewRequest(http.MethodPost, "/fhir/CodeSystem/$validate-code", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.FHIRValidateCode(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var resp ValidateCodeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if !resp.Result() {
		t.Errorf("expected 'unknown' to be a valid vital status code, got %s", rec.Body.String())
	}
}

func TestHandler_ExpandValueSet(t *testing.T) {
	h, e := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/fhir/ValueSet/$expand?url="+url.QueryEscape(vitalStatusURL), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ExpandValueSet(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var vs r4.ValueSet
	if err := json.Unmarshal(rec.Body.Bytes(), &vs); err != nil {
		t.Fatalf("invalid ValueSet: %v", err)
	}
	if vs.Expansion == nil || len(vs.Expansion.Contains) != 3 {
		t.Fatalf("expected 3 codes, got %s", rec.Body.String())
	}
	if vs.Status == nil || vs.Expansion.Timestamp == nil {
		t.Errorf("expected status and expansion timestamp, got %s", rec.Body.String())
	}
}

func TestHandler_ExpandValueSet_Unknown(t *testing.T) {
	h, e := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/fhir/ValueSet/$expand?url=http://example.org/vs", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ExpandValueSet(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
