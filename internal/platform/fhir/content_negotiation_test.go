package fhir

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func negotiate(t *testing.T, target, accept string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := ContentNegotiationMiddleware()(func(c echo.Context) error {
		return Respond(c, http.StatusOK, &Patient{ResourceType: "Patient", ID: "p1"})
	})
	if err := handler(c); err != nil {
		t.Fatal(err)
	}
	return rec
}

func TestContentNegotiation_DefaultContentType(t *testing.T) {
	rec := negotiate(t, "/fhir/Patient", "")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != FHIRContentType {
		t.Errorf("expected Content-Type %q, got %q", FHIRContentType, ct)
	}
}

func TestContentNegotiation_FormatJSON(t *testing.T) {
	for _, format := range []string{"json", "application/json", "application/fhir+json"} {
		t.Run(format, func(t *testing.T) {
			rec := negotiate(t, "/fhir/Patient?_format="+format, "")
			if ct := rec.Header().Get("Content-Type"); ct != FHIRContentType {
				t.Errorf("expected Content-Type %q, got %q", FHIRContentType, ct)
			}
		})
	}
}

func TestContentNegotiation_FormatXML(t *testing.T) {
	for _, format := range []string{"xml", "application/xml", "application/fhir+xml"} {
		t.Run(format, func(t *testing.T) {
			rec := negotiate(t, "/fhir/Patient?_format="+format, "")
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			if ct := rec.Header().Get("Content-Type"); ct != FHIRXMLContentType {
				t.Errorf("expected Content-Type %q, got %q", FHIRXMLContentType, ct)
			}
			if !strings.Contains(rec.Body.String(), `<id value="p1">`) {
				t.Errorf("expected XML body, got %s", rec.Body.String())
			}
		})
	}
}

func TestContentNegotiation_UnsupportedFormat(t *testing.T) {
	rec := negotiate(t, "/fhir/Patient?_format=turtle", "")
	if rec.Code != http.StatusNotAcceptable {
		t.Errorf("expected 406, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "OperationOutcome") {
		t.Errorf("expected OperationOutcome, got %s", rec.Body.String())
	}
}

func TestContentNegotiation_Accept(t *testing.T) {
	tests := []struct {
		accept string
		want   string
	}{
		{"application/fhir+json", FHIRContentType},
		{"application/fhir+xml", FHIRXMLContentType},
		{"text/html, application/xml;q=0.9", FHIRXMLContentType},
		{"*/*", FHIRContentType},
	}
	for _, tt := range tests {
		t.Run(tt.accept, func(t *testing.T) {
			rec := negotiate(t, "/fhir/Patient", tt.accept)
			if ct := rec.Header().Get("Content-Type"); ct != tt.want {
				t.Errorf("expected Content-Type %q, got %q", tt.want, ct)
			}
		})
	}
}

func TestContentNegotiation_AcceptUnsupported(t *testing.T) {
	rec := negotiate(t, "/fhir/Patient", "text/html")
	if rec.Code != http.StatusNotAcceptable {
		t.Errorf("expected 406, got %d", rec.Code)
	}
}

func TestContentNegotiation_FormatTakesPrecedenceOverAccept(t *testing.T) {
	rec := negotiate(t, "/fhir/Patient?_format=xml", "application/fhir+json")
	if ct := rec.Header().Get("Content-Type"); ct != FHIRXMLContentType {
		t.Errorf("expected _format to win, got %q", ct)
	}
}

func TestParseFormat(t *testing.T) {
	if f, ok := ParseFormat("application/fhir xml"); !ok || f != FormatXML {
		t.Errorf("expected decoded '+' to parse as XML, got %q %v", f, ok)
	}
	if _, ok := ParseFormat("csv"); ok {
		t.Error("expected csv to be rejected")
	}
	if FormatXML.Extension() != "xml" || FormatJSON.Extension() != "json" {
		t.Error("unexpected extensions")
	}
}
