package terminology

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofhir/fhir/r4"

	"github.com/cce/oncogen/internal/domain/codetables"
)

var vitalStatusURL = codetables.DefaultSystems().CodeSystemURL("VitalStatusCS")

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(buildAll(t))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestNewService_RejectsMismatch(t *testing.T) {
	_, err := NewService([]*Definition{{Name: "Broken", URL: "x", Count: 1}})
	if !errors.Is(err, ErrConceptCountMismatch) {
		t.Errorf("expected ErrConceptCountMismatch, got %v", err)
	}
}

func TestNewService_RejectsDuplicateURL(t *testing.T) {
	d := &Definition{Name: "A", URL: "x"}
	if _, err := NewService([]*Definition{d, d}); err == nil {
		t.Error("expected duplicate url error")
	}
}

func TestService_CodeSystems(t *testing.T) {
	svc := newTestService(t)
	all, err := svc.CodeSystems()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(all); got != len(codetables.Terminologies()) {
		t.Errorf("expected %d code systems, got %d", len(codetables.Terminologies()), got)
	}
	cs, err := svc.CodeSystem("uiccstagecs")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cs.Name != "UICCStageCS" {
		t.Errorf("expected UICCStageCS, got %s", cs.Name)
	}
	if _, err := svc.CodeSystem("nope"); !errors.Is(err, ErrUnknownCodeSystem) {
		t.Errorf("expected ErrUnknownCodeSystem, got %v", err)
	}
}

func TestService_CodeSystems_ChecksR4Export(t *testing.T) {
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
	d.Count = 2

	if _, err := svc.CodeSystems(); !errors.Is(err, ErrConceptCountMismatch) {
		t.Errorf("expected ErrConceptCountMismatch from CodeSystems, got %v", err)
	}
	if _, err := svc.CodeSystem("vitalstatuscs"); !errors.Is(err, ErrConceptCountMismatch) {
		t.Errorf("expected ErrConceptCountMismatch from CodeSystem, got %v", err)
	}
}

func TestService_Lookup(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Lookup(ctx, &LookupRequest{System: vitalStatusURL, Code: "deceased"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.ResourceType != "Parameters" {
		t.Errorf("expected Parameters, got %s", resp.ResourceType)
	}
	if resp.Value("display") != "deceased" || resp.Value("name") != "VitalStatusCS" {
		t.Errorf("unexpected parameters %+v", resp.Parameter)
	}

	if _, err := svc.Lookup(ctx, &LookupRequest{System: vitalStatusURL + "|1.0.0", Code: "alive"}); err != nil {
		t.Errorf("expected versioned system to resolve, got %v", err)
	}
}

func TestService_LookupErrors(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  LookupRequest
		want error
	}{
		{"unknown system", LookupRequest{System: "http://example.org/cs", Code: "x"}, ErrUnknownCodeSystem},
		{"unknown code", LookupRequest{System: vitalStatusURL, Code: "zombie"}, ErrUnknownCode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Lookup(ctx, &tt.req)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	if _, err := svc.Lookup(ctx, &LookupRequest{Code: "alive"}); err == nil {
		t.Error("expected error for missing system")
	}
	if _, err := svc.Lookup(ctx, &LookupRequest{System: vitalStatusURL}); err == nil {
		t.Error("expected error for missing code")
	}
}

func TestService_ValidateCode(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  ValidateCodeRequest
		want bool
	}{
		{"known code", ValidateCodeRequest{System: vitalStatusURL, Code: "alive"}, true},
		{"matching display", ValidateCodeRequest{System: vitalStatusURL, Code: "alive", Display: "alive"}, true},
		{"wrong display", ValidateCodeRequest{System: vitalStatusURL, Code: "alive", Display: "living"}, false},
		{"unknown code", ValidateCodeRequest{System: vitalStatusURL, Code: "zombie"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.ValidateCode(ctx, &tt.req)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.Result() != tt.want {
				t.Errorf("expected result %v, got %v", tt.want, resp.Result())
			}
		})
	}
}

func TestService_Expand(t *testing.T) {
	svc := newTestService(t)

	vs, err := svc.Expand(context.Background(), vitalStatusURL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vs.Expansion == nil || len(vs.Expansion.Contains) != 3 {
		t.Fatalf("expected 3 expanded codes, got %+v", vs.Expansion)
	}
	want := []string{"alive", "deceased", "unknown"}
	for i, c := range vs.Expansion.Contains {
		if *c.Code != want[i] {
			t.Errorf("code %d: expected %s, got %s", i, want[i], *c.Code)
		}
		if *c.System != vitalStatusURL {
			t.Errorf("code %d: unexpected system %s", i, *c.System)
		}
	}

	if _, err := svc.Expand(context.Background(), ""); err == nil {
		t.Error("expected error for missing url")
	}
}

func TestService_Expand_ValueSetElements(t *testing.T) {
	svc := newTestService(t)
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }

	for _, target := range []string{vitalStatusURL, vitalStatusURL + "?vs"} {
		vs, err := svc.Expand(context.Background(), target)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", target, err)
		}
		if vs.Url == nil || *vs.Url != vitalStatusURL+"?vs" {
			t.Errorf("%s: expected the implicit value set url, got %v", target, vs.Url)
		}
		if vs.Status == nil || *vs.Status != r4.PublicationStatusActive {
			t.Errorf("%s: expected status active, got %v", target, vs.Status)
		}
		if vs.Expansion.Timestamp == nil || *vs.Expansion.Timestamp != "2024-03-01T12:00:00Z" {
			t.Errorf("%s: unexpected expansion timestamp %v", target, vs.Expansion.Timestamp)
		}
		if vs.Expansion.Total == nil || *vs.Expansion.Total != 3 {
			t.Errorf("%s: expected total 3, got %v", target, vs.Expansion.Total)
		}
		if len(vs.Compose.Include) != 1 || *vs.Compose.Include[0].System != vitalStatusURL {
			t.Errorf("%s: expected compose to include the code system", target)
		}
	}
}
