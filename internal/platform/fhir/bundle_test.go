package fhir

import (
	"encoding/json"
	"testing"
)

func TestNewTransactionBundle(t *testing.T) {
	b := NewTransactionBundle("Bundle-id-1")
	if b.ResourceType != "Bundle" || b.Type != "transaction" || b.ID != "Bundle-id-1" {
		t.Errorf("unexpected bundle %+v", b)
	}
	if b.GetResourceType() != "Bundle" || b.GetID() != "Bundle-id-1" {
		t.Error("unexpected Resource accessors")
	}
}

func TestBundle_AddPut(t *testing.T) {
	b := NewTransactionBundle("Bundle-id-1")
	b.AddPut("https://example.org/Patient-id-1", &Patient{ResourceType: "Patient", ID: "Patient-id-1"}, "Patient/Patient-id-1")

	if len(b.Entry) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(b.Entry))
	}
	e := b.Entry[0]
	if e.Request.Method != "PUT" || e.Request.URL != "Patient/Patient-id-1" {
		t.Errorf("unexpected request %+v", e.Request)
	}
	if e.FullURL != "https://example.org/Patient-id-1" {
		t.Errorf("unexpected fullUrl %s", e.FullURL)
	}
}

func TestBundle_JSONKeepsResourceFields(t *testing.T) {
	b := NewTransactionBundle("Bundle-id-1")
	b.AddPut("urn:x", &Condition{
		ResourceType: "Condition",
		ID:           "Condition-id-1",
		Subject:      Ref("Patient/Patient-id-1"),
	}, "Condition/Condition-id-1")

	raw, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var parsed struct {
		Entry []struct {
			Resource struct {
				ResourceType string `json:"resourceType"`
				Subject      struct {
					Reference string `json:"reference"`
				} `json:"subject"`
			} `json:"resource"`
		} `json:"entry"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if parsed.Entry[0].Resource.Subject.Reference != "Patient/Patient-id-1" {
		t.Errorf("expected subject reference, got %+v", parsed.Entry[0].Resource)
	}
}

func TestFormatReference(t *testing.T) {
	if got := FormatReference("Observation", "TNMc-id-2"); got != "Observation/TNMc-id-2" {
		t.Errorf("unexpected reference %s", got)
	}
}
