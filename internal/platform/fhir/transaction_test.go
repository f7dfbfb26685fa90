package fhir

import (
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// ParseTransactionBundle tests
// ---------------------------------------------------------------------------

func TestParseTransactionBundle_ValidTransaction(t *testing.T) {
	body := `{
		"resourceType": "Bundle",
		"id": "Bundle-id-1",
		"type": "transaction",
		"entry": [
			{
				"fullUrl": "https://example.org/Patient-id-1",
				"resource": {"resourceType": "Patient", "id": "Patient-id-1"},
				"request": {"method": "PUT", "url": "Patient/Patient-id-1"}
			}
		]
	}`

	b, err := ParseTransactionBundle([]byte(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Type != "transaction" {
		t.Errorf("expected type transaction, got %s", b.Type)
	}
	if b.ID != "Bundle-id-1" {
		t.Errorf("expected id Bundle-id-1, got %s", b.ID)
	}
	if len(b.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(b.Entries))
	}
	if b.Entries[0].Request.Method != "PUT" {
		t.Errorf("expected method PUT, got %s", b.Entries[0].Request.Method)
	}
	if b.Entries[0].Resource["resourceType"] != "Patient" {
		t.Errorf("expected resourceType Patient in resource")
	}
}

func TestParseTransactionBundle_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"invalid json", `{not json`, "invalid JSON"},
		{"missing type", `{"resourceType":"Bundle"}`, "type is required"},
		{"wrong resource type", `{"resourceType":"Patient","type":"transaction"}`, "expected resourceType Bundle"},
		{"bad entry resource", `{"resourceType":"Bundle","type":"transaction","entry":[{"resource":"oops"}]}`, "entry 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTransactionBundle([]byte(tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestToTransaction(t *testing.T) {
	b := NewTransactionBundle("Bundle-id-3")
	b.AddPut("https://example.org/Patient-id-3", &Patient{ResourceType: "Patient", ID: "Patient-id-3"}, "Patient/Patient-id-3")

	tx, err := ToTransaction(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tx.Entries) != 1 || tx.Entries[0].Request.URL != "Patient/Patient-id-3" {
		t.Errorf("unexpected entries %+v", tx.Entries)
	}
	if tx.Entries[0].Resource["id"] != "Patient-id-3" {
		t.Errorf("expected resource id to survive, got %v", tx.Entries[0].Resource["id"])
	}
}

// ---------------------------------------------------------------------------
// ValidateTransactionBundle tests
// ---------------------------------------------------------------------------

func entry(url string, resource map[string]interface{}) TransactionEntry {
	return TransactionEntry{
		FullURL:  "https://example.org/" + url,
		Resource: resource,
		Request:  BundleRequest{Method: "PUT", URL: url},
	}
}

func subjectOf(resourceType, ref string) map[string]interface{} {
	return map[string]interface{}{
		"resourceType": resourceType,
		"subject":      map[string]interface{}{"reference": ref},
	}
}

func hasIssue(issues []ValidationIssue, code ValidationIssueType) bool {
	for _, i := range issues {
		if i.Code == code {
			return true
		}
	}
	return false
}

func TestValidateTransactionBundle_Closed(t *testing.T) {
	b := &TransactionBundle{
		Type: "transaction",
		Entries: []TransactionEntry{
			entry("Patient/p1", map[string]interface{}{"resourceType": "Patient"}),
			entry("Condition/c1", subjectOf("Condition", "Patient/p1")),
		},
	}
	if issues := ValidateTransactionBundle(b); len(issues) != 0 {
		t.Errorf("expected no issues, got %v", issues)
	}
}

func TestValidateTransactionBundle_InvalidBundleType(t *testing.T) {
	b := &TransactionBundle{Type: "batch"}
	issues := ValidateTransactionBundle(b)
	if !hasIssue(issues, VIssueTypeValue) {
		t.Errorf("expected value issue, got %v", issues)
	}
}

func TestValidateTransactionBundle_Dangling(t *testing.T) {
	b := &TransactionBundle{
		Type: "transaction",
		Entries: []TransactionEntry{
			entry("Condition/c1", subjectOf("Condition", "Patient/missing")),
		},
	}
	issues := ValidateTransactionBundle(b)
	if !hasIssue(issues, VIssueTypeNotFound) {
		t.Errorf("expected not-found issue, got %v", issues)
	}
}

func TestValidateTransactionBundle_ForwardReference(t *testing.T) {
	b := &TransactionBundle{
		Type: "transaction",
		Entries: []TransactionEntry{
			entry("Condition/c1", subjectOf("Condition", "Patient/p1")),
			entry("Patient/p1", map[string]interface{}{"resourceType": "Patient"}),
		},
	}
	issues := ValidateTransactionBundle(b)
	if !hasIssue(issues, VIssueTypeBusinessRule) {
		t.Errorf("expected business-rule issue, got %v", issues)
	}
}

func TestValidateTransactionBundle_SelfReference(t *testing.T) {
	b := &TransactionBundle{
		Type: "transaction",
		Entries: []TransactionEntry{
			entry("Patient/p1", subjectOf("Patient", "Patient/p1")),
		},
	}
	if issues := ValidateTransactionBundle(b); !hasIssue(issues, VIssueTypeBusinessRule) {
		t.Errorf("expected a self reference to be rejected, got %v", issues)
	}
}

func TestValidateTransactionBundle_Duplicate(t *testing.T) {
	p := entry("Patient/p1", map[string]interface{}{"resourceType": "Patient"})
	b := &TransactionBundle{Type: "transaction", Entries: []TransactionEntry{p, p}}
	if issues := ValidateTransactionBundle(b); !hasIssue(issues, VIssueTypeDuplicate) {
		t.Errorf("expected duplicate issue, got %v", issues)
	}
}

func TestValidateTransactionBundle_RequiredFields(t *testing.T) {
	b := &TransactionBundle{
		Type: "transaction",
		Entries: []TransactionEntry{
			{Request: BundleRequest{Method: "POST"}},
		},
	}
	issues := ValidateTransactionBundle(b)
	var locations []string
	for _, i := range issues {
		locations = append(locations, i.Location)
	}
	joined := strings.Join(locations, ",")
	for _, want := range []string{"request.method", "request.url", "fullUrl", "resource"} {
		if !strings.Contains(joined, want) {
			t.Errorf("expected issue at %s, got %v", want, locations)
		}
	}
}

func TestValidateTransactionBundle_ContainedReference(t *testing.T) {
	ms := subjectOf("MedicationStatement", "Patient/p1")
	ms["medicationReference"] = map[string]interface{}{"reference": "#medication"}
	ms["contained"] = []interface{}{
		map[string]interface{}{"resourceType": "Medication", "id": "medication"},
	}

	b := &TransactionBundle{
		Type: "transaction",
		Entries: []TransactionEntry{
			entry("Patient/p1", map[string]interface{}{"resourceType": "Patient"}),
			entry("MedicationStatement/m1", ms),
		},
	}
	if issues := ValidateTransactionBundle(b); len(issues) != 0 {
		t.Errorf("expected contained reference to resolve, got %v", issues)
	}

	ms["contained"] = []interface{}{}
	if issues := ValidateTransactionBundle(b); !hasIssue(issues, VIssueTypeNotFound) {
		t.Errorf("expected missing contained resource to be reported, got %v", issues)
	}
}

func TestExtractReferences(t *testing.T) {
	res := map[string]interface{}{
		"subject": map[string]interface{}{"reference": "Patient/p1"},
		"focus": []interface{}{
			map[string]interface{}{"reference": "Condition/c1"},
		},
		"reasonReference": []interface{}{
			map[string]interface{}{"reference": "Condition/c1"},
		},
	}
	got := ExtractReferences(res)
	want := []string{"Condition/c1", "Condition/c1", "Patient/p1"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestValidationOutcome(t *testing.T) {
	out := ValidationOutcome(nil)
	if len(out.Issue) != 1 || out.Issue[0].Severity != "information" {
		t.Errorf("expected informational issue for a valid bundle, got %+v", out.Issue)
	}

	out = ValidationOutcome([]ValidationIssue{{Severity: SeverityError, Code: VIssueTypeNotFound, Location: "Bundle.entry[0]", Diagnostics: "x"}})
	if out.Issue[0].Code != "not-found" || out.Issue[0].Expression[0] != "Bundle.entry[0]" {
		t.Errorf("unexpected issue %+v", out.Issue[0])
	}
}
