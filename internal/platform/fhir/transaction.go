package fhir

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/cce/oncogen/pkg/fhirmodels"
)

// ValidationSeverity represents the severity of a validation issue.
type ValidationSeverity string

const (
	SeverityError   ValidationSeverity = "error"
	SeverityWarning ValidationSeverity = "warning"
)

// ValidationIssueType represents the type of validation issue.
type ValidationIssueType string

const (
	VIssueTypeStructure    ValidationIssueType = "structure"
	VIssueTypeRequired     ValidationIssueType = "required"
	VIssueTypeValue        ValidationIssueType = "value"
	VIssueTypeBusinessRule ValidationIssueType = "business-rule"
	VIssueTypeNotFound     ValidationIssueType = "not-found"
	VIssueTypeDuplicate    ValidationIssueType = "duplicate"
)

// ValidationIssue represents a single validation problem.
type ValidationIssue struct {
	Severity    ValidationSeverity  `json:"severity"`
	Code        ValidationIssueType `json:"code"`
	Location    string              `json:"location,omitempty"`
	Diagnostics string              `json:"diagnostics"`
}

func (v ValidationIssue) Error() string {
	if v.Location == "" {
		return v.Diagnostics
	}
	return v.Location + ": " + v.Diagnostics
}

// ValidationOutcome maps validation issues onto an OperationOutcome.
func ValidationOutcome(issues []ValidationIssue) *OperationOutcome {
	out := &OperationOutcome{ResourceType: "OperationOutcome"}
	for _, vi := range issues {
		issue := OperationOutcomeIssue{
			Severity:    string(vi.Severity),
			Code:        string(vi.Code),
			Diagnostics: vi.Diagnostics,
		}
		if vi.Location != "" {
			issue.Expression = []string{vi.Location}
		}
		out.Issue = append(out.Issue, issue)
	}
	if len(out.Issue) == 0 {
		out.Issue = []OperationOutcomeIssue{{Severity: "information", Code: "informational", Diagnostics: "bundle is valid"}}
	}
	return out
}

// ---------------------------------------------------------------------------
// Parsed transaction bundles
// ---------------------------------------------------------------------------

// TransactionEntry is a Bundle entry with its resource in generic form.
type TransactionEntry struct {
	FullURL  string                 `json:"fullUrl,omitempty"`
	Resource map[string]interface{} `json:"resource,omitempty"`
	Request  BundleRequest          `json:"request"`
}

// TransactionBundle is the generic representation of a transaction Bundle,
// used for validation of both generated and externally supplied documents.
type TransactionBundle struct {
	ResourceType string             `json:"resourceType"`
	ID           string             `json:"id,omitempty"`
	Type         string             `json:"type"`
	Entries      []TransactionEntry `json:"entry,omitempty"`
}

// ParseTransactionBundle parses a raw JSON body into a TransactionBundle.
func ParseTransactionBundle(body []byte) (*TransactionBundle, error) {
	var raw struct {
		ResourceType string `json:"resourceType"`
		ID           string `json:"id"`
		Type         string `json:"type"`
		Entry        []struct {
			FullURL  string          `json:"fullUrl,omitempty"`
			Resource json.RawMessage `json:"resource,omitempty"`
			Request  *BundleRequest  `json:"request,omitempty"`
		} `json:"entry,omitempty"`
	}

	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if raw.ResourceType != "Bundle" {
		return nil, fmt.Errorf("expected resourceType Bundle, got %q", raw.ResourceType)
	}
	if raw.Type == "" {
		return nil, fmt.Errorf("bundle type is required")
	}

	bundle := &TransactionBundle{
		ResourceType: raw.ResourceType,
		ID:           raw.ID,
		Type:         raw.Type,
		Entries:      make([]TransactionEntry, 0, len(raw.Entry)),
	}
	for i, e := range raw.Entry {
		entry := TransactionEntry{FullURL: e.FullURL}
		if len(e.Resource) > 0 {
			var res map[string]interface{}
			if err := json.Unmarshal(e.Resource, &res); err != nil {
				return nil, fmt.Errorf("invalid resource in entry %d: %w", i, err)
			}
			entry.Resource = res
		}
		if e.Request != nil {
			entry.Request = *e.Request
		}
		bundle.Entries = append(bundle.Entries, entry)
	}
	return bundle, nil
}

// ToTransaction converts a typed Bundle into its generic form.
func ToTransaction(b *Bundle) (*TransactionBundle, error) {
	raw, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("marshal bundle: %w", err)
	}
	return ParseTransactionBundle(raw)
}

// ---------------------------------------------------------------------------
// Validation
// ---------------------------------------------------------------------------

// ValidateTransactionBundle checks structure and referential closure. Every
// literal reference must equal the request url of an earlier entry; "#id"
// references must name a contained resource of the same entry.
func ValidateTransactionBundle(bundle *TransactionBundle) []ValidationIssue {
	var issues []ValidationIssue

	if bundle.Type != fhirmodels.BundleTypeTransaction {
		issues = append(issues, ValidationIssue{
			Severity:    SeverityError,
			Code:        VIssueTypeValue,
			Diagnostics: fmt.Sprintf("bundle type must be 'transaction', got %q", bundle.Type),
			Location:    "Bundle.type",
		})
	}

	position := make(map[string]int, len(bundle.Entries))
	for i, entry := range bundle.Entries {
		if entry.Request.URL == "" {
			continue
		}
		if _, dup := position[entry.Request.URL]; dup {
			issues = append(issues, ValidationIssue{
				Severity:    SeverityError,
				Code:        VIssueTypeDuplicate,
				Diagnostics: fmt.Sprintf("entry %d: duplicate request url %q", i, entry.Request.URL),
				Location:    fmt.Sprintf("Bundle.entry[%d].request.url", i),
			})
			continue
		}
		position[entry.Request.URL] = i
	}

	for i, entry := range bundle.Entries {
		prefix := fmt.Sprintf("Bundle.entry[%d]", i)

		if entry.Request.Method != fhirmodels.HTTPVerbPut {
			issues = append(issues, ValidationIssue{
				Severity:    SeverityError,
				Code:        VIssueTypeValue,
				Diagnostics: fmt.Sprintf("entry %d: request.method must be PUT, got %q", i, entry.Request.Method),
				Location:    prefix + ".request.method",
			})
		}
		if entry.Request.URL == "" {
			issues = append(issues, ValidationIssue{
				Severity:    SeverityError,
				Code:        VIssueTypeRequired,
				Diagnostics: fmt.Sprintf("entry %d: request.url is required", i),
				Location:    prefix + ".request.url",
			})
		}
		if entry.FullURL == "" {
			issues = append(issues, ValidationIssue{
				Severity:    SeverityError,
				Code:        VIssueTypeRequired,
				Diagnostics: fmt.Sprintf("entry %d: fullUrl is required for transaction entries", i),
				Location:    prefix + ".fullUrl",
			})
		}
		if entry.Resource == nil {
			issues = append(issues, ValidationIssue{
				Severity:    SeverityError,
				Code:        VIssueTypeRequired,
				Diagnostics: fmt.Sprintf("entry %d: resource is required", i),
				Location:    prefix + ".resource",
			})
			continue
		}

		contained := containedIDs(entry.Resource)
		for _, ref := range ExtractReferences(entry.Resource) {
			if strings.HasPrefix(ref, "#") {
				if !contained[strings.TrimPrefix(ref, "#")] {
					issues = append(issues, ValidationIssue{
						Severity:    SeverityError,
						Code:        VIssueTypeNotFound,
						Diagnostics: fmt.Sprintf("entry %d: contained reference %q has no contained resource", i, ref),
						Location:    prefix + ".resource",
					})
				}
				continue
			}
			target, ok := position[ref]
			switch {
			case !ok:
				issues = append(issues, ValidationIssue{
					Severity:    SeverityError,
					Code:        VIssueTypeNotFound,
					Diagnostics: fmt.Sprintf("entry %d: reference %q does not resolve to any entry", i, ref),
					Location:    prefix + ".resource",
				})
			case target >= i:
				issues = append(issues, ValidationIssue{
					Severity:    SeverityError,
					Code:        VIssueTypeBusinessRule,
					Diagnostics: fmt.Sprintf("entry %d: reference %q points at entry %d which is not earlier", i, ref, target),
					Location:    prefix + ".resource",
				})
			}
		}
	}

	return issues
}

// ExtractReferences returns every "reference" value found anywhere in a
// resource, sorted. Contained resources are walked as part of the parent.
func ExtractReferences(resource map[string]interface{}) []string {
	var refs []string
	var walk func(v interface{})
	walk = func(v interface{}) {
		switch val := v.(type) {
		case map[string]interface{}:
			if ref, ok := val["reference"].(string); ok {
				refs = append(refs, ref)
			}
			for _, child := range val {
				walk(child)
			}
		case []interface{}:
			for _, item := range val {
				walk(item)
			}
		}
	}
	walk(resource)
	sort.Strings(refs)
	return refs
}

func containedIDs(resource map[string]interface{}) map[string]bool {
	ids := make(map[string]bool)
	list, _ := resource["contained"].([]interface{})
	for _, item := range list {
		if m, ok := item.(map[string]interface{}); ok {
			if id, ok := m["id"].(string); ok {
				ids[id] = true
			}
		}
	}
	return ids
}
