package fhir

import (
	"encoding/json"
	"fmt"

	"github.com/cce/oncogen/pkg/fhirmodels"
)

// Bundle represents a FHIR Bundle resource.
type Bundle struct {
	ResourceType string        `json:"resourceType"`
	ID           string        `json:"id,omitempty"`
	Type         string        `json:"type"`
	Entry        []BundleEntry `json:"entry,omitempty"`
}

type BundleEntry struct {
	FullURL  string         `json:"fullUrl,omitempty"`
	Resource Resource       `json:"resource,omitempty"`
	Request  *BundleRequest `json:"request,omitempty"`
}

type BundleRequest struct {
	Method string `json:"method"`
	URL    string `json:"url"`
}

func (b *Bundle) GetResourceType() string { return "Bundle" }
func (b *Bundle) GetID() string           { return b.ID }

// NewTransactionBundle creates an empty transaction Bundle.
func NewTransactionBundle(id string) *Bundle {
	return &Bundle{
		ResourceType: "Bundle",
		ID:           id,
		Type:         fhirmodels.BundleTypeTransaction,
	}
}

// AddPut appends an entry that upserts resource at url.
func (b *Bundle) AddPut(fullURL string, resource Resource, url string) {
	b.Entry = append(b.Entry, BundleEntry{
		FullURL:  fullURL,
		Resource: resource,
		Request: &BundleRequest{
			Method: fhirmodels.HTTPVerbPut,
			URL:    url,
		},
	})
}

// FormatReference creates a FHIR reference string like "Patient/123".
func FormatReference(resourceType, id string) string {
	return fmt.Sprintf("%s/%s", resourceType, id)
}

func marshalJSONIndent(r Resource) ([]byte, error) {
	raw, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", r.GetResourceType(), err)
	}
	return raw, nil
}
