package synthetic

import (
	"fmt"

	"github.com/cce/oncogen/internal/platform/fhir"
	"github.com/cce/oncogen/internal/platform/output"
)

// Document renders the result in format f, named after its primary id.
func (r *Result) Document(f fhir.Format) (output.Document, error) {
	body, err := f.Encode(r.Bundle)
	if err != nil {
		return output.Document{}, fmt.Errorf("encode %s: %w", r.PrimaryID, err)
	}
	return output.Document{
		Name:        string(r.PrimaryID),
		Extension:   f.Extension(),
		ContentType: f.ContentType(),
		Body:        body,
	}, nil
}
