package fhir

import (
	"fmt"
	"html"

	"github.com/cce/oncogen/pkg/fhirmodels"
)

// GeneratedNarrative renders the two-paragraph narrative used on published
// CodeSystems: a bold short description followed by the long description.
func GeneratedNarrative(htmlDescription, description string) *Narrative {
	return &Narrative{
		Status: fhirmodels.NarrativeStatusGenerated,
		Div: fmt.Sprintf(
			`<div xmlns="%s"><p><b>%s</b></p><p>%s</p></div>`,
			fhirmodels.XHTMLNamespace, html.EscapeString(htmlDescription), html.EscapeString(description),
		),
	}
}
