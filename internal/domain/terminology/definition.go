package terminology

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gofhir/fhir/r4"

	"github.com/cce/oncogen/internal/domain/codetables"
	"github.com/cce/oncogen/internal/platform/fhir"
	"github.com/cce/oncogen/pkg/fhirmodels"
)

var (
	ErrConceptCountMismatch = errors.New("concept count mismatch")
	ErrNotTerminology       = errors.New("code table is not a terminology")
	ErrUnknownCodeSystem    = errors.New("unknown code system")
	ErrUnknownCode          = errors.New("unknown code")
)

// Concept is one code of a published CodeSystem.
type Concept struct {
	Code       string
	Display    string
	Definition string
}

// Definition is the terminology derived from one code table.
type Definition struct {
	Name            string
	Title           string
	URL             string
	Version         string
	Description     string
	HTMLDescription string
	Concepts        []Concept
	Count           int
	Narrative       *fhir.Narrative

	publisherURL string
}

// Build derives a Definition from a code table. Concepts keep the table
// order, which is also the catalogue order.
func Build(table *codetables.Table, systems codetables.Systems) (*Definition, error) {
	if !table.IsTerminology() {
		return nil, fmt.Errorf("%w: %s", ErrNotTerminology, table.ID)
	}

	concepts := make([]Concept, 0, len(table.Concepts))
	for _, c := range table.Concepts {
		concepts = append(concepts, Concept{Code: c.Code, Display: c.Display, Definition: c.Description})
	}

	d := &Definition{
		Name:            table.Name,
		Title:           table.Title,
		URL:             table.SystemURL(systems),
		Version:         table.Version,
		Description:     table.Description,
		HTMLDescription: table.HTMLDescription,
		Concepts:        concepts,
		Count:           table.Len(),
		Narrative:       fhir.GeneratedNarrative(table.HTMLDescription, table.Description),
		publisherURL:    systems.BaseURL(),
	}
	if err := d.Verify(); err != nil {
		return nil, err
	}
	return d, nil
}

// Verify checks that the declared count matches the concept list.
func (d *Definition) Verify() error {
	if len(d.Concepts) != d.Count {
		return fmt.Errorf("%w: %s declares %d, has %d", ErrConceptCountMismatch, d.Name, d.Count, len(d.Concepts))
	}
	return nil
}

// Lookup finds a concept by code.
func (d *Definition) Lookup(code string) (Concept, bool) {
	for _, c := range d.Concepts {
		if c.Code == code {
			return c, true
		}
	}
	return Concept{}, false
}

// CodeSystem renders the definition as a complete CodeSystem resource.
func (d *Definition) CodeSystem() *fhir.CodeSystem {
	caseSensitive := true
	compositional := false
	count := d.Count

	cs := &fhir.CodeSystem{
		ResourceType:  "CodeSystem",
		ID:            d.Name,
		Text:          d.Narrative,
		URL:           d.URL,
		Version:       d.Version,
		Name:          d.Name,
		Title:         d.Title,
		Status:        fhirmodels.PublicationStatusActive,
		Publisher:     fhirmodels.PublisherName,
		Description:   d.Description,
		CaseSensitive: &caseSensitive,
		Compositional: &compositional,
		Content:       fhirmodels.CodeSystemContentComplete,
		Count:         &count,
	}
	if d.publisherURL != "" {
		cs.Contact = []fhir.ContactDetail{{
			Name:    fhirmodels.PublisherName,
			Telecom: []fhir.ContactPoint{{System: fhirmodels.ContactPointSystemOther, Value: d.publisherURL}},
		}}
	}
	for _, c := range d.Concepts {
		cs.Concept = append(cs.Concept, fhir.CodeSystemConcept{Code: c.Code, Display: c.Display, Definition: c.Definition})
	}
	return cs
}

// R4 parses the rendered CodeSystem into the R4 model, which proves the
// document conforms to the R4 structure, and re-checks the concept count.
func (d *Definition) R4() (*r4.CodeSystem, error) {
	raw, err := json.Marshal(d.CodeSystem())
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", d.Name, err)
	}
	var cs r4.CodeSystem
	if err := json.Unmarshal(raw, &cs); err != nil {
		return nil, fmt.Errorf("parse %s as R4 CodeSystem: %w", d.Name, err)
	}
	if len(cs.Concept) != d.Count {
		return nil, fmt.Errorf("%w: %s exported %d of %d concepts", ErrConceptCountMismatch, d.Name, len(cs.Concept), d.Count)
	}
	return &cs, nil
}
