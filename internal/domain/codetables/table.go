// Package codetables holds the fixed coded vocabularies used by generated
// resources, the lens catalogue and the published CodeSystems. Every table
// is registered once under a TableID and is read-only afterwards.
package codetables

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cce/oncogen/pkg/fhirmodels"
)

var ErrUnknownTable = errors.New("unknown code table")

// TableID identifies one code table.
type TableID string

const (
	TableGender             TableID = "gender"
	TableVitalStatus        TableID = "vital-status"
	TableTumorSiteLocation  TableID = "tumor-site-location"
	TableSampleMaterialType TableID = "sample-material-type"
	TableTherapyType        TableID = "syst-therapy-type"
	TableTNMT               TableID = "tnm-t"
	TableTNMN               TableID = "tnm-n"
	TableTNMM               TableID = "tnm-m"
	TableTNMr               TableID = "tnm-r"
	TableUICCStage          TableID = "uicc-stage"
	TableTNMClassification  TableID = "tnm-classification"
)

// Concept is one variant of a code table.
type Concept struct {
	Code        string
	Display     string
	Description string
	DisplayDE   string
}

// Table is an ordered enumeration plus the metadata needed to publish it as
// a CodeSystem. Tables with an empty Name are not formal vocabularies.
type Table struct {
	ID              TableID
	Name            string
	Title           string
	Description     string
	HTMLDescription string
	Version         string
	System          string // fixed external system, overrides the CCE URL
	Concepts        []Concept
}

// IsTerminology reports whether the table is published as a CodeSystem.
func (t *Table) IsTerminology() bool {
	return t.Name != ""
}

// Len returns the number of variants.
func (t *Table) Len() int {
	return len(t.Concepts)
}

// Codes returns the codes in table order.
func (t *Table) Codes() []string {
	codes := make([]string, len(t.Concepts))
	for i, c := range t.Concepts {
		codes[i] = c.Code
	}
	return codes
}

// Lookup finds a concept by code.
func (t *Table) Lookup(code string) (Concept, bool) {
	for _, c := range t.Concepts {
		if c.Code == code {
			return c, true
		}
	}
	return Concept{}, false
}

// MustDisplay returns the display for a code known to be in the table.
func (t *Table) MustDisplay(code string) string {
	c, ok := t.Lookup(code)
	if !ok {
		panic(fmt.Sprintf("codetables: %q not in %s", code, t.ID))
	}
	return c.Display
}

// SystemURL resolves the coding system for the table.
func (t *Table) SystemURL(s Systems) string {
	if t.System != "" {
		return t.System
	}
	if t.Name == "" {
		return ""
	}
	return s.CodeSystemURL(t.Name)
}

// ---------------------------------------------------------------------------
// Systems
// ---------------------------------------------------------------------------

// Systems carries the base URLs that qualify code systems and bundle entries.
// It is built once per process and passed by value.
type Systems struct {
	baseURL        string
	exampleBaseURL string
}

// NewSystems builds a Systems value. An empty exampleBase derives from base.
func NewSystems(base, exampleBase string) Systems {
	base = strings.TrimRight(base, "/")
	if base == "" {
		base = fhirmodels.DefaultBaseURL
	}
	exampleBase = strings.TrimRight(exampleBase, "/")
	if exampleBase == "" {
		exampleBase = base + fhirmodels.ExamplePathSegment
	}
	return Systems{baseURL: base, exampleBaseURL: exampleBase}
}

// DefaultSystems uses the Cancer Core Europe namespace.
func DefaultSystems() Systems {
	return NewSystems(fhirmodels.DefaultBaseURL, "")
}

// BaseURL returns the publisher base URL.
func (s Systems) BaseURL() string { return s.baseURL }

// CodeSystemURL returns the canonical URL of a named CodeSystem.
func (s Systems) CodeSystemURL(name string) string {
	return s.baseURL + fhirmodels.CodeSystemPath + name
}

// FullURL renders a local id into the example namespace.
func (s Systems) FullURL(localID string) string {
	return s.exampleBaseURL + "/" + localID
}

// ---------------------------------------------------------------------------
// Registry
// ---------------------------------------------------------------------------

var registry = buildRegistry()

// order is the stable iteration order for All.
var order = []TableID{
	TableGender,
	TableVitalStatus,
	TableTumorSiteLocation,
	TableSampleMaterialType,
	TableTherapyType,
	TableTNMT,
	TableTNMN,
	TableTNMM,
	TableTNMr,
	TableUICCStage,
	TableTNMClassification,
}

func buildRegistry() map[TableID]*Table {
	tables := []*Table{
		&genderTable,
		&vitalStatusTable,
		&tumorSiteLocationTable,
		&sampleMaterialTypeTable,
		&therapyTypeTable,
		&tnmTTable,
		&tnmNTable,
		&tnmMTable,
		&tnmRTable,
		&uiccStageTable,
		&tnmClassificationTable,
	}
	m := make(map[TableID]*Table, len(tables))
	for _, t := range tables {
		if _, dup := m[t.ID]; dup {
			panic("codetables: duplicate table " + string(t.ID))
		}
		seen := make(map[string]bool, len(t.Concepts))
		for _, c := range t.Concepts {
			if seen[c.Code] {
				panic(fmt.Sprintf("codetables: duplicate code %q in %s", c.Code, t.ID))
			}
			seen[c.Code] = true
		}
		m[t.ID] = t
	}
	return m
}

// Get returns the table registered under id.
func Get(id TableID) (*Table, error) {
	t, ok := registry[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, id)
	}
	return t, nil
}

// MustGet is Get for ids compiled into the program.
func MustGet(id TableID) *Table {
	t, err := Get(id)
	if err != nil {
		panic(err)
	}
	return t
}

// All returns every table in registration order.
func All() []*Table {
	out := make([]*Table, 0, len(order))
	for _, id := range order {
		out = append(out, registry[id])
	}
	return out
}

// Terminologies returns the tables published as CodeSystems.
func Terminologies() []*Table {
	var out []*Table
	for _, t := range All() {
		if t.IsTerminology() {
			out = append(out, t)
		}
	}
	return out
}
