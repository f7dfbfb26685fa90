package lens

import (
	"errors"
	"fmt"

	"github.com/cce/oncogen/internal/domain/codetables"
	"github.com/cce/oncogen/internal/domain/terminology"
	"github.com/cce/oncogen/pkg/fhirmodels"
)

var (
	ErrUnregisteredTable = errors.New("code table has no catalogue entry")
	ErrUnknownKind       = errors.New("unknown catalogue kind")
)

// placement names the single-select category a code table appears under.
type placement struct {
	key    string
	name   string
	linked bool // category carries the CodeSystem URL
}

var placements = map[codetables.TableID]placement{
	codetables.TableGender:             {key: "gender", name: "Gender"},
	codetables.TableVitalStatus:        {key: fhirmodels.LOINCVitalStatus, name: "Vital Status", linked: true},
	codetables.TableTumorSiteLocation:  {key: "bodySite", name: "Side Location"},
	codetables.TableSampleMaterialType: {key: "sample_kind", name: "Sample Type"},
	codetables.TableTherapyType:        {key: "therapy_type", name: "Therapy Type"},
	codetables.TableTNMT:               {key: fhirmodels.LOINCTumorClinical, name: "TNM-T"},
	codetables.TableTNMN:               {key: fhirmodels.LOINCNodesClinical, name: "TNM-N"},
	codetables.TableTNMM:               {key: fhirmodels.LOINCMetastasesClinical, name: "TNM-M"},
	codetables.TableTNMr:               {key: "tnm_r", name: "TNM r Symbol"},
	codetables.TableUICCStage:          {key: fhirmodels.LOINCStageGroupClinical, name: "UICC Stage", linked: true},
}

// Entry ties one code table to everything derived from it.
type Entry struct {
	Table       *codetables.Table
	Criteria    []Criteria
	Category    Category
	Terminology *terminology.Definition // nil for informal tables
}

// Registry is built once at startup and is read-only afterwards.
type Registry struct {
	entries map[codetables.TableID]*Entry
	order   []codetables.TableID
}

// NewRegistry derives criteria, categories and terminology definitions from
// every catalogued code table and checks that they agree.
func NewRegistry(systems codetables.Systems) (*Registry, error) {
	r := &Registry{entries: make(map[codetables.TableID]*Entry)}
	for _, table := range codetables.All() {
		p, ok := placements[table.ID]
		if !ok {
			continue
		}

		criteria := criteriaFor(table)
		e := &Entry{Table: table, Criteria: criteria}

		var system string
		if table.IsTerminology() {
			def, err := terminology.Build(table, systems)
			if err != nil {
				return nil, err
			}
			if err := agree(def, criteria); err != nil {
				return nil, err
			}
			e.Terminology = def
			if p.linked {
				system = def.URL
			}
		}
		e.Category = SingleSelect(p.key, p.name, system, criteria)

		r.entries[table.ID] = e
		r.order = append(r.order, table.ID)
	}
	return r, nil
}

func criteriaFor(table *codetables.Table) []Criteria {
	out := make([]Criteria, 0, len(table.Concepts))
	for _, c := range table.Concepts {
		out = append(out, Criteria{Key: c.Code, Name: c.Display, Description: c.Description, DE: c.DisplayDE})
	}
	return out
}

// agree checks that a CodeSystem and the catalogue list the same codes in
// the same order.
func agree(def *terminology.Definition, criteria []Criteria) error {
	if len(criteria) != def.Count {
		return fmt.Errorf("%w: %s has %d criteria, %d concepts",
			terminology.ErrConceptCountMismatch, def.Name, len(criteria), def.Count)
	}
	for i, c := range criteria {
		if def.Concepts[i].Code != c.Key {
			return fmt.Errorf("%w: %s position %d is %s in the catalogue, %s in the code system",
				terminology.ErrConceptCountMismatch, def.Name, i, c.Key, def.Concepts[i].Code)
		}
	}
	return nil
}

// Entry returns the registered entry for id.
func (r *Registry) Entry(id codetables.TableID) (*Entry, error) {
	e, ok := r.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnregisteredTable, id)
	}
	return e, nil
}

func (r *Registry) mustCategory(id codetables.TableID) Category {
	e, err := r.Entry(id)
	if err != nil {
		panic(err)
	}
	return e.Category
}

// Criteria returns the criteria derived from table id.
func (r *Registry) Criteria(id codetables.TableID) ([]Criteria, error) {
	e, err := r.Entry(id)
	if err != nil {
		return nil, err
	}
	return e.Criteria, nil
}

// Definitions returns the terminology definitions in table order. It is the
// input for terminology.NewService, so the service and the catalogue share
// one derivation.
func (r *Registry) Definitions() []*terminology.Definition {
	var out []*terminology.Definition
	for _, id := range r.order {
		if def := r.entries[id].Terminology; def != nil {
			out = append(out, def)
		}
	}
	return out
}
