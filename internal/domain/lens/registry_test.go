package lens

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cce/oncogen/internal/domain/codetables"
	"github.com/cce/oncogen/internal/domain/terminology"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := NewRegistry(codetables.DefaultSystems())
	require.NoError(t, err)
	return r
}

func TestRegistry_CriteriaMatchTerminology(t *testing.T) {
	r := newTestRegistry(t)

	for _, def := range r.Definitions() {
		var entry *Entry
		for _, id := range r.order {
			if r.entries[id].Terminology == def {
				entry = r.entries[id]
			}
		}
		require.NotNil(t, entry, def.Name)
		require.Len(t, entry.Criteria, def.Count, def.Name)
		for i, c := range entry.Criteria {
			assert.Equal(t, def.Concepts[i].Code, c.Key, "%s position %d", def.Name, i)
		}
	}
}

func TestRegistry_DefinitionsCoverTerminologies(t *testing.T) {
	r := newTestRegistry(t)

	var names []string
	for _, d := range r.Definitions() {
		names = append(names, d.Name)
	}
	var want []string
	for _, table := range codetables.Terminologies() {
		want = append(want, table.Name)
	}
	assert.Equal(t, want, names)

	_, err := terminology.NewService(r.Definitions())
	require.NoError(t, err)
}

func TestRegistry_VitalStatusCriteria(t *testing.T) {
	r := newTestRegistry(t)

	criteria, err := r.Criteria(codetables.TableVitalStatus)
	require.NoError(t, err)
	require.Len(t, criteria, 3)
	assert.Equal(t, []string{"alive", "deceased", "unknown"}, []string{criteria[0].Key, criteria[1].Key, criteria[2].Key})
	assert.Equal(t, "verstorben", criteria[1].DE)
}

func TestRegistry_InformalTableHasNoTerminology(t *testing.T) {
	r := newTestRegistry(t)

	e, err := r.Entry(codetables.TableGender)
	require.NoError(t, err)
	assert.Nil(t, e.Terminology)
	assert.Empty(t, e.Category.System)
	assert.Len(t, e.Criteria, 2)
}

func TestRegistry_UnregisteredTable(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.Entry(codetables.TableTNMClassification)
	assert.ErrorIs(t, err, ErrUnregisteredTable)
}

func TestAgree(t *testing.T) {
	def := &terminology.Definition{
		Name:     "Example",
		Count:    2,
		Concepts: []terminology.Concept{{Code: "a"}, {Code: "b"}},
	}

	assert.NoError(t, agree(def, []Criteria{{Key: "a"}, {Key: "b"}}))
	assert.ErrorIs(t, agree(def, []Criteria{{Key: "a"}}), terminology.ErrConceptCountMismatch)
	assert.ErrorIs(t, agree(def, []Criteria{{Key: "b"}, {Key: "a"}}), terminology.ErrConceptCountMismatch)
}
