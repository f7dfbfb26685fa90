package lens

// FieldType tags the two kinds of catalogue node.
type FieldType string

const (
	FieldSingleSelect FieldType = "single-select"
	FieldGroup        FieldType = "group"
)

// Category is either a single-select list of criteria or a group of child
// categories. Exactly one of Criteria and ChildCategories is populated,
// matching FieldType.
type Category struct {
	FieldType       FieldType     `json:"fieldType" yaml:"fieldType"`
	Key             string        `json:"key" yaml:"key"`
	Name            string        `json:"name" yaml:"name"`
	System          string        `json:"system,omitempty" yaml:"system,omitempty"`
	Type            ConditionType `json:"type,omitempty" yaml:"type,omitempty"`
	Criteria        []Criteria    `json:"criteria,omitempty" yaml:"criteria,omitempty"`
	ChildCategories []Category    `json:"childCategories,omitempty" yaml:"childCategories,omitempty"`
}

// SingleSelect builds a flat category. An empty system means the criteria
// are not linked to a published CodeSystem.
func SingleSelect(key, name, system string, criteria []Criteria) Category {
	return Category{
		FieldType: FieldSingleSelect,
		Key:       key,
		Name:      name,
		System:    system,
		Type:      ConditionEquals,
		Criteria:  criteria,
	}
}

// Group builds a category holding children in the given order.
func Group(key, name string, children ...Category) Category {
	return Category{
		FieldType:       FieldGroup,
		Key:             key,
		Name:            name,
		ChildCategories: children,
	}
}

// IsGroup reports whether c is a group node.
func (c Category) IsGroup() bool {
	return c.FieldType == FieldGroup
}

// Leaves counts the criteria reachable from c.
func (c Category) Leaves() int {
	if !c.IsGroup() {
		return len(c.Criteria)
	}
	n := 0
	for _, child := range c.ChildCategories {
		n += child.Leaves()
	}
	return n
}

// Find returns the first category with key in a depth-first walk of c.
func (c Category) Find(key string) (Category, bool) {
	if c.Key == key {
		return c, true
	}
	for _, child := range c.ChildCategories {
		if found, ok := child.Find(key); ok {
			return found, true
		}
	}
	return Category{}, false
}
