package fhir

// Resource is implemented by every resource the generator can place in a
// Bundle. Struct field order follows the FHIR element order so that the XML
// encoding, which walks the JSON form, stays schema-valid.
type Resource interface {
	GetResourceType() string
	GetID() string
}

type Coding struct {
	System  string `json:"system,omitempty"`
	Version string `json:"version,omitempty"`
	Code    string `json:"code,omitempty"`
	Display string `json:"display,omitempty"`
}

type CodeableConcept struct {
	Coding []Coding `json:"coding,omitempty"`
	Text   string   `json:"text,omitempty"`
}

// NewCodeableConcept wraps codings into a CodeableConcept.
func NewCodeableConcept(codings ...Coding) *CodeableConcept {
	return &CodeableConcept{Coding: codings}
}

type Reference struct {
	Reference string `json:"reference,omitempty"`
	Type      string `json:"type,omitempty"`
	Display   string `json:"display,omitempty"`
}

// Ref builds a literal Reference.
func Ref(reference string) *Reference {
	return &Reference{Reference: reference}
}

type Identifier struct {
	Use    string `json:"use,omitempty"`
	System string `json:"system,omitempty"`
	Value  string `json:"value,omitempty"`
}

// Period holds FHIR dateTime strings.
type Period struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

type Narrative struct {
	Status string `json:"status"`
	Div    string `json:"div"`
}

type ContactPoint struct {
	System string `json:"system,omitempty"`
	Value  string `json:"value,omitempty"`
	Use    string `json:"use,omitempty"`
}

type ContactDetail struct {
	Name    string         `json:"name,omitempty"`
	Telecom []ContactPoint `json:"telecom,omitempty"`
}

// ---------------------------------------------------------------------------
// Clinical resources
// ---------------------------------------------------------------------------

type Patient struct {
	ResourceType     string       `json:"resourceType"`
	ID               string       `json:"id"`
	Identifier       []Identifier `json:"identifier,omitempty"`
	Gender           string       `json:"gender,omitempty"`
	BirthDate        string       `json:"birthDate,omitempty"`
	DeceasedDateTime string       `json:"deceasedDateTime,omitempty"`
}

func (p *Patient) GetResourceType() string { return "Patient" }
func (p *Patient) GetID() string           { return p.ID }

type Specimen struct {
	ResourceType string              `json:"resourceType"`
	ID           string              `json:"id"`
	Type         *CodeableConcept    `json:"type,omitempty"`
	Subject      *Reference          `json:"subject,omitempty"`
	Collection   *SpecimenCollection `json:"collection,omitempty"`
}

type SpecimenCollection struct {
	CollectedDateTime string           `json:"collectedDateTime,omitempty"`
	BodySite          *CodeableConcept `json:"bodySite,omitempty"`
}

func (s *Specimen) GetResourceType() string { return "Specimen" }
func (s *Specimen) GetID() string           { return s.ID }

type Condition struct {
	ResourceType  string            `json:"resourceType"`
	ID            string            `json:"id"`
	Code          *CodeableConcept  `json:"code,omitempty"`
	BodySite      []CodeableConcept `json:"bodySite,omitempty"`
	Subject       *Reference        `json:"subject"`
	OnsetDateTime string            `json:"onsetDateTime,omitempty"`
	RecordedDate  string            `json:"recordedDate,omitempty"`
}

func (c *Condition) GetResourceType() string { return "Condition" }
func (c *Condition) GetID() string           { return c.ID }

type Observation struct {
	ResourceType         string                 `json:"resourceType"`
	ID                   string                 `json:"id"`
	Status               string                 `json:"status"`
	Code                 *CodeableConcept       `json:"code"`
	Subject              *Reference             `json:"subject,omitempty"`
	Focus                []Reference            `json:"focus,omitempty"`
	EffectiveDateTime    string                 `json:"effectiveDateTime,omitempty"`
	ValueCodeableConcept *CodeableConcept       `json:"valueCodeableConcept,omitempty"`
	Specimen             *Reference             `json:"specimen,omitempty"`
	Component            []ObservationComponent `json:"component,omitempty"`
}

type ObservationComponent struct {
	Code                 *CodeableConcept `json:"code"`
	ValueCodeableConcept *CodeableConcept `json:"valueCodeableConcept,omitempty"`
}

func (o *Observation) GetResourceType() string { return "Observation" }
func (o *Observation) GetID() string           { return o.ID }

type Procedure struct {
	ResourceType    string           `json:"resourceType"`
	ID              string           `json:"id"`
	Status          string           `json:"status"`
	Category        *CodeableConcept `json:"category,omitempty"`
	Subject         *Reference       `json:"subject"`
	PerformedPeriod *Period          `json:"performedPeriod,omitempty"`
	ReasonReference []Reference      `json:"reasonReference,omitempty"`
}

func (p *Procedure) GetResourceType() string { return "Procedure" }
func (p *Procedure) GetID() string           { return p.ID }

// Medication is only ever contained in a MedicationStatement.
type Medication struct {
	ResourceType string           `json:"resourceType"`
	ID           string           `json:"id"`
	Code         *CodeableConcept `json:"code,omitempty"`
}

func (m *Medication) GetResourceType() string { return "Medication" }
func (m *Medication) GetID() string           { return m.ID }

type MedicationStatement struct {
	ResourceType        string           `json:"resourceType"`
	ID                  string           `json:"id"`
	Contained           []Resource       `json:"contained,omitempty"`
	Status              string           `json:"status"`
	Category            *CodeableConcept `json:"category,omitempty"`
	MedicationReference *Reference       `json:"medicationReference"`
	Subject             *Reference       `json:"subject"`
	EffectivePeriod     *Period          `json:"effectivePeriod,omitempty"`
	ReasonReference     []Reference      `json:"reasonReference,omitempty"`
}

func (m *MedicationStatement) GetResourceType() string { return "MedicationStatement" }
func (m *MedicationStatement) GetID() string           { return m.ID }

// ---------------------------------------------------------------------------
// Conformance resources
// ---------------------------------------------------------------------------

type CodeSystem struct {
	ResourceType  string              `json:"resourceType"`
	ID            string              `json:"id,omitempty"`
	Text          *Narrative          `json:"text,omitempty"`
	URL           string              `json:"url"`
	Version       string              `json:"version,omitempty"`
	Name          string              `json:"name,omitempty"`
	Title         string              `json:"title,omitempty"`
	Status        string              `json:"status"`
	Publisher     string              `json:"publisher,omitempty"`
	Contact       []ContactDetail     `json:"contact,omitempty"`
	Description   string              `json:"description,omitempty"`
	CaseSensitive *bool               `json:"caseSensitive,omitempty"`
	Compositional *bool               `json:"compositional,omitempty"`
	Content       string              `json:"content"`
	Count         *int                `json:"count,omitempty"`
	Concept       []CodeSystemConcept `json:"concept,omitempty"`
}

type CodeSystemConcept struct {
	Code       string `json:"code"`
	Display    string `json:"display,omitempty"`
	Definition string `json:"definition,omitempty"`
}

func (c *CodeSystem) GetResourceType() string { return "CodeSystem" }
func (c *CodeSystem) GetID() string           { return c.ID }
