package fhirmodels

// Common FHIR constants shared by the generator, catalogue and terminology packages.

// External code system URIs.
const (
	SystemLOINC    = "http://loinc.org"
	SystemICD10GM  = "http://fhir.de/CodeSystem/bfarm/icd-10-gm"
	SystemICDO3    = "urn:oid:2.16.840.1.113883.6.43.1"
	XHTMLNamespace = "http://www.w3.org/1999/xhtml"
	FHIRNamespace  = "http://hl7.org/fhir"
)

// Code system versions used on generated codings.
const (
	ICD10GMVersion         = "2019"
	ICDO3TopographyVersion = "31"
	ICDO3MorphologyVersion = "32"
	UICCStageVersion       = "8"
)

// LOINC codes identifying what an Observation asserts.
const (
	LOINCVitalStatus        = "75186-7"
	LOINCHistologyBehavior  = "59847-4"
	LOINCStageGroupClinical = "21908-9"
	LOINCTumorClinical      = "21905-5"
	LOINCNodesClinical      = "21906-3"
	LOINCMetastasesClinical = "21907-1"
)

// Resource status codes.
const (
	ObservationStatusFinal          = "final"
	ProcedureStatusCompleted        = "completed"
	MedicationStatementStatusActive = "active"
	PublicationStatusActive         = "active"
	CodeSystemContentComplete       = "complete"
	NarrativeStatusGenerated        = "generated"
	ContactPointSystemOther         = "other"
)

// Bundle codes.
const (
	BundleTypeTransaction = "transaction"
	HTTPVerbPut           = "PUT"
)

// Publisher details stamped on every CodeSystem.
const (
	PublisherName      = "Cancer Core Europe"
	DefaultBaseURL     = "https://www.cancercoreeurope.eu"
	CodeSystemVersion  = "1.0.0"
	ExamplePathSegment = "/fhir-xml/examples"
	CodeSystemPath     = "/fhir/core/CodeSystem/"
)

// Fixed clinical values used when no random draw applies.
const (
	DefaultDiagnosisCode    = "C34.0"
	DefaultTopographyCode   = "C34.0"
	DefaultSpecimenBodySite = "C26.8"
	DefaultMorphologyCode   = "8140/3"
	DefaultRecordedDate     = "2021-02-02"
	ContainedMedicationID   = "medication"
	ContainedMedicationText = "medicine"
)
