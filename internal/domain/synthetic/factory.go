package synthetic

import (
	"fmt"
	"time"

	"github.com/cce/oncogen/internal/domain/codetables"
	"github.com/cce/oncogen/internal/domain/ids"
	"github.com/cce/oncogen/internal/platform/fhir"
	"github.com/cce/oncogen/pkg/fhirmodels"
)

const dateLayout = "2006-01-02"

// DefaultDeceasedOffsetMonths is the synthetic age at death.
const DefaultDeceasedOffsetMonths = 600

// ContainedMedication is the reference a MedicationStatement uses for its
// contained Medication.
const ContainedMedication ids.Reference = "#" + fhirmodels.ContainedMedicationID

// Factory builds clinical resources from already-drawn field values. Every
// reference a resource requires is a positional parameter; passing an empty
// reference is a programming error and panics.
type Factory struct {
	systems              codetables.Systems
	deceasedOffsetMonths int
}

// NewFactory creates a Factory. A non-positive offset uses the default.
func NewFactory(systems codetables.Systems, deceasedOffsetMonths int) *Factory {
	if deceasedOffsetMonths <= 0 {
		deceasedOffsetMonths = DefaultDeceasedOffsetMonths
	}
	return &Factory{systems: systems, deceasedOffsetMonths: deceasedOffsetMonths}
}

// PatientFields are the drawn values for a Patient.
type PatientFields struct {
	Gender    codetables.Gender
	BirthDate time.Time
	Deceased  bool
}

// Patient builds a Patient. The deceased date is the birth date plus the
// configured offset.
func (f *Factory) Patient(id ids.LocalID, sourceID ids.LocalID, in PatientFields) *fhir.Patient {
	if sourceID == "" {
		panic("synthetic: patient requires a source identifier")
	}
	p := &fhir.Patient{
		ResourceType: "Patient",
		ID:           string(id),
		Identifier:   []fhir.Identifier{{Value: string(sourceID)}},
		Gender:       string(in.Gender),
		BirthDate:    in.BirthDate.Format(dateLayout),
	}
	if in.Deceased {
		p.DeceasedDateTime = in.BirthDate.AddDate(0, f.deceasedOffsetMonths, 0).Format(dateLayout)
	}
	return p
}

// SpecimenFields are the drawn values for a Specimen.
type SpecimenFields struct {
	Collected    time.Time
	BodySiteCode string
	Material     codetables.SampleMaterialType
}

// Specimen builds a Specimen of subject.
func (f *Factory) Specimen(id ids.LocalID, subject ids.Reference, in SpecimenFields) *fhir.Specimen {
	material := codetables.MustGet(codetables.TableSampleMaterialType)
	return &fhir.Specimen{
		ResourceType: "Specimen",
		ID:           string(id),
		Type: fhir.NewCodeableConcept(fhir.Coding{
			System: material.SystemURL(f.systems),
			Code:   string(in.Material),
		}),
		Subject: mustRef(subject, "Specimen.subject"),
		Collection: &fhir.SpecimenCollection{
			CollectedDateTime: in.Collected.Format(dateLayout),
			BodySite: fhir.NewCodeableConcept(fhir.Coding{
				System:  fhirmodels.SystemICDO3,
				Version: fhirmodels.ICDO3TopographyVersion,
				Code:    in.BodySiteCode,
			}),
		},
	}
}

// ConditionFields are the drawn values for a Condition.
type ConditionFields struct {
	DiagnosisCode  string
	TopographyCode string
	Site           codetables.TumorSiteLocation
	Onset          time.Time
	Recorded       time.Time
}

// Condition builds a primary diagnosis for subject. The body site carries an
// ICD-O-3 topography coding and a site-location coding.
func (f *Factory) Condition(id ids.LocalID, subject ids.Reference, in ConditionFields) *fhir.Condition {
	site := codetables.MustGet(codetables.TableTumorSiteLocation)
	return &fhir.Condition{
		ResourceType: "Condition",
		ID:           string(id),
		Code: fhir.NewCodeableConcept(fhir.Coding{
			System:  fhirmodels.SystemICD10GM,
			Version: fhirmodels.ICD10GMVersion,
			Code:    in.DiagnosisCode,
		}),
		BodySite: []fhir.CodeableConcept{*fhir.NewCodeableConcept(
			fhir.Coding{
				System:  fhirmodels.SystemICDO3,
				Version: fhirmodels.ICDO3TopographyVersion,
				Code:    in.TopographyCode,
			},
			fhir.Coding{
				System: site.SystemURL(f.systems),
				Code:   string(in.Site),
			},
		)},
		Subject:       mustRef(subject, "Condition.subject"),
		OnsetDateTime: in.Onset.Format(dateLayout),
		RecordedDate:  in.Recorded.Format(dateLayout),
	}
}

// HistologyFields are the drawn values for a histology Observation.
type HistologyFields struct {
	MorphologyCode string
	Effective      time.Time
}

// Histology builds the histology Observation of a diagnosis made on a specimen.
func (f *Factory) Histology(id ids.LocalID, subject, focus, specimen ids.Reference, in HistologyFields) *fhir.Observation {
	return &fhir.Observation{
		ResourceType:      "Observation",
		ID:                string(id),
		Status:            fhirmodels.ObservationStatusFinal,
		Code:              loinc(fhirmodels.LOINCHistologyBehavior),
		Subject:           mustRef(subject, "Observation.subject"),
		Focus:             []fhir.Reference{*mustRef(focus, "Observation.focus")},
		EffectiveDateTime: in.Effective.Format(dateLayout),
		ValueCodeableConcept: fhir.NewCodeableConcept(fhir.Coding{
			System:  fhirmodels.SystemICDO3,
			Version: fhirmodels.ICDO3MorphologyVersion,
			Code:    in.MorphologyCode,
		}),
		Specimen: mustRef(specimen, "Observation.specimen"),
	}
}

// VitalStatusFields are the drawn values for a vital status Observation.
type VitalStatusFields struct {
	Status    codetables.VitalStatus
	Effective time.Time
}

// VitalStatus builds a vital status assessment of subject.
func (f *Factory) VitalStatus(id ids.LocalID, subject ids.Reference, in VitalStatusFields) *fhir.Observation {
	table := codetables.MustGet(codetables.TableVitalStatus)
	return &fhir.Observation{
		ResourceType:      "Observation",
		ID:                string(id),
		Status:            fhirmodels.ObservationStatusFinal,
		Code:              loinc(fhirmodels.LOINCVitalStatus),
		Subject:           mustRef(subject, "Observation.subject"),
		EffectiveDateTime: in.Effective.Format(dateLayout),
		ValueCodeableConcept: fhir.NewCodeableConcept(fhir.Coding{
			System: table.SystemURL(f.systems),
			Code:   string(in.Status),
		}),
	}
}

// TNMcFields are the drawn values for a clinical TNM Observation.
type TNMcFields struct {
	Stage     codetables.UICCStage
	T         codetables.TNMT
	N         codetables.TNMN
	M         codetables.TNMM
	Effective time.Time
}

// TNMc builds a clinical TNM classification. The UICC stage is the
// Observation value; T, N and M are separate components, each coded with its
// own LOINC axis.
func (f *Factory) TNMc(id ids.LocalID, subject ids.Reference, in TNMcFields) *fhir.Observation {
	stage := codetables.MustGet(codetables.TableUICCStage)
	return &fhir.Observation{
		ResourceType:      "Observation",
		ID:                string(id),
		Status:            fhirmodels.ObservationStatusFinal,
		Code:              tnmAxis(fhirmodels.LOINCStageGroupClinical),
		Subject:           mustRef(subject, "Observation.subject"),
		EffectiveDateTime: in.Effective.Format(dateLayout),
		ValueCodeableConcept: fhir.NewCodeableConcept(fhir.Coding{
			System:  stage.SystemURL(f.systems),
			Version: stage.Version,
			Code:    string(in.Stage),
		}),
		Component: []fhir.ObservationComponent{
			f.tnmComponent(fhirmodels.LOINCTumorClinical, codetables.TableTNMT, string(in.T)),
			f.tnmComponent(fhirmodels.LOINCNodesClinical, codetables.TableTNMN, string(in.N)),
			f.tnmComponent(fhirmodels.LOINCMetastasesClinical, codetables.TableTNMM, string(in.M)),
		},
	}
}

func (f *Factory) tnmComponent(axis string, table codetables.TableID, code string) fhir.ObservationComponent {
	t := codetables.MustGet(table)
	return fhir.ObservationComponent{
		Code: tnmAxis(axis),
		ValueCodeableConcept: fhir.NewCodeableConcept(fhir.Coding{
			System: t.SystemURL(f.systems),
			Code:   code,
		}),
	}
}

// ProcedureFields are the drawn values for a Procedure.
type ProcedureFields struct {
	Start time.Time
	End   time.Time
}

// Radiotherapy builds a radiotherapy Procedure treating reason.
func (f *Factory) Radiotherapy(id ids.LocalID, subject, reason ids.Reference, in ProcedureFields) *fhir.Procedure {
	return f.procedure(id, subject, reason, codetables.TherapyRadiotherapy, in)
}

// Operation builds a surgical Procedure treating reason.
func (f *Factory) Operation(id ids.LocalID, subject, reason ids.Reference, in ProcedureFields) *fhir.Procedure {
	return f.procedure(id, subject, reason, codetables.TherapyOperation, in)
}

func (f *Factory) procedure(id ids.LocalID, subject, reason ids.Reference, therapy codetables.TherapyType, in ProcedureFields) *fhir.Procedure {
	return &fhir.Procedure{
		ResourceType:    "Procedure",
		ID:              string(id),
		Status:          fhirmodels.ProcedureStatusCompleted,
		Category:        f.therapyCategory(therapy, true),
		Subject:         mustRef(subject, "Procedure.subject"),
		PerformedPeriod: period(in.Start, in.End),
		ReasonReference: []fhir.Reference{*mustRef(reason, "Procedure.reasonReference")},
	}
}

// MedicationFields are the drawn values for a MedicationStatement.
type MedicationFields struct {
	Therapy codetables.TherapyType
	Start   time.Time
	End     time.Time
}

// MedicationStatement builds a systemic therapy statement. When medication
// is ContainedMedication the Medication is embedded in the statement.
func (f *Factory) MedicationStatement(id ids.LocalID, medication, subject, reason ids.Reference, in MedicationFields) *fhir.MedicationStatement {
	ms := &fhir.MedicationStatement{
		ResourceType:        "MedicationStatement",
		ID:                  string(id),
		Status:              fhirmodels.MedicationStatementStatusActive,
		Category:            f.therapyCategory(in.Therapy, false),
		MedicationReference: mustRef(medication, "MedicationStatement.medicationReference"),
		Subject:             mustRef(subject, "MedicationStatement.subject"),
		EffectivePeriod:     period(in.Start, in.End),
		ReasonReference:     []fhir.Reference{*mustRef(reason, "MedicationStatement.reasonReference")},
	}
	if medication == ContainedMedication {
		ms.Contained = []fhir.Resource{&fhir.Medication{
			ResourceType: "Medication",
			ID:           fhirmodels.ContainedMedicationID,
			Code:         &fhir.CodeableConcept{Text: fhirmodels.ContainedMedicationText},
		}}
	}
	return ms
}

func (f *Factory) therapyCategory(therapy codetables.TherapyType, withDisplay bool) *fhir.CodeableConcept {
	table := codetables.MustGet(codetables.TableTherapyType)
	coding := fhir.Coding{
		System: table.SystemURL(f.systems),
		Code:   string(therapy),
	}
	if withDisplay {
		coding.Display = therapy.Display()
	}
	return fhir.NewCodeableConcept(coding)
}

func loinc(code string) *fhir.CodeableConcept {
	return fhir.NewCodeableConcept(fhir.Coding{System: fhirmodels.SystemLOINC, Code: code})
}

// tnmAxis codes a TNM axis with the LOINC display from the classification
// table.
func tnmAxis(code string) *fhir.CodeableConcept {
	axes := codetables.MustGet(codetables.TableTNMClassification)
	return fhir.NewCodeableConcept(fhir.Coding{
		System:  axes.System,
		Code:    code,
		Display: axes.MustDisplay(code),
	})
}

func period(start, end time.Time) *fhir.Period {
	return &fhir.Period{Start: start.Format(dateLayout), End: end.Format(dateLayout)}
}

func mustRef(ref ids.Reference, element string) *fhir.Reference {
	if ref == "" {
		panic(fmt.Sprintf("synthetic: %s requires a reference", element))
	}
	return fhir.Ref(string(ref))
}
