package codetables

import "github.com/cce/oncogen/pkg/fhirmodels"

// Gender is an administrative gender code.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// VitalStatus is the patient's vital status at assessment.
type VitalStatus string

const (
	VitalStatusAlive    VitalStatus = "alive"
	VitalStatusDeceased VitalStatus = "deceased"
	VitalStatusUnknown  VitalStatus = "unknown"
)

// TumorSiteLocation is the laterality of a tumor.
type TumorSiteLocation string

const (
	SiteLeft          TumorSiteLocation = "L"
	SiteRight         TumorSiteLocation = "R"
	SiteBilateral     TumorSiteLocation = "B"
	SiteCenter        TumorSiteLocation = "C"
	SiteNotApplicable TumorSiteLocation = "N"
	SiteUnknown       TumorSiteLocation = "U"
)

// SampleMaterialType is the material kind of a specimen.
type SampleMaterialType string

const (
	SampleWholeBlood         SampleMaterialType = "whole-blood"
	SampleBoneMarrow         SampleMaterialType = "bone-marrow"
	SampleBloodPlasma        SampleMaterialType = "blood-plasma"
	SampleBloodSerum         SampleMaterialType = "blood-serum"
	SampleLiquor             SampleMaterialType = "csf-liquor"
	SampleStool              SampleMaterialType = "stool-faeces"
	SampleUrine              SampleMaterialType = "urine"
	SampleTumorTissueFFPE    SampleMaterialType = "tumor-tissue-ffpe"
	SampleNormalTissueFFPE   SampleMaterialType = "normal-tissue-ffpe"
	SampleTumorTissueFrozen  SampleMaterialType = "tumor-tissue-frozen"
	SampleNormalTissueFrozen SampleMaterialType = "normal-tissue-frozen"
	SampleDNA                SampleMaterialType = "dna"
	SampleRNA                SampleMaterialType = "rna"
)

// TherapyType is a systemic therapy type code.
type TherapyType string

const (
	TherapyChemotherapy   TherapyType = "CH"
	TherapyHormone        TherapyType = "HO"
	TherapyImmuno         TherapyType = "IM"
	TherapyBoneMarrow     TherapyType = "BM"
	TherapyWaitAndSee     TherapyType = "WS"
	TherapyActiveSurv     TherapyType = "AS"
	TherapyTargeted       TherapyType = "TS"
	TherapyMiscellaneous  TherapyType = "SO"
	TherapyRadiotherapy   TherapyType = "RT"
	TherapyOperation      TherapyType = "OP"
	TherapyChemoImmuno    TherapyType = "CI"
	TherapyChemoTargeted  TherapyType = "CT"
	TherapyChemoImmunoTS  TherapyType = "CIT"
	TherapyImmunoTargeted TherapyType = "IT"
	TherapyStemCell       TherapyType = "SC"
	TherapyWatchful       TherapyType = "WW"
)

// Display returns the canonical label of the therapy type.
func (t TherapyType) Display() string {
	return MustGet(TableTherapyType).MustDisplay(string(t))
}

// TNM and UICC values are only ever drawn from their tables, so they carry no
// named constants.
type (
	TNMT      string
	TNMN      string
	TNMM      string
	UICCStage string
)

// ---------------------------------------------------------------------------
// Table contents
// ---------------------------------------------------------------------------

var genderTable = Table{
	ID: TableGender,
	Concepts: []Concept{
		{Code: string(GenderMale), Display: "male", DisplayDE: "männlich"},
		{Code: string(GenderFemale), Display: "female", DisplayDE: "weiblich"},
	},
}

var vitalStatusTable = Table{
	ID:              TableVitalStatus,
	Name:            "VitalStatusCS",
	Title:           "Vital Status CS",
	Description:     "Vital Status",
	HTMLDescription: "Vital Status CodeSystem",
	Version:         fhirmodels.CodeSystemVersion,
	Concepts: []Concept{
		{Code: string(VitalStatusAlive), Display: "alive", DisplayDE: "lebend"},
		{Code: string(VitalStatusDeceased), Display: "deceased", DisplayDE: "verstorben"},
		{Code: string(VitalStatusUnknown), Display: "unknown", DisplayDE: "unbekannt"},
	},
}

var tumorSiteLocationTable = Table{
	ID:              TableTumorSiteLocation,
	Name:            "SitelocationCS",
	Title:           "Site Location CS",
	Description:     "Side location of the tumor",
	HTMLDescription: "Site Location CodeSystem",
	Version:         fhirmodels.CodeSystemVersion,
	Concepts: []Concept{
		{Code: string(SiteLeft), Display: "left", DisplayDE: "links"},
		{Code: string(SiteRight), Display: "right", DisplayDE: "rechts"},
		{Code: string(SiteBilateral), Display: "bilateral", DisplayDE: "beidseitig"},
		{Code: string(SiteCenter), Display: "Centerline/Center", DisplayDE: "Mittellinie/Mitte"},
		{Code: string(SiteNotApplicable), Display: "Not applicable", DisplayDE: "nicht zutreffend"},
		{Code: string(SiteUnknown), Display: "unknown", DisplayDE: "unbekannt"},
	},
}

var sampleMaterialTypeTable = Table{
	ID:              TableSampleMaterialType,
	Name:            "SampleMaterialType",
	Title:           "Sample Material Type CS",
	Description:     "Sample material type of a biosample",
	HTMLDescription: "Sample Material Type CodeSystem",
	Version:         fhirmodels.CodeSystemVersion,
	Concepts: []Concept{
		{Code: string(SampleWholeBlood), Display: "Whole Blood"},
		{Code: string(SampleBoneMarrow), Display: "Bone Marrow"},
		{Code: string(SampleBloodPlasma), Display: "Plasma"},
		{Code: string(SampleBloodSerum), Display: "Serum"},
		{Code: string(SampleLiquor), Display: "Liquor/CSF"},
		{Code: string(SampleStool), Display: "Stool/Faeces"},
		{Code: string(SampleUrine), Display: "Urine"},
		{Code: string(SampleTumorTissueFFPE), Display: "Tumor Tissue (FFPE)"},
		{Code: string(SampleNormalTissueFFPE), Display: "Normal Tissue (FFPE)"},
		{Code: string(SampleTumorTissueFrozen), Display: "Tumor Tissue (Frozen)"},
		{Code: string(SampleNormalTissueFrozen), Display: "Normal Tissue (Frozen)"},
		{Code: string(SampleDNA), Display: "DNA"},
		{Code: string(SampleRNA), Display: "RNA"},
	},
}

var therapyTypeTable = Table{
	ID:              TableTherapyType,
	Name:            "SYSTTherapyTypeCS",
	Title:           "Systemic Therapy Type CS",
	Description:     "Type of systemic therapy",
	HTMLDescription: "Systemic Therapy Type CodeSystem",
	Version:         fhirmodels.CodeSystemVersion,
	Concepts: []Concept{
		{Code: string(TherapyChemotherapy), Display: "Chemotherapy"},
		{Code: string(TherapyHormone), Display: "Hormone therapy"},
		{Code: string(TherapyImmuno), Display: "Immunotherapy and antibody therapy"},
		{Code: string(TherapyBoneMarrow), Display: "Bone marrow transplantation"},
		{Code: string(TherapyWaitAndSee), Display: "Wait and see"},
		{Code: string(TherapyActiveSurv), Display: "Active Surveillance"},
		{Code: string(TherapyTargeted), Display: "Targeted substances"},
		{Code: string(TherapyMiscellaneous), Display: "Miscellaneous"},
		{Code: string(TherapyRadiotherapy), Display: "Radiotherapy"},
		{Code: string(TherapyOperation), Display: "Operation"},
		{Code: string(TherapyChemoImmuno), Display: "Chemo- + Immuno-/Antibody therapy"},
		{Code: string(TherapyChemoTargeted), Display: "Chemotherapy + Targeted substances"},
		{Code: string(TherapyChemoImmunoTS), Display: "Chemo- + Immuno-/Antibody therapy + Targeted substances"},
		{Code: string(TherapyImmunoTargeted), Display: "Immuno-/Antibody therapy + Targeted substances"},
		{Code: string(TherapyStemCell), Display: "Stem cell transplantation (incl. bone marrow transplantation)"},
		{Code: string(TherapyWatchful), Display: "Watchful Waiting"},
	},
}

var tnmTTable = Table{
	ID:              TableTNMT,
	Name:            "TNMTCS",
	Title:           "TNM T CS",
	Description:     "TNM T category",
	HTMLDescription: "TNM T CodeSystem",
	Version:         fhirmodels.CodeSystemVersion,
	Concepts: codeOnly(
		"0", "1", "1a", "1a1", "1a2", "1b", "1b1", "1b2", "1c", "1c1", "1c2", "1c3", "1d", "1mi",
		"2", "2a", "2a1", "2a2", "2b", "2c", "2d",
		"3", "3a", "3b", "3c", "3d",
		"4", "4a", "4b", "4c", "4d", "4e",
		"a", "is", "is(DCIS)", "is(LCIS)", "is(Paget)", "is(pd)", "is(pu)", "X",
	),
}

var tnmNTable = Table{
	ID:              TableTNMN,
	Name:            "TNMNCS",
	Title:           "TNM N CS",
	Description:     "TNM N category",
	HTMLDescription: "TNM N CodeSystem",
	Version:         fhirmodels.CodeSystemVersion,
	Concepts: codeOnly(
		"0", "0(i-)", "0(i+)", "0(mol-)", "0(mol+)",
		"1", "1a", "1b", "1c", "1mi",
		"2", "2a", "2b", "2c",
		"3", "3a", "3b", "3c", "X",
	),
}

var tnmMTable = Table{
	ID:              TableTNMM,
	Name:            "TNMMCS",
	Title:           "TNM M CS",
	Description:     "TNM M category",
	HTMLDescription: "TNM M CodeSystem",
	Version:         fhirmodels.CodeSystemVersion,
	Concepts: codeOnly(
		"0", "1", "1a", "1b", "1c", "1d", "1e",
		"0(i-)", "0(i+)", "0(mol-)", "0(mol+)",
	),
}

var tnmRTable = Table{
	ID:              TableTNMr,
	Name:            "TNMrSymbolCS",
	Title:           "TNM r Symbol CS",
	Description:     "TNM r symbol",
	HTMLDescription: "TNM r Symbol CodeSystem",
	Version:         fhirmodels.CodeSystemVersion,
	Concepts: []Concept{
		{Code: "r", Display: "r", Description: "Classification was used to assess a recurrence"},
		{Code: "9", Display: "9", Description: "Native classification before a recurrence"},
	},
}

// uiccStageTable lists stages from the most specific sub-stage up to the
// umbrella stage, which is the order the catalogue shows them in.
var uiccStageTable = Table{
	ID:              TableUICCStage,
	Name:            "UICCStageCS",
	Title:           "UICC Stage CS",
	Description:     "UICC Stage",
	HTMLDescription: "UICC Stage CodeSystem",
	Version:         fhirmodels.UICCStageVersion,
	Concepts: codeOnly(
		"0is", "0a", "0",
		"IA2", "IA1", "IA", "IB2", "IB1", "IB", "IC",
		"IIC", "IIB", "IIA2", "IIA1", "IIA", "II",
		"IIIC2", "IIIC1", "IIIC", "IIIB", "IIIA", "III",
		"IVC", "IVB", "IVA", "IV", "IS",
	),
}

// tnmClassificationTable holds the LOINC codes naming each TNM axis.
var tnmClassificationTable = Table{
	ID:     TableTNMClassification,
	System: fhirmodels.SystemLOINC,
	Concepts: []Concept{
		{Code: "21902-2", Display: "Stage group.pathology", Description: "Pathologic TNM stage group"},
		{Code: fhirmodels.LOINCStageGroupClinical, Display: "Stage group.clinical", Description: "Clinical TNM stage group"},
		{Code: "21899-0", Display: "Primary tumor.pathology", Description: "Pathologic T category"},
		{Code: fhirmodels.LOINCTumorClinical, Display: "Primary tumor.clinical", Description: "Clinical T category"},
		{Code: "21900-6", Display: "Regional lymph nodes.pathology", Description: "Pathologic N category"},
		{Code: fhirmodels.LOINCNodesClinical, Display: "Regional lymph nodes.clinical", Description: "Clinical N category"},
		{Code: "21901-4", Display: "Distant metastases.pathology", Description: "Pathologic M category"},
		{Code: fhirmodels.LOINCMetastasesClinical, Display: "Distant metastases.clinical", Description: "Clinical M category"},
	},
}

func codeOnly(codes ...string) []Concept {
	out := make([]Concept, len(codes))
	for i, c := range codes {
		out[i] = Concept{Code: c, Display: c}
	}
	return out
}
