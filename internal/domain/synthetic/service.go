package synthetic

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/cce/oncogen/internal/domain/codetables"
	"github.com/cce/oncogen/internal/domain/ids"
	"github.com/cce/oncogen/internal/platform/fhir"
	"github.com/cce/oncogen/pkg/fhirmodels"
)

// Source draws the random inputs of a generation run.
type Source interface {
	// Pick returns a code drawn uniformly from a table.
	Pick(table codetables.TableID) string
	Bool() bool
	// Date returns a date between the configured minimum and today.
	Date() time.Time
	// Period returns a start and an end no earlier than the start.
	Period() (start, end time.Time)
	// RunStart returns the first run index of the process.
	RunStart() uint32
}

// Recorder observes generation outcomes.
type Recorder interface {
	BundleGenerated(kind string, entries int, elapsed time.Duration)
	BundleFailed(kind string)
}

type nopRecorder struct{}

func (nopRecorder) BundleGenerated(string, int, time.Duration) {}
func (nopRecorder) BundleFailed(string)                        {}

// Result is one generated transaction Bundle.
type Result struct {
	Kind   Kind
	Bundle *fhir.Bundle
	// PrimaryID names the output: the bundle id for a graph, the first
	// instance id for a batch.
	PrimaryID ids.LocalID
}

// Option configures a Service.
type Option func(*Service)

// WithDeceasedOffset sets the months between birth and death of deceased
// patients.
func WithDeceasedOffset(months int) Option {
	return func(s *Service) { s.deceasedOffset = months }
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithLogger attaches a logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// Service generates referentially closed transaction Bundles.
type Service struct {
	systems        codetables.Systems
	src            Source
	seq            *ids.Sequence
	deceasedOffset int
	factory        *Factory
	assembler      *Assembler
	recorder       Recorder
	logger         zerolog.Logger
}

// NewService creates a Service drawing from src.
func NewService(systems codetables.Systems, src Source, opts ...Option) *Service {
	s := &Service{
		systems:  systems,
		src:      src,
		seq:      ids.NewSequence(src.RunStart()),
		recorder: nopRecorder{},
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.factory = NewFactory(systems, s.deceasedOffset)
	s.assembler = NewAssembler(systems)
	return s
}

// Generate produces one Bundle of count instances of kind. KindBundle yields
// the full single-patient graph and only supports a count of 1.
func (s *Service) Generate(kind Kind, count int) (*Result, error) {
	if _, ok := kinds[kind]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if count < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCount, count)
	}
	if kind == KindBundle && count > 1 {
		return nil, fmt.Errorf("%w: %d bundles in one request", ErrNotImplemented, count)
	}

	start := time.Now()
	var (
		res *Result
		err error
	)
	if kind == KindBundle {
		res, err = s.graph()
	} else {
		res, err = s.batch(kind, count)
	}
	if err != nil {
		s.recorder.BundleFailed(string(kind))
		return nil, err
	}
	s.recorder.BundleGenerated(string(kind), len(res.Bundle.Entry), time.Since(start))
	s.logger.Debug().
		Str("kind", string(kind)).
		Str("bundle_id", res.Bundle.ID).
		Int("entries", len(res.Bundle.Entry)).
		Msg("bundle assembled")
	return res, nil
}

// anchors are the shared resources that instances of a batch point at.
type anchors struct {
	patient   ids.Reference
	condition ids.Reference
	specimen  ids.Reference
}

// graph builds the single-patient graph. Every entry shares one run index.
func (s *Service) graph() (*Result, error) {
	run := s.seq.Next()
	var a anchors
	entries := make([]Entry, 0, 9)

	add := func(kind Kind) Entry {
		e := s.build(kind, run, a)
		entries = append(entries, e)
		return e
	}

	a.patient = add(KindPatient).Reference
	a.specimen = add(KindSpecimen).Reference
	a.condition = add(KindCondition).Reference
	for _, k := range []Kind{KindHistology, KindVitalStatus, KindTNMc, KindRadiotherapy, KindOperation, KindSystemicTherapy} {
		add(k)
	}

	bundleID, _ := ids.Make("", ids.KindID, KindBundle.TypeName(), run)
	bundle, err := s.assembler.Assemble(bundleID, entries)
	if err != nil {
		return nil, err
	}
	return &Result{Kind: KindBundle, Bundle: bundle, PrimaryID: bundleID}, nil
}

// batch builds count instances of kind behind the anchors the kind needs,
// ordered Patient, Condition, Specimen.
func (s *Service) batch(kind Kind, count int) (*Result, error) {
	info := kinds[kind]
	run := s.seq.Next()
	var a anchors
	entries := make([]Entry, 0, count+3)

	if info.needsPatient {
		e := s.build(KindPatient, run, a)
		entries = append(entries, e)
		a.patient = e.Reference
	}
	if info.needsCond {
		e := s.build(KindCondition, run, a)
		entries = append(entries, e)
		a.condition = e.Reference
	}
	if info.needsSpec {
		e := s.build(KindSpecimen, run, a)
		entries = append(entries, e)
		a.specimen = e.Reference
	}

	first := len(entries)
	for i := 0; i < count; i++ {
		entries = append(entries, s.build(kind, s.seq.Next(), a))
	}

	bundleID, _ := ids.Make("", ids.KindID, KindBundle.TypeName(), run)
	bundle, err := s.assembler.Assemble(bundleID, entries)
	if err != nil {
		return nil, err
	}
	return &Result{
		Kind:      kind,
		Bundle:    bundle,
		PrimaryID: ids.LocalID(entries[first].Resource.GetID()),
	}, nil
}

var recordedDate = mustParseDate(fhirmodels.DefaultRecordedDate)

// build draws the fields of one resource and constructs it.
func (s *Service) build(kind Kind, run uint32, a anchors) Entry {
	info := kinds[kind]
	id, ref := ids.Make(info.group, ids.KindID, info.typeName, run)

	var res fhir.Resource
	switch kind {
	case KindPatient:
		sourceID, _ := ids.Make("", ids.KindSourceIdentifier, info.typeName, run)
		res = s.factory.Patient(id, sourceID, PatientFields{
			Gender:    codetables.Gender(s.src.Pick(codetables.TableGender)),
			BirthDate: s.src.Date(),
			Deceased:  s.src.Bool(),
		})
	case KindSpecimen:
		res = s.factory.Specimen(id, a.patient, SpecimenFields{
			Collected:    s.src.Date(),
			BodySiteCode: fhirmodels.DefaultSpecimenBodySite,
			Material:     codetables.SampleMaterialType(s.src.Pick(codetables.TableSampleMaterialType)),
		})
	case KindCondition:
		res = s.factory.Condition(id, a.patient, ConditionFields{
			DiagnosisCode:  fhirmodels.DefaultDiagnosisCode,
			TopographyCode: fhirmodels.DefaultTopographyCode,
			Site:           codetables.TumorSiteLocation(s.src.Pick(codetables.TableTumorSiteLocation)),
			Onset:          s.src.Date(),
			Recorded:       recordedDate,
		})
	case KindHistology:
		res = s.factory.Histology(id, a.patient, a.condition, a.specimen, HistologyFields{
			MorphologyCode: fhirmodels.DefaultMorphologyCode,
			Effective:      s.src.Date(),
		})
	case KindVitalStatus:
		res = s.factory.VitalStatus(id, a.patient, VitalStatusFields{
			Status:    codetables.VitalStatus(s.src.Pick(codetables.TableVitalStatus)),
			Effective: s.src.Date(),
		})
	case KindTNMc:
		res = s.factory.TNMc(id, a.patient, TNMcFields{
			Stage:     codetables.UICCStage(s.src.Pick(codetables.TableUICCStage)),
			T:         codetables.TNMT(s.src.Pick(codetables.TableTNMT)),
			N:         codetables.TNMN(s.src.Pick(codetables.TableTNMN)),
			M:         codetables.TNMM(s.src.Pick(codetables.TableTNMM)),
			Effective: s.src.Date(),
		})
	case KindRadiotherapy:
		start, end := s.src.Period()
		res = s.factory.Radiotherapy(id, a.patient, a.condition, ProcedureFields{Start: start, End: end})
	case KindOperation:
		start, end := s.src.Period()
		res = s.factory.Operation(id, a.patient, a.condition, ProcedureFields{Start: start, End: end})
	case KindSystemicTherapy:
		start, end := s.src.Period()
		res = s.factory.MedicationStatement(id, ContainedMedication, a.patient, a.condition, MedicationFields{
			Therapy: codetables.TherapyType(s.src.Pick(codetables.TableTherapyType)),
			Start:   start,
			End:     end,
		})
	default:
		panic(fmt.Sprintf("synthetic: no factory for kind %q", kind))
	}
	return Entry{Resource: res, Reference: ref}
}

func mustParseDate(s string) time.Time {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}
