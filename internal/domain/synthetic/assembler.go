package synthetic

import (
	"errors"
	"fmt"

	"github.com/cce/oncogen/internal/domain/codetables"
	"github.com/cce/oncogen/internal/domain/ids"
	"github.com/cce/oncogen/internal/platform/fhir"
)

var (
	ErrNotImplemented    = errors.New("not implemented")
	ErrInvalidCount      = errors.New("count must be at least 1")
	ErrUnknownKind       = errors.New("unknown resource kind")
	ErrDanglingReference = errors.New("reference does not resolve to an earlier entry")
	ErrEntryOrder        = errors.New("entry order violates reference closure")
	ErrDuplicateEntry    = errors.New("duplicate entry")
	ErrMismatchedEntry   = errors.New("entry reference does not name its resource")
	ErrInvalidBundle     = errors.New("invalid transaction bundle")
)

// Entry pairs a resource with the reference other entries use for it.
type Entry struct {
	Resource  fhir.Resource
	Reference ids.Reference
}

// Assembler turns ordered entries into a transaction Bundle and refuses to
// emit one that is not referentially closed.
type Assembler struct {
	systems codetables.Systems
}

// NewAssembler creates an Assembler that derives fullUrls from systems.
func NewAssembler(systems codetables.Systems) *Assembler {
	return &Assembler{systems: systems}
}

// Assemble builds a transaction Bundle with one PUT entry per input, in input
// order. Every reference in an entry must equal the request url of an
// earlier entry, and a Patient, when present, must come first.
func (a *Assembler) Assemble(bundleID ids.LocalID, entries []Entry) (*fhir.Bundle, error) {
	bundle := fhir.NewTransactionBundle(string(bundleID))
	for i, e := range entries {
		id := e.Resource.GetID()
		if want := fhir.FormatReference(e.Resource.GetResourceType(), id); string(e.Reference) != want {
			return nil, fmt.Errorf("entry %d: %w: %q is not %q", i, ErrMismatchedEntry, e.Reference, want)
		}
		if e.Resource.GetResourceType() == "Patient" && i > 0 && entries[0].Resource.GetResourceType() != "Patient" {
			return nil, fmt.Errorf("entry %d: %w: patient must be the first entry", i, ErrEntryOrder)
		}
		bundle.AddPut(a.systems.FullURL(id), e.Resource, string(e.Reference))
	}

	tx, err := fhir.ToTransaction(bundle)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBundle, err)
	}
	if issues := fhir.ValidateTransactionBundle(tx); len(issues) > 0 {
		return nil, issuesError(issues)
	}
	return bundle, nil
}

// issuesError maps validation issues onto sentinel errors so callers can
// match them with errors.Is.
func issuesError(issues []fhir.ValidationIssue) error {
	errs := make([]error, 0, len(issues))
	for _, issue := range issues {
		var sentinel error
		switch issue.Code {
		case fhir.VIssueTypeNotFound:
			sentinel = ErrDanglingReference
		case fhir.VIssueTypeBusinessRule:
			sentinel = ErrEntryOrder
		case fhir.VIssueTypeDuplicate:
			sentinel = ErrDuplicateEntry
		default:
			sentinel = ErrInvalidBundle
		}
		errs = append(errs, fmt.Errorf("%w: %s", sentinel, issue.Error()))
	}
	return errors.Join(errs...)
}
