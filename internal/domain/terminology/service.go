package terminology

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofhir/fhir/r4"

	"github.com/cce/oncogen/internal/platform/fhir"
)

const implicitValueSetSuffix = "?vs"

// Service answers terminology operations over the published CodeSystems.
// It is read-only after construction and safe for concurrent use.
type Service struct {
	defs   []*Definition
	byURL  map[string]*Definition
	byName map[string]*Definition
	now    func() time.Time
}

// NewService indexes defs by canonical URL and name.
func NewService(defs []*Definition) (*Service, error) {
	s := &Service{
		defs:   defs,
		byURL:  make(map[string]*Definition, len(defs)),
		byName: make(map[string]*Definition, len(defs)),
		now:    time.Now,
	}
	for _, d := range defs {
		if err := d.Verify(); err != nil {
			return nil, err
		}
		if _, dup := s.byURL[d.URL]; dup {
			return nil, fmt.Errorf("duplicate code system url %s", d.URL)
		}
		s.byURL[d.URL] = d
		s.byName[strings.ToLower(d.Name)] = d
	}
	return s, nil
}

// Definitions returns every definition in registration order.
func (s *Service) Definitions() []*Definition {
	return s.defs
}

// CodeSystems renders every definition. Each one is parsed as an R4
// CodeSystem first and a definition that fails stops the export.
func (s *Service) CodeSystems() ([]*fhir.CodeSystem, error) {
	out := make([]*fhir.CodeSystem, 0, len(s.defs))
	for _, d := range s.defs {
		cs, err := export(d)
		if err != nil {
			return nil, err
		}
		out = append(out, cs)
	}
	return out, nil
}

// CodeSystem returns one CodeSystem by name, case-insensitively.
func (s *Service) CodeSystem(name string) (*fhir.CodeSystem, error) {
	d, ok := s.byName[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCodeSystem, name)
	}
	return export(d)
}

func export(d *Definition) (*fhir.CodeSystem, error) {
	if _, err := d.R4(); err != nil {
		return nil, err
	}
	return d.CodeSystem(), nil
}

// resolve finds a definition by canonical URL. A "|version" suffix is
// ignored.
func (s *Service) resolve(system string) (*Definition, error) {
	if i := strings.Index(system, "|"); i >= 0 {
		system = system[:i]
	}
	d, ok := s.byURL[system]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCodeSystem, system)
	}
	return d, nil
}

// -- FHIR Operations --

// Lookup implements the FHIR CodeSystem $lookup operation.
func (s *Service) Lookup(_ context.Context, req *LookupRequest) (*LookupResponse, error) {
	if req.System == "" {
		return nil, fmt.Errorf("system is required")
	}
	if req.Code == "" {
		return nil, fmt.Errorf("code is required")
	}
	d, err := s.resolve(req.System)
	if err != nil {
		return nil, err
	}
	c, ok := d.Lookup(req.Code)
	if !ok {
		return nil, fmt.Errorf("%w: %s in %s", ErrUnknownCode, req.Code, d.Name)
	}

	params := []LookupParameter{
		{Name: "name", ValueString: d.Name},
		{Name: "version", ValueString: d.Version},
		{Name: "display", ValueString: c.Display},
	}
	if c.Definition != "" {
		params = append(params, LookupParameter{Name: "definition", ValueString: c.Definition})
	}
	return &LookupResponse{ResourceType: "Parameters", Parameter: params}, nil
}

// ValidateCode implements the FHIR CodeSystem $validate-code operation. A
// supplied display must match the concept display exactly.
func (s *Service) ValidateCode(_ context.Context, req *ValidateCodeRequest) (*ValidateCodeResponse, error) {
	if req.System == "" {
		return nil, fmt.Errorf("system is required")
	}
	if req.Code == "" {
		return nil, fmt.Errorf("code is required")
	}
	d, err := s.resolve(req.System)
	if err != nil {
		return nil, err
	}

	c, found := d.Lookup(req.Code)
	var message string
	switch {
	case !found:
		message = fmt.Sprintf("code '%s' not found in system '%s'", req.Code, req.System)
	case req.Display != "" && req.Display != c.Display:
		found = false
		message = fmt.Sprintf("display '%s' does not match '%s' for code '%s'", req.Display, c.Display, req.Code)
	}

	result := found
	params := []ValidateCodeParameter{
		{Name: "result", ValueBoolean: &result},
	}
	if found {
		params = append(params, ValidateCodeParameter{Name: "display", ValueString: c.Display})
	} else {
		params = append(params, ValidateCodeParameter{Name: "message", ValueString: message})
	}
	return &ValidateCodeResponse{ResourceType: "Parameters", Parameter: params}, nil
}

// Expand implements ValueSet $expand for the implicit value set of a
// CodeSystem, which holds every concept in order. The value set is named
// "{system}?vs".
func (s *Service) Expand(_ context.Context, url string) (*r4.ValueSet, error) {
	if url == "" {
		return nil, fmt.Errorf("url is required")
	}
	d, err := s.resolve(strings.TrimSuffix(url, implicitValueSetSuffix))
	if err != nil {
		return nil, err
	}

	system, version := d.URL, d.Version
	vsURL := d.URL + implicitValueSetSuffix
	status := r4.PublicationStatusActive
	timestamp := s.now().UTC().Format(time.RFC3339)
	total := len(d.Concepts)

	contains := make([]r4.ValueSetExpansionContains, 0, total)
	for _, c := range d.Concepts {
		code, display := c.Code, c.Display
		contains = append(contains, r4.ValueSetExpansionContains{
			System:  &system,
			Version: &version,
			Code:    &code,
			Display: &display,
		})
	}
	return &r4.ValueSet{
		Url:     &vsURL,
		Version: &version,
		Status:  &status,
		Compose: &r4.ValueSetCompose{
			Include: []r4.ValueSetComposeInclude{{System: &system, Version: &version}},
		},
		Expansion: &r4.ValueSetExpansion{
			Timestamp: &timestamp,
			Total:     &total,
			Contains:  contains,
		},
	}, nil
}
