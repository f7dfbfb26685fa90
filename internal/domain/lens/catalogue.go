package lens

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cce/oncogen/internal/domain/codetables"
)

var ErrUnknownFormat = errors.New("unknown catalogue format")

// Kind is a clinical resource kind that contributes one top-level category.
type Kind string

const (
	KindPatient     Kind = "patient"
	KindSpecimen    Kind = "specimen"
	KindObservation Kind = "observation"
	KindTherapy     Kind = "therapy"
)

// DefaultKinds is the catalogue the explorer shows when nothing is asked for.
func DefaultKinds() []Kind {
	return []Kind{KindPatient, KindSpecimen, KindObservation}
}

// ParseKinds splits a comma separated list. An empty list yields the
// default kinds.
func ParseKinds(s string) ([]Kind, error) {
	var out []Kind
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		k := Kind(part)
		switch k {
		case KindPatient, KindSpecimen, KindObservation, KindTherapy:
			out = append(out, k)
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnknownKind, part)
		}
	}
	if len(out) == 0 {
		return DefaultKinds(), nil
	}
	return out, nil
}

// Tables lists the code tables feeding the category of k.
func (k Kind) Tables() []codetables.TableID {
	switch k {
	case KindPatient:
		return []codetables.TableID{codetables.TableGender, codetables.TableVitalStatus}
	case KindSpecimen:
		return []codetables.TableID{codetables.TableSampleMaterialType}
	case KindObservation:
		return []codetables.TableID{
			codetables.TableTumorSiteLocation,
			codetables.TableUICCStage,
			codetables.TableTNMT,
			codetables.TableTNMN,
			codetables.TableTNMM,
		}
	case KindTherapy:
		return []codetables.TableID{codetables.TableTherapyType}
	}
	return nil
}

// Category builds the top-level category for one kind.
func (r *Registry) Category(k Kind) (Category, error) {
	switch k {
	case KindPatient:
		return Group("patient", "Patient",
			r.mustCategory(codetables.TableGender),
			r.mustCategory(codetables.TableVitalStatus),
		), nil
	case KindSpecimen:
		return Group("biosamples", "BioSamples",
			r.mustCategory(codetables.TableSampleMaterialType),
		), nil
	case KindObservation:
		tnm := Group("tnm", "TNM(c)",
			r.mustCategory(codetables.TableTNMT),
			r.mustCategory(codetables.TableTNMN),
			r.mustCategory(codetables.TableTNMM),
		)
		return Group("tumor_classification", "Tumor classification",
			r.mustCategory(codetables.TableTumorSiteLocation),
			r.mustCategory(codetables.TableUICCStage),
			tnm,
		), nil
	case KindTherapy:
		return Group("therapy", "Therapy",
			r.mustCategory(codetables.TableTherapyType),
		), nil
	}
	return Category{}, fmt.Errorf("%w: %s", ErrUnknownKind, k)
}

// BuildCatalogue returns one top-level category per kind, in request order.
func (r *Registry) BuildCatalogue(kinds []Kind) ([]Category, error) {
	out := make([]Category, 0, len(kinds))
	for _, k := range kinds {
		c, err := r.Category(k)
		if err != nil {
			return nil, err
		}
		if want := r.variants(k); c.Leaves() != want {
			return nil, fmt.Errorf("catalogue %s: %d criteria for %d table variants", k, c.Leaves(), want)
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *Registry) variants(k Kind) int {
	n := 0
	for _, id := range k.Tables() {
		n += r.entries[id].Table.Len()
	}
	return n
}

// ---------------------------------------------------------------------------
// Encoding
// ---------------------------------------------------------------------------

// Format selects the catalogue document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts json, yaml and yml. Empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, s)
}

// Extension is the file extension for f.
func (f Format) Extension() string {
	return string(f)
}

// ContentType is the media type for f.
func (f Format) ContentType() string {
	if f == FormatYAML {
		return "application/yaml"
	}
	return "application/json"
}

// Encode writes the catalogue in the requested format.
func Encode(w io.Writer, catalogue []Category, f Format) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(catalogue)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(catalogue); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("%w: %s", ErrUnknownFormat, f)
}
