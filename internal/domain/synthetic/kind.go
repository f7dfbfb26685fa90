package synthetic

import (
	"fmt"
	"strings"
)

// Kind selects what a generation request produces.
type Kind string

const (
	KindBundle          Kind = "bundle"
	KindPatient         Kind = "patient"
	KindCondition       Kind = "condition"
	KindSpecimen        Kind = "specimen"
	KindHistology       Kind = "histology"
	KindVitalStatus     Kind = "vital-status"
	KindTNMc            Kind = "tnmc"
	KindRadiotherapy    Kind = "radiotherapy"
	KindOperation       Kind = "operation"
	KindSystemicTherapy Kind = "systemic-therapy"
)

// kindInfo describes how a kind is identified and which shared anchors a
// batch of it needs.
type kindInfo struct {
	group        string
	typeName     string
	needsPatient bool
	needsCond    bool
	needsSpec    bool
}

var kinds = map[Kind]kindInfo{
	KindBundle:          {typeName: "Bundle"},
	KindPatient:         {typeName: "Patient"},
	KindCondition:       {typeName: "Condition", needsPatient: true},
	KindSpecimen:        {typeName: "Specimen", needsPatient: true},
	KindHistology:       {group: "Observation", typeName: "Histology", needsPatient: true, needsCond: true, needsSpec: true},
	KindVitalStatus:     {group: "Observation", typeName: "VitalStatus", needsPatient: true},
	KindTNMc:            {group: "Observation", typeName: "TNMc", needsPatient: true},
	KindRadiotherapy:    {group: "Procedure", typeName: "Radiotherapy", needsPatient: true, needsCond: true},
	KindOperation:       {group: "Procedure", typeName: "Operation", needsPatient: true, needsCond: true},
	KindSystemicTherapy: {group: "MedicationStatement", typeName: "SystemicTherapy", needsPatient: true, needsCond: true},
}

// Kinds lists every kind in display order.
func Kinds() []Kind {
	return []Kind{
		KindBundle, KindPatient, KindCondition, KindSpecimen, KindHistology,
		KindVitalStatus, KindTNMc, KindRadiotherapy, KindOperation, KindSystemicTherapy,
	}
}

// ParseKind accepts a kind name case-insensitively.
func ParseKind(raw string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := kinds[k]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, raw)
	}
	return k, nil
}

// Group returns the reference prefix shared by resources of the kind, or
// the type name when the kind is not grouped.
func (k Kind) Group() string {
	info := kinds[k]
	if info.group == "" {
		return info.typeName
	}
	return info.group
}

// TypeName returns the name embedded in local ids of the kind.
func (k Kind) TypeName() string { return kinds[k].typeName }

func (k Kind) String() string { return string(k) }
