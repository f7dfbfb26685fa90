// Package ids builds local resource ids and the references that point at them.
//
// A local id is "{resourceType}-{kindTag}-{runIndex}". A reference prefixes the
// local id with the group (or the resource type when there is no group), so
// Observation subtypes share the "Observation/" path. Ids are only unique
// within one generation run.
package ids

import (
	"fmt"
	"sync"
)

// LocalID identifies one resource instance within a run.
type LocalID string

// Reference points at a resource in the same graph, e.g. "Observation/Histology-id-3".
type Reference string

// Kind selects the id tag.
type Kind int

const (
	KindID Kind = iota
	KindSourceIdentifier
)

// Tag returns the string embedded in the local id.
func (k Kind) Tag() string {
	if k == KindSourceIdentifier {
		return "src-identifier"
	}
	return "id"
}

func (k Kind) String() string { return k.Tag() }

// Make returns the local id and reference for one resource. An empty group
// falls back to the resource type.
func Make(group string, kind Kind, resourceType string, runIndex uint32) (LocalID, Reference) {
	id := LocalID(fmt.Sprintf("%s-%s-%d", resourceType, kind.Tag(), runIndex))
	prefix := group
	if prefix == "" {
		prefix = resourceType
	}
	return id, Reference(prefix + "/" + string(id))
}

// ---------------------------------------------------------------------------
// Sequence
// ---------------------------------------------------------------------------

// Sequence hands out run indexes. It starts at an arbitrary offset and
// increments, so indexes never repeat within one run.
type Sequence struct {
	mu   sync.Mutex
	next uint32
}

// NewSequence starts a sequence at start.
func NewSequence(start uint32) *Sequence {
	return &Sequence{next: start}
}

// Next returns the next run index.
func (s *Sequence) Next() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.next
	s.next++
	return n
}
