package output

import (
	"context"
	"sync"
)

// MemorySink keeps documents in memory. It backs the HTTP service's
// generation history and tests.
type MemorySink struct {
	mu    sync.RWMutex
	docs  []Document
	limit int
}

// NewMemorySink keeps at most limit documents, dropping the oldest. Zero means
// unbounded.
func NewMemorySink(limit int) *MemorySink {
	return &MemorySink{limit: limit}
}

func (s *MemorySink) Write(_ context.Context, doc Document) error {
	if err := doc.validate(); err != nil {
		return err
	}
	body := make([]byte, len(doc.Body))
	copy(body, doc.Body)
	doc.Body = body

	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = append(s.docs, doc)
	if s.limit > 0 && len(s.docs) > s.limit {
		s.docs = s.docs[len(s.docs)-s.limit:]
	}
	return nil
}

// Documents returns a snapshot, oldest first.
func (s *MemorySink) Documents() []Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Document, len(s.docs))
	copy(out, s.docs)
	return out
}

// Get finds the most recent document with name.
func (s *MemorySink) Get(name string) (Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.docs) - 1; i >= 0; i-- {
		if s.docs[i].Name == name {
			return s.docs[i], true
		}
	}
	return Document{}, false
}

func (s *MemorySink) Describe() string { return "memory" }
