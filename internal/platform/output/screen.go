package output

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
)

// ScreenSink prints documents, one after another.
type ScreenSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewScreenSink writes to w, or stdout when w is nil.
func NewScreenSink(w io.Writer) *ScreenSink {
	if w == nil {
		w = os.Stdout
	}
	return &ScreenSink{w: w}
}

func (s *ScreenSink) Write(_ context.Context, doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.w.Write(doc.Body); err != nil {
		return fmt.Errorf("print %s: %w", doc.FileName(), err)
	}
	if n := len(doc.Body); n == 0 || doc.Body[n-1] != '\n' {
		_, err := io.WriteString(s.w, "\n")
		return err
	}
	return nil
}

func (s *ScreenSink) Describe() string { return "screen" }
