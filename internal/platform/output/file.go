package output

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultDir is used when no directory is configured.
const DefaultDir = "./generated-data"

// FileSink writes each document to {dir}/{name}.{ext}.
type FileSink struct {
	dir string
}

// NewFileSink creates dir if it does not exist.
func NewFileSink(dir string) (*FileSink, error) {
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir %s: %w", dir, err)
	}
	return &FileSink{dir: dir}, nil
}

func (s *FileSink) Write(_ context.Context, doc Document) error {
	if err := doc.validate(); err != nil {
		return err
	}
	path := s.Path(doc)
	if err := os.WriteFile(path, doc.Body, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Path is where doc is written.
func (s *FileSink) Path(doc Document) string {
	return filepath.Join(s.dir, doc.FileName())
}

func (s *FileSink) Describe() string { return "file:" + s.dir }
