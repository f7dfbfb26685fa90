// Package output delivers rendered documents to the place the operator asked
// for: the terminal, a directory, an HTTP endpoint or an S3 bucket.
package output

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrUnknownMode = errors.New("unknown output mode")
	ErrRejected    = errors.New("document rejected by receiver")
	ErrMissingName = errors.New("document name is required")
)

// Mode selects a sink.
type Mode string

const (
	ModeScreen Mode = "screen"
	ModeFile   Mode = "file"
	ModeAPI    Mode = "api-call"
	ModeS3     Mode = "s3"
)

// Modes lists the supported modes.
func Modes() []Mode {
	return []Mode{ModeScreen, ModeFile, ModeAPI, ModeS3}
}

// ParseMode accepts a mode name case-insensitively.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Modes() {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Document is one rendered artifact.
type Document struct {
	Name        string // file stem, usually a local id
	Extension   string // without the dot
	ContentType string
	Body        []byte
}

// FileName is the stem plus extension.
func (d Document) FileName() string {
	if d.Extension == "" {
		return d.Name
	}
	return d.Name + "." + d.Extension
}

func (d Document) validate() error {
	if d.Name == "" {
		return ErrMissingName
	}
	return nil
}

// Sink receives documents.
type Sink interface {
	Write(ctx context.Context, doc Document) error
	// Describe names the destination for log lines.
	Describe() string
}

// Config carries the settings of every mode. Only the fields of the chosen
// mode are read.
type Config struct {
	Dir        string
	APIURL     string
	APITimeout time.Duration
	S3         S3Config
}

// New builds the sink for mode.
func New(ctx context.Context, mode Mode, cfg Config) (Sink, error) {
	switch mode {
	case ModeScreen:
		return NewScreenSink(nil), nil
	case ModeFile:
		return NewFileSink(cfg.Dir)
	case ModeAPI:
		return NewHTTPSink(cfg.APIURL, WithTimeout(cfg.APITimeout))
	case ModeS3:
		return NewS3Sink(ctx, cfg.S3)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
}
