package output

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultTimeout bounds one POST.
const DefaultTimeout = 10 * time.Second

// HTTPSink POSTs each document to a FHIR endpoint.
type HTTPSink struct {
	url    string
	client *http.Client
}

// HTTPOption configures an HTTPSink.
type HTTPOption func(*HTTPSink)

// WithHTTPClient overrides the client used for deliveries.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(s *HTTPSink) { s.client = c }
}

// WithTimeout sets the client timeout. Zero keeps the default.
func WithTimeout(d time.Duration) HTTPOption {
	return func(s *HTTPSink) {
		if d > 0 {
			s.client.Timeout = d
		}
	}
}

// NewHTTPSink validates target and builds the sink.
func NewHTTPSink(target string, opts ...HTTPOption) (*HTTPSink, error) {
	u, err := url.Parse(target)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api url %q", target)
	}
	s := &HTTPSink{
		url:    target,
		client: &http.Client{Timeout: DefaultTimeout},
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

func (s *HTTPSink) Write(ctx context.Context, doc Document) error {
	if err := doc.validate(); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(doc.Body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if doc.ContentType != "" {
		req.Header.Set("Content-Type", doc.ContentType)
	}
	req.Header.Set("Accept", doc.ContentType)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", doc.FileName(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%w: %s returned %d: %s", ErrRejected, s.url, resp.StatusCode, bytes.TrimSpace(body))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (s *HTTPSink) Describe() string { return "api:" + s.url }
