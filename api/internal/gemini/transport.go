package gemini

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync"

	"google.golang.org/api/googleapi"
)

// oneAttempt authenticates requests with the API key header and stops the
// client's built-in retry: the first non-2xx reply is recorded and the call
// context is cancelled, so the retry backoff returns at once.
type oneAttempt struct {
	base   http.RoundTripper
	apiKey string
	cancel context.CancelFunc

	mu    sync.Mutex
	first error
}

func (t *oneAttempt) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.failure(); err != nil {
		return nil, err
	}
	r := req.Clone(req.Context())
	r.Header.Set("x-goog-api-key", t.apiKey)

	res, err := t.base.RoundTrip(r)
	if err != nil {
		return nil, err
	}
	if res.StatusCode < 300 {
		return res, nil
	}

	body, err := io.ReadAll(res.Body)
	_ = res.Body.Close()
	if err != nil {
		return nil, err
	}
	res.Body = io.NopCloser(bytes.NewReader(body))

	apiErr := googleapi.CheckResponse(&http.Response{
		StatusCode: res.StatusCode,
		Status:     res.Status,
		Header:     res.Header,
		Body:       io.NopCloser(bytes.NewReader(body)),
	})
	t.mu.Lock()
	if t.first == nil {
		t.first = apiErr
	}
	t.mu.Unlock()
	t.cancel()
	return res, nil
}

// failure is the first upstream error seen, if any.
func (t *oneAttempt) failure() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.first
}
