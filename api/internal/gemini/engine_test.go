package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoice-extractor/api/internal/invoice"
)

type generateRequest struct {
	Model    string `json:"model"`
	Contents []struct {
		Role  string `json:"role"`
		Parts []struct {
			Text       string `json:"text"`
			InlineData *struct {
				MIMEType string `json:"mimeType"`
				Data     string `json:"data"`
			} `json:"inlineData"`
		} `json:"parts"`
	} `json:"contents"`
	SafetySettings []struct {
		Category  int `json:"category"`
		Threshold int `json:"threshold"`
	} `json:"safetySettings"`
	GenerationConfig struct {
		Temperature     float64 `json:"temperature"`
		TopP            float64 `json:"topP"`
		TopK            int     `json:"topK"`
		MaxOutputTokens int     `json:"maxOutputTokens"`
	} `json:"generationConfig"`
}

func modelReply(text string) []byte {
	b, _ := json.Marshal(map[string]any{
		"candidates": []any{
			map[string]any{
				"content": map[string]any{
					"role":  "model",
					"parts": []any{map[string]any{"text": text}},
				},
				"finishReason": "STOP",
			},
		},
	})
	return b
}

func apiError(code int, status, msg string) []byte {
	b, _ := json.Marshal(map[string]any{
		"error": map[string]any{"code": code, "status": status, "message": msg},
	})
	return b
}

// fakeGemini serves fixed replies and counts requests.
type fakeGemini struct {
	hits   atomic.Int32
	status int
	body   []byte

	mu   sync.Mutex
	last generateRequest
	key  string
	path string
}

func (f *fakeGemini) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.hits.Add(1)
	f.mu.Lock()
	f.key = r.Header.Get("x-goog-api-key")
	f.path = r.URL.Path
	if r.Method == http.MethodPost {
		_ = json.NewDecoder(r.Body).Decode(&f.last)
	}
	f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(f.status)
	_, _ = w.Write(f.body)
}

func newTestEngine(t *testing.T, f *fakeGemini) *Engine {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	e := New("test-key", DefaultModelConfig("gemini-test"))
	e.endpoint = srv.URL
	return e
}

func TestGenerateSendsRequest(t *testing.T) {
	f := &fakeGemini{status: http.StatusOK, body: modelReply("```json\n{\"a\":1}\n```")}
	e := newTestEngine(t, f)

	img := invoice.Image{Data: []byte{1, 2, 3}, MIMEType: "image/png"}
	got, err := e.Generate(context.Background(), img, "system text", "user text")
	require.NoError(t, err)
	assert.Equal(t, "```json\n{\"a\":1}\n```", got)

	f.mu.Lock()
	defer f.mu.Unlock()
	assert.Equal(t, int32(1), f.hits.Load())
	assert.Equal(t, "test-key", f.key)
	assert.True(t, strings.HasSuffix(f.path, "/models/gemini-test:generateContent"), f.path)

	req := f.last
	require.Len(t, req.Contents, 1)
	parts := req.Contents[0].Parts
	require.Len(t, parts, 3)
	assert.Equal(t, "system text", parts[0].Text)
	require.NotNil(t, parts[1].InlineData)
	assert.Equal(t, "image/png", parts[1].InlineData.MIMEType)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte{1, 2, 3}), parts[1].InlineData.Data)
	assert.Equal(t, "user text", parts[2].Text)

	gc := req.GenerationConfig
	assert.InDelta(t, 0.2, gc.Temperature, 1e-6)
	assert.InDelta(t, 1.0, gc.TopP, 1e-6)
	assert.Equal(t, 32, gc.TopK)
	assert.Equal(t, 4096, gc.MaxOutputTokens)

	require.Len(t, req.SafetySettings, 4)
	cats := map[int]bool{}
	for _, s := range req.SafetySettings {
		assert.Equal(t, 2, s.Threshold)
		cats[s.Category] = true
	}
	assert.Len(t, cats, 4)
}

func TestGenerateJoinsTextParts(t *testing.T) {
	b, _ := json.Marshal(map[string]any{
		"candidates": []any{
			map[string]any{
				"content": map[string]any{
					"role":  "model",
					"parts": []any{map[string]any{"text": `{"a":`}, map[string]any{"text": `1}`}},
				},
			},
		},
	})
	e := newTestEngine(t, &fakeGemini{status: http.StatusOK, body: b})

	got, err := e.Generate(context.Background(), invoice.Image{Data: []byte{1}, MIMEType: "image/jpeg"}, "s", "u")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, got)
}

func TestGenerateUpstreamErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		state  string
		msg    string
		want   invoice.Kind
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, state: "UNAUTHENTICATED", msg: "API key not valid.", want: invoice.KindAuth},
		{name: "forbidden", status: http.StatusForbidden, state: "PERMISSION_DENIED", msg: "Permission denied.", want: invoice.KindAuth},
		{name: "quota", status: http.StatusTooManyRequests, state: "RESOURCE_EXHAUSTED", msg: "Quota exceeded.", want: invoice.KindQuota},
		{name: "unavailable", status: http.StatusServiceUnavailable, state: "UNAVAILABLE", msg: "The model is overloaded.", want: invoice.KindUpstream},
		{name: "internal", status: http.StatusInternalServerError, state: "INTERNAL", msg: "Internal error.", want: invoice.KindUpstream},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeGemini{status: tt.status, body: apiError(tt.status, tt.state, tt.msg)}
			e := newTestEngine(t, f)

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			start := time.Now()
			_, err := e.Generate(ctx, invoice.Image{Data: []byte{1}, MIMEType: "image/jpeg"}, "s", "u")
			require.Error(t, err)

			assert.Equal(t, tt.want, invoice.KindOf(err))
			assert.Contains(t, err.Error(), "Error processing image with Gemini: ")
			assert.Contains(t, err.Error(), tt.msg)
			assert.Equal(t, int32(1), f.hits.Load(), "exactly one request")
			assert.Less(t, time.Since(start), 5*time.Second)
		})
	}
}

func TestListModelsFiltersGenerateContent(t *testing.T) {
	body, _ := json.Marshal(map[string]any{
		"models": []any{
			map[string]any{"name": "models/gemini-a", "supportedGenerationMethods": []string{"generateContent", "countTokens"}},
			map[string]any{"name": "models/embed-b", "supportedGenerationMethods": []string{"embedContent"}},
		},
	})
	f := &fakeGemini{status: http.StatusOK, body: body}
	e := newTestEngine(t, f)

	names, err := e.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"models/gemini-a"}, names)
	f.mu.Lock()
	assert.Equal(t, "test-key", f.key)
	f.mu.Unlock()
}

func TestListModelsUpstreamError(t *testing.T) {
	f := &fakeGemini{status: http.StatusServiceUnavailable, body: apiError(503, "UNAVAILABLE", "Try again later.")}
	e := newTestEngine(t, f)

	_, err := e.ListModels(context.Background())
	require.Error(t, err)
	assert.Equal(t, invoice.KindUpstream, invoice.KindOf(err))
	assert.Equal(t, int32(1), f.hits.Load())
}
