package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"invoice-extractor/api/internal/invoice"
)

type Engine struct {
	APIKey string
	Config ModelConfig

	endpoint string
}

func New(apiKey string, cfg ModelConfig) *Engine {
	cfg.Model = strings.TrimSpace(cfg.Model)
	return &Engine{
		APIKey: strings.TrimSpace(apiKey),
		Config: cfg,
	}
}

func (e *Engine) Name() string     { return "gemini" }
func (e *Engine) GetModel() string { return e.Config.Model }

// call is one client round: its own context, client and single-attempt transport.
type call struct {
	ctx    context.Context
	client *genai.Client
	rt     *oneAttempt
	cancel context.CancelFunc
}

func (e *Engine) open(ctx context.Context) (*call, error) {
	if e.APIKey == "" {
		return nil, invoice.NewError(invoice.KindAuth, "GOOGLE_API_KEY is empty", nil)
	}
	ctx, cancel := context.WithCancel(ctx)
	rt := &oneAttempt{base: http.DefaultTransport, apiKey: e.APIKey, cancel: cancel}
	opts := []option.ClientOption{
		option.WithAPIKey(e.APIKey),
		option.WithHTTPClient(&http.Client{Transport: rt}),
	}
	if e.endpoint != "" {
		opts = append(opts, option.WithEndpoint(e.endpoint))
	}
	cl, err := genai.NewClient(ctx, opts...)
	if err != nil {
		cancel()
		return nil, classify(err)
	}
	return &call{ctx: ctx, client: cl, rt: rt, cancel: cancel}, nil
}

func (c *call) close() {
	_ = c.client.Close()
	c.cancel()
}

// fail reports the first upstream reply rather than the cancellation that followed it.
func (c *call) fail(err error) error {
	if first := c.rt.failure(); first != nil {
		return classify(first)
	}
	return classify(err)
}

// Generate sends one multimodal request and returns the model text.
// Parts go out as [system, image, user]. Exactly one HTTP attempt is made;
// a non-2xx reply is returned as is.
func (e *Engine) Generate(ctx context.Context, img invoice.Image, system, user string) (string, error) {
	c, err := e.open(ctx)
	if err != nil {
		return "", err
	}
	defer c.close()

	m := c.client.GenerativeModel(e.Config.Model)
	if m == nil {
		return "", invoice.NewError(invoice.KindUpstream, "gemini: model is nil", nil)
	}
	e.Config.apply(m)

	resp, err := m.GenerateContent(c.ctx, buildParts(img, system, user)...)
	if err != nil {
		return "", c.fail(err)
	}
	txt := responseText(resp)
	if txt == "" {
		return "", invoice.NewError(invoice.KindUpstream, "Error processing image with Gemini: empty response", nil)
	}
	return txt, nil
}

// ListModels returns the names of models that support generateContent.
func (e *Engine) ListModels(ctx context.Context) ([]string, error) {
	c, err := e.open(ctx)
	if err != nil {
		return nil, err
	}
	defer c.close()

	var names []string
	it := c.client.ListModels(c.ctx)
	for {
		mi, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, c.fail(err)
		}
		if supports(mi.SupportedGenerationMethods, "generateContent") {
			names = append(names, mi.Name)
		}
	}
	return names, nil
}

func buildParts(img invoice.Image, system, user string) []genai.Part {
	return []genai.Part{
		genai.Text(system),
		&genai.Blob{MIMEType: img.MIMEType, Data: img.Data},
		genai.Text(user),
	}
}

// responseText joins the text parts of the first candidate that has content.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		var b strings.Builder
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		if b.Len() > 0 {
			return b.String()
		}
	}
	return ""
}

func supports(methods []string, name string) bool {
	for _, m := range methods {
		if m == name {
			return true
		}
	}
	return false
}

func errorf(kind invoice.Kind, err error) *invoice.Error {
	return invoice.NewError(kind, fmt.Sprintf("Error processing image with Gemini: %v", err), err)
}
