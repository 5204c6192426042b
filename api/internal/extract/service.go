package extract

import (
	"context"
	"log"

	"invoice-extractor/api/internal/invoice"
)

// Generator is the model call. *gemini.Engine implements it.
type Generator interface {
	GetModel() string
	Generate(ctx context.Context, img invoice.Image, system, user string) (string, error)
}

// Cache stores successful extractions. *store.ExtractionRepo implements it.
type Cache interface {
	Lookup(ctx context.Context, imageHash, model string) (invoice.Result, bool, error)
	Save(ctx context.Context, imageHash, model, mimeType string, res invoice.Result) error
}

type Service struct {
	Gen   Generator
	Cache Cache // optional
}

func New(gen Generator, cache Cache) *Service {
	return &Service{Gen: gen, Cache: cache}
}

// Extract runs prompt, model call, fence stripping and JSON parsing for one image.
// On a format error the returned Result still carries Raw and Text.
func (s *Service) Extract(ctx context.Context, img invoice.Image) (invoice.Result, error) {
	if len(img.Data) == 0 {
		return invoice.Result{}, invoice.InputError(invoice.MsgNoImageData, nil)
	}
	if img.MIMEType == "" {
		img.MIMEType = "image/jpeg"
	}

	model := s.Gen.GetModel()
	var hash string
	if s.Cache != nil {
		hash = img.Hash()
		res, ok, err := s.Cache.Lookup(ctx, hash, model)
		switch {
		case err != nil:
			log.Printf("extract: cache lookup %s: %v", hash[:12], err)
		case ok:
			log.Printf("extract: cache hit %s model=%s", hash[:12], model)
			return res, nil
		}
	}

	raw, err := s.Gen.Generate(ctx, img, invoice.SystemPrompt, invoice.UserPrompt)
	if err != nil {
		return invoice.Result{}, err
	}

	res, err := invoice.Normalize(raw)
	if err != nil {
		return res, err
	}

	if s.Cache != nil {
		if err := s.Cache.Save(ctx, hash, model, img.MIMEType, res); err != nil {
			log.Printf("extract: cache save %s: %v", hash[:12], err)
		}
	}
	return res, nil
}
