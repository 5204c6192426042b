package main

import (
	"log"

	"github.com/aws/aws-lambda-go/lambda"

	"invoice-extractor/api/internal/config"
	"invoice-extractor/api/internal/extract"
	"invoice-extractor/api/internal/gemini"
	"invoice-extractor/api/internal/handle"
)

// The lambda keeps no cache; every invocation is independent.
func main() {
	cfg := config.Load()
	engine := gemini.New(cfg.GoogleAPIKey, cfg.ModelConfig())
	h := handle.New(extract.New(engine, nil))

	log.Printf("invoice-lambda starting model=%s", engine.GetModel())
	lambda.Start(h.Lambda)
}
