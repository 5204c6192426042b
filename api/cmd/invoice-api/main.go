package main

import (
	"context"
	"log"
	"net/http"

	"invoice-extractor/api/internal/config"
	"invoice-extractor/api/internal/extract"
	"invoice-extractor/api/internal/gemini"
	"invoice-extractor/api/internal/handle"
	"invoice-extractor/api/internal/store"
)

func main() {
	cfg := config.Load()

	engine := gemini.New(cfg.GoogleAPIKey, cfg.ModelConfig())
	svc := extract.New(engine, nil)

	if cfg.DatabaseURL != "" {
		db, err := store.Open(context.Background(), cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("cache: %v", err)
		}
		defer db.Close()
		repo := store.NewExtractionRepo(db, cfg.CacheMaxAge)
		if err := repo.EnsureSchema(context.Background()); err != nil {
			log.Fatalf("cache schema: %v", err)
		}
		svc.Cache = repo
		log.Printf("db connected: %s", store.SafeDSNSummary(cfg.DatabaseURL))
	}

	h := handle.New(svc)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", handle.Healthz)
	mux.HandleFunc("/v1/invoice/extract", handle.WithTimeout(h.Extract, cfg.ExtractTimeout))

	addr := ":" + cfg.Port
	log.Printf("invoice-api listening on %s model=%s", addr, engine.GetModel())
	log.Fatal(http.ListenAndServe(addr, mux))
}
