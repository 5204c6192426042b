package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"invoice-extractor/api/internal/config"
	"invoice-extractor/api/internal/extract"
	"invoice-extractor/api/internal/gemini"
	"invoice-extractor/api/internal/httpserver"
	"invoice-extractor/api/internal/store"
	"invoice-extractor/api/internal/telegram"
	"invoice-extractor/api/internal/util"
)

func main() {
	cfg := config.Load()

	engine := gemini.New(cfg.GoogleAPIKey, cfg.ModelConfig())
	svc := extract.New(engine, nil)

	// --- Postgres cache (optional) ---
	var health func(*http.Request) error
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
		health = func(r *http.Request) error {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			return db.PingContext(ctx)
		}
		log.Printf("db connected: %s", store.SafeDSNSummary(cfg.DatabaseURL))
	}

	// --- Telegram bot ---
	bot, err := tgbotapi.NewBotAPI(cfg.MustTelegramToken())
	if err != nil {
		log.Fatal(err)
	}
	bot.Debug = false

	r := &telegram.Router{
		Bot:     bot,
		Ext:     svc,
		Model:   engine.GetModel(),
		Timeout: cfg.ExtractTimeout,
	}

	httpserver.RegisterHealthz(health)

	addr := "0.0.0.0:" + cfg.Port

	if webhookURL := strings.TrimSpace(cfg.WebhookURL); webhookURL != "" {
		startWebhookMode(addr, bot, r, webhookURL)
	} else {
		startPollingMode(addr, bot, r)
	}
}

// ---------------- Modes -----------------

func startWebhookMode(addr string, bot *tgbotapi.BotAPI, r *telegram.Router, baseURL string) {
	path := webhookPath(bot.Token)
	public := strings.TrimRight(baseURL, "/") + path

	wh, err := tgbotapi.NewWebhook(public)
	if err != nil {
		log.Fatal(err)
	}
	wh.DropPendingUpdates = true
	if _, err := bot.Request(wh); err != nil {
		log.Fatal(err)
	}

	// ListenForWebhook registers on DefaultServeMux
	updates := bot.ListenForWebhook(path)

	go func() {
		for upd := range updates {
			r.HandleUpdate(upd)
		}
		log.Printf("webhook updates channel closed")
	}()

	log.Printf("webhook listening on %s%s", addr, path)
	log.Fatal(httpserver.StartHTTP(addr))
}

func startPollingMode(addr string, bot *tgbotapi.BotAPI, r *telegram.Router) {
	go func() {
		log.Fatal(httpserver.StartHTTP(addr))
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	runPolling(ctx, bot, r.HandleUpdate)
}

// ---------------- Polling loop -----------------

const (
	pollBaseDelay = 1 * time.Second
	pollMaxDelay  = 15 * time.Second
)

// retryDelayFromError honours Telegram's retry_after on 429 and backs off
// a little longer on network timeouts.
func retryDelayFromError(err error) time.Duration {
	if err == nil {
		return 0
	}
	var tgErr *tgbotapi.Error
	if errors.As(err, &tgErr) {
		if tgErr.RetryAfter > 0 {
			return time.Duration(tgErr.RetryAfter) * time.Second
		}
		if tgErr.Code == http.StatusTooManyRequests {
			return 3 * time.Second
		}
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return 2 * time.Second
	}
	return pollBaseDelay
}

func clampDelay(d time.Duration) time.Duration {
	return min(max(d, pollBaseDelay), pollMaxDelay)
}

// updateFetcher is the part of *tgbotapi.BotAPI the polling loop needs.
type updateFetcher interface {
	GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error)
}

func runPolling(ctx context.Context, bot updateFetcher, handle func(tgbotapi.Update)) {
	offset := 0
	for {
		u := tgbotapi.NewUpdate(offset)
		u.Timeout = 30

		updates, err := bot.GetUpdates(u)
		if err != nil {
			d := clampDelay(retryDelayFromError(err))
			log.Printf("polling error (offset=%d): %v; retry in %v", offset, err, d)
			if !sleepCtx(ctx, d) {
				return
			}
			continue
		}

		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
			if chat := upd.FromChat(); chat != nil {
				log.Printf("update %d chat=%d", upd.UpdateID, chat.ID)
			}
			handle(upd)
		}

		if len(updates) == 0 && !sleepCtx(ctx, 200*time.Millisecond) {
			return
		}
		if ctx.Err() != nil {
			log.Printf("polling stopped at offset %d", offset)
			return
		}
	}
}

// sleepCtx waits d and reports false if ctx ended first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		log.Printf("polling: %v", ctx.Err())
		return false
	case <-t.C:
		return true
	}
}

// webhookPath keeps the bot token out of the URL.
func webhookPath(token string) string {
	return "/webhook/" + util.SHA256Hex([]byte(token))[:16]
}
