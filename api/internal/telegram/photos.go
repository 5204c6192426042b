package telegram

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"invoice-extractor/api/internal/invoice"
)

const maxMessageLen = 3900

func (r *Router) acceptImage(chatID int64, fileID, mimeType string) {
	r.send(chatID, "Got it, reading the invoice…")

	url, err := r.Bot.GetFileDirectURL(fileID)
	if err != nil {
		r.SendError(chatID, err)
		return
	}
	data, err := download(url)
	if err != nil {
		r.SendError(chatID, invoice.InputError("download failed: "+err.Error(), err))
		return
	}

	ctx := context.Background()
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	res, err := r.Ext.Extract(ctx, invoice.Image{Data: data, MIMEType: mimeType})
	if err != nil {
		log.Printf("telegram: extract chat=%d: %v", chatID, err)
		r.SendError(chatID, err)
		return
	}
	r.SendResult(chatID, res)
}

// SendResult sends a short summary followed by the JSON as a file.
func (r *Router) SendResult(chatID int64, res invoice.Result) {
	rec, err := res.Record()
	if err == nil {
		r.send(chatID, Summary(rec))
	}

	b, err := res.JSON()
	if err != nil {
		r.SendError(chatID, err)
		return
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: "invoice.json", Bytes: b})
	if _, err := r.Bot.Send(doc); err != nil {
		log.Printf("telegram: send document to %d: %v", chatID, err)
		r.send(chatID, truncate(string(b), maxMessageLen))
	}
}

// truncate cuts s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos] + "…"
		}
		i++
	}
	return s
}

// Summary renders the main invoice fields as plain text.
func Summary(rec invoice.Record) string {
	var b strings.Builder
	b.WriteString("🧾 Invoice")
	if rec.Header.InvoiceNumber != "" {
		b.WriteString(" " + rec.Header.InvoiceNumber)
	}
	b.WriteString("\n")
	line := func(label, v string) {
		if v != "" {
			fmt.Fprintf(&b, "%s: %s\n", label, v)
		}
	}
	line("Company", rec.Header.CompanyName)
	line("Date", rec.Header.Date)
	line("Customer", rec.Header.CustomerDetails.Name)
	line("GSTIN", rec.Header.CustomerDetails.GSTIN)
	fmt.Fprintf(&b, "Items: %d\n", len(rec.Details))
	line("Subtotal", rec.Totals.Subtotal)
	line("Total", rec.Totals.Total)
	return strings.TrimRight(b.String(), "\n")
}

func isImageMIME(m string) bool {
	return strings.HasPrefix(strings.ToLower(m), "image/")
}

func download(url string) ([]byte, error) {
	resp, err := httpClient().Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(b))
	}
	return io.ReadAll(resp.Body)
}

func httpClient() *http.Client {
	return &http.Client{Timeout: 60 * time.Second}
}
