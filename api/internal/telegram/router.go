package telegram

import (
	"context"
	"fmt"
	"log"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"invoice-extractor/api/internal/invoice"
)

// Bot is the part of *tgbotapi.BotAPI the router uses.
type Bot interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetFileDirectURL(fileID string) (string, error)
}

type Extractor interface {
	Extract(ctx context.Context, img invoice.Image) (invoice.Result, error)
}

type Router struct {
	Bot     Bot
	Ext     Extractor
	Model   string
	Timeout time.Duration
}

func (r *Router) HandleUpdate(upd tgbotapi.Update) {
	msg := upd.Message
	if msg == nil {
		return
	}
	if msg.IsCommand() {
		r.HandleCommand(msg)
		return
	}
	switch {
	case len(msg.Photo) > 0:
		// largest size comes last
		ph := msg.Photo[len(msg.Photo)-1]
		r.acceptImage(msg.Chat.ID, ph.FileID, "image/jpeg")
	case msg.Document != nil && isImageMIME(msg.Document.MimeType):
		r.acceptImage(msg.Chat.ID, msg.Document.FileID, msg.Document.MimeType)
	default:
		r.send(msg.Chat.ID, "Send a photo of an invoice (or an image file) and I will reply with its data as JSON.")
	}
}

func (r *Router) HandleCommand(msg *tgbotapi.Message) {
	cid := msg.Chat.ID
	switch msg.Command() {
	case "start", "help":
		r.send(cid, "Send a photo of an invoice and I will reply with the extracted JSON.\nCommands: /health, /model")
	case "health":
		r.send(cid, "✅ OK")
	case "model":
		r.send(cid, "Model: "+r.Model)
	default:
		r.send(cid, "Unknown command")
	}
}

func (r *Router) send(chatID int64, text string) {
	if _, err := r.Bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		log.Printf("telegram: send to %d: %v", chatID, err)
	}
}

func (r *Router) SendError(chatID int64, err error) {
	switch invoice.KindOf(err) {
	case invoice.KindInput:
		r.send(chatID, "Could not read the image: "+err.Error())
	case invoice.KindFormat:
		r.send(chatID, "The model did not return valid JSON. Try a sharper photo.")
	case invoice.KindSafety:
		r.send(chatID, "The model refused to process this image.")
	default:
		r.send(chatID, fmt.Sprintf("Extraction failed: %v", err))
	}
}
