package handle

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const maxBodyBytes = 20 << 20

// Extract serves POST /v1/invoice/extract with the same outcomes as the lambda.
func (h *Handle) Extract(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "POST only"})
		return
	}
	rid := uuid.NewString()
	start := time.Now()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "Request body too large."})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": MsgInvalidJSON})
		return
	}

	env := h.Process(r.Context(), string(body))
	log.Printf("extract rid=%s status=%d kind=%s took=%s", rid, env.StatusCode, env.Headers[HeaderErrorKind], time.Since(start).Round(time.Millisecond))

	for k, v := range env.Headers {
		w.Header().Set(k, v)
	}
	w.Header().Set(HeaderRequestID, rid)
	w.WriteHeader(env.StatusCode)
	_, _ = io.WriteString(w, env.Body)
}

// WithTimeout bounds each request's context.
func WithTimeout(next http.HandlerFunc, d time.Duration) http.HandlerFunc {
	if d <= 0 {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), d)
		defer cancel()
		next(w, r.WithContext(ctx))
	}
}

// Healthz always answers ok.
func Healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
