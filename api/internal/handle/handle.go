package handle

import (
	"context"
	"encoding/json"
	"net/http"

	"invoice-extractor/api/internal/invoice"
)

const (
	MsgInvalidJSON   = "Invalid JSON in request body."
	MsgMissingField  = "Request body must contain an 'image_data' field."
	HeaderErrorKind  = "X-Error-Kind"
	HeaderRequestID  = "X-Request-Id"
	contentTypeJSON  = "application/json"
	internalErrorFmt = "Internal server error: "
)

// Extractor runs the pipeline for one image. *extract.Service implements it.
type Extractor interface {
	Extract(ctx context.Context, img invoice.Image) (invoice.Result, error)
}

type Handle struct {
	ext Extractor
}

func New(ext Extractor) *Handle {
	return &Handle{ext: ext}
}

// ExtractRequest is the inbound body.
type ExtractRequest struct {
	ImageData string `json:"image_data"`
	MIMEType  string `json:"mime_type,omitempty"`
}

// Envelope is the status-coded response shared by every front end.
type Envelope struct {
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers"`
	Body       string            `json:"body"`
}

// Process turns one request body into an envelope. An empty body is treated
// as a request without the image_data field.
func (h *Handle) Process(ctx context.Context, body string) Envelope {
	if body == "" {
		return errorEnvelope(http.StatusBadRequest, invoice.KindInput, MsgMissingField)
	}
	var req ExtractRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		return errorEnvelope(http.StatusBadRequest, invoice.KindInput, MsgInvalidJSON)
	}

	img, err := invoice.ImageFromBase64(req.ImageData, req.MIMEType)
	if err != nil {
		return fromError(err)
	}

	res, err := h.ext.Extract(ctx, img)
	if err != nil {
		return fromError(err)
	}
	out, err := res.JSON()
	if err != nil {
		return fromError(err)
	}
	return Envelope{
		StatusCode: http.StatusOK,
		Headers:    map[string]string{"Content-Type": contentTypeJSON},
		Body:       string(out),
	}
}

// fromError maps input errors to 400 and everything else to 500.
func fromError(err error) Envelope {
	kind := invoice.KindOf(err)
	if kind == invoice.KindInput {
		return errorEnvelope(http.StatusBadRequest, kind, err.Error())
	}
	return errorEnvelope(http.StatusInternalServerError, kind, internalErrorFmt+err.Error())
}

func errorEnvelope(code int, kind invoice.Kind, msg string) Envelope {
	b, _ := json.Marshal(map[string]string{"error": msg})
	return Envelope{
		StatusCode: code,
		Headers: map[string]string{
			"Content-Type":  contentTypeJSON,
			HeaderErrorKind: string(kind),
		},
		Body: string(b),
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
