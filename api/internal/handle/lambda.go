package handle

import (
	"context"
	"encoding/base64"
	"log"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/google/uuid"

	"invoice-extractor/api/internal/invoice"
)

// Lambda adapts an API Gateway proxy event to Process.
func (h *Handle) Lambda(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	rid := uuid.NewString()
	if lc, ok := lambdacontext.FromContext(ctx); ok && lc.AwsRequestID != "" {
		rid = lc.AwsRequestID
	}

	body := req.Body
	if req.IsBase64Encoded && body != "" {
		b, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return toProxy(errorEnvelope(http.StatusBadRequest, invoice.KindInput, MsgInvalidJSON)), nil
		}
		body = string(b)
	}

	env := h.Process(ctx, body)
	log.Printf("lambda rid=%s status=%d kind=%s", rid, env.StatusCode, env.Headers[HeaderErrorKind])
	return toProxy(env), nil
}

func toProxy(env Envelope) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: env.StatusCode,
		Headers:    env.Headers,
		Body:       env.Body,
	}
}
