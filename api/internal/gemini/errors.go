package gemini

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"

	"github.com/google/generative-ai-go/genai"
	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"

	"invoice-extractor/api/internal/invoice"
)

// classify maps a client error onto an invoice error kind.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var ie *invoice.Error
	if errors.As(err, &ie) {
		return err
	}

	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return errorf(invoice.KindSafety, err)
	}

	if code, ok := httpCode(err); ok {
		switch code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return errorf(invoice.KindAuth, err)
		case http.StatusTooManyRequests:
			return errorf(invoice.KindQuota, err)
		}
		return errorf(invoice.KindUpstream, err)
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errorf(invoice.KindTransport, err)
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return errorf(invoice.KindTransport, err)
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		return errorf(invoice.KindTransport, err)
	}
	return errorf(invoice.KindUpstream, err)
}

// httpCode extracts an HTTP status from googleapi or gax API errors.
func httpCode(err error) (int, bool) {
	var ae *apierror.APIError
	if errors.As(err, &ae) {
		if c := ae.HTTPCode(); c > 0 {
			return c, true
		}
		if st := ae.GRPCStatus(); st != nil {
			return grpcToHTTP(st.Code())
		}
	}
	var ge *googleapi.Error
	if errors.As(err, &ge) && ge.Code > 0 {
		return ge.Code, true
	}
	return 0, false
}

func grpcToHTTP(c codes.Code) (int, bool) {
	switch c {
	case codes.Unauthenticated:
		return http.StatusUnauthorized, true
	case codes.PermissionDenied:
		return http.StatusForbidden, true
	case codes.ResourceExhausted:
		return http.StatusTooManyRequests, true
	case codes.OK:
		return 0, false
	}
	return http.StatusInternalServerError, true
}
