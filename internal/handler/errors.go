package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/naka-gawa/github-approvers/internal/domain"
)

const (
	codeInvalidRequest      = "INVALID_REQUEST"
	codeNotAFile            = "NOT_A_FILE"
	codeUpstreamError       = "UPSTREAM_ERROR"
	codeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	codeTimeout             = "TIMEOUT"
	codeInternalError       = "INTERNAL_ERROR"
)

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

func errorResponse(code, message string) ErrorResponse {
	return ErrorResponse{Error: ErrorBody{Code: code, Message: message}}
}

// toErrorResponse maps domain errors to an HTTP status and body. Upstream failures keep
// the upstream status and message.
func toErrorResponse(err error) (int, ErrorResponse) {
	var upstreamErr *domain.UpstreamError

	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest, errorResponse(codeInvalidRequest, err.Error())
	case errors.Is(err, domain.ErrNotAFile):
		return http.StatusBadRequest, errorResponse(codeNotAFile, err.Error())
	case errors.As(err, &upstreamErr):
		return upstreamErr.StatusCode, errorResponse(codeUpstreamError, upstreamErr.Message)
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, errorResponse(codeTimeout, "upstream request timed out")
	case errors.As(err, new(*domain.TransportError)):
		return http.StatusBadGateway, errorResponse(codeUpstreamUnavailable, err.Error())
	default:
		return http.StatusInternalServerError, errorResponse(codeInternalError, err.Error())
	}
}
