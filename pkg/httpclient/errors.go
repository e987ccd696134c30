package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/r4nb1r/ProfilePulse/pkg/errors"
)

// APIErrorResponse mirrors the error body returned by Google JSON APIs:
// {"error": {"code": 403, "message": "...", "status": "PERMISSION_DENIED"}}.
type APIErrorResponse struct {
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// ParseResponseError reads the body of a non-2xx HTTP response and translates
// it into an appropriate AppError. Structured bodies keep their message;
// anything else is reported with the status code and raw body.
//
// The response body is fully consumed and closed.
func ParseResponseError(resp *http.Response, upstream string) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", upstream, resp.StatusCode, err)
	}

	var apiErr APIErrorResponse
	if json.Unmarshal(bodyBytes, &apiErr) == nil && apiErr.Error != nil {
		return mapUpstreamError(resp.StatusCode, apiErr.Error.Status, apiErr.Error.Message, upstream)
	}

	return fmt.Errorf("%s returned status %d: %s", upstream, resp.StatusCode, string(bodyBytes))
}

func mapUpstreamError(status int, code, message, upstream string) error {
	qualifiedMsg := fmt.Sprintf("%s: %s", upstream, message)

	switch {
	case status == http.StatusNotFound:
		return apperrors.NotFound(upstream, message)
	case status == http.StatusBadRequest:
		return apperrors.InvalidInput(qualifiedMsg)
	case status == http.StatusConflict:
		return apperrors.Conflict(qualifiedMsg)
	case status == http.StatusUnauthorized:
		return apperrors.Unauthorized(qualifiedMsg)
	case status == http.StatusForbidden:
		return apperrors.Forbidden(qualifiedMsg)
	case status == http.StatusServiceUnavailable:
		return &apperrors.AppError{
			Code:    code,
			Message: qualifiedMsg,
			Status:  http.StatusServiceUnavailable,
			Err:     apperrors.ErrServiceUnavail,
		}
	case status >= 500:
		return fmt.Errorf("%s server error (%d/%s): %s", upstream, status, code, message)
	default:
		return &apperrors.AppError{
			Code:    code,
			Message: qualifiedMsg,
			Status:  status,
		}
	}
}

// IsSuccess reports whether the status code is 2xx.
func IsSuccess(status int) bool {
	return status >= 200 && status < 300
}
