package upstream

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// APIError is the single normalized failure shape: an HTTP-style code, the
// upstream's status token (or transport reason), and a human message.
type APIError struct {
	Code    int    `json:"code"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream: %d %s: %s", e.Code, e.Status, e.Message)
}

// statusToCode maps the API's embedded status tokens to HTTP-style codes.
// Unmapped tokens fall back to 500.
var statusToCode = map[string]int{
	"OK":                       http.StatusOK,
	"ZERO_RESULTS":             http.StatusNoContent,
	"OVER_QUERY_LIMIT":         http.StatusTooManyRequests,
	"REQUEST_DENIED":           http.StatusForbidden,
	"INVALID_REQUEST":          http.StatusBadRequest,
	"INVALID_ARGUMENT":         http.StatusBadRequest,
	"NOT_FOUND":                http.StatusNotFound,
	"UNKNOWN_ERROR":            http.StatusInternalServerError,
	"TIMEOUT":                  http.StatusRequestTimeout,
	"INVALID_VALUE":            http.StatusUnprocessableEntity,
	"PERMISSION_DENIED":        http.StatusForbidden,
	"RATE_LIMIT_EXCEEDED":      http.StatusTooManyRequests,
	"USER_RATE_LIMIT_EXCEEDED": http.StatusTooManyRequests,
	"SERVICE_NOT_AVAILABLE":    http.StatusServiceUnavailable,
	"NOT_AUTHORIZED":           http.StatusUnauthorized,
	"NOT_SUPPORTED":            http.StatusNotImplemented,
	"NOT_IMPLEMENTED":          http.StatusNotImplemented,
	"NOT_ALLOWED":              http.StatusMethodNotAllowed,
	"NOT_ACCEPTABLE":           http.StatusNotAcceptable,
	"NOT_MODIFIED":             http.StatusNotModified,
	"CONFLICT":                 http.StatusConflict,
	"GONE":                     http.StatusGone,
	"PRECONDITION_FAILED":      http.StatusPreconditionFailed,
	"UNSUPPORTED_MEDIA_TYPE":   http.StatusUnsupportedMediaType,
	"UNPROCESSABLE_ENTITY":     http.StatusUnprocessableEntity,
}

// StatusToCode resolves an embedded status token to its HTTP-style code.
func StatusToCode(status string) int {
	if code, ok := statusToCode[status]; ok {
		return code
	}
	return http.StatusInternalServerError
}

// Normalize consumes resp and returns either the embedded result payload or
// an APIError. It closes the response body. Normalization is a pure function
// of the materialized response: the same response always yields the same
// outcome.
func Normalize(resp *http.Response) (map[string]any, *APIError) {
	defer resp.Body.Close()

	reason := http.StatusText(resp.StatusCode)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// transport-level failure: surface the upstream's own code and body
		body, _ := io.ReadAll(resp.Body)
		return nil, &APIError{
			Code:    resp.StatusCode,
			Status:  reason,
			Message: string(body),
		}
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		// success-shaped code: the transport said OK, only the body is bad
		return nil, &APIError{
			Code:    resp.StatusCode,
			Status:  reason,
			Message: fmt.Sprintf("error parsing response: %v", err),
		}
	}

	if msg, ok := body["error_message"].(string); ok && msg != "" {
		status, _ := body["status"].(string)
		return nil, &APIError{
			Code:    StatusToCode(status),
			Status:  status,
			Message: msg,
		}
	}

	result, ok := body["result"].(map[string]any)
	if !ok {
		return nil, &APIError{
			Code:    http.StatusInternalServerError,
			Status:  reason,
			Message: "upstream payload has no result",
		}
	}
	return result, nil
}
