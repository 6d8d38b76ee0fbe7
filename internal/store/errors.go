package store

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// APIError carries the backend's readable failure message alongside the
// HTTP status, so surfaces can display it directly.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("api error: status %d", e.StatusCode)
}

// decodeAPIError extracts the backend's {"detail": "..."} error body.
func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return apiErr
	}
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != "" {
		apiErr.Detail = payload.Detail
	}
	return apiErr
}
