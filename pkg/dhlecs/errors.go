package dhlecs

import (
	"encoding/json"
	"fmt"
	"strings"
)

// APIError represents a non-200 response from the DHL eCS API.
// Message is built from the carrier's structured message list when present,
// otherwise from the raw response body.
type APIError struct {
	StatusCode int
	Messages   []string
	RawBody    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if len(e.Messages) > 0 {
		return fmt.Sprintf("API error: %s", strings.Join(e.Messages, ", "))
	}
	return fmt.Sprintf("API error: %s", e.RawBody)
}

// Is implements errors.Is for APIError, matching on HTTP status code.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return t.StatusCode == 0 || e.StatusCode == t.StatusCode
}

// newAPIError builds an APIError from a carrier response body, preferring
// the structured "messages" array over the raw payload.
func newAPIError(statusCode int, body []byte) *APIError {
	var structured struct {
		Messages []string `json:"messages"`
	}
	if err := json.Unmarshal(body, &structured); err == nil && len(structured.Messages) > 0 {
		return &APIError{StatusCode: statusCode, Messages: structured.Messages}
	}
	return &APIError{StatusCode: statusCode, RawBody: string(body)}
}
