package mcp

import (
	"errors"
	"fmt"

	"github.com/oikio/oikio-mcp/internal/repo"
	"github.com/oikio/oikio-mcp/internal/store"
)

// APIError is the error shape surfaced to MCP clients.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// mapError converts domain errors to coded API errors. Unrecognized
// errors pass through unchanged.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return &APIError{Code: "NOT_FOUND", Message: err.Error()}
	case errors.Is(err, repo.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error()}
	case errors.Is(err, store.ErrMalformedImport):
		return &APIError{Code: "MALFORMED_IMPORT", Message: err.Error()}
	default:
		return &APIError{Code: "PERSISTENCE", Message: err.Error()}
	}
}
