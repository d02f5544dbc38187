package resource

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/truccaai/trucca/internal/types"
)

var (
	// ErrFetchFailed wraps every failed list call.
	ErrFetchFailed = errors.New("fetch failed")
	// ErrNotFound wraps every failed single-record read.
	ErrNotFound = errors.New("not found")
	// ErrEmptySelection is returned by Delete and Acknowledge for an empty id list.
	ErrEmptySelection = errors.New("no records selected")
	// ErrReadOnly is returned by mutations on a read-only resource.
	ErrReadOnly = errors.New("resource is read-only")
	// ErrCopyUnsupported is returned by Copy when the resource cannot be duplicated.
	ErrCopyUnsupported = errors.New("resource cannot be copied")
	// ErrUnsupportedFile is returned by ImportFromExcel for unknown extensions.
	ErrUnsupportedFile = errors.New("unsupported file type")
)

// APIError is a non-2xx response or an envelope with success=false. Message
// is the server's message, verbatim when it sent one.
type APIError struct {
	Status  int
	Message string
	kind    error
}

func (e *APIError) Error() string {
	if e.kind != nil {
		return fmt.Sprintf("%s: %s", e.kind, e.Message)
	}
	return e.Message
}

// Unwrap exposes ErrFetchFailed or ErrNotFound when the error came from a read.
func (e *APIError) Unwrap() error { return e.kind }

const maxErrorBody = 512

// readError builds an APIError from a failed response.
func readError(resp *http.Response, kind error) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	return &APIError{Status: resp.StatusCode, Message: errorMessage(resp.StatusCode, body), kind: kind}
}

func errorMessage(status int, body []byte) string {
	if env, err := types.Parse(body); err == nil && env.Message != "" {
		return env.Message
	}
	text := strings.TrimSpace(string(body))
	if text != "" && !strings.HasPrefix(text, "{") && !strings.HasPrefix(text, "<") {
		if len(text) > maxErrorBody {
			text = text[:maxErrorBody]
		}
		return text
	}
	if t := http.StatusText(status); t != "" {
		return fmt.Sprintf("request failed with status %d (%s)", status, t)
	}
	return fmt.Sprintf("request failed with status %d", status)
}
