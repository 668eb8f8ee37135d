// Package remote talks to the page service. It exposes the three document
// operations the editor needs over HTTP or gRPC.
package remote

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mangapages/pkg/models"
)

// Client is the remote document contract. All three calls exchange the full
// document; none of them stream.
type Client interface {
	Analyze(ctx context.Context, pageID string) (*models.Document, error)
	Fetch(ctx context.Context, pageID string) (*models.Document, error)
	Save(ctx context.Context, pageID string, doc *models.Document) (*models.Document, error)
}

// ErrNotFound means the server has no document for the page yet. It is an
// expected outcome for pages that were never analyzed.
var ErrNotFound = errors.New("page not found")

// StatusError is a non-success response from the page service.
type StatusError struct {
	Op      string // analyze, fetch, save
	Code    int    // HTTP status or gRPC code
	Status  string // e.g. "500 Internal Server Error" or "Unavailable"
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Status, e.Message)
}

// Summary turns any client error into a short line fit for a notice.
func Summary(err error) string {
	if err == nil {
		return ""
	}
	var se *StatusError
	switch {
	case errors.As(err, &se):
		return se.Error()
	case errors.Is(err, ErrNotFound):
		return "not found"
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	case errors.Is(err, context.Canceled):
		return "request cancelled"
	}
	msg := err.Error()
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	if len(msg) > 120 {
		msg = msg[:117] + "..."
	}
	return msg
}
