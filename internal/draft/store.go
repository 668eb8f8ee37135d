// Package draft keeps the editor's local copy of a page between sessions.
//
// Drafts are a best-effort cache, not the system of record: a corrupt or
// unreadable draft is reported as absent and write failures are only logged.
package draft

import (
	"context"

	"mangapages/pkg/models"
)

const DefaultNamespace = "mangapages"

// Store is the local draft contract used by the editor controller.
type Store interface {
	Load(ctx context.Context, pageID string) (*models.Document, bool)
	Save(ctx context.Context, pageID string, doc *models.Document) error
	Clear(ctx context.Context, pageID string) error
}

// Key derives the storage key for a page, e.g. "mangapages:page:ch1-p03".
func Key(namespace, pageID string) string {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return namespace + ":page:" + pageID
}
