package draft

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"mangapages/internal/logging"
	"mangapages/pkg/database"
	"mangapages/pkg/models"
)

// SQLiteStore persists drafts as JSON values in the drafts table of a local
// sqlite file.
type SQLiteStore struct {
	DB        *sql.DB
	Namespace string
	log       *logrus.Entry
}

func NewSQLiteStore(db *sql.DB, namespace string, logger logrus.FieldLogger) *SQLiteStore {
	return &SQLiteStore{DB: db, Namespace: namespace, log: logging.Component(logger, "draft")}
}

// OpenSQLiteStore opens (and migrates) the draft database at path.
func OpenSQLiteStore(path, namespace string, logger logrus.FieldLogger) (*SQLiteStore, error) {
	db, err := database.Open(database.Config{Path: path})
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate drafts: %w", err)
	}
	return NewSQLiteStore(db, namespace, logger), nil
}

func (s *SQLiteStore) Load(ctx context.Context, pageID string) (*models.Document, bool) {
	key := Key(s.Namespace, pageID)

	var value string
	err := s.DB.QueryRowContext(ctx, `SELECT value FROM drafts WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if err != sql.ErrNoRows {
			s.log.WithError(err).WithField("key", key).Debug("draft read failed")
		}
		return nil, false
	}

	var doc models.Document
	if err := json.Unmarshal([]byte(value), &doc); err != nil {
		s.log.WithError(err).WithField("key", key).Debug("corrupt draft ignored")
		return nil, false
	}
	return &doc, true
}

func (s *SQLiteStore) Save(ctx context.Context, pageID string, doc *models.Document) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}
	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO drafts (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`, Key(s.Namespace, pageID), string(b))
	if err != nil {
		return fmt.Errorf("upsert draft: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context, pageID string) error {
	if _, err := s.DB.ExecContext(ctx, `DELETE FROM drafts WHERE key = ?`, Key(s.Namespace, pageID)); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.DB.Close()
}
