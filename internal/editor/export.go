package editor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"

	"mangapages/pkg/models"
)

// Export renders doc as the pretty-printed JSON file format.
func Export(doc *models.Document) ([]byte, error) {
	if doc == nil {
		return nil, ErrNoDocument
	}
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal export: %w", err)
	}
	return append(b, '\n'), nil
}

func ParseExport(data []byte) (*models.Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var doc models.Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse export: %w", err)
	}
	return &doc, nil
}

// ExportFileName is the download name for a page, e.g. "ch1-p03.json".
func ExportFileName(pageID string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", ":", "_")
	return r.Replace(pageID) + ".json"
}

// WriteExport writes the export file into dir and returns its path.
func WriteExport(dir string, doc *models.Document) (string, error) {
	b, err := Export(doc)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, ExportFileName(doc.ID))
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}

// clipboardWrite is swapped out in tests.
var clipboardWrite = clipboard.WriteAll

// CopyToClipboard puts the export JSON on the system clipboard.
func CopyToClipboard(doc *models.Document) error {
	b, err := Export(doc)
	if err != nil {
		return err
	}
	if err := clipboardWrite(string(b)); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	return nil
}
