package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"mangapages/internal/editor"
	"mangapages/internal/logging"
	"mangapages/internal/pages"
	"mangapages/pkg/database"
)

func main() {
	in := flag.String("in", "data/pages", "directory of exported page JSON files")
	flag.Parse()
	logger := logging.New(os.Getenv("MANGAPAGES_LOG_LEVEL"))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logger.Fatalf("db migrate failed: %v", err)
	}

	svc := pages.NewService(pages.NewRepo(db), nil, nil, logger)
	imported, skipped, err := importPages(ctx, svc, *in, logger)
	if err != nil {
		logger.Fatalf("import failed: %v", err)
	}
	logger.Infof("imported %d pages from %s (%d skipped)", imported, *in, skipped)
}

// importPages saves every export file in dir through the page service, so
// the same validation and box normalization apply. Invalid files are skipped.
func importPages(ctx context.Context, svc *pages.Service, dir string, logger logrus.FieldLogger) (int, int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, 0, fmt.Errorf("read dir: %w", err)
	}

	var imported, skipped int
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") || name == "index.json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return imported, skipped, err
		}
		doc, err := editor.ParseExport(data)
		if err == nil {
			_, err = svc.Save(ctx, doc.ID, doc)
		}
		if err != nil {
			logger.WithError(err).WithField("file", name).Warn("skipped")
			skipped++
			continue
		}
		imported++
	}
	return imported, skipped, nil
}
