package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"mangapages/internal/editor"
	"mangapages/internal/logging"
	"mangapages/internal/pages"
	"mangapages/pkg/database"
)

func main() {
	var (
		outDir = flag.String("out", "data/pages", "output directory")
		limit  = flag.Int("limit", 200, "how many pages to export")
		query  = flag.String("q", "", "only pages whose id or title contains this")
	)
	flag.Parse()
	logger := logging.New(os.Getenv("MANGAPAGES_LOG_LEVEL"))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logger.Fatalf("db migrate failed: %v", err)
	}

	n, err := exportPages(ctx, pages.NewRepo(db), *outDir, pages.ListQuery{Q: *query, Limit: *limit})
	if err != nil {
		logger.Fatalf("export failed: %v", err)
	}
	logger.Infof("exported %d pages to %s", n, *outDir)
}

// exportPages writes one <id>.json per page plus an index.json listing them.
func exportPages(ctx context.Context, repo *pages.Repo, dir string, q pages.ListQuery) (int, error) {
	items, err := repo.List(ctx, q)
	if err != nil {
		return 0, err
	}

	for _, it := range items {
		doc, err := repo.Get(ctx, it.ID)
		if err != nil {
			return 0, err
		}
		if doc == nil {
			continue // deleted since List
		}
		if _, err := editor.WriteExport(dir, doc); err != nil {
			return 0, fmt.Errorf("export %s: %w", it.ID, err)
		}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("mkdir: %w", err)
	}
	b, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("marshal index: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "index.json"), b, 0o644); err != nil {
		return 0, fmt.Errorf("write index: %w", err)
	}
	return len(items), nil
}
