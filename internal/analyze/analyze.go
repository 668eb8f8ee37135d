// Package analyze regenerates a page document from its image on the server.
//
// No recognition happens here: the image is probed for its dimensions and,
// when an hOCR sidecar sits next to it, its paragraphs become free_text
// elements flagged for review.
package analyze

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"mangapages/internal/logging"
	"mangapages/pkg/geometry"
	"mangapages/pkg/models"
)

// Engine is recorded in Meta.Engine of every analyzed document.
const Engine = "mangapages-probe"

var ErrImageNotFound = errors.New("page image not found")

type Analyzer interface {
	Analyze(ctx context.Context, pageID string, img models.Image) (*models.Document, error)
}

// ImageAnalyzer resolves image sources against a local directory.
type ImageAnalyzer struct {
	Root  string
	Now   func() time.Time
	NewID func() string

	log *logrus.Entry
}

func NewImageAnalyzer(root string, logger logrus.FieldLogger) *ImageAnalyzer {
	return &ImageAnalyzer{
		Root:  root,
		Now:   time.Now,
		NewID: uuid.NewString,
		log:   logging.Component(logger, "analyze"),
	}
}

func (a *ImageAnalyzer) Analyze(ctx context.Context, pageID string, img models.Image) (*models.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := a.resolve(img.Src)
	if err != nil {
		return nil, err
	}

	w, h, err := probe(path)
	if err != nil {
		return nil, err
	}

	doc := &models.Document{
		ID:       pageID,
		Keywords: []string{},
		Image:    models.Image{Src: img.Src, NaturalWidth: w, NaturalHeight: h},
		Elements: []models.Element{},
		Meta: models.Meta{
			Version:   "1",
			Engine:    Engine,
			CreatedAt: a.Now().UTC().Format(time.RFC3339),
		},
	}

	sidecar := strings.TrimSuffix(path, filepath.Ext(path)) + ".hocr"
	data, err := os.ReadFile(sidecar)
	switch {
	case errors.Is(err, os.ErrNotExist):
		a.log.WithField("page", pageID).Debug("no hocr sidecar")
		return doc, nil
	case err != nil:
		return nil, fmt.Errorf("read hocr: %w", err)
	}

	blocks, err := ParseBlocks(data)
	if err != nil {
		return nil, err
	}
	for i, b := range blocks {
		box := geometry.Normalize(geometry.FromPixels(b.Rect, w, h))
		el := models.Element{
			ID:           a.NewID(),
			Type:         models.ElementFreeText,
			ReadingOrder: models.IntPtr(i + 1),
			Text:         models.Text{Raw: b.Text},
			Geometry:     models.Geometry{BBoxPct: box},
			Flags:        models.Flags{NeedsReview: models.BoolPtr(true)},
		}
		if b.Confidence >= 0 {
			c := b.Confidence
			el.Confidence = &c
		}
		doc.Elements = append(doc.Elements, el)
	}
	a.log.WithFields(logrus.Fields{"page": pageID, "elements": len(doc.Elements)}).Info("analyzed")
	return doc, nil
}

// resolve maps an image src (a bare path or a URL) to a file under Root.
// The path is cleaned as if rooted so it cannot escape Root.
func (a *ImageAnalyzer) resolve(src string) (string, error) {
	if strings.TrimSpace(src) == "" {
		return "", fmt.Errorf("%w: empty src", ErrImageNotFound)
	}
	p := src
	if u, err := url.Parse(src); err == nil && u.Scheme != "" {
		p = u.Path
	}
	full := filepath.Join(a.Root, filepath.FromSlash(cleanRel(p)))
	if _, err := os.Stat(full); err != nil {
		return "", fmt.Errorf("%w: %s", ErrImageNotFound, src)
	}
	return full, nil
}

func cleanRel(p string) string {
	return strings.TrimPrefix(filepath.ToSlash(filepath.Clean("/"+p)), "/")
}

func probe(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("decode image config: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, 0, fmt.Errorf("image %s (%s) has no size", filepath.Base(path), format)
	}
	return cfg.Width, cfg.Height, nil
}
