// Package pages is the server side of the editor: page storage, the gin
// handler and the operations shared with the gRPC service.
package pages

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"mangapages/internal/analyze"
	"mangapages/internal/logging"
	synchub "mangapages/internal/sync"
	"mangapages/pkg/geometry"
	"mangapages/pkg/models"
)

var (
	ErrNotFound   = errors.New("page not found")
	ErrIDMismatch = errors.New("document id does not match path")
	ErrInvalid    = errors.New("invalid document")
)

// Service implements get/save/analyze on top of the repo. Successful writes
// are published on the hub.
type Service struct {
	Repo     *Repo
	Analyzer analyze.Analyzer
	Events   synchub.Publisher

	log *logrus.Entry
}

func NewService(repo *Repo, analyzer analyze.Analyzer, events synchub.Publisher, logger logrus.FieldLogger) *Service {
	return &Service{Repo: repo, Analyzer: analyzer, Events: events, log: logging.Component(logger, "pages")}
}

func (s *Service) Get(ctx context.Context, id string) (*models.Document, error) {
	doc, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrNotFound
	}
	return doc, nil
}

// Save stores doc under id. An empty document id takes the path id; element
// boxes are normalized before validation.
func (s *Service) Save(ctx context.Context, id string, doc *models.Document) (*models.Document, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: empty body", ErrInvalid)
	}
	doc = doc.Clone()
	if doc.ID == "" {
		doc.ID = id
	}
	if doc.ID != id {
		return nil, ErrIDMismatch
	}
	if doc.Keywords == nil {
		doc.Keywords = []string{}
	}
	if doc.Elements == nil {
		doc.Elements = []models.Element{}
	}
	for i := range doc.Elements {
		doc.Elements[i].Geometry.BBoxPct = geometry.Normalize(doc.Elements[i].Geometry.BBoxPct)
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	if err := s.Repo.Put(ctx, doc); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"page": id, "elements": len(doc.Elements)}).Info("saved")
	s.publish(synchub.EventPageSaved, doc)
	return doc, nil
}

// Analyze regenerates the stored page from its image. Page number, title,
// description and keywords of the stored page are carried over.
func (s *Service) Analyze(ctx context.Context, id string) (*models.Document, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Analyzer == nil {
		return nil, errors.New("no analyzer configured")
	}

	doc, err := s.Analyzer.Analyze(ctx, id, current.Image)
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", id, err)
	}
	doc.ID = id
	doc.PageNumber = current.PageNumber
	doc.Title = current.Title
	doc.Description = current.Description
	doc.Keywords = current.Keywords

	if err := s.Repo.Put(ctx, doc); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"page": id, "elements": len(doc.Elements)}).Info("analyzed")
	s.publish(synchub.EventPageAnalyzed, doc)
	return doc, nil
}

func (s *Service) publish(kind string, doc *models.Document) {
	if s.Events == nil {
		return
	}
	s.Events.Publish(synchub.NewPageEvent(kind, doc.ID, len(doc.Elements)))
}
