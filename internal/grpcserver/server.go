package grpcserver

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"mangapages/internal/analyze"
	"mangapages/internal/pages"
	"mangapages/pkg/grpc/pagepb"
)

type Server struct {
	pagepb.UnimplementedPageServiceServer
	Pages *pages.Service
}

func NewServer(svc *pages.Service) *Server {
	return &Server{Pages: svc}
}

func (s *Server) GetPage(ctx context.Context, req *pagepb.GetPageRequest) (*pagepb.PageResponse, error) {
	id := strings.TrimSpace(req.GetId())
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "id required")
	}
	doc, err := s.Pages.Get(ctx, id)
	if err != nil {
		return nil, toStatus(err, "get failed")
	}
	return &pagepb.PageResponse{Document: doc}, nil
}

func (s *Server) SavePage(ctx context.Context, req *pagepb.SavePageRequest) (*pagepb.PageResponse, error) {
	id := strings.TrimSpace(req.GetId())
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "id required")
	}
	if req.GetDocument() == nil {
		return nil, status.Error(codes.InvalidArgument, "document required")
	}
	doc, err := s.Pages.Save(ctx, id, req.GetDocument())
	if err != nil {
		return nil, toStatus(err, "save failed")
	}
	return &pagepb.PageResponse{Document: doc}, nil
}

func (s *Server) AnalyzePage(ctx context.Context, req *pagepb.AnalyzePageRequest) (*pagepb.PageResponse, error) {
	id := strings.TrimSpace(req.GetId())
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "id required")
	}
	doc, err := s.Pages.Analyze(ctx, id)
	if err != nil {
		return nil, toStatus(err, "analyze failed")
	}
	return &pagepb.PageResponse{Document: doc}, nil
}

func toStatus(err error, fallback string) error {
	switch {
	case errors.Is(err, pages.ErrNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, pages.ErrIDMismatch), errors.Is(err, pages.ErrInvalid):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, analyze.ErrImageNotFound):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	default:
		return status.Error(codes.Internal, fallback)
	}
}
