package remote

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"mangapages/pkg/grpc/pagepb"
	"mangapages/pkg/models"
)

// GRPCClient calls the gRPC page service.
type GRPCClient struct {
	conn *grpc.ClientConn
	api  pagepb.PageServiceClient
}

func DialGRPC(addr string) (*GRPCClient, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial grpc %s: %w", addr, err)
	}
	return &GRPCClient{conn: conn, api: pagepb.NewPageServiceClient(conn)}, nil
}

// NewGRPCClient wraps an existing connection (used by tests with bufconn).
func NewGRPCClient(cc grpc.ClientConnInterface) *GRPCClient {
	return &GRPCClient{api: pagepb.NewPageServiceClient(cc)}
}

func (c *GRPCClient) Analyze(ctx context.Context, pageID string) (*models.Document, error) {
	resp, err := c.api.AnalyzePage(ctx, &pagepb.AnalyzePageRequest{Id: pageID})
	return unwrap("analyze", resp, err)
}

func (c *GRPCClient) Fetch(ctx context.Context, pageID string) (*models.Document, error) {
	resp, err := c.api.GetPage(ctx, &pagepb.GetPageRequest{Id: pageID})
	return unwrap("fetch", resp, err)
}

func (c *GRPCClient) Save(ctx context.Context, pageID string, doc *models.Document) (*models.Document, error) {
	resp, err := c.api.SavePage(ctx, &pagepb.SavePageRequest{Id: pageID, Document: doc})
	return unwrap("save", resp, err)
}

func (c *GRPCClient) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func unwrap(op string, resp *pagepb.PageResponse, err error) (*models.Document, error) {
	if err != nil {
		st, ok := status.FromError(err)
		if !ok {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if st.Code() == codes.NotFound {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, &StatusError{Op: op, Code: int(st.Code()), Status: st.Code().String(), Message: st.Message()}
	}
	if resp.GetDocument() == nil {
		return nil, fmt.Errorf("%s: %w", op, errors.New("empty response"))
	}
	return resp.GetDocument(), nil
}
