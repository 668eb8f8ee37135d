package grpcserver

import (
	"context"
	"errors"
	"net"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"mangapages/internal/logging"
	"mangapages/internal/pages"
	"mangapages/internal/remote"
	"mangapages/pkg/database"
	"mangapages/pkg/grpc/pagepb"
	"mangapages/pkg/models"
)

func startServer(t *testing.T) *remote.GRPCClient {
	t.Helper()
	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "pages.db")})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatal(err)
	}
	svc := pages.NewService(pages.NewRepo(db), nil, nil, logging.Discard())

	lis := bufconn.Listen(1 << 20)
	gs := grpc.NewServer()
	pagepb.RegisterPageServiceServer(gs, NewServer(svc))
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	return remote.NewGRPCClient(conn)
}

func TestPageServiceOverGRPC(t *testing.T) {
	ctx := context.Background()
	client := startServer(t)

	if _, err := client.Fetch(ctx, "p1"); !errors.Is(err, remote.ErrNotFound) {
		t.Fatalf("fetch missing = %v, want ErrNotFound", err)
	}

	doc := &models.Document{
		ID:       "p1",
		Keywords: []string{"night"},
		Image:    models.Image{Src: "p1.png", NaturalWidth: 600, NaturalHeight: 900},
		Elements: []models.Element{{
			ID:       "e1",
			Type:     models.ElementSFX,
			Text:     models.Text{Raw: "KRAK"},
			Geometry: models.Geometry{BBoxPct: models.BBox{X: 0.2, Y: 0.2, W: 0.3, H: 0.3}},
		}},
		Meta: models.Meta{Version: "1"},
	}
	saved, err := client.Save(ctx, "p1", doc)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(doc, saved); d != "" {
		t.Errorf("save echo (-want +got):\n%s", d)
	}

	got, err := client.Fetch(ctx, "p1")
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(doc, got); d != "" {
		t.Errorf("fetch (-want +got):\n%s", d)
	}

	_, err = client.Save(ctx, "p2", doc)
	var se *remote.StatusError
	if !errors.As(err, &se) || se.Status != "InvalidArgument" {
		t.Errorf("id mismatch = %v", err)
	}

	// no analyzer configured
	_, err = client.Analyze(ctx, "p1")
	if !errors.As(err, &se) || se.Status != "Internal" {
		t.Errorf("analyze without analyzer = %v", err)
	}
}
