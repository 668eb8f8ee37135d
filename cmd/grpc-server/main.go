package main

import (
	"net"

	"google.golang.org/grpc"

	"mangapages/internal/analyze"
	"mangapages/internal/grpcserver"
	"mangapages/internal/logging"
	"mangapages/internal/pages"
	"mangapages/pkg/database"
	"mangapages/pkg/grpc/pagepb"
	"mangapages/pkg/utils"
)

func main() {
	srvCfg, err := utils.LoadServerConfig()
	if err != nil {
		logging.New("info").Fatalf("load config: %v", err)
	}
	logger := logging.New(srvCfg.LogLevel)

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logger.Fatalf("db migrate failed: %v", err)
	}

	listener, err := net.Listen("tcp", srvCfg.GRPCAddr)
	if err != nil {
		logger.Fatalf("grpc listen failed: %v", err)
	}

	// Events are not broadcast from here; the hub lives in api-server.
	analyzer := analyze.NewImageAnalyzer(srvCfg.ImagesRoot, logger)
	svc := pages.NewService(pages.NewRepo(db), analyzer, nil, logger)

	grpcServer := grpc.NewServer()
	pagepb.RegisterPageServiceServer(grpcServer, grpcserver.NewServer(svc))

	logger.Infof("gRPC page service listening on %s", srvCfg.GRPCAddr)
	if err := grpcServer.Serve(listener); err != nil {
		logger.Fatalf("grpc server stopped: %v", err)
	}
}
