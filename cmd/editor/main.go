package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"mangapages/internal/draft"
	"mangapages/internal/editor"
	"mangapages/internal/logging"
	"mangapages/internal/remote"
	"mangapages/pkg/utils"
)

func main() {
	cfg, err := utils.LoadEditorConfig()
	if err != nil {
		logging.New("info").Fatalf("load config: %v", err)
	}

	global := flag.NewFlagSet("mangapages-editor", flag.ExitOnError)
	page := global.String("page", "", "page id to edit (required)")
	baseURL := global.String("api", cfg.API, "page service base URL")
	transport := global.String("transport", cfg.Transport, "remote transport: http or grpc")
	grpcAddr := global.String("grpc", cfg.GRPCAddr, "gRPC page service address")
	draftPath := global.String("drafts", cfg.DraftPath, "local draft database")
	namespace := global.String("ns", cfg.DraftNamespace, "draft key namespace")
	exportDir := global.String("export-dir", ".", "directory for export")
	zoom := global.Float64("zoom", 1, "display scale used by move/resize")
	watch := global.Bool("watch", false, "print server events for this page")
	level := global.String("log-level", cfg.LogLevel, "log level")
	if err := global.Parse(os.Args[1:]); err != nil {
		logging.New("info").Fatalf("parse flags: %v", err)
	}
	if *page == "" {
		printUsage()
		os.Exit(1)
	}
	logger := logging.New(*level)

	drafts, err := draft.OpenSQLiteStore(*draftPath, *namespace, logger)
	if err != nil {
		logger.Fatalf("open drafts: %v", err)
	}
	defer drafts.Close()

	var rc remote.Client
	switch *transport {
	case "grpc":
		gc, err := remote.DialGRPC(*grpcAddr)
		if err != nil {
			logger.Fatalf("%v", err)
		}
		defer gc.Close()
		rc = gc
	default:
		rc = remote.NewHTTPClient(*baseURL)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctrl := editor.NewController(editor.Options{
		PageID:            *page,
		Drafts:            drafts,
		Remote:            rc,
		Debounce:          cfg.Debounce,
		NoticeTTL:         cfg.NoticeTTL,
		Logger:            logger,
		BackgroundRefresh: true,
	})
	defer ctrl.Close()

	s := newSession(ctrl, os.Stdout, *exportDir, *zoom)
	ctrl.Mount(ctx)

	if *watch {
		go func() {
			if err := watchPage(ctx, *baseURL, *page, os.Stdout); err != nil && ctx.Err() == nil {
				logger.WithError(err).Warn("watch stopped")
			}
		}()
	}

	// one-shot: remaining args are a single command
	if args := global.Args(); len(args) > 0 {
		ctrl.WaitRefresh()
		if _, err := s.Exec(ctx, strings.Join(args, " ")); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			ctrl.Close()
			os.Exit(1)
		}
		return
	}

	s.Exec(ctx, "show")
	in := bufio.NewScanner(os.Stdin)
	for {
		fmt.Printf("%s> ", *page)
		if !in.Scan() {
			fmt.Println()
			return
		}
		quit, err := s.Exec(ctx, in.Text())
		if err != nil {
			fmt.Println("error:", err)
		}
		if quit || ctx.Err() != nil {
			return
		}
	}
}

func printUsage() {
	fmt.Println("mangapages-editor -page <id> [flags] [command]")
	fmt.Println("without a command an interactive prompt starts; type help for commands")
}
