package main

import (
	"flag"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"mangapages/internal/logging"
	"mangapages/pkg/utils"
)

// image-server serves the page images root, so image src values such as
// http://host:9000/ch1/p01.png resolve to the same files the analyzer reads.
func main() {
	srvCfg, err := utils.LoadServerConfig()
	if err != nil {
		logging.New("info").Fatalf("load config: %v", err)
	}
	addr := flag.String("addr", ":9000", "listen address")
	root := flag.String("root", srvCfg.ImagesRoot, "images directory")
	flag.Parse()
	logger := logging.New(srvCfg.LogLevel)

	if st, err := os.Stat(*root); err != nil || !st.IsDir() {
		logger.Fatalf("images root %s is not a directory", *root)
	}

	logger.Infof("image-server serving %s on %s", *root, *addr)
	logger.Fatal(http.ListenAndServe(*addr, imageHandler(*root, logger)))
}

// imageHandler serves image files only; directory listings and hOCR
// sidecars are not exposed.
func imageHandler(root string, logger logrus.FieldLogger) http.Handler {
	files := http.FileServer(http.Dir(root))
	log := logging.Component(logger, "image-server")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch strings.ToLower(filepath.Ext(r.URL.Path)) {
		case ".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp", ".tif", ".tiff":
		default:
			http.NotFound(w, r)
			return
		}
		log.WithField("path", r.URL.Path).Debug("serve")
		files.ServeHTTP(w, r)
	})
}
