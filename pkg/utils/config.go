package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// FileConfig is the optional YAML file (MANGAPAGES_CONFIG). Every field is
// optional; env vars still win over it.
type FileConfig struct {
	Server struct {
		HTTPAddr   string `yaml:"http_addr"`
		TCPAddr    string `yaml:"tcp_addr"`
		GRPCAddr   string `yaml:"grpc_addr"`
		ImagesRoot string `yaml:"images_root"`
	} `yaml:"server"`
	Editor struct {
		API            string `yaml:"api"`
		Transport      string `yaml:"transport"`
		GRPCAddr       string `yaml:"grpc_addr"`
		DraftPath      string `yaml:"draft_path"`
		DraftNamespace string `yaml:"draft_namespace"`
		DebounceMS     int    `yaml:"debounce_ms"`
		NoticeSeconds  int    `yaml:"notice_seconds"`
	} `yaml:"editor"`
	LogLevel string `yaml:"log_level"`
}

type ServerConfig struct {
	HTTPAddr   string
	TCPAddr    string
	GRPCAddr   string
	ImagesRoot string
	LogLevel   string
}

type EditorConfig struct {
	API            string
	Transport      string // "http" or "grpc"
	GRPCAddr       string
	DraftPath      string
	DraftNamespace string
	Debounce       time.Duration
	NoticeTTL      time.Duration
	LogLevel       string
}

// LoadFile reads a YAML config file. A missing file is not an error.
func LoadFile(path string) (FileConfig, error) {
	var fc FileConfig
	if path == "" {
		return fc, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fc, nil
		}
		return fc, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return fc, fmt.Errorf("parse config %s: %w", path, err)
	}
	return fc, nil
}

func LoadServerConfig() (ServerConfig, error) {
	fc, err := LoadFile(os.Getenv("MANGAPAGES_CONFIG"))
	if err != nil {
		return ServerConfig{}, err
	}
	return ServerConfig{
		HTTPAddr:   pick("MANGAPAGES_HTTP_ADDR", fc.Server.HTTPAddr, ":8080"),
		TCPAddr:    pick("MANGAPAGES_TCP_ADDR", fc.Server.TCPAddr, ":7070"),
		GRPCAddr:   pick("MANGAPAGES_GRPC_ADDR", fc.Server.GRPCAddr, ":9090"),
		ImagesRoot: pick("MANGAPAGES_IMAGES_ROOT", fc.Server.ImagesRoot, "data/images"),
		LogLevel:   pick("MANGAPAGES_LOG_LEVEL", fc.LogLevel, "info"),
	}, nil
}

func LoadEditorConfig() (EditorConfig, error) {
	fc, err := LoadFile(os.Getenv("MANGAPAGES_CONFIG"))
	if err != nil {
		return EditorConfig{}, err
	}

	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = "."
	}

	return EditorConfig{
		API:            pick("MANGAPAGES_API", fc.Editor.API, "http://localhost:8080"),
		Transport:      pick("MANGAPAGES_TRANSPORT", fc.Editor.Transport, "http"),
		GRPCAddr:       pick("MANGAPAGES_GRPC_ADDR", fc.Editor.GRPCAddr, "localhost:9090"),
		DraftPath:      pick("MANGAPAGES_DRAFT_PATH", fc.Editor.DraftPath, filepath.Join(home, ".mangapages", "drafts.db")),
		DraftNamespace: pick("MANGAPAGES_DRAFT_NAMESPACE", fc.Editor.DraftNamespace, "mangapages"),
		Debounce:       millis("MANGAPAGES_DRAFT_DEBOUNCE_MS", fc.Editor.DebounceMS, 450),
		NoticeTTL:      time.Duration(intOr(os.Getenv("MANGAPAGES_NOTICE_SECONDS"), orInt(fc.Editor.NoticeSeconds, 4))) * time.Second,
		LogLevel:       pick("MANGAPAGES_LOG_LEVEL", fc.LogLevel, "warn"),
	}, nil
}

// pick returns the env value, else the file value, else def.
func pick(env, file, def string) string {
	if v := os.Getenv(env); v != "" {
		return v
	}
	if file != "" {
		return file
	}
	return def
}

func millis(env string, file, def int) time.Duration {
	return time.Duration(intOr(os.Getenv(env), orInt(file, def))) * time.Millisecond
}

func orInt(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

// intOr parses s; if parse fails or s is not positive, def is used.
func intOr(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
