package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"
	defaultPort       = 5000
	defaultEnv        = "development"
	defaultDBFile     = "dennik.db"

	// DefaultMaxUploadSizeMB bounds attachment uploads (16 MiB).
	DefaultMaxUploadSizeMB = 16
)

// DefaultAllowedExtensions is the attachment extension allow-list: documents,
// images, archives and email formats.
var DefaultAllowedExtensions = []string{
	"pdf", "png", "jpg", "jpeg", "gif", "txt",
	"doc", "docx", "xls", "xlsx", "zip", "eml", "msg",
}

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int                `yaml:"port"`
	Env            string             `yaml:"env"` // "development" | "production"
	Database       DatabaseConfig     `yaml:"database"`
	Paths          RuntimePathsConfig `yaml:"paths"`
	AllowedOrigins []string           `yaml:"allowed_origins"`
	Attachments    AttachmentsConfig  `yaml:"attachments"`
	S3             S3Options          `yaml:"s3"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RuntimePathsConfig struct {
	Uploads string `yaml:"uploads"`
	Exports string `yaml:"exports"`
}

// AttachmentsConfig makes the upload directory and allow-list explicit
// configuration instead of package-level state.
type AttachmentsConfig struct {
	MaxSizeMB         int      `yaml:"max_size_mb"`
	AllowedExtensions []string `yaml:"allowed_extensions"`
}

// S3Options configures the optional archive upload target. Empty means
// the upload endpoint is disabled.
type S3Options struct {
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	CustomDomain    string `yaml:"custom_domain"`
	PathStyleAccess bool   `yaml:"path_style_access"`
	Path            string `yaml:"path"`
}

// Load reads the YAML config at configPath. A missing file is not an error:
// the app is a local tool and runs on defaults.
func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		path = DefaultConfigPath
	}

	cfg := defaultAppConfig()

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config file %q: %w", path, err)
	}

	normalizeAppConfig(&cfg)
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d in %q, expected 1-65535", cfg.Port, path)
	}
	if cfg.Attachments.MaxSizeMB < 1 {
		return nil, fmt.Errorf("invalid attachments.max_size_mb %d in %q, expected >= 1", cfg.Attachments.MaxSizeMB, path)
	}

	return &cfg, nil
}

func defaultAppConfig() AppConfig {
	return AppConfig{
		Port: defaultPort,
		Env:  defaultEnv,
		Attachments: AttachmentsConfig{
			MaxSizeMB:         DefaultMaxUploadSizeMB,
			AllowedExtensions: append([]string(nil), DefaultAllowedExtensions...),
		},
	}
}

func normalizeAppConfig(cfg *AppConfig) {
	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))
	if cfg.Env == "" {
		cfg.Env = defaultEnv
	}
	if cfg.Attachments.MaxSizeMB == 0 {
		cfg.Attachments.MaxSizeMB = DefaultMaxUploadSizeMB
	}
	if len(cfg.Attachments.AllowedExtensions) == 0 {
		cfg.Attachments.AllowedExtensions = append([]string(nil), DefaultAllowedExtensions...)
	} else {
		exts := make([]string, 0, len(cfg.Attachments.AllowedExtensions))
		for _, ext := range cfg.Attachments.AllowedExtensions {
			ext = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
			if ext != "" {
				exts = append(exts, ext)
			}
		}
		cfg.Attachments.AllowedExtensions = exts
	}

	origins := make([]string, 0, len(cfg.AllowedOrigins))
	for _, origin := range cfg.AllowedOrigins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	cfg.AllowedOrigins = origins
}

func (c *AppConfig) IsDev() bool {
	return strings.EqualFold(c.Env, defaultEnv)
}

// DatabasePath resolves the SQLite database file location.
func (c *AppConfig) DatabasePath() string {
	return resolvePath(c.Database.Path, defaultDBFile)
}

// UploadDir resolves the attachment storage directory.
func (c *AppConfig) UploadDir() string {
	return resolvePath(c.Paths.Uploads, "uploads")
}

// ExportDir resolves the archive staging directory.
func (c *AppConfig) ExportDir() string {
	return resolvePath(c.Paths.Exports, "exports")
}

// resolvePath turns a configured path into an absolute one. The app ships as
// a single binary that keeps its data next to itself, so relative and empty
// paths anchor at the executable directory; an empty path falls back to the
// given subdirectory name.
func resolvePath(raw, defaultSubdir string) string {
	p := strings.TrimSpace(raw)
	if p == "" {
		p = defaultSubdir
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(runtimeRoot(), p)
}

func runtimeRoot() string {
	if exe, err := os.Executable(); err == nil && exe != "" {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		return filepath.Dir(exe)
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

// MaxUploadBytes is the attachment size limit in bytes.
func (c *AppConfig) MaxUploadBytes() int64 {
	return int64(c.Attachments.MaxSizeMB) * 1024 * 1024
}

// S3Enabled reports whether the archive S3 upload target is configured.
func (c *AppConfig) S3Enabled() bool {
	return strings.TrimSpace(c.S3.Bucket) != "" &&
		strings.TrimSpace(c.S3.Region) != "" &&
		strings.TrimSpace(c.S3.AccessKeyID) != "" &&
		strings.TrimSpace(c.S3.SecretAccessKey) != ""
}
