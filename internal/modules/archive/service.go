package archive

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/dennik-app/core/internal/config"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrS3NotConfigured means the archive upload target is missing from config.
var ErrS3NotConfigured = errors.New("s3 upload target is not configured")

// Artifact is a finished export staged in a temporary location. Cleanup
// removes the staging directory and must always be called.
type Artifact struct {
	Path     string
	Filename string
	Cleanup  func()
}

type Service struct {
	db     *gorm.DB
	cfg    *config.AppConfig
	logger *zap.Logger
}

func NewService(db *gorm.DB, cfg *config.AppConfig, logger *zap.Logger) *Service {
	return &Service{db: db, cfg: cfg, logger: logger}
}

// Export snapshots the database file and the whole upload directory into a
// dated ZIP in a temp dir. Concurrent writes make this best-effort, not a
// point-in-time snapshot.
func (s *Service) Export() (*Artifact, error) {
	root := s.cfg.ExportDir()
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	staging, err := os.MkdirTemp(root, "export-*")
	if err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}
	cleanup := func() { _ = os.RemoveAll(staging) }

	filename := fmt.Sprintf("dennik_zaloha_%s.zip", time.Now().Format("20060102"))
	zipPath := filepath.Join(staging, filename)

	if err := s.buildZip(zipPath, staging); err != nil {
		cleanup()
		return nil, err
	}

	return &Artifact{Path: zipPath, Filename: filename, Cleanup: cleanup}, nil
}

// UploadToS3 exports an archive and PUTs it to the configured bucket,
// returning the object URL.
func (s *Service) UploadToS3(ctx context.Context) (string, error) {
	if !s.cfg.S3Enabled() {
		return "", ErrS3NotConfigured
	}
	uploader, err := newS3Uploader(s.cfg.S3)
	if err != nil {
		return "", err
	}

	artifact, err := s.Export()
	if err != nil {
		return "", err
	}
	defer artifact.Cleanup()

	payload, err := os.ReadFile(artifact.Path)
	if err != nil {
		return "", fmt.Errorf("read archive: %w", err)
	}

	key := normalizeObjectKey(s.cfg.S3.Path + "/" + artifact.Filename)
	url, err := uploader.Upload(ctx, key, payload, "application/zip")
	if err != nil {
		return "", err
	}

	s.logger.Info("archive uploaded",
		zap.String("key", key),
		zap.Int("size", len(payload)),
	)
	return url, nil
}

func (s *Service) buildZip(zipPath, staging string) error {
	dbCopy := filepath.Join(staging, "dennik.db")
	if err := s.snapshotDatabase(dbCopy); err != nil {
		return err
	}

	out, err := os.Create(zipPath)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	defer out.Close()

	w := zip.NewWriter(out)

	if err := addFileToZip(w, dbCopy, "dennik.db"); err != nil {
		w.Close()
		return err
	}

	uploadDir := s.cfg.UploadDir()
	if _, err := os.Stat(uploadDir); err == nil {
		err = filepath.WalkDir(uploadDir, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return err
			}
			rel, err := filepath.Rel(uploadDir, path)
			if err != nil {
				return err
			}
			return addFileToZip(w, path, filepath.ToSlash(filepath.Join("uploads", rel)))
		})
		if err != nil {
			w.Close()
			return err
		}
	} else if !os.IsNotExist(err) {
		w.Close()
		return err
	}

	return w.Close()
}

// snapshotDatabase copies the SQLite file via VACUUM INTO, which produces a
// consistent copy even with the connection open. Falls back to a raw file
// copy when the statement is unavailable.
func (s *Service) snapshotDatabase(dst string) error {
	if err := s.db.Exec("VACUUM INTO ?", dst).Error; err == nil {
		return nil
	} else {
		s.logger.Warn("vacuum snapshot failed, copying raw db file", zap.Error(err))
	}

	src, err := os.Open(s.cfg.DatabasePath())
	if err != nil {
		return fmt.Errorf("open database file: %w", err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create database copy: %w", err)
	}
	defer out.Close()

	_, err = io.Copy(out, src)
	return err
}

func addFileToZip(w *zip.Writer, path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	entry, err := w.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(entry, f)
	return err
}
