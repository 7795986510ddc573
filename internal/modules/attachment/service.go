package attachment

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/dennik-app/core/internal/config"
	"github.com/dennik-app/core/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrEntryNotFound means the target entry does not exist.
	ErrEntryNotFound = errors.New("entry not found")
	// ErrNoFile means the multipart request carried no usable file.
	ErrNoFile = errors.New("no file provided")
	// ErrEmptyFile means the uploaded file had zero bytes.
	ErrEmptyFile = errors.New("uploaded file is empty")
	// ErrFileTooLarge means the uploaded file exceeds the size limit.
	ErrFileTooLarge = errors.New("uploaded file exceeds the size limit")
)

// DisallowedExtensionError rejects a file whose extension is not in the
// allow-list.
type DisallowedExtensionError struct {
	Ext string
}

func (e *DisallowedExtensionError) Error() string {
	if e.Ext == "" {
		return "file has no extension"
	}
	return fmt.Sprintf("file type .%s is not allowed", e.Ext)
}

type Service struct {
	db        *gorm.DB
	uploadDir string
	maxBytes  int64
	allowed   map[string]struct{}
}

func NewService(db *gorm.DB, cfg *config.AppConfig) *Service {
	allowed := make(map[string]struct{}, len(cfg.Attachments.AllowedExtensions))
	for _, ext := range cfg.Attachments.AllowedExtensions {
		allowed[strings.ToLower(ext)] = struct{}{}
	}
	return &Service{
		db:        db,
		uploadDir: cfg.UploadDir(),
		maxBytes:  cfg.MaxUploadBytes(),
		allowed:   allowed,
	}
}

// UploadDir returns the attachment storage directory.
func (s *Service) UploadDir() string { return s.uploadDir }

func (s *Service) GetByID(id string) (*models.AttachmentModel, error) {
	var att models.AttachmentModel
	if err := s.db.First(&att, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &att, nil
}

// FilePath resolves the on-disk location of an attachment.
func (s *Service) FilePath(att *models.AttachmentModel) string {
	return filepath.Join(s.uploadDir, att.FileName)
}

// Upload validates and stores one file for the given entry. Gates run in
// order: entry existence, file presence, extension, disk write, size limit.
// Nothing is written to disk until the extension passes, and no database row
// exists while the file is in doubt.
func (s *Service) Upload(entryID string, fh *multipart.FileHeader) (*models.AttachmentModel, error) {
	var entry models.EntryModel
	if err := s.db.First(&entry, "id = ?", entryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}

	if fh == nil || strings.TrimSpace(fh.Filename) == "" {
		return nil, ErrNoFile
	}

	ext := fileExt(fh.Filename)
	if _, ok := s.allowed[ext]; !ok {
		return nil, &DisallowedExtensionError{Ext: ext}
	}

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	fileName := buildFileName(ext)
	dst := filepath.Join(s.uploadDir, fileName)

	size, err := s.writeFile(fh, dst)
	if err != nil {
		_ = os.Remove(dst)
		return nil, err
	}

	if size == 0 {
		_ = os.Remove(dst)
		return nil, ErrEmptyFile
	}
	if size > s.maxBytes {
		_ = os.Remove(dst)
		return nil, ErrFileTooLarge
	}

	// Best-effort: a read-only deployment dir should not fail the upload.
	_ = os.Chmod(dst, 0o644)

	att := models.AttachmentModel{
		EntryID:      entry.ID,
		FileName:     fileName,
		OriginalName: sanitizeOriginalName(fh.Filename),
		FileSize:     size,
		MimeType:     detectContentType(fh.Filename, fh.Header.Get("Content-Type")),
	}
	if err := s.db.Create(&att).Error; err != nil {
		_ = os.Remove(dst)
		return nil, err
	}
	return &att, nil
}

// Delete removes the file if present and always attempts to remove the row.
func (s *Service) Delete(id string) error {
	att, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if att == nil {
		return gorm.ErrRecordNotFound
	}

	// A missing or stuck file does not block row removal.
	_ = os.Remove(s.FilePath(att))
	return s.db.Delete(&models.AttachmentModel{}, "id = ?", id).Error
}

func (s *Service) writeFile(fh *multipart.FileHeader, dst string) (int64, error) {
	src, err := fh.Open()
	if err != nil {
		return 0, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return 0, fmt.Errorf("create file: %w", err)
	}

	// Copy one byte past the limit so the size gate can tell "at the limit"
	// from "over it" without buffering the whole body.
	size, err := io.Copy(out, io.LimitReader(src, s.maxBytes+1))
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return size, fmt.Errorf("write file: %w", err)
	}
	return size, nil
}
