package archive

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dennik-app/core/internal/config"
	"github.com/dennik-app/core/internal/database"
	"github.com/dennik-app/core/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newFixture(t *testing.T) (*Service, *config.AppConfig) {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "dennik.db")

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	cfg := &config.AppConfig{
		Database: config.DatabaseConfig{Path: dbPath},
		Paths: config.RuntimePathsConfig{
			Uploads: filepath.Join(dir, "uploads"),
			Exports: filepath.Join(dir, "exports"),
		},
	}
	return NewService(db, cfg, zap.NewNop()), cfg
}

func zipNames(t *testing.T, path string) []string {
	t.Helper()
	r, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer r.Close()

	names := make([]string, 0, len(r.File))
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	return names
}

func TestExportContainsDatabaseAndUploads(t *testing.T) {
	svc, cfg := newFixture(t)

	require.NoError(t, svc.db.Create(&models.CategoryModel{Name: "Home", Active: true}).Error)
	require.NoError(t, os.MkdirAll(cfg.UploadDir(), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.UploadDir(), "abc.pdf"), []byte("%PDF"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.UploadDir(), "def.txt"), []byte("note"), 0o644))

	artifact, err := svc.Export()
	require.NoError(t, err)
	defer artifact.Cleanup()

	assert.Regexp(t, `^dennik_zaloha_\d{8}\.zip$`, artifact.Filename)
	names := zipNames(t, artifact.Path)
	assert.ElementsMatch(t, []string{"dennik.db", "uploads/abc.pdf", "uploads/def.txt"}, names)
}

func TestExportWithoutUploadDir(t *testing.T) {
	svc, _ := newFixture(t)

	artifact, err := svc.Export()
	require.NoError(t, err)
	defer artifact.Cleanup()

	assert.Equal(t, []string{"dennik.db"}, zipNames(t, artifact.Path))
}

func TestExportCleanupRemovesStaging(t *testing.T) {
	svc, _ := newFixture(t)

	artifact, err := svc.Export()
	require.NoError(t, err)

	artifact.Cleanup()
	_, err = os.Stat(artifact.Path)
	assert.True(t, os.IsNotExist(err))
}

func TestUploadToS3RequiresConfig(t *testing.T) {
	svc, _ := newFixture(t)
	_, err := svc.UploadToS3(context.Background())
	assert.ErrorIs(t, err, ErrS3NotConfigured)
}

func TestNormalizeObjectKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"backups/dennik.zip", "backups/dennik.zip"},
		{"/backups//dennik.zip", "backups/dennik.zip"},
		{"backups\\dennik.zip", "backups/dennik.zip"},
		{"  /a/b  ", "a/b"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeObjectKey(tt.in), tt.in)
	}
}

func TestJoinURLPath(t *testing.T) {
	assert.Equal(t, "/bucket/key", joinURLPath("", "bucket", "key"))
	assert.Equal(t, "/base/bucket/a/b", joinURLPath("/base/", "bucket", "a//b"))
	assert.Equal(t, "/", joinURLPath("", ""))
}
