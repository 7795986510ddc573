package stats

import (
	"testing"

	"github.com/dennik-app/core/internal/database"
	"github.com/dennik-app/core/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func seed(t *testing.T, db *gorm.DB) (home, work models.CategoryModel) {
	t.Helper()
	home = models.CategoryModel{Name: "Home", Icon: "🏠", Color: "#111111", Active: true}
	work = models.CategoryModel{Name: "Work", Icon: "💼", Color: "#222222", Active: true}
	require.NoError(t, db.Create(&home).Error)
	require.NoError(t, db.Create(&work).Error)

	entries := []models.EntryModel{
		{Date: "2024-01-10", Time: "08:00", Title: "a", Content: "c", CategoryID: home.ID, Year: 2024, Month: 1},
		{Date: "2024-01-20", Time: "08:00", Title: "b", Content: "c", CategoryID: home.ID, Year: 2024, Month: 1},
		{Date: "2024-06-05", Time: "08:00", Title: "c", Content: "c", CategoryID: work.ID, Year: 2024, Month: 6},
		{Date: "2023-03-01", Time: "08:00", Title: "d", Content: "c", CategoryID: work.ID, Year: 2023, Month: 3},
	}
	for i := range entries {
		require.NoError(t, db.Create(&entries[i]).Error)
	}
	return home, work
}

func TestOverviewWithoutYear(t *testing.T) {
	db := newTestDB(t)
	seed(t, db)
	svc := NewService(db)

	out, err := svc.Overview(0)
	require.NoError(t, err)

	assert.EqualValues(t, 4, out.TotalEntries)
	assert.EqualValues(t, 4, out.YearEntries)
	assert.Zero(t, out.Year)
	assert.Empty(t, out.ByMonth)

	require.Len(t, out.ByCategory, 2)
	counts := map[string]int64{}
	for _, c := range out.ByCategory {
		counts[c.Name] = c.Count
	}
	assert.EqualValues(t, 2, counts["Home"])
	assert.EqualValues(t, 2, counts["Work"])
}

func TestOverviewWithYear(t *testing.T) {
	db := newTestDB(t)
	seed(t, db)
	svc := NewService(db)

	out, err := svc.Overview(2024)
	require.NoError(t, err)

	assert.EqualValues(t, 4, out.TotalEntries)
	assert.EqualValues(t, 3, out.YearEntries)
	assert.Equal(t, 2024, out.Year)

	counts := map[string]int64{}
	for _, c := range out.ByCategory {
		counts[c.Name] = c.Count
	}
	assert.EqualValues(t, 2, counts["Home"])
	assert.EqualValues(t, 1, counts["Work"])

	require.Len(t, out.ByMonth, 2)
	assert.Equal(t, MonthCount{Month: 1, Count: 2}, out.ByMonth[0])
	assert.Equal(t, MonthCount{Month: 6, Count: 1}, out.ByMonth[1])
}

func TestOverviewCategoryMetadata(t *testing.T) {
	db := newTestDB(t)
	home, _ := seed(t, db)
	svc := NewService(db)

	out, err := svc.Overview(0)
	require.NoError(t, err)

	var found *CategoryCount
	for i := range out.ByCategory {
		if out.ByCategory[i].Name == home.Name {
			found = &out.ByCategory[i]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, "🏠", found.Icon)
	assert.Equal(t, "#111111", found.Color)
}

func TestOverviewEmptyDatabase(t *testing.T) {
	svc := NewService(newTestDB(t))

	out, err := svc.Overview(2024)
	require.NoError(t, err)
	assert.Zero(t, out.TotalEntries)
	assert.Zero(t, out.YearEntries)
	assert.Empty(t, out.ByCategory)
	assert.Empty(t, out.ByMonth)
}
