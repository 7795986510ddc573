package entry

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dennik-app/core/internal/database"
	"github.com/dennik-app/core/internal/models"
	"github.com/dennik-app/core/internal/modules/category"
	"github.com/dennik-app/core/internal/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fixture struct {
	db   *gorm.DB
	svc  *Service
	cats *category.Service
	dir  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))

	cats := category.NewService(db)
	dir := t.TempDir()
	return &fixture{db: db, svc: NewService(db, cats, dir), cats: cats, dir: dir}
}

func (f *fixture) mustCategory(t *testing.T, name string, parentID *string) *models.CategoryModel {
	t.Helper()
	cat, err := f.cats.Create(&category.CreateCategoryDTO{Name: name, ParentID: parentID})
	require.NoError(t, err)
	return cat
}

func (f *fixture) mustEntry(t *testing.T, title, date string, categoryID string) *models.EntryModel {
	t.Helper()
	e, err := f.svc.Create(&CreateEntryDTO{
		Title: title, Content: title + " content", CategoryID: categoryID, Date: date, Time: "12:00",
	})
	require.NoError(t, err)
	return e
}

func TestCreateDerivesYearMonth(t *testing.T) {
	f := newFixture(t)
	cat := f.mustCategory(t, "Home", nil)

	e, err := f.svc.Create(&CreateEntryDTO{
		Title: "Fixed the fence", Content: "done", CategoryID: cat.ID,
		Date: "2024-03-15", Time: "09:30",
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15", e.Date)
	assert.Equal(t, "09:30", e.Time)
	assert.Equal(t, 2024, e.Year)
	assert.Equal(t, 3, e.Month)
	require.NotNil(t, e.Category)
	assert.Equal(t, "Home", e.Category.Name)
}

func TestCreateDefaultsToNow(t *testing.T) {
	f := newFixture(t)
	cat := f.mustCategory(t, "Home", nil)

	e, err := f.svc.Create(&CreateEntryDTO{Title: "a", Content: "b", CategoryID: cat.ID})
	require.NoError(t, err)

	now := time.Now()
	assert.Equal(t, now.Format(dateLayout), e.Date)
	assert.Equal(t, now.Year(), e.Year)
	assert.Equal(t, int(now.Month()), e.Month)
	assert.NotEmpty(t, e.Time)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	cat := f.mustCategory(t, "Home", nil)

	tests := []struct {
		name string
		dto  CreateEntryDTO
		want error
	}{
		{"missing category", CreateEntryDTO{Title: "a", Content: "b", CategoryID: "nope"}, ErrCategoryNotFound},
		{"bad date", CreateEntryDTO{Title: "a", Content: "b", CategoryID: cat.ID, Date: "15.3.2024"}, ErrBadDate},
		{"bad time", CreateEntryDTO{Title: "a", Content: "b", CategoryID: cat.ID, Time: "9:3:1"}, ErrBadTime},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(&tt.dto)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUpdateRecomputesYearMonth(t *testing.T) {
	f := newFixture(t)
	cat := f.mustCategory(t, "Home", nil)
	e := f.mustEntry(t, "a", "2024-03-15", cat.ID)

	date := "2023-11-02"
	updated, err := f.svc.Update(e.ID, &UpdateEntryDTO{Date: &date})
	require.NoError(t, err)
	assert.Equal(t, "2023-11-02", updated.Date)
	assert.Equal(t, 2023, updated.Year)
	assert.Equal(t, 11, updated.Month)
}

func TestUpdateRejectsMalformedWithoutPartialApply(t *testing.T) {
	f := newFixture(t)
	cat := f.mustCategory(t, "Home", nil)
	e := f.mustEntry(t, "original", "2024-03-15", cat.ID)

	title := "changed"
	bad := "not-a-date"
	_, err := f.svc.Update(e.ID, &UpdateEntryDTO{Title: &title, Date: &bad})
	assert.ErrorIs(t, err, ErrBadDate)

	reloaded, err := f.svc.GetByID(e.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", reloaded.Title)
	assert.Equal(t, "2024-03-15", reloaded.Date)
}

func TestUpdateCategoryRevalidates(t *testing.T) {
	f := newFixture(t)
	cat := f.mustCategory(t, "Home", nil)
	e := f.mustEntry(t, "a", "2024-03-15", cat.ID)

	missing := "nope"
	_, err := f.svc.Update(e.ID, &UpdateEntryDTO{CategoryID: &missing})
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	other := f.mustCategory(t, "Work", nil)
	updated, err := f.svc.Update(e.ID, &UpdateEntryDTO{CategoryID: &other.ID})
	require.NoError(t, err)
	assert.Equal(t, other.ID, updated.CategoryID)
}

func TestUpdateMissingEntry(t *testing.T) {
	f := newFixture(t)
	e, err := f.svc.Update("missing", &UpdateEntryDTO{})
	require.NoError(t, err)
	assert.Nil(t, e)
}

func TestListFiltersYearAndMonth(t *testing.T) {
	f := newFixture(t)
	cat := f.mustCategory(t, "Home", nil)
	f.mustEntry(t, "march24", "2024-03-15", cat.ID)
	f.mustEntry(t, "june24", "2024-06-01", cat.ID)
	f.mustEntry(t, "march23", "2023-03-10", cat.ID)

	q := pagination.Query{Page: 1, PerPage: 20}

	entries, page, err := f.svc.List(ListFilters{Year: 2024}, q)
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)

	entries, _, err = f.svc.List(ListFilters{Year: 2024, Month: 3}, q)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "march24", entries[0].Title)

	// A month without a year is no constraint at all.
	entries, _, err = f.svc.List(ListFilters{Month: 3}, q)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestListHierarchyExpandingCategoryFilter(t *testing.T) {
	f := newFixture(t)
	home := f.mustCategory(t, "Home", nil)
	repairs := f.mustCategory(t, "Repairs", &home.ID)
	work := f.mustCategory(t, "Work", nil)

	f.mustEntry(t, "Fixed the fence", "2024-03-15", repairs.ID)
	f.mustEntry(t, "General note", "2024-04-01", home.ID)
	f.mustEntry(t, "Standup", "2024-04-02", work.ID)

	q := pagination.Query{Page: 1, PerPage: 20}

	// Filtering by the parent picks up entries filed under its children.
	entries, _, err := f.svc.List(ListFilters{Year: 2024, CategoryID: home.ID}, q)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	titles := []string{entries[0].Title, entries[1].Title}
	assert.ElementsMatch(t, []string{"Fixed the fence", "General note"}, titles)

	entries, _, err = f.svc.List(ListFilters{CategoryID: repairs.ID}, q)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Fixed the fence", entries[0].Title)
}

func TestListUnknownCategoryIsNoConstraint(t *testing.T) {
	f := newFixture(t)
	cat := f.mustCategory(t, "Home", nil)
	f.mustEntry(t, "General note", "2024-04-01", cat.ID)

	entries, _, err := f.svc.List(ListFilters{CategoryID: "no-such-category"}, pagination.Query{Page: 1, PerPage: 20})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "General note", entries[0].Title)
}

func TestListSearchCaseInsensitive(t *testing.T) {
	f := newFixture(t)
	cat := f.mustCategory(t, "Home", nil)

	_, err := f.svc.Create(&CreateEntryDTO{
		Title: "Garden Work", Content: "planted tomatoes", CategoryID: cat.ID, Date: "2024-05-01",
	})
	require.NoError(t, err)
	_, err = f.svc.Create(&CreateEntryDTO{
		Title: "Shopping", Content: "bought a GARDEN hose", CategoryID: cat.ID, Date: "2024-05-02",
	})
	require.NoError(t, err)
	_, err = f.svc.Create(&CreateEntryDTO{
		Title: "Unrelated", Content: "nothing here", CategoryID: cat.ID, Date: "2024-05-03",
	})
	require.NoError(t, err)

	entries, _, err := f.svc.List(ListFilters{Search: "gArDeN"}, pagination.Query{Page: 1, PerPage: 20})
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestListOrdering(t *testing.T) {
	f := newFixture(t)
	cat := f.mustCategory(t, "Home", nil)

	_, err := f.svc.Create(&CreateEntryDTO{Title: "older", Content: "c", CategoryID: cat.ID, Date: "2024-03-14", Time: "23:59"})
	require.NoError(t, err)
	_, err = f.svc.Create(&CreateEntryDTO{Title: "morning", Content: "c", CategoryID: cat.ID, Date: "2024-03-15", Time: "08:00"})
	require.NoError(t, err)
	_, err = f.svc.Create(&CreateEntryDTO{Title: "evening", Content: "c", CategoryID: cat.ID, Date: "2024-03-15", Time: "20:00"})
	require.NoError(t, err)

	entries, _, err := f.svc.List(ListFilters{}, pagination.Query{Page: 1, PerPage: 20})
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "evening", entries[0].Title)
	assert.Equal(t, "morning", entries[1].Title)
	assert.Equal(t, "older", entries[2].Title)
}

func TestListPaginationMetadata(t *testing.T) {
	f := newFixture(t)
	cat := f.mustCategory(t, "Home", nil)
	for i := 0; i < 5; i++ {
		f.mustEntry(t, "e", "2024-03-15", cat.ID)
	}

	entries, page, err := f.svc.List(ListFilters{}, pagination.Query{Page: 2, PerPage: 2})
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.EqualValues(t, 5, page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 3, page.Pages)
	assert.True(t, page.HasNext)
	assert.True(t, page.HasPrev)
}

func TestYears(t *testing.T) {
	f := newFixture(t)
	cat := f.mustCategory(t, "Home", nil)
	f.mustEntry(t, "a", "2022-01-01", cat.ID)
	f.mustEntry(t, "b", "2024-01-01", cat.ID)
	f.mustEntry(t, "c", "2024-06-01", cat.ID)

	years, err := f.svc.Years()
	require.NoError(t, err)
	assert.Equal(t, []int{2024, 2022}, years)
}

func TestDeleteCascadesAttachments(t *testing.T) {
	f := newFixture(t)
	cat := f.mustCategory(t, "Home", nil)
	e := f.mustEntry(t, "with files", "2024-03-15", cat.ID)

	filePath := filepath.Join(f.dir, "abc123.pdf")
	require.NoError(t, os.WriteFile(filePath, []byte("%PDF-1.4"), 0o644))
	require.NoError(t, f.db.Create(&models.AttachmentModel{
		EntryID: e.ID, FileName: "abc123.pdf", OriginalName: "report.pdf",
		FileSize: 8, MimeType: "application/pdf",
	}).Error)

	require.NoError(t, f.svc.Delete(e.ID))

	var entryCount, attCount int64
	f.db.Model(&models.EntryModel{}).Count(&entryCount)
	f.db.Model(&models.AttachmentModel{}).Count(&attCount)
	assert.Zero(t, entryCount)
	assert.Zero(t, attCount)

	_, err := os.Stat(filePath)
	assert.True(t, os.IsNotExist(err))
}

func TestDeleteMissingEntry(t *testing.T) {
	f := newFixture(t)
	assert.ErrorIs(t, f.svc.Delete("missing"), gorm.ErrRecordNotFound)
}

func TestParseListFilters(t *testing.T) {
	f := parseListFilters("2024", "3", "cat-1", "fence")
	assert.Equal(t, ListFilters{Year: 2024, Month: 3, CategoryID: "cat-1", Search: "fence"}, f)

	// Garbage numerics fall back to no constraint.
	f = parseListFilters("twenty", "x", "", "")
	assert.Equal(t, ListFilters{}, f)
}
