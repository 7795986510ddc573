package entry

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dennik-app/core/internal/models"
	"github.com/dennik-app/core/internal/modules/category"
	"github.com/dennik-app/core/internal/pkg/pagination"
	"github.com/dennik-app/core/internal/pkg/response"
	"gorm.io/gorm"
)

var (
	// ErrCategoryNotFound means the referenced category does not exist.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrBadDate means the date string is not in YYYY-MM-DD form.
	ErrBadDate = errors.New("invalid date format, expected YYYY-MM-DD")
	// ErrBadTime means the time string is not in HH:MM form.
	ErrBadTime = errors.New("invalid time format, expected HH:MM")
	// ErrTitleRequired means an update tried to blank out the title.
	ErrTitleRequired = errors.New("title cannot be empty")
	// ErrContentRequired means an update tried to blank out the content.
	ErrContentRequired = errors.New("content cannot be empty")
)

type Service struct {
	db        *gorm.DB
	cats      *category.Service
	uploadDir string
}

func NewService(db *gorm.DB, cats *category.Service, uploadDir string) *Service {
	return &Service{db: db, cats: cats, uploadDir: uploadDir}
}

// List returns one page of entries matching the filters, newest first. The
// category filter is hierarchy-expanding: a parent category also matches
// entries filed under its direct children.
func (s *Service) List(filters ListFilters, q pagination.Query) ([]models.EntryModel, response.Pagination, error) {
	query := s.db.Model(&models.EntryModel{}).
		Preload("Category.Parent").
		Preload("Attachments").
		Order("date DESC, time DESC")

	if filters.Year != 0 {
		query = query.Where("year = ?", filters.Year)
		// A month filter without a year would mix months across years,
		// so it only applies alongside one.
		if filters.Month != 0 {
			query = query.Where("month = ?", filters.Month)
		}
	}

	if filters.CategoryID != "" {
		ids, err := s.cats.DescendantIDs(filters.CategoryID)
		if err != nil {
			return nil, response.Pagination{}, err
		}
		// An unknown category is ignored like any other malformed filter.
		if len(ids) > 0 {
			query = query.Where("category_id IN ?", ids)
		}
	}

	if search := strings.TrimSpace(filters.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(content) LIKE ?", pattern, pattern)
	}

	var entries []models.EntryModel
	page, err := pagination.Paginate(query, q, &entries)
	if err != nil {
		return nil, response.Pagination{}, err
	}
	return entries, page, nil
}

// Years returns the distinct years that have at least one entry, newest first.
func (s *Service) Years() ([]int, error) {
	var years []int
	err := s.db.Model(&models.EntryModel{}).
		Distinct("year").
		Order("year DESC").
		Pluck("year", &years).Error
	return years, err
}

func (s *Service) GetByID(id string) (*models.EntryModel, error) {
	var e models.EntryModel
	err := s.db.
		Preload("Category.Parent").
		Preload("Attachments").
		First(&e, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

func (s *Service) Create(dto *CreateEntryDTO) (*models.EntryModel, error) {
	cat, err := s.cats.GetByID(dto.CategoryID)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, ErrCategoryNotFound
	}

	now := time.Now()
	date := now.Format(dateLayout)
	if raw := strings.TrimSpace(dto.Date); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return nil, ErrBadDate
		}
		date = parsed.Format(dateLayout)
	}

	clock := now.Format(timeLayout)
	if raw := strings.TrimSpace(dto.Time); raw != "" {
		parsed, err := time.Parse(timeLayout, raw)
		if err != nil {
			return nil, ErrBadTime
		}
		clock = parsed.Format(timeLayout)
	}

	year, month := splitDate(date)
	e := models.EntryModel{
		Date:       date,
		Time:       clock,
		Title:      dto.Title,
		Content:    dto.Content,
		CategoryID: dto.CategoryID,
		Year:       year,
		Month:      month,
	}
	if err := s.db.Create(&e).Error; err != nil {
		return nil, err
	}
	return s.GetByID(e.ID)
}

// Update applies a partial mutation. A malformed date or time fails the whole
// update before anything is written.
func (s *Service) Update(id string, dto *UpdateEntryDTO) (*models.EntryModel, error) {
	e, err := s.GetByID(id)
	if err != nil || e == nil {
		return e, err
	}

	updates := map[string]interface{}{}
	if dto.Title != nil {
		if strings.TrimSpace(*dto.Title) == "" {
			return nil, ErrTitleRequired
		}
		updates["title"] = *dto.Title
	}
	if dto.Content != nil {
		if strings.TrimSpace(*dto.Content) == "" {
			return nil, ErrContentRequired
		}
		updates["content"] = *dto.Content
	}
	if dto.CategoryID != nil {
		cat, err := s.cats.GetByID(*dto.CategoryID)
		if err != nil {
			return nil, err
		}
		if cat == nil {
			return nil, ErrCategoryNotFound
		}
		updates["category_id"] = *dto.CategoryID
	}
	if dto.Date != nil {
		parsed, err := time.Parse(dateLayout, strings.TrimSpace(*dto.Date))
		if err != nil {
			return nil, ErrBadDate
		}
		date := parsed.Format(dateLayout)
		year, month := splitDate(date)
		updates["date"] = date
		updates["year"] = year
		updates["month"] = month
	}
	if dto.Time != nil {
		parsed, err := time.Parse(timeLayout, strings.TrimSpace(*dto.Time))
		if err != nil {
			return nil, ErrBadTime
		}
		updates["time"] = parsed.Format(timeLayout)
	}

	if len(updates) > 0 {
		if err := s.db.Model(&models.EntryModel{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.GetByID(id)
}

// Delete removes the entry and its attachment rows in one transaction, then
// removes the attachment files from disk best-effort.
func (s *Service) Delete(id string) error {
	e, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if e == nil {
		return gorm.ErrRecordNotFound
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.AttachmentModel{}, "entry_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.EntryModel{}, "id = ?", id).Error
	})
	if err != nil {
		return err
	}

	for _, att := range e.Attachments {
		_ = os.Remove(filepath.Join(s.uploadDir, att.FileName))
	}
	return nil
}

func splitDate(date string) (year, month int) {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return 0, 0
	}
	return t.Year(), int(t.Month())
}

// parseListFilters tolerates malformed numeric filters by ignoring them.
func parseListFilters(year, month, categoryID, search string) ListFilters {
	f := ListFilters{CategoryID: strings.TrimSpace(categoryID), Search: search}
	if v, err := strconv.Atoi(strings.TrimSpace(year)); err == nil {
		f.Year = v
	}
	if v, err := strconv.Atoi(strings.TrimSpace(month)); err == nil {
		f.Month = v
	}
	return f
}
