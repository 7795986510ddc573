package stats

import (
	"github.com/dennik-app/core/internal/models"
	"gorm.io/gorm"
)

// CategoryCount is one row of the per-category breakdown.
type CategoryCount struct {
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
	Count int64  `json:"count"`
}

// MonthCount is one row of the per-month breakdown within a year.
type MonthCount struct {
	Month int   `json:"month"`
	Count int64 `json:"count"`
}

// Overview aggregates entry counts. ByMonth is empty unless a year was
// requested.
type Overview struct {
	TotalEntries int64           `json:"total_entries"`
	Year         int             `json:"year,omitempty"`
	YearEntries  int64           `json:"year_entries"`
	ByCategory   []CategoryCount `json:"by_category"`
	ByMonth      []MonthCount    `json:"by_month"`
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Overview computes entry totals and breakdowns, year-scoped when year > 0.
func (s *Service) Overview(year int) (*Overview, error) {
	out := &Overview{
		ByCategory: []CategoryCount{},
		ByMonth:    []MonthCount{},
	}

	if err := s.db.Model(&models.EntryModel{}).Count(&out.TotalEntries).Error; err != nil {
		return nil, err
	}

	scoped := s.db.Model(&models.EntryModel{})
	if year > 0 {
		out.Year = year
		scoped = scoped.Where("entries.year = ?", year)
		if err := s.db.Model(&models.EntryModel{}).Where("year = ?", year).Count(&out.YearEntries).Error; err != nil {
			return nil, err
		}
	} else {
		out.YearEntries = out.TotalEntries
	}

	if err := scoped.
		Select("categories.name AS name, categories.icon AS icon, categories.color AS color, COUNT(entries.id) AS count").
		Joins("JOIN categories ON categories.id = entries.category_id").
		Group("categories.id, categories.name, categories.icon, categories.color").
		Order("count DESC").
		Scan(&out.ByCategory).Error; err != nil {
		return nil, err
	}

	if year > 0 {
		if err := s.db.Model(&models.EntryModel{}).
			Select("month, COUNT(id) AS count").
			Where("year = ?", year).
			Group("month").
			Order("month ASC").
			Scan(&out.ByMonth).Error; err != nil {
			return nil, err
		}
	}

	return out, nil
}
