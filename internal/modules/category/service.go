package category

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dennik-app/core/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrNameRequired means the category name is missing or blank.
	ErrNameRequired = errors.New("name is required")
	// ErrParentNotFound means the referenced parent category does not exist.
	ErrParentNotFound = errors.New("parent category not found")
	// ErrTooDeep means the referenced parent is itself a child category.
	ErrTooDeep = errors.New("subcategories cannot have their own subcategories")
	// ErrDuplicateName means the name already exists within the parent scope.
	ErrDuplicateName = errors.New("category with this name already exists in this scope")
)

// BlockedDeleteError reports why a category cannot be removed.
type BlockedDeleteError struct {
	Entries  int64
	Children int64
}

func (e *BlockedDeleteError) Error() string {
	if e.Children > 0 {
		return fmt.Sprintf("category has %d subcategories and cannot be deleted", e.Children)
	}
	return fmt.Sprintf("category has %d entries and cannot be deleted", e.Entries)
}

type CreateCategoryDTO struct {
	Name        string  `json:"name" binding:"required"`
	ParentID    *string `json:"parent_id"`
	Icon        string  `json:"icon"`
	Color       string  `json:"color"`
	Description string  `json:"description"`
}

type UpdateCategoryDTO struct {
	Name        *string `json:"name"`
	Icon        *string `json:"icon"`
	Color       *string `json:"color"`
	Description *string `json:"description"`
	Active      *bool   `json:"active"`
}

// FlatCategory is a category with its computed display label, used by flat
// selection widgets.
type FlatCategory struct {
	models.CategoryModel
	DisplayName string `json:"display_name"`
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) GetByID(id string) (*models.CategoryModel, error) {
	var cat models.CategoryModel
	if err := s.db.First(&cat, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cat, nil
}

// ListNested returns top-level categories, each carrying its active children.
func (s *Service) ListNested() ([]models.CategoryModel, error) {
	var cats []models.CategoryModel
	err := s.db.
		Preload("Children", func(db *gorm.DB) *gorm.DB {
			return db.Where("active = ?", true).Order("name ASC")
		}).
		Where("parent_id IS NULL AND active = ?", true).
		Order("name ASC").
		Find(&cats).Error
	return cats, err
}

// ListFlat returns all active categories with a "Parent → Child" label for
// children and the plain name for top-level categories.
func (s *Service) ListFlat() ([]FlatCategory, error) {
	var cats []models.CategoryModel
	if err := s.db.
		Preload("Parent").
		Where("active = ?", true).
		Order("name ASC").
		Find(&cats).Error; err != nil {
		return nil, err
	}

	flat := make([]FlatCategory, 0, len(cats))
	for _, cat := range cats {
		label := cat.Name
		if cat.Parent != nil {
			label = cat.Parent.Name + " → " + cat.Name
		}
		flat = append(flat, FlatCategory{CategoryModel: cat, DisplayName: label})
	}
	return flat, nil
}

// ListMain returns only active top-level categories.
func (s *Service) ListMain() ([]models.CategoryModel, error) {
	var cats []models.CategoryModel
	err := s.db.
		Where("parent_id IS NULL AND active = ?", true).
		Order("name ASC").
		Find(&cats).Error
	return cats, err
}

// ListSubcategories returns the active children of the given parent.
func (s *Service) ListSubcategories(parentID string) ([]models.CategoryModel, error) {
	parent, err := s.GetByID(parentID)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		return nil, ErrParentNotFound
	}

	var cats []models.CategoryModel
	err = s.db.
		Where("parent_id = ? AND active = ?", parentID, true).
		Order("name ASC").
		Find(&cats).Error
	return cats, err
}

// DescendantIDs returns the category's own id plus the ids of its direct
// children, for hierarchy-expanding entry filters. An unknown id yields no
// ids so callers can treat the filter as absent.
func (s *Service) DescendantIDs(id string) ([]string, error) {
	cat, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, nil
	}

	ids := []string{id}
	var childIDs []string
	if err := s.db.Model(&models.CategoryModel{}).
		Where("parent_id = ?", id).
		Pluck("id", &childIDs).Error; err != nil {
		return nil, err
	}
	return append(ids, childIDs...), nil
}

func (s *Service) Create(dto *CreateCategoryDTO) (*models.CategoryModel, error) {
	name := strings.TrimSpace(dto.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	if dto.ParentID != nil {
		parent, err := s.GetByID(*dto.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, ErrParentNotFound
		}
		if parent.ParentID != nil {
			return nil, ErrTooDeep
		}
	}

	taken, err := s.nameTaken(name, dto.ParentID, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDuplicateName
	}

	cat := models.CategoryModel{
		Name:        name,
		ParentID:    dto.ParentID,
		Description: dto.Description,
		Active:      true,
	}
	if icon := strings.TrimSpace(dto.Icon); icon != "" {
		cat.Icon = icon
	}
	if color := strings.TrimSpace(dto.Color); color != "" {
		cat.Color = color
	}
	return &cat, s.db.Create(&cat).Error
}

func (s *Service) Update(id string, dto *UpdateCategoryDTO) (*models.CategoryModel, error) {
	cat, err := s.GetByID(id)
	if err != nil || cat == nil {
		return cat, err
	}

	updates := map[string]interface{}{}
	if dto.Name != nil {
		name := strings.TrimSpace(*dto.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		if name != cat.Name {
			taken, err := s.nameTaken(name, cat.ParentID, cat.ID)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, ErrDuplicateName
			}
		}
		updates["name"] = name
	}
	if dto.Icon != nil {
		updates["icon"] = *dto.Icon
	}
	if dto.Color != nil {
		updates["color"] = *dto.Color
	}
	if dto.Description != nil {
		updates["description"] = *dto.Description
	}
	if dto.Active != nil {
		updates["active"] = *dto.Active
	}

	if len(updates) == 0 {
		return cat, nil
	}
	if err := s.db.Model(cat).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

// Delete removes a category that has no entries and no children. A category
// still in use is left untouched and a BlockedDeleteError is returned.
func (s *Service) Delete(id string) error {
	cat, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if cat == nil {
		return gorm.ErrRecordNotFound
	}

	var children int64
	if err := s.db.Model(&models.CategoryModel{}).Where("parent_id = ?", id).Count(&children).Error; err != nil {
		return err
	}
	if children > 0 {
		return &BlockedDeleteError{Children: children}
	}

	var entries int64
	if err := s.db.Model(&models.EntryModel{}).Where("category_id = ?", id).Count(&entries).Error; err != nil {
		return err
	}
	if entries > 0 {
		return &BlockedDeleteError{Entries: entries}
	}

	return s.db.Delete(&models.CategoryModel{}, "id = ?", id).Error
}

func (s *Service) nameTaken(name string, parentID *string, excludeID string) (bool, error) {
	q := s.db.Model(&models.CategoryModel{}).Where("name = ?", name)
	if parentID == nil {
		q = q.Where("parent_id IS NULL")
	} else {
		q = q.Where("parent_id = ?", *parentID)
	}
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
