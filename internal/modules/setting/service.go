package setting

import (
	"errors"

	"github.com/dennik-app/core/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) List() ([]models.SettingModel, error) {
	var settings []models.SettingModel
	return settings, s.db.Order("key ASC").Find(&settings).Error
}

func (s *Service) Get(key string) (*models.SettingModel, error) {
	var setting models.SettingModel
	if err := s.db.First(&setting, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &setting, nil
}

// Set inserts or updates the value for key.
func (s *Service) Set(key, value string) (*models.SettingModel, error) {
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"value": value}),
	}).Create(&models.SettingModel{Key: key, Value: value}).Error
	if err != nil {
		return nil, err
	}
	return s.Get(key)
}

func (s *Service) Delete(key string) error {
	res := s.db.Delete(&models.SettingModel{}, "key = ?", key)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
