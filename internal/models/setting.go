package models

// SettingModel is an opaque key/value pair for global configuration.
type SettingModel struct {
	Base
	Key   string `json:"key"   gorm:"uniqueIndex;not null"`
	Value string `json:"value" gorm:"type:text"`
}

func (SettingModel) TableName() string { return "settings" }
