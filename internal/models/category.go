package models

// CategoryModel is a named grouping for entries, organized in at most two
// levels. A child stores its parent's id; the same name may repeat under
// different parents but not within one parent scope.
type CategoryModel struct {
	Base
	Name        string  `json:"name"        gorm:"not null;uniqueIndex:idx_category_name_parent"`
	ParentID    *string `json:"parent_id"   gorm:"uniqueIndex:idx_category_name_parent;index"`
	Icon        string  `json:"icon"        gorm:"default:📝"`
	Color       string  `json:"color"       gorm:"default:#4CAF50"`
	Description string  `json:"description"`
	Active      bool    `json:"active"      gorm:"default:true"`

	Parent   *CategoryModel  `json:"parent,omitempty"   gorm:"foreignKey:ParentID"`
	Children []CategoryModel `json:"children,omitempty" gorm:"foreignKey:ParentID"`
	Entries  []EntryModel    `json:"entries,omitempty"  gorm:"foreignKey:CategoryID"`
}

func (CategoryModel) TableName() string { return "categories" }
