package models

// EntryModel is a dated journal record. Date and Time are stored in their
// canonical wire formats (2006-01-02, 15:04) so ordering stays lexicographic
// and wall-clock time carries no timezone. Year and Month are derived from
// Date by the entry service and exist only for indexed filtering.
type EntryModel struct {
	Base
	Date       string `json:"date"        gorm:"type:date;not null;index:idx_entry_date"`
	Time       string `json:"time"        gorm:"not null"`
	Title      string `json:"title"       gorm:"not null"`
	Content    string `json:"content"     gorm:"type:text;not null"`
	CategoryID string `json:"category_id" gorm:"not null;index:idx_entry_category;index:idx_entry_year_category"`
	Year       int    `json:"year"        gorm:"not null;index:idx_entry_year;index:idx_entry_year_category"`
	Month      int    `json:"month"       gorm:"not null"`

	Category    *CategoryModel    `json:"category,omitempty"    gorm:"foreignKey:CategoryID"`
	Attachments []AttachmentModel `json:"attachments,omitempty" gorm:"foreignKey:EntryID"`
}

func (EntryModel) TableName() string { return "entries" }
