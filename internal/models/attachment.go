package models

// AttachmentModel is a file associated with exactly one entry. FileName is
// the opaque generated on-disk name; OriginalName is sanitized user input
// kept as metadata only and never used as a storage path.
type AttachmentModel struct {
	Base
	EntryID      string `json:"entry_id"          gorm:"not null;index"`
	FileName     string `json:"filename"          gorm:"not null;uniqueIndex"`
	OriginalName string `json:"original_filename" gorm:"not null"`
	FileSize     int64  `json:"file_size"`
	MimeType     string `json:"mime_type"`
}

func (AttachmentModel) TableName() string { return "attachments" }
