package entry

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

type CreateEntryDTO struct {
	Title      string `json:"title" binding:"required"`
	Content    string `json:"content" binding:"required"`
	CategoryID string `json:"category_id" binding:"required"`
	Date       string `json:"date"`
	Time       string `json:"time"`
}

type UpdateEntryDTO struct {
	Title      *string `json:"title"`
	Content    *string `json:"content"`
	CategoryID *string `json:"category_id"`
	Date       *string `json:"date"`
	Time       *string `json:"time"`
}

// ListFilters holds the optional entry listing constraints. Zero values mean
// no constraint.
type ListFilters struct {
	Year       int
	Month      int
	CategoryID string
	Search     string
}
