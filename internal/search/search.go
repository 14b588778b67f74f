package search

// SortBy names the columns a search can be ordered by.
type SortBy string

const (
	SortByName           SortBy = "name"
	SortByAcceptance     SortBy = "acceptance"
	SortByTuitionInState SortBy = "tuition_in_state"
	SortByStudentSize    SortBy = "student_size"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Filters is the value object driving one search query.
type Filters struct {
	Query      string
	State      string
	OnlineOnly bool
	SortBy     SortBy
	SortOrder  SortOrder
}

// DefaultFilters returns the initial search state: everything, by name.
func DefaultFilters() Filters {
	return Filters{SortBy: SortByName, SortOrder: SortAsc}
}
