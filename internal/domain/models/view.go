package models

// StatusFilterAll disables the status predicate.
const StatusFilterAll = "all"

// FilterState is the user's batch list filter selection. Zero values disable a predicate.
type FilterState struct {
	Search              string   `json:"search" bson:"search"`
	DateFrom            string   `json:"dateFrom" bson:"date_from"` // YYYY-MM-DD
	DateTo              string   `json:"dateTo" bson:"date_to"`     // YYYY-MM-DD
	Status              string   `json:"status" bson:"status"`
	DefectRateThreshold float64  `json:"defectRateThreshold" bson:"defect_rate_threshold"`
	Sizes               []string `json:"sizes" bson:"sizes"`
}

// SortKey selects the comparator used to order batches.
type SortKey string

const (
	SortByDate        SortKey = "date"
	SortByTotalEggs   SortKey = "totalEggs"
	SortByDefectRate  SortKey = "defectRate"
	SortByBatchNumber SortKey = "batchNumber"
)

// SortDirection is either ascending or descending.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SortSpec is the active sort key and direction.
type SortSpec struct {
	Key       SortKey       `json:"sortBy" bson:"sort_by"`
	Direction SortDirection `json:"sortDirection" bson:"sort_direction"`
}

// DefaultSort matches the dashboard default: newest first.
var DefaultSort = SortSpec{Key: SortByDate, Direction: SortDesc}

// ViewState is the persisted browsing state of the batch list for one account.
type ViewState struct {
	Filters     FilterState `json:"filters" bson:"filters"`
	Sort        SortSpec    `json:"sort" bson:"sort"`
	CurrentPage int         `json:"currentPage" bson:"current_page"`
	PageSize    int         `json:"pageSize" bson:"page_size"`
}

// Page is one page of a paginated list.
type Page[T any] struct {
	Items       []T `json:"items"`
	CurrentPage int `json:"currentPage"`
	PageSize    int `json:"pageSize"`
	TotalPages  int `json:"totalPages"`
	TotalItems  int `json:"totalItems"`
}
