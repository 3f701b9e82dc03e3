package database

const (
	SortByID         = "id"
	SortByName       = "name"
	SortByCreatedAt  = "created_at"
	SortByImageCount = "image_count"
)

const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

const (
	DefaultSortBy    = SortByID
	DefaultSortOrder = SortAsc
)

// IsValidSortField checks if a string is a valid dataset sort field
func IsValidSortField(field string) bool {
	switch field {
	case SortByID, SortByName, SortByCreatedAt, SortByImageCount:
		return true
	default:
		return false
	}
}

// NormalizeSort maps unknown fields and orders to the defaults instead of rejecting them.
// An unknown field discards the requested order as well: the listing falls back to id ascending.
func NormalizeSort(field, order string) (string, string) {
	if !IsValidSortField(field) {
		return DefaultSortBy, DefaultSortOrder
	}
	if order != SortAsc && order != SortDesc {
		order = DefaultSortOrder
	}
	return field, order
}
