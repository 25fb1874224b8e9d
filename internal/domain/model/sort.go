package model

import "fmt"

// SortField selects the entry field used for ordering list results.
type SortField string

// SortOrder selects the direction of a sort.
type SortOrder string

// Allowed sort selectors. "date" maps to the CreatedAt field.
const (
	SortByName SortField = "name"
	SortByDate SortField = "date"

	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SortSpec is a validated field + direction pair for list queries.
type SortSpec struct {
	Field SortField
	Order SortOrder
}

// DefaultSort is the ordering used when the caller specifies nothing:
// newest entries first.
func DefaultSort() SortSpec {
	return SortSpec{Field: SortByDate, Order: SortDesc}
}

// ParseSortSpec validates the by/order query parameters. Empty strings fall
// back to the defaults; any other value outside the enumerated sets is a
// client error.
func ParseSortSpec(by, order string) (SortSpec, error) {
	spec := DefaultSort()

	switch by {
	case "":
	case string(SortByName):
		spec.Field = SortByName
	case string(SortByDate):
		spec.Field = SortByDate
	default:
		return SortSpec{}, fmt.Errorf("invalid sort field %q: must be one of name, date", by)
	}

	switch order {
	case "":
	case string(SortAsc):
		spec.Order = SortAsc
	case string(SortDesc):
		spec.Order = SortDesc
	default:
		return SortSpec{}, fmt.Errorf("invalid sort order %q: must be one of asc, desc", order)
	}

	return spec, nil
}
