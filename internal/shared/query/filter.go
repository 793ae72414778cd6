package query

import "strings"

type PageFilter struct {
	Page     int
	PageSize int
}

func (f PageFilter) Offset() int {
	if f.Page <= 0 {
		return 0
	}
	return (f.Page - 1) * f.Limit()
}

func (f PageFilter) Limit() int {
	if f.PageSize <= 0 {
		return 20
	}
	if f.PageSize > 100 {
		return 100
	}
	return f.PageSize
}

// SortFilter orders by a column picked from an allow-list, so user input
// never reaches ORDER BY directly.
type SortFilter struct {
	SortBy    string
	SortOrder string
}

func (f SortFilter) IsDescending() bool {
	return strings.EqualFold(f.SortOrder, "desc")
}

// OrderClause returns "<column> ASC|DESC", falling back to fallback when
// SortBy is not in allowed.
func (f SortFilter) OrderClause(allowed map[string]string, fallback string) string {
	column, ok := allowed[strings.ToLower(f.SortBy)]
	if !ok {
		column = fallback
	}
	if f.IsDescending() {
		return column + " DESC"
	}
	return column + " ASC"
}
