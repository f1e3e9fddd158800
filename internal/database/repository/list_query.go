package repository

import (
	"errors"
	"strconv"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// SortField is one validated `field:direction` entry
type SortField struct {
	Column string
	Desc   bool
}

// ListQuery carries pagination, search and sort options for list endpoints
type ListQuery struct {
	Page   int
	Limit  int
	Search string
	Sort   []SortField
}

// Offset returns the number of rows to skip for the current page
func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// Pages returns ceil(total/limit)
func (q ListQuery) Pages(total int64) int {
	if q.Limit <= 0 {
		return 0
	}
	return int((total + int64(q.Limit) - 1) / int64(q.Limit))
}

// Sortable API fields mapped to their columns
var (
	BookSortColumns = map[string]string{
		"ISBN":              "isbn",
		"active":            "active",
		"author":            "author",
		"availableQuantity": "available_quantity",
		"createdAt":         "created_at",
		"description":       "description",
		"id":                "id",
		"shelfLocation":     "shelf_location",
		"title":             "title",
		"updatedAt":         "updated_at",
		"slug":              "slug",
	}

	UserSortColumns = map[string]string{
		"name":      "name",
		"email":     "email",
		"role":      "role",
		"createdAt": "created_at",
		"id":        "id",
		"updatedAt": "updated_at",
	}
)

// Searchable columns per resource
var (
	bookSearchColumns = []string{"title", "author", "isbn"}
	userSearchColumns = []string{"name", "email"}
)

// ParseListQuery validates raw query-string values. Empty values fall back to defaults.
func ParseListQuery(rawPage, rawLimit, rawSearch, rawSort string, sortable map[string]string) (ListQuery, error) {
	query := ListQuery{
		Page:   DefaultPage,
		Limit:  DefaultLimit,
		Search: strings.TrimSpace(rawSearch),
	}

	if rawPage = strings.TrimSpace(rawPage); rawPage != "" {
		page, err := strconv.Atoi(rawPage)
		if err != nil || page < 1 {
			return ListQuery{}, ErrInvalidPage
		}
		query.Page = page
	}

	if rawLimit = strings.TrimSpace(rawLimit); rawLimit != "" {
		limit, err := strconv.Atoi(rawLimit)
		if err != nil || limit < 1 {
			return ListQuery{}, ErrInvalidLimit
		}
		query.Limit = min(limit, MaxLimit)
	}

	sort, err := ParseSort(rawSort, sortable)
	if err != nil {
		return ListQuery{}, err
	}
	query.Sort = sort

	return query, nil
}

// ParseSort parses "field:direction[,field:direction...]" against an allowlist
func ParseSort(raw string, sortable map[string]string) ([]SortField, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	fields := make([]SortField, 0, len(parts))
	for _, part := range parts {
		name, direction, found := strings.Cut(strings.TrimSpace(part), ":")
		if !found {
			return nil, ErrInvalidSort
		}

		column, ok := sortable[name]
		if !ok {
			return nil, ErrInvalidSort
		}

		switch direction {
		case "asc":
			fields = append(fields, SortField{Column: column})
		case "desc":
			fields = append(fields, SortField{Column: column, Desc: true})
		default:
			return nil, ErrInvalidSort
		}
	}

	return fields, nil
}

// searchScope filters by a case-insensitive substring over the given columns
func searchScope(search string, columns []string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if search == "" || len(columns) == 0 {
			return db
		}

		pattern := "%" + strings.ToLower(search) + "%"
		conditions := make([]string, 0, len(columns))
		args := make([]interface{}, 0, len(columns))
		for _, column := range columns {
			conditions = append(conditions, "LOWER("+column+") LIKE ?")
			args = append(args, pattern)
		}

		return db.Where(strings.Join(conditions, " OR "), args...)
	}
}

// sortScope applies the requested order, with id as the final tie-breaker
func sortScope(fields []SortField) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		hasID := false
		for _, field := range fields {
			db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: field.Column}, Desc: field.Desc})
			if field.Column == "id" {
				hasID = true
			}
		}
		if !hasID {
			db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}})
		}
		return db
	}
}

// List query errors
var (
	ErrInvalidPage  = errors.New("page must be a positive integer")
	ErrInvalidLimit = errors.New("limit must be a positive integer")
	ErrInvalidSort  = errors.New("sort parameter is invalid")
)
