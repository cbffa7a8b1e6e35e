// Package pagination provides shared limit/offset, search, and sort helpers
// for list endpoints.
package pagination

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Params holds parsed list query parameters.
type Params struct {
	Page   int    `json:"page"`
	Limit  int    `json:"limit"`
	Search string `json:"search,omitempty"`
	SortBy string `json:"sort_by,omitempty"`
	Order  string `json:"order,omitempty"`
}

// Meta is the pagination block of a list response.
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

// Result pairs a row slice with its pagination metadata.
type Result[T any] struct {
	Data       []T  `json:"data"`
	Pagination Meta `json:"pagination"`
}

// Parse extracts page/limit/search/sortBy/order from the query string.
// Non-numeric or absent page and limit fall back to defaults rather than
// propagating into the query. sortable is the column allow-list for sortBy;
// anything not on it falls back to defaultSort. The sort column ends up in
// raw SQL, so the allow-list is what keeps the query string out of it.
func Parse(c *fiber.Ctx, defaultSort string, sortable ...string) Params {
	page := c.QueryInt("page", DefaultPage)
	if page < 1 {
		page = DefaultPage
	}
	limit := c.QueryInt("limit", DefaultLimit)
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	sortBy := strings.TrimSpace(c.Query("sortBy"))
	if !sortAllowed(sortBy, sortable) {
		sortBy = defaultSort
	}
	order := strings.ToUpper(strings.TrimSpace(c.Query("order")))
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}

	return Params{
		Page:   page,
		Limit:  limit,
		Search: strings.TrimSpace(c.Query("search")),
		SortBy: sortBy,
		Order:  order,
	}
}

// Normalize clamps out-of-range values on params built outside Parse.
func (p Params) Normalize() Params {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Order != "ASC" && p.Order != "DESC" {
		p.Order = "DESC"
	}
	return p
}

// Offset returns the row offset for the current page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// ApplySearch adds a case-insensitive contains predicate OR-ed across the
// given columns when Search is non-empty. Columns are caller-supplied
// identifiers, never user input.
func (p Params) ApplySearch(db *gorm.DB, columns ...string) *gorm.DB {
	if p.Search == "" || len(columns) == 0 {
		return db
	}
	pattern := "%" + strings.ToLower(p.Search) + "%"
	conds := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, col := range columns {
		conds[i] = fmt.Sprintf("LOWER(%s) LIKE ?", col)
		args[i] = pattern
	}
	return db.Where(strings.Join(conds, " OR "), args...)
}

func sortAllowed(sortBy string, sortable []string) bool {
	if sortBy == "" {
		return false
	}
	for _, col := range sortable {
		if sortBy == col {
			return true
		}
	}
	return false
}

// ApplyOrder adds the ORDER BY clause when SortBy is set. SortBy is rendered
// as raw SQL and must only ever hold a column name vetted by Parse.
func (p Params) ApplyOrder(db *gorm.DB) *gorm.DB {
	if p.SortBy == "" {
		return db
	}
	return db.Order(p.SortBy + " " + p.Order)
}

// ApplyLimits adds LIMIT/OFFSET.
func (p Params) ApplyLimits(db *gorm.DB) *gorm.DB {
	return db.Limit(p.Limit).Offset(p.Offset())
}

// NewResult formats count+rows into the standard {data, pagination} shape.
// With total=0 the data slice is empty (never null) and TotalPages is 0.
func NewResult[T any](rows []T, total int64, p Params) Result[T] {
	if rows == nil {
		rows = []T{}
	}
	totalPages := 0
	if total > 0 {
		totalPages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	}
	return Result[T]{
		Data: rows,
		Pagination: Meta{
			Total:      total,
			Page:       p.Page,
			Limit:      p.Limit,
			TotalPages: totalPages,
		},
	}
}
