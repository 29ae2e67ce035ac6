// Package handlers implements the JSON API. Every response uses the httpx
// envelope.
package handlers

import (
	"net/http"
	"strconv"
)

const defaultPageSize = 20

// Page is the body of paginated admin listings.
type Page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

// pagination reads ?page= (1-based) and ?limit= (1..100).
func pagination(r *http.Request) (page, limit, offset int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = defaultPageSize
	}
	return page, limit, (page - 1) * limit
}

func newPage[T any](items []T, total int64, page, limit int) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Total: total, Page: page, Limit: limit}
}
