package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// timeNow is swapped out by tests that need a fixed clock for period
// resolution.
var timeNow = time.Now

const (
	defaultPageSize = 25
	maxPageSize     = 200
)

// pagination reads page/page_size query params with sane bounds.
func pagination(r *http.Request) (page, size int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	size, _ = strconv.Atoi(r.URL.Query().Get("page_size"))
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}

// pathID extracts the numeric id following a route prefix, e.g.
// pathID("/products/", "/products/42") -> 42.
func pathID(prefix, path string) (uint, bool) {
	rest := strings.TrimPrefix(path, prefix)
	rest = strings.Trim(rest, "/")
	if rest == "" || strings.Contains(rest, "/") {
		return 0, false
	}
	id, err := strconv.Atoi(rest)
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}

// listResponse is the shared envelope for paginated collections.
type listResponse struct {
	Items    any   `json:"items"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
}
