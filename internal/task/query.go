package task

import (
	"net/url"
	"strconv"
	"strings"
)

// sortColumns maps accepted sortBy fields to columns
var sortColumns = map[string]string{
	"createdAt":   "created_at",
	"created_at":  "created_at",
	"updatedAt":   "updated_at",
	"updated_at":  "updated_at",
	"description": "description",
	"completed":   "completed",
}

// ParseListOptions reads completed, sortBy, limit and skip from a query
// string. Missing or non-numeric limit and skip mean unbounded.
func ParseListOptions(query url.Values) (ListOptions, error) {
	var opts ListOptions

	// any value other than "true" filters for open tasks
	if raw := query.Get("completed"); raw != "" {
		completed := raw == "true"
		opts.Completed = &completed
	}

	if raw := query.Get("sortBy"); raw != "" {
		field, dir, _ := strings.Cut(raw, ":")
		column, ok := sortColumns[field]
		if !ok {
			return ListOptions{}, ErrInvalidSortField
		}
		opts.Sort = &Sort{Column: column, Desc: dir == "desc"}
	}

	if n, ok := parseCount(query.Get("limit")); ok {
		if n < 0 {
			return ListOptions{}, ErrNegativeLimit
		}
		opts.Limit = &n
	}

	if n, ok := parseCount(query.Get("skip")); ok {
		if n < 0 {
			return ListOptions{}, ErrNegativeSkip
		}
		opts.Skip = &n
	}

	return opts, nil
}

func parseCount(raw string) (int, bool) {
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}
