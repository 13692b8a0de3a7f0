package postgres

import "strings"

// orderClause maps an "-field" style ordering key onto an ORDER BY fragment.
// Unknown fields fall back to the default sort rather than erroring.
func orderClause(ordering string, allowed map[string]string, fallback string) string {
	if ordering == "" {
		return fallback
	}
	desc := strings.HasPrefix(ordering, "-")
	col, ok := allowed[strings.TrimPrefix(ordering, "-")]
	if !ok {
		return fallback
	}
	if desc {
		return col + " DESC"
	}
	return col + " ASC"
}

// normalizePage clamps page/pageSize against the total row count.
// Out-of-range pages deliver the last page instead of an empty one.
func normalizePage(page, pageSize int, total int64) (int, int) {
	if pageSize < 1 {
		pageSize = 20
	}
	if page < 1 {
		page = 1
	}
	if total > 0 {
		last := int((total + int64(pageSize) - 1) / int64(pageSize))
		if page > last {
			page = last
		}
	}
	return page, pageSize
}
