package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderClause(t *testing.T) {
	allowed := map[string]string{"balance": "balance", "created_at": "created_at"}

	tests := []struct {
		name     string
		ordering string
		want     string
	}{
		{"empty falls back", "", "balance DESC"},
		{"ascending", "created_at", "created_at ASC"},
		{"descending", "-created_at", "created_at DESC"},
		{"unknown field falls back", "label", "balance DESC"},
		{"unknown descending falls back", "-label", "balance DESC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, orderClause(tt.ordering, allowed, "balance DESC"))
		})
	}
}

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		name         string
		page         int
		pageSize     int
		total        int64
		wantPage     int
		wantPageSize int
	}{
		{"defaults", 0, 0, 100, 1, 20},
		{"in range", 2, 10, 100, 2, 10},
		{"clamps to last page", 99, 10, 25, 3, 10},
		{"empty table", 5, 10, 0, 5, 10},
		{"exact boundary", 3, 10, 30, 3, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, pageSize := normalizePage(tt.page, tt.pageSize, tt.total)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantPageSize, pageSize)
		})
	}
}
