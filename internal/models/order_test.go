package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidStatus(t *testing.T) {
	for _, s := range []string{StatusPending, StatusConfirmed, StatusPreparing, StatusReady, StatusCompleted, StatusCancelled} {
		assert.True(t, ValidStatus(s), s)
	}
	assert.False(t, ValidStatus("exotique"))
	assert.False(t, ValidStatus(""))
	// failed est purement local, jamais accepté sur le fil
	assert.False(t, ValidStatus(StatusFailed))
}

func TestOrdersMetadataRecompute(t *testing.T) {
	tests := []struct {
		total, perPage, want int
	}{
		{0, 10, 1},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 10, 3},
		{5, 0, 1},
	}

	for _, tt := range tests {
		m := OrdersMetadata{TotalCount: tt.total, PerPage: tt.perPage}
		m.Recompute()
		assert.Equal(t, tt.want, m.TotalPages, "total=%d per_page=%d", tt.total, tt.perPage)
	}
}
