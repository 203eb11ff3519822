package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextFolioSequence(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		last   string
		width  int
		want   string
	}{
		{"first of the year", "SOL-2026-", "", 5, "SOL-2026-00001"},
		{"continues after last", "SOL-2026-", "SOL-2026-00007", 5, "SOL-2026-00008"},
		{"order folio width", "OC-202609-", "OC-202609-0012", 4, "OC-202609-0013"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := nextFolio(tt.prefix, tt.last, tt.width)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// Deleting a request releases its folio, but the number must stay burned:
// with SOL-2026-00001..00003 issued and 00002 deleted, the greatest surviving
// folio is still 00003, so the next one is 00004 rather than a reissued 00003
// that the unique index would reject.
func TestNextFolioSkipsNumbersFreedByDeletion(t *testing.T) {
	got, err := nextFolio("SOL-2026-", "SOL-2026-00003", 5)
	require.NoError(t, err)
	assert.Equal(t, "SOL-2026-00004", got)
}

func TestNextFolioMalformedLast(t *testing.T) {
	_, err := nextFolio("SOL-2026-", "SOL-2026-abc", 5)
	assert.Error(t, err)
}
