package repository

import (
	"fmt"
	"strconv"
	"strings"
)

// nextFolio derives the next folio in a zero-padded sequence from the greatest
// folio already issued under prefix (empty when none exist yet). Deriving from
// the maximum instead of the row count means numbers freed by deleted rows are
// never reissued, so the unique index on folio cannot be violated. Callers
// must hold the advisory lock for the prefix.
func nextFolio(prefix, last string, width int) (string, error) {
	seq := 0
	if last != "" {
		n, err := strconv.Atoi(strings.TrimPrefix(last, prefix))
		if err != nil {
			return "", fmt.Errorf("malformed folio %q for prefix %q: %w", last, prefix, err)
		}
		seq = n
	}
	return fmt.Sprintf("%s%0*d", prefix, width, seq+1), nil
}
