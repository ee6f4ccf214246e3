// package repositories provides persistence layer implementations for all model types.
//
// Each repository wraps a *sql.DB for a specific entity type. Import-time writes go through
// the batch methods, which run against a caller-owned transaction so that an entire import
// commits or rolls back as one unit.
package repositories

import (
	"database/sql"
	"fmt"
	"strings"
)

// bulkPlaceholders builds the "(?, ...), (?, ...)" section of a multi-row INSERT for
// rows records of cols columns each.
func bulkPlaceholders(rows, cols int) string {
	row := "(" + strings.TrimSuffix(strings.Repeat("?, ", cols), ", ") + ")"
	parts := make([]string, rows)
	for i := range parts {
		parts[i] = row
	}
	return strings.Join(parts, ", ")
}

// rowsCreated reads the affected-row count from a bulk insert result.
func rowsCreated(result sql.Result) (int, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return int(n), nil
}
