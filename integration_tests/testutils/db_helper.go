package testutils

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// Tables in delete order.
var Tables = []string{"scores", "rounds", "players", "games"}

// TruncateAll empties every domain table.
func TruncateAll(ctx context.Context, db bun.IDB) error {
	for _, table := range Tables {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			return fmt.Errorf("failed to truncate %s: %w", table, err)
		}
	}
	return nil
}

// CountRows returns the number of rows in table.
func CountRows(ctx context.Context, db bun.IDB, table string) (int, error) {
	return db.NewSelect().Table(table).Count(ctx)
}

// RowCounts returns the row count of each of Tables, keyed by table name.
func RowCounts(ctx context.Context, db bun.IDB) (map[string]int, error) {
	out := make(map[string]int, len(Tables))
	for _, table := range Tables {
		n, err := CountRows(ctx, db, table)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		out[table] = n
	}
	return out, nil
}
