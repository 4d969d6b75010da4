package migrate

import (
	"context"
	"database/sql"
)

// Migration is one forward/backward schema change.
type Migration interface {
	Version() string
	Up(ctx context.Context, db *sql.DB) error
	Down(ctx context.Context, db *sql.DB) error
}

// All lists every migration in application order.
func All() []Migration {
	return []Migration{
		&CreateCoreTables{},
	}
}

// Up applies every migration in order.
func Up(ctx context.Context, db *sql.DB) error {
	for _, m := range All() {
		if err := m.Up(ctx, db); err != nil {
			return err
		}
	}
	return nil
}

// Down rolls back every migration in reverse order.
func Down(ctx context.Context, db *sql.DB) error {
	all := All()
	for i := len(all) - 1; i >= 0; i-- {
		if err := all[i].Down(ctx, db); err != nil {
			return err
		}
	}
	return nil
}
