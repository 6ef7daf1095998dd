package initializers

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/lib/pq"
)

// ConnectDB opens the connection pool and verifies it is reachable. The
// returned *sql.DB is owned by the caller and must be closed on shutdown.
func ConnectDB(ctx context.Context, dsn string) (*goqu.Database, *sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database, %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to reach database, %w", err)
	}

	return goqu.New("postgres", db), db, nil
}
