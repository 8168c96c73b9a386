// Package store holds the connection helpers Admin/Employee (MySQL)
// and Auth/Synch (MongoDB) use to open their store handle, grounded on
// the teacher's orders/main.go (connectToMongoDB) and
// stock/store_postgres.go (NewPostgresStore) connect-then-ping idiom,
// adapted to the relational driver spec.md §6.2 actually names
// (MySQL, not Postgres).
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/kea-dealership/event-core/common/config"
)

// OpenMySQL opens a *sql.DB against cfg and verifies connectivity with
// a bounded ping. useRoot selects the credential pair: false uses the
// application role, true the root role, which reconcilers that write
// replicated state use per spec.md §6.2.
func OpenMySQL(ctx context.Context, cfg config.MySQLConfig, useRoot bool) (*sql.DB, error) {
	user, pass := cfg.AppUsername, cfg.AppPassword
	if useRoot {
		user, pass = cfg.RootUsername, cfg.RootPassword
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true", user, pass, cfg.Host, cfg.Port, cfg.Name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open mysql: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping mysql: %w", err)
	}

	return db, nil
}
