package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	sf "github.com/snowflakedb/gosnowflake"

	"github.com/maternoscope/pipeline/config"
)

const connectTimeout = 30 * time.Second

// Warehouse wraps the Snowflake connection. Connection failure is fatal to
// the caller; everything downstream degrades per-operation instead.
type Warehouse struct {
	db *sql.DB
}

func Connect(cfg config.SnowflakeConfig) (*Warehouse, error) {
	dsn, err := sf.DSN(&sf.Config{
		Account:   cfg.Account,
		User:      cfg.User,
		Password:  cfg.Password,
		Warehouse: cfg.Warehouse,
		Database:  cfg.Database,
		Schema:    cfg.Schema,
		Role:      cfg.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("[Warehouse] Failed to build DSN: %w", err)
	}

	db, err := sql.Open("snowflake", dsn)
	if err != nil {
		return nil, fmt.Errorf("[Warehouse] Failed to open connection: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("[Warehouse] Failed to ping Snowflake: %w", err)
	}

	slog.Info("[Warehouse] Connected to Snowflake successfully",
		slog.String("database", cfg.Database),
		slog.String("schema", cfg.Schema))

	return &Warehouse{db: db}, nil
}

func (w *Warehouse) Close() {
	if w.db != nil {
		w.db.Close()
		slog.Info("[Warehouse] Snowflake connection closed")
	}
}

// TableExists reports whether a table is present in the current schema.
func (w *Warehouse) TableExists(ctx context.Context, table string) (bool, error) {
	var count int
	err := w.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_NAME = UPPER(?)`,
		table).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("[Warehouse] Failed to check table existence: %w", err)
	}
	return count > 0, nil
}

func (w *Warehouse) columnExists(ctx context.Context, table, column string) (bool, error) {
	var count int
	err := w.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM INFORMATION_SCHEMA.COLUMNS WHERE TABLE_NAME = UPPER(?) AND COLUMN_NAME = UPPER(?)`,
		table, column).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
