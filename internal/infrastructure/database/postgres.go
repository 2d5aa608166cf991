package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"photovault-backend/internal/config"
	"photovault-backend/pkg/logger"
)

// PostgresDB wraps a pgx connection pool.
type PostgresDB struct {
	Pool   *pgxpool.Pool
	config config.DatabaseConfig
}

func NewPostgresDB(cfg config.DatabaseConfig) *PostgresDB {
	return &PostgresDB{config: cfg}
}

// Connect establishes the pool, retrying with backoff so the API survives a
// database that comes up slower than the app container.
func (db *PostgresDB) Connect(ctx context.Context) error {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		db.config.Host, db.config.Port, db.config.User,
		db.config.Password, db.config.Database, db.config.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = int32(db.config.MaxConns)
	poolConfig.MinConns = int32(db.config.MinConns)
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	backoff := time.Second
	for attempt := 1; ; attempt++ {
		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				db.Pool = pool
				logger.Info("database connected", map[string]interface{}{
					"host":      db.config.Host,
					"database":  db.config.Database,
					"max_conns": db.config.MaxConns,
				})
				return nil
			}
			pool.Close()
		}

		if attempt >= 5 {
			return fmt.Errorf("failed to connect to database after %d attempts: %w", attempt, err)
		}

		logger.Warn("database connection failed, retrying", map[string]interface{}{
			"attempt": attempt,
			"backoff": backoff.String(),
		})

		select {
		case <-ctx.Done():
			return fmt.Errorf("database connect canceled: %w", ctx.Err())
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}

// HealthCheck verifies the pool still reaches the server.
func (db *PostgresDB) HealthCheck(ctx context.Context) error {
	if db.Pool == nil {
		return fmt.Errorf("database pool is not initialized")
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.Pool.Ping(pingCtx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// Close drains and closes the pool. Safe to call more than once.
func (db *PostgresDB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
		db.Pool = nil
	}
}
