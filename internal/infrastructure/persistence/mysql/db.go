package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/qj0r9j0vc2/slack-tableflip/internal/infrastructure/config"
)

// DB wraps a MySQL database connection with health checking.
type DB struct {
	primary *sql.DB
	replica *sql.DB
	config  *config.MySQLConfig
}

// NewDB creates a new MySQL database connection with connection pooling.
// It establishes connections to both primary and optional replica instances.
func NewDB(cfg *config.MySQLConfig) (*DB, error) {
	if cfg == nil {
		return nil, fmt.Errorf("mysql config is required")
	}

	dsn, err := primaryDSN(cfg)
	if err != nil {
		return nil, fmt.Errorf("building primary dsn: %w", err)
	}

	primary, err := open(dsn, cfg)
	if err != nil {
		return nil, fmt.Errorf("primary: %w", err)
	}

	db := &DB{
		primary: primary,
		config:  cfg,
	}

	// Set up replica if enabled
	if cfg.Replica.Enabled {
		replicaDSN := instanceDSN(config.MySQLInstanceConfig{
			Host:     cfg.Replica.Host,
			Port:     cfg.Replica.Port,
			Database: cfg.Replica.Database,
			Username: cfg.Replica.Username,
			Password: cfg.Replica.Password,
		}, cfg)

		replica, err := open(replicaDSN, cfg)
		if err != nil {
			primary.Close()
			return nil, fmt.Errorf("replica: %w", err)
		}
		db.replica = replica
	}

	return db, nil
}

// open opens, configures and pings one pool.
func open(dsn string, cfg *config.MySQLConfig) (*sql.DB, error) {
	conn, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening connection: %w", err)
	}

	conn.SetMaxOpenConns(cfg.Pool.MaxOpenConns)
	conn.SetMaxIdleConns(cfg.Pool.MaxIdleConns)
	conn.SetConnMaxLifetime(cfg.Pool.ConnMaxLifetime)
	conn.SetConnMaxIdleTime(cfg.Pool.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return conn, nil
}

// Primary returns the primary database connection for writes and consistent reads.
func (db *DB) Primary() *sql.DB {
	return db.primary
}

// Replica returns the replica database connection for reads, or primary if no replica is configured.
func (db *DB) Replica() *sql.DB {
	if db.replica != nil {
		return db.replica
	}
	return db.primary
}

// Ping checks connectivity to the database.
// It pings both primary and replica (if configured).
func (db *DB) Ping(ctx context.Context) error {
	if err := db.primary.PingContext(ctx); err != nil {
		return fmt.Errorf("primary ping failed: %w", err)
	}

	if db.replica != nil {
		if err := db.replica.PingContext(ctx); err != nil {
			return fmt.Errorf("replica ping failed: %w", err)
		}
	}

	return nil
}

// Close closes the database connections.
func (db *DB) Close() error {
	var primaryErr, replicaErr error

	if db.primary != nil {
		primaryErr = db.primary.Close()
	}

	if db.replica != nil {
		replicaErr = db.replica.Close()
	}

	if primaryErr != nil {
		return fmt.Errorf("closing primary: %w", primaryErr)
	}
	if replicaErr != nil {
		return fmt.Errorf("closing replica: %w", replicaErr)
	}

	return nil
}

// Stats returns database connection pool statistics.
type Stats struct {
	Primary DBStats
	Replica *DBStats
}

// DBStats holds connection pool statistics for a database instance.
type DBStats struct {
	MaxOpenConnections int
	OpenConnections    int
	InUse              int
	Idle               int
	WaitCount          int64
	WaitDuration       time.Duration
}

// Stats returns connection pool statistics for monitoring.
func (db *DB) Stats() Stats {
	stats := Stats{
		Primary: dbStatsFromSQL(db.primary.Stats()),
	}

	if db.replica != nil {
		replicaStats := dbStatsFromSQL(db.replica.Stats())
		stats.Replica = &replicaStats
	}

	return stats
}

func dbStatsFromSQL(s sql.DBStats) DBStats {
	return DBStats{
		MaxOpenConnections: s.MaxOpenConnections,
		OpenConnections:    s.OpenConnections,
		InUse:              s.InUse,
		Idle:               s.Idle,
		WaitCount:          s.WaitCount,
		WaitDuration:       s.WaitDuration,
	}
}
