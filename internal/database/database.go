package database

import (
	"fmt"
	"time"

	"crescendo/pkg/models"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Database wraps a *gorm.DB providing the persistence gateway for albums,
// ratings, comments and users. It is safe for concurrent use because the
// underlying connection pool is concurrency-safe.
type Database struct {
	conn   *gorm.DB
	logger *logrus.Logger
}

// NewDatabase opens (or creates) a SQLite database at the provided path and
// migrates the schema. It also applies lightweight performance-oriented
// pragmas (WAL, foreign key enforcement). Caller should Close() it when
// finished.
func NewDatabase(dbPath string) (*Database, error) {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	conn, err := gorm.Open(sqlite.Open(dbPath+"?cache=shared&mode=rwc"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool - adjusted for SQLite
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(5) // SQLite works better with fewer connections
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(15 * time.Minute)

	// Enable WAL mode for better concurrency
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA cache_size=2000;",
		"PRAGMA temp_store=memory;",
		"PRAGMA foreign_keys=ON;", // Enable foreign key constraints
	}

	for _, pragma := range pragmas {
		if err := conn.Exec(pragma).Error; err != nil {
			logger.WithError(err).WithField("pragma", pragma).Warn("Failed to set pragma")
		}
	}

	db := &Database{
		conn:   conn,
		logger: logger,
	}

	if err := db.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	logger.WithField("db_path", dbPath).Info("Database initialized successfully")
	return db, nil
}

// migrate creates tables, foreign keys and indices if they do not already
// exist, including the unique (album_id, user_id) rating index. This is
// idempotent and safe to call multiple times.
func (db *Database) migrate() error {
	return db.conn.AutoMigrate(
		&models.User{},
		&models.Album{},
		&models.AlbumLink{},
		&models.Rating{},
		&models.Comment{},
	)
}

// Close closes the underlying connection pool.
func (db *Database) Close() error {
	sqlDB, err := db.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping verifies database connectivity, for health checks.
func (db *Database) Ping() error {
	sqlDB, err := db.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
