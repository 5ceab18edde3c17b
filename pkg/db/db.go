package db

import (
	"fmt"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config holds database connection configuration
type Config struct {
	// URL is the database connection URL
	URL string
	// LogLevel set to "debug" enables SQL logging. Defaults to INSCRICAO_LOG_LEVEL.
	LogLevel string
}

// Connect establishes a database connection.
func Connect(cfg Config) (*gorm.DB, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	level := cfg.LogLevel
	if level == "" {
		level = os.Getenv("INSCRICAO_LOG_LEVEL")
	}

	// Default to silent logging unless debug is requested
	logMode := logger.Silent
	if level == "debug" {
		logMode = logger.Info
	}

	db, err := gorm.Open(
		postgres.New(postgres.Config{
			DSN:                  cfg.URL,
			PreferSimpleProtocol: true, // disables implicit prepared statement usage
		}),
		&gorm.Config{
			Logger:         logger.Default.LogMode(logMode),
			TranslateError: true,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// connect is replaced in tests.
var connect = Connect

// Pair holds the connections for reference data and for registrations.
// Both point to the same *gorm.DB when the URLs are equal.
type Pair struct {
	Reference *gorm.DB
	Users     *gorm.DB
}

// ConnectPair opens the reference and users databases, sharing a single
// connection pool when both URLs are the same.
func ConnectPair(referenceURL, usersURL string) (*Pair, error) {
	ref, err := connect(Config{URL: referenceURL})
	if err != nil {
		return nil, fmt.Errorf("reference database: %w", err)
	}
	if usersURL == referenceURL {
		return &Pair{Reference: ref, Users: ref}, nil
	}

	users, err := connect(Config{URL: usersURL})
	if err != nil {
		if sqlDB, dbErr := ref.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
		return nil, fmt.Errorf("users database: %w", err)
	}
	return &Pair{Reference: ref, Users: users}, nil
}

// Distinct returns each underlying connection once.
func (p *Pair) Distinct() []*gorm.DB {
	if p.Users == p.Reference {
		return []*gorm.DB{p.Reference}
	}
	return []*gorm.DB{p.Reference, p.Users}
}

// Close closes the underlying connection pools.
func (p *Pair) Close() error {
	var firstErr error
	for _, db := range p.Distinct() {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.Close()
		}
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
