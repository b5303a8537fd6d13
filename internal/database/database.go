package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/jesseruhland/SBUnit26TwitterClone/internal/config"
)

// Connect opens the postgres database described by the configuration.
func Connect(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	logrus.Info("Connected to database successfully")
	return db, nil
}
