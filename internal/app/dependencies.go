package app

import (
	"context"

	validator "github.com/go-playground/validator/v10"
	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/openagora/shipping-engine/internal/rates"
)

// Dependencies groups the shared infrastructure handed to handlers at wiring
// time.
type Dependencies struct {
	Context         context.Context
	DB              *pgxpool.Pool
	Redis           *redis.Client
	Validator       *validator.Validate
	Provider        *rates.Provider
	Logger          zerolog.Logger
	MetricsRegistry prometheus.Registerer
}

// NewValidator builds the request validator shared by all handlers.
func NewValidator() *validator.Validate {
	return validator.New()
}

// RunMigrations applies pending schema migrations, treating an up-to-date
// schema as success.
func RunMigrations(m *migrate.Migrate) error {
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}
