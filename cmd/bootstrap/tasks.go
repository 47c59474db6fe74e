package bootstrap

import (
	"context"
	"fmt"

	"clinic-booking/config"
	"clinic-booking/internal/infrastructure/database"
	"clinic-booking/internal/infrastructure/seed"
	"clinic-booking/internal/repository"
)

// Migrate applies (up) or rolls back (down, by steps) the embedded schema
func Migrate(cfg *config.Config, down bool, steps int) error {
	log := SetupLogger(cfg.App.LogLevel)

	migrator, err := database.NewMigrator(database.MigrationURL(cfg.DB), log)
	if err != nil {
		return err
	}
	defer migrator.Close()

	if down {
		return migrator.Down(steps)
	}
	return migrator.Up()
}

// Seed loads the default subject catalog and the first admin account
func Seed(ctx context.Context, cfg *config.Config) error {
	log := SetupLogger(cfg.App.LogLevel)

	db, err := database.NewPostgresConnection(cfg.DB, log.GetLevel())
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	seeder := seed.NewSeeder(db, log, repository.NewSubjectRepository(), repository.NewUserRepository())
	if err := seeder.Run(ctx, cfg.Seed); err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}
	return nil
}
