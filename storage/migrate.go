package storage

import (
	"embed"
	"errors"
	"fmt"

	"deptsurvey/models"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

//go:embed migrations
var dbMigrations embed.FS

// Migrate brings the schema up to date. Postgres runs the embedded SQL
// migrations; SQLite is created from the models.
func Migrate(db *gorm.DB, log *logrus.Logger) error {
	if db.Dialector.Name() != "postgres" {
		return AutoMigrate(db)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	src, err := iofs.New(dbMigrations, "migrations")
	if err != nil {
		return err
	}
	dst, err := migratepg.WithInstance(sqlDB, &migratepg.Config{})
	if err != nil {
		return err
	}
	migrator, err := migrate.NewWithInstance("iofs", src, "postgres", dst)
	if err != nil {
		return err
	}

	err = migrator.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		log.Debug("database schema already up to date")
	case err != nil:
		return fmt.Errorf("failed to run migrations: %w", err)
	default:
		version, _, _ := migrator.Version()
		log.WithField("version", version).Info("database migrated")
	}
	return nil
}

// AutoMigrate creates every table from the models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Department{},
		&models.User{},
		&models.Permission{},
		&models.Survey{},
		&models.Question{},
		&models.Option{},
		&models.SurveySubmission{},
		&models.Answer{},
		&models.RemarkResponse{},
		&models.PasswordResetToken{},
	)
}
