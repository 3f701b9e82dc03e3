package database

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/camden-git/labelloopbackend/config"
	"github.com/camden-git/labelloopbackend/logging"
	"github.com/camden-git/labelloopbackend/models"
)

// dialectorFor picks the gorm dialector for the configured driver
func dialectorFor(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case config.DriverSQLite:
		return sqlite.Open(dsn), nil
	case config.DriverMySQL:
		return mysql.Open(dsn), nil
	case config.DriverPostgres:
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// InitGormDB initializes and returns a GORM database instance
func InitGormDB(cfg config.Config) (*gorm.DB, error) {
	return Open(cfg.DatabaseDriver, cfg.DSN(), cfg.Debug)
}

// Open connects to driver/dsn and configures the connection pool
func Open(driver, dsn string, debug bool) (*gorm.DB, error) {
	dialector, err := dialectorFor(driver, dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logging.NewGormLogger(debug),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database using GORM: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB from GORM: %w", err)
	}

	if driver == config.DriverSQLite {
		// a single writer avoids "database is locked" under concurrent requests
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)

	logging.Named("database").Infof("GORM database initialized (driver: %s)", driver)
	return db, nil
}

// AutoMigrateModels creates or updates the schema for every entity
func AutoMigrateModels(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Dataset{},
		&models.Label{},
		&models.Image{},
		&models.Annotation{},
	)
	if err != nil {
		return fmt.Errorf("GORM AutoMigrate failed: %w", err)
	}
	logging.Named("database").Info("GORM AutoMigrate completed successfully.")
	return nil
}

// Ping runs a trivial round-trip query and reports how long it took
func Ping(ctx context.Context, db *gorm.DB) (time.Duration, error) {
	start := time.Now()
	var value int
	if err := db.WithContext(ctx).Raw("SELECT 1").Scan(&value).Error; err != nil {
		return 0, fmt.Errorf("database ping failed: %w", err)
	}
	elapsed := time.Since(start)
	if value != 1 {
		return elapsed, fmt.Errorf("unexpected database response: %d", value)
	}
	return elapsed, nil
}

// Close releases the underlying connection pool
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
