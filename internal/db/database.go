package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ikkim/catalog-backend/config"
	appLogger "github.com/ikkim/catalog-backend/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const pingTimeout = 5 * time.Second

var DB *gorm.DB

// Initialize opens the catalog database and sizes its connection pool.
func Initialize(cfg *config.DatabaseConfig) error {
	appLogger.Info("Connecting to catalog database", map[string]interface{}{
		"host":     cfg.Host,
		"port":     cfg.Port,
		"database": cfg.DBName,
		"user":     cfg.User,
	})

	database, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(gormLogLevel(cfg.LogLevel)),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := database.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	configurePool(sqlDB, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to reach database: %w", err)
	}

	DB = database
	appLogger.Info("Catalog database ready", map[string]interface{}{
		"max_idle_conns":    cfg.MaxIdleConns,
		"max_open_conns":    cfg.MaxOpenConns,
		"conn_max_lifetime": cfg.ConnMaxLifetime.String(),
		"gorm_log_level":    cfg.LogLevel,
	})
	return nil
}

func configurePool(sqlDB *sql.DB, cfg *config.DatabaseConfig) {
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
}

// gormLogLevel maps DB_LOG_LEVEL onto gorm's logger. Unknown values are silent.
func gormLogLevel(level string) logger.LogLevel {
	switch level {
	case "error":
		return logger.Error
	case "warn":
		return logger.Warn
	case "info":
		return logger.Info
	default:
		return logger.Silent
	}
}

// Close releases the pool. It is a no-op before Initialize succeeds.
func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}
