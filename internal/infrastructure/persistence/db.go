package persistence

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/nutrimatch/backend/internal/infrastructure/logger"
)

// Supported database drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config selects and tunes the meal database
type Config struct {
	Driver       string
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
	Debug        bool
}

// Open connects to the configured database and migrates the meal tables
func Open(cfg Config, log *logger.Logger) (*gorm.DB, error) {
	if log == nil {
		log = logger.Nop()
	}

	var dialector gorm.Dialector
	switch strings.ToLower(cfg.Driver) {
	case DriverSQLite, "sqlite3", "":
		dialector = sqlite.Open(cfg.DSN)
	case DriverPostgres, "postgresql":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:  newGormLogger(log, cfg.Debug),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Info("database ready", "driver", dialector.Name())
	return db, nil
}

// gormWriter sends gorm's formatted lines to the service logger
type gormWriter struct {
	log   *logger.Logger
	debug bool
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if w.debug {
		w.log.Debug(msg)
		return
	}
	w.log.Warn(msg)
}

// newGormLogger logs slow queries and errors, plus every statement in debug mode
func newGormLogger(log *logger.Logger, debug bool) gormlogger.Interface {
	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}
	return gormlogger.New(
		gormWriter{log: log.With("component", "gorm"), debug: debug},
		gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

// Migrate creates or updates the meal tables
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&mealRow{}, &mealItemRow{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
