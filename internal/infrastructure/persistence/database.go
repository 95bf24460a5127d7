package persistence

import (
	"fmt"
	"time"

	"github.com/erp/kernel/internal/infrastructure/config"
	"github.com/erp/kernel/internal/infrastructure/logger"
	"github.com/erp/kernel/internal/infrastructure/persistence/models"
	"github.com/erp/kernel/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Database holds the kernel's gorm connection
type Database struct {
	DB     *gorm.DB
	driver string
}

// Option configures database bootstrap
type Option func(*options)

type options struct {
	logger    *zap.Logger
	logLevel  gormlogger.LogLevel
	slowQuery time.Duration
	tracing   *telemetry.DBTracingConfig
}

// WithLogger routes gorm's statement log through zap at the given level
func WithLogger(l *zap.Logger, level gormlogger.LogLevel) Option {
	return func(o *options) {
		o.logger = l
		o.logLevel = level
	}
}

// WithSlowQueryThreshold sets the duration above which statements log as slow
func WithSlowQueryThreshold(d time.Duration) Option {
	return func(o *options) {
		o.slowQuery = d
	}
}

// WithTracing installs otelgorm spans on every statement
func WithTracing(cfg telemetry.DBTracingConfig) Option {
	return func(o *options) {
		o.tracing = &cfg
	}
}

// Open connects to PostgreSQL or SQLite according to cfg and applies the
// pool settings. SQLite databases get their schema through AutoMigrate;
// PostgreSQL relies on the embedded migrations.
func Open(cfg *config.DatabaseConfig, opts ...Option) (*Database, error) {
	o := applyOptions(opts)

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres", "":
		dialector = postgres.Open(cfg.DSN())
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := openDialector(dialector, o)
	if err != nil {
		return nil, err
	}
	d := &Database{DB: db, driver: cfg.Driver}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if cfg.Driver == "sqlite" {
		// a single connection keeps ":memory:" databases shared and serialises writers
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
		sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if cfg.Driver == "sqlite" {
		if err := d.AutoMigrate(); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// OpenDialector opens an already configured dialector; used with sqlmock and
// by tests that bring their own connection
func OpenDialector(dialector gorm.Dialector, opts ...Option) (*Database, error) {
	o := applyOptions(opts)
	db, err := openDialector(dialector, o)
	if err != nil {
		return nil, err
	}
	return &Database{DB: db, driver: dialector.Name()}, nil
}

func applyOptions(opts []Option) options {
	o := options{logger: zap.NewNop(), logLevel: gormlogger.Silent, slowQuery: 200 * time.Millisecond}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func openDialector(dialector gorm.Dialector, o options) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 logger.NewGormLogger(o.logger, o.logLevel, logger.WithSlowThreshold(o.slowQuery)),
		SkipDefaultTransaction: true,
		TranslateError:         true,
		NowFunc:                func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if o.tracing != nil {
		if err := telemetry.RegisterDBTracing(db, *o.tracing, o.logger); err != nil {
			return nil, fmt.Errorf("failed to register db tracing: %w", err)
		}
	}
	return db, nil
}

// AutoMigrate creates or updates every kernel table from the gorm models
func (d *Database) AutoMigrate() error {
	if err := d.DB.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Driver returns the dialect name the database was opened with
func (d *Database) Driver() string {
	return d.driver
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Ping checks if the database connection is alive
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Ping()
}

// Stats returns connection pool statistics
func (d *Database) Stats() (ConnectionStats, error) {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return ConnectionStats{}, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	stats := sqlDB.Stats()
	return ConnectionStats{
		MaxOpenConnections: stats.MaxOpenConnections,
		OpenConnections:    stats.OpenConnections,
		InUse:              stats.InUse,
		Idle:               stats.Idle,
		WaitCount:          stats.WaitCount,
		WaitDuration:       stats.WaitDuration,
	}, nil
}

// ConnectionStats holds database connection pool statistics
type ConnectionStats struct {
	MaxOpenConnections int
	OpenConnections    int
	InUse              int
	Idle               int
	WaitCount          int64
	WaitDuration       time.Duration
}
