package storage

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/camuig/tradebook/internal/logger"
)

const defaultSlowQuery = 200 * time.Millisecond

type dbOptions struct {
	log       *logger.Logger
	slowQuery time.Duration
}

// DBOption tunes NewDatabase and Open.
type DBOption func(*dbOptions)

// WithQueryLogger reports failed and slow SQL statements through log.
// Without it gorm stays silent.
func WithQueryLogger(log *logger.Logger) DBOption {
	return func(o *dbOptions) { o.log = log }
}

func WithSlowQueryThreshold(d time.Duration) DBOption {
	return func(o *dbOptions) { o.slowQuery = d }
}

// NewDatabase opens the SQLite file in WAL mode and migrates the journal tables.
func NewDatabase(dbPath string, opts ...DBOption) (*gorm.DB, error) {
	o := dbOptions{slowQuery: defaultSlowQuery}
	for _, opt := range opts {
		opt(&o)
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: o.gormLogger(),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	// The server and CLI commands may share one file.
	if _, err := sqlDB.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := db.AutoMigrate(&tradeRow{}, &settingsRow{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return db, nil
}

func (o dbOptions) gormLogger() gormlogger.Interface {
	if o.log == nil {
		return gormlogger.Default.LogMode(gormlogger.Silent)
	}
	return gormlogger.New(slogWriter{o.log}, gormlogger.Config{
		SlowThreshold:             o.slowQuery,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// slogWriter adapts gorm's Printf-style logger to slog.
type slogWriter struct {
	log *logger.Logger
}

func (w slogWriter) Printf(format string, args ...interface{}) {
	w.log.Warn("sql", "detail", strings.TrimSpace(fmt.Sprintf(format, args...)))
}
