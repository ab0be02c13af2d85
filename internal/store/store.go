// Package store is the relational persistence layer: upsert-by-hash
// articles, deduplicated venues and events, and the paginated read queries
// behind the REST API.
package store

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/dalebar/viaductecho-backend/internal/logger"
	"github.com/dalebar/viaductecho-backend/internal/model"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("store: not found")
	// ErrDuplicate is returned when an insert hits a unique constraint.
	ErrDuplicate = errors.New("store: duplicate")
	// ErrVenueInUse rejects deleting a venue that events still reference.
	ErrVenueInUse = errors.New("store: venue has events")
	// ErrBadTransition rejects an illegal status change (ex: deleted -> active).
	ErrBadTransition = errors.New("store: illegal status transition")
)

// Store owns a single database connection, shared by every operation.
// There is no pooling discipline beyond what database/sql provides; the
// only lifecycle management is reconnect-on-detected-loss in run().
type Store struct {
	dsn string
	db  *gorm.DB
	log logger.Logger
}

// Open connects, migrates the schema and returns the store. The driver is
// chosen from the DSN: postgres:// URLs get the pgx driver, anything else
// is treated as a SQLite path (":memory:" works for tests).
func Open(dsn string, log logger.Logger) (*Store, error) {
	s := &Store{dsn: dsn, log: log}
	if err := s.connect(); err != nil {
		return nil, err
	}

	if err := s.db.AutoMigrate(&model.Article{}, &model.Venue{}, &model.Event{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	log.Info("database connection established")
	return s, nil
}

func (s *Store) connect() error {
	var dialector gorm.Dialector
	if strings.HasPrefix(s.dsn, "postgres://") || strings.HasPrefix(s.dsn, "postgresql://") {
		dialector = postgres.Open(s.dsn)
	} else {
		dialector = sqlite.Open(s.dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true, // unique violations surface as gorm.ErrDuplicatedKey
	})
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	s.db = db
	return nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping is the liveness probe used by run() and the health endpoint.
func (s *Store) Ping() error {
	return s.db.Exec("SELECT 1").Error
}

// run executes op with the store's reconnect policy: probe first, reconnect
// once if the probe or the operation reports a connectivity failure, retry
// the operation exactly once. A second failure propagates. This is the only
// resilience behavior in the system.
func (s *Store) run(op func(db *gorm.DB) error) error {
	if err := s.Ping(); err != nil {
		s.log.Warn("database probe failed, reconnecting", logger.Error(err))
		if rerr := s.connect(); rerr != nil {
			return fmt.Errorf("reconnect: %w", rerr)
		}
	}

	err := op(s.db)
	if err == nil || !isConnErr(err) {
		return err
	}

	s.log.Warn("database operation hit connection error, reconnecting once", logger.Error(err))
	if rerr := s.connect(); rerr != nil {
		return fmt.Errorf("reconnect: %w", rerr)
	}
	return op(s.db)
}

// isConnErr distinguishes connectivity failures (retryable via reconnect)
// from logical errors like constraint violations.
func isConnErr(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, probe := range []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"database is closed",
		"server closed the connection",
		"unexpected eof",
	} {
		if strings.Contains(msg, probe) {
			return true
		}
	}
	return false
}

// translate maps gorm sentinels onto the store's error taxonomy.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}
