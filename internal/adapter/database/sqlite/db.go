package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	sqldblogger "github.com/simukti/sqldb-logger"
	"github.com/simukti/sqldb-logger/logadapter/zerologadapter"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"go.opentelemetry.io/otel"
)

//go:embed migrations/*.sql
var migrations embed.FS

// defaultParams serialises writers instead of failing with SQLITE_BUSY.
const defaultParams = "_busy_timeout=5000&_txlock=immediate&_foreign_keys=on"

type Options struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	LogQueries      bool
}

type DB struct {
	*sql.DB
	QueryBuilder *squirrel.StatementBuilderType
}

func NewDB(opts Options) (*DB, error) {
	dsn := opts.DSN

	if dsn == "" {
		return nil, errors.New("sqlite: empty data source name")
	}

	if !strings.Contains(dsn, "?") {
		dsn = dsn + "?" + defaultParams
	}

	sqlDB, err := otelsql.Open("sqlite3", dsn,
		otelsql.WithDBSystem("sqlite"),
		otelsql.WithDBName("todoitems"),
		otelsql.WithTracerProvider(otel.GetTracerProvider()),
	)

	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if opts.LogQueries {
		logger := zerolog.New(os.Stdout).With().Timestamp().Str("component", "sqlite").Logger()
		instrumented := sqlDB.Driver()
		_ = sqlDB.Close()

		// the query logger wraps the otelsql driver so spans are kept
		sqlDB = sqldblogger.OpenDriver(dsn, instrumented, zerologadapter.New(logger),
			sqldblogger.WithSQLQueryAsMessage(true),
		)
	}

	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}

	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}

	if opts.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	if err := RunMigrations(sqlDB); err != nil {
		sqlDB.Close()
		return nil, err
	}

	queryBuilder := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

	return &DB{
		DB:           sqlDB,
		QueryBuilder: &queryBuilder,
	}, nil
}

// RunMigrations applies the embedded schema. It runs on the same handle the
// application uses so in-memory databases see the tables.
func RunMigrations(db *sql.DB) error {
	source, err := iofs.New(migrations, "migrations")

	if err != nil {
		return fmt.Errorf("load sqlite migrations: %w", err)
	}

	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})

	if err != nil {
		return fmt.Errorf("create sqlite migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)

	if err != nil {
		return fmt.Errorf("create sqlite migration instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run sqlite migrations: %w", err)
	}

	return nil
}

// WithSession runs fn inside one transaction. The transaction is committed
// when fn returns nil and rolled back on error or panic.
func (db *DB) WithSession(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)

	if err != nil {
		return fmt.Errorf("begin session: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}

		if err != nil {
			_ = tx.Rollback()
			return
		}

		if commitErr := tx.Commit(); commitErr != nil {
			err = fmt.Errorf("commit session: %w", commitErr)
		}
	}()

	return fn(tx)
}

func (db *DB) Ping(ctx context.Context) error {
	return db.PingContext(ctx)
}
