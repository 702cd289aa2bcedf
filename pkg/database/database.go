package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// Drivers accepted by New.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

type Options struct {
	Driver          string
	DataSource      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	RetryAttempts   int
	RetryDelay      time.Duration
	MaxRetryDelay   time.Duration
	OnRetry         func(err error, wait time.Duration)
}

type Option func(*Options)

func WithDriver(driver string) Option {
	return func(o *Options) { o.Driver = driver }
}

func WithDataSource(dsn string) Option {
	return func(o *Options) { o.DataSource = dsn }
}

func WithMaxOpenConns(count int) Option {
	return func(o *Options) { o.MaxOpenConns = count }
}

func WithMaxIdleConns(count int) Option {
	return func(o *Options) { o.MaxIdleConns = count }
}

func WithConnMaxLifetime(duration time.Duration) Option {
	return func(o *Options) { o.ConnMaxLifetime = duration }
}

func WithConnMaxIdleTime(duration time.Duration) Option {
	return func(o *Options) { o.ConnMaxIdleTime = duration }
}

// WithRetry sets the number of connection attempts and the initial wait
// between them. Waits grow exponentially up to MaxRetryDelay.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(o *Options) {
		o.RetryAttempts = attempts
		o.RetryDelay = delay
	}
}

// WithRetryNotify registers a callback invoked before each retry wait.
func WithRetryNotify(fn func(err error, wait time.Duration)) Option {
	return func(o *Options) { o.OnRetry = fn }
}

// New creates a new database connection pool using the provided options.
func New(opts ...Option) (*sql.DB, error) {
	return NewContext(context.Background(), opts...)
}

// NewContext is New with a context bounding the connection retries.
func NewContext(ctx context.Context, opts ...Option) (*sql.DB, error) {
	options := &Options{
		Driver:          DriverSQLite,
		DataSource:      ":memory:",
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 2 * time.Minute,
		RetryAttempts:   3,
		RetryDelay:      time.Second,
		MaxRetryDelay:   10 * time.Second,
	}

	for _, opt := range opts {
		opt(options)
	}

	if options.Driver == "" {
		return nil, fmt.Errorf("database driver cannot be empty")
	}
	if options.Driver != DriverSQLite && options.Driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported database driver %q", options.Driver)
	}
	if options.DataSource == "" {
		return nil, fmt.Errorf("database data source cannot be empty")
	}
	if options.RetryAttempts < 1 {
		options.RetryAttempts = 1
	}

	var db *sql.DB
	connect := func() error {
		conn, err := sql.Open(options.Driver, options.DataSource)
		if err != nil {
			return backoff.Permanent(err)
		}
		conn.SetMaxOpenConns(options.MaxOpenConns)
		conn.SetMaxIdleConns(options.MaxIdleConns)
		conn.SetConnMaxLifetime(options.ConnMaxLifetime)
		conn.SetConnMaxIdleTime(options.ConnMaxIdleTime)

		if err := conn.PingContext(ctx); err != nil {
			conn.Close()
			return err
		}
		db = conn
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = options.RetryDelay
	policy.MaxInterval = options.MaxRetryDelay
	policy.MaxElapsedTime = 0

	retry := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(options.RetryAttempts-1)), ctx)
	if err := backoff.RetryNotify(connect, retry, options.OnRetry); err != nil {
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", options.RetryAttempts, err)
	}
	return db, nil
}
