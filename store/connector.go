package store

import (
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver (pgx)
	_ "github.com/mattn/go-sqlite3"    // SQLite driver
)

// Dialect is a supported database dialect.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectMySQL    Dialect = "mysql"
	DialectSQLite   Dialect = "sqlite"
)

// PoolSettings defines database connection pool configuration
type PoolSettings struct {
	MaxOpenConns    int // Maximum number of open connections
	MaxIdleConns    int // Maximum number of idle connections
	ConnMaxLifetime int // Maximum lifetime of connections in seconds
}

// DefaultPoolSettings returns the pool settings used when none are given.
func DefaultPoolSettings() PoolSettings {
	return PoolSettings{
		MaxOpenConns:    25,
		MaxIdleConns:    25,
		ConnMaxLifetime: 300, // 5 minutes
	}
}

// ParseDialect extracts the dialect from a connection URL.
func ParseDialect(databaseURL string) (Dialect, error) {
	if databaseURL == "" {
		return "", ErrEmptyDatabaseURL
	}

	u, err := url.Parse(databaseURL)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidDatabaseURL, err)
	}

	switch u.Scheme {
	case "postgres", "postgresql":
		return DialectPostgres, nil
	case "mysql":
		return DialectMySQL, nil
	case "sqlite", "sqlite3":
		return DialectSQLite, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedDatabase, u.Scheme)
	}
}

// connect validates databaseURL, converts it to the driver's DSN and opens a
// pooled connection.
func connect(databaseURL string, pool PoolSettings) (*sql.DB, Dialect, error) {
	dialect, err := ParseDialect(databaseURL)
	if err != nil {
		return nil, "", err
	}

	dsn, err := driverDSN(databaseURL, dialect)
	if err != nil {
		return nil, "", err
	}

	db, err := sql.Open(driverName(dialect), dsn)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	db.SetMaxOpenConns(pool.MaxOpenConns)
	db.SetMaxIdleConns(pool.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(pool.ConnMaxLifetime) * time.Second)

	return db, dialect, nil
}

func driverDSN(databaseURL string, dialect Dialect) (string, error) {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidDatabaseURL, err)
	}

	switch dialect {
	case DialectPostgres:
		if u.Host == "" || strings.TrimPrefix(u.Path, "/") == "" {
			return "", fmt.Errorf("%w: host and database are required", ErrInvalidDatabaseURL)
		}

		// pgx accepts the URL as is
		u.Scheme = "postgres"

		query := u.Query()
		if query.Get("sslmode") == "" {
			query.Set("sslmode", "disable")
			u.RawQuery = query.Encode()
		}

		return u.String(), nil

	case DialectMySQL:
		if u.Host == "" || strings.TrimPrefix(u.Path, "/") == "" {
			return "", fmt.Errorf("%w: host and database are required", ErrInvalidDatabaseURL)
		}

		// go-sql-driver/mysql format: user:pass@tcp(host:port)/db?params
		var dsn strings.Builder

		if u.User != nil {
			dsn.WriteString(u.User.Username())

			if password, ok := u.User.Password(); ok {
				dsn.WriteString(":" + password)
			}

			dsn.WriteString("@")
		}

		host := u.Host
		if u.Port() == "" {
			host += ":3306"
		}

		dsn.WriteString("tcp(" + host + ")/" + strings.TrimPrefix(u.Path, "/"))

		if u.RawQuery != "" {
			dsn.WriteString("?" + u.RawQuery)
		}

		return dsn.String(), nil

	case DialectSQLite:
		var path string
		if u.Host == "" {
			// sqlite:///path/to/db.db format
			path = u.Path
		} else {
			// sqlite://./db.db format
			path = u.Host + u.Path
		}

		if path == "" {
			return "", fmt.Errorf("%w: database path is required", ErrInvalidDatabaseURL)
		}

		if u.RawQuery != "" {
			path += "?" + u.RawQuery
		}

		return path, nil

	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedDatabase, dialect)
	}
}

func driverName(dialect Dialect) string {
	switch dialect {
	case DialectPostgres:
		return "pgx"
	case DialectMySQL:
		return "mysql"
	case DialectSQLite:
		return "sqlite3"
	default:
		return ""
	}
}

// rebind rewrites '?' placeholders to the dialect's style.
func rebind(dialect Dialect, query string) string {
	if dialect != DialectPostgres {
		return query
	}

	var (
		b strings.Builder
		n int
	)

	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)

			continue
		}

		b.WriteRune(r)
	}

	return b.String()
}
