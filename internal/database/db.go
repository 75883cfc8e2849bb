package database

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/iliyamo/theatre-booking-calendar/internal/config"
)

// Open connects to MySQL or Postgres, depending on cfg.DBDriver, and
// verifies the connection.
func Open(cfg config.Config) (*sqlx.DB, error) {
	dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}
	db, err := sqlx.Open(cfg.DBDriver, dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// DSN builds the driver-specific connection string.
func DSN(cfg config.Config) (string, error) {
	switch cfg.DBDriver {
	case config.DriverMySQL:
		mc := mysql.NewConfig()
		mc.User = cfg.DBUser
		mc.Passwd = cfg.DBPass
		mc.Net = "tcp"
		mc.Addr = cfg.DBHost + ":" + cfg.DBPort
		mc.DBName = cfg.DBName
		mc.ParseTime = true
		mc.Loc = time.UTC
		mc.Params = map[string]string{"charset": "utf8mb4"}
		return mc.FormatDSN(), nil
	case config.DriverPostgres:
		u := url.URL{
			Scheme:   "postgres",
			Host:     cfg.DBHost + ":" + cfg.DBPort,
			Path:     "/" + cfg.DBName,
			RawQuery: "sslmode=disable",
		}
		if cfg.DBPass != "" {
			u.User = url.UserPassword(cfg.DBUser, cfg.DBPass)
		} else {
			u.User = url.User(cfg.DBUser)
		}
		return u.String(), nil
	default:
		return "", fmt.Errorf("no SQL driver for %q", cfg.DBDriver)
	}
}
