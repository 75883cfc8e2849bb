package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const mysqlSchema = `CREATE TABLE IF NOT EXISTS bookings (
	id                VARCHAR(36)  NOT NULL PRIMARY KEY,
	date              BIGINT       NOT NULL,
	day               VARCHAR(16)  NOT NULL DEFAULT '',
	venue             VARCHAR(255) NOT NULL DEFAULT '',
	ukt_venue         VARCHAR(255) NOT NULL DEFAULT '',
	affiliate_venue   VARCHAR(255) NOT NULL DEFAULT '',
	other_venue       VARCHAR(255) NOT NULL DEFAULT '',
	venue_is_tba      BOOLEAN      NOT NULL DEFAULT FALSE,
	title_of_show     VARCHAR(255) NOT NULL DEFAULT '',
	show_title_is_tba BOOLEAN      NOT NULL DEFAULT FALSE,
	p                 BOOLEAN      NOT NULL DEFAULT FALSE,
	is_season_gala    BOOLEAN      NOT NULL DEFAULT FALSE,
	is_opera_dance    BOOLEAN      NOT NULL DEFAULT FALSE,
	producer          VARCHAR(255) NOT NULL,
	press_contact     VARCHAR(255) NOT NULL,
	user_id           VARCHAR(255) NOT NULL DEFAULT '',
	date_bkd          VARCHAR(255) NOT NULL DEFAULT '',
	time_stamp        BIGINT       NOT NULL DEFAULT 0,
	created_at        BIGINT       NOT NULL,
	extra             TEXT         NOT NULL,
	INDEX idx_bookings_date (date)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

const postgresSchema = `CREATE TABLE IF NOT EXISTS bookings (
	id                VARCHAR(36)  PRIMARY KEY,
	date              BIGINT       NOT NULL,
	day               VARCHAR(16)  NOT NULL DEFAULT '',
	venue             VARCHAR(255) NOT NULL DEFAULT '',
	ukt_venue         VARCHAR(255) NOT NULL DEFAULT '',
	affiliate_venue   VARCHAR(255) NOT NULL DEFAULT '',
	other_venue       VARCHAR(255) NOT NULL DEFAULT '',
	venue_is_tba      BOOLEAN      NOT NULL DEFAULT FALSE,
	title_of_show     VARCHAR(255) NOT NULL DEFAULT '',
	show_title_is_tba BOOLEAN      NOT NULL DEFAULT FALSE,
	p                 BOOLEAN      NOT NULL DEFAULT FALSE,
	is_season_gala    BOOLEAN      NOT NULL DEFAULT FALSE,
	is_opera_dance    BOOLEAN      NOT NULL DEFAULT FALSE,
	producer          VARCHAR(255) NOT NULL,
	press_contact     VARCHAR(255) NOT NULL,
	user_id           VARCHAR(255) NOT NULL DEFAULT '',
	date_bkd          VARCHAR(255) NOT NULL DEFAULT '',
	time_stamp        BIGINT       NOT NULL DEFAULT 0,
	created_at        BIGINT       NOT NULL,
	extra             TEXT         NOT NULL DEFAULT '{}'
)`

const postgresIndex = `CREATE INDEX IF NOT EXISTS idx_bookings_date ON bookings (date)`

// InitialiseDB creates the bookings table if it does not exist.
func InitialiseDB(ctx context.Context, db *sqlx.DB) error {
	stmts := []string{mysqlSchema}
	if db.DriverName() == "postgres" {
		stmts = []string{postgresSchema, postgresIndex}
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("creating bookings table: %w", err)
		}
	}
	return nil
}
