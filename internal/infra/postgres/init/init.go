package infra_pg_init

import (
	"context"
	"fmt"
	"log"

	"github.com/humanbelnik/livepoll/internal/config"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS polls (
	id          UUID PRIMARY KEY,
	name        TEXT NOT NULL,
	questions   JSONB NOT NULL DEFAULT '[]'::jsonb,
	status      TEXT NOT NULL DEFAULT 'paused',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS poll_votes (
	poll_id         UUID NOT NULL REFERENCES polls(id) ON DELETE CASCADE,
	question_index  INTEGER NOT NULL,
	option_text     TEXT NOT NULL,
	count           INTEGER NOT NULL DEFAULT 0 CHECK (count >= 0),
	PRIMARY KEY (poll_id, question_index, option_text)
);
`

func DSN(cfg config.Postgres) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.DBName,
		cfg.SSLMode,
	)
}

func MustEstablishConn(cfg config.Postgres) *sqlx.DB {
	db, err := sqlx.Connect("postgres", DSN(cfg))
	if err != nil {
		log.Fatal(err)
	}

	return db
}

// Migrate creates the poll tables if they are missing.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

func MustMigrate(ctx context.Context, db *sqlx.DB) {
	if err := Migrate(ctx, db); err != nil {
		log.Fatal(err)
	}
}
