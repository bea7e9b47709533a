package database

import (
	"context"
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS leads (
	id                TEXT PRIMARY KEY,
	name              TEXT NOT NULL DEFAULT '',
	city              TEXT NOT NULL DEFAULT '',
	language          TEXT NOT NULL DEFAULT '',
	business_type     TEXT NOT NULL DEFAULT '',
	service           TEXT NOT NULL DEFAULT '',
	phone             TEXT NOT NULL DEFAULT '',
	whatsapp          TEXT NOT NULL DEFAULT '',
	email             TEXT NOT NULL DEFAULT '',
	instagram         TEXT NOT NULL DEFAULT '',
	facebook          TEXT NOT NULL DEFAULT '',
	linkedin          TEXT NOT NULL DEFAULT '',
	tiktok            TEXT NOT NULL DEFAULT '',
	source            TEXT NOT NULL,
	has_website       BOOLEAN NOT NULL DEFAULT FALSE,
	has_ordering      BOOLEAN NOT NULL DEFAULT FALSE,
	has_whatsapp      BOOLEAN NOT NULL DEFAULT FALSE,
	estimated_size    TEXT NOT NULL DEFAULT '',
	score             INTEGER NOT NULL,
	priority          TEXT NOT NULL,
	status            TEXT NOT NULL,
	last_channel      TEXT NOT NULL DEFAULT '',
	last_contacted_at TIMESTAMPTZ,
	last_replied_at   TIMESTAMPTZ,
	outreach_attempts INTEGER NOT NULL DEFAULT 0,
	notes             TEXT NOT NULL DEFAULT '',
	version           INTEGER NOT NULL DEFAULT 1,
	created_at        TIMESTAMPTZ NOT NULL,
	updated_at        TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_leads_created_at ON leads (created_at DESC);
CREATE INDEX IF NOT EXISTS idx_leads_status ON leads (status);

CREATE TABLE IF NOT EXISTS plans (
	id              TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	price_cents     INTEGER NOT NULL,
	currency        TEXT NOT NULL DEFAULT 'usd',
	interval        TEXT NOT NULL DEFAULT '',
	stripe_price_id TEXT NOT NULL
);
`

// InitSchema creates the tables used by the repositories when missing.
func InitSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
