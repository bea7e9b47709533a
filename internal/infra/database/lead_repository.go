package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/xavierca1/leadfunnel/internal/entity"
)

var ErrLeadExists = errors.New("lead id already exists")

const leadColumns = `id, name, city, language, business_type, service,
	phone, whatsapp, email, instagram, facebook, linkedin, tiktok, source,
	has_website, has_ordering, has_whatsapp, estimated_size, score, priority,
	status, last_channel, last_contacted_at, last_replied_at, outreach_attempts,
	notes, version, created_at, updated_at`

const upsertLeadQuery = `
	INSERT INTO leads (` + leadColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
	        $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29)
	ON CONFLICT (id) DO UPDATE SET
		name = EXCLUDED.name, city = EXCLUDED.city, language = EXCLUDED.language,
		business_type = EXCLUDED.business_type, service = EXCLUDED.service,
		phone = EXCLUDED.phone, whatsapp = EXCLUDED.whatsapp, email = EXCLUDED.email,
		instagram = EXCLUDED.instagram, facebook = EXCLUDED.facebook,
		linkedin = EXCLUDED.linkedin, tiktok = EXCLUDED.tiktok, source = EXCLUDED.source,
		has_website = EXCLUDED.has_website, has_ordering = EXCLUDED.has_ordering,
		has_whatsapp = EXCLUDED.has_whatsapp, estimated_size = EXCLUDED.estimated_size,
		score = EXCLUDED.score, priority = EXCLUDED.priority, status = EXCLUDED.status,
		last_channel = EXCLUDED.last_channel, last_contacted_at = EXCLUDED.last_contacted_at,
		last_replied_at = EXCLUDED.last_replied_at, outreach_attempts = EXCLUDED.outreach_attempts,
		notes = EXCLUDED.notes, version = EXCLUDED.version, updated_at = EXCLUDED.updated_at
`

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

func (r *LeadRepository) Open(ctx context.Context) error {
	if err := r.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres ping: %w", err)
	}
	return InitSchema(ctx, r.DB)
}

func (r *LeadRepository) Close() error {
	return r.DB.Close()
}

func (r *LeadRepository) List(ctx context.Context) ([]*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads ORDER BY created_at DESC, id DESC`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	leads := []*entity.Lead{}
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

// ReplaceAll upserts every lead and removes the ones not present, in one transaction.
func (r *LeadRepository) ReplaceAll(ctx context.Context, leads []*entity.Lead) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	ids := make([]string, 0, len(leads))
	for _, l := range leads {
		if _, err := tx.ExecContext(ctx, upsertLeadQuery, leadArgs(l)...); err != nil {
			return fmt.Errorf("upsert lead %s: %w", l.ID, err)
		}
		ids = append(ids, l.ID)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM leads WHERE id <> ALL($1)`, pq.Array(ids)); err != nil {
		return fmt.Errorf("prune leads: %w", err)
	}

	return tx.Commit()
}

func (r *LeadRepository) Insert(ctx context.Context, lead *entity.Lead) error {
	query := `INSERT INTO leads (` + leadColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
	        $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29)`

	_, err := r.DB.ExecContext(ctx, query, leadArgs(lead)...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrLeadExists
		}
		return fmt.Errorf("insert lead: %w", err)
	}
	return nil
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`

	lead, err := scanLead(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	return lead, err
}

func (r *LeadRepository) Update(ctx context.Context, lead *entity.Lead, expectedVersion int) error {
	query := `
		UPDATE leads SET
			name = $2, city = $3, language = $4, business_type = $5, service = $6,
			phone = $7, whatsapp = $8, email = $9, instagram = $10, facebook = $11,
			linkedin = $12, tiktok = $13, source = $14, has_website = $15,
			has_ordering = $16, has_whatsapp = $17, estimated_size = $18, score = $19,
			priority = $20, status = $21, last_channel = $22, last_contacted_at = $23,
			last_replied_at = $24, outreach_attempts = $25, notes = $26,
			version = version + 1, updated_at = $27
		WHERE id = $1 AND ($28 = -1 OR version = $28)
		RETURNING version
	`

	l := lead
	var newVersion int
	err := r.DB.QueryRowContext(ctx, query,
		l.ID, l.Name, l.City, string(l.Language), l.BusinessType, l.Service,
		l.Contact.Phone, l.Contact.WhatsApp, l.Contact.Email,
		l.Socials.Instagram, l.Socials.Facebook, l.Socials.LinkedIn, l.Socials.TikTok,
		string(l.Source), l.Qualification.HasWebsite, l.Qualification.HasOrdering,
		l.Qualification.HasWhatsApp, string(l.Qualification.EstimatedSize),
		l.Score, string(l.Priority), string(l.Status), string(l.LastChannel),
		nullTime(l.LastContactedAt), nullTime(l.LastRepliedAt), l.OutreachAttempts,
		l.Notes, l.UpdatedAt, expectedVersion,
	).Scan(&newVersion)

	if errors.Is(err, sql.ErrNoRows) {
		var exists bool
		if err := r.DB.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM leads WHERE id = $1)`, l.ID).Scan(&exists); err != nil {
			return fmt.Errorf("check lead %s: %w", l.ID, err)
		}
		if !exists {
			return entity.ErrLeadNotFound
		}
		return entity.ErrVersionConflict
	}
	if err != nil {
		return fmt.Errorf("update lead %s: %w", l.ID, err)
	}

	lead.Version = newVersion
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	var (
		l                              entity.Lead
		language, source, size         string
		priority, status, channel      string
		lastContactedAt, lastRepliedAt sql.NullTime
	)

	err := row.Scan(
		&l.ID, &l.Name, &l.City, &language, &l.BusinessType, &l.Service,
		&l.Contact.Phone, &l.Contact.WhatsApp, &l.Contact.Email,
		&l.Socials.Instagram, &l.Socials.Facebook, &l.Socials.LinkedIn, &l.Socials.TikTok,
		&source, &l.Qualification.HasWebsite, &l.Qualification.HasOrdering,
		&l.Qualification.HasWhatsApp, &size, &l.Score, &priority, &status, &channel,
		&lastContactedAt, &lastRepliedAt, &l.OutreachAttempts, &l.Notes, &l.Version,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	l.Language = entity.Language(language)
	l.Source = entity.Source(source)
	l.Qualification.EstimatedSize = entity.Size(size)
	l.Priority = entity.Priority(priority)
	l.Status = entity.Status(status)
	l.LastChannel = entity.Channel(channel)
	if lastContactedAt.Valid {
		t := lastContactedAt.Time
		l.LastContactedAt = &t
	}
	if lastRepliedAt.Valid {
		t := lastRepliedAt.Time
		l.LastRepliedAt = &t
	}

	return &l, nil
}

func leadArgs(l *entity.Lead) []any {
	return []any{
		l.ID, l.Name, l.City, string(l.Language), l.BusinessType, l.Service,
		l.Contact.Phone, l.Contact.WhatsApp, l.Contact.Email,
		l.Socials.Instagram, l.Socials.Facebook, l.Socials.LinkedIn, l.Socials.TikTok,
		string(l.Source), l.Qualification.HasWebsite, l.Qualification.HasOrdering,
		l.Qualification.HasWhatsApp, string(l.Qualification.EstimatedSize),
		l.Score, string(l.Priority), string(l.Status), string(l.LastChannel),
		nullTime(l.LastContactedAt), nullTime(l.LastRepliedAt), l.OutreachAttempts,
		l.Notes, l.Version, l.CreatedAt, l.UpdatedAt,
	}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
