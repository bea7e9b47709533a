package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/xavierca1/leadfunnel/internal/entity"
)

type PlanRepository struct {
	DB *sql.DB
}

func NewPlanRepository(db *sql.DB) *PlanRepository {
	return &PlanRepository{DB: db}
}

func (r *PlanRepository) FindByID(ctx context.Context, id string) (*entity.Plan, error) {
	query := `SELECT id, name, price_cents, currency, interval, stripe_price_id FROM plans WHERE id = $1`

	var plan entity.Plan
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&plan.ID,
		&plan.Name,
		&plan.PriceCents,
		&plan.Currency,
		&plan.Interval,
		&plan.StripePriceID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrPlanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find plan %s: %w", id, err)
	}
	return &plan, nil
}

func (r *PlanRepository) List(ctx context.Context) ([]*entity.Plan, error) {
	query := `SELECT id, name, price_cents, currency, interval, stripe_price_id FROM plans ORDER BY price_cents`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	var plans []*entity.Plan
	for rows.Next() {
		var p entity.Plan
		if err := rows.Scan(&p.ID, &p.Name, &p.PriceCents, &p.Currency, &p.Interval, &p.StripePriceID); err != nil {
			return nil, err
		}
		plans = append(plans, &p)
	}
	return plans, rows.Err()
}

// Seed inserts plans that are not in the table yet. Existing rows are kept so
// prices edited in the database survive restarts.
func (r *PlanRepository) Seed(ctx context.Context, plans []*entity.Plan) error {
	query := `
		INSERT INTO plans (id, name, price_cents, currency, interval, stripe_price_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING`

	for _, p := range plans {
		if _, err := r.DB.ExecContext(ctx, query, p.ID, p.Name, p.PriceCents, p.Currency, p.Interval, p.StripePriceID); err != nil {
			return fmt.Errorf("seed plan %s: %w", p.ID, err)
		}
	}
	return nil
}
