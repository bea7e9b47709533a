package entity

import (
	"context"
	"errors"
)

var ErrPlanNotFound = errors.New("plan not found")

type Plan struct {
	ID            string `json:"id" yaml:"id"`
	Name          string `json:"name" yaml:"name"`
	PriceCents    int    `json:"price_cents" yaml:"price_cents"`
	Currency      string `json:"currency" yaml:"currency"`
	Interval      string `json:"interval" yaml:"interval"` // month, year, or empty for one-off
	StripePriceID string `json:"-" yaml:"stripe_price_id"`
}

// Recurring plans are billed as subscriptions.
func (p *Plan) Recurring() bool {
	return p.Interval != ""
}

type PlanRepository interface {
	FindByID(ctx context.Context, id string) (*Plan, error)
	List(ctx context.Context) ([]*Plan, error)
}
