// Package catalog serves the plan catalog from YAML when no database holds it.
package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/xavierca1/leadfunnel/internal/entity"
)

//go:embed plans.yaml
var defaultPlans []byte

type file struct {
	Plans []entity.Plan `yaml:"plans"`
}

type PlanRepository struct {
	plans map[string]entity.Plan
	order []string
}

// Load reads the catalog from path, or the embedded default when path is empty.
func Load(path string) (*PlanRepository, error) {
	raw := defaultPlans
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read plan catalog: %w", err)
		}
		raw = b
	}
	return Parse(raw)
}

func Parse(raw []byte) (*PlanRepository, error) {
	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse plan catalog: %w", err)
	}

	r := &PlanRepository{plans: make(map[string]entity.Plan, len(f.Plans))}
	for _, p := range f.Plans {
		if p.ID == "" || p.StripePriceID == "" {
			return nil, fmt.Errorf("plan %q: id and stripe_price_id are required", p.Name)
		}
		if _, dup := r.plans[p.ID]; dup {
			return nil, fmt.Errorf("duplicate plan id %q", p.ID)
		}
		r.plans[p.ID] = p
		r.order = append(r.order, p.ID)
	}
	sort.SliceStable(r.order, func(i, j int) bool {
		return r.plans[r.order[i]].PriceCents < r.plans[r.order[j]].PriceCents
	})
	return r, nil
}

func (r *PlanRepository) FindByID(_ context.Context, id string) (*entity.Plan, error) {
	p, ok := r.plans[id]
	if !ok {
		return nil, entity.ErrPlanNotFound
	}
	return &p, nil
}

// List returns plans cheapest first, matching the database ordering.
func (r *PlanRepository) List(_ context.Context) ([]*entity.Plan, error) {
	out := make([]*entity.Plan, 0, len(r.order))
	for _, id := range r.order {
		p := r.plans[id]
		out = append(out, &p)
	}
	return out, nil
}
