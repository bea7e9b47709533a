package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/xavierca1/leadfunnel/internal/entity"
)

var errClosed = errors.New("lead repository is closed")

// LeadRepository keeps the collection in process memory, newest first.
type LeadRepository struct {
	mu    sync.RWMutex
	open  bool
	leads []*entity.Lead
}

func NewLeadRepository() *LeadRepository {
	return &LeadRepository{}
}

func (r *LeadRepository) Open(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.open = true
	return nil
}

func (r *LeadRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.open = false
	return nil
}

func (r *LeadRepository) List(ctx context.Context) ([]*entity.Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.open {
		return nil, errClosed
	}

	out := make([]*entity.Lead, 0, len(r.leads))
	for _, l := range r.leads {
		out = append(out, l.Clone())
	}
	return out, nil
}

func (r *LeadRepository) ReplaceAll(ctx context.Context, leads []*entity.Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.open {
		return errClosed
	}

	next := make([]*entity.Lead, 0, len(leads))
	for _, l := range leads {
		next = append(next, l.Clone())
	}
	r.leads = next
	return nil
}

func (r *LeadRepository) Insert(ctx context.Context, lead *entity.Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.open {
		return errClosed
	}

	r.leads = append([]*entity.Lead{lead.Clone()}, r.leads...)
	return nil
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.open {
		return nil, errClosed
	}

	for _, l := range r.leads {
		if l.ID == id {
			return l.Clone(), nil
		}
	}
	return nil, entity.ErrLeadNotFound
}

func (r *LeadRepository) Update(ctx context.Context, lead *entity.Lead, expectedVersion int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.open {
		return errClosed
	}

	for i, l := range r.leads {
		if l.ID != lead.ID {
			continue
		}
		if expectedVersion != entity.AnyVersion && l.Version != expectedVersion {
			return entity.ErrVersionConflict
		}
		lead.Version = l.Version + 1
		r.leads[i] = lead.Clone()
		return nil
	}
	return entity.ErrLeadNotFound
}
