package entity

import "context"

// AnyVersion disables the optimistic concurrency check on Update.
const AnyVersion = -1

// LeadRepository persists the lead collection. Implementations must return
// leads newest first and treat a corrupt backing store as empty.
type LeadRepository interface {
	Open(ctx context.Context) error
	Close() error

	List(ctx context.Context) ([]*Lead, error)
	ReplaceAll(ctx context.Context, leads []*Lead) error
	Insert(ctx context.Context, lead *Lead) error
	FindByID(ctx context.Context, id string) (*Lead, error)

	// Update stores lead if the persisted version equals expectedVersion and
	// bumps lead.Version. It returns ErrVersionConflict otherwise.
	Update(ctx context.Context, lead *Lead, expectedVersion int) error
}
