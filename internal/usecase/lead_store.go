package usecase

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/leadfunnel/internal/entity"
)

type ConflictPolicy string

const (
	// ConflictRetry re-reads the lead and re-applies the mutation.
	ConflictRetry ConflictPolicy = "retry"
	// ConflictFail surfaces entity.ErrVersionConflict to the caller.
	ConflictFail ConflictPolicy = "fail"
	// ConflictLastWriterWins writes without a version check.
	ConflictLastWriterWins ConflictPolicy = "last_writer_wins"
)

// LeadStore is the lead record store: the only component that reads or writes
// the lead collection.
type LeadStore struct {
	Repo       entity.LeadRepository
	Policy     ConflictPolicy
	MaxRetries int
	Logger     *zap.Logger
	Now        func() time.Time
}

func NewLeadStore(repo entity.LeadRepository, policy ConflictPolicy, maxRetries int, logger *zap.Logger) *LeadStore {
	if policy == "" {
		policy = ConflictRetry
	}
	return &LeadStore{
		Repo:       repo,
		Policy:     policy,
		MaxRetries: maxRetries,
		Logger:     logger,
		Now:        func() time.Time { return time.Now().UTC() },
	}
}

// GetAll returns the collection newest first. Read failures yield an empty slice.
func (s *LeadStore) GetAll(ctx context.Context) []*entity.Lead {
	leads, err := s.Repo.List(ctx)
	if err != nil {
		s.Logger.Warn("lead store read failed, returning empty collection", zap.Error(err))
		return []*entity.Lead{}
	}
	if leads == nil {
		return []*entity.Lead{}
	}
	return leads
}

// UpsertAll replaces the persisted collection.
func (s *LeadStore) UpsertAll(ctx context.Context, leads []*entity.Lead) error {
	if err := s.Repo.ReplaceAll(ctx, leads); err != nil {
		return &TechnicalError{Code: CodeStorage, Message: "failed to replace leads", Err: err}
	}
	return nil
}

// Create assigns identity, scores and persists a new lead with status new.
func (s *LeadStore) Create(ctx context.Context, partial entity.Lead) (*entity.Lead, error) {
	lead, err := entity.NewLead(partial, s.Now())
	if errors.Is(err, entity.ErrMissingContact) {
		return nil, &DomainError{Code: CodeValidation, Message: err.Error()}
	}
	if err != nil {
		return nil, err
	}

	if err := s.Repo.Insert(ctx, lead); err != nil {
		return nil, &TechnicalError{Code: CodeStorage, Message: "failed to persist lead", Err: err}
	}

	s.Logger.Info("lead created",
		zap.String("lead_id", lead.ID),
		zap.String("source", string(lead.Source)),
		zap.Int("score", lead.Score),
		zap.String("priority", string(lead.Priority)),
	)
	return lead, nil
}

func (s *LeadStore) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	lead, err := s.Repo.FindByID(ctx, id)
	if errors.Is(err, entity.ErrLeadNotFound) {
		return nil, &DomainError{Code: CodeLeadNotFound, Message: "lead not found: " + id}
	}
	if err != nil {
		return nil, &TechnicalError{Code: CodeStorage, Message: "failed to load lead", Err: err}
	}
	return lead, nil
}

// SetStatus applies a lifecycle transition. An unknown id is a silent no-op
// and returns a nil lead with a nil error.
func (s *LeadStore) SetStatus(ctx context.Context, id string, status entity.Status, notes *string) (*entity.Lead, error) {
	if !status.Valid() {
		return nil, &DomainError{Code: CodeInvalidStatus, Message: "unknown status: " + string(status)}
	}
	// scored always carries a fresh score; only Rescore reaches it.
	if status == entity.StatusScored {
		return nil, &DomainError{Code: CodeInvalidState, Message: "scored is only reached by rescoring"}
	}

	lead, err := s.Update(ctx, id, func(l *entity.Lead) error {
		return entity.ApplyStatus(l, status, notes, s.Now())
	})
	switch {
	case errors.Is(err, entity.ErrLeadNotFound):
		s.Logger.Debug("set status on unknown lead ignored", zap.String("lead_id", id))
		return nil, nil
	case errors.Is(err, entity.ErrInvalidTransition):
		return nil, &DomainError{Code: CodeInvalidState, Message: "cannot move lead to " + string(status)}
	case err != nil:
		return nil, s.storageError(err)
	}
	return lead, nil
}

// Rescore recomputes score and priority and moves a new lead to scored.
func (s *LeadStore) Rescore(ctx context.Context, id string) (*entity.Lead, error) {
	lead, err := s.Update(ctx, id, func(l *entity.Lead) error {
		l.Rescore()
		if l.Status == entity.StatusNew {
			return entity.ApplyStatus(l, entity.StatusScored, nil, s.Now())
		}
		l.UpdatedAt = s.Now()
		return nil
	})
	if errors.Is(err, entity.ErrLeadNotFound) {
		return nil, &DomainError{Code: CodeLeadNotFound, Message: "lead not found: " + id}
	}
	if err != nil {
		return nil, s.storageError(err)
	}
	return lead, nil
}

// Update is a read-modify-write against the current version. mutate must be
// free of side effects since the configured policy may run it more than once.
func (s *LeadStore) Update(ctx context.Context, id string, mutate func(*entity.Lead) error) (*entity.Lead, error) {
	for attempt := 0; ; attempt++ {
		current, err := s.Repo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}

		next := current.Clone()
		if err := mutate(next); err != nil {
			return nil, err
		}

		expected := current.Version
		if s.Policy == ConflictLastWriterWins {
			expected = entity.AnyVersion
		}

		err = s.Repo.Update(ctx, next, expected)
		if err == nil {
			return next, nil
		}
		if !errors.Is(err, entity.ErrVersionConflict) || s.Policy != ConflictRetry || attempt >= s.MaxRetries {
			return nil, err
		}

		s.Logger.Debug("version conflict, retrying",
			zap.String("lead_id", id), zap.Int("attempt", attempt+1))
	}
}

func (s *LeadStore) storageError(err error) error {
	if IsDomainError(err) || IsTechnicalError(err) {
		return err
	}
	if errors.Is(err, entity.ErrVersionConflict) {
		return &DomainError{Code: CodeVersionConflict, Message: err.Error()}
	}
	return &TechnicalError{Code: CodeStorage, Message: "failed to update lead", Err: err}
}
