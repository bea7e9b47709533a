package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/xavierca1/leadfunnel/internal/entity"
)

const maxWatchRetries = 5

// LeadRepository stores the whole lead collection as one JSON document under a
// single key. Every write replaces the document; concurrent writers are
// serialized with WATCH/MULTI.
type LeadRepository struct {
	client *redis.Client
	key    string
	logger *zap.Logger
}

func NewLeadRepository(client *redis.Client, key string, logger *zap.Logger) *LeadRepository {
	return &LeadRepository{client: client, key: key, logger: logger}
}

func (r *LeadRepository) Open(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func (r *LeadRepository) Close() error {
	return r.client.Close()
}

func (r *LeadRepository) List(ctx context.Context) ([]*entity.Lead, error) {
	return r.load(ctx, r.client)
}

func (r *LeadRepository) ReplaceAll(ctx context.Context, leads []*entity.Lead) error {
	body, err := json.Marshal(leads)
	if err != nil {
		return fmt.Errorf("encode leads: %w", err)
	}
	return r.client.Set(ctx, r.key, body, 0).Err()
}

func (r *LeadRepository) Insert(ctx context.Context, lead *entity.Lead) error {
	return r.mutate(ctx, func(leads []*entity.Lead) ([]*entity.Lead, error) {
		return append([]*entity.Lead{lead}, leads...), nil
	})
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	leads, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, l := range leads {
		if l.ID == id {
			return l, nil
		}
	}
	return nil, entity.ErrLeadNotFound
}

func (r *LeadRepository) Update(ctx context.Context, lead *entity.Lead, expectedVersion int) error {
	return r.mutate(ctx, func(leads []*entity.Lead) ([]*entity.Lead, error) {
		for i, l := range leads {
			if l.ID != lead.ID {
				continue
			}
			if expectedVersion != entity.AnyVersion && l.Version != expectedVersion {
				return nil, entity.ErrVersionConflict
			}
			lead.Version = l.Version + 1
			leads[i] = lead
			return leads, nil
		}
		return nil, entity.ErrLeadNotFound
	})
}

func (r *LeadRepository) mutate(ctx context.Context, fn func([]*entity.Lead) ([]*entity.Lead, error)) error {
	txf := func(tx *redis.Tx) error {
		leads, err := r.load(ctx, tx)
		if err != nil {
			return err
		}

		next, err := fn(leads)
		if err != nil {
			return err
		}

		body, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("encode leads: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, r.key, body, 0)
			return nil
		})
		return err
	}

	for i := 0; i < maxWatchRetries; i++ {
		err := r.client.Watch(ctx, txf, r.key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return entity.ErrVersionConflict
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// load treats a missing or undecodable document as an empty collection.
func (r *LeadRepository) load(ctx context.Context, g getter) ([]*entity.Lead, error) {
	body, err := g.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return []*entity.Lead{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", r.key, err)
	}

	var leads []*entity.Lead
	if err := json.Unmarshal(body, &leads); err != nil {
		r.logger.Warn("corrupt lead collection, treating as empty",
			zap.String("key", r.key), zap.Error(err))
		return []*entity.Lead{}, nil
	}
	for _, l := range leads {
		if l == nil {
			r.logger.Warn("corrupt lead collection, null entry, treating as empty", zap.String("key", r.key))
			return []*entity.Lead{}, nil
		}
	}
	return leads, nil
}
