package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/leadfunnel/internal/entity"
)

func TestComputeStats(t *testing.T) {
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	contacted := now.Add(-time.Hour)

	leads := []*entity.Lead{
		{Status: entity.StatusConverted, Priority: entity.PriorityHigh, Source: entity.SourceChat, Score: 90},
		{Status: entity.StatusContacted, Priority: entity.PriorityMedium, Source: entity.SourceChat, Score: 40, LastContactedAt: &contacted},
		{Status: entity.StatusNew, Priority: entity.PriorityLow, Source: entity.SourceContactForm, Score: 15},
		{Status: entity.StatusArchived, Priority: entity.PriorityLow, Source: entity.SourceManual, Score: 10, LastContactedAt: &contacted},
	}

	s := ComputeStats(leads, now)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 1, s.ByStatus[entity.StatusConverted])
	assert.Equal(t, 0, s.ByStatus[entity.StatusDemo])
	assert.Equal(t, 2, s.BySource[entity.SourceChat])
	assert.Equal(t, 2, s.ByPriority[entity.PriorityLow])
	assert.Equal(t, 38.75, s.AverageScore)
	assert.Equal(t, 0.25, s.ConversionRate)
	assert.Equal(t, 1, s.AwaitingReply, "archived leads are not waiting")
}

func TestComputeStats_Empty(t *testing.T) {
	s := ComputeStats(nil, time.Now())
	assert.Zero(t, s.Total)
	assert.Zero(t, s.AverageScore)
	assert.Len(t, s.ByStatus, len(entity.AllStatuses))
}

func TestReport_StaleAwaitingReply(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	lead := mustCreate(t, store, entity.Lead{Name: "Waiting"})
	_, err := store.SetStatus(ctx, lead.ID, entity.StatusContacted, nil)
	require.NoError(t, err)

	uc := NewReportUseCase(store)
	assert.Equal(t, 0, uc.StaleAwaitingReply(ctx, time.Hour))

	later := store.Now().Add(2 * time.Hour)
	store.Now = func() time.Time { return later }
	assert.Equal(t, 1, uc.StaleAwaitingReply(ctx, time.Hour))
	assert.Equal(t, 1, uc.Stats(ctx).AwaitingReply)
}
