package usecase

import (
	"context"
	"math"
	"time"

	"github.com/xavierca1/leadfunnel/internal/entity"
)

// ReportUseCase aggregates the lead collection for the admin views. It never writes.
type ReportUseCase struct {
	Store *LeadStore
}

func NewReportUseCase(store *LeadStore) *ReportUseCase {
	return &ReportUseCase{Store: store}
}

func (uc *ReportUseCase) Stats(ctx context.Context) *StatsOutput {
	return ComputeStats(uc.Store.GetAll(ctx), uc.Store.Now())
}

// StaleAwaitingReply counts leads contacted more than window ago with no reply.
func (uc *ReportUseCase) StaleAwaitingReply(ctx context.Context, window time.Duration) int {
	cutoff := uc.Store.Now().Add(-window)
	n := 0
	for _, l := range uc.Store.GetAll(ctx) {
		if l.AwaitingReply() && l.LastContactedAt.Before(cutoff) && !l.Status.Terminal() {
			n++
		}
	}
	return n
}

func ComputeStats(leads []*entity.Lead, now time.Time) *StatsOutput {
	out := &StatsOutput{
		Total:       len(leads),
		ByStatus:    map[entity.Status]int{},
		ByPriority:  map[entity.Priority]int{},
		BySource:    map[entity.Source]int{},
		GeneratedAt: now,
	}
	for _, s := range entity.AllStatuses {
		out.ByStatus[s] = 0
	}

	scoreSum := 0
	for _, l := range leads {
		out.ByStatus[l.Status]++
		out.ByPriority[l.Priority]++
		out.BySource[l.Source]++
		scoreSum += l.Score
		if l.AwaitingReply() && !l.Status.Terminal() {
			out.AwaitingReply++
		}
	}

	if len(leads) > 0 {
		out.AverageScore = round2(float64(scoreSum) / float64(len(leads)))
		out.ConversionRate = round2(float64(out.ByStatus[entity.StatusConverted]) / float64(len(leads)))
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
