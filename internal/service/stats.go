package service

import (
	"context"

	"feedback-backend/internal/apperr"
	"feedback-backend/internal/auth"
	"feedback-backend/internal/models"
)

const recentLimit = 5

// StatsStore is the persistence the statistics service needs.
type StatsStore interface {
	Count(ctx context.Context, includeDeleted bool) (int64, error)
	Averages(ctx context.Context, includeDeleted bool) (models.RatingAverages, error)
	Recent(ctx context.Context, n int64, includeDeleted bool) ([]models.FeedbackSummary, error)
}

type Stats struct {
	TotalFeedbacks  int64                    `json:"totalFeedbacks"`
	AverageScores   models.RatingAverages    `json:"averageScores"`
	RecentFeedbacks []models.FeedbackSummary `json:"recentFeedbacks"`
}

type StatsService struct {
	store          StatsStore
	includeDeleted bool
}

// NewStatsService builds the dashboard aggregator. includeDeleted decides
// whether soft-deleted records count towards the totals and averages.
func NewStatsService(store StatsStore, includeDeleted bool) *StatsService {
	return &StatsService{
		store:          store,
		includeDeleted: includeDeleted,
	}
}

// ComputeStats returns the record count, per-dimension averages and the five
// newest submissions. caller must be a verified admin.
func (s *StatsService) ComputeStats(ctx context.Context, caller *auth.Identity) (*Stats, error) {
	if caller == nil {
		return nil, apperr.ErrUnauthorized
	}

	total, err := s.store.Count(ctx, s.includeDeleted)
	if err != nil {
		return nil, apperr.Persistence("count feedback", err)
	}
	averages, err := s.store.Averages(ctx, s.includeDeleted)
	if err != nil {
		return nil, apperr.Persistence("average ratings", err)
	}
	recent, err := s.store.Recent(ctx, recentLimit, s.includeDeleted)
	if err != nil {
		return nil, apperr.Persistence("recent feedback", err)
	}
	if recent == nil {
		recent = []models.FeedbackSummary{}
	}

	return &Stats{
		TotalFeedbacks:  total,
		AverageScores:   averages,
		RecentFeedbacks: recent,
	}, nil
}
