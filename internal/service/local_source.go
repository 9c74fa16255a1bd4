package service

import (
	"context"

	"github.com/kube-rca/reactions/internal/model"
)

// LocalSource lets a server-side reaction cache read aggregates straight from
// this process. It has no actor, so own-reaction reads and mutations fail.
type LocalSource struct {
	svc *ReactionService
}

func NewLocalSource(svc *ReactionService) *LocalSource {
	return &LocalSource{svc: svc}
}

func (s *LocalSource) FetchSummary(ctx context.Context, targetType, targetID string) (*model.SummaryNode, error) {
	return s.svc.Summary(ctx, targetType, targetID)
}

func (s *LocalSource) FetchRatingSummary(ctx context.Context, targetType, targetID string) (*model.RatingSummaryNode, error) {
	return s.svc.RatingSummary(ctx, targetType, targetID)
}

func (s *LocalSource) FetchMine(ctx context.Context, targetType string, targetIDs []string) ([]model.ReactionRecord, error) {
	return nil, ErrUnauthorized
}

func (s *LocalSource) Toggle(ctx context.Context, req model.ToggleRequest) error {
	return ErrUnauthorized
}

func (s *LocalSource) Rate(ctx context.Context, req model.RateRequest) error {
	return ErrUnauthorized
}

func (s *LocalSource) IsAuthenticated() bool {
	return false
}
