package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/kube-rca/reactions/internal/model"
)

const (
	maxMineTargets  = 100
	maxEmojiLength  = 32
	maxTargetLength = 128
)

// reactionRepo - DB interface (reaction tables)
type reactionRepo interface {
	ToggleReaction(ctx context.Context, targetType, targetID string, userID int64, kind model.Kind, emoji string) (bool, error)
	SetRating(ctx context.Context, targetType, targetID string, userID int64, value int) error
	GetSummary(ctx context.Context, targetType, targetID string) (*model.SummaryNode, error)
	GetRatingSummary(ctx context.Context, targetType, targetID string) (*model.RatingSummaryNode, error)
	GetMine(ctx context.Context, targetType string, targetIDs []string, userID int64) ([]model.ReactionRecord, error)
}

// SummaryStore - shared aggregate cache in front of the DB (Redis)
type SummaryStore interface {
	GetSummary(ctx context.Context, targetType, targetID string) (*model.SummaryNode, bool, error)
	SetSummary(ctx context.Context, targetType, targetID string, node *model.SummaryNode) error
	GetRating(ctx context.Context, targetType, targetID string) (*model.RatingSummaryNode, bool, error)
	SetRating(ctx context.Context, targetType, targetID string, node *model.RatingSummaryNode) error
	Invalidate(ctx context.Context, targetType, targetID string) error
}

// MutationListener is called after a toggle or rating was stored.
type MutationListener func(targetType, targetID string)

type ReactionService struct {
	repo      reactionRepo
	summaries SummaryStore
	mu        sync.RWMutex
	listeners []MutationListener
}

// NewReactionService - summaries may be nil (no shared cache)
func NewReactionService(repo reactionRepo, summaries SummaryStore) *ReactionService {
	return &ReactionService{
		repo:      repo,
		summaries: summaries,
	}
}

func (s *ReactionService) OnMutation(l MutationListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

func (s *ReactionService) Summary(ctx context.Context, targetType, targetID string) (*model.SummaryNode, error) {
	targetType, targetID, err := normalizeTarget(targetType, targetID)
	if err != nil {
		return nil, err
	}

	if s.summaries != nil {
		node, ok, err := s.summaries.GetSummary(ctx, targetType, targetID)
		if err != nil {
			log.Printf("[ReactionService] summary cache read failed for %s/%s: %v", targetType, targetID, err)
		} else if ok {
			return node, nil
		}
	}

	node, err := s.repo.GetSummary(ctx, targetType, targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to load summary: %w", err)
	}
	if s.summaries != nil {
		if err := s.summaries.SetSummary(ctx, targetType, targetID, node); err != nil {
			log.Printf("[ReactionService] summary cache write failed for %s/%s: %v", targetType, targetID, err)
		}
	}
	return node, nil
}

func (s *ReactionService) RatingSummary(ctx context.Context, targetType, targetID string) (*model.RatingSummaryNode, error) {
	targetType, targetID, err := normalizeTarget(targetType, targetID)
	if err != nil {
		return nil, err
	}

	if s.summaries != nil {
		node, ok, err := s.summaries.GetRating(ctx, targetType, targetID)
		if err != nil {
			log.Printf("[ReactionService] rating cache read failed for %s/%s: %v", targetType, targetID, err)
		} else if ok {
			return node, nil
		}
	}

	node, err := s.repo.GetRatingSummary(ctx, targetType, targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rating summary: %w", err)
	}
	if s.summaries != nil {
		if err := s.summaries.SetRating(ctx, targetType, targetID, node); err != nil {
			log.Printf("[ReactionService] rating cache write failed for %s/%s: %v", targetType, targetID, err)
		}
	}
	return node, nil
}

// Mine returns the actor's own records for up to maxMineTargets targets.
func (s *ReactionService) Mine(ctx context.Context, user *model.AuthUser, targetType string, targetIDs []string) ([]model.ReactionRecord, error) {
	if user == nil {
		return nil, ErrUnauthorized
	}
	targetType, err := normalizeTargetType(targetType)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(targetIDs))
	ids := make([]string, 0, len(targetIDs))
	for _, raw := range targetIDs {
		id := strings.TrimSpace(raw)
		if id == "" || seen[id] {
			continue
		}
		if len(id) > maxTargetLength {
			return nil, fmt.Errorf("%w: target_id too long", ErrInvalidInput)
		}
		seen[id] = true
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: target_ids is required", ErrInvalidInput)
	}
	if len(ids) > maxMineTargets {
		return nil, fmt.Errorf("%w: at most %d target_ids", ErrInvalidInput, maxMineTargets)
	}

	records, err := s.repo.GetMine(ctx, targetType, ids, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load own reactions: %w", err)
	}
	return records, nil
}

// Toggle flips the actor's reaction and returns whether it is now active.
func (s *ReactionService) Toggle(ctx context.Context, user *model.AuthUser, req model.ToggleRequest) (bool, error) {
	if user == nil {
		return false, ErrUnauthorized
	}
	targetType, targetID, err := normalizeTarget(req.TargetType, req.TargetID)
	if err != nil {
		return false, err
	}
	kind, err := model.ParseKind(string(req.Kind))
	if err != nil || kind == model.KindRating {
		return false, fmt.Errorf("%w: kind must be LIKE, FAVORITE, BOOKMARK or EMOJI", ErrInvalidInput)
	}
	emoji := strings.TrimSpace(req.Emoji)
	switch {
	case kind == model.KindEmoji && emoji == "":
		return false, fmt.Errorf("%w: emoji is required for EMOJI", ErrInvalidInput)
	case kind == model.KindEmoji && utf8.RuneCountInString(emoji) > maxEmojiLength:
		return false, fmt.Errorf("%w: emoji too long", ErrInvalidInput)
	case kind != model.KindEmoji && emoji != "":
		return false, fmt.Errorf("%w: emoji is only allowed for EMOJI", ErrInvalidInput)
	}

	active, err := s.repo.ToggleReaction(ctx, targetType, targetID, user.ID, kind, emoji)
	if err != nil {
		return false, err
	}
	s.afterMutation(ctx, targetType, targetID)
	return active, nil
}

func (s *ReactionService) Rate(ctx context.Context, user *model.AuthUser, req model.RateRequest) error {
	if user == nil {
		return ErrUnauthorized
	}
	targetType, targetID, err := normalizeTarget(req.TargetType, req.TargetID)
	if err != nil {
		return err
	}
	if req.Value < model.MinRating || req.Value > model.MaxRating {
		return fmt.Errorf("%w: value must be %d..%d", ErrInvalidInput, model.MinRating, model.MaxRating)
	}

	if err := s.repo.SetRating(ctx, targetType, targetID, user.ID, req.Value); err != nil {
		return fmt.Errorf("failed to store rating: %w", err)
	}
	s.afterMutation(ctx, targetType, targetID)
	return nil
}

func (s *ReactionService) afterMutation(ctx context.Context, targetType, targetID string) {
	if s.summaries != nil {
		if err := s.summaries.Invalidate(ctx, targetType, targetID); err != nil {
			log.Printf("[ReactionService] cache invalidate failed for %s/%s: %v", targetType, targetID, err)
		}
	}

	s.mu.RLock()
	listeners := append([]MutationListener(nil), s.listeners...)
	s.mu.RUnlock()
	for _, l := range listeners {
		l(targetType, targetID)
	}
}

func normalizeTargetType(targetType string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(targetType))
	if normalized == "" || len(normalized) > maxTargetLength {
		return "", fmt.Errorf("%w: invalid target_type", ErrInvalidInput)
	}
	return normalized, nil
}

func normalizeTarget(targetType, targetID string) (string, string, error) {
	targetType, err := normalizeTargetType(targetType)
	if err != nil {
		return "", "", err
	}
	targetID = strings.TrimSpace(targetID)
	if targetID == "" || len(targetID) > maxTargetLength {
		return "", "", fmt.Errorf("%w: invalid target_id", ErrInvalidInput)
	}
	return targetType, targetID, nil
}
