package model

import (
	"fmt"
	"strings"
)

// Kind - reaction category
type Kind string

const (
	KindLike     Kind = "LIKE"
	KindFavorite Kind = "FAVORITE"
	KindBookmark Kind = "BOOKMARK"
	KindEmoji    Kind = "EMOJI"
	KindRating   Kind = "RATING"
)

const (
	MinRating = 1
	MaxRating = 5
)

// ParseKind accepts any letter case ("like", "Like", "LIKE").
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToUpper(strings.TrimSpace(s)))
	switch k {
	case KindLike, KindFavorite, KindBookmark, KindEmoji, KindRating:
		return k, nil
	}
	return "", fmt.Errorf("invalid kind: %q", s)
}

// IsToggle reports whether the kind has on/off toggle semantics.
func (k Kind) IsToggle() bool {
	return k == KindLike || k == KindFavorite || k == KindBookmark
}

// ReactionRecord - one actor's reaction against one target
type ReactionRecord struct {
	TargetType string `json:"target_type"`
	TargetID   string `json:"target_id"`
	Kind       Kind   `json:"kind"`
	Emoji      string `json:"emoji,omitempty"` // kind=EMOJI only
	Value      *int   `json:"value,omitempty"` // kind=RATING only, 1..5
}

func (r ReactionRecord) Validate() error {
	switch r.Kind {
	case KindLike, KindFavorite, KindBookmark:
		if r.Emoji != "" || r.Value != nil {
			return fmt.Errorf("%s record carries emoji or value", r.Kind)
		}
	case KindEmoji:
		if r.Emoji == "" {
			return fmt.Errorf("EMOJI record without emoji")
		}
		if r.Value != nil {
			return fmt.Errorf("EMOJI record carries value")
		}
	case KindRating:
		if r.Value == nil || *r.Value < MinRating || *r.Value > MaxRating {
			return fmt.Errorf("RATING record value must be %d..%d", MinRating, MaxRating)
		}
		if r.Emoji != "" {
			return fmt.Errorf("RATING record carries emoji")
		}
	default:
		return fmt.Errorf("invalid kind: %q", r.Kind)
	}
	return nil
}

// SummaryNode - aggregate counts of every actor's reactions to one target
type SummaryNode struct {
	ByKind  map[Kind]int64   `json:"by_kind"`
	ByEmoji map[string]int64 `json:"by_emoji"`
}

func (n *SummaryNode) Validate() error {
	for k, v := range n.ByKind {
		if v < 0 {
			return fmt.Errorf("negative count for kind %s: %d", k, v)
		}
	}
	for e, v := range n.ByEmoji {
		if v < 0 {
			return fmt.Errorf("negative count for emoji %s: %d", e, v)
		}
	}
	return nil
}

func (n *SummaryNode) Clone() *SummaryNode {
	if n == nil {
		return nil
	}
	out := &SummaryNode{
		ByKind:  make(map[Kind]int64, len(n.ByKind)),
		ByEmoji: make(map[string]int64, len(n.ByEmoji)),
	}
	for k, v := range n.ByKind {
		out.ByKind[k] = v
	}
	for e, v := range n.ByEmoji {
		out.ByEmoji[e] = v
	}
	return out
}

// RatingSummaryNode - aggregate rating view. Average is nil iff Count is 0.
type RatingSummaryNode struct {
	Average *float64 `json:"average"`
	Count   int64    `json:"count"`
}

func (n *RatingSummaryNode) Validate() error {
	if n.Count < 0 {
		return fmt.Errorf("negative rating count: %d", n.Count)
	}
	if (n.Average == nil) != (n.Count == 0) {
		return fmt.Errorf("rating average must be null iff count is 0 (count=%d)", n.Count)
	}
	return nil
}

func (n *RatingSummaryNode) Clone() *RatingSummaryNode {
	if n == nil {
		return nil
	}
	out := &RatingSummaryNode{Count: n.Count}
	if n.Average != nil {
		avg := *n.Average
		out.Average = &avg
	}
	return out
}

// CloneRecords copies records including the Value pointers.
func CloneRecords(records []ReactionRecord) []ReactionRecord {
	if records == nil {
		return nil
	}
	out := make([]ReactionRecord, len(records))
	for i, r := range records {
		out[i] = r
		if r.Value != nil {
			v := *r.Value
			out[i].Value = &v
		}
	}
	return out
}

// SummaryRequest - GET /api/v1/reactions/summary query
type SummaryRequest struct {
	TargetType string `form:"target_type" json:"target_type"`
	TargetID   string `form:"target_id" json:"target_id"`
	Breakdown  string `form:"breakdown" json:"breakdown,omitempty"` // "kind+emoji"
}

// RatingRequest - GET /api/v1/reactions/rating query
type RatingRequest struct {
	TargetType string `form:"target_type" json:"target_type"`
	TargetID   string `form:"target_id" json:"target_id"`
}

// MineRequest - GET /api/v1/reactions/mine query (target_ids is comma separated)
type MineRequest struct {
	TargetType string   `form:"target_type" json:"target_type"`
	TargetIDs  []string `form:"target_ids" json:"target_ids"`
}

// ToggleRequest - POST /api/v1/reactions/toggle body
type ToggleRequest struct {
	TargetType string `json:"target_type" binding:"required"`
	TargetID   string `json:"target_id" binding:"required"`
	Kind       Kind   `json:"kind" binding:"required"`
	Emoji      string `json:"emoji,omitempty"`
}

// RateRequest - POST /api/v1/reactions/rate body
type RateRequest struct {
	TargetType string `json:"target_type" binding:"required"`
	TargetID   string `json:"target_id" binding:"required"`
	Value      int    `json:"value" binding:"required"`
}

// MutationResponse - toggle/rate result. Active is the server-decided state after a toggle.
type MutationResponse struct {
	Status string `json:"status"`
	Active *bool  `json:"active,omitempty"`
}
