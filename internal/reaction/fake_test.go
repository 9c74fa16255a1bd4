package reaction

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/kube-rca/reactions/internal/model"
)

// fakeService keeps the current actor's reactions per target id plus a fixed
// count of other actors' likes, and counts every call.
type fakeService struct {
	mu          sync.Mutex
	authed      bool
	active      map[string]map[string]bool
	otherLikes  map[string]int64
	ratings     map[string]int
	calls       map[string]int
	toggles     []model.ToggleRequest
	summaryErr  error
	ratingErr   error
	toggleErr   error
	rateErr     error
	gate        chan struct{}
	toggleGate  chan struct{}
	fetchSignal chan string
}

func newFakeService(authed bool) *fakeService {
	return &fakeService{
		authed:     authed,
		active:     map[string]map[string]bool{},
		otherLikes: map[string]int64{},
		ratings:    map[string]int{},
		calls:      map[string]int{},
	}
}

func (f *fakeService) IsAuthenticated() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.authed
}

func (f *fakeService) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

// enter records a call and waits on the gate, if any.
func (f *fakeService) enter(ctx context.Context, name string) error {
	f.mu.Lock()
	f.calls[name]++
	gate, signal := f.gate, f.fetchSignal
	f.mu.Unlock()

	if signal != nil {
		signal <- name
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (f *fakeService) FetchSummary(ctx context.Context, targetType, targetID string) (*model.SummaryNode, error) {
	if err := f.enter(ctx, "summary"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.summaryErr != nil {
		return nil, f.summaryErr
	}
	node := &model.SummaryNode{ByKind: map[model.Kind]int64{}, ByEmoji: map[string]int64{}}
	if n := f.otherLikes[targetID]; n > 0 {
		node.ByKind[model.KindLike] = n
	}
	for k, on := range f.active[targetID] {
		if !on {
			continue
		}
		if e, ok := strings.CutPrefix(k, "EMOJI:"); ok {
			node.ByEmoji[e]++
			continue
		}
		node.ByKind[model.Kind(k)]++
	}
	return node, nil
}

func (f *fakeService) FetchRatingSummary(ctx context.Context, targetType, targetID string) (*model.RatingSummaryNode, error) {
	if err := f.enter(ctx, "rating"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ratingErr != nil {
		return nil, f.ratingErr
	}
	v, ok := f.ratings[targetID]
	if !ok {
		return &model.RatingSummaryNode{}, nil
	}
	avg := float64(v)
	return &model.RatingSummaryNode{Average: &avg, Count: 1}, nil
}

func (f *fakeService) FetchMine(ctx context.Context, targetType string, targetIDs []string) ([]model.ReactionRecord, error) {
	if err := f.enter(ctx, "mine"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.authed {
		return nil, errors.New("401")
	}
	var out []model.ReactionRecord
	for _, id := range targetIDs {
		var keys []string
		for k, on := range f.active[id] {
			if on {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			r := model.ReactionRecord{TargetType: targetType, TargetID: id, Kind: model.Kind(k)}
			if e, ok := strings.CutPrefix(k, "EMOJI:"); ok {
				r.Kind, r.Emoji = model.KindEmoji, e
			}
			out = append(out, r)
		}
		if v, ok := f.ratings[id]; ok {
			out = append(out, model.ReactionRecord{TargetType: targetType, TargetID: id, Kind: model.KindRating, Value: &v})
		}
	}
	return out, nil
}

func (f *fakeService) Toggle(ctx context.Context, req model.ToggleRequest) error {
	f.mu.Lock()
	f.calls["toggle"]++
	f.toggles = append(f.toggles, req)
	gate := f.toggleGate
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.toggleErr != nil {
		return f.toggleErr
	}
	k := string(req.Kind)
	if req.Kind == model.KindEmoji {
		k = "EMOJI:" + req.Emoji
	}
	if f.active[req.TargetID] == nil {
		f.active[req.TargetID] = map[string]bool{}
	}
	f.active[req.TargetID][k] = !f.active[req.TargetID][k]
	return nil
}

func (f *fakeService) Rate(ctx context.Context, req model.RateRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["rate"]++
	if f.rateErr != nil {
		return f.rateErr
	}
	f.ratings[req.TargetID] = req.Value
	return nil
}
