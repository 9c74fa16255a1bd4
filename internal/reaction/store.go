// Package reaction is the client-side cache for reaction and rating
// aggregates. A Store combines the keyed cache, the fetch deduplicator, the
// mutation coordinator and the view selector around one Service.
package reaction

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/kube-rca/reactions/internal/model"
)

// Service is the remote reaction API as seen by the cache.
type Service interface {
	FetchSummary(ctx context.Context, targetType, targetID string) (*model.SummaryNode, error)
	FetchRatingSummary(ctx context.Context, targetType, targetID string) (*model.RatingSummaryNode, error)
	FetchMine(ctx context.Context, targetType string, targetIDs []string) ([]model.ReactionRecord, error)
	Toggle(ctx context.Context, req model.ToggleRequest) error
	Rate(ctx context.Context, req model.RateRequest) error
}

// Session tells whether there is a current actor.
type Session interface {
	IsAuthenticated() bool
}

type anonymous struct{}

func (anonymous) IsAuthenticated() bool { return false }

// Anonymous is a session without an actor.
var Anonymous Session = anonymous{}

type options struct {
	capacity     int
	fetchTimeout time.Duration
	session      Session
	optimistic   bool
}

type Option func(*options)

func WithCapacity(n int) Option {
	return func(o *options) { o.capacity = n }
}

func WithFetchTimeout(d time.Duration) Option {
	return func(o *options) { o.fetchTimeout = d }
}

// WithSession overrides the session. By default the Service is used when it
// implements Session, otherwise Anonymous.
func WithSession(s Session) Option {
	return func(o *options) { o.session = s }
}

// WithOptimistic makes toggles and ratings show up in views before the
// server confirms them.
func WithOptimistic(on bool) Option {
	return func(o *options) { o.optimistic = on }
}

type Store struct {
	cache       *Cache
	dedup       *Deduplicator
	coordinator *Coordinator
	selector    *Selector
}

// View - everything a reaction widget renders for one target
type View struct {
	Summary SummaryView `json:"summary"`
	Mine    MineView    `json:"mine"`
}

func New(svc Service, opts ...Option) *Store {
	o := options{
		capacity:     DefaultCapacity,
		fetchTimeout: DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.session == nil {
		if s, ok := svc.(Session); ok {
			o.session = s
		} else {
			o.session = Anonymous
		}
	}

	cache := NewCache(o.capacity)
	dedup := NewDeduplicator(cache, svc, o.session, o.fetchTimeout)
	return &Store{
		cache:       cache,
		dedup:       dedup,
		coordinator: NewCoordinator(svc, o.session, cache, dedup, o.optimistic),
		selector:    NewSelector(cache),
	}
}

// Load ensures summary, rating and mine for key concurrently. Failures are
// independent; the returned error joins all of them.
func (s *Store) Load(ctx context.Context, key TargetKey) error {
	if err := key.Validate(); err != nil {
		return err
	}

	errs := make([]error, len(AllQueryKinds))
	var wg sync.WaitGroup
	for i, q := range AllQueryKinds {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = s.dedup.Ensure(ctx, key, q)
		}()
	}
	wg.Wait()
	return errors.Join(errs...)
}

func (s *Store) Ensure(ctx context.Context, key TargetKey, q QueryKind) error {
	return s.dedup.Ensure(ctx, key, q)
}

func (s *Store) View(key TargetKey) View {
	return View{
		Summary: s.selector.Summary(key),
		Mine:    s.selector.Mine(key),
	}
}

func (s *Store) Summary(key TargetKey) SummaryView { return s.selector.Summary(key) }

func (s *Store) Mine(key TargetKey) MineView { return s.selector.Mine(key) }

func (s *Store) Toggle(ctx context.Context, key TargetKey, kind model.Kind) error {
	return s.coordinator.Toggle(ctx, key, kind)
}

func (s *Store) ToggleEmoji(ctx context.Context, key TargetKey, emoji string) error {
	return s.coordinator.ToggleEmoji(ctx, key, emoji)
}

func (s *Store) Rate(ctx context.Context, key TargetKey, value int) error {
	return s.coordinator.Rate(ctx, key, value)
}

func (s *Store) Subscribe(key TargetKey, l Listener) func() {
	return s.cache.Subscribe(key, l)
}

func (s *Store) Invalidate(key TargetKey, kinds ...QueryKind) {
	s.cache.Invalidate(key, kinds...)
}

func (s *Store) Wait() {
	s.coordinator.Wait()
}

func (s *Store) Cache() *Cache {
	return s.cache
}
