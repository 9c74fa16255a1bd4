package reaction

// Fetch Deduplicator
//
// Processing:
// 1. Fresh query kind for the key: return immediately.
// 2. A fetch for the same key, kind and invalidation generation is in flight:
//    wait for it (singleflight).
// 3. Otherwise start one fetch detached from the caller's context and bounded
//    by the fetch timeout, then write the result through the cache.
// 4. A failed or timed out fetch leaves the kind stale; the next ensure retries.

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/kube-rca/reactions/internal/model"
)

const DefaultFetchTimeout = 10 * time.Second

type (
	SummaryFetcher func(ctx context.Context) (*model.SummaryNode, error)
	RatingFetcher  func(ctx context.Context) (*model.RatingSummaryNode, error)
	MineFetcher    func(ctx context.Context) ([]model.ReactionRecord, error)
)

type Deduplicator struct {
	cache   *Cache
	svc     Service
	session Session
	timeout time.Duration
	group   singleflight.Group
}

func NewDeduplicator(cache *Cache, svc Service, session Session, timeout time.Duration) *Deduplicator {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	if session == nil {
		session = Anonymous
	}
	return &Deduplicator{
		cache:   cache,
		svc:     svc,
		session: session,
		timeout: timeout,
	}
}

// Ensure loads one query kind through the injected Service.
func (d *Deduplicator) Ensure(ctx context.Context, key TargetKey, q QueryKind) error {
	switch q {
	case QuerySummary:
		return d.EnsureSummary(ctx, key, func(ctx context.Context) (*model.SummaryNode, error) {
			return d.svc.FetchSummary(ctx, key.Type, key.ID)
		})
	case QueryRating:
		return d.EnsureRating(ctx, key, func(ctx context.Context) (*model.RatingSummaryNode, error) {
			return d.svc.FetchRatingSummary(ctx, key.Type, key.ID)
		})
	case QueryMine:
		return d.EnsureMine(ctx, key, func(ctx context.Context) ([]model.ReactionRecord, error) {
			return d.svc.FetchMine(ctx, key.Type, []string{key.ID})
		})
	}
	return fmt.Errorf("%w: unknown query kind %q", ErrInvalidKind, string(q))
}

func (d *Deduplicator) EnsureSummary(ctx context.Context, key TargetKey, fetch SummaryFetcher) error {
	return ensure[*model.SummaryNode](ctx, d, key, QuerySummary, fetch,
		func(node *model.SummaryNode) error {
			if node == nil {
				return nil
			}
			return node.Validate()
		},
		d.cache.putSummary)
}

func (d *Deduplicator) EnsureRating(ctx context.Context, key TargetKey, fetch RatingFetcher) error {
	return ensure[*model.RatingSummaryNode](ctx, d, key, QueryRating, fetch,
		func(node *model.RatingSummaryNode) error {
			if node == nil {
				return nil
			}
			return node.Validate()
		},
		d.cache.putRating)
}

// EnsureMine is a no-op for an unauthenticated session.
func (d *Deduplicator) EnsureMine(ctx context.Context, key TargetKey, fetch MineFetcher) error {
	if err := key.Validate(); err != nil {
		return err
	}
	if !d.session.IsAuthenticated() {
		return nil
	}
	return ensure[[]model.ReactionRecord](ctx, d, key, QueryMine, fetch,
		func(records []model.ReactionRecord) error {
			for _, r := range records {
				if err := r.Validate(); err != nil {
					return err
				}
			}
			return nil
		},
		d.cache.putMine)
}

type fetchResult[T any] struct {
	value T
	err   error
}

func ensure[T any](
	ctx context.Context,
	d *Deduplicator,
	key TargetKey,
	q QueryKind,
	fetch func(context.Context) (T, error),
	validate func(T) error,
	put func(TargetKey, uint64, T) bool,
) error {
	if err := key.Validate(); err != nil {
		return err
	}
	fresh, gen := d.cache.state(key, q)
	if fresh {
		return nil
	}

	ch := d.group.DoChan(key.flightKey(q, gen), func() (any, error) {
		// an earlier flight for this generation may have landed since the check above
		if fresh, cur := d.cache.state(key, q); fresh && cur == gen {
			return nil, nil
		}
		seq := d.cache.begin(key)
		defer d.cache.end(key)

		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		defer cancel()

		done := make(chan fetchResult[T], 1)
		go func() {
			v, err := fetch(fctx)
			done <- fetchResult[T]{value: v, err: err}
		}()

		var res fetchResult[T]
		select {
		case res = <-done:
		case <-fctx.Done():
			return nil, fmt.Errorf("%w after %s", ErrTimeout, d.timeout)
		}
		if res.err != nil {
			if errors.Is(res.err, context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w after %s: %v", ErrTimeout, d.timeout, res.err)
			}
			return nil, res.err
		}
		if err := validate(res.value); err != nil {
			return nil, fmt.Errorf("invalid %s response: %w", q, err)
		}
		if !put(key, seq, res.value) {
			log.Printf("[ReactionCache] discarded stale %s response for %s (seq=%d)", q, key, seq)
		}
		return nil, nil
	})

	select {
	case r := <-ch:
		if r.Err != nil {
			log.Printf("[ReactionCache] fetch %s for %s failed: %v", q, key, r.Err)
			return fmt.Errorf("fetch %s for %s: %w", q, key, r.Err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
