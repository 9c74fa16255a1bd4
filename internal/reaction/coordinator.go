package reaction

// Mutation Coordinator
//
// Processing:
// 1. Reject an invalid target or value, then an unauthenticated session,
//    before any network call.
// 2. Optionally record a tentative flip so views update at once.
// 3. Send the mutation to the Service.
// 4. Confirm or roll back the tentative flip.
// 5. Invalidate summary, rating and mine for the key and refetch them in the
//    background (toggles always, rate only on success).

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/kube-rca/reactions/internal/model"
)

type Coordinator struct {
	svc        Service
	session    Session
	cache      *Cache
	dedup      *Deduplicator
	selector   *Selector
	optimistic bool

	// refreshMu orders wg.Add against wg.Wait
	refreshMu sync.RWMutex
	wg        sync.WaitGroup
}

func NewCoordinator(svc Service, session Session, cache *Cache, dedup *Deduplicator, optimistic bool) *Coordinator {
	if session == nil {
		session = Anonymous
	}
	return &Coordinator{
		svc:        svc,
		session:    session,
		cache:      cache,
		dedup:      dedup,
		selector:   NewSelector(cache),
		optimistic: optimistic,
	}
}

// Toggle flips LIKE, FAVORITE or BOOKMARK for the current actor. Repeated
// calls are not coalesced; each one is a separate remote toggle.
func (c *Coordinator) Toggle(ctx context.Context, key TargetKey, kind model.Kind) error {
	if !kind.IsToggle() {
		return fmt.Errorf("%w: %q is not a toggle kind", ErrInvalidKind, kind)
	}
	return c.toggle(ctx, key, kind, "")
}

func (c *Coordinator) ToggleEmoji(ctx context.Context, key TargetKey, emoji string) error {
	emoji = strings.TrimSpace(emoji)
	if emoji == "" {
		return fmt.Errorf("%w: emoji is required", ErrInvalidKind)
	}
	return c.toggle(ctx, key, model.KindEmoji, emoji)
}

func (c *Coordinator) toggle(ctx context.Context, key TargetKey, kind model.Kind, emoji string) error {
	if err := c.precheck(key); err != nil {
		return err
	}

	var id uint64
	if c.optimistic {
		mine := c.selector.Mine(key)
		on := !mine.Active(kind)
		if kind == model.KindEmoji {
			on = !mine.HasEmoji(emoji)
		}
		id = c.cache.addTentative(key, tentative{
			kind:  kind,
			emoji: emoji,
			on:    on,
			// rating is not affected by a toggle
			settled: [numQueryKinds]bool{idxRating: true},
		})
	}

	err := c.svc.Toggle(ctx, model.ToggleRequest{
		TargetType: key.Type,
		TargetID:   key.ID,
		Kind:       kind,
		Emoji:      emoji,
	})
	if err != nil {
		c.cache.dropTentative(key, id)
		log.Printf("[ReactionCoordinator] toggle %s on %s failed: %v", kind, key, err)
	} else {
		c.cache.confirmTentative(key, id)
	}

	// refresh regardless of outcome
	c.refresh(key)

	if err != nil {
		return fmt.Errorf("toggle %s on %s: %w", kind, key, err)
	}
	return nil
}

// Rate sets the actor's 1..5 rating. A nil error means the server accepted it.
func (c *Coordinator) Rate(ctx context.Context, key TargetKey, value int) error {
	if value < model.MinRating || value > model.MaxRating {
		return fmt.Errorf("%w: %d (want %d..%d)", ErrInvalidRating, value, model.MinRating, model.MaxRating)
	}
	if err := c.precheck(key); err != nil {
		return err
	}

	var id uint64
	if c.optimistic {
		v := value
		id = c.cache.addTentative(key, tentative{
			kind:   model.KindRating,
			rating: &v,
			// the aggregate average is not adjusted locally
			settled: [numQueryKinds]bool{idxSummary: true, idxRating: true},
		})
	}

	err := c.svc.Rate(ctx, model.RateRequest{
		TargetType: key.Type,
		TargetID:   key.ID,
		Value:      value,
	})
	if err != nil {
		c.cache.dropTentative(key, id)
		log.Printf("[ReactionCoordinator] rate %s failed: %v", key, err)
		return fmt.Errorf("rate %s: %w", key, err)
	}
	c.cache.confirmTentative(key, id)
	c.refresh(key)
	return nil
}

// Wait blocks until every refresh scheduled so far has finished. Refreshes
// scheduled by mutations that start while Wait runs are held back until it
// returns.
func (c *Coordinator) Wait() {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()
	c.wg.Wait()
}

func (c *Coordinator) precheck(key TargetKey) error {
	if err := key.Validate(); err != nil {
		return err
	}
	if !c.session.IsAuthenticated() {
		return fmt.Errorf("%w: sign in to react to %s", ErrUnauthenticated, key)
	}
	return nil
}

func (c *Coordinator) refresh(key TargetKey) {
	c.cache.Invalidate(key, AllQueryKinds...)

	c.refreshMu.RLock()
	c.wg.Add(1)
	c.refreshMu.RUnlock()
	go func() {
		defer c.wg.Done()

		ctx := context.Background()
		var wg sync.WaitGroup
		for _, q := range AllQueryKinds {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := c.dedup.Ensure(ctx, key, q); err != nil {
					log.Printf("[ReactionCoordinator] refresh %s for %s failed: %v", q, key, err)
				}
			}()
		}
		wg.Wait()
	}()
}
