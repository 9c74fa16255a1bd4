package reaction

// Reaction Cache
//
// Keyed store of the three query results per target (summary, rating, mine).
//
// Processing:
// 1. A fetch takes a sequence number from begin() before it starts and
//    releases the key with end() when it is over.
// 2. commit() stores the result unless a newer result was already applied.
// 3. The query kind is marked fresh only when the fetch started after the
//    latest Invalidate for that key and kind.
// 4. Every write bumps the slot version and notifies subscribers outside the lock.
// 5. Least recently used slots are evicted past capacity; their subscribers
//    are notified so they can refetch.

import (
	"math"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/kube-rca/reactions/internal/model"
)

const DefaultCapacity = 500

// Listener is called after any change to the subscribed key, including eviction.
type Listener func(key TargetKey)

// Snapshot - copy of what is cached for one key. Nil fields were never loaded.
type Snapshot struct {
	Summary *model.SummaryNode
	Rating  *model.RatingSummaryNode
	Mine    []model.ReactionRecord
	HasMine bool
	Version uint64
}

type queryState struct {
	fresh     bool
	applied   uint64 // sequence of the stored result
	freshFrom uint64 // first sequence issued after the latest invalidation
}

type slot struct {
	summary *model.SummaryNode
	rating  *model.RatingSummaryNode
	mine    []model.ReactionRecord
	hasMine bool
	queries [numQueryKinds]queryState
	version uint64
	pending []tentative
	views   viewMemo
}

type tentative struct {
	id      uint64
	kind    model.Kind
	emoji   string
	on      bool
	rating  *int
	mark    uint64 // results with a higher sequence reflect the mutation
	settled [numQueryKinds]bool
}

type Cache struct {
	mu        sync.Mutex
	slots     *lru.Cache[TargetKey, *slot]
	seq       uint64
	clock     uint64
	nextID    uint64
	listeners map[TargetKey]map[uint64]Listener
	inflight  map[TargetKey]int
	evicted   []TargetKey
}

func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c := &Cache{
		listeners: make(map[TargetKey]map[uint64]Listener),
		inflight:  make(map[TargetKey]int),
	}
	// NewWithEvict only fails for a non-positive size.
	c.slots, _ = lru.NewWithEvict[TargetKey, *slot](capacity, c.onEvict)
	return c
}

// onEvict runs synchronously inside an lru call made while c.mu is held.
func (c *Cache) onEvict(key TargetKey, _ *slot) {
	c.evicted = append(c.evicted, key)
}

// Get is a pure read; it never triggers a fetch.
func (c *Cache) Get(key TargetKey) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.slots.Get(key)
	if !ok {
		return Snapshot{}
	}
	return Snapshot{
		Summary: s.summary.Clone(),
		Rating:  s.rating.Clone(),
		Mine:    model.CloneRecords(s.mine),
		HasMine: s.hasMine,
		Version: s.version,
	}
}

func (c *Cache) Len() int {
	return c.slots.Len()
}

func (c *Cache) Fresh(key TargetKey, q QueryKind) bool {
	fresh, _ := c.state(key, q)
	return fresh
}

// state returns freshness and the invalidation generation of one query kind.
func (c *Cache) state(key TargetKey, q QueryKind) (bool, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.slots.Peek(key)
	if !ok {
		return false, 0
	}
	st := s.queries[q.index()]
	return st.fresh, st.freshFrom
}

func (c *Cache) PutSummary(key TargetKey, node *model.SummaryNode) {
	seq := c.begin(key)
	defer c.end(key)
	c.putSummary(key, seq, node)
}

func (c *Cache) PutRating(key TargetKey, node *model.RatingSummaryNode) {
	seq := c.begin(key)
	defer c.end(key)
	c.putRating(key, seq, node)
}

func (c *Cache) PutMine(key TargetKey, records []model.ReactionRecord) {
	seq := c.begin(key)
	defer c.end(key)
	c.putMine(key, seq, records)
}

// begin hands out the next sequence number and marks a fetch for key as in
// flight until end is called. Sequences are cache-wide so a slot re-created
// after eviction never sees a number go backwards.
func (c *Cache) begin(key TargetKey) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.inflight[key]++
	return c.seq
}

func (c *Cache) end(key TargetKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight[key] <= 1 {
		delete(c.inflight, key)
		return
	}
	c.inflight[key]--
}

func (c *Cache) putSummary(key TargetKey, seq uint64, node *model.SummaryNode) bool {
	node = node.Clone()
	if node == nil {
		node = &model.SummaryNode{ByKind: map[model.Kind]int64{}, ByEmoji: map[string]int64{}}
	}
	return c.commit(key, QuerySummary, seq, func(s *slot) { s.summary = node })
}

func (c *Cache) putRating(key TargetKey, seq uint64, node *model.RatingSummaryNode) bool {
	node = node.Clone()
	if node == nil {
		node = &model.RatingSummaryNode{}
	}
	return c.commit(key, QueryRating, seq, func(s *slot) { s.rating = node })
}

func (c *Cache) putMine(key TargetKey, seq uint64, records []model.ReactionRecord) bool {
	own := make([]model.ReactionRecord, 0, len(records))
	for _, r := range model.CloneRecords(records) {
		if NewTargetKey(r.TargetType, r.TargetID) == key {
			own = append(own, r)
		}
	}
	return c.commit(key, QueryMine, seq, func(s *slot) {
		s.mine = own
		s.hasMine = true
	})
}

// commit applies a result fetched under seq. It reports false when the
// result was discarded because a newer one is already stored.
func (c *Cache) commit(key TargetKey, q QueryKind, seq uint64, apply func(*slot)) bool {
	c.mu.Lock()
	s := c.slotFor(key)
	st := &s.queries[q.index()]
	if seq <= st.applied {
		c.unlockAndNotify()
		return false
	}
	apply(s)
	st.applied = seq
	st.fresh = seq >= st.freshFrom
	if st.fresh {
		s.settle(q, seq)
	}
	c.touch(s)
	c.unlockAndNotify(key)
	return true
}

// Invalidate clears freshness for the given kinds (all kinds when none are
// given). Cached data stays readable until replaced. A fetch already in
// flight for an invalidated kind may still store its result but will not
// mark it fresh. A key that is neither cached nor loading is left alone and
// does not change LRU order.
func (c *Cache) Invalidate(key TargetKey, kinds ...QueryKind) {
	if len(kinds) == 0 {
		kinds = AllQueryKinds
	}
	c.mu.Lock()
	s, ok := c.slots.Peek(key)
	if !ok {
		if c.inflight[key] == 0 {
			c.mu.Unlock()
			return
		}
		// a loading key needs a slot to carry the new generation
		s = c.slotFor(key)
	}
	for _, q := range kinds {
		if !q.valid() {
			continue
		}
		st := &s.queries[q.index()]
		st.fresh = false
		st.freshFrom = c.seq + 1
	}
	c.touch(s)
	c.unlockAndNotify(key)
}

// Subscribe registers l for changes to key. The returned func removes it.
func (c *Cache) Subscribe(key TargetKey, l Listener) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	id := c.nextID
	if c.listeners[key] == nil {
		c.listeners[key] = make(map[uint64]Listener)
	}
	c.listeners[key][id] = l

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			delete(c.listeners[key], id)
			if len(c.listeners[key]) == 0 {
				delete(c.listeners, key)
			}
		})
	}
}

// addTentative records an optimistic flip that is not yet confirmed.
func (c *Cache) addTentative(key TargetKey, t tentative) uint64 {
	c.mu.Lock()
	s := c.slotFor(key)
	c.nextID++
	t.id = c.nextID
	t.mark = math.MaxUint64
	s.pending = append(s.pending, t)
	c.touch(s)
	c.unlockAndNotify(key)
	return t.id
}

// confirmTentative is called once the remote mutation succeeded. Results
// from fetches issued from now on reflect it.
func (c *Cache) confirmTentative(key TargetKey, id uint64) {
	if id == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.slots.Peek(key)
	if !ok {
		return
	}
	for i := range s.pending {
		if s.pending[i].id == id {
			s.pending[i].mark = c.seq
		}
	}
}

// dropTentative rolls back a flip whose mutation failed.
func (c *Cache) dropTentative(key TargetKey, id uint64) {
	if id == 0 {
		return
	}
	c.mu.Lock()
	s, ok := c.slots.Peek(key)
	if !ok {
		c.unlockAndNotify()
		return
	}
	kept := s.pending[:0]
	for _, t := range s.pending {
		if t.id != id {
			kept = append(kept, t)
		}
	}
	s.pending = kept
	c.touch(s)
	c.unlockAndNotify(key)
}

// settle marks pending flips as reflected by an authoritative result and
// drops the ones that every affected query kind has caught up with.
func (s *slot) settle(q QueryKind, seq uint64) {
	if len(s.pending) == 0 {
		return
	}
	kept := s.pending[:0]
	for _, t := range s.pending {
		if seq > t.mark {
			t.settled[q.index()] = true
		}
		if !t.done() {
			kept = append(kept, t)
		}
	}
	s.pending = kept
}

func (t tentative) done() bool {
	for _, ok := range t.settled {
		if !ok {
			return false
		}
	}
	return true
}

// slotFor returns the slot for key, creating it if needed. c.mu must be held.
func (c *Cache) slotFor(key TargetKey) *slot {
	if s, ok := c.slots.Get(key); ok {
		return s
	}
	s := &slot{}
	c.slots.Add(key, s)
	return s
}

// touch bumps the slot version. c.mu must be held.
func (c *Cache) touch(s *slot) {
	c.clock++
	s.version = c.clock
}

// unlockAndNotify releases c.mu and then calls the listeners of the changed
// keys and of any keys evicted while the lock was held.
func (c *Cache) unlockAndNotify(changed ...TargetKey) {
	keys := append(changed, c.evicted...)
	c.evicted = nil

	type call struct {
		key TargetKey
		fn  Listener
	}
	var calls []call
	for _, k := range keys {
		for _, fn := range c.listeners[k] {
			calls = append(calls, call{key: k, fn: fn})
		}
	}
	c.mu.Unlock()

	for _, cl := range calls {
		cl.fn(cl.key)
	}
}
