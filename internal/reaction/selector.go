package reaction

import (
	"sort"

	"github.com/kube-rca/reactions/internal/model"
)

// SummaryView - render-ready aggregate counts for one target
type SummaryView struct {
	Likes       int64            `json:"likes"`
	Favorites   int64            `json:"favorites"`
	Bookmarks   int64            `json:"bookmarks"`
	Emojis      map[string]int64 `json:"emojis"`
	RatingAvg   *float64         `json:"rating_avg"`
	RatingCount int64            `json:"rating_count"`
}

// MineView - render-ready state of the current actor's own reactions
type MineView struct {
	Like     bool     `json:"like"`
	Favorite bool     `json:"favorite"`
	Bookmark bool     `json:"bookmark"`
	Emojis   []string `json:"emojis"`
	Rating   *int     `json:"rating"`
}

// HasEmoji reports whether the actor currently reacts with emoji.
func (v MineView) HasEmoji(emoji string) bool {
	i := sort.SearchStrings(v.Emojis, emoji)
	return i < len(v.Emojis) && v.Emojis[i] == emoji
}

// Active reports the toggle state for a LIKE, FAVORITE or BOOKMARK kind.
func (v MineView) Active(kind model.Kind) bool {
	switch kind {
	case model.KindLike:
		return v.Like
	case model.KindFavorite:
		return v.Favorite
	case model.KindBookmark:
		return v.Bookmark
	}
	return false
}

type viewMemo struct {
	summary        *SummaryView
	summaryVersion uint64
	mine           *MineView
	mineVersion    uint64
}

// Selector derives views from the cache. It never fetches.
type Selector struct {
	cache *Cache
}

func NewSelector(cache *Cache) *Selector {
	return &Selector{cache: cache}
}

// Summary reuses the memoized view while the slot version is unchanged. Each
// call gets its own copy of Emojis.
func (sel *Selector) Summary(key TargetKey) SummaryView {
	c := sel.cache
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.slots.Peek(key)
	if !ok {
		return SummaryView{Emojis: map[string]int64{}}
	}
	if s.views.summary == nil || s.views.summaryVersion != s.version {
		v := buildSummary(s)
		s.views.summary = &v
		s.views.summaryVersion = s.version
	}
	return s.views.summary.clone()
}

func (sel *Selector) Mine(key TargetKey) MineView {
	c := sel.cache
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.slots.Peek(key)
	if !ok {
		return MineView{Emojis: []string{}}
	}
	if s.views.mine == nil || s.views.mineVersion != s.version {
		v := buildMine(s)
		s.views.mine = &v
		s.views.mineVersion = s.version
	}
	return s.views.mine.clone()
}

func (v *SummaryView) clone() SummaryView {
	out := *v
	out.Emojis = make(map[string]int64, len(v.Emojis))
	for e, n := range v.Emojis {
		out.Emojis[e] = n
	}
	if v.RatingAvg != nil {
		avg := *v.RatingAvg
		out.RatingAvg = &avg
	}
	return out
}

func (v *MineView) clone() MineView {
	out := *v
	out.Emojis = append(make([]string, 0, len(v.Emojis)), v.Emojis...)
	if v.Rating != nil {
		r := *v.Rating
		out.Rating = &r
	}
	return out
}

func buildSummary(s *slot) SummaryView {
	v := SummaryView{Emojis: map[string]int64{}}
	if s.summary != nil {
		v.Likes = s.summary.ByKind[model.KindLike]
		v.Favorites = s.summary.ByKind[model.KindFavorite]
		v.Bookmarks = s.summary.ByKind[model.KindBookmark]
		for e, n := range s.summary.ByEmoji {
			v.Emojis[e] = n
		}
	}
	if s.rating != nil {
		if s.rating.Average != nil {
			avg := *s.rating.Average
			v.RatingAvg = &avg
		}
		v.RatingCount = s.rating.Count
	}

	for _, t := range s.pending {
		if t.settled[QuerySummary.index()] {
			continue
		}
		delta := int64(-1)
		if t.on {
			delta = 1
		}
		switch t.kind {
		case model.KindLike:
			v.Likes = clampCount(v.Likes + delta)
		case model.KindFavorite:
			v.Favorites = clampCount(v.Favorites + delta)
		case model.KindBookmark:
			v.Bookmarks = clampCount(v.Bookmarks + delta)
		case model.KindEmoji:
			n := clampCount(v.Emojis[t.emoji] + delta)
			if n == 0 {
				delete(v.Emojis, t.emoji)
			} else {
				v.Emojis[t.emoji] = n
			}
		}
	}
	return v
}

func buildMine(s *slot) MineView {
	var v MineView
	emojis := map[string]bool{}
	for _, r := range s.mine {
		switch r.Kind {
		case model.KindLike:
			v.Like = true
		case model.KindFavorite:
			v.Favorite = true
		case model.KindBookmark:
			v.Bookmark = true
		case model.KindEmoji:
			if r.Emoji != "" {
				emojis[r.Emoji] = true
			}
		case model.KindRating:
			// first RATING record wins; the server keeps at most one per actor
			if v.Rating == nil && r.Value != nil {
				n := *r.Value
				v.Rating = &n
			}
		}
	}

	for _, t := range s.pending {
		if t.settled[QueryMine.index()] {
			continue
		}
		switch t.kind {
		case model.KindLike:
			v.Like = t.on
		case model.KindFavorite:
			v.Favorite = t.on
		case model.KindBookmark:
			v.Bookmark = t.on
		case model.KindEmoji:
			emojis[t.emoji] = t.on
		case model.KindRating:
			if t.rating != nil {
				n := *t.rating
				v.Rating = &n
			}
		}
	}

	v.Emojis = make([]string, 0, len(emojis))
	for e, on := range emojis {
		if on {
			v.Emojis = append(v.Emojis, e)
		}
	}
	sort.Strings(v.Emojis)
	return v
}

func clampCount(n int64) int64 {
	if n < 0 {
		return 0
	}
	return n
}
