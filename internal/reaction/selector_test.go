package reaction

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kube-rca/reactions/internal/model"
)

func TestSelectorDefaults(t *testing.T) {
	sel := NewSelector(NewCache(0))
	key := NewTargetKey("post", "nothing")

	want := SummaryView{Emojis: map[string]int64{}}
	if diff := cmp.Diff(want, sel.Summary(key)); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(MineView{Emojis: []string{}}, sel.Mine(key)); diff != "" {
		t.Fatalf("mine mismatch (-want +got):\n%s", diff)
	}

	// an invalid key renders idle without touching the cache
	c := NewCache(0)
	NewSelector(c).Summary(NewTargetKey("", ""))
	if c.Len() != 0 {
		t.Fatalf("selector must not create slots")
	}
}

func TestSelectorSummary(t *testing.T) {
	c := NewCache(0)
	key := NewTargetKey("post", "p1")
	avg := 4.5
	c.PutSummary(key, &model.SummaryNode{
		ByKind:  map[model.Kind]int64{model.KindLike: 3, model.KindBookmark: 1},
		ByEmoji: map[string]int64{"🔥": 2},
	})
	c.PutRating(key, &model.RatingSummaryNode{Average: &avg, Count: 2})

	want := SummaryView{
		Likes:       3,
		Bookmarks:   1,
		Emojis:      map[string]int64{"🔥": 2},
		RatingAvg:   &avg,
		RatingCount: 2,
	}
	if diff := cmp.Diff(want, NewSelector(c).Summary(key)); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestSelectorMine(t *testing.T) {
	c := NewCache(0)
	key := NewTargetKey("post", "p1")
	four, two := 4, 2
	c.PutMine(key, []model.ReactionRecord{
		{TargetType: "post", TargetID: "p1", Kind: model.KindFavorite},
		{TargetType: "post", TargetID: "p1", Kind: model.KindEmoji, Emoji: "🔥"},
		{TargetType: "post", TargetID: "p1", Kind: model.KindEmoji, Emoji: "👍"},
		{TargetType: "post", TargetID: "p1", Kind: model.KindRating, Value: &four},
		{TargetType: "post", TargetID: "p1", Kind: model.KindRating, Value: &two},
	})

	got := NewSelector(c).Mine(key)
	want := MineView{Favorite: true, Emojis: []string{"👍", "🔥"}, Rating: &four}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mine mismatch (-want +got):\n%s", diff)
	}
	if !got.HasEmoji("🔥") || got.HasEmoji("🎉") {
		t.Fatalf("HasEmoji mismatch for %v", got.Emojis)
	}
}

func memoOf(c *Cache, key TargetKey) *SummaryView {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, _ := c.slots.Peek(key)
	return s.views.summary
}

func TestSelectorMemoizedOnVersion(t *testing.T) {
	c := NewCache(0)
	sel := NewSelector(c)
	key := NewTargetKey("post", "p1")
	c.PutSummary(key, &model.SummaryNode{ByEmoji: map[string]int64{"🔥": 1}})

	first := sel.Summary(key)
	memo := memoOf(c, key)
	second := sel.Summary(key)
	if memoOf(c, key) != memo {
		t.Fatalf("expected the memoized view reused for an unchanged slot")
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("views differ for an unchanged slot (-first +second):\n%s", diff)
	}

	c.PutSummary(key, &model.SummaryNode{ByEmoji: map[string]int64{"🔥": 1}})
	third := sel.Summary(key)
	if memoOf(c, key) == memo {
		t.Fatalf("expected a rebuilt view after a write")
	}
	if diff := cmp.Diff(first, third); diff != "" {
		t.Fatalf("equal data must give equal views (-first +third):\n%s", diff)
	}
}

func TestSelectorViewsAreCallerOwned(t *testing.T) {
	c := NewCache(0)
	sel := NewSelector(c)
	key := NewTargetKey("post", "p1")
	three := 3
	c.PutSummary(key, &model.SummaryNode{ByEmoji: map[string]int64{"🔥": 2}})
	c.PutMine(key, []model.ReactionRecord{
		{TargetType: "post", TargetID: "p1", Kind: model.KindEmoji, Emoji: "🔥"},
		{TargetType: "post", TargetID: "p1", Kind: model.KindRating, Value: &three},
	})

	summary := sel.Summary(key)
	summary.Emojis["🔥"] = 99
	summary.Emojis["x"] = -5

	mine := sel.Mine(key)
	mine.Emojis[0] = "x"
	*mine.Rating = 1

	if diff := cmp.Diff(map[string]int64{"🔥": 2}, sel.Summary(key).Emojis); diff != "" {
		t.Fatalf("summary changed by a caller (-want +got):\n%s", diff)
	}
	again := sel.Mine(key)
	if diff := cmp.Diff([]string{"🔥"}, again.Emojis); diff != "" {
		t.Fatalf("mine emojis changed by a caller (-want +got):\n%s", diff)
	}
	if again.Rating == nil || *again.Rating != 3 {
		t.Fatalf("mine rating changed by a caller: %v", again.Rating)
	}
}

func TestSelectorTentativeClampsAtZero(t *testing.T) {
	c := NewCache(0)
	key := NewTargetKey("post", "p1")
	c.PutSummary(key, likes(0))
	c.addTentative(key, tentative{kind: model.KindLike, on: false})

	if got := NewSelector(c).Summary(key).Likes; got != 0 {
		t.Fatalf("expected clamp at 0, got %d", got)
	}
}
