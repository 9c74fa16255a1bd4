package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/kube-rca/reactions/internal/config"
	"github.com/kube-rca/reactions/internal/model"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *ReactionClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewReactionClient(config.ReactionClientConfig{BaseURL: srv.URL + "/", Timeout: time.Second})
}

func TestFetchSummary(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/reactions/summary" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("target_type") != "post" || q.Get("target_id") != "p1" || q.Get("breakdown") != "kind+emoji" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Errorf("missing X-Request-ID")
		}
		if r.Header.Get("Authorization") != "" {
			t.Errorf("anonymous request carried a token")
		}
		_, _ = w.Write([]byte(`{"by_kind":{"LIKE":3},"by_emoji":{"🔥":1}}`))
	})

	node, err := c.FetchSummary(context.Background(), "post", "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := &model.SummaryNode{
		ByKind:  map[model.Kind]int64{model.KindLike: 3},
		ByEmoji: map[string]int64{"🔥": 1},
	}
	if diff := cmp.Diff(want, node); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestFetchRatingSummaryNullAverage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"average":null,"count":0}`))
	})
	node, err := c.FetchRatingSummary(context.Background(), "post", "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if node.Average != nil || node.Count != 0 {
		t.Fatalf("unexpected rating: %+v", node)
	}
}

func TestFetchMineSendsToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("unexpected authorization: %q", r.Header.Get("Authorization"))
		}
		if r.URL.Query().Get("target_ids") != "p1,p2" {
			t.Errorf("unexpected target_ids: %q", r.URL.Query().Get("target_ids"))
		}
		_, _ = w.Write([]byte(`[{"target_type":"post","target_id":"p1","kind":"LIKE"}]`))
	})

	if c.IsAuthenticated() {
		t.Fatalf("client without token must be anonymous")
	}
	authed := c.WithToken(" tok ")
	if !authed.IsAuthenticated() || c.IsAuthenticated() {
		t.Fatalf("WithToken must return an authenticated copy")
	}

	records, err := authed.FetchMine(context.Background(), "post", []string{"p1", "p2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 || records[0].Kind != model.KindLike {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestToggleAndRatePostJSON(t *testing.T) {
	var got []map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("unexpected request: %s %s", r.Method, r.Header.Get("Content-Type"))
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		got = append(got, body)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}).WithToken("tok")

	if err := c.Toggle(context.Background(), model.ToggleRequest{TargetType: "post", TargetID: "p1", Kind: model.KindEmoji, Emoji: "🔥"}); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if err := c.Rate(context.Background(), model.RateRequest{TargetType: "post", TargetID: "p1", Value: 4}); err != nil {
		t.Fatalf("rate: %v", err)
	}

	want := []map[string]any{
		{"target_type": "post", "target_id": "p1", "kind": "EMOJI", "emoji": "🔥"},
		{"target_type": "post", "target_id": "p1", "value": float64(4)},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("bodies mismatch (-want +got):\n%s", diff)
	}
}

func TestStatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"Unauthorized"}`))
	})

	err := c.Toggle(context.Background(), model.ToggleRequest{TargetType: "post", TargetID: "p1", Kind: model.KindLike})
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.Code != http.StatusUnauthorized || statusErr.Message != "Unauthorized" {
		t.Fatalf("unexpected status error: %+v", statusErr)
	}
}
