package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"

	"github.com/kube-rca/reactions/internal/model"
	"github.com/kube-rca/reactions/internal/service"
)

type fakeTokenParser struct{}

func (fakeTokenParser) ParseAccessToken(tokenStr string) (*model.AuthUser, error) {
	if tokenStr != "good" {
		return nil, service.ErrUnauthorized
	}
	return &model.AuthUser{ID: 7, LoginID: "alice"}, nil
}

type fakeReactionService struct {
	mineIDs []string
	toggled []model.ToggleRequest
	err     error
}

func (f *fakeReactionService) Summary(ctx context.Context, targetType, targetID string) (*model.SummaryNode, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &model.SummaryNode{ByKind: map[model.Kind]int64{model.KindLike: 2}, ByEmoji: map[string]int64{"🔥": 1}}, nil
}

func (f *fakeReactionService) RatingSummary(ctx context.Context, targetType, targetID string) (*model.RatingSummaryNode, error) {
	return &model.RatingSummaryNode{}, f.err
}

func (f *fakeReactionService) Mine(ctx context.Context, user *model.AuthUser, targetType string, targetIDs []string) ([]model.ReactionRecord, error) {
	f.mineIDs = targetIDs
	return []model.ReactionRecord{{TargetType: targetType, TargetID: targetIDs[0], Kind: model.KindLike}}, nil
}

func (f *fakeReactionService) Toggle(ctx context.Context, user *model.AuthUser, req model.ToggleRequest) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	f.toggled = append(f.toggled, req)
	return true, nil
}

func (f *fakeReactionService) Rate(ctx context.Context, user *model.AuthUser, req model.RateRequest) error {
	return f.err
}

func newReactionRouter(svc reactionService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewReactionHandler(svc)
	api := r.Group("/api/v1/reactions", OptionalAuth(fakeTokenParser{}))
	api.GET("/summary", h.GetSummary)
	api.GET("/rating", h.GetRating)
	authed := api.Group("", RequireAuth())
	authed.GET("/mine", h.GetMine)
	authed.POST("/toggle", h.Toggle)
	authed.POST("/rate", h.Rate)
	return r
}

func serve(r *gin.Engine, method, path, body, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestGetSummary(t *testing.T) {
	r := newReactionRouter(&fakeReactionService{})
	w := serve(r, http.MethodGet, "/api/v1/reactions/summary?target_type=post&target_id=p1", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var got model.SummaryNode
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := model.SummaryNode{ByKind: map[model.Kind]int64{model.KindLike: 2}, ByEmoji: map[string]int64{"🔥": 1}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestGetRatingNullAverage(t *testing.T) {
	r := newReactionRouter(&fakeReactionService{})
	w := serve(r, http.MethodGet, "/api/v1/reactions/rating?target_type=post&target_id=p1", "", "")
	if w.Code != http.StatusOK || w.Body.String() != `{"average":null,"count":0}` {
		t.Fatalf("unexpected response: %d %s", w.Code, w.Body.String())
	}
}

func TestMutationsRequireToken(t *testing.T) {
	r := newReactionRouter(&fakeReactionService{})

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		token  string
	}{
		{name: "mine-anonymous", method: http.MethodGet, path: "/api/v1/reactions/mine?target_type=post&target_ids=p1"},
		{name: "toggle-anonymous", method: http.MethodPost, path: "/api/v1/reactions/toggle", body: `{"target_type":"post","target_id":"p1","kind":"LIKE"}`},
		{name: "rate-bad-token", method: http.MethodPost, path: "/api/v1/reactions/rate", body: `{"target_type":"post","target_id":"p1","value":3}`, token: "bad"},
		{name: "summary-bad-token", method: http.MethodGet, path: "/api/v1/reactions/summary?target_type=post&target_id=p1", token: "bad"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := serve(r, tt.method, tt.path, tt.body, tt.token); w.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", w.Code)
			}
		})
	}
}

func TestGetMineSplitsTargetIDs(t *testing.T) {
	svc := &fakeReactionService{}
	r := newReactionRouter(svc)
	w := serve(r, http.MethodGet, "/api/v1/reactions/mine?target_type=post&target_ids=p1,p2&target_ids=p3", "", "good")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if diff := cmp.Diff([]string{"p1", "p2", "p3"}, svc.mineIDs); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
}

func TestToggle(t *testing.T) {
	svc := &fakeReactionService{}
	r := newReactionRouter(svc)
	w := serve(r, http.MethodPost, "/api/v1/reactions/toggle", `{"target_type":"post","target_id":"p1","kind":"EMOJI","emoji":"🔥"}`, "good")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Body.String() != `{"status":"ok","active":true}` {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
	if len(svc.toggled) != 1 || svc.toggled[0].Emoji != "🔥" {
		t.Fatalf("unexpected toggles: %+v", svc.toggled)
	}

	if w := serve(r, http.MethodPost, "/api/v1/reactions/toggle", `{"target_type":"post"}`, "good"); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing fields, got %d", w.Code)
	}
}

func TestReactionErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: service.ErrInvalidInput, want: http.StatusBadRequest},
		{err: service.ErrUnauthorized, want: http.StatusUnauthorized},
		{err: errors.New("db down"), want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		r := newReactionRouter(&fakeReactionService{err: tt.err})
		w := serve(r, http.MethodPost, "/api/v1/reactions/rate", `{"target_type":"post","target_id":"p1","value":3}`, "good")
		if w.Code != tt.want {
			t.Fatalf("%v: expected %d, got %d", tt.err, tt.want, w.Code)
		}
	}
}
