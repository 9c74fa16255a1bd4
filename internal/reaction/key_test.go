package reaction

import (
	"errors"
	"testing"
)

func TestNewTargetKey(t *testing.T) {
	k := NewTargetKey("  Post ", " p1 ")
	if k.Type != "post" || k.ID != "p1" {
		t.Fatalf("unexpected key: %+v", k)
	}
	if k != NewTargetKey("POST", "p1") {
		t.Fatalf("expected equal keys for equal fields")
	}
	if k.String() != "post/p1" {
		t.Fatalf("unexpected string: %s", k)
	}
}

func TestTargetKeyValidate(t *testing.T) {
	cases := []TargetKey{
		NewTargetKey("", "p1"),
		NewTargetKey("post", ""),
		NewTargetKey("  ", "  "),
	}
	for _, k := range cases {
		if err := k.Validate(); !errors.Is(err, ErrInvalidTarget) {
			t.Fatalf("expected ErrInvalidTarget for %+v, got %v", k, err)
		}
	}
	if err := NewTargetKey("post", "p1").Validate(); err != nil {
		t.Fatalf("expected valid key, got %v", err)
	}
}

func TestFlightKeyDistinct(t *testing.T) {
	a := TargetKey{Type: "a|b", ID: "c"}
	b := TargetKey{Type: "a", ID: "b|c"}
	if a.flightKey(QuerySummary, 0) == b.flightKey(QuerySummary, 0) {
		t.Fatalf("flight keys collide for %+v and %+v", a, b)
	}
	if a.flightKey(QuerySummary, 0) == a.flightKey(QueryRating, 0) {
		t.Fatalf("flight keys collide across query kinds")
	}
	if a.flightKey(QuerySummary, 0) == a.flightKey(QuerySummary, 1) {
		t.Fatalf("flight keys collide across generations")
	}
}
