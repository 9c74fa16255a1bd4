package reaction

import (
	"fmt"
	"strings"
)

// TargetKey identifies what is being reacted to. It is comparable and is used
// directly as the cache address, so equal fields always map to the same slot.
type TargetKey struct {
	Type string
	ID   string
}

// NewTargetKey normalizes the type to lower case and trims both fields.
func NewTargetKey(targetType, targetID string) TargetKey {
	return TargetKey{
		Type: strings.ToLower(strings.TrimSpace(targetType)),
		ID:   strings.TrimSpace(targetID),
	}
}

// Validate must pass before any fetch or mutation. An invalid key can still be
// rendered by the Selector as an idle, all-zero view.
func (k TargetKey) Validate() error {
	if k.Type == "" || k.ID == "" {
		return fmt.Errorf("%w: type=%q id=%q", ErrInvalidTarget, k.Type, k.ID)
	}
	return nil
}

func (k TargetKey) String() string {
	return k.Type + "/" + k.ID
}

// flightKey is unambiguous for any type/id content: the type is length-prefixed
// and nothing follows the id.
func (k TargetKey) flightKey(q QueryKind, gen uint64) string {
	return fmt.Sprintf("%s|%d|%d:%s|%s", q, gen, len(k.Type), k.Type, k.ID)
}

// QueryKind - one of the three independently cached queries per target
type QueryKind string

const (
	QuerySummary QueryKind = "summary"
	QueryRating  QueryKind = "rating"
	QueryMine    QueryKind = "mine"
)

// slot positions of each query kind
const (
	idxSummary = iota
	idxRating
	idxMine
	numQueryKinds
)

var AllQueryKinds = []QueryKind{QuerySummary, QueryRating, QueryMine}

func (q QueryKind) index() int {
	switch q {
	case QuerySummary:
		return idxSummary
	case QueryRating:
		return idxRating
	case QueryMine:
		return idxMine
	}
	panic(fmt.Sprintf("reaction: unknown query kind %q", string(q)))
}

func (q QueryKind) valid() bool {
	return q == QuerySummary || q == QueryRating || q == QueryMine
}
