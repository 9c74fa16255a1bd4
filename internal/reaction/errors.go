package reaction

import "errors"

var (
	ErrInvalidTarget   = errors.New("invalid target")
	ErrInvalidKind     = errors.New("invalid reaction kind")
	ErrInvalidRating   = errors.New("invalid rating value")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrTimeout         = errors.New("fetch timed out")
)
