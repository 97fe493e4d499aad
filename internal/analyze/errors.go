package analyze

import "github.com/rotisserie/eris"

// Sentinel errors surfaced by the merger and classifier. Callers match
// with eris.Is; the wrapped message carries the year or method involved.
var (
	// ErrMissingData: a requested year produced no overlapping rows across
	// the three indicator sources after the inner join.
	ErrMissingData = eris.New("no overlapping indicator data")

	// ErrInsufficientSample: a year has fewer than two merged areas, so the
	// sample standard deviation is undefined and no boundaries exist.
	ErrInsufficientSample = eris.New("insufficient sample for standard deviation")

	// ErrUnsupportedMethod: the requested classification method is not
	// recognized or not implemented.
	ErrUnsupportedMethod = eris.New("unsupported classification method")
)
