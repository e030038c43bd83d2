package interfaces

import "errors"

// Sentinel errors shared by all repository implementations. Callers check
// them with errors.Is; implementations wrap the raw driver error so the
// cause stays inspectable.
var (
	// ErrDuplicateKey is returned on unique constraint violations
	// (duplicate signup email, duplicate reading key on unconditional create).
	ErrDuplicateKey = errors.New("repository: duplicate key")

	// ErrNotFound is returned when a lookup matches no rows.
	ErrNotFound = errors.New("repository: record not found")

	// ErrNoData is returned by windowed statistics when no reading falls
	// inside the requested period.
	ErrNoData = errors.New("repository: no data for the specified time period")
)

func IsDuplicateKey(err error) bool { return errors.Is(err, ErrDuplicateKey) }
func IsNotFound(err error) bool     { return errors.Is(err, ErrNotFound) }
func IsNoData(err error) bool       { return errors.Is(err, ErrNoData) }
