package interfaces

import (
	"context"

	tlmmodels "gitlab.com/radixsense/tlm.sensor_server/src/production/TLM.Models"
)

type UserRepository interface {
	// Create inserts a new account; a duplicate email fails with
	// ErrDuplicateKey. The assigned surrogate id is filled in on return.
	Create(ctx context.Context, user *tlmmodels.User) (*tlmmodels.User, error)

	// GetByEmail returns ErrNotFound when no account matches
	GetByEmail(ctx context.Context, email string) (*tlmmodels.User, error)

	GetByID(ctx context.Context, id int64) (*tlmmodels.User, error)
}
