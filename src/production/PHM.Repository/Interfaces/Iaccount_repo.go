package interfaces

import (
	"context"

	auth_models "gitlab.com/maplesense1/phm.server/src/production/PHM.Models/auth"
)

type AccountRepository interface {
	// Create inserts an account and returns it with its new id
	Create(ctx context.Context, account *auth_models.Account) (*auth_models.Account, error)

	// CreateIfAbsent inserts unless the username is taken; reports whether a row was written
	CreateIfAbsent(ctx context.Context, account *auth_models.Account) (bool, error)

	GetByID(ctx context.Context, agronomistID int64) (*auth_models.Account, error)
	GetByUsername(ctx context.Context, username string) (*auth_models.Account, error)
	Count(ctx context.Context) (int, error)
}
