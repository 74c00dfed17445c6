package interfaces

import (
	"context"

	phmmodels "gitlab.com/maplesense1/phm.server/src/production/PHM.Models"
)

type AlertRepository interface {
	Create(ctx context.Context, plantID int64, message, status string) (*phmmodels.Alert, error)
	GetByID(ctx context.Context, alertID int64) (*phmmodels.Alert, error)

	// ListByPlant returns alerts newest first; an empty status matches all
	ListByPlant(ctx context.Context, plantID int64, status string) ([]*phmmodels.Alert, error)
}
