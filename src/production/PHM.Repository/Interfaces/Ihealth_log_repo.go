package interfaces

import (
	"context"

	phmmodels "gitlab.com/maplesense1/phm.server/src/production/PHM.Models"
)

type HealthLogRepository interface {
	Create(ctx context.Context, log *phmmodels.HealthLog) (*phmmodels.HealthLog, error)
	GetByID(ctx context.Context, logID int64) (*phmmodels.HealthLog, error)

	// ListByPlant returns logs newest date first. A non-nil since keeps
	// only logs dated on or after it.
	ListByPlant(ctx context.Context, plantID int64, since *phmmodels.Date) ([]*phmmodels.HealthLog, error)
}
