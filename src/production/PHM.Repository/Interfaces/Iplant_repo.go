package interfaces

import (
	"context"

	phmmodels "gitlab.com/maplesense1/phm.server/src/production/PHM.Models"
)

type PlantRepository interface {
	Create(ctx context.Context, in phmmodels.PlantInput) (*phmmodels.Plant, error)
	GetByID(ctx context.Context, plantID int64) (*phmmodels.Plant, error)

	// List returns plants matching filter, newest id first
	List(ctx context.Context, filter phmmodels.PlantFilter) ([]*phmmodels.Plant, error)

	// Update replaces every field of the plant and returns the stored row
	Update(ctx context.Context, plantID int64, in phmmodels.PlantInput) (*phmmodels.Plant, error)

	Count(ctx context.Context) (int, error)
}
