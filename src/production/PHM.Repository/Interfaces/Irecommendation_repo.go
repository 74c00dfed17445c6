package interfaces

import (
	"context"

	phmmodels "gitlab.com/maplesense1/phm.server/src/production/PHM.Models"
)

type RecommendationRepository interface {
	Create(ctx context.Context, plantID, agronomistID int64, adviceText string) (*phmmodels.Recommendation, error)
	GetByID(ctx context.Context, recID int64) (*phmmodels.Recommendation, error)
	ListByPlant(ctx context.Context, plantID int64) ([]*phmmodels.Recommendation, error)
}
