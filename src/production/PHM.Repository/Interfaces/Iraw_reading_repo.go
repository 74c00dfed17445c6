package interfaces

import (
	"context"

	phmmodels "gitlab.com/maplesense1/phm.server/src/production/PHM.Models"
)

// RawReadingRepository archives sensor payloads as received
type RawReadingRepository interface {
	InsertOne(ctx context.Context, r phmmodels.RawReading) error
	InsertMany(ctx context.Context, rs []phmmodels.RawReading) error
}
