package implementation

import (
	"context"
	"time"

	phmmodels "gitlab.com/maplesense1/phm.server/src/production/PHM.Models"
	"go.mongodb.org/mongo-driver/mongo"
)

type MongoRawReadingRepository struct {
	coll *mongo.Collection
}

func NewMongoRawReadingRepository(coll *mongo.Collection) *MongoRawReadingRepository {
	return &MongoRawReadingRepository{coll: coll}
}

func (r *MongoRawReadingRepository) InsertOne(ctx context.Context, rd phmmodels.RawReading) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.coll.InsertOne(ctx, rd)
	return err
}

func (r *MongoRawReadingRepository) InsertMany(ctx context.Context, rs []phmmodels.RawReading) error {
	if len(rs) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	docs := make([]interface{}, 0, len(rs))
	for i := range rs {
		docs = append(docs, rs[i])
	}
	_, err := r.coll.InsertMany(ctx, docs)
	return err
}
