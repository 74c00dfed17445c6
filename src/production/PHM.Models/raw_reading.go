package phmmodels

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RawReading is an MQTT message kept verbatim in the archive
type RawReading struct {
	ID         primitive.ObjectID     `bson:"_id,omitempty" json:"id,omitempty"`
	Topic      string                 `bson:"topic" json:"topic"`
	PlantID    int64                  `bson:"plant_id,omitempty" json:"plant_id,omitempty"`
	Payload    map[string]interface{} `bson:"payload" json:"payload"`
	ReceivedAt time.Time              `bson:"received_at" json:"received_at"`
}
