package phmmodels

import "time"

// Recommendation is advice left by an agronomist on a plant. Reads join
// the author's name and specialization.
type Recommendation struct {
	RecID          int64     `json:"rec_id"`
	PlantID        int64     `json:"plant_id"`
	AgronomistID   int64     `json:"agronomist_id"`
	AdviceText     string    `json:"advice_text"`
	CreatedAt      time.Time `json:"created_at"`
	AgronomistName string    `json:"agronomist_name"`
	Specialization string    `json:"specialization"`
}

// RecommendationInput is the body accepted when creating a recommendation
type RecommendationInput struct {
	PlantID    FlexibleID `json:"plant_id"`
	AdviceText string     `json:"advice_text"`
}
