package phmmodels

import "time"

// Alert statuses used by the seeder and as the default on create.
// Storage accepts any text.
const (
	AlertStatusActive   = "active"
	AlertStatusResolved = "resolved"
)

type Alert struct {
	AlertID   int64     `json:"alert_id"`
	PlantID   int64     `json:"plant_id"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// AlertInput is the body accepted when raising an alert
type AlertInput struct {
	PlantID FlexibleID `json:"plant_id"`
	Message string     `json:"message"`
	Status  string     `json:"status"`
}
