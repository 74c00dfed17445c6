package phmmodels

import "strings"

// Plant is a monitored plant owned by a farmer
type Plant struct {
	PlantID    int64  `json:"plant_id"`
	PlantName  string `json:"plant_name"`
	Species    string `json:"species"`
	AgeDays    int    `json:"age_days"`
	Location   string `json:"location"`
	FarmerName string `json:"farmer_name"`
	Notes      string `json:"notes"`
}

// PlantInput is the body accepted by plant create and update
type PlantInput struct {
	PlantName  string `json:"plant_name"`
	Species    string `json:"species"`
	AgeDays    int    `json:"age_days"`
	Location   string `json:"location"`
	FarmerName string `json:"farmer_name"`
	Notes      string `json:"notes"`
}

// Complete reports whether every required field is present
func (p PlantInput) Complete() bool {
	return strings.TrimSpace(p.PlantName) != "" &&
		strings.TrimSpace(p.Species) != "" &&
		p.AgeDays > 0 &&
		strings.TrimSpace(p.Location) != "" &&
		strings.TrimSpace(p.FarmerName) != ""
}

// PlantFilter narrows a plant listing. Empty fields are ignored.
type PlantFilter struct {
	Search   string `form:"search"`
	Species  string `form:"species"`
	Location string `form:"location"`
}
