package phmmodels

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the wire and storage format of a log date
const DateLayout = "2006-01-02"

// Date is a calendar day rendered as YYYY-MM-DD
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar day
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{t}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// HealthLog is one dated snapshot of sensor readings for a plant.
// Readings are nullable.
type HealthLog struct {
	LogID          int64    `json:"log_id"`
	PlantID        int64    `json:"plant_id"`
	LogDate        Date     `json:"log_date"`
	SoilMoisture   *float64 `json:"soil_moisture"`
	SoilPH         *float64 `json:"soil_ph"`
	Temperature    *float64 `json:"temperature"`
	Humidity       *float64 `json:"humidity"`
	SunlightLux    *int64   `json:"sunlight_lux"`
	NutrientN      *float64 `json:"nutrient_n"`
	NutrientP      *float64 `json:"nutrient_p"`
	NutrientK      *float64 `json:"nutrient_k"`
	GrowthHeightCM *float64 `json:"growth_height_cm"`
	DiseaseRisk    *int64   `json:"disease_risk"`
}

// HealthLogInput is the body accepted when recording a health log.
// An empty LogDate means today.
type HealthLogInput struct {
	LogDate        string   `json:"log_date"`
	SoilMoisture   *float64 `json:"soil_moisture"`
	SoilPH         *float64 `json:"soil_ph"`
	Temperature    *float64 `json:"temperature"`
	Humidity       *float64 `json:"humidity"`
	SunlightLux    *int64   `json:"sunlight_lux"`
	NutrientN      *float64 `json:"nutrient_n"`
	NutrientP      *float64 `json:"nutrient_p"`
	NutrientK      *float64 `json:"nutrient_k"`
	GrowthHeightCM *float64 `json:"growth_height_cm"`
	DiseaseRisk    *int64   `json:"disease_risk"`
}

// ToHealthLog resolves the input into a log for plantID, defaulting the
// date to the day of now.
func (in HealthLogInput) ToHealthLog(plantID int64, now time.Time) (*HealthLog, error) {
	date := NewDate(now)
	if in.LogDate != "" {
		parsed, err := ParseDate(in.LogDate)
		if err != nil {
			return nil, err
		}
		date = parsed
	}
	return &HealthLog{
		PlantID:        plantID,
		LogDate:        date,
		SoilMoisture:   in.SoilMoisture,
		SoilPH:         in.SoilPH,
		Temperature:    in.Temperature,
		Humidity:       in.Humidity,
		SunlightLux:    in.SunlightLux,
		NutrientN:      in.NutrientN,
		NutrientP:      in.NutrientP,
		NutrientK:      in.NutrientK,
		GrowthHeightCM: in.GrowthHeightCM,
		DiseaseRisk:    in.DiseaseRisk,
	}, nil
}
