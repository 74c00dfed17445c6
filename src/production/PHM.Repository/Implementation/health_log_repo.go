package implementation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	database "gitlab.com/maplesense1/phm.server/src/production/PHM.Database"
	phmmodels "gitlab.com/maplesense1/phm.server/src/production/PHM.Models"
)

const healthLogColumns = `log_id, plant_id, log_date, soil_moisture, soil_ph, temperature, humidity,
	sunlight_lux, nutrient_n, nutrient_p, nutrient_k, growth_height_cm, disease_risk`

type SQLHealthLogRepository struct {
	gw *database.Gateway
}

func NewSQLHealthLogRepository(gw *database.Gateway) *SQLHealthLogRepository {
	return &SQLHealthLogRepository{gw: gw}
}

func (r *SQLHealthLogRepository) Create(ctx context.Context, log *phmmodels.HealthLog) (*phmmodels.HealthLog, error) {
	query := `
		INSERT INTO plant_health_logs
			(plant_id, log_date, soil_moisture, soil_ph, temperature, humidity, sunlight_lux,
			 nutrient_n, nutrient_p, nutrient_k, growth_height_cm, disease_risk)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING log_id
	`

	id, err := r.gw.Insert(ctx, query,
		log.PlantID, log.LogDate.String(), log.SoilMoisture, log.SoilPH, log.Temperature, log.Humidity,
		log.SunlightLux, log.NutrientN, log.NutrientP, log.NutrientK, log.GrowthHeightCM, log.DiseaseRisk)
	if err != nil {
		return nil, fmt.Errorf("create health log for plant %d: %w", log.PlantID, err)
	}
	return r.GetByID(ctx, id)
}

func (r *SQLHealthLogRepository) GetByID(ctx context.Context, logID int64) (*phmmodels.HealthLog, error) {
	query := `SELECT ` + healthLogColumns + ` FROM plant_health_logs WHERE log_id = $1`

	log, err := scanHealthLog(r.gw.QueryRow(ctx, query, logID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get health log %d: %w", logID, err)
	}
	return log, nil
}

func (r *SQLHealthLogRepository) ListByPlant(ctx context.Context, plantID int64, since *phmmodels.Date) ([]*phmmodels.HealthLog, error) {
	query := `SELECT ` + healthLogColumns + ` FROM plant_health_logs WHERE plant_id = $1`
	args := []any{plantID}
	if since != nil {
		query += ` AND log_date >= $2`
		args = append(args, since.String())
	}
	query += ` ORDER BY log_date DESC, log_id DESC`

	rows, err := r.gw.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list health logs for plant %d: %w", plantID, err)
	}
	defer rows.Close()

	logs := make([]*phmmodels.HealthLog, 0)
	for rows.Next() {
		log, err := scanHealthLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan health log: %w", err)
		}
		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate health logs: %w", err)
	}
	return logs, nil
}

func scanHealthLog(s scanner) (*phmmodels.HealthLog, error) {
	var (
		l       phmmodels.HealthLog
		logDate time.Time
	)
	err := s.Scan(&l.LogID, &l.PlantID, &logDate, &l.SoilMoisture, &l.SoilPH, &l.Temperature, &l.Humidity,
		&l.SunlightLux, &l.NutrientN, &l.NutrientP, &l.NutrientK, &l.GrowthHeightCM, &l.DiseaseRisk)
	if err != nil {
		return nil, err
	}
	l.LogDate = phmmodels.NewDate(logDate)
	return &l, nil
}
