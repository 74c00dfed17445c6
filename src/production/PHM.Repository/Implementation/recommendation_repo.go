package implementation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	database "gitlab.com/maplesense1/phm.server/src/production/PHM.Database"
	phmmodels "gitlab.com/maplesense1/phm.server/src/production/PHM.Models"
)

const recommendationSelect = `
	SELECT r.rec_id, r.plant_id, r.agronomist_id, r.advice_text, r.created_at,
	       a.full_name, COALESCE(a.specialization, '')
	FROM recommendations r
	JOIN agronomists a ON r.agronomist_id = a.agronomist_id
`

type SQLRecommendationRepository struct {
	gw *database.Gateway
}

func NewSQLRecommendationRepository(gw *database.Gateway) *SQLRecommendationRepository {
	return &SQLRecommendationRepository{gw: gw}
}

func (r *SQLRecommendationRepository) Create(ctx context.Context, plantID, agronomistID int64, adviceText string) (*phmmodels.Recommendation, error) {
	query := `
		INSERT INTO recommendations (plant_id, agronomist_id, advice_text)
		VALUES ($1, $2, $3)
		RETURNING rec_id
	`

	id, err := r.gw.Insert(ctx, query, plantID, agronomistID, adviceText)
	if err != nil {
		return nil, fmt.Errorf("create recommendation for plant %d: %w", plantID, err)
	}
	return r.GetByID(ctx, id)
}

func (r *SQLRecommendationRepository) GetByID(ctx context.Context, recID int64) (*phmmodels.Recommendation, error) {
	rec, err := scanRecommendation(r.gw.QueryRow(ctx, recommendationSelect+` WHERE r.rec_id = $1`, recID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get recommendation %d: %w", recID, err)
	}
	return rec, nil
}

func (r *SQLRecommendationRepository) ListByPlant(ctx context.Context, plantID int64) ([]*phmmodels.Recommendation, error) {
	query := recommendationSelect + ` WHERE r.plant_id = $1 ORDER BY r.created_at DESC, r.rec_id DESC`

	rows, err := r.gw.Query(ctx, query, plantID)
	if err != nil {
		return nil, fmt.Errorf("list recommendations for plant %d: %w", plantID, err)
	}
	defer rows.Close()

	recs := make([]*phmmodels.Recommendation, 0)
	for rows.Next() {
		rec, err := scanRecommendation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recommendation: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recommendations: %w", err)
	}
	return recs, nil
}

func scanRecommendation(s scanner) (*phmmodels.Recommendation, error) {
	var rec phmmodels.Recommendation
	err := s.Scan(&rec.RecID, &rec.PlantID, &rec.AgronomistID, &rec.AdviceText, &rec.CreatedAt,
		&rec.AgronomistName, &rec.Specialization)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
