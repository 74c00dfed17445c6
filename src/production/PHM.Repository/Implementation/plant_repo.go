package implementation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	database "gitlab.com/maplesense1/phm.server/src/production/PHM.Database"
	phmmodels "gitlab.com/maplesense1/phm.server/src/production/PHM.Models"
)

const plantColumns = `plant_id, plant_name, species, age_days, location, farmer_name, COALESCE(notes, '')`

type SQLPlantRepository struct {
	gw *database.Gateway
}

func NewSQLPlantRepository(gw *database.Gateway) *SQLPlantRepository {
	return &SQLPlantRepository{gw: gw}
}

// Create inserts a plant and reads the stored row back
func (r *SQLPlantRepository) Create(ctx context.Context, in phmmodels.PlantInput) (*phmmodels.Plant, error) {
	query := `
		INSERT INTO plants (plant_name, species, age_days, location, farmer_name, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING plant_id
	`

	id, err := r.gw.Insert(ctx, query, in.PlantName, in.Species, in.AgeDays, in.Location, in.FarmerName, in.Notes)
	if err != nil {
		return nil, fmt.Errorf("create plant: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *SQLPlantRepository) GetByID(ctx context.Context, plantID int64) (*phmmodels.Plant, error) {
	query := `SELECT ` + plantColumns + ` FROM plants WHERE plant_id = $1`

	plant, err := scanPlant(r.gw.QueryRow(ctx, query, plantID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get plant %d: %w", plantID, err)
	}
	return plant, nil
}

func (r *SQLPlantRepository) List(ctx context.Context, filter phmmodels.PlantFilter) ([]*phmmodels.Plant, error) {
	var (
		where []string
		args  []any
	)
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Search != "" {
		p := next("%" + strings.ToLower(filter.Search) + "%")
		where = append(where, fmt.Sprintf(
			"(LOWER(plant_name) LIKE %s OR LOWER(farmer_name) LIKE %s OR LOWER(COALESCE(notes, '')) LIKE %s)", p, p, p))
	}
	if filter.Species != "" {
		where = append(where, "species = "+next(filter.Species))
	}
	if filter.Location != "" {
		where = append(where, "location = "+next(filter.Location))
	}

	query := `SELECT ` + plantColumns + ` FROM plants`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY plant_id DESC`

	rows, err := r.gw.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list plants: %w", err)
	}
	defer rows.Close()

	plants := make([]*phmmodels.Plant, 0)
	for rows.Next() {
		plant, err := scanPlant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan plant: %w", err)
		}
		plants = append(plants, plant)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plants: %w", err)
	}
	return plants, nil
}

// Update overwrites the plant; a missing row yields nil, nil
func (r *SQLPlantRepository) Update(ctx context.Context, plantID int64, in phmmodels.PlantInput) (*phmmodels.Plant, error) {
	query := `
		UPDATE plants
		SET plant_name = $1, species = $2, age_days = $3, location = $4, farmer_name = $5, notes = $6
		WHERE plant_id = $7
	`

	n, err := r.gw.Exec(ctx, query, in.PlantName, in.Species, in.AgeDays, in.Location, in.FarmerName, in.Notes, plantID)
	if err != nil {
		return nil, fmt.Errorf("update plant %d: %w", plantID, err)
	}
	if n == 0 {
		return nil, nil
	}
	return r.GetByID(ctx, plantID)
}

func (r *SQLPlantRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.gw.QueryRow(ctx, `SELECT COUNT(*) FROM plants`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count plants: %w", err)
	}
	return n, nil
}

func scanPlant(s scanner) (*phmmodels.Plant, error) {
	var p phmmodels.Plant
	if err := s.Scan(&p.PlantID, &p.PlantName, &p.Species, &p.AgeDays, &p.Location, &p.FarmerName, &p.Notes); err != nil {
		return nil, err
	}
	return &p, nil
}
