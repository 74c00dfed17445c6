package implementation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	database "gitlab.com/maplesense1/phm.server/src/production/PHM.Database"
	phmmodels "gitlab.com/maplesense1/phm.server/src/production/PHM.Models"
)

const alertColumns = `alert_id, plant_id, message, COALESCE(status, ''), created_at`

type SQLAlertRepository struct {
	gw *database.Gateway
}

func NewSQLAlertRepository(gw *database.Gateway) *SQLAlertRepository {
	return &SQLAlertRepository{gw: gw}
}

func (r *SQLAlertRepository) Create(ctx context.Context, plantID int64, message, status string) (*phmmodels.Alert, error) {
	if status == "" {
		status = phmmodels.AlertStatusActive
	}

	query := `
		INSERT INTO alerts (plant_id, message, status)
		VALUES ($1, $2, $3)
		RETURNING alert_id
	`

	id, err := r.gw.Insert(ctx, query, plantID, message, status)
	if err != nil {
		return nil, fmt.Errorf("create alert for plant %d: %w", plantID, err)
	}
	return r.GetByID(ctx, id)
}

func (r *SQLAlertRepository) GetByID(ctx context.Context, alertID int64) (*phmmodels.Alert, error) {
	alert, err := scanAlert(r.gw.QueryRow(ctx, `SELECT `+alertColumns+` FROM alerts WHERE alert_id = $1`, alertID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get alert %d: %w", alertID, err)
	}
	return alert, nil
}

func (r *SQLAlertRepository) ListByPlant(ctx context.Context, plantID int64, status string) ([]*phmmodels.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE plant_id = $1`
	args := []any{plantID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC, alert_id DESC`

	rows, err := r.gw.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list alerts for plant %d: %w", plantID, err)
	}
	defer rows.Close()

	alerts := make([]*phmmodels.Alert, 0)
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		alerts = append(alerts, alert)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate alerts: %w", err)
	}
	return alerts, nil
}

func scanAlert(s scanner) (*phmmodels.Alert, error) {
	var a phmmodels.Alert
	if err := s.Scan(&a.AlertID, &a.PlantID, &a.Message, &a.Status, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}
