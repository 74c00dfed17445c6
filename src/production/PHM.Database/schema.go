package database

import (
	"context"
	"fmt"
	"time"

	config "gitlab.com/maplesense1/phm.server/src/production/PHM.Config"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS plants (
		plant_id    BIGSERIAL PRIMARY KEY,
		plant_name  TEXT NOT NULL,
		species     TEXT NOT NULL,
		age_days    INTEGER NOT NULL,
		location    TEXT NOT NULL,
		farmer_name TEXT NOT NULL,
		notes       TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS plant_health_logs (
		log_id           BIGSERIAL PRIMARY KEY,
		plant_id         BIGINT NOT NULL REFERENCES plants(plant_id),
		log_date         DATE NOT NULL,
		soil_moisture    DOUBLE PRECISION,
		soil_ph          DOUBLE PRECISION,
		temperature      DOUBLE PRECISION,
		humidity         DOUBLE PRECISION,
		sunlight_lux     BIGINT,
		nutrient_n       DOUBLE PRECISION,
		nutrient_p       DOUBLE PRECISION,
		nutrient_k       DOUBLE PRECISION,
		growth_height_cm DOUBLE PRECISION,
		disease_risk     BIGINT
	)`,
	`CREATE TABLE IF NOT EXISTS agronomists (
		agronomist_id  BIGSERIAL PRIMARY KEY,
		username       TEXT NOT NULL UNIQUE,
		password       TEXT NOT NULL,
		full_name      TEXT NOT NULL,
		specialization TEXT,
		phone          TEXT,
		email          TEXT,
		role           TEXT NOT NULL DEFAULT '' CHECK (role IN ('', 'agronomist', 'farmer'))
	)`,
	`CREATE TABLE IF NOT EXISTS recommendations (
		rec_id        BIGSERIAL PRIMARY KEY,
		plant_id      BIGINT NOT NULL REFERENCES plants(plant_id),
		agronomist_id BIGINT NOT NULL REFERENCES agronomists(agronomist_id),
		advice_text   TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS alerts (
		alert_id   BIGSERIAL PRIMARY KEY,
		plant_id   BIGINT NOT NULL REFERENCES plants(plant_id),
		message    TEXT NOT NULL,
		status     TEXT NOT NULL DEFAULT 'active',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_health_logs_plant_date ON plant_health_logs (plant_id, log_date DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_recommendations_plant ON recommendations (plant_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_alerts_plant ON alerts (plant_id, created_at DESC)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS plants (
		plant_id    INTEGER PRIMARY KEY AUTOINCREMENT,
		plant_name  TEXT NOT NULL,
		species     TEXT NOT NULL,
		age_days    INTEGER NOT NULL,
		location    TEXT NOT NULL,
		farmer_name TEXT NOT NULL,
		notes       TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS plant_health_logs (
		log_id           INTEGER PRIMARY KEY AUTOINCREMENT,
		plant_id         INTEGER NOT NULL,
		log_date         DATE NOT NULL,
		soil_moisture    REAL,
		soil_ph          REAL,
		temperature      REAL,
		humidity         REAL,
		sunlight_lux     INTEGER,
		nutrient_n       REAL,
		nutrient_p       REAL,
		nutrient_k       REAL,
		growth_height_cm REAL,
		disease_risk     INTEGER,
		FOREIGN KEY (plant_id) REFERENCES plants(plant_id)
	)`,
	`CREATE TABLE IF NOT EXISTS agronomists (
		agronomist_id  INTEGER PRIMARY KEY AUTOINCREMENT,
		username       TEXT UNIQUE NOT NULL,
		password       TEXT NOT NULL,
		full_name      TEXT NOT NULL,
		specialization TEXT,
		phone          TEXT,
		email          TEXT,
		role           TEXT NOT NULL DEFAULT '' CHECK (role IN ('', 'agronomist', 'farmer'))
	)`,
	`CREATE TABLE IF NOT EXISTS recommendations (
		rec_id        INTEGER PRIMARY KEY AUTOINCREMENT,
		plant_id      INTEGER NOT NULL,
		agronomist_id INTEGER NOT NULL,
		advice_text   TEXT NOT NULL,
		created_at    DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (plant_id) REFERENCES plants(plant_id),
		FOREIGN KEY (agronomist_id) REFERENCES agronomists(agronomist_id)
	)`,
	`CREATE TABLE IF NOT EXISTS alerts (
		alert_id   INTEGER PRIMARY KEY AUTOINCREMENT,
		plant_id   INTEGER NOT NULL,
		message    TEXT NOT NULL,
		status     TEXT DEFAULT 'active',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (plant_id) REFERENCES plants(plant_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_health_logs_plant_date ON plant_health_logs (plant_id, log_date DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_recommendations_plant ON recommendations (plant_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_alerts_plant ON alerts (plant_id, created_at DESC)`,
}

// wipeOrder lists tables children first so foreign keys hold while deleting
var wipeOrder = []string{"alerts", "recommendations", "plant_health_logs", "plants", "agronomists"}

// CreateTables creates the schema for the gateway's dialect if missing
func (g *Gateway) CreateTables(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var statements []string
	switch g.driver {
	case config.DriverPostgres:
		statements = postgresSchema
	case config.DriverSQLite:
		statements = sqliteSchema
	default:
		return fmt.Errorf("no schema for driver %q", g.driver)
	}

	for _, stmt := range statements {
		if _, err := g.q.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}
	return nil
}

// Wipe deletes every row from every table
func (g *Gateway) Wipe(ctx context.Context) error {
	for _, table := range wipeOrder {
		if _, err := g.q.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}
