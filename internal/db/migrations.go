package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`CREATE EXTENSION IF NOT EXISTS "pgcrypto";`,
	`CREATE TABLE IF NOT EXISTS estimates (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		project_name VARCHAR(512) NOT NULL,
		project_code VARCHAR(128),
		object_name VARCHAR(512),
		customer VARCHAR(512),
		contractor VARCHAR(512),
		region VARCHAR(256),
		base_city VARCHAR(256),
		date_created TIMESTAMPTZ NOT NULL,
		price_index NUMERIC(10,4) NOT NULL DEFAULT 1,
		contract_coefficient NUMERIC(10,4) NOT NULL DEFAULT 1,
		subtotal_field NUMERIC(18,2) NOT NULL,
		subtotal_laboratory NUMERIC(18,2) NOT NULL,
		subtotal_office NUMERIC(18,2) NOT NULL,
		base_total NUMERIC(18,2) NOT NULL,
		total_with_additions NUMERIC(18,2) NOT NULL,
		final_total NUMERIC(18,2) NOT NULL,
		payload JSONB NOT NULL,
		created_by_org_id UUID NOT NULL,
		created_by_user_id UUID NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM information_schema.columns WHERE table_name = 'estimates' AND column_name = 'base_city') THEN
			ALTER TABLE estimates ADD COLUMN base_city VARCHAR(256);
		END IF;
		IF NOT EXISTS (SELECT 1 FROM information_schema.columns WHERE table_name = 'estimates' AND column_name = 'project_code') THEN
			ALTER TABLE estimates ADD COLUMN project_code VARCHAR(128);
		END IF;
	END
	$$;`,
	`CREATE INDEX IF NOT EXISTS idx_estimates_org_id ON estimates (created_by_org_id);`,
	`CREATE INDEX IF NOT EXISTS idx_estimates_date_created ON estimates (date_created DESC);`,
	`CREATE INDEX IF NOT EXISTS idx_estimates_project_name ON estimates (project_name);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
