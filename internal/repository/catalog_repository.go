package repository

import (
	"context"
	"fmt"

	"decision-engine/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// CatalogRepository reads catalog entities. The engine never writes these.
type CatalogRepository struct {
	db *sqlx.DB
}

func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) GetActiveInsurers(ctx context.Context) ([]models.Insurer, error) {
	var insurers []models.Insurer
	query := `
		SELECT id, company_name, company_code, claim_settlement_ratio, service_rating, is_active, created_at
		FROM insurers
		WHERE is_active = TRUE
		ORDER BY company_name
	`

	err := r.db.SelectContext(ctx, &insurers, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get active insurers: %w", err)
	}

	return insurers, nil
}

func (r *CatalogRepository) GetCoverageTypesByInsuranceType(ctx context.Context, insuranceTypeID uuid.UUID) ([]models.CoverageType, error) {
	var coverages []models.CoverageType
	query := `
		SELECT id, insurance_type_id, coverage_name, is_mandatory, base_premium_per_unit, is_active
		FROM coverage_types
		WHERE insurance_type_id = $1 AND is_active = TRUE
		ORDER BY coverage_name
	`

	err := r.db.SelectContext(ctx, &coverages, query, insuranceTypeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get coverage types: %w", err)
	}

	return coverages, nil
}

func (r *CatalogRepository) GetCoverageTypesByIDs(ctx context.Context, ids []uuid.UUID) ([]models.CoverageType, error) {
	if len(ids) == 0 {
		return []models.CoverageType{}, nil
	}

	query, args, err := sqlx.In(`
		SELECT id, insurance_type_id, coverage_name, is_mandatory, base_premium_per_unit, is_active
		FROM coverage_types
		WHERE id IN (?) AND is_active = TRUE
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build coverage query: %w", err)
	}

	var coverages []models.CoverageType
	err = r.db.SelectContext(ctx, &coverages, r.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get coverage types by ids: %w", err)
	}

	return coverages, nil
}

func (r *CatalogRepository) GetAddonsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.RiderAddon, error) {
	if len(ids) == 0 {
		return []models.RiderAddon{}, nil
	}

	query, args, err := sqlx.In(`
		SELECT id, insurance_type_id, addon_name, premium_percentage, max_coverage_limit, is_active
		FROM rider_addons
		WHERE id IN (?) AND is_active = TRUE
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build addon query: %w", err)
	}

	var addons []models.RiderAddon
	err = r.db.SelectContext(ctx, &addons, r.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get addons by ids: %w", err)
	}

	return addons, nil
}
