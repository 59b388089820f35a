package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"decision-engine/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// CustomerRepository reads customer risk, fleet and claim-history inputs.
type CustomerRepository struct {
	db *sqlx.DB
}

func NewCustomerRepository(db *sqlx.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) GetProfile(ctx context.Context, customerID uuid.UUID) (*models.CustomerProfile, error) {
	var profile models.CustomerProfile
	query := `
		SELECT id, user_id, full_name, date_of_birth, annual_income, created_at
		FROM customer_profiles
		WHERE id = $1
	`

	err := r.db.GetContext(ctx, &profile, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer profile: %w", err)
	}

	return &profile, nil
}

// GetRiskProfile returns nil without error when the customer has no cached
// risk profile; the calculator treats that as zero adjustment.
func (r *CustomerRepository) GetRiskProfile(ctx context.Context, customerID uuid.UUID) (*models.RiskProfile, error) {
	var profile models.RiskProfile
	query := `
		SELECT id, customer_id, overall_risk_percentage, risk_category, updated_at
		FROM customer_risk_profiles
		WHERE customer_id = $1
	`

	err := r.db.GetContext(ctx, &profile, query, customerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get risk profile: %w", err)
	}

	return &profile, nil
}

// GetActiveFleet returns the customer's active fleet, or nil when none.
func (r *CustomerRepository) GetActiveFleet(ctx context.Context, customerID uuid.UUID) (*models.Fleet, error) {
	var fleet models.Fleet
	query := `
		SELECT id, customer_id, fleet_name, total_vehicles, discount_percentage, is_active
		FROM fleets
		WHERE customer_id = $1 AND is_active = TRUE
		ORDER BY fleet_name
		LIMIT 1
	`

	err := r.db.GetContext(ctx, &fleet, query, customerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active fleet: %w", err)
	}

	return &fleet, nil
}

func (r *CustomerRepository) CountActiveFleets(ctx context.Context, customerID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM fleets WHERE customer_id = $1 AND is_active = TRUE`

	err := r.db.GetContext(ctx, &count, query, customerID)
	if err != nil {
		return 0, fmt.Errorf("failed to count active fleets: %w", err)
	}

	return count, nil
}

// GetClaimHistory returns the customer's yearly claim history, most recent
// year first.
func (r *CustomerRepository) GetClaimHistory(ctx context.Context, customerID uuid.UUID) ([]models.ClaimHistoryRecord, error) {
	var history []models.ClaimHistoryRecord
	query := `
		SELECT id, customer_id, claim_year, claim_count, claim_rejection_rate
		FROM customer_claim_history
		WHERE customer_id = $1
		ORDER BY claim_year DESC
	`

	err := r.db.SelectContext(ctx, &history, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get claim history: %w", err)
	}

	return history, nil
}
