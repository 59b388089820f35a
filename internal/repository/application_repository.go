package repository

import (
	"context"
	"fmt"

	"decision-engine/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type ApplicationRepository struct {
	db *sqlx.DB
}

func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	var application models.Application
	query := `
		SELECT id, application_number, customer_id, insurance_type_id, requested_coverage_amount,
		       policy_tenure_months, budget_min, budget_max, status, created_at
		FROM applications
		WHERE id = $1
	`

	err := r.db.GetContext(ctx, &application, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get application by id: %w", err)
	}

	return &application, nil
}
