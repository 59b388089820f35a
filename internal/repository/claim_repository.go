package repository

import (
	"context"
	"fmt"
	"time"

	"decision-engine/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type ClaimRepository struct {
	db *sqlx.DB
}

func NewClaimRepository(db *sqlx.DB) *ClaimRepository {
	return &ClaimRepository{db: db}
}

func (r *ClaimRepository) BeginTransaction() (*sqlx.Tx, error) {
	return r.db.Beginx()
}

func (r *ClaimRepository) Create(ctx context.Context, claim *models.Claim) error {
	if claim.ID == uuid.Nil {
		claim.ID = uuid.New()
	}
	now := time.Now()
	if claim.CreatedAt.IsZero() {
		claim.CreatedAt = now
	}
	claim.UpdatedAt = now

	query := `
		INSERT INTO claims (
			id, claim_number, policy_id, customer_id, insurance_type_id, claim_type, description,
			incident_date, status, amount_requested, amount_approved, amount_settled, rejection_reason,
			submitted_at, review_started_at, approved_at, rejected_at, settled_at, closed_at,
			submitted_by, reviewed_by, settled_by, created_at, updated_at
		) VALUES (
			:id, :claim_number, :policy_id, :customer_id, :insurance_type_id, :claim_type, :description,
			:incident_date, :status, :amount_requested, :amount_approved, :amount_settled, :rejection_reason,
			:submitted_at, :review_started_at, :approved_at, :rejected_at, :settled_at, :closed_at,
			:submitted_by, :reviewed_by, :settled_by, :created_at, :updated_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, claim)
	if err != nil {
		return fmt.Errorf("failed to create claim: %w", err)
	}

	return nil
}

const claimColumns = `
	id, claim_number, policy_id, customer_id, insurance_type_id, claim_type, description,
	incident_date, status, amount_requested, amount_approved, amount_settled, rejection_reason,
	submitted_at, review_started_at, approved_at, rejected_at, settled_at, closed_at,
	submitted_by, reviewed_by, settled_by, created_at, updated_at`

func (r *ClaimRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Claim, error) {
	var claim models.Claim
	query := `SELECT ` + claimColumns + ` FROM claims WHERE id = $1`

	err := r.db.GetContext(ctx, &claim, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get claim by id: %w", err)
	}

	return &claim, nil
}

// GetByIDForUpdateTx reads the claim with a row lock so concurrent
// transitions on the same claim serialize on the transaction boundary.
func (r *ClaimRepository) GetByIDForUpdateTx(tx *sqlx.Tx, id uuid.UUID) (*models.Claim, error) {
	var claim models.Claim
	query := `SELECT ` + claimColumns + ` FROM claims WHERE id = $1 FOR UPDATE`

	err := tx.Get(&claim, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to lock claim by id: %w", err)
	}

	return &claim, nil
}

func (r *ClaimRepository) UpdateTx(tx *sqlx.Tx, claim *models.Claim) error {
	claim.UpdatedAt = time.Now()

	query := `
		UPDATE claims SET
			status = :status,
			amount_approved = :amount_approved,
			amount_settled = :amount_settled,
			rejection_reason = :rejection_reason,
			review_started_at = :review_started_at,
			approved_at = :approved_at,
			rejected_at = :rejected_at,
			settled_at = :settled_at,
			closed_at = :closed_at,
			reviewed_by = :reviewed_by,
			settled_by = :settled_by,
			updated_at = :updated_at
		WHERE id = :id`

	_, err := tx.NamedExec(query, claim)
	if err != nil {
		return fmt.Errorf("failed to update claim in transaction: %w", err)
	}

	return nil
}
