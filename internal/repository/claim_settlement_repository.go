package repository

import (
	"context"
	"fmt"
	"time"

	"decision-engine/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type ClaimSettlementRepository struct {
	db *sqlx.DB
}

func NewClaimSettlementRepository(db *sqlx.DB) *ClaimSettlementRepository {
	return &ClaimSettlementRepository{db: db}
}

func (r *ClaimSettlementRepository) Create(ctx context.Context, settlement *models.ClaimSettlement) error {
	if settlement.ID == uuid.Nil {
		settlement.ID = uuid.New()
	}
	if settlement.CreatedAt.IsZero() {
		settlement.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO claim_settlements (
			id, claim_id, settlement_amount, settlement_method, bank_account_number, bank_name,
			bank_ifsc_code, account_holder_name, approved_by, status, created_at
		) VALUES (
			:id, :claim_id, :settlement_amount, :settlement_method, :bank_account_number, :bank_name,
			:bank_ifsc_code, :account_holder_name, :approved_by, :status, :created_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, settlement)
	if err != nil {
		return fmt.Errorf("failed to create settlement: %w", err)
	}

	return nil
}

func (r *ClaimSettlementRepository) GetByClaimID(ctx context.Context, claimID uuid.UUID) ([]models.ClaimSettlement, error) {
	var settlements []models.ClaimSettlement
	query := `
		SELECT id, claim_id, settlement_amount, settlement_method, bank_account_number, bank_name,
		       bank_ifsc_code, account_holder_name, approved_by, status, created_at
		FROM claim_settlements
		WHERE claim_id = $1
		ORDER BY created_at DESC
	`

	err := r.db.SelectContext(ctx, &settlements, query, claimID)
	if err != nil {
		return nil, fmt.Errorf("failed to get settlements by claim id: %w", err)
	}

	return settlements, nil
}
