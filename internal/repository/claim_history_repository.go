package repository

import (
	"context"
	"fmt"
	"time"

	"decision-engine/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ClaimHistoryRepository appends to the immutable claim audit trail. There
// is deliberately no update or delete.
type ClaimHistoryRepository struct {
	db *sqlx.DB
}

func NewClaimHistoryRepository(db *sqlx.DB) *ClaimHistoryRepository {
	return &ClaimHistoryRepository{db: db}
}

func (r *ClaimHistoryRepository) CreateTx(tx *sqlx.Tx, entry *models.ClaimStatusHistory) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO claim_status_history (
			id, claim_id, old_status, new_status, reason, changed_by, ip_address, user_agent, created_at
		) VALUES (
			:id, :claim_id, :old_status, :new_status, :reason, :changed_by, :ip_address, :user_agent, :created_at
		)`

	_, err := tx.NamedExec(query, entry)
	if err != nil {
		return fmt.Errorf("failed to append claim history in transaction: %w", err)
	}

	return nil
}

func (r *ClaimHistoryRepository) GetByClaimID(ctx context.Context, claimID uuid.UUID) ([]models.ClaimStatusHistory, error) {
	var history []models.ClaimStatusHistory
	query := `
		SELECT id, claim_id, old_status, new_status, reason, changed_by, ip_address, user_agent, created_at
		FROM claim_status_history
		WHERE claim_id = $1
		ORDER BY created_at
	`

	err := r.db.SelectContext(ctx, &history, query, claimID)
	if err != nil {
		return nil, fmt.Errorf("failed to get claim history: %w", err)
	}

	return history, nil
}
