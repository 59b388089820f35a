package repository

import (
	"context"
	"fmt"
	"time"

	"decision-engine/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type ClaimAssessmentRepository struct {
	db *sqlx.DB
}

func NewClaimAssessmentRepository(db *sqlx.DB) *ClaimAssessmentRepository {
	return &ClaimAssessmentRepository{db: db}
}

func (r *ClaimAssessmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ClaimAssessment, error) {
	var assessment models.ClaimAssessment
	query := `
		SELECT id, claim_id, surveyor_id, assessment_date, damage_assessment, loss_amount_assessed,
		       deductible, net_claim_amount, findings, status, created_at, updated_at
		FROM claim_assessments
		WHERE id = $1
	`

	err := r.db.GetContext(ctx, &assessment, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get assessment by id: %w", err)
	}

	return &assessment, nil
}

func (r *ClaimAssessmentRepository) CreateTx(tx *sqlx.Tx, assessment *models.ClaimAssessment) error {
	if assessment.ID == uuid.Nil {
		assessment.ID = uuid.New()
	}
	now := time.Now()
	if assessment.CreatedAt.IsZero() {
		assessment.CreatedAt = now
	}
	assessment.UpdatedAt = now

	query := `
		INSERT INTO claim_assessments (
			id, claim_id, surveyor_id, assessment_date, damage_assessment, loss_amount_assessed,
			deductible, net_claim_amount, findings, status, created_at, updated_at
		) VALUES (
			:id, :claim_id, :surveyor_id, :assessment_date, :damage_assessment, :loss_amount_assessed,
			:deductible, :net_claim_amount, :findings, :status, :created_at, :updated_at
		)`

	_, err := tx.NamedExec(query, assessment)
	if err != nil {
		return fmt.Errorf("failed to create assessment in transaction: %w", err)
	}

	return nil
}

func (r *ClaimAssessmentRepository) UpdateTx(tx *sqlx.Tx, assessment *models.ClaimAssessment) error {
	assessment.UpdatedAt = time.Now()

	query := `
		UPDATE claim_assessments SET
			damage_assessment = :damage_assessment,
			loss_amount_assessed = :loss_amount_assessed,
			deductible = :deductible,
			net_claim_amount = :net_claim_amount,
			findings = :findings,
			status = :status,
			updated_at = :updated_at
		WHERE id = :id`

	_, err := tx.NamedExec(query, assessment)
	if err != nil {
		return fmt.Errorf("failed to update assessment in transaction: %w", err)
	}

	return nil
}
