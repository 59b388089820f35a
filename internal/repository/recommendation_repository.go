package repository

import (
	"context"
	"fmt"
	"time"

	"decision-engine/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type RecommendationRepository struct {
	db *sqlx.DB
}

func NewRecommendationRepository(db *sqlx.DB) *RecommendationRepository {
	return &RecommendationRepository{db: db}
}

// DeleteByApplicationTx clears prior recommendations inside the quote
// generation transaction so regeneration replaces instead of duplicating.
func (r *RecommendationRepository) DeleteByApplicationTx(tx *sqlx.Tx, applicationID uuid.UUID) error {
	query := `DELETE FROM quote_recommendations WHERE application_id = $1`

	_, err := tx.Exec(query, applicationID)
	if err != nil {
		return fmt.Errorf("failed to delete recommendations in transaction: %w", err)
	}

	return nil
}

func (r *RecommendationRepository) CreateTx(tx *sqlx.Tx, rec *models.QuoteRecommendation) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO quote_recommendations (
			id, application_id, customer_id, insurance_type_id, quote_id, rank, reason,
			suitability_score, affordability_score, claim_ratio_score, coverage_match_score,
			service_rating_score, created_at
		) VALUES (
			:id, :application_id, :customer_id, :insurance_type_id, :quote_id, :rank, :reason,
			:suitability_score, :affordability_score, :claim_ratio_score, :coverage_match_score,
			:service_rating_score, :created_at
		)`

	_, err := tx.NamedExec(query, rec)
	if err != nil {
		return fmt.Errorf("failed to create recommendation in transaction: %w", err)
	}

	return nil
}

func (r *RecommendationRepository) GetByApplicationID(ctx context.Context, applicationID uuid.UUID) ([]models.QuoteRecommendation, error) {
	var recs []models.QuoteRecommendation
	query := `
		SELECT id, application_id, customer_id, insurance_type_id, quote_id, rank, reason,
		       suitability_score, affordability_score, claim_ratio_score, coverage_match_score,
		       service_rating_score, created_at
		FROM quote_recommendations
		WHERE application_id = $1
		ORDER BY rank
	`

	err := r.db.SelectContext(ctx, &recs, query, applicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get recommendations by application id: %w", err)
	}

	return recs, nil
}
