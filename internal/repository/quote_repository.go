package repository

import (
	"context"
	"fmt"
	"time"

	"decision-engine/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type QuoteRepository struct {
	db *sqlx.DB
}

func NewQuoteRepository(db *sqlx.DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

func (r *QuoteRepository) BeginTransaction() (*sqlx.Tx, error) {
	return r.db.Beginx()
}

func (r *QuoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Quote, error) {
	var quote models.Quote
	query := `
		SELECT id, quote_number, application_id, customer_id, insurance_type_id, insurer_id, status,
		       base_premium, coverage_premium, addon_premium, subtotal, risk_percentage, risk_adjustment,
		       total_discount, fleet_discount, net_premium, gst_percentage, gst_amount, total_premium,
		       sum_insured, policy_tenure_months, overall_score, validity_days, generated_at, expiry_at,
		       generated_by, accepted_at, created_at, updated_at
		FROM quotes
		WHERE id = $1
	`

	err := r.db.GetContext(ctx, &quote, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get quote by id: %w", err)
	}

	return &quote, nil
}

func (r *QuoteRepository) GetByApplicationID(ctx context.Context, applicationID uuid.UUID) ([]models.Quote, error) {
	var quotes []models.Quote
	query := `
		SELECT id, quote_number, application_id, customer_id, insurance_type_id, insurer_id, status,
		       base_premium, coverage_premium, addon_premium, subtotal, risk_percentage, risk_adjustment,
		       total_discount, fleet_discount, net_premium, gst_percentage, gst_amount, total_premium,
		       sum_insured, policy_tenure_months, overall_score, validity_days, generated_at, expiry_at,
		       generated_by, accepted_at, created_at, updated_at
		FROM quotes
		WHERE application_id = $1
		ORDER BY overall_score DESC, created_at DESC
	`

	err := r.db.SelectContext(ctx, &quotes, query, applicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quotes by application id: %w", err)
	}

	return quotes, nil
}

func (r *QuoteRepository) CreateTx(tx *sqlx.Tx, quote *models.Quote) error {
	if quote.ID == uuid.Nil {
		quote.ID = uuid.New()
	}
	now := time.Now()
	if quote.CreatedAt.IsZero() {
		quote.CreatedAt = now
	}
	quote.UpdatedAt = now

	query := `
		INSERT INTO quotes (
			id, quote_number, application_id, customer_id, insurance_type_id, insurer_id, status,
			base_premium, coverage_premium, addon_premium, subtotal, risk_percentage, risk_adjustment,
			total_discount, fleet_discount, net_premium, gst_percentage, gst_amount, total_premium,
			sum_insured, policy_tenure_months, overall_score, validity_days, generated_at, expiry_at,
			generated_by, accepted_at, created_at, updated_at
		) VALUES (
			:id, :quote_number, :application_id, :customer_id, :insurance_type_id, :insurer_id, :status,
			:base_premium, :coverage_premium, :addon_premium, :subtotal, :risk_percentage, :risk_adjustment,
			:total_discount, :fleet_discount, :net_premium, :gst_percentage, :gst_amount, :total_premium,
			:sum_insured, :policy_tenure_months, :overall_score, :validity_days, :generated_at, :expiry_at,
			:generated_by, :accepted_at, :created_at, :updated_at
		)`

	_, err := tx.NamedExec(query, quote)
	if err != nil {
		return fmt.Errorf("failed to create quote in transaction: %w", err)
	}

	return nil
}

// MarkAccepted flips a quote to ACCEPTED only while it is still GENERATED.
// The compare-and-set guard makes concurrent acceptors lose cleanly instead
// of double-transitioning.
func (r *QuoteRepository) MarkAccepted(ctx context.Context, id uuid.UUID, acceptedAt time.Time) (bool, error) {
	query := `
		UPDATE quotes
		SET status = $1, accepted_at = $2, updated_at = $2
		WHERE id = $3 AND status = $4
	`

	result, err := r.db.ExecContext(ctx, query, models.QuoteAccepted, acceptedAt, id, models.QuoteGenerated)
	if err != nil {
		return false, fmt.Errorf("failed to accept quote: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows > 0, nil
}
