package models

import (
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// QUOTE ENGINE OUTPUT
// ============================================================================

// Quote is immutable once created except for status and the acceptance
// timestamp. It carries the full itemized premium breakdown for audit.
type Quote struct {
	ID              uuid.UUID   `json:"id" db:"id"`
	QuoteNumber     string      `json:"quote_number" db:"quote_number"`
	ApplicationID   uuid.UUID   `json:"application_id" db:"application_id"`
	CustomerID      uuid.UUID   `json:"customer_id" db:"customer_id"`
	InsuranceTypeID uuid.UUID   `json:"insurance_type_id" db:"insurance_type_id"`
	InsurerID       uuid.UUID   `json:"insurer_id" db:"insurer_id"`
	Status          QuoteStatus `json:"status" db:"status"`

	BasePremium        float64 `json:"base_premium" db:"base_premium"`
	CoveragePremium    float64 `json:"coverage_premium" db:"coverage_premium"`
	AddonPremium       float64 `json:"addon_premium" db:"addon_premium"`
	Subtotal           float64 `json:"subtotal" db:"subtotal"`
	RiskPercentage     float64 `json:"risk_percentage" db:"risk_percentage"`
	RiskAdjustment     float64 `json:"risk_adjustment" db:"risk_adjustment"`
	TotalDiscount      float64 `json:"total_discount" db:"total_discount"`
	FleetDiscount      float64 `json:"fleet_discount" db:"fleet_discount"`
	NetPremium         float64 `json:"net_premium" db:"net_premium"`
	GSTPercentage      float64 `json:"gst_percentage" db:"gst_percentage"`
	GSTAmount          float64 `json:"gst_amount" db:"gst_amount"`
	TotalPremium       float64 `json:"total_premium" db:"total_premium"`
	SumInsured         float64 `json:"sum_insured" db:"sum_insured"`
	PolicyTenureMonths int     `json:"policy_tenure_months" db:"policy_tenure_months"`

	OverallScore float64 `json:"overall_score" db:"overall_score"`

	ValidityDays int        `json:"validity_days" db:"validity_days"`
	GeneratedAt  time.Time  `json:"generated_at" db:"generated_at"`
	ExpiryAt     time.Time  `json:"expiry_at" db:"expiry_at"`
	GeneratedBy  *string    `json:"generated_by,omitempty" db:"generated_by"`
	AcceptedAt   *time.Time `json:"accepted_at,omitempty" db:"accepted_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsExpired reports whether the quote's validity window has passed.
func (q Quote) IsExpired(now time.Time) bool {
	return now.After(q.ExpiryAt)
}

// EffectiveStatus resolves the read-time status: a generated or sent quote
// past its expiry reads as EXPIRED without ever being written as such.
func (q Quote) EffectiveStatus(now time.Time) QuoteStatus {
	if (q.Status == QuoteGenerated || q.Status == QuoteSent) && q.IsExpired(now) {
		return QuoteExpired
	}
	return q.Status
}

// QuoteRecommendation is a ranked pointer to a top quote for an application,
// with denormalized score components so comparison pages need no recompute.
type QuoteRecommendation struct {
	ID                   uuid.UUID `json:"id" db:"id"`
	ApplicationID        uuid.UUID `json:"application_id" db:"application_id"`
	CustomerID           uuid.UUID `json:"customer_id" db:"customer_id"`
	InsuranceTypeID      uuid.UUID `json:"insurance_type_id" db:"insurance_type_id"`
	QuoteID              uuid.UUID `json:"quote_id" db:"quote_id"`
	Rank                 int       `json:"rank" db:"rank"`
	Reason               string    `json:"reason" db:"reason"`
	SuitabilityScore     float64   `json:"suitability_score" db:"suitability_score"`
	AffordabilityScore   float64   `json:"affordability_score" db:"affordability_score"`
	ClaimRatioScore      float64   `json:"claim_ratio_score" db:"claim_ratio_score"`
	CoverageMatchScore   float64   `json:"coverage_match_score" db:"coverage_match_score"`
	ServiceRatingScore   float64   `json:"service_rating_score" db:"service_rating_score"`
	CreatedAt            time.Time `json:"created_at" db:"created_at"`
}
