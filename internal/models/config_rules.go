package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// CONFIGURATION STORE (VERSIONED RULE SETS, READ-ONLY TO THE ENGINE)
// ============================================================================

type PremiumSlab struct {
	ID                uuid.UUID `json:"id" db:"id"`
	InsuranceTypeID   uuid.UUID `json:"insurance_type_id" db:"insurance_type_id"`
	SlabName          string    `json:"slab_name" db:"slab_name"`
	MinCoverageAmount float64   `json:"min_coverage_amount" db:"min_coverage_amount"`
	MaxCoverageAmount float64   `json:"max_coverage_amount" db:"max_coverage_amount"`
	BasePremium       float64   `json:"base_premium" db:"base_premium"`
	PercentageMarkup  float64   `json:"percentage_markup" db:"percentage_markup"`
	IsActive          bool      `json:"is_active" db:"is_active"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}

// Contains reports whether the coverage amount falls inside the slab range.
func (s PremiumSlab) Contains(coverageAmount float64) bool {
	return coverageAmount >= s.MinCoverageAmount && coverageAmount <= s.MaxCoverageAmount
}

// Premium computes base_premium + coverage_amount * markup%/100 for the slab.
func (s PremiumSlab) Premium(coverageAmount float64) float64 {
	return s.BasePremium + coverageAmount*(s.PercentageMarkup/100)
}

type DiscountRule struct {
	ID                 uuid.UUID       `json:"id" db:"id"`
	RuleName           string          `json:"rule_name" db:"rule_name"`
	RuleCode           string          `json:"rule_code" db:"rule_code"`
	InsuranceTypeID    *uuid.UUID      `json:"insurance_type_id,omitempty" db:"insurance_type_id"`
	RuleCondition      json.RawMessage `json:"rule_condition" db:"rule_condition"`
	DiscountPercentage float64         `json:"discount_percentage" db:"discount_percentage"`
	DiscountMaxAmount  *float64        `json:"discount_max_amount,omitempty" db:"discount_max_amount"`
	RulePriority       int             `json:"rule_priority" db:"rule_priority"`
	IsCombinable       bool            `json:"is_combinable" db:"is_combinable"`
	IsActive           bool            `json:"is_active" db:"is_active"`
	EffectiveFrom      *time.Time      `json:"effective_from,omitempty" db:"effective_from"`
	EffectiveTo        *time.Time      `json:"effective_to,omitempty" db:"effective_to"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
}

// ValidForDate reports whether the rule's effective window contains the date.
// An open-ended side of the window always passes.
func (r DiscountRule) ValidForDate(day time.Time) bool {
	d := day.Truncate(24 * time.Hour)
	if r.EffectiveFrom != nil && d.Before(r.EffectiveFrom.Truncate(24*time.Hour)) {
		return false
	}
	if r.EffectiveTo != nil && d.After(r.EffectiveTo.Truncate(24*time.Hour)) {
		return false
	}
	return true
}

// ScoringWeight is the per-type factor weight row. The default scoring
// formula uses fixed constants; these rows exist as the tuning extension
// point and are not consulted unless that extension is enabled.
type ScoringWeight struct {
	ID              uuid.UUID `json:"id" db:"id"`
	InsuranceTypeID uuid.UUID `json:"insurance_type_id" db:"insurance_type_id"`
	FactorName      string    `json:"factor_name" db:"factor_name"`
	FactorWeight    float64   `json:"factor_weight" db:"factor_weight"`
	IsActive        bool      `json:"is_active" db:"is_active"`
}

type ClaimApprovalThreshold struct {
	ID                 uuid.UUID     `json:"id" db:"id"`
	InsuranceTypeID    uuid.UUID     `json:"insurance_type_id" db:"insurance_type_id"`
	ApprovalLevel      ApprovalLevel `json:"approval_level" db:"approval_level"`
	MinClaimAmount     float64       `json:"min_claim_amount" db:"min_claim_amount"`
	MaxClaimAmount     float64       `json:"max_claim_amount" db:"max_claim_amount"`
	RequiredRole       Role          `json:"required_role" db:"required_role"`
	MaxProcessingDays  int           `json:"max_processing_days" db:"max_processing_days"`
	IsActive           bool          `json:"is_active" db:"is_active"`
	CreatedAt          time.Time     `json:"created_at" db:"created_at"`
}

// Contains reports whether the claim amount falls inside the threshold range.
func (t ClaimApprovalThreshold) Contains(amount float64) bool {
	return amount >= t.MinClaimAmount && amount <= t.MaxClaimAmount
}
