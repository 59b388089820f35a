package models

import (
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// CATALOG (READ-ONLY INPUTS TO THE ENGINE)
// ============================================================================

type InsuranceType struct {
	ID       uuid.UUID `json:"id" db:"id"`
	TypeName string    `json:"type_name" db:"type_name"`
	TypeCode string    `json:"type_code" db:"type_code"`
	IsActive bool      `json:"is_active" db:"is_active"`
}

type Insurer struct {
	ID                   uuid.UUID `json:"id" db:"id"`
	CompanyName          string    `json:"company_name" db:"company_name"`
	CompanyCode          string    `json:"company_code" db:"company_code"`
	ClaimSettlementRatio float64   `json:"claim_settlement_ratio" db:"claim_settlement_ratio"`
	ServiceRating        float64   `json:"service_rating" db:"service_rating"`
	IsActive             bool      `json:"is_active" db:"is_active"`
	CreatedAt            time.Time `json:"created_at" db:"created_at"`
}

type CoverageType struct {
	ID                 uuid.UUID `json:"id" db:"id"`
	InsuranceTypeID    uuid.UUID `json:"insurance_type_id" db:"insurance_type_id"`
	CoverageName       string    `json:"coverage_name" db:"coverage_name"`
	IsMandatory        bool      `json:"is_mandatory" db:"is_mandatory"`
	BasePremiumPerUnit float64   `json:"base_premium_per_unit" db:"base_premium_per_unit"`
	IsActive           bool      `json:"is_active" db:"is_active"`
}

type RiderAddon struct {
	ID                uuid.UUID `json:"id" db:"id"`
	InsuranceTypeID   uuid.UUID `json:"insurance_type_id" db:"insurance_type_id"`
	AddonName         string    `json:"addon_name" db:"addon_name"`
	PremiumPercentage float64   `json:"premium_percentage" db:"premium_percentage"`
	MaxCoverageLimit  *float64  `json:"max_coverage_limit,omitempty" db:"max_coverage_limit"`
	IsActive          bool      `json:"is_active" db:"is_active"`
}
