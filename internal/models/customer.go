package models

import (
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// CUSTOMER INPUTS (READ-ONLY TO THE ENGINE)
// ============================================================================

type CustomerProfile struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	UserID       string     `json:"user_id" db:"user_id"`
	FullName     string     `json:"full_name" db:"full_name"`
	DateOfBirth  *time.Time `json:"date_of_birth,omitempty" db:"date_of_birth"`
	AnnualIncome *float64   `json:"annual_income,omitempty" db:"annual_income"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

// Age computes the customer's age in whole years at the given time, or nil
// when the date of birth is unknown.
func (c CustomerProfile) Age(at time.Time) *int {
	if c.DateOfBirth == nil {
		return nil
	}
	years := at.Year() - c.DateOfBirth.Year()
	anniversary := c.DateOfBirth.AddDate(years, 0, 0)
	if anniversary.After(at) {
		years--
	}
	return &years
}

type RiskProfile struct {
	ID                    uuid.UUID    `json:"id" db:"id"`
	CustomerID            uuid.UUID    `json:"customer_id" db:"customer_id"`
	OverallRiskPercentage float64      `json:"overall_risk_percentage" db:"overall_risk_percentage"`
	RiskCategory          RiskCategory `json:"risk_category" db:"risk_category"`
	UpdatedAt             time.Time    `json:"updated_at" db:"updated_at"`
}

type Fleet struct {
	ID                 uuid.UUID `json:"id" db:"id"`
	CustomerID         uuid.UUID `json:"customer_id" db:"customer_id"`
	FleetName          string    `json:"fleet_name" db:"fleet_name"`
	TotalVehicles      int       `json:"total_vehicles" db:"total_vehicles"`
	DiscountPercentage float64   `json:"discount_percentage" db:"discount_percentage"`
	IsActive           bool      `json:"is_active" db:"is_active"`
}

// ClaimHistoryRecord is one year of aggregate claim history for a customer.
type ClaimHistoryRecord struct {
	ID                 uuid.UUID `json:"id" db:"id"`
	CustomerID         uuid.UUID `json:"customer_id" db:"customer_id"`
	ClaimYear          int       `json:"claim_year" db:"claim_year"`
	ClaimCount         int       `json:"claim_count" db:"claim_count"`
	ClaimRejectionRate float64   `json:"claim_rejection_rate" db:"claim_rejection_rate"`
}
