package models

import (
	"time"

	"github.com/google/uuid"
)

// Application is the approved request the quote engine prices. The engine
// only reads it; application CRUD lives with the application collaborator.
type Application struct {
	ID                      uuid.UUID         `json:"id" db:"id"`
	ApplicationNumber       string            `json:"application_number" db:"application_number"`
	CustomerID              uuid.UUID         `json:"customer_id" db:"customer_id"`
	InsuranceTypeID         uuid.UUID         `json:"insurance_type_id" db:"insurance_type_id"`
	RequestedCoverageAmount float64           `json:"requested_coverage_amount" db:"requested_coverage_amount"`
	PolicyTenureMonths      int               `json:"policy_tenure_months" db:"policy_tenure_months"`
	BudgetMin               *float64          `json:"budget_min,omitempty" db:"budget_min"`
	BudgetMax               *float64          `json:"budget_max,omitempty" db:"budget_max"`
	Status                  ApplicationStatus `json:"status" db:"status"`
	CreatedAt               time.Time         `json:"created_at" db:"created_at"`
}
