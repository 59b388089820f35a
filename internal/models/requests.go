package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// REQUEST DTOS
// ============================================================================

type GenerateQuotesRequest struct {
	ApplicationID uuid.UUID   `json:"application_id"`
	CoverageIDs   []uuid.UUID `json:"coverage_ids,omitempty"`
	AddonIDs      []uuid.UUID `json:"addon_ids,omitempty"`
}

type SubmitClaimRequest struct {
	PolicyID        uuid.UUID `json:"policy_id"`
	CustomerID      uuid.UUID `json:"customer_id"`
	InsuranceTypeID uuid.UUID `json:"insurance_type_id"`
	ClaimType       string    `json:"claim_type"`
	Description     string    `json:"description,omitempty"`
	IncidentDate    time.Time `json:"incident_date"`
	AmountRequested float64   `json:"amount_requested"`
}

type TransitionClaimRequest struct {
	NewStatus      ClaimStatus `json:"new_status"`
	Reason         string      `json:"reason,omitempty"`
	ApprovedAmount *float64    `json:"approved_amount,omitempty"`
}

type AssignSurveyorRequest struct {
	SurveyorID     string     `json:"surveyor_id"`
	AssessmentDate *time.Time `json:"assessment_date,omitempty"`
}

type RecordAssessmentRequest struct {
	DamageDescription string          `json:"damage_description"`
	LossAmount        float64         `json:"loss_amount"`
	Deductible        *float64        `json:"deductible,omitempty"`
	Findings          json.RawMessage `json:"findings,omitempty"`
}

type CreateSettlementRequest struct {
	SettlementMethod string      `json:"settlement_method,omitempty"`
	BankDetails      BankDetails `json:"bank_details,omitempty"`
}

type BankDetails struct {
	AccountNumber string `json:"account_number,omitempty"`
	BankName      string `json:"bank_name,omitempty"`
	IFSCCode      string `json:"ifsc_code,omitempty"`
	HolderName    string `json:"holder_name,omitempty"`
}

// ============================================================================
// RESPONSE DTOS
// ============================================================================

type GenerateQuotesResponse struct {
	ApplicationID   uuid.UUID             `json:"application_id"`
	TotalQuotes     int                   `json:"total_quotes"`
	Quotes          []Quote               `json:"quotes"`
	Recommendations []QuoteRecommendation `json:"recommendations"`
}

type QuoteComparisonResponse struct {
	ApplicationID   uuid.UUID             `json:"application_id"`
	TotalQuotes     int                   `json:"total_quotes"`
	Recommendations []QuoteRecommendation `json:"recommendations"`
	Quotes          []Quote               `json:"quotes"`
}

type TransitionClaimResponse struct {
	Claim   *Claim              `json:"claim"`
	History *ClaimStatusHistory `json:"history"`
}
