package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// CLAIM LIFECYCLE
// ============================================================================

// Claim owns the requested/approved/settled amounts. Status is the single
// source of truth for which mutations are legal; all mutation goes through
// the claim workflow service, never direct field edits.
type Claim struct {
	ID              uuid.UUID   `json:"id" db:"id"`
	ClaimNumber     string      `json:"claim_number" db:"claim_number"`
	PolicyID        uuid.UUID   `json:"policy_id" db:"policy_id"`
	CustomerID      uuid.UUID   `json:"customer_id" db:"customer_id"`
	InsuranceTypeID uuid.UUID   `json:"insurance_type_id" db:"insurance_type_id"`
	ClaimType       string      `json:"claim_type" db:"claim_type"`
	Description     string      `json:"description" db:"description"`
	IncidentDate    time.Time   `json:"incident_date" db:"incident_date"`
	Status          ClaimStatus `json:"status" db:"status"`

	AmountRequested float64  `json:"amount_requested" db:"amount_requested"`
	AmountApproved  *float64 `json:"amount_approved,omitempty" db:"amount_approved"`
	AmountSettled   *float64 `json:"amount_settled,omitempty" db:"amount_settled"`

	RejectionReason *string `json:"rejection_reason,omitempty" db:"rejection_reason"`

	SubmittedAt     time.Time  `json:"submitted_at" db:"submitted_at"`
	ReviewStartedAt *time.Time `json:"review_started_at,omitempty" db:"review_started_at"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty" db:"approved_at"`
	RejectedAt      *time.Time `json:"rejected_at,omitempty" db:"rejected_at"`
	SettledAt       *time.Time `json:"settled_at,omitempty" db:"settled_at"`
	ClosedAt        *time.Time `json:"closed_at,omitempty" db:"closed_at"`

	SubmittedBy *string `json:"submitted_by,omitempty" db:"submitted_by"`
	ReviewedBy  *string `json:"reviewed_by,omitempty" db:"reviewed_by"`
	SettledBy   *string `json:"settled_by,omitempty" db:"settled_by"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsTerminal reports whether the claim has reached a state from which the
// SLA clock is stopped.
func (c Claim) IsTerminal() bool {
	return c.Status == ClaimSettled || c.Status == ClaimClosed || c.Status == ClaimRejected
}

// TerminalAt returns the timestamp at which the claim reached its terminal
// state, preferring settlement over rejection over closure.
func (c Claim) TerminalAt() *time.Time {
	switch {
	case c.SettledAt != nil:
		return c.SettledAt
	case c.RejectedAt != nil:
		return c.RejectedAt
	case c.ClosedAt != nil:
		return c.ClosedAt
	}
	return nil
}

// ClaimStatusHistory is the append-only audit trail of claim transitions.
// Rows are never edited or deleted.
type ClaimStatusHistory struct {
	ID        uuid.UUID   `json:"id" db:"id"`
	ClaimID   uuid.UUID   `json:"claim_id" db:"claim_id"`
	OldStatus ClaimStatus `json:"old_status" db:"old_status"`
	NewStatus ClaimStatus `json:"new_status" db:"new_status"`
	Reason    string      `json:"reason" db:"reason"`
	ChangedBy string      `json:"changed_by" db:"changed_by"`
	IPAddress *string     `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent *string     `json:"user_agent,omitempty" db:"user_agent"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
}

// RequestMeta carries request metadata captured into the history row when
// available.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

type ClaimAssessment struct {
	ID                 uuid.UUID        `json:"id" db:"id"`
	ClaimID            uuid.UUID        `json:"claim_id" db:"claim_id"`
	SurveyorID         string           `json:"surveyor_id" db:"surveyor_id"`
	AssessmentDate     time.Time        `json:"assessment_date" db:"assessment_date"`
	DamageAssessment   string           `json:"damage_assessment" db:"damage_assessment"`
	LossAmountAssessed *float64         `json:"loss_amount_assessed,omitempty" db:"loss_amount_assessed"`
	Deductible         *float64         `json:"deductible,omitempty" db:"deductible"`
	NetClaimAmount     *float64         `json:"net_claim_amount,omitempty" db:"net_claim_amount"`
	Findings           json.RawMessage  `json:"findings,omitempty" db:"findings"`
	Status             AssessmentStatus `json:"status" db:"status"`
	CreatedAt          time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at" db:"updated_at"`
}

type ClaimSettlement struct {
	ID                uuid.UUID        `json:"id" db:"id"`
	ClaimID           uuid.UUID        `json:"claim_id" db:"claim_id"`
	SettlementAmount  float64          `json:"settlement_amount" db:"settlement_amount"`
	SettlementMethod  string           `json:"settlement_method" db:"settlement_method"`
	BankAccountNumber string           `json:"bank_account_number" db:"bank_account_number"`
	BankName          string           `json:"bank_name" db:"bank_name"`
	BankIFSCCode      string           `json:"bank_ifsc_code" db:"bank_ifsc_code"`
	AccountHolderName string           `json:"account_holder_name" db:"account_holder_name"`
	ApprovedBy        string           `json:"approved_by" db:"approved_by"`
	Status            SettlementStatus `json:"status" db:"status"`
	CreatedAt         time.Time        `json:"created_at" db:"created_at"`
}

// SLAStatus is the computed SLA view of a claim.
type SLAStatus struct {
	State          SLAState `json:"state"`
	SLADays        int      `json:"sla_days"`
	ProcessingDays int      `json:"processing_days,omitempty"`
	DaysElapsed    int      `json:"days_elapsed,omitempty"`
	DaysRemaining  int      `json:"days_remaining,omitempty"`
	WithinSLA      bool     `json:"within_sla"`
}
