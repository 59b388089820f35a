package models

type ApplicationStatus string

const (
	ApplicationDraft     ApplicationStatus = "DRAFT"
	ApplicationSubmitted ApplicationStatus = "SUBMITTED"
	ApplicationApproved  ApplicationStatus = "APPROVED"
	ApplicationRejected  ApplicationStatus = "REJECTED"
)

type QuoteStatus string

const (
	QuoteGenerated QuoteStatus = "GENERATED"
	QuoteSent      QuoteStatus = "SENT"
	QuoteAccepted  QuoteStatus = "ACCEPTED"
	QuoteRejected  QuoteStatus = "REJECTED"
	// QuoteExpired is computed at read time from expiry_at, never stored
	// as a transition.
	QuoteExpired QuoteStatus = "EXPIRED"
)

type ClaimStatus string

const (
	ClaimSubmitted          ClaimStatus = "SUBMITTED"
	ClaimUnderReview        ClaimStatus = "UNDER_REVIEW"
	ClaimSurveyorAssigned   ClaimStatus = "SURVEYOR_ASSIGNED"
	ClaimUnderInvestigation ClaimStatus = "UNDER_INVESTIGATION"
	ClaimAssessed           ClaimStatus = "ASSESSED"
	ClaimApproved           ClaimStatus = "APPROVED"
	ClaimRejected           ClaimStatus = "REJECTED"
	ClaimSettled            ClaimStatus = "SETTLED"
	ClaimClosed             ClaimStatus = "CLOSED"
)

type AssessmentStatus string

const (
	AssessmentPending   AssessmentStatus = "PENDING"
	AssessmentCompleted AssessmentStatus = "COMPLETED"
)

type SettlementStatus string

const (
	SettlementPending   SettlementStatus = "PENDING"
	SettlementProcessed SettlementStatus = "PROCESSED"
	SettlementFailed    SettlementStatus = "FAILED"
)

type ApprovalLevel string

const (
	ApprovalAuto     ApprovalLevel = "AUTO_APPROVE"
	ApprovalOfficer  ApprovalLevel = "OFFICER_APPROVAL"
	ApprovalManager  ApprovalLevel = "MANAGER_APPROVAL"
	ApprovalDirector ApprovalLevel = "DIRECTOR_APPROVAL"
)

// Role is the acting user's role as asserted by the upstream auth layer.
// Roles form a strict hierarchy; a superior role satisfies any requirement
// placed on an inferior one.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleOfficer  Role = "OFFICER"
	RoleManager  Role = "MANAGER"
	RoleDirector Role = "DIRECTOR"
	RoleAdmin    Role = "ADMIN"
)

var roleRanks = map[Role]int{
	RoleCustomer: 0,
	RoleOfficer:  1,
	RoleManager:  2,
	RoleDirector: 3,
	RoleAdmin:    4,
}

// Rank returns the role's position in the hierarchy; unknown roles rank
// below CUSTOMER so they never satisfy an approval requirement.
func (r Role) Rank() int {
	if rank, ok := roleRanks[r]; ok {
		return rank
	}
	return -1
}

// Satisfies reports whether the role meets or exceeds the required role.
func (r Role) Satisfies(required Role) bool {
	return r.Rank() >= required.Rank() && required.Rank() >= 0
}

type RiskCategory string

const (
	RiskLow    RiskCategory = "LOW"
	RiskMedium RiskCategory = "MEDIUM"
	RiskHigh   RiskCategory = "HIGH"
)

type SLAState string

const (
	SLACompleted  SLAState = "COMPLETED"
	SLAInProgress SLAState = "IN_PROGRESS"
)
