package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"decision-engine/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

func createTestClaim(status models.ClaimStatus, amountRequested float64) *models.Claim {
	return &models.Claim{
		ID:              uuid.New(),
		ClaimNumber:     "CLM-20260101-TEST0001",
		PolicyID:        uuid.New(),
		CustomerID:      uuid.New(),
		InsuranceTypeID: uuid.New(),
		ClaimType:       "ACCIDENT",
		Status:          status,
		AmountRequested: amountRequested,
		SubmittedAt:     time.Now().Add(-48 * time.Hour),
	}
}

func testActor(role models.Role) Actor {
	return Actor{ID: "user-1", Role: role}
}

// ============================================================================
// TEST SUITE 1: TRANSITION TABLE
// ============================================================================

func TestCanTransition_AllowedMoves(t *testing.T) {
	allowed := []struct {
		from models.ClaimStatus
		to   models.ClaimStatus
	}{
		{models.ClaimSubmitted, models.ClaimUnderReview},
		{models.ClaimUnderReview, models.ClaimApproved},
		{models.ClaimUnderReview, models.ClaimRejected},
		{models.ClaimUnderReview, models.ClaimSurveyorAssigned},
		{models.ClaimSurveyorAssigned, models.ClaimUnderInvestigation},
		{models.ClaimUnderInvestigation, models.ClaimAssessed},
		{models.ClaimAssessed, models.ClaimApproved},
		{models.ClaimAssessed, models.ClaimRejected},
		{models.ClaimApproved, models.ClaimSettled},
		{models.ClaimSettled, models.ClaimClosed},
		{models.ClaimRejected, models.ClaimClosed},
	}

	for _, move := range allowed {
		assert.True(t, CanTransition(move.from, move.to),
			"%s -> %s should be allowed", move.from, move.to)
	}
}

func TestCanTransition_DisallowedMoves(t *testing.T) {
	disallowed := []struct {
		from models.ClaimStatus
		to   models.ClaimStatus
	}{
		{models.ClaimSubmitted, models.ClaimApproved},
		{models.ClaimSubmitted, models.ClaimSettled},
		{models.ClaimRejected, models.ClaimSettled},
		{models.ClaimSettled, models.ClaimApproved},
		{models.ClaimClosed, models.ClaimUnderReview},
		{models.ClaimApproved, models.ClaimRejected},
		{models.ClaimSurveyorAssigned, models.ClaimApproved},
	}

	for _, move := range disallowed {
		assert.False(t, CanTransition(move.from, move.to),
			"%s -> %s should be rejected", move.from, move.to)
	}
}

func TestCanTransition_ClosedIsTerminal(t *testing.T) {
	for _, to := range []models.ClaimStatus{
		models.ClaimSubmitted, models.ClaimUnderReview, models.ClaimSurveyorAssigned,
		models.ClaimUnderInvestigation, models.ClaimAssessed, models.ClaimApproved,
		models.ClaimRejected, models.ClaimSettled,
	} {
		assert.False(t, CanTransition(models.ClaimClosed, to))
	}
}

// ============================================================================
// TEST SUITE 2: PER-TARGET TRANSITION RULES
// ============================================================================

func TestApplyTransition_IllegalMoveRaisesInvalidTransition(t *testing.T) {
	claim := createTestClaim(models.ClaimRejected, 50000)

	err := ApplyTransition(claim, models.ClaimSettled, testActor(models.RoleAdmin), "", nil, time.Now())

	var transitionErr *InvalidTransitionError
	assert.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, models.ClaimRejected, transitionErr.From)
	assert.Equal(t, models.ClaimSettled, transitionErr.To)
	assert.Equal(t, models.ClaimRejected, claim.Status, "A failed transition must not mutate the claim")
}

func TestAuthorizeTransition_TableCheckedBeforeAuthority(t *testing.T) {
	// An officer cannot approve a 50000 claim, but SUBMITTED -> APPROVED is
	// not a legal move either. The table answers first; the authority
	// resolver is never consulted.
	workflow := &ClaimWorkflow{}
	claim := createTestClaim(models.ClaimSubmitted, 50000)

	err := workflow.authorizeTransition(context.Background(), claim, models.ClaimApproved, testActor(models.RoleOfficer))

	var transitionErr *InvalidTransitionError
	assert.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, models.ClaimSubmitted, transitionErr.From)
	assert.Equal(t, models.ClaimApproved, transitionErr.To)

	var unauthorizedErr *UnauthorizedError
	assert.False(t, errors.As(err, &unauthorizedErr))
}

func TestApplyTransition_UnderReviewStampsReviewer(t *testing.T) {
	claim := createTestClaim(models.ClaimSubmitted, 50000)
	now := time.Now()

	err := ApplyTransition(claim, models.ClaimUnderReview, testActor(models.RoleOfficer), "", nil, now)

	assert.NoError(t, err)
	assert.Equal(t, models.ClaimUnderReview, claim.Status)
	assert.Equal(t, now, *claim.ReviewStartedAt)
	assert.Equal(t, "user-1", *claim.ReviewedBy)
}

func TestApplyTransition_ApproveRequiresAmount(t *testing.T) {
	claim := createTestClaim(models.ClaimUnderReview, 50000)

	err := ApplyTransition(claim, models.ClaimApproved, testActor(models.RoleManager), "", nil, time.Now())

	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.Equal(t, models.ClaimUnderReview, claim.Status)
}

func TestApplyTransition_ApproveRejectsAmountAboveRequested(t *testing.T) {
	claim := createTestClaim(models.ClaimUnderReview, 50000)
	amount := 60000.0

	err := ApplyTransition(claim, models.ClaimApproved, testActor(models.RoleManager), "", &amount, time.Now())

	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestApplyTransition_ApproveSetsAmountAndTimestamps(t *testing.T) {
	claim := createTestClaim(models.ClaimUnderReview, 50000)
	amount := 45000.0
	now := time.Now()

	err := ApplyTransition(claim, models.ClaimApproved, testActor(models.RoleManager), "", &amount, now)

	assert.NoError(t, err)
	assert.Equal(t, models.ClaimApproved, claim.Status)
	assert.Equal(t, 45000.0, *claim.AmountApproved)
	assert.Equal(t, now, *claim.ApprovedAt)
	assert.Equal(t, "user-1", *claim.ReviewedBy)
}

func TestApplyTransition_RejectRequiresReason(t *testing.T) {
	claim := createTestClaim(models.ClaimUnderReview, 50000)

	err := ApplyTransition(claim, models.ClaimRejected, testActor(models.RoleOfficer), "", nil, time.Now())

	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)

	err = ApplyTransition(claim, models.ClaimRejected, testActor(models.RoleOfficer), "fraud indicators", nil, time.Now())
	assert.NoError(t, err)
	assert.Equal(t, "fraud indicators", *claim.RejectionReason)
	assert.NotNil(t, claim.RejectedAt)
}

func TestApplyTransition_RejectStampsReviewer(t *testing.T) {
	claim := createTestClaim(models.ClaimAssessed, 50000)

	err := ApplyTransition(claim, models.ClaimRejected, testActor(models.RoleManager), "insufficient evidence", nil, time.Now())

	assert.NoError(t, err)
	assert.Equal(t, models.ClaimRejected, claim.Status)
	assert.Equal(t, "user-1", *claim.ReviewedBy, "Rejection records who made the call")
}

func TestApplyTransition_SettleRequiresApprovedAmount(t *testing.T) {
	claim := createTestClaim(models.ClaimApproved, 50000)

	err := ApplyTransition(claim, models.ClaimSettled, testActor(models.RoleManager), "", nil, time.Now())

	var preconditionErr *PreconditionError
	assert.ErrorAs(t, err, &preconditionErr)
}

func TestApplyTransition_SettleDefaultsToApprovedAmount(t *testing.T) {
	claim := createTestClaim(models.ClaimApproved, 50000)
	approved := 45000.0
	claim.AmountApproved = &approved

	err := ApplyTransition(claim, models.ClaimSettled, testActor(models.RoleManager), "", nil, time.Now())

	assert.NoError(t, err)
	assert.Equal(t, 45000.0, *claim.AmountSettled)
	assert.Equal(t, "user-1", *claim.SettledBy)
	assert.NotNil(t, claim.SettledAt)
}

func TestApplyTransition_SettleOverrideCannotExceedApproved(t *testing.T) {
	claim := createTestClaim(models.ClaimApproved, 50000)
	approved := 45000.0
	claim.AmountApproved = &approved

	tooHigh := 46000.0
	err := ApplyTransition(claim, models.ClaimSettled, testActor(models.RoleManager), "", &tooHigh, time.Now())
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)

	lower := 40000.0
	err = ApplyTransition(claim, models.ClaimSettled, testActor(models.RoleManager), "", &lower, time.Now())
	assert.NoError(t, err)
	assert.Equal(t, 40000.0, *claim.AmountSettled, "A lower explicit override is honored")
}

func TestApplyTransition_CloseStampsClosedAt(t *testing.T) {
	claim := createTestClaim(models.ClaimSettled, 50000)
	now := time.Now()

	err := ApplyTransition(claim, models.ClaimClosed, testActor(models.RoleOfficer), "", nil, now)

	assert.NoError(t, err)
	assert.Equal(t, models.ClaimClosed, claim.Status)
	assert.Equal(t, now, *claim.ClosedAt)
}

// ============================================================================
// TEST SUITE 3: CLAIM SUBMISSION
// ============================================================================

func TestGenerateClaimNumber_Format(t *testing.T) {
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)

	number := GenerateClaimNumber(now)

	assert.Regexp(t, `^CLM-20260829-[0-9A-F]{8}$`, number)
	assert.NotEqual(t, number, GenerateClaimNumber(now), "Numbers are unique per call")
}

func TestGenerateQuoteNumber_Format(t *testing.T) {
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)

	assert.Regexp(t, `^QT-20260829-[0-9A-F]{8}$`, GenerateQuoteNumber(now))
}

func TestSubmitClaim_ValidationFailures(t *testing.T) {
	workflow := &ClaimWorkflow{}
	actor := testActor(models.RoleCustomer)

	var validationErr *ValidationError

	_, err := workflow.SubmitClaim(context.Background(), actor, models.SubmitClaimRequest{
		AmountRequested: 1000, IncidentDate: time.Now().Add(-time.Hour),
	})
	assert.ErrorAs(t, err, &validationErr, "Missing claim type is rejected")

	_, err = workflow.SubmitClaim(context.Background(), actor, models.SubmitClaimRequest{
		ClaimType: "ACCIDENT", AmountRequested: 0, IncidentDate: time.Now().Add(-time.Hour),
	})
	assert.ErrorAs(t, err, &validationErr, "Zero requested amount is rejected")

	_, err = workflow.SubmitClaim(context.Background(), actor, models.SubmitClaimRequest{
		ClaimType: "ACCIDENT", AmountRequested: 1000, IncidentDate: time.Now().Add(24 * time.Hour),
	})
	assert.ErrorAs(t, err, &validationErr, "Future incident date is rejected")
}

// ============================================================================
// TEST SUITE 4: SLA COMPUTATION
// ============================================================================

func TestComputeSLA_InProgressWithinSLA(t *testing.T) {
	claim := createTestClaim(models.ClaimUnderReview, 50000)
	claim.SubmittedAt = time.Now().Add(-5 * 24 * time.Hour)

	status := ComputeSLA(claim, 15, time.Now())

	assert.Equal(t, models.SLAInProgress, status.State)
	assert.Equal(t, 5, status.DaysElapsed)
	assert.Equal(t, 10, status.DaysRemaining)
	assert.True(t, status.WithinSLA)
}

func TestComputeSLA_InProgressBreached(t *testing.T) {
	claim := createTestClaim(models.ClaimUnderReview, 50000)
	claim.SubmittedAt = time.Now().Add(-20 * 24 * time.Hour)

	status := ComputeSLA(claim, 15, time.Now())

	assert.Equal(t, models.SLAInProgress, status.State)
	assert.Equal(t, 20, status.DaysElapsed)
	assert.Equal(t, 0, status.DaysRemaining, "Remaining days never go negative")
	assert.False(t, status.WithinSLA)
}

func TestComputeSLA_TerminalClaimUsesProcessingTime(t *testing.T) {
	claim := createTestClaim(models.ClaimSettled, 50000)
	claim.SubmittedAt = time.Now().Add(-30 * 24 * time.Hour)
	settled := claim.SubmittedAt.Add(10 * 24 * time.Hour)
	claim.SettledAt = &settled

	status := ComputeSLA(claim, 15, time.Now())

	assert.Equal(t, models.SLACompleted, status.State)
	assert.Equal(t, 10, status.ProcessingDays, "Terminal claims measure submission to terminal timestamp")
	assert.True(t, status.WithinSLA)
}

func TestComputeSLA_TerminalClaimBreached(t *testing.T) {
	claim := createTestClaim(models.ClaimRejected, 50000)
	claim.SubmittedAt = time.Now().Add(-40 * 24 * time.Hour)
	rejected := claim.SubmittedAt.Add(20 * 24 * time.Hour)
	claim.RejectedAt = &rejected

	status := ComputeSLA(claim, 15, time.Now())

	assert.Equal(t, models.SLACompleted, status.State)
	assert.Equal(t, 20, status.ProcessingDays)
	assert.False(t, status.WithinSLA)
}

func TestDaysBetween_CountsCalendarDays(t *testing.T) {
	// A claim submitted late at night and resolved the next morning has aged
	// one day even though fewer than 24 hours passed.
	lateNight := time.Date(2026, 8, 1, 23, 0, 0, 0, time.UTC)
	nextMorning := time.Date(2026, 8, 2, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, 1, daysBetween(lateNight, nextMorning))

	sameDay := time.Date(2026, 8, 1, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, daysBetween(sameDay, lateNight))

	aWeekLater := time.Date(2026, 8, 8, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, 7, daysBetween(lateNight, aWeekLater))

	assert.Equal(t, 0, daysBetween(nextMorning, lateNight), "Ordering never yields a negative age")
}
