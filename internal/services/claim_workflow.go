package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"decision-engine/internal/config"
	"decision-engine/internal/models"
	"decision-engine/internal/repository"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Actor identifies who is driving a claim operation.
type Actor struct {
	ID   string
	Role models.Role
}

// claimTransitions is the single source of truth for legal status moves.
// Anything not listed here is rejected before any field is touched.
var claimTransitions = map[models.ClaimStatus][]models.ClaimStatus{
	models.ClaimSubmitted:          {models.ClaimUnderReview},
	models.ClaimUnderReview:        {models.ClaimApproved, models.ClaimRejected, models.ClaimSurveyorAssigned},
	models.ClaimSurveyorAssigned:   {models.ClaimUnderInvestigation},
	models.ClaimUnderInvestigation: {models.ClaimAssessed},
	models.ClaimAssessed:           {models.ClaimApproved, models.ClaimRejected},
	models.ClaimApproved:           {models.ClaimSettled},
	models.ClaimSettled:            {models.ClaimClosed},
	models.ClaimRejected:           {models.ClaimClosed},
	models.ClaimClosed:             {},
}

// CanTransition reports whether moving from one claim status to another is
// permitted by the transition table.
func CanTransition(from, to models.ClaimStatus) bool {
	for _, allowed := range claimTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ClaimWorkflow drives the claim lifecycle. Every mutation goes through the
// transition table inside one transaction with a row lock, so a losing
// concurrent writer observes a stale-state conflict instead of silently
// double-transitioning.
type ClaimWorkflow struct {
	cfg            config.EngineConfig
	claimRepo      *repository.ClaimRepository
	historyRepo    *repository.ClaimHistoryRepository
	assessmentRepo *repository.ClaimAssessmentRepository
	settlementRepo *repository.ClaimSettlementRepository
	authority      *AuthorityResolver
}

func NewClaimWorkflow(
	cfg config.EngineConfig,
	claimRepo *repository.ClaimRepository,
	historyRepo *repository.ClaimHistoryRepository,
	assessmentRepo *repository.ClaimAssessmentRepository,
	settlementRepo *repository.ClaimSettlementRepository,
	authority *AuthorityResolver,
) *ClaimWorkflow {
	return &ClaimWorkflow{
		cfg:            cfg,
		claimRepo:      claimRepo,
		historyRepo:    historyRepo,
		assessmentRepo: assessmentRepo,
		settlementRepo: settlementRepo,
		authority:      authority,
	}
}

// GenerateClaimNumber produces a human-readable claim number.
func GenerateClaimNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("CLM-%s-%s", now.Format("20060102"), suffix)
}

// SubmitClaim registers a new claim in SUBMITTED state.
func (w *ClaimWorkflow) SubmitClaim(ctx context.Context, actor Actor, req models.SubmitClaimRequest) (*models.Claim, error) {
	if req.ClaimType == "" {
		return nil, &ValidationError{Msg: "claim type is required"}
	}
	if req.AmountRequested <= 0 {
		return nil, &ValidationError{Msg: "requested amount must be positive"}
	}
	if req.IncidentDate.After(time.Now()) {
		return nil, &ValidationError{Msg: "incident date cannot be in the future"}
	}

	now := time.Now()
	submitter := actor.ID
	claim := &models.Claim{
		ClaimNumber:     GenerateClaimNumber(now),
		PolicyID:        req.PolicyID,
		CustomerID:      req.CustomerID,
		InsuranceTypeID: req.InsuranceTypeID,
		ClaimType:       req.ClaimType,
		Description:     req.Description,
		IncidentDate:    req.IncidentDate,
		Status:          models.ClaimSubmitted,
		AmountRequested: req.AmountRequested,
		SubmittedAt:     now,
		SubmittedBy:     &submitter,
	}
	if err := w.claimRepo.Create(ctx, claim); err != nil {
		return nil, fmt.Errorf("error creating claim: %w", err)
	}
	return claim, nil
}

// Transition moves a claim to newStatus, applying the per-target rules and
// appending one history row, atomically.
func (w *ClaimWorkflow) Transition(
	ctx context.Context,
	claimID uuid.UUID,
	newStatus models.ClaimStatus,
	actor Actor,
	reason string,
	approvedAmount *float64,
	meta *models.RequestMeta,
) (*models.TransitionClaimResponse, error) {
	tx, err := w.claimRepo.BeginTransaction()
	if err != nil {
		return nil, fmt.Errorf("error starting transaction: %w", err)
	}

	claim, err := w.claimRepo.GetByIDForUpdateTx(tx, claimID)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("claim not found: %w", err)
	}

	if err := w.authorizeTransition(ctx, claim, newStatus, actor); err != nil {
		tx.Rollback()
		return nil, err
	}

	oldStatus := claim.Status
	now := time.Now()
	if err := ApplyTransition(claim, newStatus, actor, reason, approvedAmount, now); err != nil {
		tx.Rollback()
		return nil, err
	}

	history, err := w.updateWithHistory(tx, claim, oldStatus, actor, reason, meta, now)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		slog.Error("error committing claim transition", "claim_id", claimID, "error", err)
		return nil, fmt.Errorf("error committing claim transition: %w", err)
	}

	return &models.TransitionClaimResponse{Claim: claim, History: history}, nil
}

// authorizeTransition runs the pre-mutation gates in order. The transition
// table is checked before any authority lookup: an illegal move always reads
// as InvalidTransitionError, whoever asks.
func (w *ClaimWorkflow) authorizeTransition(
	ctx context.Context,
	claim *models.Claim,
	newStatus models.ClaimStatus,
	actor Actor,
) error {
	if !CanTransition(claim.Status, newStatus) {
		return &InvalidTransitionError{From: claim.Status, To: newStatus}
	}

	if newStatus == models.ClaimApproved {
		can, err := w.authority.CanApprove(ctx, actor.Role, claim)
		if err != nil {
			return err
		}
		if !can {
			return &UnauthorizedError{Msg: fmt.Sprintf("role %s cannot approve this claim amount", actor.Role)}
		}
	}

	return nil
}

// ApplyTransition validates the move and mutates the claim's fields for the
// target status. It touches no storage; callers persist the result.
func ApplyTransition(
	claim *models.Claim,
	newStatus models.ClaimStatus,
	actor Actor,
	reason string,
	approvedAmount *float64,
	now time.Time,
) error {
	if !CanTransition(claim.Status, newStatus) {
		return &InvalidTransitionError{From: claim.Status, To: newStatus}
	}

	switch newStatus {
	case models.ClaimUnderReview:
		claim.ReviewStartedAt = &now
		reviewer := actor.ID
		claim.ReviewedBy = &reviewer

	case models.ClaimApproved:
		if approvedAmount == nil {
			return &ValidationError{Msg: "approved amount is required"}
		}
		if *approvedAmount > claim.AmountRequested {
			return &ValidationError{Msg: "approved amount cannot exceed the requested amount"}
		}
		claim.AmountApproved = approvedAmount
		claim.ApprovedAt = &now
		reviewer := actor.ID
		claim.ReviewedBy = &reviewer

	case models.ClaimRejected:
		if reason == "" {
			return &ValidationError{Msg: "a rejection reason is required"}
		}
		claim.RejectionReason = &reason
		claim.RejectedAt = &now
		reviewer := actor.ID
		claim.ReviewedBy = &reviewer

	case models.ClaimSettled:
		if claim.AmountApproved == nil {
			return &PreconditionError{Msg: "claim has no approved amount to settle"}
		}
		settled := *claim.AmountApproved
		if approvedAmount != nil {
			if *approvedAmount > *claim.AmountApproved {
				return &ValidationError{Msg: "settled amount cannot exceed the approved amount"}
			}
			settled = *approvedAmount
		}
		claim.AmountSettled = &settled
		claim.SettledAt = &now
		settler := actor.ID
		claim.SettledBy = &settler

	case models.ClaimClosed:
		claim.ClosedAt = &now
	}

	claim.Status = newStatus
	return nil
}

// AssignSurveyor creates a pending assessment and moves the claim from
// UNDER_REVIEW to SURVEYOR_ASSIGNED in one transaction.
func (w *ClaimWorkflow) AssignSurveyor(
	ctx context.Context,
	claimID uuid.UUID,
	surveyorID string,
	assessmentDate *time.Time,
	actor Actor,
	meta *models.RequestMeta,
) (*models.ClaimAssessment, error) {
	tx, err := w.claimRepo.BeginTransaction()
	if err != nil {
		return nil, fmt.Errorf("error starting transaction: %w", err)
	}

	claim, err := w.claimRepo.GetByIDForUpdateTx(tx, claimID)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("claim not found: %w", err)
	}

	if claim.Status != models.ClaimUnderReview {
		tx.Rollback()
		return nil, &InvalidStateError{Msg: fmt.Sprintf("surveyor can only be assigned while under review, current status is %s", claim.Status)}
	}

	now := time.Now()
	date := now
	if assessmentDate != nil {
		date = *assessmentDate
	}
	assessment := &models.ClaimAssessment{
		ClaimID:        claim.ID,
		SurveyorID:     surveyorID,
		AssessmentDate: date,
		Status:         models.AssessmentPending,
	}
	if err := w.assessmentRepo.CreateTx(tx, assessment); err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("error creating assessment: %w", err)
	}

	oldStatus := claim.Status
	reason := fmt.Sprintf("Surveyor %s assigned", surveyorID)
	if err := ApplyTransition(claim, models.ClaimSurveyorAssigned, actor, reason, nil, now); err != nil {
		tx.Rollback()
		return nil, err
	}
	if _, err := w.updateWithHistory(tx, claim, oldStatus, actor, reason, meta, now); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		slog.Error("error committing surveyor assignment", "claim_id", claimID, "error", err)
		return nil, fmt.Errorf("error committing surveyor assignment: %w", err)
	}
	return assessment, nil
}

// RecordAssessment completes an assessment with the surveyor's findings.
// If the parent claim is UNDER_INVESTIGATION it moves on to ASSESSED.
func (w *ClaimWorkflow) RecordAssessment(
	ctx context.Context,
	assessmentID uuid.UUID,
	req models.RecordAssessmentRequest,
	actor Actor,
	meta *models.RequestMeta,
) (*models.ClaimAssessment, error) {
	assessment, err := w.assessmentRepo.GetByID(ctx, assessmentID)
	if err != nil {
		return nil, fmt.Errorf("assessment not found: %w", err)
	}

	tx, err := w.claimRepo.BeginTransaction()
	if err != nil {
		return nil, fmt.Errorf("error starting transaction: %w", err)
	}

	claim, err := w.claimRepo.GetByIDForUpdateTx(tx, assessment.ClaimID)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("claim not found: %w", err)
	}

	deductible := 0.0
	if req.Deductible != nil {
		deductible = *req.Deductible
	}
	net := req.LossAmount - deductible
	loss := req.LossAmount

	assessment.DamageAssessment = req.DamageDescription
	assessment.LossAmountAssessed = &loss
	assessment.Deductible = &deductible
	assessment.NetClaimAmount = &net
	assessment.Findings = req.Findings
	assessment.Status = models.AssessmentCompleted

	if err := w.assessmentRepo.UpdateTx(tx, assessment); err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("error updating assessment: %w", err)
	}

	if claim.Status == models.ClaimUnderInvestigation {
		now := time.Now()
		oldStatus := claim.Status
		reason := "Assessment completed"
		if err := ApplyTransition(claim, models.ClaimAssessed, actor, reason, nil, now); err != nil {
			tx.Rollback()
			return nil, err
		}
		if _, err := w.updateWithHistory(tx, claim, oldStatus, actor, reason, meta, now); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("error committing assessment", "assessment_id", assessmentID, "error", err)
		return nil, fmt.Errorf("error committing assessment: %w", err)
	}
	return assessment, nil
}

// CreateSettlement records a pending settlement for an approved claim. The
// claim itself only moves to SETTLED through a later explicit transition,
// once settlement processing completes.
func (w *ClaimWorkflow) CreateSettlement(
	ctx context.Context,
	claimID uuid.UUID,
	actor Actor,
	req models.CreateSettlementRequest,
) (*models.ClaimSettlement, error) {
	claim, err := w.claimRepo.GetByID(ctx, claimID)
	if err != nil {
		return nil, fmt.Errorf("claim not found: %w", err)
	}

	if claim.Status != models.ClaimApproved {
		return nil, &InvalidStateError{Msg: fmt.Sprintf("settlements can only be created for approved claims, current status is %s", claim.Status)}
	}
	if claim.AmountApproved == nil {
		return nil, &PreconditionError{Msg: "claim has no approved amount"}
	}

	method := req.SettlementMethod
	if method == "" {
		method = "BANK_TRANSFER"
	}

	settlement := &models.ClaimSettlement{
		ClaimID:           claim.ID,
		SettlementAmount:  *claim.AmountApproved,
		SettlementMethod:  method,
		BankAccountNumber: req.BankDetails.AccountNumber,
		BankName:          req.BankDetails.BankName,
		BankIFSCCode:      req.BankDetails.IFSCCode,
		AccountHolderName: req.BankDetails.HolderName,
		ApprovedBy:        actor.ID,
		Status:            models.SettlementPending,
	}
	if err := w.settlementRepo.Create(ctx, settlement); err != nil {
		return nil, fmt.Errorf("error creating settlement: %w", err)
	}
	return settlement, nil
}

// GetClaim returns a claim with its full status history.
func (w *ClaimWorkflow) GetClaim(ctx context.Context, claimID uuid.UUID) (*models.Claim, []models.ClaimStatusHistory, error) {
	claim, err := w.claimRepo.GetByID(ctx, claimID)
	if err != nil {
		return nil, nil, fmt.Errorf("claim not found: %w", err)
	}
	history, err := w.historyRepo.GetByClaimID(ctx, claimID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get claim history: %w", err)
	}
	return claim, history, nil
}

// GetSLAStatus computes the claim's SLA view against its threshold tier.
func (w *ClaimWorkflow) GetSLAStatus(ctx context.Context, claimID uuid.UUID) (*models.SLAStatus, error) {
	claim, err := w.claimRepo.GetByID(ctx, claimID)
	if err != nil {
		return nil, fmt.Errorf("claim not found: %w", err)
	}

	slaDays := w.cfg.ClaimSLADays
	threshold, err := w.authority.ResolveThreshold(ctx, claim)
	if err == nil && threshold.MaxProcessingDays > 0 {
		slaDays = threshold.MaxProcessingDays
	}

	status := ComputeSLA(claim, slaDays, time.Now())
	return &status, nil
}

// ComputeSLA evaluates a claim against an SLA of slaDays. Terminal claims
// report total processing time; open claims report elapsed and remaining
// days, with remaining floored at zero.
func ComputeSLA(claim *models.Claim, slaDays int, now time.Time) models.SLAStatus {
	if claim.IsTerminal() {
		end := now
		if t := claim.TerminalAt(); t != nil {
			end = *t
		}
		processing := daysBetween(claim.SubmittedAt, end)
		return models.SLAStatus{
			State:          models.SLACompleted,
			SLADays:        slaDays,
			ProcessingDays: processing,
			WithinSLA:      processing <= slaDays,
		}
	}

	elapsed := daysBetween(claim.SubmittedAt, now)
	remaining := slaDays - elapsed
	status := models.SLAStatus{
		State:       models.SLAInProgress,
		SLADays:     slaDays,
		DaysElapsed: elapsed,
		WithinSLA:   remaining >= 0,
	}
	if remaining > 0 {
		status.DaysRemaining = remaining
	}
	return status
}

// daysBetween counts calendar days, not 24-hour spans. A claim submitted at
// 23:00 and closed at 09:00 the next morning is one day old.
func daysBetween(from, to time.Time) int {
	fromDay := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	toDay := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, to.Location())
	if toDay.Before(fromDay) {
		return 0
	}
	return int(math.Round(toDay.Sub(fromDay).Hours() / 24))
}

func (w *ClaimWorkflow) updateWithHistory(
	tx *sqlx.Tx,
	claim *models.Claim,
	oldStatus models.ClaimStatus,
	actor Actor,
	reason string,
	meta *models.RequestMeta,
	now time.Time,
) (*models.ClaimStatusHistory, error) {
	claim.UpdatedAt = now
	if err := w.claimRepo.UpdateTx(tx, claim); err != nil {
		return nil, fmt.Errorf("error updating claim: %w", err)
	}

	entry := &models.ClaimStatusHistory{
		ClaimID:   claim.ID,
		OldStatus: oldStatus,
		NewStatus: claim.Status,
		Reason:    reason,
		ChangedBy: actor.ID,
	}
	if meta != nil {
		if meta.IPAddress != "" {
			ip := meta.IPAddress
			entry.IPAddress = &ip
		}
		if meta.UserAgent != "" {
			ua := meta.UserAgent
			entry.UserAgent = &ua
		}
	}
	if err := w.historyRepo.CreateTx(tx, entry); err != nil {
		return nil, fmt.Errorf("error recording claim history: %w", err)
	}
	return entry, nil
}
