package services

import (
	"context"
	"fmt"

	"decision-engine/internal/models"
	"decision-engine/internal/repository"
)

// AuthorityResolver maps a claim's requested amount to its approval
// threshold tier and checks whether an acting user's role satisfies it.
type AuthorityResolver struct {
	configRepo *repository.ConfigRuleRepository
}

func NewAuthorityResolver(configRepo *repository.ConfigRuleRepository) *AuthorityResolver {
	return &AuthorityResolver{configRepo: configRepo}
}

// ResolveThreshold finds the single active threshold whose range contains
// the claim's requested amount. When none match the resolver fails closed:
// the synthetic fallback threshold requires the highest-privilege role.
func (a *AuthorityResolver) ResolveThreshold(ctx context.Context, claim *models.Claim) (models.ClaimApprovalThreshold, error) {
	thresholds, err := a.configRepo.GetActiveThresholds(ctx, claim.InsuranceTypeID)
	if err != nil {
		return models.ClaimApprovalThreshold{}, fmt.Errorf("failed to load approval thresholds: %w", err)
	}
	return MatchThreshold(thresholds, claim.AmountRequested), nil
}

// MatchThreshold picks the threshold containing the amount, or the
// fail-closed fallback when none does.
func MatchThreshold(thresholds []models.ClaimApprovalThreshold, amount float64) models.ClaimApprovalThreshold {
	for _, threshold := range thresholds {
		if threshold.IsActive && threshold.Contains(amount) {
			return threshold
		}
	}
	return FallbackThreshold()
}

// FallbackThreshold is the fail-closed default used when no configured tier
// matches a claim amount. It never auto-approves.
func FallbackThreshold() models.ClaimApprovalThreshold {
	return models.ClaimApprovalThreshold{
		ApprovalLevel: models.ApprovalDirector,
		RequiredRole:  models.RoleAdmin,
		IsActive:      true,
	}
}

// CanApprove reports whether the actor's role satisfies the claim's resolved
// threshold tier. Superior roles in the hierarchy satisfy lower tiers.
func (a *AuthorityResolver) CanApprove(ctx context.Context, actorRole models.Role, claim *models.Claim) (bool, error) {
	threshold, err := a.ResolveThreshold(ctx, claim)
	if err != nil {
		return false, err
	}
	return actorRole.Satisfies(threshold.RequiredRole), nil
}
