package services

import (
	"fmt"
	"math"
	"strings"

	"decision-engine/internal/models"

	"github.com/google/uuid"
)

// ============================================================================
// QUOTE SCORING
// ============================================================================
//
// score = 0.40*affordability + 0.30*claim_ratio + 0.20*coverage + 0.10*service
//
// Each component is normalized to 0-100 before weighting. The weights are
// fixed constants; the per-type scoring_weights rows exist as a future tuning
// extension point and are deliberately not consulted here.

const (
	weightAffordability = 0.40
	weightClaimRatio    = 0.30
	weightCoverage      = 0.20
	weightServiceRating = 0.10
)

// ScoreBreakdown holds the overall suitability score and its components.
type ScoreBreakdown struct {
	Overall       float64 `json:"overall_score"`
	Affordability float64 `json:"affordability_score"`
	ClaimRatio    float64 `json:"claim_ratio_score"`
	Coverage      float64 `json:"coverage_score"`
	ServiceRating float64 `json:"service_rating_score"`
}

// QuoteScorer computes suitability scores for candidate quotes.
type QuoteScorer struct{}

func NewQuoteScorer() *QuoteScorer {
	return &QuoteScorer{}
}

// ScoreInput carries the pre-fetched data one scoring call needs.
type ScoreInput struct {
	TotalPremium        float64
	Insurer             models.Insurer
	SelectedCoverageIDs []uuid.UUID
	TypeCoverages       []models.CoverageType // all coverage types for the insurance type
	AnnualIncome        *float64
	BudgetMin           *float64
	BudgetMax           *float64
}

// Score computes the weighted overall score, rounded to 2 decimals.
func (s *QuoteScorer) Score(in ScoreInput) ScoreBreakdown {
	affordability := affordabilityScore(in.TotalPremium, in.AnnualIncome, in.BudgetMin, in.BudgetMax)
	claimRatio := claimRatioScore(in.Insurer.ClaimSettlementRatio)
	coverage := coverageScore(in.SelectedCoverageIDs, in.TypeCoverages)
	serviceRating := serviceRatingScore(in.Insurer.ServiceRating)

	overall := weightAffordability*affordability +
		weightClaimRatio*claimRatio +
		weightCoverage*coverage +
		weightServiceRating*serviceRating

	return ScoreBreakdown{
		Overall:       round2(overall),
		Affordability: round2(affordability),
		ClaimRatio:    round2(claimRatio),
		Coverage:      round2(coverage),
		ServiceRating: round2(serviceRating),
	}
}

// affordabilityScore prefers the budget range when the customer supplied
// one: inside the range scores 80-100 by position, below scores a flat 70
// (possibly under-covered, not penalized further), above takes a tiered
// penalty. Without a budget it bands premium as a share of annual income,
// and with neither signal it is neutral.
func affordabilityScore(premium float64, annualIncome, budgetMin, budgetMax *float64) float64 {
	if budgetMin != nil && budgetMax != nil {
		min, max := *budgetMin, *budgetMax
		switch {
		case premium >= min && premium <= max:
			rangeSize := max - min
			if rangeSize > 0 {
				position := (premium - min) / rangeSize
				return 100 - position*20
			}
			return 90
		case premium < min:
			return 70
		default:
			overagePct := (premium - max) / max * 100
			switch {
			case overagePct <= 10:
				return 60
			case overagePct <= 25:
				return 40
			default:
				return 20
			}
		}
	}

	if annualIncome != nil && *annualIncome > 0 {
		premiumPct := premium / *annualIncome * 100
		switch {
		case premiumPct <= 3:
			return 100
		case premiumPct <= 5:
			return 90
		case premiumPct <= 8:
			return 75
		case premiumPct <= 12:
			return 55
		case premiumPct <= 15:
			return 35
		default:
			return 15
		}
	}

	return 50
}

func claimRatioScore(ratio float64) float64 {
	switch {
	case ratio >= 0.95:
		return 100
	case ratio >= 0.92:
		return 90
	case ratio >= 0.90:
		return 85
	case ratio >= 0.85:
		return 70
	case ratio >= 0.80:
		return 55
	case ratio >= 0.75:
		return 40
	default:
		return 25
	}
}

// coverageScore weights mandatory completeness at 60 and optional at 40.
// A category with zero items awards its full share unconditionally.
func coverageScore(selectedIDs []uuid.UUID, typeCoverages []models.CoverageType) float64 {
	selected := make(map[uuid.UUID]bool, len(selectedIDs))
	for _, id := range selectedIDs {
		selected[id] = true
	}

	var totalMandatory, totalOptional, selectedMandatory, selectedOptional int
	for _, coverage := range typeCoverages {
		if coverage.IsMandatory {
			totalMandatory++
			if selected[coverage.ID] {
				selectedMandatory++
			}
		} else {
			totalOptional++
			if selected[coverage.ID] {
				selectedOptional++
			}
		}
	}

	mandatoryScore := 60.0
	if totalMandatory > 0 {
		mandatoryScore = float64(selectedMandatory) / float64(totalMandatory) * 60
	}
	optionalScore := 40.0
	if totalOptional > 0 {
		optionalScore = float64(selectedOptional) / float64(totalOptional) * 40
	}

	return mandatoryScore + optionalScore
}

func serviceRatingScore(rating float64) float64 {
	return rating / 5 * 100
}

// RecommendationReason renders the deterministic rationale template: one
// clause per sub-score crossing its threshold, with a generic fallback when
// none applies.
func RecommendationReason(scores ScoreBreakdown, insurerName string) string {
	var reasons []string

	if scores.Affordability >= 80 {
		reasons = append(reasons, "fits well within your budget")
	} else if scores.Affordability >= 60 {
		reasons = append(reasons, "reasonably priced")
	}

	if scores.ClaimRatio >= 85 {
		reasons = append(reasons, fmt.Sprintf("%s has an excellent claim settlement record", insurerName))
	} else if scores.ClaimRatio >= 70 {
		reasons = append(reasons, fmt.Sprintf("%s has a good claim settlement ratio", insurerName))
	}

	if scores.Coverage >= 80 {
		reasons = append(reasons, "provides comprehensive coverage")
	} else if scores.Coverage >= 60 {
		reasons = append(reasons, "covers all essential needs")
	}

	if scores.ServiceRating >= 80 {
		reasons = append(reasons, "highly rated for customer service")
	}

	if len(reasons) == 0 {
		reasons = append(reasons, "is a balanced option for your requirements")
	}

	return "This quote " + strings.Join(reasons, ", ") + "."
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
