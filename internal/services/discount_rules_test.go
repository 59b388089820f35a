package services

import (
	"encoding/json"
	"testing"
	"time"

	"decision-engine/internal/models"

	"github.com/stretchr/testify/assert"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

func createTestRule(code string, pct float64, combinable bool, condition string) models.DiscountRule {
	return models.DiscountRule{
		RuleCode:           code,
		RuleName:           code,
		RuleCondition:      json.RawMessage(condition),
		DiscountPercentage: pct,
		IsCombinable:       combinable,
		IsActive:           true,
	}
}

func intPtr(v int) *int { return &v }

// ============================================================================
// TEST SUITE 1: CONDITION PARSING AND EVALUATION
// ============================================================================

func TestParseDiscountConditions_EmptyInput(t *testing.T) {
	conditions, err := ParseDiscountConditions(nil)
	assert.NoError(t, err)
	assert.Empty(t, conditions)

	conditions, err = ParseDiscountConditions(json.RawMessage(`{}`))
	assert.NoError(t, err)
	assert.Empty(t, conditions)
}

func TestParseDiscountConditions_AllConditionKinds(t *testing.T) {
	raw := json.RawMessage(`{"min_fleet_size": 5, "max_claim_ratio": 0.3, "min_years_no_claim": 3, "age_range": [25, 45]}`)

	conditions, err := ParseDiscountConditions(raw)

	assert.NoError(t, err)
	assert.Len(t, conditions, 4)
	assert.Contains(t, conditions, MinFleetSize(5))
	assert.Contains(t, conditions, MaxClaimRatio(0.3))
	assert.Contains(t, conditions, MinYearsNoClaim(3))
	assert.Contains(t, conditions, AgeRange{Min: 25, Max: 45})
}

func TestParseDiscountConditions_MalformedJSON(t *testing.T) {
	_, err := ParseDiscountConditions(json.RawMessage(`{"min_fleet_size": "five"}`))
	assert.Error(t, err)
}

func TestEvaluateCondition_MinFleetSize(t *testing.T) {
	now := time.Now()

	assert.True(t, EvaluateCondition(MinFleetSize(5), CustomerFacts{ActiveFleetCount: 5}, now))
	assert.True(t, EvaluateCondition(MinFleetSize(5), CustomerFacts{ActiveFleetCount: 8}, now))
	assert.False(t, EvaluateCondition(MinFleetSize(5), CustomerFacts{ActiveFleetCount: 4}, now))
	assert.False(t, EvaluateCondition(MinFleetSize(5), CustomerFacts{}, now),
		"No fleets cannot satisfy a minimum fleet size")
}

func TestEvaluateCondition_MaxClaimRatio(t *testing.T) {
	now := time.Now()
	facts := CustomerFacts{
		ClaimHistory: []models.ClaimHistoryRecord{
			{ClaimYear: now.Year() - 1, ClaimCount: 2, ClaimRejectionRate: 25},
		},
	}

	assert.True(t, EvaluateCondition(MaxClaimRatio(0.3), facts, now), "25% rejection is under the 0.3 cap")
	assert.False(t, EvaluateCondition(MaxClaimRatio(0.2), facts, now), "25% rejection exceeds the 0.2 cap")
	assert.True(t, EvaluateCondition(MaxClaimRatio(0.1), CustomerFacts{}, now),
		"No claim history passes any ratio cap")
}

func TestEvaluateCondition_MinYearsNoClaim(t *testing.T) {
	now := time.Now()

	clean := CustomerFacts{
		ClaimHistory: []models.ClaimHistoryRecord{
			{ClaimYear: now.Year() - 5, ClaimCount: 1},
		},
	}
	assert.True(t, EvaluateCondition(MinYearsNoClaim(3), clean, now),
		"A claim older than the window does not break the streak")

	recent := CustomerFacts{
		ClaimHistory: []models.ClaimHistoryRecord{
			{ClaimYear: now.Year() - 1, ClaimCount: 1},
		},
	}
	assert.False(t, EvaluateCondition(MinYearsNoClaim(3), recent, now))

	zeroCount := CustomerFacts{
		ClaimHistory: []models.ClaimHistoryRecord{
			{ClaimYear: now.Year() - 1, ClaimCount: 0},
		},
	}
	assert.True(t, EvaluateCondition(MinYearsNoClaim(3), zeroCount, now),
		"A history row with zero claims does not break the streak")
}

func TestEvaluateCondition_AgeRange(t *testing.T) {
	now := time.Now()
	cond := AgeRange{Min: 25, Max: 45}

	assert.True(t, EvaluateCondition(cond, CustomerFacts{Age: intPtr(30)}, now))
	assert.True(t, EvaluateCondition(cond, CustomerFacts{Age: intPtr(25)}, now), "Range bounds are inclusive")
	assert.True(t, EvaluateCondition(cond, CustomerFacts{Age: intPtr(45)}, now), "Range bounds are inclusive")
	assert.False(t, EvaluateCondition(cond, CustomerFacts{Age: intPtr(46)}, now))
	assert.True(t, EvaluateCondition(cond, CustomerFacts{}, now), "Unknown age is not penalized")
}

// ============================================================================
// TEST SUITE 2: RULE EVALUATION AND STACKING
// ============================================================================

func TestEvaluateDiscountRules_RuleWithNoConditionsAlwaysMatches(t *testing.T) {
	rules := []models.DiscountRule{createTestRule("FLAT", 5, true, `{}`)}

	applied, total, err := EvaluateDiscountRules(rules, 10000, CustomerFacts{}, time.Now())

	assert.NoError(t, err)
	assert.Len(t, applied, 1)
	assert.Equal(t, 500.0, total)
}

func TestEvaluateDiscountRules_NonMatchingRuleSkipped(t *testing.T) {
	rules := []models.DiscountRule{createTestRule("FLEET", 10, true, `{"min_fleet_size": 5}`)}

	applied, total, err := EvaluateDiscountRules(rules, 10000, CustomerFacts{ActiveFleetCount: 2}, time.Now())

	assert.NoError(t, err)
	assert.Empty(t, applied)
	assert.Equal(t, 0.0, total)
}

func TestEvaluateDiscountRules_PerRuleCapApplied(t *testing.T) {
	cap := 200.0
	rule := createTestRule("CAPPED", 10, true, `{}`)
	rule.DiscountMaxAmount = &cap

	applied, total, err := EvaluateDiscountRules([]models.DiscountRule{rule}, 10000, CustomerFacts{}, time.Now())

	assert.NoError(t, err)
	assert.Equal(t, 200.0, applied[0].Amount, "10% of 10000 should be capped at 200")
	assert.Equal(t, 200.0, total)
}

func TestEvaluateDiscountRules_CombinableRulesSum(t *testing.T) {
	rules := []models.DiscountRule{
		createTestRule("A", 5, true, `{}`),
		createTestRule("B", 3, true, `{}`),
	}

	applied, total, err := EvaluateDiscountRules(rules, 10000, CustomerFacts{}, time.Now())

	assert.NoError(t, err)
	assert.Len(t, applied, 2)
	assert.Equal(t, 800.0, total, "Combinable discounts should sum: 500 + 300")
}

func TestEvaluateDiscountRules_NonCombinableWinnerReplacesSum(t *testing.T) {
	rules := []models.DiscountRule{
		createTestRule("A", 5, true, `{}`),
		createTestRule("B", 3, true, `{}`),
		createTestRule("BIG", 12, false, `{}`),
	}

	applied, total, err := EvaluateDiscountRules(rules, 10000, CustomerFacts{}, time.Now())

	assert.NoError(t, err)
	assert.Equal(t, 1200.0, total, "The larger non-combinable discount replaces the combinable sum")
	assert.Len(t, applied, 1)
	assert.Equal(t, "BIG", applied[0].RuleCode)
}

func TestEvaluateDiscountRules_TieKeepsCombinableSet(t *testing.T) {
	rules := []models.DiscountRule{
		createTestRule("A", 5, true, `{}`),
		createTestRule("B", 4, true, `{}`),
		createTestRule("SOLO", 9, false, `{}`),
	}

	applied, total, err := EvaluateDiscountRules(rules, 10000, CustomerFacts{}, time.Now())

	assert.NoError(t, err)
	assert.Equal(t, 900.0, total)
	assert.Len(t, applied, 3, "On a tie the combinable set stands; all applied rules remain listed")
}

func TestEvaluateDiscountRules_ExpiredRuleSkipped(t *testing.T) {
	past := time.Now().AddDate(0, -2, 0)
	rule := createTestRule("OLD", 5, true, `{}`)
	rule.EffectiveTo = &past

	applied, total, err := EvaluateDiscountRules([]models.DiscountRule{rule}, 10000, CustomerFacts{}, time.Now())

	assert.NoError(t, err)
	assert.Empty(t, applied)
	assert.Equal(t, 0.0, total)
}

func TestEvaluateDiscountRules_MalformedConditionFailsEvaluation(t *testing.T) {
	rules := []models.DiscountRule{createTestRule("BAD", 5, true, `{"age_range": "25-45"}`)}

	_, _, err := EvaluateDiscountRules(rules, 10000, CustomerFacts{}, time.Now())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "BAD")
}
