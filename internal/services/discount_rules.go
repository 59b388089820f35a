package services

import (
	"encoding/json"
	"fmt"
	"time"

	"decision-engine/internal/models"
)

// ============================================================================
// DISCOUNT RULE CONDITIONS
// ============================================================================

// DiscountCondition is one predicate of a discount rule. Conditions combine
// with AND semantics; a rule with no conditions always matches.
type DiscountCondition interface {
	isDiscountCondition()
}

type MinFleetSize int

type MaxClaimRatio float64

type MinYearsNoClaim int

type AgeRange struct {
	Min int
	Max int
}

func (MinFleetSize) isDiscountCondition()    {}
func (MaxClaimRatio) isDiscountCondition()   {}
func (MinYearsNoClaim) isDiscountCondition() {}
func (AgeRange) isDiscountCondition()        {}

// rawRuleCondition mirrors the JSON condition column of a discount rule.
type rawRuleCondition struct {
	MinFleetSize    *int       `json:"min_fleet_size,omitempty"`
	MaxClaimRatio   *float64   `json:"max_claim_ratio,omitempty"`
	MinYearsNoClaim *int       `json:"min_years_no_claim,omitempty"`
	AgeRange        []int      `json:"age_range,omitempty"`
}

// ParseDiscountConditions decodes a rule's JSON condition column into typed
// conditions. Nil, empty, or "{}" input yields no conditions.
func ParseDiscountConditions(raw json.RawMessage) ([]DiscountCondition, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var decoded rawRuleCondition
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode rule condition: %w", err)
	}

	var conditions []DiscountCondition
	if decoded.MinFleetSize != nil {
		conditions = append(conditions, MinFleetSize(*decoded.MinFleetSize))
	}
	if decoded.MaxClaimRatio != nil {
		conditions = append(conditions, MaxClaimRatio(*decoded.MaxClaimRatio))
	}
	if decoded.MinYearsNoClaim != nil {
		conditions = append(conditions, MinYearsNoClaim(*decoded.MinYearsNoClaim))
	}
	if len(decoded.AgeRange) == 2 {
		conditions = append(conditions, AgeRange{Min: decoded.AgeRange[0], Max: decoded.AgeRange[1]})
	}
	return conditions, nil
}

// CustomerFacts is the snapshot of customer data the condition interpreter
// evaluates against.
type CustomerFacts struct {
	ActiveFleetCount int
	ClaimHistory     []models.ClaimHistoryRecord // most recent year first
	Age              *int
}

// latestHistory returns the most recent claim-history record, or nil.
func (f CustomerFacts) latestHistory() *models.ClaimHistoryRecord {
	if len(f.ClaimHistory) == 0 {
		return nil
	}
	return &f.ClaimHistory[0]
}

// EvaluateCondition interprets a single condition against the facts. An
// absent fact is vacuously true where the source system treated it so (age),
// and falsifying where it meant the requirement cannot be met (fleet size).
func EvaluateCondition(cond DiscountCondition, facts CustomerFacts, asOf time.Time) bool {
	switch c := cond.(type) {
	case MinFleetSize:
		return facts.ActiveFleetCount >= int(c)
	case MaxClaimRatio:
		latest := facts.latestHistory()
		if latest == nil {
			return true
		}
		return latest.ClaimRejectionRate/100 <= float64(c)
	case MinYearsNoClaim:
		cutoff := asOf.Year() - int(c)
		for _, record := range facts.ClaimHistory {
			if record.ClaimYear >= cutoff && record.ClaimCount > 0 {
				return false
			}
		}
		return true
	case AgeRange:
		if facts.Age == nil {
			return true
		}
		return *facts.Age >= c.Min && *facts.Age <= c.Max
	}
	return false
}

// RuleMatches reports whether every condition of the rule holds.
func RuleMatches(rule models.DiscountRule, facts CustomerFacts, asOf time.Time) (bool, error) {
	conditions, err := ParseDiscountConditions(rule.RuleCondition)
	if err != nil {
		return false, fmt.Errorf("rule %s: %w", rule.RuleCode, err)
	}
	for _, cond := range conditions {
		if !EvaluateCondition(cond, facts, asOf) {
			return false, nil
		}
	}
	return true, nil
}

// AppliedDiscount is one matched rule with its computed amount.
type AppliedDiscount struct {
	RuleCode     string  `json:"rule_code"`
	RuleName     string  `json:"rule_name"`
	Percentage   float64 `json:"percentage"`
	Amount       float64 `json:"amount"`
	IsCombinable bool    `json:"is_combinable"`
}

// EvaluateDiscountRules evaluates the active rules against the subtotal and
// resolves the combinable/non-combinable interaction: combinable amounts sum;
// the single largest non-combinable amount replaces that sum only when
// strictly greater. Rules must already be filtered to the insurance type
// (plus type-agnostic rules) and ordered by priority descending.
func EvaluateDiscountRules(
	rules []models.DiscountRule,
	subtotal float64,
	facts CustomerFacts,
	asOf time.Time,
) ([]AppliedDiscount, float64, error) {
	var applied []AppliedDiscount

	for _, rule := range rules {
		if !rule.ValidForDate(asOf) {
			continue
		}
		matches, err := RuleMatches(rule, facts, asOf)
		if err != nil {
			return nil, 0, err
		}
		if !matches {
			continue
		}

		amount := subtotal * (rule.DiscountPercentage / 100)
		if rule.DiscountMaxAmount != nil && amount > *rule.DiscountMaxAmount {
			amount = *rule.DiscountMaxAmount
		}

		applied = append(applied, AppliedDiscount{
			RuleCode:     rule.RuleCode,
			RuleName:     rule.RuleName,
			Percentage:   rule.DiscountPercentage,
			Amount:       amount,
			IsCombinable: rule.IsCombinable,
		})
	}

	var combinableTotal float64
	var best *AppliedDiscount
	for i := range applied {
		d := applied[i]
		if d.IsCombinable {
			combinableTotal += d.Amount
		} else if best == nil || d.Amount > best.Amount {
			best = &applied[i]
		}
	}

	total := combinableTotal
	// A non-combinable winner replaces the combinable sum only when strictly
	// greater; on a tie the combinable set stands.
	if best != nil && best.Amount > combinableTotal {
		total = best.Amount
		applied = []AppliedDiscount{*best}
	}

	return applied, total, nil
}
