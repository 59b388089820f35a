package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"decision-engine/internal/database/redis"
	"decision-engine/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ConfigRuleRepository reads the configuration store: premium slabs,
// discount rules, approval thresholds, scoring weights. All reads are
// "latest active rows at call time"; the Redis layer is a short-TTL
// read-through cache, never a source of truth.
type ConfigRuleRepository struct {
	db       *sqlx.DB
	cache    *redis.Client
	cacheTTL time.Duration
}

func NewConfigRuleRepository(db *sqlx.DB, cache *redis.Client, cacheTTL time.Duration) *ConfigRuleRepository {
	return &ConfigRuleRepository{db: db, cache: cache, cacheTTL: cacheTTL}
}

func (r *ConfigRuleRepository) GetActiveSlabs(ctx context.Context, insuranceTypeID uuid.UUID) ([]models.PremiumSlab, error) {
	cacheKey := fmt.Sprintf("config:slabs:%s", insuranceTypeID)
	var slabs []models.PremiumSlab
	if r.cacheGet(ctx, cacheKey, &slabs) {
		return slabs, nil
	}

	query := `
		SELECT id, insurance_type_id, slab_name, min_coverage_amount, max_coverage_amount,
		       base_premium, percentage_markup, is_active, created_at
		FROM premium_slabs
		WHERE insurance_type_id = $1 AND is_active = TRUE
		ORDER BY min_coverage_amount
	`

	err := r.db.SelectContext(ctx, &slabs, query, insuranceTypeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get premium slabs: %w", err)
	}

	r.cacheSet(ctx, cacheKey, slabs)
	return slabs, nil
}

// GetActiveDiscountRules returns active rules targeting the insurance type
// plus type-agnostic rules, ordered by priority descending.
func (r *ConfigRuleRepository) GetActiveDiscountRules(ctx context.Context, insuranceTypeID uuid.UUID) ([]models.DiscountRule, error) {
	cacheKey := fmt.Sprintf("config:discount_rules:%s", insuranceTypeID)
	var rules []models.DiscountRule
	if r.cacheGet(ctx, cacheKey, &rules) {
		return rules, nil
	}

	query := `
		SELECT id, rule_name, rule_code, insurance_type_id, rule_condition, discount_percentage,
		       discount_max_amount, rule_priority, is_combinable, is_active,
		       effective_from, effective_to, created_at
		FROM discount_rules
		WHERE (insurance_type_id = $1 OR insurance_type_id IS NULL) AND is_active = TRUE
		ORDER BY rule_priority DESC, rule_name
	`

	err := r.db.SelectContext(ctx, &rules, query, insuranceTypeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get discount rules: %w", err)
	}

	r.cacheSet(ctx, cacheKey, rules)
	return rules, nil
}

func (r *ConfigRuleRepository) GetActiveThresholds(ctx context.Context, insuranceTypeID uuid.UUID) ([]models.ClaimApprovalThreshold, error) {
	cacheKey := fmt.Sprintf("config:thresholds:%s", insuranceTypeID)
	var thresholds []models.ClaimApprovalThreshold
	if r.cacheGet(ctx, cacheKey, &thresholds) {
		return thresholds, nil
	}

	query := `
		SELECT id, insurance_type_id, approval_level, min_claim_amount, max_claim_amount,
		       required_role, max_processing_days, is_active, created_at
		FROM claim_approval_thresholds
		WHERE insurance_type_id = $1 AND is_active = TRUE
		ORDER BY min_claim_amount
	`

	err := r.db.SelectContext(ctx, &thresholds, query, insuranceTypeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get approval thresholds: %w", err)
	}

	r.cacheSet(ctx, cacheKey, thresholds)
	return thresholds, nil
}

// GetScoringWeights exists for the per-type weight tuning extension point;
// the default scoring formula does not consult it.
func (r *ConfigRuleRepository) GetScoringWeights(ctx context.Context, insuranceTypeID uuid.UUID) ([]models.ScoringWeight, error) {
	var weights []models.ScoringWeight
	query := `
		SELECT id, insurance_type_id, factor_name, factor_weight, is_active
		FROM scoring_weights
		WHERE insurance_type_id = $1 AND is_active = TRUE
		ORDER BY factor_name
	`

	err := r.db.SelectContext(ctx, &weights, query, insuranceTypeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get scoring weights: %w", err)
	}

	return weights, nil
}

// cacheGet is best-effort; cache failures fall through to the database.
func (r *ConfigRuleRepository) cacheGet(ctx context.Context, key string, dest any) bool {
	if r.cache == nil {
		return false
	}
	hit, err := r.cache.GetJSON(ctx, key, dest)
	if err != nil {
		slog.Warn("config cache read failed", "key", key, "error", err)
		return false
	}
	return hit
}

func (r *ConfigRuleRepository) cacheSet(ctx context.Context, key string, value any) {
	if r.cache == nil {
		return
	}
	if err := r.cache.SetJSON(ctx, key, value, r.cacheTTL); err != nil {
		slog.Warn("config cache write failed", "key", key, "error", err)
	}
}
