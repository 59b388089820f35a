package services

import (
	"testing"
	"time"

	"decision-engine/internal/config"
	"decision-engine/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

func testEngineConfig() config.EngineConfig {
	return config.EngineConfig{
		GSTRatePercent:         18,
		QuoteValidityDays:      30,
		ClaimSLADays:           15,
		MaxRecommendations:     3,
		DefaultSlabRatePercent: 2,
		ConfigCacheTTLSeconds:  60,
	}
}

func createTestSlab(min, max, base, markup float64) models.PremiumSlab {
	return models.PremiumSlab{
		ID:                uuid.New(),
		SlabName:          "test slab",
		MinCoverageAmount: min,
		MaxCoverageAmount: max,
		BasePremium:       base,
		PercentageMarkup:  markup,
		IsActive:          true,
	}
}

// ============================================================================
// TEST SUITE 1: BASE PREMIUM
// ============================================================================

func TestComputeBreakdown_SlabBasePremium(t *testing.T) {
	calculator := NewPremiumCalculator(testEngineConfig())

	breakdown, err := calculator.ComputeBreakdown(PremiumInput{
		CoverageAmount: 300000,
		Slabs:          []models.PremiumSlab{createTestSlab(100000, 500000, 2500, 1.2)},
		AsOf:           time.Now(),
	})

	assert.NoError(t, err)
	assert.Equal(t, 6100.0, breakdown.BasePremium, "Base should be 2500 + 300000*1.2% = 6100")
}

func TestComputeBreakdown_NoMatchingSlabFallsBackToFlatRate(t *testing.T) {
	calculator := NewPremiumCalculator(testEngineConfig())

	breakdown, err := calculator.ComputeBreakdown(PremiumInput{
		CoverageAmount: 900000,
		Slabs:          []models.PremiumSlab{createTestSlab(100000, 500000, 2500, 1.2)},
		AsOf:           time.Now(),
	})

	assert.NoError(t, err)
	assert.Equal(t, 18000.0, breakdown.BasePremium, "Fallback should be 900000 * 2% = 18000")
}

func TestComputeBreakdown_InactiveSlabIgnored(t *testing.T) {
	calculator := NewPremiumCalculator(testEngineConfig())
	slab := createTestSlab(100000, 500000, 2500, 1.2)
	slab.IsActive = false

	breakdown, err := calculator.ComputeBreakdown(PremiumInput{
		CoverageAmount: 300000,
		Slabs:          []models.PremiumSlab{slab},
		AsOf:           time.Now(),
	})

	assert.NoError(t, err)
	assert.Equal(t, 6000.0, breakdown.BasePremium, "Inactive slab should not apply")
}

// ============================================================================
// TEST SUITE 2: COVERAGE AND ADD-ON LINE ITEMS
// ============================================================================

func TestComputeBreakdown_CoverageAndAddonPremiums(t *testing.T) {
	calculator := NewPremiumCalculator(testEngineConfig())

	breakdown, err := calculator.ComputeBreakdown(PremiumInput{
		CoverageAmount: 300000,
		Slabs:          []models.PremiumSlab{createTestSlab(100000, 500000, 2500, 1.2)},
		Coverages: []models.CoverageType{
			{ID: uuid.New(), CoverageName: "Own Damage", BasePremiumPerUnit: 800, IsMandatory: true, IsActive: true},
			{ID: uuid.New(), CoverageName: "Third Party", BasePremiumPerUnit: 400, IsMandatory: true, IsActive: true},
		},
		Addons: []models.RiderAddon{
			{ID: uuid.New(), AddonName: "Zero Dep", PremiumPercentage: 10, IsActive: true},
		},
		AsOf: time.Now(),
	})

	assert.NoError(t, err)
	assert.Equal(t, 1200.0, breakdown.CoveragePremium, "Coverage premium should be 800+400")
	assert.Equal(t, 610.0, breakdown.AddonPremium, "Add-on should be 10% of base premium 6100")
	assert.Equal(t, 7910.0, breakdown.Subtotal)
}

func TestComputeBreakdown_AddonCappedAtMaxCoverageLimit(t *testing.T) {
	calculator := NewPremiumCalculator(testEngineConfig())
	limit := 300.0

	breakdown, err := calculator.ComputeBreakdown(PremiumInput{
		CoverageAmount: 300000,
		Slabs:          []models.PremiumSlab{createTestSlab(100000, 500000, 2500, 1.2)},
		Addons: []models.RiderAddon{
			{ID: uuid.New(), AddonName: "Zero Dep", PremiumPercentage: 10, MaxCoverageLimit: &limit, IsActive: true},
		},
		AsOf: time.Now(),
	})

	assert.NoError(t, err)
	assert.Equal(t, 300.0, breakdown.AddonPremium, "Add-on amount should be capped at its limit")
}

// ============================================================================
// TEST SUITE 3: RISK ADJUSTMENT AND FLEET DISCOUNT
// ============================================================================

func TestComputeBreakdown_RiskAdjustment(t *testing.T) {
	calculator := NewPremiumCalculator(testEngineConfig())

	breakdown, err := calculator.ComputeBreakdown(PremiumInput{
		CoverageAmount: 300000,
		Slabs:          []models.PremiumSlab{createTestSlab(100000, 500000, 2500, 1.2)},
		RiskProfile: &models.RiskProfile{
			OverallRiskPercentage: 10,
			RiskCategory:          models.RiskHigh,
		},
		AsOf: time.Now(),
	})

	assert.NoError(t, err)
	assert.Equal(t, 610.0, breakdown.RiskAdjustment, "Risk adjustment should be 10% of subtotal 6100")
	assert.Equal(t, models.RiskHigh, breakdown.RiskCategory)
}

func TestComputeBreakdown_NoRiskProfileMeansZeroAdjustment(t *testing.T) {
	calculator := NewPremiumCalculator(testEngineConfig())

	breakdown, err := calculator.ComputeBreakdown(PremiumInput{
		CoverageAmount: 300000,
		Slabs:          []models.PremiumSlab{createTestSlab(100000, 500000, 2500, 1.2)},
		AsOf:           time.Now(),
	})

	assert.NoError(t, err)
	assert.Equal(t, 0.0, breakdown.RiskAdjustment)
	assert.Equal(t, models.RiskMedium, breakdown.RiskCategory, "Missing risk profile defaults to MEDIUM")
}

func TestComputeBreakdown_FleetDiscountStacksWithRuleDiscounts(t *testing.T) {
	calculator := NewPremiumCalculator(testEngineConfig())

	breakdown, err := calculator.ComputeBreakdown(PremiumInput{
		CoverageAmount: 300000,
		Slabs:          []models.PremiumSlab{createTestSlab(100000, 500000, 2500, 1.2)},
		DiscountRules: []models.DiscountRule{
			{RuleCode: "LOYAL", RuleName: "Loyalty", DiscountPercentage: 5, IsCombinable: true, IsActive: true},
		},
		Fleet: &models.Fleet{DiscountPercentage: 10, IsActive: true},
		AsOf:  time.Now(),
	})

	assert.NoError(t, err)
	assert.Equal(t, 305.0, breakdown.TotalDiscount, "Rule discount should be 5% of 6100")
	assert.Equal(t, 610.0, breakdown.FleetDiscount, "Fleet discount should be 10% of 6100")
	assert.Equal(t, 5185.0, breakdown.NetPremium, "Net should be 6100 - 305 - 610")
}

func TestComputeBreakdown_InactiveFleetIgnored(t *testing.T) {
	calculator := NewPremiumCalculator(testEngineConfig())

	breakdown, err := calculator.ComputeBreakdown(PremiumInput{
		CoverageAmount: 300000,
		Slabs:          []models.PremiumSlab{createTestSlab(100000, 500000, 2500, 1.2)},
		Fleet:          &models.Fleet{DiscountPercentage: 10, IsActive: false},
		AsOf:           time.Now(),
	})

	assert.NoError(t, err)
	assert.Equal(t, 0.0, breakdown.FleetDiscount)
}

// ============================================================================
// TEST SUITE 4: NET FLOOR AND GST
// ============================================================================

func TestComputeBreakdown_NetPremiumFlooredAtZero(t *testing.T) {
	calculator := NewPremiumCalculator(testEngineConfig())

	breakdown, err := calculator.ComputeBreakdown(PremiumInput{
		CoverageAmount: 300000,
		Slabs:          []models.PremiumSlab{createTestSlab(100000, 500000, 2500, 1.2)},
		DiscountRules: []models.DiscountRule{
			{RuleCode: "HUGE", RuleName: "Huge", DiscountPercentage: 90, IsCombinable: true, IsActive: true},
		},
		Fleet: &models.Fleet{DiscountPercentage: 50, IsActive: true},
		AsOf:  time.Now(),
	})

	assert.NoError(t, err)
	assert.Equal(t, 0.0, breakdown.NetPremium, "Net premium never goes negative")
	assert.Equal(t, 0.0, breakdown.GSTAmount, "GST on a zero net is zero")
	assert.Equal(t, 0.0, breakdown.TotalPremium)
}

func TestComputeBreakdown_GSTAppliedOnNet(t *testing.T) {
	calculator := NewPremiumCalculator(testEngineConfig())

	breakdown, err := calculator.ComputeBreakdown(PremiumInput{
		CoverageAmount: 300000,
		Slabs:          []models.PremiumSlab{createTestSlab(100000, 500000, 2500, 1.2)},
		AsOf:           time.Now(),
	})

	assert.NoError(t, err)
	assert.Equal(t, 18.0, breakdown.GSTPercentage)
	assert.InDelta(t, 1098.0, breakdown.GSTAmount, 0.001, "GST should be 18% of net 6100")
	assert.InDelta(t, 7198.0, breakdown.TotalPremium, 0.001)
}

func TestComputeBreakdown_TotalMonotonicInCoverageAmount(t *testing.T) {
	calculator := NewPremiumCalculator(testEngineConfig())
	slabs := []models.PremiumSlab{createTestSlab(0, 10000000, 2500, 1.2)}

	previous := -1.0
	for _, amount := range []float64{100000, 200000, 400000, 800000, 1600000} {
		breakdown, err := calculator.ComputeBreakdown(PremiumInput{
			CoverageAmount: amount,
			Slabs:          slabs,
			AsOf:           time.Now(),
		})
		assert.NoError(t, err)
		assert.Greater(t, breakdown.TotalPremium, previous,
			"Total premium should strictly increase with coverage amount")
		previous = breakdown.TotalPremium
	}
}
