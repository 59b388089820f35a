package services

import (
	"time"

	"decision-engine/internal/config"
	"decision-engine/internal/models"
)

// PremiumCalculator computes an itemized premium breakdown for one insurer
// candidate. It is a pure computation over data fetched at call start; the
// quote service does the fetching.
type PremiumCalculator struct {
	cfg config.EngineConfig
}

func NewPremiumCalculator(cfg config.EngineConfig) *PremiumCalculator {
	return &PremiumCalculator{cfg: cfg}
}

// PremiumInput carries everything the calculator needs, pre-fetched.
type PremiumInput struct {
	CoverageAmount float64
	Slabs          []models.PremiumSlab   // active slabs for the insurance type
	Coverages      []models.CoverageType  // selected coverage types
	Addons         []models.RiderAddon    // selected add-ons
	DiscountRules  []models.DiscountRule  // active rules, priority descending
	RiskProfile    *models.RiskProfile    // nil when the customer has none
	Fleet          *models.Fleet          // active fleet, nil when none
	Facts          CustomerFacts
	AsOf           time.Time
}

// PremiumBreakdown is the fully itemized result. Every intermediate value is
// kept for auditability.
type PremiumBreakdown struct {
	BasePremium     float64             `json:"base_premium"`
	CoveragePremium float64             `json:"coverage_premium"`
	AddonPremium    float64             `json:"addon_premium"`
	Subtotal        float64             `json:"subtotal"`
	RiskPercentage  float64             `json:"risk_percentage"`
	RiskCategory    models.RiskCategory `json:"risk_category"`
	RiskAdjustment  float64             `json:"risk_adjustment"`
	Discounts       []AppliedDiscount   `json:"discounts"`
	TotalDiscount   float64             `json:"total_discount"`
	FleetDiscount   float64             `json:"fleet_discount"`
	NetPremium      float64             `json:"net_premium"`
	GSTPercentage   float64             `json:"gst_percentage"`
	GSTAmount       float64             `json:"gst_amount"`
	TotalPremium    float64             `json:"total_premium"`
}

// ComputeBreakdown runs the full premium pipeline: slab base, coverage and
// add-on line items, risk adjustment, discount evaluation, fleet discount,
// net floor at zero, then GST.
func (p *PremiumCalculator) ComputeBreakdown(in PremiumInput) (PremiumBreakdown, error) {
	base := p.basePremium(in.CoverageAmount, in.Slabs)
	coveragePremium := coveragePremium(in.Coverages)
	addonPremium := addonPremium(base, in.Addons)

	subtotal := base + coveragePremium + addonPremium

	riskPct := 0.0
	riskCategory := models.RiskMedium
	if in.RiskProfile != nil {
		riskPct = in.RiskProfile.OverallRiskPercentage
		riskCategory = in.RiskProfile.RiskCategory
	}
	riskAdjustment := subtotal * (riskPct / 100)

	discounts, totalDiscount, err := EvaluateDiscountRules(in.DiscountRules, subtotal, in.Facts, in.AsOf)
	if err != nil {
		return PremiumBreakdown{}, err
	}

	// Fleet discount stacks additively with rule-based discounts and is not
	// part of the combinable/non-combinable resolution.
	fleetDiscount := 0.0
	if in.Fleet != nil && in.Fleet.IsActive {
		fleetDiscount = subtotal * (in.Fleet.DiscountPercentage / 100)
	}

	net := subtotal + riskAdjustment - totalDiscount - fleetDiscount
	if net < 0 {
		net = 0
	}

	gstAmount := net * (p.cfg.GSTRatePercent / 100)

	return PremiumBreakdown{
		BasePremium:     base,
		CoveragePremium: coveragePremium,
		AddonPremium:    addonPremium,
		Subtotal:        subtotal,
		RiskPercentage:  riskPct,
		RiskCategory:    riskCategory,
		RiskAdjustment:  riskAdjustment,
		Discounts:       discounts,
		TotalDiscount:   totalDiscount,
		FleetDiscount:   fleetDiscount,
		NetPremium:      net,
		GSTPercentage:   p.cfg.GSTRatePercent,
		GSTAmount:       gstAmount,
		TotalPremium:    net + gstAmount,
	}, nil
}

// basePremium finds the active slab containing the coverage amount. Without
// a matching slab it falls back to the configured flat rate of the coverage
// amount.
func (p *PremiumCalculator) basePremium(coverageAmount float64, slabs []models.PremiumSlab) float64 {
	for _, slab := range slabs {
		if slab.IsActive && slab.Contains(coverageAmount) {
			return slab.Premium(coverageAmount)
		}
	}
	return coverageAmount * (p.cfg.DefaultSlabRatePercent / 100)
}

func coveragePremium(coverages []models.CoverageType) float64 {
	total := 0.0
	for _, coverage := range coverages {
		total += coverage.BasePremiumPerUnit
	}
	return total
}

// addonPremium computes each add-on as a percentage of the base premium,
// capped at the add-on's max coverage limit when set.
func addonPremium(base float64, addons []models.RiderAddon) float64 {
	total := 0.0
	for _, addon := range addons {
		amount := base * (addon.PremiumPercentage / 100)
		if addon.MaxCoverageLimit != nil && amount > *addon.MaxCoverageLimit {
			amount = *addon.MaxCoverageLimit
		}
		total += amount
	}
	return total
}
