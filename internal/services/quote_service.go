package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"decision-engine/internal/config"
	"decision-engine/internal/models"
	"decision-engine/internal/repository"

	"github.com/google/uuid"
)

// QuoteService orchestrates the premium calculator and scoring engine across
// all active insurers for one application, persists the quotes, and ranks
// the top recommendations. It never notifies; callers publish events after
// it returns.
type QuoteService struct {
	cfg             config.EngineConfig
	calculator      *PremiumCalculator
	scorer          *QuoteScorer
	applicationRepo *repository.ApplicationRepository
	catalogRepo     *repository.CatalogRepository
	configRepo      *repository.ConfigRuleRepository
	customerRepo    *repository.CustomerRepository
	quoteRepo       *repository.QuoteRepository
	recRepo         *repository.RecommendationRepository
}

func NewQuoteService(
	cfg config.EngineConfig,
	calculator *PremiumCalculator,
	scorer *QuoteScorer,
	applicationRepo *repository.ApplicationRepository,
	catalogRepo *repository.CatalogRepository,
	configRepo *repository.ConfigRuleRepository,
	customerRepo *repository.CustomerRepository,
	quoteRepo *repository.QuoteRepository,
	recRepo *repository.RecommendationRepository,
) *QuoteService {
	return &QuoteService{
		cfg:             cfg,
		calculator:      calculator,
		scorer:          scorer,
		applicationRepo: applicationRepo,
		catalogRepo:     catalogRepo,
		configRepo:      configRepo,
		customerRepo:    customerRepo,
		quoteRepo:       quoteRepo,
		recRepo:         recRepo,
	}
}

// GenerateQuoteNumber produces a human-readable quote number.
func GenerateQuoteNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("QT-%s-%s", now.Format("20060102"), suffix)
}

// GenerateQuotes prices the application against every active insurer,
// persists the quote batch, and replaces the application's recommendations
// with the new top ranks, all in one transaction.
func (s *QuoteService) GenerateQuotes(
	ctx context.Context,
	applicationID uuid.UUID,
	coverageIDs []uuid.UUID,
	addonIDs []uuid.UUID,
	actor string,
) (*models.GenerateQuotesResponse, error) {
	application, err := s.applicationRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("application not found: %w", err)
	}

	if application.Status != models.ApplicationApproved {
		return nil, &InvalidStateError{Msg: "quotes can only be generated for approved applications"}
	}

	insurers, err := s.catalogRepo.GetActiveInsurers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get insurers: %w", err)
	}
	if len(insurers) == 0 {
		return nil, &PreconditionError{Msg: "no active insurers available"}
	}

	typeCoverages, err := s.catalogRepo.GetCoverageTypesByInsuranceType(ctx, application.InsuranceTypeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get coverage types: %w", err)
	}

	// Default to the type's mandatory coverages when none were selected.
	if len(coverageIDs) == 0 {
		for _, coverage := range typeCoverages {
			if coverage.IsMandatory {
				coverageIDs = append(coverageIDs, coverage.ID)
			}
		}
	}
	selectedCoverages := filterCoverages(typeCoverages, coverageIDs)

	addons, err := s.catalogRepo.GetAddonsByIDs(ctx, addonIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get addons: %w", err)
	}

	input, err := s.loadCustomerInput(ctx, application)
	if err != nil {
		return nil, err
	}

	slabs, err := s.configRepo.GetActiveSlabs(ctx, application.InsuranceTypeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get premium slabs: %w", err)
	}
	discountRules, err := s.configRepo.GetActiveDiscountRules(ctx, application.InsuranceTypeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get discount rules: %w", err)
	}

	now := time.Now()
	expiry := now.Add(time.Duration(s.cfg.QuoteValidityDays) * 24 * time.Hour)

	type scoredQuote struct {
		quote  models.Quote
		scores ScoreBreakdown
	}
	scored := make([]scoredQuote, 0, len(insurers))

	for _, insurer := range insurers {
		breakdown, err := s.calculator.ComputeBreakdown(PremiumInput{
			CoverageAmount: application.RequestedCoverageAmount,
			Slabs:          slabs,
			Coverages:      selectedCoverages,
			Addons:         addons,
			DiscountRules:  discountRules,
			RiskProfile:    input.riskProfile,
			Fleet:          input.fleet,
			Facts:          input.facts,
			AsOf:           now,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to compute premium for insurer %s: %w", insurer.CompanyCode, err)
		}

		scores := s.scorer.Score(ScoreInput{
			TotalPremium:        breakdown.TotalPremium,
			Insurer:             insurer,
			SelectedCoverageIDs: coverageIDs,
			TypeCoverages:       typeCoverages,
			AnnualIncome:        input.profile.AnnualIncome,
			BudgetMin:           application.BudgetMin,
			BudgetMax:           application.BudgetMax,
		})

		generatedBy := actor
		scored = append(scored, scoredQuote{
			quote: models.Quote{
				ID:                 uuid.New(),
				QuoteNumber:        GenerateQuoteNumber(now),
				ApplicationID:      application.ID,
				CustomerID:         application.CustomerID,
				InsuranceTypeID:    application.InsuranceTypeID,
				InsurerID:          insurer.ID,
				Status:             models.QuoteGenerated,
				BasePremium:        breakdown.BasePremium,
				CoveragePremium:    breakdown.CoveragePremium,
				AddonPremium:       breakdown.AddonPremium,
				Subtotal:           breakdown.Subtotal,
				RiskPercentage:     breakdown.RiskPercentage,
				RiskAdjustment:     breakdown.RiskAdjustment,
				TotalDiscount:      breakdown.TotalDiscount,
				FleetDiscount:      breakdown.FleetDiscount,
				NetPremium:         breakdown.NetPremium,
				GSTPercentage:      breakdown.GSTPercentage,
				GSTAmount:          breakdown.GSTAmount,
				TotalPremium:       breakdown.TotalPremium,
				SumInsured:         application.RequestedCoverageAmount,
				PolicyTenureMonths: application.PolicyTenureMonths,
				OverallScore:       scores.Overall,
				ValidityDays:       s.cfg.QuoteValidityDays,
				GeneratedAt:        now,
				ExpiryAt:           expiry,
				GeneratedBy:        &generatedBy,
			},
			scores: scores,
		})
	}

	// Deterministic ranking: score descending, company code as tie-break so
	// regeneration yields identical ranks.
	insurerCodes := make(map[uuid.UUID]string, len(insurers))
	for _, insurer := range insurers {
		insurerCodes[insurer.ID] = insurer.CompanyCode
	}
	insurerNames := make(map[uuid.UUID]string, len(insurers))
	for _, insurer := range insurers {
		insurerNames[insurer.ID] = insurer.CompanyName
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].quote.OverallScore != scored[j].quote.OverallScore {
			return scored[i].quote.OverallScore > scored[j].quote.OverallScore
		}
		return insurerCodes[scored[i].quote.InsurerID] < insurerCodes[scored[j].quote.InsurerID]
	})

	tx, err := s.quoteRepo.BeginTransaction()
	if err != nil {
		return nil, fmt.Errorf("error starting transaction: %w", err)
	}

	quotes := make([]models.Quote, 0, len(scored))
	for i := range scored {
		if err := s.quoteRepo.CreateTx(tx, &scored[i].quote); err != nil {
			tx.Rollback()
			slog.Error("error creating quote", "error", err)
			return nil, fmt.Errorf("error creating quote: %w", err)
		}
		quotes = append(quotes, scored[i].quote)
	}

	if err := s.recRepo.DeleteByApplicationTx(tx, application.ID); err != nil {
		tx.Rollback()
		slog.Error("error clearing recommendations", "error", err)
		return nil, fmt.Errorf("error clearing recommendations: %w", err)
	}

	topN := s.cfg.MaxRecommendations
	if topN > len(scored) {
		topN = len(scored)
	}
	recommendations := make([]models.QuoteRecommendation, 0, topN)
	for rank := 1; rank <= topN; rank++ {
		entry := scored[rank-1]
		rec := models.QuoteRecommendation{
			ApplicationID:      application.ID,
			CustomerID:         application.CustomerID,
			InsuranceTypeID:    application.InsuranceTypeID,
			QuoteID:            entry.quote.ID,
			Rank:               rank,
			Reason:             RecommendationReason(entry.scores, insurerNames[entry.quote.InsurerID]),
			SuitabilityScore:   entry.scores.Overall,
			AffordabilityScore: entry.scores.Affordability,
			ClaimRatioScore:    entry.scores.ClaimRatio,
			CoverageMatchScore: entry.scores.Coverage,
			ServiceRatingScore: entry.scores.ServiceRating,
		}
		if err := s.recRepo.CreateTx(tx, &rec); err != nil {
			tx.Rollback()
			slog.Error("error creating recommendation", "error", err)
			return nil, fmt.Errorf("error creating recommendation: %w", err)
		}
		recommendations = append(recommendations, rec)
	}

	if err := tx.Commit(); err != nil {
		slog.Error("error committing quote generation", "error", err)
		return nil, fmt.Errorf("error committing quote generation: %w", err)
	}

	return &models.GenerateQuotesResponse{
		ApplicationID:   application.ID,
		TotalQuotes:     len(quotes),
		Quotes:          quotes,
		Recommendations: recommendations,
	}, nil
}

// AcceptQuote accepts a quote while it is still GENERATED and unexpired.
// An expired quote fails with ExpiredError regardless of its stored status.
func (s *QuoteService) AcceptQuote(ctx context.Context, quoteID uuid.UUID) (*models.Quote, error) {
	quote, err := s.quoteRepo.GetByID(ctx, quoteID)
	if err != nil {
		return nil, fmt.Errorf("quote not found: %w", err)
	}

	now := time.Now()
	if quote.IsExpired(now) {
		return nil, &ExpiredError{Msg: "this quote has expired"}
	}
	if quote.Status != models.QuoteGenerated {
		return nil, &InvalidStateError{Msg: fmt.Sprintf("only generated quotes can be accepted, current status is %s", quote.Status)}
	}

	accepted, err := s.quoteRepo.MarkAccepted(ctx, quoteID, now)
	if err != nil {
		return nil, err
	}
	if !accepted {
		// A concurrent writer won the compare-and-set.
		return nil, &InvalidStateError{Msg: "quote is no longer in a generated state"}
	}

	quote.Status = models.QuoteAccepted
	quote.AcceptedAt = &now
	return quote, nil
}

// CompareQuotes returns the stored recommendations and the full quote set,
// score descending, with read-time expiry resolution.
func (s *QuoteService) CompareQuotes(ctx context.Context, applicationID uuid.UUID) (*models.QuoteComparisonResponse, error) {
	recommendations, err := s.recRepo.GetByApplicationID(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get recommendations: %w", err)
	}

	quotes, err := s.quoteRepo.GetByApplicationID(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quotes: %w", err)
	}

	now := time.Now()
	for i := range quotes {
		quotes[i].Status = quotes[i].EffectiveStatus(now)
	}

	return &models.QuoteComparisonResponse{
		ApplicationID:   applicationID,
		TotalQuotes:     len(quotes),
		Recommendations: recommendations,
		Quotes:          quotes,
	}, nil
}

type customerInput struct {
	profile     *models.CustomerProfile
	riskProfile *models.RiskProfile
	fleet       *models.Fleet
	facts       CustomerFacts
}

func (s *QuoteService) loadCustomerInput(ctx context.Context, application *models.Application) (*customerInput, error) {
	profile, err := s.customerRepo.GetProfile(ctx, application.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer profile: %w", err)
	}

	riskProfile, err := s.customerRepo.GetRiskProfile(ctx, application.CustomerID)
	if err != nil {
		return nil, err
	}

	fleet, err := s.customerRepo.GetActiveFleet(ctx, application.CustomerID)
	if err != nil {
		return nil, err
	}

	fleetCount, err := s.customerRepo.CountActiveFleets(ctx, application.CustomerID)
	if err != nil {
		return nil, err
	}

	claimHistory, err := s.customerRepo.GetClaimHistory(ctx, application.CustomerID)
	if err != nil {
		return nil, err
	}

	return &customerInput{
		profile:     profile,
		riskProfile: riskProfile,
		fleet:       fleet,
		facts: CustomerFacts{
			ActiveFleetCount: fleetCount,
			ClaimHistory:     claimHistory,
			Age:              profile.Age(time.Now()),
		},
	}, nil
}

func filterCoverages(typeCoverages []models.CoverageType, ids []uuid.UUID) []models.CoverageType {
	wanted := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	var selected []models.CoverageType
	for _, coverage := range typeCoverages {
		if wanted[coverage.ID] {
			selected = append(selected, coverage)
		}
	}
	return selected
}
