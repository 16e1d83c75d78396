package scoring

import (
	"fmt"

	"github.com/spf13/viper"
)

// Thresholds holds every tunable constant of the alert rules. Values are in the
// units of the source data: cap and market rates in percent (5.5 = 5.5%),
// portfolio allocations and acquisition rates as fractions (0.10 = 10%).
type Thresholds struct {
	Replacement ReplacementThresholds `mapstructure:"replacement"`
	Income      IncomeThresholds      `mapstructure:"income_activation"`
	Suitability SuitabilityThresholds `mapstructure:"suitability_drift"`
	MissingInfo MissingInfoThresholds `mapstructure:"missing_info"`
	Acquisition AcquisitionThresholds `mapstructure:"acquisition"`
}

// ReplacementThresholds: trigger when market - cap > GapHigh, or when the
// surrender period ends within SurrenderSoonDays and market - cap > GapLow.
type ReplacementThresholds struct {
	MarketAverageRate   float64 `mapstructure:"market_average_rate"`
	BestAlternativeRate float64 `mapstructure:"best_alternative_rate"`
	GapHigh             float64 `mapstructure:"gap_high"`
	GapLow              float64 `mapstructure:"gap_low"`
	SurrenderSoonDays   int     `mapstructure:"surrender_soon_days"`

	PerformanceMax         float64 `mapstructure:"performance_max"`
	SuitabilityScore       float64 `mapstructure:"suitability_score"`
	CostSavingsEndingSoon  float64 `mapstructure:"cost_savings_ending_soon"`
	CostSavings            float64 `mapstructure:"cost_savings"`
	FeatureUpgradeNoRider  float64 `mapstructure:"feature_upgrade_no_rider"`
	FeatureUpgradeBaseline float64 `mapstructure:"feature_upgrade_baseline"`
	IncomeRiderRollup      float64 `mapstructure:"income_rider_rollup"`

	MaxScore    int `mapstructure:"max_score"`
	HighScore   int `mapstructure:"high_score"`
	MediumScore int `mapstructure:"medium_score"`
}

// IncomeThresholds: trigger on an unactivated income rider, age >= EligibilityAge
// and an income need in IncomeNeeds. Urgency is 100 - DaysToOptimal/3.
type IncomeThresholds struct {
	EligibilityAge     int      `mapstructure:"eligibility_age"`
	IncomeNeeds        []string `mapstructure:"income_needs"`
	DaysToOptimal      int      `mapstructure:"days_to_optimal"`
	DeferralMultiplier float64  `mapstructure:"deferral_multiplier"`
	RollupRate         float64  `mapstructure:"rollup_rate"`
	PayoutRateNow      float64  `mapstructure:"payout_rate_now"`
	PayoutRateDeferred float64  `mapstructure:"payout_rate_deferred"`
	DeferralYears      int      `mapstructure:"deferral_years"`

	MaxScore    int `mapstructure:"max_score"`
	HighScore   int `mapstructure:"high_score"`
	MediumScore int `mapstructure:"medium_score"`
	HighDays    int `mapstructure:"high_days"`
	MediumDays  int `mapstructure:"medium_days"`
}

// SuitabilityThresholds: trigger when age >= DriftAge with a GrowthObjective, or
// the policy is at least ReviewIntervalYears old. The baseline profile stands in
// for the profile on file at issue, which the catalog does not keep.
type SuitabilityThresholds struct {
	DriftAge            int    `mapstructure:"drift_age"`
	GrowthObjective     string `mapstructure:"growth_objective"`
	ReviewIntervalYears int    `mapstructure:"review_interval_years"`

	BaselineRiskTolerance  string  `mapstructure:"baseline_risk_tolerance"`
	BaselineObjective      string  `mapstructure:"baseline_objective"`
	BaselineHorizonYears   int     `mapstructure:"baseline_horizon_years"`
	AssumedNetWorthChange  float64 `mapstructure:"assumed_net_worth_change"`
	AssumedIncomeChange    float64 `mapstructure:"assumed_income_change"`
	RiskPointsPerLevel     float64 `mapstructure:"risk_points_per_level"`
	ObjectiveCriticalScore float64 `mapstructure:"objective_critical_score"`
	ObjectiveChangedScore  float64 `mapstructure:"objective_changed_score"`
	ObjectiveStableScore   float64 `mapstructure:"objective_stable_score"`

	MaxScore    int `mapstructure:"max_score"`
	HighScore   int `mapstructure:"high_score"`
	MediumScore int `mapstructure:"medium_score"`
}

// MissingInfoThresholds: data older than StaleYears triggers on its own
type MissingInfoThresholds struct {
	StaleYears float64 `mapstructure:"stale_years"`

	// Completeness points per deficiency
	PrimaryMissingPoints    float64 `mapstructure:"primary_missing_points"`
	PrimaryIncompletePoints float64 `mapstructure:"primary_incomplete_points"`
	TaxElectionPoints       float64 `mapstructure:"tax_election_points"`
	EmailPoints             float64 `mapstructure:"email_points"`
	AddressPoints           float64 `mapstructure:"address_points"`
	ContingentPoints        float64 `mapstructure:"contingent_points"`

	// Recency points by age of last update
	RecencyOver5Years  float64 `mapstructure:"recency_over_5_years"`
	RecencyOver3Years  float64 `mapstructure:"recency_over_3_years"`
	RecencyOver1Year   float64 `mapstructure:"recency_over_1_year"`
	RecencyUnparseable float64 `mapstructure:"recency_unparseable"`
	RecencyNever       float64 `mapstructure:"recency_never"`

	CriticalPoints    float64 `mapstructure:"critical_points"`
	ImportantPoints   float64 `mapstructure:"important_points"`
	IntegrationPoints float64 `mapstructure:"integration_points"`

	MaxScore    int `mapstructure:"max_score"`
	HighScore   int `mapstructure:"high_score"`
	MediumScore int `mapstructure:"medium_score"`
}

// AcquisitionThresholds groups the portfolio opportunity rules
type AcquisitionThresholds struct {
	BestFIACap   float64 `mapstructure:"best_fia_cap"`
	BestMYGARate float64 `mapstructure:"best_myga_rate"`

	ExcessLiquidity ExcessLiquidityThresholds `mapstructure:"excess_liquidity"`
	Unprotected     UnprotectedThresholds     `mapstructure:"portfolio_unprotected"`
	CDMaturity      CDMaturityThresholds      `mapstructure:"cd_maturity"`
	IncomeGap       IncomeGapThresholds       `mapstructure:"income_gap"`
	Diversification DiversificationThresholds `mapstructure:"diversification_gap"`
}

type ExcessLiquidityThresholds struct {
	MinCashAllocation float64 `mapstructure:"min_cash_allocation"`
	MinCash           float64 `mapstructure:"min_cash"`
	MaxAge            int     `mapstructure:"max_age"`
	ReallocationShare float64 `mapstructure:"reallocation_share"`
	CashYield         float64 `mapstructure:"cash_yield"`
	MaxScore          int     `mapstructure:"max_score"`
	HighScore         int     `mapstructure:"high_score"`
	MediumScore       int     `mapstructure:"medium_score"`
}

type UnprotectedThresholds struct {
	MaxEquityAllocation float64  `mapstructure:"max_equity_allocation"`
	MinAge              int      `mapstructure:"min_age"`
	LifeStages          []string `mapstructure:"life_stages"`
	Objectives          []string `mapstructure:"objectives"`
	AllocationShare     float64  `mapstructure:"allocation_share"`
	GLWBPayoutRate      float64  `mapstructure:"glwb_payout_rate"`
	MaxScore            int      `mapstructure:"max_score"`
	HighScore           int      `mapstructure:"high_score"`
	MediumScore         int      `mapstructure:"medium_score"`
}

type CDMaturityThresholds struct {
	LookaheadDays int     `mapstructure:"lookahead_days"`
	MinAmount     float64 `mapstructure:"min_amount"`
	MaxRate       float64 `mapstructure:"max_rate"`
	DefaultRate   float64 `mapstructure:"default_rate"`
	MaxScore      int     `mapstructure:"max_score"`
	HighScore     int     `mapstructure:"high_score"`
	MediumScore   int     `mapstructure:"medium_score"`
	HighDays      int     `mapstructure:"high_days"`
}

type IncomeGapThresholds struct {
	MinAge                int     `mapstructure:"min_age"`
	MaxYearsToRetirement  int     `mapstructure:"max_years_to_retirement"`
	DefaultRetirementYear int     `mapstructure:"default_retirement_year"`
	Objective             string  `mapstructure:"objective"`
	WithdrawalRate        float64 `mapstructure:"withdrawal_rate"`
	SocialSecurity        float64 `mapstructure:"social_security"`
	MaxCoverage           float64 `mapstructure:"max_coverage"`
	PayoutRate            float64 `mapstructure:"payout_rate"`
	MaxScore              int     `mapstructure:"max_score"`
	HighScore             int     `mapstructure:"high_score"`
	MediumScore           int     `mapstructure:"medium_score"`
}

type DiversificationThresholds struct {
	MinPortfolio    float64  `mapstructure:"min_portfolio"`
	MinAge          int      `mapstructure:"min_age"`
	RiskTolerances  []string `mapstructure:"risk_tolerances"`
	AllocationShare float64  `mapstructure:"allocation_share"`
	MaxScore        int      `mapstructure:"max_score"`
	MediumScore     int      `mapstructure:"medium_score"`
}

// DefaultThresholds returns the constants the rules were tuned with
func DefaultThresholds() Thresholds {
	return Thresholds{
		Replacement: ReplacementThresholds{
			MarketAverageRate:      5.5,
			BestAlternativeRate:    6.0,
			GapHigh:                2.0,
			GapLow:                 1.0,
			SurrenderSoonDays:      365,
			PerformanceMax:         40,
			SuitabilityScore:       24.5,
			CostSavingsEndingSoon:  16.8,
			CostSavings:            10,
			FeatureUpgradeNoRider:  5.5,
			FeatureUpgradeBaseline: 3,
			IncomeRiderRollup:      7,
			MaxScore:               95,
			HighScore:              75,
			MediumScore:            60,
		},
		Income: IncomeThresholds{
			EligibilityAge:     59,
			IncomeNeeds:        []string{"Now", "Soon"},
			DaysToOptimal:      180,
			DeferralMultiplier: 1.2,
			RollupRate:         0.07,
			PayoutRateNow:      0.05,
			PayoutRateDeferred: 0.055,
			DeferralYears:      2,
			MaxScore:           92,
			HighScore:          75,
			MediumScore:        60,
			HighDays:           30,
			MediumDays:         90,
		},
		Suitability: SuitabilityThresholds{
			DriftAge:               60,
			GrowthObjective:        "Growth",
			ReviewIntervalYears:    5,
			BaselineRiskTolerance:  "Conservative",
			BaselineObjective:      "Growth",
			BaselineHorizonYears:   15,
			AssumedNetWorthChange:  0.42,
			AssumedIncomeChange:    0.18,
			RiskPointsPerLevel:     12.6,
			ObjectiveCriticalScore: 21.6,
			ObjectiveChangedScore:  15,
			ObjectiveStableScore:   5,
			MaxScore:               92,
			HighScore:              75,
			MediumScore:            50,
		},
		MissingInfo: MissingInfoThresholds{
			StaleYears:              3,
			PrimaryMissingPoints:    15,
			PrimaryIncompletePoints: 10,
			TaxElectionPoints:       8,
			EmailPoints:             5,
			AddressPoints:           3,
			ContingentPoints:        2,
			RecencyOver5Years:       30,
			RecencyOver3Years:       18,
			RecencyOver1Year:        9,
			RecencyUnparseable:      15,
			RecencyNever:            20,
			CriticalPoints:          20,
			ImportantPoints:         12,
			IntegrationPoints:       10,
			MaxScore:                100,
			HighScore:               75,
			MediumScore:             50,
		},
		Acquisition: AcquisitionThresholds{
			BestFIACap:   0.065,
			BestMYGARate: 0.055,
			ExcessLiquidity: ExcessLiquidityThresholds{
				MinCashAllocation: 0.10,
				MinCash:           50000,
				MaxAge:            75,
				ReallocationShare: 0.60,
				CashYield:         0.005,
				MaxScore:          95,
				HighScore:         75,
				MediumScore:       60,
			},
			Unprotected: UnprotectedThresholds{
				MaxEquityAllocation: 0.60,
				MinAge:              55,
				LifeStages:          []string{"Pre-Retirement", "Retired"},
				Objectives:          []string{"Income", "Preservation"},
				AllocationShare:     0.20,
				GLWBPayoutRate:      0.055,
				MaxScore:            95,
				HighScore:           80,
				MediumScore:         65,
			},
			CDMaturity: CDMaturityThresholds{
				LookaheadDays: 90,
				MinAmount:     50000,
				MaxRate:       0.04,
				DefaultRate:   0.035,
				MaxScore:      95,
				HighScore:     75,
				MediumScore:   60,
				HighDays:      30,
			},
			IncomeGap: IncomeGapThresholds{
				MinAge:                60,
				MaxYearsToRetirement:  3,
				DefaultRetirementYear: 2030,
				Objective:             "Income",
				WithdrawalRate:        0.04,
				SocialSecurity:        35000,
				MaxCoverage:           0.50,
				PayoutRate:            0.055,
				MaxScore:              95,
				HighScore:             75,
				MediumScore:           60,
			},
			Diversification: DiversificationThresholds{
				MinPortfolio:    500000,
				MinAge:          50,
				RiskTolerances:  []string{"Conservative", "Moderate"},
				AllocationShare: 0.15,
				MaxScore:        90,
				MediumScore:     70,
			},
		},
	}
}

// list keys are overwritten wholesale instead of merged element-wise into the defaults
var thresholdListKeys = map[string]func(t *Thresholds, v []string){
	"income_activation.income_needs": func(t *Thresholds, v []string) { t.Income.IncomeNeeds = v },
	"acquisition.portfolio_unprotected.life_stages": func(t *Thresholds, v []string) {
		t.Acquisition.Unprotected.LifeStages = v
	},
	"acquisition.portfolio_unprotected.objectives": func(t *Thresholds, v []string) {
		t.Acquisition.Unprotected.Objectives = v
	},
	"acquisition.diversification_gap.risk_tolerances": func(t *Thresholds, v []string) {
		t.Acquisition.Diversification.RiskTolerances = v
	},
}

// LoadThresholds reads a YAML override file on top of DefaultThresholds.
// An empty path returns the defaults.
func LoadThresholds(path string) (Thresholds, error) {
	thresholds := DefaultThresholds()
	if path == "" {
		return thresholds, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return thresholds, fmt.Errorf("failed to read scoring config %s: %w", path, err)
	}

	if err := v.Unmarshal(&thresholds); err != nil {
		return DefaultThresholds(), fmt.Errorf("failed to unmarshal scoring config: %w", err)
	}
	for key, set := range thresholdListKeys {
		if v.IsSet(key) {
			set(&thresholds, v.GetStringSlice(key))
		}
	}

	if err := thresholds.Validate(); err != nil {
		return DefaultThresholds(), fmt.Errorf("scoring config validation failed: %w", err)
	}
	return thresholds, nil
}

// Validate rejects settings that break severity monotonicity
func (t Thresholds) Validate() error {
	tiers := []struct {
		name              string
		max, high, medium int
	}{
		{"replacement", t.Replacement.MaxScore, t.Replacement.HighScore, t.Replacement.MediumScore},
		{"income_activation", t.Income.MaxScore, t.Income.HighScore, t.Income.MediumScore},
		{"suitability_drift", t.Suitability.MaxScore, t.Suitability.HighScore, t.Suitability.MediumScore},
		{"missing_info", t.MissingInfo.MaxScore, t.MissingInfo.HighScore, t.MissingInfo.MediumScore},
		{"excess_liquidity", t.Acquisition.ExcessLiquidity.MaxScore, t.Acquisition.ExcessLiquidity.HighScore, t.Acquisition.ExcessLiquidity.MediumScore},
		{"portfolio_unprotected", t.Acquisition.Unprotected.MaxScore, t.Acquisition.Unprotected.HighScore, t.Acquisition.Unprotected.MediumScore},
		{"cd_maturity", t.Acquisition.CDMaturity.MaxScore, t.Acquisition.CDMaturity.HighScore, t.Acquisition.CDMaturity.MediumScore},
		{"income_gap", t.Acquisition.IncomeGap.MaxScore, t.Acquisition.IncomeGap.HighScore, t.Acquisition.IncomeGap.MediumScore},
	}
	for _, tier := range tiers {
		if tier.max <= 0 || tier.max > 100 {
			return fmt.Errorf("%s.max_score must be in (0, 100], got %d", tier.name, tier.max)
		}
		if tier.medium > tier.high {
			return fmt.Errorf("%s.medium_score (%d) must not exceed high_score (%d)", tier.name, tier.medium, tier.high)
		}
	}
	if t.Replacement.GapLow > t.Replacement.GapHigh {
		return fmt.Errorf("replacement.gap_low must not exceed gap_high")
	}
	if t.Replacement.MarketAverageRate <= 0 {
		return fmt.Errorf("replacement.market_average_rate must be positive")
	}
	return nil
}
