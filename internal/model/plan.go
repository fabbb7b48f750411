// Package model defines the plan request/response types exchanged with the
// HolinFlow backend and the derived projection point.
package model

import (
	"errors"
	"fmt"
	"math"
)

// MinMonthlyGoal is the smallest accepted monthly income goal, in 만원.
const MinMonthlyGoal = 100

// ErrInvalidRequest is wrapped by every PlanRequest validation failure.
var ErrInvalidRequest = errors.New("invalid plan request")

// PlanRequest is the form input posted to the backend. Amounts are in 만원.
type PlanRequest struct {
	MonthlyGoal   float64   `json:"monthly_goal" yaml:"monthly_goal"`
	CurrentAssets float64   `json:"current_assets" yaml:"current_assets"`
	RiskLevel     RiskLevel `json:"risk_level" yaml:"risk_level"`
}

// Validate checks the form-level constraints before anything is sent.
func (r PlanRequest) Validate() error {
	if !finite(r.MonthlyGoal) {
		return fmt.Errorf("%w: monthly goal must be a finite number", ErrInvalidRequest)
	}
	if r.MonthlyGoal < MinMonthlyGoal {
		return fmt.Errorf("%w: monthly goal must be at least %d", ErrInvalidRequest, MinMonthlyGoal)
	}
	if !finite(r.CurrentAssets) {
		return fmt.Errorf("%w: current assets must be a finite number", ErrInvalidRequest)
	}
	if r.CurrentAssets < 0 {
		return fmt.Errorf("%w: current assets must not be negative", ErrInvalidRequest)
	}
	if !r.RiskLevel.Valid() {
		return fmt.Errorf("%w: %w %q", ErrInvalidRequest, ErrUnknownRiskLevel, string(r.RiskLevel))
	}
	return nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// PlanResponse is the backend-computed allocation plan. The client treats
// every number in it as opaque and only formats it.
type PlanResponse struct {
	MonthlyGoal     float64         `json:"monthly_goal" yaml:"monthly_goal"`
	TotalAllocation float64         `json:"total_allocation" yaml:"total_allocation"`
	Report          ReportSummary   `json:"report" yaml:"report"`
	Assets          []AssetCategory `json:"assets" yaml:"assets"`
}

// ReportSummary holds the headline figures of a plan.
// WeightedAnnualReturn is a percentage (6 means 6%).
type ReportSummary struct {
	CurrentAssets            float64 `json:"current_assets" yaml:"current_assets"`
	ExpectedMonthlyIncome    float64 `json:"expected_monthly_income" yaml:"expected_monthly_income"`
	MonthlyGoalGap           float64 `json:"monthly_goal_gap" yaml:"monthly_goal_gap"`
	RequiredTotalAssets      float64 `json:"required_total_assets" yaml:"required_total_assets"`
	RequiredAdditionalAssets float64 `json:"required_additional_assets" yaml:"required_additional_assets"`
	WeightedAnnualReturn     float64 `json:"weighted_annual_return" yaml:"weighted_annual_return"`
}

// Known category labels returned by the backend. Category is an open string;
// anything else is rendered with the fallback color.
const (
	CategoryCashFlow   = "현금흐름"
	CategoryETF        = "투자 (ETF)"
	CategoryDividend   = "배당주"
	CategoryRealEstate = "부동산 (REITs)"
)

// AssetCategory groups instruments that share a strategy role.
type AssetCategory struct {
	Category          string           `json:"category" yaml:"category"`
	Amount            float64          `json:"amount" yaml:"amount"`
	AllocationPercent float64          `json:"allocation_percent" yaml:"allocation_percent"`
	ExpectedIncome    *float64         `json:"expected_income,omitempty" yaml:"expected_income,omitempty"`
	Items             []InvestmentItem `json:"items" yaml:"items"`
}

// InvestmentItem is one recommended instrument. The optional fields are only
// present for return- or dividend-bearing instruments.
type InvestmentItem struct {
	Name                      string   `json:"name" yaml:"name"`
	Code                      string   `json:"code" yaml:"code"`
	Description               string   `json:"description" yaml:"description"`
	Allocation                float64  `json:"allocation" yaml:"allocation"`
	ExpectedReturn            *float64 `json:"expected_return,omitempty" yaml:"expected_return,omitempty"`
	DividendRate              *float64 `json:"dividend_rate,omitempty" yaml:"dividend_rate,omitempty"`
	PayoutMonths              []int    `json:"payout_months,omitempty" yaml:"payout_months,omitempty"`
	ExpectedAnnualDividend    *float64 `json:"expected_annual_dividend,omitempty" yaml:"expected_annual_dividend,omitempty"`
	ExpectedQuarterlyDividend *float64 `json:"expected_quarterly_dividend,omitempty" yaml:"expected_quarterly_dividend,omitempty"`
}

// HasExpectedReturn reports whether a non-zero expected return was supplied.
func (it InvestmentItem) HasExpectedReturn() bool {
	return it.ExpectedReturn != nil && *it.ExpectedReturn != 0
}

// IsDividendBearing reports whether the dividend block should be shown.
// A zero dividend rate counts as absent.
func (it InvestmentItem) IsDividendBearing() bool {
	return it.DividendRate != nil && *it.DividendRate != 0
}

// ValidPayoutMonths returns the payout months in 1..12, in the order given.
func (it InvestmentItem) ValidPayoutMonths() []int {
	out := make([]int, 0, len(it.PayoutMonths))
	for _, m := range it.PayoutMonths {
		if m >= 1 && m <= 12 {
			out = append(out, m)
		}
	}
	return out
}

// ProjectionPoint is one year of a compounding projection. Derived on every
// render, never stored.
type ProjectionPoint struct {
	Year  int     `json:"year" yaml:"year"`
	Value float64 `json:"value" yaml:"value"`
}
