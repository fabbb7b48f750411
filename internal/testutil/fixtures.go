package testutil

import "github.com/holinflow/hflow/internal/model"

func ptr(v float64) *float64 { return &v }

// ExamplePlan is the neutral-risk plan for a 1000만원 goal and 5000만원 of
// assets.
func ExamplePlan() model.PlanResponse {
	return model.PlanResponse{
		MonthlyGoal:     1000,
		TotalAllocation: 5000,
		Report: model.ReportSummary{
			CurrentAssets:            5000,
			ExpectedMonthlyIncome:    80,
			MonthlyGoalGap:           920,
			RequiredTotalAssets:      60000,
			RequiredAdditionalAssets: 55000,
			WeightedAnnualReturn:     6,
		},
		Assets: []model.AssetCategory{
			{
				Category:          model.CategoryCashFlow,
				Amount:            1250,
				AllocationPercent: 25,
				ExpectedIncome:    ptr(4.7),
				Items: []model.InvestmentItem{
					{Name: "정기예금 (연 4.5%)", Code: "DEPOSIT", Description: "은행 정기예금. 원금안전", Allocation: 625, ExpectedReturn: ptr(4.5)},
					{Name: "단기채권 펀드", Code: "BONDFUND", Description: "저금리 채권 중심 펀드", Allocation: 625, ExpectedReturn: ptr(4.8)},
				},
			},
			{
				Category:          model.CategoryDividend,
				Amount:            1000,
				AllocationPercent: 20,
				ExpectedIncome:    ptr(3.2),
				Items: []model.InvestmentItem{
					{
						Name: "SK텔레콤", Code: "017670", Description: "통신업. 안정적 배당주", Allocation: 333,
						DividendRate: ptr(4.8), PayoutMonths: []int{3, 6, 9, 12},
						ExpectedAnnualDividend: ptr(16), ExpectedQuarterlyDividend: ptr(4),
					},
				},
			},
		},
	}
}

// ExamplePlanEmpty is the same report with no asset categories.
func ExamplePlanEmpty() model.PlanResponse {
	p := ExamplePlan()
	p.Assets = []model.AssetCategory{}
	return p
}
