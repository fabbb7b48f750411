package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/holinflow/hflow/internal/model"
)

// Summary and detail labels shared by the TUI and the plan command.
const (
	LabelMonthlyGoal         = "월수입 목표"
	LabelCurrentAssets       = "현재 자산"
	LabelExpectedIncome      = "예상 월수입"
	LabelGoalGap             = "목표 부족액"
	LabelAdditionalAssets    = "추가 필요 자산"
	LabelCategoryIncome      = "예상 월 수익"
	LabelAllocation          = "배분액"
	LabelExpectedReturn      = "예상수익률"
	LabelDividendRate        = "배당률"
	LabelPayoutMonths        = "배당 지급월"
	LabelQuarterlyDividend   = "예상 분기배당금"
	LabelAnnualDividend      = "예상 연배당금"
	LabelAnnualReturn        = "연 기대수익률"
	LabelProjectedAfterYears = "년 후 예상"
)

// Advice is the fixed guidance shown under every plan.
var Advice = []string{
	"📌 월 수익 목표 달성을 위해 추천된 배분 비율을 준수하세요",
	"📊 시장 변동성에 따라 분기별 리밸런싱을 권장합니다",
	"🔄 배당주는 매년 배당금 재투자로 복리 효과를 누릴 수 있습니다",
	"⚠️ ETF 투자 시 환율 변동성을 고려하세요 (해외 자산 비중 시)",
	"📈 정기적인 수익 점검으로 목표 달성도를 추적하세요",
}

// FallbackCategoryColor is used for category labels the client doesn't know.
const FallbackCategoryColor = lipgloss.Color("#667eea")

var categoryColors = map[string]lipgloss.Color{
	model.CategoryCashFlow:   "#4CAF50",
	model.CategoryETF:        "#2196F3",
	model.CategoryDividend:   "#FF9800",
	model.CategoryRealEstate: "#9C27B0",
}

// CategoryColor returns the accent color for a category label.
func CategoryColor(category string) lipgloss.Color {
	if c, ok := categoryColors[category]; ok {
		return c
	}
	return FallbackCategoryColor
}
