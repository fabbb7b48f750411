package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/holinflow/hflow/internal/tui/theme"
)

func init() {
	// Force TrueColor output so ANSI codes are generated in tests
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func TestLayoutRow(t *testing.T) {
	widths := LayoutRow(101, 3)
	if len(widths) != 3 || widths[0] != 34 || widths[1] != 34 || widths[2] != 33 {
		t.Errorf("LayoutRow(101, 3) = %v", widths)
	}
	if LayoutRow(10, 0) != nil {
		t.Error("LayoutRow with n=0 should be nil")
	}
}

func TestCardRowHeightMatchesTallest(t *testing.T) {
	theme.SetActive("flexoki-dark")

	shortCard := ContentCard("현재 자산", "5,000만원", 22)
	tallCard := ContentCard("배당주", "SK텔레콤\n배당률 4.8%\n3, 6, 9, 12월\n예상 연배당금 16만원", 22)

	shortLines := len(strings.Split(shortCard, "\n"))
	tallLines := len(strings.Split(tallCard, "\n"))
	if shortLines >= tallLines {
		t.Fatal("short card should be shorter than tall card")
	}

	lines := strings.Split(CardRow([]string{tallCard, shortCard}), "\n")
	if len(lines) != tallLines {
		t.Errorf("joined height = %d, want %d", len(lines), tallLines)
	}
	for i, line := range lines {
		if !strings.Contains(line, "\x1b[") {
			t.Errorf("line %d has no styling: %q", i, line)
		}
	}
}

func TestMetricCardRowWidth(t *testing.T) {
	theme.SetActive("flexoki-dark")

	metrics := []Metric{
		{Label: "월수입 목표", Value: "1,000만원"},
		{Label: "현재 자산", Value: "5,000만원"},
		{Label: "예상 월수입", Value: "80.0만원"},
		{Label: "목표 부족액", Value: "920.0만원"},
		{Label: "추가 필요 자산", Value: "55000.0만원"},
	}

	row := MetricCardRow(metrics, 120)
	for i, line := range strings.Split(row, "\n") {
		if w := lipgloss.Width(line); w != 120 {
			t.Errorf("line %d width = %d, want 120", i, w)
		}
	}

	// Narrow terminals wrap onto more rows instead of crushing cards.
	narrow := MetricCardRow(metrics, 40)
	if lipgloss.Height(narrow) <= lipgloss.Height(row) {
		t.Errorf("narrow row height %d should exceed wide %d", lipgloss.Height(narrow), lipgloss.Height(row))
	}
	if !strings.Contains(narrow, "55000.0만원") {
		t.Error("wrapped row lost a metric")
	}
}

func TestAccentCardWidth(t *testing.T) {
	theme.SetActive("terminal")
	defer theme.SetActive("flexoki-dark")

	card := AccentCard("현금흐름\n1,250만원 (25.0%)", lipgloss.Color("#4CAF50"), true, 60)
	for i, line := range strings.Split(card, "\n") {
		if w := lipgloss.Width(line); w != 60 {
			t.Errorf("line %d width = %d, want 60", i, w)
		}
	}
}
