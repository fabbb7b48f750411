package components

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/holinflow/hflow/internal/cli"
	"github.com/holinflow/hflow/internal/tui/theme"
)

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// Sparkline renders a unicode sparkline from values.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	style := lipgloss.NewStyle().Foreground(color)
	return style.Render(cli.RenderSparkline(values))
}

// BarChart renders a vertical bar chart. labels is parallel to values; an
// empty label leaves that column unlabeled. Y-axis ticks are in 만원.
func BarChart(values []float64, labels []string, color lipgloss.Color, width, height int) string {
	if len(values) == 0 {
		return ""
	}
	if width < 20 || height < 3 {
		return Sparkline(values, color)
	}

	t := theme.Active

	maxVal := 0.0
	for _, v := range values {
		if finite(v) && v > maxVal {
			maxVal = v
		}
	}
	if maxVal == 0 {
		maxVal = 1
	}

	// Y-axis: nice tick step and ceiling
	tickStep := chartTickStep(maxVal)
	maxIntervals := max(height/2, 2)
	for int(math.Ceil(maxVal/tickStep)) > maxIntervals {
		tickStep *= 2
	}
	ceiling := math.Ceil(maxVal/tickStep) * tickStep
	numIntervals := max(int(math.Round(ceiling/tickStep)), 1)

	rowsPerTick := max(height/numIntervals, 2)
	chartH := rowsPerTick * numIntervals

	tickLabels := make(map[int]string)
	yLabelW := lipgloss.Width(cli.FormatWan(0))
	for i := 1; i <= numIntervals; i++ {
		lbl := cli.FormatWan(tickStep * float64(i))
		tickLabels[i*rowsPerTick] = lbl
		yLabelW = max(yLabelW, lipgloss.Width(lbl))
	}
	yLabelW++

	chartW := max(width-yLabelW-1, 5)
	n := len(values)

	// Bar sizing: prefer a one-column gap, drop it before sampling.
	gap := 1
	if n <= 1 {
		gap = 0
	}
	barW := chartW
	if n > 1 {
		barW = (chartW - (n-1)*gap) / n
		if barW < 1 {
			gap = 0
			barW = chartW / n
		}
	}
	if barW < 1 {
		maxN := max(chartW, 2)
		sampled := make([]float64, maxN)
		sampledLabels := make([]string, maxN)
		for i := range sampled {
			src := i * (n - 1) / (maxN - 1)
			sampled[i] = values[src]
			if src < len(labels) {
				sampledLabels[i] = labels[src]
			}
		}
		values, labels, n, barW = sampled, sampledLabels, maxN, 1
	}
	barW = min(barW, 6)
	axisLen := n*barW + max(0, n-1)*gap

	blocks := []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim)

	var b strings.Builder
	for row := chartH; row >= 1; row-- {
		rowTop := ceiling * float64(row) / float64(chartH)
		rowBottom := ceiling * float64(row-1) / float64(chartH)

		// Upper rows get the brighter accent.
		barColor := color
		if float64(row)/float64(chartH) > 0.8 {
			barColor = t.AccentBright
		}
		barStyle := lipgloss.NewStyle().Foreground(barColor)

		lbl := tickLabels[row]
		b.WriteString(axisStyle.Render(strings.Repeat(" ", yLabelW-lipgloss.Width(lbl)) + lbl))
		b.WriteString(axisStyle.Render("│"))

		for i, v := range values {
			if i > 0 && gap > 0 {
				b.WriteString(strings.Repeat(" ", gap))
			}
			switch {
			case !finite(v) && !math.IsInf(v, 1):
				b.WriteString(strings.Repeat(" ", barW))
			case v >= rowTop:
				b.WriteString(barStyle.Render(strings.Repeat("█", barW)))
			case v > rowBottom:
				idx := int((v - rowBottom) / (rowTop - rowBottom) * 8)
				idx = max(1, min(idx, 8))
				b.WriteString(barStyle.Render(strings.Repeat(string(blocks[idx]), barW)))
			default:
				b.WriteString(strings.Repeat(" ", barW))
			}
		}
		b.WriteString("\n")
	}

	zero := "0"
	b.WriteString(axisStyle.Render(strings.Repeat(" ", yLabelW-len(zero)) + zero))
	b.WriteString(axisStyle.Render("└"))
	b.WriteString(axisStyle.Render(strings.Repeat("─", axisLen)))

	if xl := xAxisLabels(labels, n, barW, gap, axisLen); xl != "" {
		b.WriteString("\n")
		b.WriteString(strings.Repeat(" ", yLabelW+1))
		b.WriteString(lipgloss.NewStyle().Foreground(t.TextDim).Render(xl))
	}

	return b.String()
}

// xAxisLabels lays out non-empty labels under their bars, keeping at least
// one space between them. The last label always wins a collision.
func xAxisLabels(labels []string, n, barW, gap, axisLen int) string {
	if len(labels) != n || n == 0 {
		return ""
	}
	type placed struct {
		pos, w int
		lbl    string
	}
	var out []placed
	collides := func(pos int) bool {
		if len(out) == 0 {
			return false
		}
		prev := out[len(out)-1]
		return prev.pos+prev.w >= pos
	}

	for i, lbl := range labels {
		if lbl == "" {
			continue
		}
		w := lipgloss.Width(lbl)
		pos := i * (barW + gap)
		if i == n-1 {
			pos = min(pos, axisLen-w)
			if pos < 0 {
				continue
			}
			for collides(pos) {
				out = out[:len(out)-1]
			}
		} else if pos+w > axisLen || collides(pos) {
			continue
		}
		out = append(out, placed{pos, w, lbl})
	}

	var b strings.Builder
	col := 0
	for _, p := range out {
		b.WriteString(strings.Repeat(" ", p.pos-col))
		b.WriteString(p.lbl)
		col = p.pos + p.w
	}
	return b.String()
}

// chartTickStep computes a nice tick interval targeting ~5 ticks.
func chartTickStep(maxVal float64) float64 {
	if maxVal <= 0 {
		return 1
	}
	rough := maxVal / 5
	exp := math.Floor(math.Log10(rough))
	base := math.Pow(10, exp)
	frac := rough / base

	switch {
	case frac < 1.5:
		return base
	case frac < 3.5:
		return 2 * base
	default:
		return 5 * base
	}
}
