package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yourusername/tickerlens/internal/format"
	"github.com/yourusername/tickerlens/internal/model"
)

// Comparison is the generated narrative across a peer group.
type Comparison struct {
	Companies  []string  `json:"companies"`
	Intro      string    `json:"intro"`
	Points     []Insight `json:"points"`
	Disclaimer string    `json:"disclaimer"`
}

type candidate struct {
	name  string
	value float64
}

// Compare contrasts the best and worst company on ROE, revenue growth, P/E
// and debt-to-equity. Companies missing a figure sit out that metric.
func Compare(bundles []*model.CompanyBundle) (*Comparison, error) {
	if len(bundles) < 2 {
		return nil, ErrInsufficientData
	}

	names := make([]string, len(bundles))
	for i, b := range bundles {
		names[i] = b.DisplayName()
	}

	var points []Insight

	if best, worst, ok := extremes(bundles, func(b *model.CompanyBundle) *float64 {
		if r := b.LatestRatios(); r != nil {
			return r.ReturnOnEquityTTM
		}
		return nil
	}, true); ok {
		points = append(points, Insight{
			Title: "Profitability",
			Text: fmt.Sprintf("%s (%s) demonstrates superior return on equity compared to %s (%s), indicating more efficient use of shareholder capital.",
				best.name, format.Percent(best.value), worst.name, format.Percent(worst.value)),
		})
	}

	if best, worst, ok := extremes(bundles, func(b *model.CompanyBundle) *float64 {
		if g := b.LatestGrowth(); g != nil {
			return g.RevenueGrowth
		}
		return nil
	}, true); ok {
		points = append(points, Insight{
			Title: "Revenue Growth",
			Text: fmt.Sprintf("%s shows stronger revenue growth at %s compared to %s's %s, potentially indicating better market position or product demand.",
				best.name, format.Percent(best.value), worst.name, format.Percent(worst.value)),
		})
	}

	if best, worst, ok := extremes(bundles, func(b *model.CompanyBundle) *float64 {
		if r := b.LatestRatios(); r != nil && gt(r.PERatioTTM, 0) {
			return r.PERatioTTM
		}
		return nil
	}, false); ok {
		points = append(points, Insight{
			Title: "Valuation",
			Text: fmt.Sprintf("%s trades at a lower P/E ratio of %s compared to %s's %s, suggesting it may offer better value relative to current earnings.",
				best.name, format.Fixed(best.value), worst.name, format.Fixed(worst.value)),
		})
	}

	if best, worst, ok := extremes(bundles, func(b *model.CompanyBundle) *float64 {
		if r := b.LatestRatios(); r != nil {
			return r.DebtEquityRatioTTM
		}
		return nil
	}, false); ok {
		points = append(points, Insight{
			Title: "Financial Leverage",
			Text: fmt.Sprintf("%s maintains a lower debt-to-equity ratio of %s versus %s's %s, indicating less financial risk and potentially more flexibility.",
				best.name, format.Fixed(best.value), worst.name, format.Fixed(worst.value)),
		})
	}

	if len(points) < 2 {
		points = append(points, Insight{
			Title: "Industry Positioning",
			Text:  "These companies represent different approaches within their industry, with varying strengths in profitability, growth trajectory, and financial structure that investors should weigh against their investment objectives.",
		})
	}

	return &Comparison{
		Companies:  names,
		Intro:      fmt.Sprintf("This analysis compares %s across key financial metrics and performance indicators.", strings.Join(names, ", ")),
		Points:     points,
		Disclaimer: compareDisclaimer,
	}, nil
}

// extremes ranks the eligible companies and returns the first and last.
// descending puts the largest value first.
func extremes(bundles []*model.CompanyBundle, pick func(*model.CompanyBundle) *float64, descending bool) (candidate, candidate, bool) {
	var cs []candidate
	for _, b := range bundles {
		if v := pick(b); v != nil {
			cs = append(cs, candidate{name: b.DisplayName(), value: *v})
		}
	}
	if len(cs) < 2 {
		return candidate{}, candidate{}, false
	}
	sort.SliceStable(cs, func(i, j int) bool {
		if descending {
			return cs[i].value > cs[j].value
		}
		return cs[i].value < cs[j].value
	})
	return cs[0], cs[len(cs)-1], true
}

func (c *Comparison) Markdown() string {
	var sb strings.Builder
	sb.WriteString("### Comparative Analysis\n\n")
	sb.WriteString(c.Intro)
	sb.WriteString("\n\n")
	writeInsights(&sb, c.Points)
	sb.WriteString("\n*Note: " + c.Disclaimer + "*\n")
	return sb.String()
}
