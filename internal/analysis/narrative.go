// Package analysis derives ratios from a company bundle and turns them into
// rule-based narrative text for one company or a peer group.
package analysis

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yourusername/tickerlens/internal/format"
	"github.com/yourusername/tickerlens/internal/model"
)

// ErrInsufficientData means the bundle lacks a sub-resource the narrative needs.
var ErrInsufficientData = errors.New("insufficient data for analysis")

const (
	singleDisclaimer  = "This analysis is generated automatically and should not be considered financial advice. Always conduct your own research or consult qualified financial advisors before making investment decisions."
	compareDisclaimer = "This comparison is generated automatically and should not be considered financial advice. Always conduct your own research or consult qualified financial advisors before making investment decisions."
)

// Outlook is the overall verdict picked for the summary paragraph.
type Outlook int

const (
	OutlookMixed Outlook = iota
	OutlookStable
	OutlookGrowthProfit
	OutlookStrong
)

func (o Outlook) String() string {
	switch o {
	case OutlookStrong:
		return "strong"
	case OutlookGrowthProfit:
		return "growth_profit"
	case OutlookStable:
		return "stable"
	}
	return "mixed"
}

func (o Outlook) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

var outlookPhrases = map[Outlook]string{
	OutlookStrong:       "a strong financial profile with healthy growth, solid profitability, and a manageable debt level.",
	OutlookGrowthProfit: "good growth and profitability, though there are some concerns regarding its financial structure.",
	OutlookStable:       "a relatively stable financial position, but faces challenges in achieving consistent growth and profitability.",
	OutlookMixed:        "a mixed financial picture with both strengths and areas for improvement.",
}

// Insight is one bullet of a narrative. Generic filler bullets have no title.
type Insight struct {
	Title string `json:"title,omitempty"`
	Text  string `json:"text"`
}

// Narrative is the generated analysis for a single company.
type Narrative struct {
	Company    string    `json:"company"`
	Outlook    Outlook   `json:"outlook"`
	Summary    string    `json:"summary"`
	Insights   []Insight `json:"insights"`
	Disclaimer string    `json:"disclaimer"`
}

// Specific returns the insights produced by rules, excluding generic filler.
func (n *Narrative) Specific() []Insight {
	var out []Insight
	for _, in := range n.Insights {
		if in.Title != "" {
			out = append(out, in)
		}
	}
	return out
}

// Analyze walks the rule table over the latest figures of b.
func Analyze(b *model.CompanyBundle) (*Narrative, error) {
	if b == nil {
		return nil, ErrInsufficientData
	}
	profile := b.LatestProfile()
	income := b.LatestIncome()
	cash := b.LatestCashFlow()
	ratios := b.LatestRatios()
	growth := b.LatestGrowth()
	if profile == nil || income == nil || cash == nil || ratios == nil || growth == nil {
		return nil, ErrInsufficientData
	}

	name := b.DisplayName()
	roe := ratios.ReturnOnEquityTTM
	de := ratios.DebtEquityRatioTTM
	pe := ratios.PERatioTTM
	revGrowth := growth.RevenueGrowth
	niGrowth := growth.NetIncomeGrowth

	var insights []Insight
	add := func(title, text string, args ...any) {
		insights = append(insights, Insight{Title: title, Text: fmt.Sprintf(text, args...)})
	}

	switch {
	case gt(roe, 0.15):
		add("Strong Profitability",
			"%s demonstrates excellent profitability with a Return on Equity (ROE) of %s, indicating efficient use of shareholder equity.",
			name, format.PercentPtr(roe))
	case lt(roe, 0.05):
		add("Profitability Concerns",
			"%s's Return on Equity (ROE) of %s is relatively low, suggesting challenges in generating profits from shareholder investments.",
			name, format.PercentPtr(roe))
	}

	if gt(revGrowth, 0.10) {
		add("Solid Revenue Growth",
			"The company grew revenue by %s year over year, a strong pace for the %s industry.",
			format.PercentPtr(revGrowth), format.Text(profile.Industry))
	}

	if niGrowth != nil && revGrowth != nil && *niGrowth > *revGrowth && *niGrowth > 0 {
		add("Improving Efficiency",
			"Net income growth (%s) exceeds revenue growth (%s), indicating improving operational efficiency and cost management.",
			format.PercentPtr(niGrowth), format.PercentPtr(revGrowth))
	}

	switch {
	case gt(de, 2):
		add("High Leverage Risk",
			"The debt-to-equity ratio of %s is concerning and may indicate financial risk, particularly in a rising interest rate environment.",
			format.FixedPtr(de))
	case lt(de, 0.5):
		add("Strong Balance Sheet",
			"With a conservative debt-to-equity ratio of %s, the company maintains financial flexibility for future investments or to weather economic downturns.",
			format.FixedPtr(de))
	}

	fcf, ni := cash.FreeCashFlow, income.NetIncome
	switch {
	case fcf > ni && fcf > 0:
		add("Excellent Cash Generation",
			"Free cash flow (%s) exceeds reported net income (%s), suggesting high earnings quality.",
			format.Currency(fcf), format.Currency(ni))
	case fcf < 0 && ni > 0:
		add("Cash Flow Concerns",
			"Despite positive earnings, the company is generating negative free cash flow (%s), which may indicate challenges in converting profits to cash.",
			format.Currency(fcf))
	}

	switch {
	case gt(pe, 30):
		add("Premium Valuation",
			"With a P/E ratio of %s, %s trades at a premium valuation, suggesting high growth expectations from investors.",
			format.FixedPtr(pe), name)
	case gt(pe, 0) && lt(pe, 10):
		add("Potential Value Opportunity",
			"The company's P/E ratio of %s is relatively low, potentially representing a value opportunity if it can maintain or improve its financial performance.",
			format.FixedPtr(pe))
	}

	if len(insights) < 3 {
		insights = append(insights,
			Insight{Text: fmt.Sprintf("%s operates in the %s sector, specifically in the %s industry.",
				name, format.Text(profile.Sector), format.Text(profile.Industry))},
			Insight{Text: fmt.Sprintf("In the most recent fiscal year, the company reported revenue of %s and net income of %s.",
				format.Currency(income.Revenue), format.Currency(income.NetIncome))},
		)
	}

	growing := gt(revGrowth, 0.05) && gt(niGrowth, 0)
	profitable := gt(roe, 0.10)
	healthy := lt(de, 1.5) && gt(ratios.CurrentRatioTTM, 1)

	outlook := OutlookMixed
	switch {
	case growing && profitable && healthy:
		outlook = OutlookStrong
	case growing && profitable:
		outlook = OutlookGrowthProfit
	case healthy:
		outlook = OutlookStable
	}

	return &Narrative{
		Company: name,
		Outlook: outlook,
		Summary: fmt.Sprintf("%s presents %s Investors should consider these factors in the context of industry trends and broader economic conditions.",
			name, outlookPhrases[outlook]),
		Insights:   insights,
		Disclaimer: singleDisclaimer,
	}, nil
}

// Markdown renders the narrative for the HTML, PDF and MCP outputs.
func (n *Narrative) Markdown() string {
	var sb strings.Builder
	sb.WriteString("### Smart Analysis Summary\n\n")
	sb.WriteString(n.Summary)
	sb.WriteString("\n\n### Key Insights\n\n")
	writeInsights(&sb, n.Insights)
	sb.WriteString("\n*Note: " + n.Disclaimer + "*\n")
	return sb.String()
}

func writeInsights(sb *strings.Builder, insights []Insight) {
	for _, in := range insights {
		if in.Title != "" {
			fmt.Fprintf(sb, "- **%s:** %s\n", in.Title, in.Text)
			continue
		}
		fmt.Fprintf(sb, "- %s\n", in.Text)
	}
}

// gt and lt treat a missing operand as "rule does not fire".
func gt(v *float64, x float64) bool { return v != nil && *v > x }
func lt(v *float64, x float64) bool { return v != nil && *v < x }
