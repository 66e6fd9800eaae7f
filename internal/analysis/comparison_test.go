package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/tickerlens/internal/model"
)

func TestCompare_RanksEachMetric(t *testing.T) {
	a := bundleFor("AAA", "Alpha", fixture{roe: f(0.30), revGrowth: f(0.05), pe: f(25), de: f(1.5)})
	b := bundleFor("BBB", "Beta", fixture{roe: f(0.10), revGrowth: f(0.20), pe: f(12), de: f(0.2)})
	c := bundleFor("CCC", "Gamma", fixture{roe: f(0.20), revGrowth: f(0.10), pe: f(-4), de: f(0.8)})

	cmp, err := Compare([]*model.CompanyBundle{a, b, c})
	require.NoError(t, err)

	assert.Equal(t, []string{"Alpha", "Beta", "Gamma"}, cmp.Companies)
	assert.Equal(t, "This analysis compares Alpha, Beta, Gamma across key financial metrics and performance indicators.", cmp.Intro)
	require.Len(t, cmp.Points, 4)

	assert.Equal(t, "Profitability", cmp.Points[0].Title)
	assert.Contains(t, cmp.Points[0].Text, "Alpha (30.00%)")
	assert.Contains(t, cmp.Points[0].Text, "Beta (10.00%)")

	assert.Equal(t, "Revenue Growth", cmp.Points[1].Title)
	assert.Contains(t, cmp.Points[1].Text, "Beta shows stronger revenue growth at 20.00% compared to Alpha's 5.00%")

	// Gamma's negative P/E is excluded.
	assert.Equal(t, "Valuation", cmp.Points[2].Title)
	assert.Contains(t, cmp.Points[2].Text, "Beta trades at a lower P/E ratio of 12.00 compared to Alpha's 25.00")

	assert.Equal(t, "Financial Leverage", cmp.Points[3].Title)
	assert.Contains(t, cmp.Points[3].Text, "Beta maintains a lower debt-to-equity ratio of 0.20 versus Alpha's 1.50")
}

func TestCompare_FallsBackToGenericPoint(t *testing.T) {
	a := bundleFor("AAA", "Alpha", fixture{roe: f(0.3)})
	b := bundleFor("BBB", "Beta", fixture{})
	b.KeyRatios = nil

	cmp, err := Compare([]*model.CompanyBundle{a, b})
	require.NoError(t, err)

	require.Len(t, cmp.Points, 1)
	assert.Equal(t, "Industry Positioning", cmp.Points[0].Title)
}

func TestCompare_OneSpecificPointGetsFiller(t *testing.T) {
	a := bundleFor("AAA", "Alpha", fixture{roe: f(0.3)})
	b := bundleFor("BBB", "Beta", fixture{roe: f(0.1)})

	cmp, err := Compare([]*model.CompanyBundle{a, b})
	require.NoError(t, err)
	assert.Equal(t, []string{"Profitability", "Industry Positioning"}, titles(cmp.Points))
}

func TestCompare_NeedsTwoCompanies(t *testing.T) {
	_, err := Compare([]*model.CompanyBundle{bundleFor("A", "A", fixture{})})
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestComparison_Markdown(t *testing.T) {
	a := bundleFor("AAA", "Alpha", fixture{roe: f(0.3), de: f(1)})
	b := bundleFor("BBB", "Beta", fixture{roe: f(0.1), de: f(2)})

	cmp, err := Compare([]*model.CompanyBundle{a, b})
	require.NoError(t, err)

	md := cmp.Markdown()
	assert.Contains(t, md, "### Comparative Analysis")
	assert.Contains(t, md, "- **Financial Leverage:**")
	assert.Contains(t, md, "*Note: This comparison")
}
