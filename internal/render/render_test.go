package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/yourusername/tickerlens/internal/model"
	"github.com/yourusername/tickerlens/internal/view"
)

func f(v float64) *float64 { return &v }

func testBundle(symbol, name string) *model.CompanyBundle {
	b := &model.CompanyBundle{
		Symbol: symbol,
		Profile: []model.Profile{{
			Symbol: symbol, CompanyName: name, Price: 190, Changes: 1.5, MktCap: 3e12,
			Sector: "Technology", Industry: "Software", Website: "https://example.com",
			Description: "Makes things <b>people</b> use.",
		}},
		IncomeStatement: []model.IncomeStatement{
			{Date: "2022-12-31", Revenue: 200e9, GrossProfit: 120e9, NetIncome: 60e9},
			{Date: "2023-12-31", Revenue: 220e9, GrossProfit: 130e9, NetIncome: 70e9},
			{Date: "2021-12-31", Revenue: 180e9, GrossProfit: 100e9, NetIncome: 50e9},
			{Date: "2020-12-31"},
		},
		BalanceSheet: []model.BalanceSheet{{Date: "2023-12-31", TotalAssets: 400e9, TotalStockholdersEquity: 200e9}},
		CashFlow:     []model.CashFlow{{Date: "2023-12-31", FreeCashFlow: 80e9}},
		KeyRatios:    []model.KeyRatios{{ReturnOnEquityTTM: f(0.35), PERatioTTM: f(28), DebtEquityRatioTTM: f(0.4)}},
		GrowthMetrics: []model.GrowthMetrics{{
			Date: "2023-12-31", RevenueGrowth: f(0.1), NetIncomeGrowth: f(-0.05),
		}},
	}
	b.Normalize(5)
	return b
}

func renderCompany(t *testing.T, b *model.CompanyBundle) (*view.CompanyPage, *goquery.Document) {
	t.Helper()
	h, err := NewHTML()
	require.NoError(t, err)

	page := view.BuildCompanyPage(view.NewSession(), b)
	var buf bytes.Buffer
	require.NoError(t, h.Company(&buf, page))

	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	return page, doc
}

// ── HTML ───────────────────────────────────────────────

func TestHTML_CompanyColumnsStrictlyDecreasing(t *testing.T) {
	_, doc := renderCompany(t, testBundle("MSFT", "Microsoft"))

	var headers []string
	doc.Find("#income table thead th").Each(func(i int, s *goquery.Selection) {
		if i > 0 {
			headers = append(headers, strings.TrimSpace(s.Text()))
		}
	})
	require.Len(t, headers, 4)
	for i := 1; i < len(headers); i++ {
		assert.True(t, model.DateAfter(headers[i-1], headers[i]), "%s should come after %s", headers[i-1], headers[i])
	}
}

func TestHTML_CompanyPage(t *testing.T) {
	_, doc := renderCompany(t, testBundle("MSFT", "Microsoft"))

	assert.Equal(t, "Microsoft (MSFT)", strings.TrimSpace(doc.Find("#profile h1").Text()))
	assert.Contains(t, doc.Find("#profile").Text(), "<b>people</b>", "descriptions are escaped")
	assert.Equal(t, 3, doc.Find("canvas").Length())
	assert.Equal(t, 0, doc.Find(".error-banner").Length())

	assert.Equal(t, 1, doc.Find("#narrative h3").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.Text() == "Key Insights"
	}).Length())

	html, err := doc.Html()
	require.NoError(t, err)
	assert.NotContains(t, html, "NaN")
	assert.Contains(t, html, "N/A", "the 2020 row has no revenue so its margins are unavailable")

	script := doc.Find("script").Last().Text()
	assert.Contains(t, script, `"slot":"income"`)
	assert.Contains(t, script, ".destroy()")
}

func TestHTML_NegativeGrowthClass(t *testing.T) {
	_, doc := renderCompany(t, testBundle("MSFT", "Microsoft"))

	neg := doc.Find("#growth td.negative")
	require.Equal(t, 1, neg.Length())
	assert.Equal(t, "-5.00%", neg.Text())
	assert.Equal(t, 1, doc.Find("#growth td.positive").Length())
}

func TestHTML_Placeholders(t *testing.T) {
	b := testBundle("MSFT", "Microsoft")
	b.CashFlow = nil
	b.KeyRatios = nil

	_, doc := renderCompany(t, b)

	assert.Equal(t, "No cash flow data available", strings.TrimSpace(doc.Find("#cashflow .placeholder").Text()))
	assert.Equal(t, 0, doc.Find("#cashflow canvas").Length())
	assert.Equal(t, "Insufficient data for analysis", strings.TrimSpace(doc.Find("#narrative .placeholder").Text()))
}

func TestHTML_ReleasedChartsAreNotDrawn(t *testing.T) {
	h, err := NewHTML()
	require.NoError(t, err)

	s := view.NewSession()
	stale := view.BuildCompanyPage(s, testBundle("MSFT", "Microsoft"))
	view.BuildCompanyPage(s, testBundle("AAPL", "Apple"))

	var buf bytes.Buffer
	require.NoError(t, h.Company(&buf, stale))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)

	assert.Equal(t, 0, doc.Find("canvas").Length())
	assert.NotContains(t, doc.Find("script").Text(), "new Chart(")
}

func TestHTML_Comparison(t *testing.T) {
	h, err := NewHTML()
	require.NoError(t, err)

	bundles := []*model.CompanyBundle{testBundle("MSFT", "Microsoft"), testBundle("AAPL", "Apple")}
	page := view.BuildComparisonPage(view.NewSession(), bundles, []string{"Error fetching data for ZZZZ: no data found"})

	var buf bytes.Buffer
	require.NoError(t, h.Comparison(&buf, page))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)

	assert.Equal(t, "Error fetching data for ZZZZ: no data found", strings.TrimSpace(doc.Find(".warning").Text()))

	var cols []string
	doc.Find("#profile table thead th").Each(func(_ int, s *goquery.Selection) {
		cols = append(cols, s.Text())
	})
	assert.Equal(t, []string{"Metric", "Microsoft (MSFT)", "Apple (AAPL)"}, cols)
	assert.Equal(t, 3, doc.Find("#ratios tr.section").Length())
	assert.Contains(t, doc.Find("#narrative").Text(), "Comparative Analysis")
}

func TestHTML_ErrorBanner(t *testing.T) {
	h, err := NewHTML()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, h.Error(&buf, "ZZZZ", "", "An error occurred: no data found. Check API key or ticker symbol."))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)

	banner := doc.Find(".error-banner")
	require.Equal(t, 1, banner.Length())
	assert.Contains(t, banner.Text(), "Check API key or ticker symbol.")
	val, _ := doc.Find(`input[name="ticker"]`).Attr("value")
	assert.Equal(t, "ZZZZ", val)
	assert.Equal(t, 0, doc.Find("section#income").Length())
}

// ── PDF ────────────────────────────────────────────────

func TestCompanyPDF(t *testing.T) {
	page := view.BuildCompanyPage(view.NewSession(), testBundle("MSFT", "Microsoft"))

	out, err := CompanyPDF(page)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Greater(t, len(out), 1000)
}

func TestComparisonPDF(t *testing.T) {
	bundles := []*model.CompanyBundle{testBundle("MSFT", "Microsoft"), testBundle("AAPL", "Apple")}
	bundles[1].GrowthMetrics = nil
	page := view.BuildComparisonPage(view.NewSession(), bundles, nil)

	out, err := ComparisonPDF(page)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

// ── Markdown ───────────────────────────────────────────

// markdownDoc parses generated markdown the way a GFM client would.
func markdownDoc(t *testing.T, src string) *goquery.Document {
	t.Helper()
	var buf bytes.Buffer
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	require.NoError(t, md.Convert([]byte(src), &buf))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	return doc
}

func TestCompanyMarkdown(t *testing.T) {
	page := view.BuildCompanyPage(view.NewSession(), testBundle("MSFT", "Microsoft"))
	src := CompanyMarkdown(page)

	assert.True(t, strings.HasPrefix(src, "# Microsoft (MSFT)\n"))
	assert.Contains(t, src, "### Smart Analysis Summary")

	doc := markdownDoc(t, src)
	first := doc.Find("table").First()
	var headers []string
	first.Find("thead th").Each(func(_ int, s *goquery.Selection) { headers = append(headers, s.Text()) })
	assert.Equal(t, []string{"Fiscal Period", "2023-12-31", "2022-12-31", "2021-12-31", "2020-12-31"}, headers)

	ratios := doc.Find("h3").FilterFunction(func(_ int, s *goquery.Selection) bool { return s.Text() == "Profitability" })
	require.Equal(t, 1, ratios.Length())
	assert.Equal(t, 2, ratios.Next().Find("thead th").Length(), "single-value tables get a Value column")
}

func TestComparisonMarkdown(t *testing.T) {
	bundles := []*model.CompanyBundle{testBundle("MSFT", "Microsoft"), testBundle("AAPL", "Apple")}
	for _, b := range bundles {
		b.CashFlow = nil
	}
	page := view.BuildComparisonPage(view.NewSession(), bundles, []string{"Error fetching data for X: boom"})
	src := ComparisonMarkdown(page)

	assert.Contains(t, src, "> Error fetching data for X: boom")
	assert.Contains(t, src, "_No cash flow data available for comparison_")
	assert.Contains(t, src, "### Comparative Analysis")

	doc := markdownDoc(t, src)
	assert.Equal(t, 3, doc.Find("table").First().Find("thead th").Length())
}

func TestWriteTable_EscapesPipes(t *testing.T) {
	var sb strings.Builder
	writeTable(&sb, view.Table{
		LabelHeader: "Metric",
		Columns:     []string{"A|B"},
		Rows:        []view.Row{{Label: "x|y", Cells: []view.Cell{{Text: "1"}}}},
	})
	assert.Contains(t, sb.String(), `| Metric | A\|B |`)
	assert.Contains(t, sb.String(), `| x\|y | 1 |`)
}
