package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/tickerlens/internal/analysis"
	"github.com/yourusername/tickerlens/internal/model"
	"github.com/yourusername/tickerlens/internal/render"
	"github.com/yourusername/tickerlens/internal/service"
	"github.com/yourusername/tickerlens/internal/view"
)

type CompareHandler struct {
	agg      *service.Aggregator
	sessions *view.SessionStore
	html     *render.HTML
	history  HistoryStore
}

func NewCompareHandler(agg *service.Aggregator, sessions *view.SessionStore, html *render.HTML, history HistoryStore) *CompareHandler {
	return &CompareHandler{agg: agg, sessions: sessions, html: html, history: history}
}

type compareResponse struct {
	Bundles    []*model.CompanyBundle `json:"bundles"`
	Errors     []string               `json:"errors"`
	Page       *view.ComparisonPage   `json:"page"`
	Comparison *analysis.Comparison   `json:"comparison,omitempty"`
}

// Show handles GET /compare?tickers=AAPL,MSFT
//
// tickers may be repeated or comma separated. Renders HTML by default, JSON
// when asked and a PDF report with ?format=pdf.
func (h *CompareHandler) Show(c *gin.Context) {
	raw := c.QueryArray("tickers")
	tickers := service.SplitTickers(raw...)

	res, err := h.agg.Compare(c.Request.Context(), tickers)
	if err != nil {
		recordSearch(c, h.history, model.SearchKindCompare, service.CleanTickers(tickers), failureList(err))
		h.fail(c, strings.Join(raw, ","), err)
		return
	}
	recordSearch(c, h.history, model.SearchKindCompare, symbolsOf(res.Bundles), res.Errors)

	page := view.BuildComparisonPage(viewSession(c, h.sessions), res.Bundles, res.Errors)

	switch {
	case c.Query("format") == "pdf":
		sendPDF(c, "compare-"+strings.Join(page.Symbols, "-")+".pdf", func() ([]byte, error) { return render.ComparisonPDF(page) })
	case wantsJSON(c):
		c.JSON(http.StatusOK, newCompareResponse(res, page))
	default:
		renderHTML(c, http.StatusOK, func(w io.Writer) error { return h.html.Comparison(w, page) })
	}
}

// API handles POST /api/compare
func (h *CompareHandler) API(c *gin.Context) {
	var req struct {
		Tickers []string `json:"tickers" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tickers is required"})
		return
	}
	tickers := service.SplitTickers(req.Tickers...)

	res, err := h.agg.Compare(c.Request.Context(), tickers)
	if err != nil {
		status := statusFor(err)
		logFailure(err, status, strings.Join(req.Tickers, ","))
		recordSearch(c, h.history, model.SearchKindCompare, service.CleanTickers(tickers), failureList(err))

		body := gin.H{"error": err.Error()}
		var ce *service.CompareError
		if errors.As(err, &ce) {
			body["error"] = service.ErrNotEnoughCompanies.Error()
			body["errors"] = ce.Errors
		}
		c.JSON(status, body)
		return
	}
	recordSearch(c, h.history, model.SearchKindCompare, symbolsOf(res.Bundles), res.Errors)

	page := view.BuildComparisonPage(viewSession(c, h.sessions), res.Bundles, res.Errors)
	c.JSON(http.StatusOK, newCompareResponse(res, page))
}

func newCompareResponse(res *service.CompareResult, page *view.ComparisonPage) compareResponse {
	errs := res.Errors
	if errs == nil {
		errs = []string{}
	}
	return compareResponse{Bundles: res.Bundles, Errors: errs, Page: page, Comparison: page.Comparison}
}

func (h *CompareHandler) fail(c *gin.Context, query string, err error) {
	status := statusFor(err)
	logFailure(err, status, query)

	if wantsJSON(c) {
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	renderHTML(c, status, func(w io.Writer) error { return h.html.Error(w, "", query, compareBanner(err)) })
}

// compareBanner shows validation failures as plain sentences and prefixes
// anything unexpected.
func compareBanner(err error) string {
	var ce *service.CompareError
	switch {
	case errors.Is(err, service.ErrTooFewTickers):
		return "Please enter at least two valid stock tickers to compare."
	case errors.As(err, &ce):
		return "Not enough valid companies to compare. " + strings.Join(ce.Errors, ". ")
	case errors.Is(err, service.ErrTooManyTickers):
		return "Too many tickers to compare" + strings.TrimPrefix(err.Error(), service.ErrTooManyTickers.Error()) + "."
	}
	return "An error occurred during comparison: " + err.Error()
}

func failureList(err error) []string {
	var ce *service.CompareError
	if errors.As(err, &ce) {
		return ce.Errors
	}
	return []string{err.Error()}
}

func symbolsOf(bundles []*model.CompanyBundle) []string {
	out := make([]string, len(bundles))
	for i, b := range bundles {
		out[i] = b.Symbol
	}
	return out
}
