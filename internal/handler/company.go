package handler

import (
	"io"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/tickerlens/internal/analysis"
	"github.com/yourusername/tickerlens/internal/middleware"
	"github.com/yourusername/tickerlens/internal/model"
	"github.com/yourusername/tickerlens/internal/render"
	"github.com/yourusername/tickerlens/internal/service"
	"github.com/yourusername/tickerlens/internal/view"
)

type CompanyHandler struct {
	agg      *service.Aggregator
	sessions *view.SessionStore
	html     *render.HTML
	history  HistoryStore
}

func NewCompanyHandler(agg *service.Aggregator, sessions *view.SessionStore, html *render.HTML, history HistoryStore) *CompanyHandler {
	return &CompanyHandler{agg: agg, sessions: sessions, html: html, history: history}
}

type companyResponse struct {
	Bundle    *model.CompanyBundle `json:"bundle"`
	Page      *view.CompanyPage    `json:"page"`
	Narrative *analysis.Narrative  `json:"narrative,omitempty"`
}

// Index handles GET /
func (h *CompanyHandler) Index(c *gin.Context) {
	var recent []model.SearchRecord
	if uid := middleware.GetFirebaseUID(c); uid != "" && h.history != nil {
		var err error
		if recent, err = h.history.Recent(c.Request.Context(), uid, 10); err != nil {
			log.Warn().Err(err).Str("uid", uid).Msg("Failed to load recent searches")
		}
	}
	renderHTML(c, http.StatusOK, func(w io.Writer) error { return h.html.Index(w, recent) })
}

// Lookup handles GET /company?ticker=AAPL from the search form.
func (h *CompanyHandler) Lookup(c *gin.Context) {
	symbol := service.NormalizeTicker(c.Query("ticker"))
	if symbol == "" {
		h.fail(c, "", service.ErrTickerRequired)
		return
	}
	c.Redirect(http.StatusSeeOther, "/company/"+url.PathEscape(symbol))
}

// Show handles GET /company/:ticker
//
// Renders HTML by default, JSON when the client asks for it and a PDF report
// with ?format=pdf.
func (h *CompanyHandler) Show(c *gin.Context) {
	ticker := c.Param("ticker")

	b, err := h.agg.Fetch(c.Request.Context(), ticker)
	if err != nil {
		recordSearch(c, h.history, model.SearchKindCompany, []string{service.NormalizeTicker(ticker)}, []string{err.Error()})
		h.fail(c, ticker, err)
		return
	}
	recordSearch(c, h.history, model.SearchKindCompany, []string{b.Symbol}, nil)

	page := view.BuildCompanyPage(viewSession(c, h.sessions), b)

	switch {
	case c.Query("format") == "pdf":
		sendPDF(c, b.Symbol+".pdf", func() ([]byte, error) { return render.CompanyPDF(page) })
	case wantsJSON(c):
		c.JSON(http.StatusOK, companyResponse{Bundle: b, Page: page, Narrative: page.Narrative})
	default:
		renderHTML(c, http.StatusOK, func(w io.Writer) error { return h.html.Company(w, page) })
	}
}

// API handles GET /api/company/:ticker
func (h *CompanyHandler) API(c *gin.Context) {
	ticker := c.Param("ticker")

	b, err := h.agg.Fetch(c.Request.Context(), ticker)
	if err != nil {
		status := statusFor(err)
		logFailure(err, status, ticker)
		recordSearch(c, h.history, model.SearchKindCompany, []string{service.NormalizeTicker(ticker)}, []string{err.Error()})
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	recordSearch(c, h.history, model.SearchKindCompany, []string{b.Symbol}, nil)

	page := view.BuildCompanyPage(viewSession(c, h.sessions), b)
	c.JSON(http.StatusOK, companyResponse{Bundle: b, Page: page, Narrative: page.Narrative})
}

func (h *CompanyHandler) fail(c *gin.Context, ticker string, err error) {
	status := statusFor(err)
	logFailure(err, status, ticker)

	if wantsJSON(c) {
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	msg := "An error occurred: " + err.Error() + ". Check API key or ticker symbol."
	renderHTML(c, status, func(w io.Writer) error { return h.html.Error(w, ticker, "", msg) })
}
