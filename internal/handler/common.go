package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/tickerlens/internal/middleware"
	"github.com/yourusername/tickerlens/internal/model"
	"github.com/yourusername/tickerlens/internal/service"
	"github.com/yourusername/tickerlens/internal/view"
)

const (
	sessionCookie = "tickerlens_session"
	sessionMaxAge = 24 * 60 * 60
)

// HistoryStore persists searches. A nil store turns history off.
type HistoryStore interface {
	Record(ctx context.Context, s *model.SearchRecord) error
	Recent(ctx context.Context, userID string, limit int) ([]model.SearchRecord, error)
	DeleteForUser(ctx context.Context, userID string) (int64, error)
}

// statusFor maps aggregation errors onto HTTP statuses.
func statusFor(err error) int {
	var apiErr *service.APIError
	switch {
	case errors.Is(err, service.ErrTickerRequired),
		errors.Is(err, service.ErrTooFewTickers),
		errors.Is(err, service.ErrTooManyTickers):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNoData):
		return http.StatusNotFound
	case errors.Is(err, service.ErrNotEnoughCompanies):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &apiErr):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func logFailure(err error, status int, ticker string) {
	event := log.Warn()
	if status >= http.StatusInternalServerError {
		event = log.Error()
	}
	event.Err(err).Str("ticker", ticker).Int("status", status).Msg("Lookup failed")
}

// viewSession returns the caller's render session, issuing a cookie when the
// store hands out a new one.
func viewSession(c *gin.Context, store *view.SessionStore) *view.Session {
	id, _ := c.Cookie(sessionCookie)
	s := store.Get(id)
	if s.ID != id {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(sessionCookie, s.ID, sessionMaxAge, "/", "", false, true)
	}
	return s
}

// renderHTML buffers the page so a template error can still become a 500.
func renderHTML(c *gin.Context, status int, render func(w io.Writer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Failed to render page")
		c.String(http.StatusInternalServerError, "Internal Server Error")
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

func sendPDF(c *gin.Context, filename string, build func() ([]byte, error)) {
	out, err := build()
	if err != nil {
		log.Error().Err(err).Msg("Failed to build PDF")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build PDF"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", out)
}

func wantsJSON(c *gin.Context) bool {
	return c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON
}

// recordSearch stores the search when history is enabled. It never fails the
// request; the write gets its own deadline so a slow database cannot hold it.
func recordSearch(c *gin.Context, store HistoryStore, kind string, tickers []string, errs []string) {
	if store == nil {
		return
	}
	rec := &model.SearchRecord{
		UserID:    middleware.GetFirebaseUID(c),
		Kind:      kind,
		Tickers:   tickers,
		Succeeded: len(errs) == 0,
	}
	if len(errs) > 0 {
		rec.Errors, _ = json.Marshal(errs)
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), 3*time.Second)
	defer cancel()
	if err := store.Record(ctx, rec); err != nil {
		log.Warn().Err(err).Str("kind", kind).Msg("Failed to record search")
	}
}
