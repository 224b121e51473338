package calendar_page

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nichecal/nichecal/internal/rest"
	"github.com/nichecal/nichecal/internal/utils"
	"github.com/nichecal/nichecal/pkg/calendar_date"
	"github.com/nichecal/nichecal/pkg/calendar_view"
	"github.com/nichecal/nichecal/pkg/niche"
	"github.com/nichecal/nichecal/pkg/notify"
	log "github.com/sirupsen/logrus"
)

type DatesReader interface {
	Get(ctx context.Context, niches []string) ([]calendar_date.Entry, error)
}

type NicheLister interface {
	ListNiches(ctx context.Context) ([]string, error)
}

type ToastDrainer interface {
	Drain() []notify.Notification
	DrainFor(key string) []notify.Notification
}

type PageRenderer interface {
	RenderPage(w io.Writer, page calendar_view.Page) error
}

type CalendarRenderer interface {
	RenderCalendar(w io.Writer, niches []string, entries []calendar_date.Entry, now time.Time) error
}

type Handler struct {
	dates       DatesReader
	niches      NicheLister
	toasts      ToastDrainer
	html        PageRenderer
	ics         CalendarRenderer
	locales     *calendar_view.Locales
	clock       utils.Clock
	loadingWait time.Duration
}

func NewHandler(
	dates DatesReader,
	niches NicheLister,
	toasts ToastDrainer,
	html PageRenderer,
	ics CalendarRenderer,
	locales *calendar_view.Locales,
	clock utils.Clock,
	loadingWait time.Duration,
) *Handler {
	return &Handler{
		dates:       dates,
		niches:      niches,
		toasts:      toasts,
		html:        html,
		ics:         ics,
		locales:     locales,
		clock:       clock,
		loadingWait: loadingWait,
	}
}

// load resolves the niches of the request and fetches their dates, waiting at
// most wait. isLoading is true when the fetch is still running afterwards.
func (h *Handler) load(r *http.Request, wait time.Duration) (niches []string, entries []calendar_date.Entry, isLoading bool, err error) {
	niches = niche.Resolve(niche.StateFromRequest(r))
	ctx := r.Context()
	if wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, wait)
		defer cancel()
	}
	entries, err = h.dates.Get(ctx, niches)
	if errors.Is(err, calendar_date.ErrStillLoading) {
		return niches, nil, true, nil
	}
	return niches, entries, false, err
}

// Page renders the personalized calendar as HTML.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	niches, entries, isLoading, err := h.load(r, h.loadingWait)
	state := calendar_view.SelectState(isLoading, err, entries)
	page := calendar_view.NewPage(state, niches, entries, h.locales.Match(r.Header.Get("Accept-Language")))

	status := http.StatusOK
	if state == calendar_view.StateError {
		if errors.Is(err, calendar_date.ErrNoNicheSelected) {
			status = http.StatusBadRequest
		} else {
			status = http.StatusBadGateway
			page.Toasts = h.toasts.DrainFor(niche.CacheKey(niches))
		}
	}
	log.Debugf("rendering calendar page for niches %v in state %s", niches, state)

	var buf bytes.Buffer
	if err := h.html.RenderPage(&buf, page); err != nil {
		log.Errorf("failed to render calendar page: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		log.Errorf("failed to write calendar page: %v", err)
	}
}

// GetDates godoc
// @Summary Get calendar dates for niches
// @Description Returns the personalized calendar for the selected niches
// @Tags Calendar
// @Produce json
// @Param niche query []string false "Selected niche, repeatable"
// @Param niches query string false "Comma separated selected niches"
// @Param wait query bool false "Set to false to get the loading state instead of waiting for a slow backend"
// @Success 200 {object} calendar_view.Page
// @Success 202 {object} calendar_view.Page "Still loading"
// @Failure 400 {object} rest.ErrorResponse "No niche selected"
// @Failure 502 {object} rest.ErrorResponse "Backend failure"
// @Router /api/calendar/dates [get]
func (h *Handler) GetDates(w http.ResponseWriter, r *http.Request) {
	var wait time.Duration
	if r.URL.Query().Get("wait") == "false" {
		wait = h.loadingWait
	}
	niches, entries, isLoading, err := h.load(r, wait)
	if err != nil {
		h.writeFetchError(w, err)
		return
	}

	state := calendar_view.SelectState(isLoading, nil, entries)
	page := calendar_view.NewPage(state, niches, entries, h.locales.Match(r.Header.Get("Accept-Language")))
	status := http.StatusOK
	if isLoading {
		status = http.StatusAccepted
	}
	rest.WriteJSON(w, status, page)
}

// GetCalendarFile godoc
// @Summary Download calendar dates as iCalendar
// @Tags Calendar
// @Produce text/calendar
// @Param niches query string true "Comma separated selected niches"
// @Success 200 {string} string "ICS file"
// @Failure 400 {object} rest.ErrorResponse "No niche selected"
// @Failure 502 {object} rest.ErrorResponse "Backend failure"
// @Router /api/calendar/dates.ics [get]
func (h *Handler) GetCalendarFile(w http.ResponseWriter, r *http.Request) {
	niches, entries, _, err := h.load(r, 0)
	if err != nil {
		h.writeFetchError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := h.ics.RenderCalendar(&buf, niches, entries, h.clock.Now()); err != nil {
		log.Errorf("failed to render calendar file: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=calendario_%s.ics", h.clock.Now().Format("20060102")))
	if _, err := buf.WriteTo(w); err != nil {
		log.Errorf("failed to write calendar file: %v", err)
	}
}

// ListNiches godoc
// @Summary List available niches
// @Tags Calendar
// @Produce json
// @Success 200 {array} string
// @Failure 502 {object} rest.ErrorResponse "Backend failure"
// @Router /api/niches [get]
func (h *Handler) ListNiches(w http.ResponseWriter, r *http.Request) {
	niches, err := h.niches.ListNiches(r.Context())
	if err != nil {
		h.writeFetchError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, niches)
}

// DrainNotifications hands pending toasts to the client once.
func (h *Handler) DrainNotifications(w http.ResponseWriter, r *http.Request) {
	rest.WriteJSON(w, http.StatusOK, h.toasts.Drain())
}

func (h *Handler) writeFetchError(w http.ResponseWriter, err error) {
	if errors.Is(err, calendar_date.ErrNoNicheSelected) {
		rest.WriteError(w, http.StatusBadRequest, "No niche selected", "Provide at least one niche with 'niche' or 'niches'")
		return
	}
	rest.WriteError(w, http.StatusBadGateway, calendar_view.ErrorMessage, err.Error())
}
