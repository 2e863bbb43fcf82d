package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"ayurveda_resorts/internal/app"
	"ayurveda_resorts/internal/domain"
)

// Pinger is a dependency checked by /readyz.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handlers struct {
	Catalog  *app.CatalogService
	Bookings *app.BookingService
	Auth     *app.AuthService
	Editors  *app.EditorRegistry
	Carousel app.Carousel

	Objects        domain.ObjectStore
	Bucket         string
	UploadMaxEdge  int
	UploadMaxBytes int64
	UploadSlots    *semaphore.Weighted

	ContactPhoneDisplay string
	BookingRatePerMin   int
	Deps                map[string]Pinger
}

type problem struct {
	Type   string              `json:"type"`
	Title  string              `json:"title"`
	Status int                 `json:"status"`
	Detail string              `json:"detail,omitempty"`
	Errors map[string][]string `json:"errors,omitempty"`
	Guide  string              `json:"guide,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	perMin := h.BookingRatePerMin
	if perMin <= 0 {
		perMin = 10
	}

	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/hero/stream", h.heroStream)

	s.mux.Group(func(r chi.Router) {
		r.Use(Timeout(requestTimeout))

		r.Get("/readyz", h.ready)
		r.Get("/", h.index)
		r.Get("/v1/catalog", h.getCatalog)
		r.Get("/v1/info", h.getInfo)
		r.Get("/v1/resorts/{id}", h.getResort)

		r.Group(func(r chi.Router) {
			r.Use(httprate.LimitByIP(perMin*6, time.Minute))
			r.Post("/v1/resorts/{id}/quote", h.quote)
		})
		r.Group(func(r chi.Router) {
			r.Use(httprate.LimitByIP(perMin, time.Minute))
			r.Post("/v1/resorts/{id}/bookings", h.book)
		})

		h.mountAdmin(r)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	writeProblemBody(w, problem{Title: title, Status: status, Detail: detail})
}

func writeProblemBody(w http.ResponseWriter, p problem) {
	if p.Type == "" {
		p.Type = "about:blank"
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps domain errors onto problem responses.
func writeError(w http.ResponseWriter, err error) {
	if ve := domain.AsValidationError(err); ve != nil {
		writeProblemBody(w, problem{Title: "Validation Failed", Status: http.StatusUnprocessableEntity, Errors: ve.Fields()})
		return
	}
	if se := app.AsSaveError(err); se != nil {
		log.Error().Err(err).Msg("content save failed")
		writeProblemBody(w, problem{
			Title:  "Save Failed",
			Status: http.StatusBadGateway,
			Detail: se.Error(),
			Guide:  se.Guide(),
		})
		return
	}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, domain.ErrUnknownPlan),
		errors.Is(err, domain.ErrUnknownDuration),
		errors.Is(err, domain.ErrInvalidRoomType),
		errors.Is(err, domain.ErrNoPlanSelected),
		errors.Is(err, domain.ErrIndexOutOfRange),
		errors.Is(err, domain.ErrDuplicateItemName),
		errors.Is(err, domain.ErrInvalidPrice):
		writeProblem(w, http.StatusBadRequest, "Bad Request", err.Error())
	case errors.Is(err, domain.ErrNotBookable),
		errors.Is(err, domain.ErrAlreadySubmitted),
		errors.Is(err, domain.ErrLastHeroSlot):
		writeProblem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, domain.ErrConfirmationRequired):
		writeProblem(w, http.StatusPreconditionRequired, "Confirmation Required", "repeat the request with confirm=true")
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", "البريد الإلكتروني أو كلمة المرور غير صحيحة")
	case errors.Is(err, domain.ErrUnauthorized):
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", "session expired or signed out")
	case errors.Is(err, domain.ErrStoragePermission):
		writeProblemBody(w, problem{
			Title:  "Storage Permission Denied",
			Status: http.StatusForbidden,
			Detail: "the object store refused the upload",
			Guide:  app.RemediationGuide,
		})
	default:
		log.Error().Err(err).Msg("unhandled error")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeCached serves v with a weak ETag and answers If-None-Match with 304.
func writeCached(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Language", "ar")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write body")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to write JSON body")
	}
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		ve := domain.NewValidationError()
		ve.Add("body", "must be valid JSON: "+err.Error())
		return ve
	}
	return nil
}

// ---- public ----

type catalogResponse struct {
	Hero            []string        `json:"hero"`
	Resorts         []domain.Resort `json:"resorts"`
	PriceDisclaimer string          `json:"priceDisclaimer"`
	ContactPhone    string          `json:"contactPhone"`
}

type resortResponse struct {
	domain.Resort
	DisplayStars    int    `json:"displayStars"`
	Summary         string `json:"summary"`
	Bookable        bool   `json:"bookable"`
	PriceDisclaimer string `json:"priceDisclaimer"`
}

func (h *Handlers) getCatalog(w http.ResponseWriter, r *http.Request) {
	writeCached(w, r, catalogResponse{
		Hero:            h.Catalog.Hero(),
		Resorts:         h.Catalog.VisibleResorts(),
		PriceDisclaimer: app.PriceDisclaimer,
		ContactPhone:    h.ContactPhoneDisplay,
	})
}

func (h *Handlers) getResort(w http.ResponseWriter, r *http.Request) {
	res, err := h.Catalog.Resort(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeCached(w, r, resortResponse{
		Resort:          res,
		DisplayStars:    res.DisplayStars(),
		Summary:         res.Summary(),
		Bookable:        res.Bookable(),
		PriceDisclaimer: app.PriceDisclaimer,
	})
}

func (h *Handlers) getInfo(w http.ResponseWriter, r *http.Request) {
	writeCached(w, r, app.Info())
}

// configurator replays a selection onto a fresh configurator for the resort.
func (h *Handlers) configurator(r *http.Request, sel app.Selection) (*app.Configurator, error) {
	res, err := h.Catalog.Resort(chi.URLParam(r, "id"))
	if err != nil {
		return nil, err
	}
	cfg, err := app.NewConfigurator(res)
	if err != nil {
		return nil, err
	}
	if err := cfg.Apply(sel); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (h *Handlers) quote(w http.ResponseWriter, r *http.Request) {
	var sel app.Selection
	if err := decodeJSON(r, &sel); err != nil {
		writeError(w, err)
		return
	}
	cfg, err := h.configurator(r, sel)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg.Quote())
}

type bookingRequest struct {
	app.Selection
	Contact domain.Contact `json:"contact"`
}

type bookingResponse struct {
	State       app.ConfiguratorState `json:"state"`
	WhatsAppURL string                `json:"whatsappUrl"`
	Quote       app.Quote             `json:"quote"`
}

func (h *Handlers) book(w http.ResponseWriter, r *http.Request) {
	var req bookingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	cfg, err := h.configurator(r, req.Selection)
	if err != nil {
		writeError(w, err)
		return
	}
	conf, err := h.Bookings.Submit(r.Context(), cfg, req.Contact)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, bookingResponse{State: conf.State, WhatsAppURL: conf.WhatsAppURL, Quote: cfg.Quote()})
}

type slideEvent struct {
	Index int    `json:"index"`
	URL   string `json:"url"`
	Total int    `json:"total"`
}

// heroStream pushes the current slide as server-sent events until the
// client goes away.
func (h *Handlers) heroStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeProblem(w, http.StatusInternalServerError, "Streaming Unsupported", "")
		return
	}
	hero := h.Catalog.Hero()
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	for i := range h.Carousel.Start(r.Context(), len(hero)) {
		b, _ := json.Marshal(slideEvent{Index: i, URL: hero[i], Total: len(hero)})
		if _, err := fmt.Fprintf(w, "event: slide\ndata: %s\n\n", b); err != nil {
			return
		}
		flusher.Flush()
	}
}

func (h *Handlers) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	status := http.StatusOK
	out := map[string]string{}
	for name, p := range h.Deps {
		out[name] = "ok"
		if err := p.Ping(ctx); err != nil {
			log.Error().Err(err).Str("dep", name).Msg("readiness check failed")
			out[name] = "error"
			status = http.StatusServiceUnavailable
		}
	}
	out["status"] = "ok"
	if status != http.StatusOK {
		out["status"] = "degraded"
	}
	writeJSON(w, status, out)
}
