package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog/log"

	"ayurveda_resorts/internal/adapters/media"
	"ayurveda_resorts/internal/adapters/observability"
	"ayurveda_resorts/internal/app"
	"ayurveda_resorts/internal/domain"
)

func (h *Handlers) mountAdmin(r chi.Router) {
	r.Route("/v1/admin", func(r chi.Router) {
		r.With(httprate.LimitByIP(10, time.Minute)).Post("/login", h.login)

		r.Group(func(r chi.Router) {
			r.Use(RequireAdmin(h.Auth))

			r.Post("/logout", h.logout)
			r.Get("/session", h.session)

			r.Get("/draft", h.getDraft)
			r.Delete("/draft", h.discardDraft)

			r.Post("/draft/hero", h.addHeroSlot)
			r.Put("/draft/hero/{idx}", h.setHero)
			r.Delete("/draft/hero/{idx}", h.removeHero)

			r.Post("/draft/resorts", h.createResort)
			r.Put("/draft/resorts/{id}", h.updateResort)
			r.Delete("/draft/resorts/{id}", h.deleteResort)
			r.Post("/draft/resorts/{id}/visibility", h.toggleVisibility)
			r.Put("/draft/resorts/{id}/categories/{cat}/title", h.setCategoryTitle)
			r.Post("/draft/resorts/{id}/categories/{cat}/items", h.addItem)
			r.Delete("/draft/resorts/{id}/categories/{cat}/items/{idx}", h.removeItem)
			r.Put("/draft/resorts/{id}/categories/{cat}/tiers/{tier}/{side}", h.setTierPrice)
			r.Post("/draft/resorts/{id}/features", h.addFeatures)
			r.Delete("/draft/resorts/{id}/features/{idx}", h.removeFeature)

			r.Post("/save", h.save)
			r.Post("/uploads", h.upload)
		})
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token   string      `json:"token"`
	Session app.Session `json:"session"`
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	if h.Auth == nil {
		writeProblem(w, http.StatusServiceUnavailable, "Service Unavailable", "admin sign-in is not configured")
		return
	}
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	token, sess, err := h.Auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			log.Warn().Str("remote", remoteIP(r)).Msg("admin sign-in rejected")
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token, Session: sess})
}

func (h *Handlers) logout(w http.ResponseWriter, r *http.Request) {
	sess, token := sessionFrom(r.Context())
	if err := h.Auth.SignOut(r.Context(), token); err != nil {
		writeError(w, err)
		return
	}
	h.Editors.Drop(sess.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) session(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFrom(r.Context())
	writeJSON(w, http.StatusOK, sess)
}

func (h *Handlers) editor(r *http.Request) *app.Editor {
	sess, _ := sessionFrom(r.Context())
	return h.Editors.Open(sess.ID, sess.ExpiresAt)
}

func (h *Handlers) getDraft(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.editor(r).Draft())
}

func (h *Handlers) discardDraft(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFrom(r.Context())
	h.Editors.Drop(sess.ID)
	writeJSON(w, http.StatusOK, h.Editors.Open(sess.ID, sess.ExpiresAt).Draft())
}

// ---- hero ----

type urlRequest struct {
	URL string `json:"url"`
}

func (h *Handlers) addHeroSlot(w http.ResponseWriter, r *http.Request) {
	idx := h.editor(r).AddHeroSlot()
	writeJSON(w, http.StatusCreated, map[string]int{"index": idx})
}

func (h *Handlers) setHero(w http.ResponseWriter, r *http.Request) {
	idx, err := intParam(r, "idx")
	if err != nil {
		writeError(w, err)
		return
	}
	var req urlRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	ed := h.editor(r)
	if err := ed.SetHero(idx, req.URL); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ed.Draft())
}

func (h *Handlers) removeHero(w http.ResponseWriter, r *http.Request) {
	idx, err := intParam(r, "idx")
	if err != nil {
		writeError(w, err)
		return
	}
	ed := h.editor(r)
	if err := ed.RemoveHero(idx); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ed.Draft())
}

// ---- resorts ----

func (h *Handlers) createResort(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusCreated, h.editor(r).CreateResort())
}

func (h *Handlers) updateResort(w http.ResponseWriter, r *http.Request) {
	var raw json.RawMessage
	if err := decodeJSON(r, &raw); err != nil {
		writeError(w, err)
		return
	}
	res, diags, err := app.DecodeResort(raw)
	if err != nil {
		ve := domain.NewValidationError()
		ve.Add("body", err.Error())
		writeError(w, ve)
		return
	}
	for _, d := range diags {
		log.Warn().Str("key", d.Key).Msg(d.Message)
	}
	res.ID = chi.URLParam(r, "id")
	ed := h.editor(r)
	if err := ed.UpdateResort(res); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ed.Draft())
}

func (h *Handlers) deleteResort(w http.ResponseWriter, r *http.Request) {
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	if err := h.editor(r).DeleteResort(chi.URLParam(r, "id"), confirmed); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) toggleVisibility(w http.ResponseWriter, r *http.Request) {
	visible, err := h.editor(r).ToggleVisibility(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"visible": visible})
}

type titleRequest struct {
	Title string `json:"title"`
}

func (h *Handlers) setCategoryTitle(w http.ResponseWriter, r *http.Request) {
	cat, err := intParam(r, "cat")
	if err != nil {
		writeError(w, err)
		return
	}
	var req titleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.editor(r).SetCategoryTitle(chi.URLParam(r, "id"), cat, req.Title); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type itemRequest struct {
	Name string `json:"name"`
}

func (h *Handlers) addItem(w http.ResponseWriter, r *http.Request) {
	cat, err := intParam(r, "cat")
	if err != nil {
		writeError(w, err)
		return
	}
	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.editor(r).AddPackageItem(chi.URLParam(r, "id"), cat, req.Name); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handlers) removeItem(w http.ResponseWriter, r *http.Request) {
	cat, err := intParam(r, "cat")
	if err != nil {
		writeError(w, err)
		return
	}
	idx, err := intParam(r, "idx")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.editor(r).RemovePackageItem(chi.URLParam(r, "id"), cat, idx); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type priceRequest struct {
	Price string `json:"price"`
}

func (h *Handlers) setTierPrice(w http.ResponseWriter, r *http.Request) {
	cat, err := intParam(r, "cat")
	if err != nil {
		writeError(w, err)
		return
	}
	tier, err := intParam(r, "tier")
	if err != nil {
		writeError(w, err)
		return
	}
	side := app.TierSide(chi.URLParam(r, "side"))
	if side != app.SideSingle && side != app.SideDouble {
		writeError(w, domain.ErrInvalidRoomType)
		return
	}
	var req priceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	p, err := h.editor(r).SetTierPrice(chi.URLParam(r, "id"), cat, tier, side, req.Price)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"price": p, "display": p.Display()})
}

type featuresRequest struct {
	Text string `json:"text"`
}

func (h *Handlers) addFeatures(w http.ResponseWriter, r *http.Request) {
	var req featuresRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	added, err := h.editor(r).AddFeaturesFromText(chi.URLParam(r, "id"), req.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

func (h *Handlers) removeFeature(w http.ResponseWriter, r *http.Request) {
	idx, err := intParam(r, "idx")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.editor(r).RemoveFeature(chi.URLParam(r, "id"), idx); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- save / upload ----

func (h *Handlers) save(w http.ResponseWriter, r *http.Request) {
	err := h.editor(r).SaveAll(r.Context())
	observability.ObserveSave(err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "تم حفظ التغييرات بنجاح"})
}

type uploadResponse struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// upload accepts one multipart "file", resizes it and stores it. With
// target=hero&index=N or target=resort&id=X the draft is updated too.
func (h *Handlers) upload(w http.ResponseWriter, r *http.Request) {
	if h.Objects == nil {
		observability.ObserveUpload("disabled")
		writeProblem(w, http.StatusServiceUnavailable, "Service Unavailable", "object storage is not configured")
		return
	}
	if h.UploadSlots != nil {
		if !h.UploadSlots.TryAcquire(1) {
			observability.ObserveUpload("busy")
			w.Header().Set("Retry-After", "2")
			writeProblem(w, http.StatusServiceUnavailable, "Service Unavailable", "too many uploads in progress")
			return
		}
		defer h.UploadSlots.Release(1)
	}

	maxBytes := h.UploadMaxBytes
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	file, hdr, err := r.FormFile("file")
	if err != nil {
		observability.ObserveUpload("rejected")
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeProblem(w, http.StatusRequestEntityTooLarge, "Payload Too Large", "")
			return
		}
		writeProblem(w, http.StatusBadRequest, "Bad Request", "multipart field \"file\" is required")
		return
	}
	defer file.Close()

	img, err := media.Prepare(file, hdr.Filename, h.UploadMaxEdge, time.Now())
	if err != nil {
		observability.ObserveUpload("rejected")
		if errors.Is(err, media.ErrUnsupportedImage) {
			writeProblem(w, http.StatusUnsupportedMediaType, "Unsupported Media Type", err.Error())
			return
		}
		writeError(w, err)
		return
	}

	url, err := h.Objects.Upload(r.Context(), h.Bucket, img.Name, img.ContentType, img.Data)
	if err != nil {
		if errors.Is(err, domain.ErrStoragePermission) {
			observability.ObserveUpload("denied")
			writeError(w, err)
			return
		}
		observability.ObserveUpload("error")
		log.Error().Err(err).Str("object", img.Name).Msg("image upload failed")
		writeProblem(w, http.StatusBadGateway, "Upload Failed", "فشل رفع الصورة")
		return
	}

	if err := h.attachUpload(r, url); err != nil {
		observability.ObserveUpload("error")
		writeError(w, err)
		return
	}
	observability.ObserveUpload("ok")
	writeJSON(w, http.StatusCreated, uploadResponse{URL: url, Width: img.Width, Height: img.Height})
}

func (h *Handlers) attachUpload(r *http.Request, url string) error {
	switch r.FormValue("target") {
	case "hero":
		idx, err := strconv.Atoi(r.FormValue("index"))
		if err != nil {
			return domain.ErrIndexOutOfRange
		}
		return h.editor(r).SetHero(idx, url)
	case "resort":
		return h.editor(r).SetResortImage(r.FormValue("id"), url)
	}
	return nil
}

func intParam(r *http.Request, name string) (int, error) {
	n, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		return 0, domain.ErrIndexOutOfRange
	}
	return n, nil
}
