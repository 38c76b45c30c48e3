package httptransport

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pst-draft-bot/internal/session"
)

// RosterHandlers manages the captain and player pools. All routes are
// admin only; the session enforces it, these handlers just plumb.
type RosterHandlers struct {
	session  *session.Session
	adminKey string
}

func NewRosterHandlers(sess *session.Session, adminKey string) *RosterHandlers {
	return &RosterHandlers{session: sess, adminKey: adminKey}
}

func (h *RosterHandlers) AddCaptain() http.HandlerFunc {
	type addRequest struct {
		Name    string `json:"name"`
		Dollars int    `json:"dollars"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var body addRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		req := identityFromRequest(r, h.adminKey)
		if err := h.session.AddCaptain(r.Context(), req, body.Name, body.Dollars); err != nil {
			writeDraftError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"ok": true})
	}
}

func (h *RosterHandlers) RemoveCaptain() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := identityFromRequest(r, h.adminKey)
		if err := h.session.RemoveCaptain(r.Context(), req, chi.URLParam(r, "name")); err != nil {
			writeDraftError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	}
}

func (h *RosterHandlers) AddPlayer() http.HandlerFunc {
	type addRequest struct {
		Name string  `json:"name"`
		MMR  float64 `json:"mmr"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var body addRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		req := identityFromRequest(r, h.adminKey)
		if err := h.session.AddPlayer(r.Context(), req, body.Name, body.MMR); err != nil {
			writeDraftError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"ok": true})
	}
}

func (h *RosterHandlers) RemovePlayer() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := identityFromRequest(r, h.adminKey)
		if err := h.session.RemovePlayer(r.Context(), req, chi.URLParam(r, "name")); err != nil {
			writeDraftError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	}
}
