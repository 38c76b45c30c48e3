package httptransport

import (
	"encoding/json"
	"net/http"

	"pst-draft-bot/internal/session"
)

// DraftHandlers exposes the draft commands and queries over HTTP.
type DraftHandlers struct {
	session  *session.Session
	adminKey string
}

func NewDraftHandlers(sess *session.Session, adminKey string) *DraftHandlers {
	return &DraftHandlers{session: sess, adminKey: adminKey}
}

func (h *DraftHandlers) Start() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := identityFromRequest(r, h.adminKey)
		res, err := h.session.Start(r.Context(), req)
		if err != nil {
			writeDraftError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func (h *DraftHandlers) Nominate() http.HandlerFunc {
	type nominateRequest struct {
		Player  string `json:"player"`
		Captain string `json:"captain,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var body nominateRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Player == "" {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		req := identityFromRequest(r, h.adminKey)
		lot, err := h.session.Nominate(r.Context(), req, body.Player, body.Captain)
		if err != nil {
			writeDraftError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, lot)
	}
}

func (h *DraftHandlers) Bid() http.HandlerFunc {
	type bidRequest struct {
		Amount  int    `json:"amount"`
		Captain string `json:"captain,omitempty"`
	}
	type bidResponse struct {
		TimeRemaining int `json:"time_remaining"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var body bidRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		req := identityFromRequest(r, h.adminKey)
		remaining, err := h.session.Bid(r.Context(), req, body.Amount, body.Captain)
		if err != nil {
			writeDraftError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, bidResponse{TimeRemaining: remaining})
	}
}

func (h *DraftHandlers) Pause() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := identityFromRequest(r, h.adminKey)
		if err := h.session.Pause(r.Context(), req); err != nil {
			writeDraftError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	}
}

func (h *DraftHandlers) Resume() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := identityFromRequest(r, h.adminKey)
		if err := h.session.Resume(r.Context(), req); err != nil {
			writeDraftError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	}
}

func (h *DraftHandlers) End() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := identityFromRequest(r, h.adminKey)
		if err := h.session.End(r.Context(), req); err != nil {
			writeDraftError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	}
}

func (h *DraftHandlers) Undo() http.HandlerFunc {
	type undoRequest struct {
		Offset int `json:"offset"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var body undoRequest
		if r.ContentLength > 0 {
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
				return
			}
		}
		req := identityFromRequest(r, h.adminKey)
		nom, err := h.session.Undo(r.Context(), req, body.Offset)
		if err != nil {
			writeDraftError(w, err)
			return
		}
		if nom == nil {
			WriteHTTPError(w, http.StatusNotFound, "not_found")
			return
		}
		writeJSON(w, http.StatusOK, nom)
	}
}

func (h *DraftHandlers) State() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := h.session.Snapshot(r.Context())
		if err != nil {
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

func (h *DraftHandlers) Players() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := h.session.Snapshot(r.Context())
		if err != nil {
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		writeJSON(w, http.StatusOK, snap.Players)
	}
}

func (h *DraftHandlers) Captains() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := h.session.Snapshot(r.Context())
		if err != nil {
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		writeJSON(w, http.StatusOK, snap.Captains)
	}
}

func (h *DraftHandlers) Nominations() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := h.session.Snapshot(r.Context())
		if err != nil {
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		writeJSON(w, http.StatusOK, snap.Nominations)
	}
}
