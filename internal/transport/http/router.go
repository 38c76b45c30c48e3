package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"pst-draft-bot/internal/config"
	"pst-draft-bot/internal/session"
	"pst-draft-bot/internal/store"
	"pst-draft-bot/internal/ws"
)

func NewRouter(sess *session.Session, hub *ws.Hub, kv store.KV, cfg config.ServerConfig) *chi.Mux {
	draft := NewDraftHandlers(sess, cfg.AdminAPIKey)
	roster := NewRosterHandlers(sess, cfg.AdminAPIKey)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.With(APILogMiddleware()).Get("/healthz", healthHandler(kv))

	r.Route("/api", func(r chi.Router) {
		r.Use(APILogMiddleware())

		r.Route("/draft", func(r chi.Router) {
			r.Post("/start", draft.Start())
			r.Post("/nominate", draft.Nominate())
			r.Post("/bid", draft.Bid())
			r.Post("/pause", draft.Pause())
			r.Post("/resume", draft.Resume())
			r.Post("/end", draft.End())
			r.Post("/undo", draft.Undo())

			r.Get("/state", draft.State())
			r.Get("/players", draft.Players())
			r.Get("/captains", draft.Captains())
			r.Get("/nominations", draft.Nominations())
		})

		r.Route("/roster", func(r chi.Router) {
			r.Post("/captains", roster.AddCaptain())
			r.Delete("/captains/{name}", roster.RemoveCaptain())
			r.Post("/players", roster.AddPlayer())
			r.Delete("/players/{name}", roster.RemovePlayer())
		})
	})

	r.Get("/ws/spectate", hub.HandleWS)

	return r
}

func healthHandler(kv store.KV) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := kv.Ping(r.Context()); err != nil {
			WriteHTTPError(w, http.StatusServiceUnavailable, "store_unreachable")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	}
}
