package httptransport

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v3"

	"pst-draft-bot/internal/auction"
	"pst-draft-bot/internal/logging"
)

func APILogMiddleware() func(http.Handler) http.Handler {
	return httplog.RequestLogger(
		slog.New(slog.NewJSONHandler(logging.Writer(), &slog.HandlerOptions{})),
		&httplog.Options{
			Level:              slog.LevelInfo,
			Schema:             httplog.Schema{ResponseStatus: "status", ResponseDuration: "duration_ms"},
			LogRequestBody:     func(*http.Request) bool { return false },
			LogResponseBody:    func(*http.Request) bool { return false },
			LogRequestHeaders:  []string{},
			LogResponseHeaders: []string{},
			LogExtraAttrs: func(req *http.Request, _ string, _ int) []slog.Attr {
				rc := chi.RouteContext(req.Context())
				route := req.URL.Path
				if rc != nil && rc.RoutePattern() != "" {
					route = rc.RoutePattern()
				}
				return []slog.Attr{
					slog.String("request_id", chimw.GetReqID(req.Context())),
					slog.String("method", req.Method),
					slog.String("route", route),
					slog.String("path", req.URL.Path),
				}
			},
		},
	)
}

// requesterHeader names the captain (or admin) issuing a command.
const requesterHeader = "X-Requester"

// identityFromRequest resolves who is asking. Admin status comes from
// the admin key, never from the requester name.
func identityFromRequest(r *http.Request, adminKey string) auction.Identity {
	id := auction.Identity{Name: strings.TrimSpace(r.Header.Get(requesterHeader))}
	if adminKey != "" && checkAdminAuth(r, adminKey) {
		id.IsAdmin = true
		if id.Name == "" {
			id.Name = "admin"
		}
	}
	return id
}

func checkAdminAuth(r *http.Request, adminKey string) bool {
	if v := r.Header.Get("X-Admin-Key"); v == adminKey {
		return true
	}
	auth := r.Header.Get("Authorization")
	prefix := "Bearer "
	if len(auth) > len(prefix) && auth[:len(prefix)] == prefix {
		return auth[len(prefix):] == adminKey
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteHTTPError renders a bare error code.
func WriteHTTPError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]any{"error": code})
}

// writeDraftError maps draft errors onto HTTP. Ignored bids answer 202:
// the request was understood and deliberately dropped.
func writeDraftError(w http.ResponseWriter, err error) {
	if errors.Is(err, auction.ErrBidIgnored) {
		writeJSON(w, http.StatusAccepted, map[string]any{"status": "ignored"})
		return
	}
	if ve, ok := auction.AsValidation(err); ok {
		writeJSON(w, validationStatus(ve.Code), map[string]any{
			"error":   string(ve.Code),
			"message": ve.Message,
			"hint":    string(ve.Hint),
		})
		return
	}
	WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
}

func validationStatus(code auction.Code) int {
	switch code {
	case auction.CodeUnauthorized:
		return http.StatusUnauthorized
	case auction.CodeNotFound:
		return http.StatusNotFound
	case auction.CodeBusy, auction.CodeInvalidTransition,
		auction.CodeAlreadyPicked, auction.CodeDuplicateName:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}
