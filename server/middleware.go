package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type contextKey string

const viewerIDKey contextKey = "viewer_id"

const viewerCookie = "viewer_id"

func getViewerIDFromContext(ctx context.Context) string {
	viewerID, _ := ctx.Value(viewerIDKey).(string)
	return viewerID
}

func withViewerID(ctx context.Context, viewerID string) context.Context {
	return context.WithValue(ctx, viewerIDKey, viewerID)
}

// Cors allows the live view page to be served from origin.
func Cors(origin string, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type")
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.ServeHTTP(w, r)
	})
}

// ViewerID gives every viewer a stable id cookie and puts the id on the
// request context.
func ViewerID(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var viewerID string
		if c, err := r.Cookie(viewerCookie); err == nil && c.Value != "" {
			viewerID = c.Value
		} else {
			viewerID = uuid.NewString()
			slog.Debug("new viewer", slog.String("viewer", viewerID))
		}
		// nolint:exhaustruct
		http.SetCookie(w, &http.Cookie{
			Name:     viewerCookie,
			Value:    viewerID,
			Expires:  time.Now().Add(24 * time.Hour),
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteStrictMode,
		})

		h.ServeHTTP(w, r.WithContext(withViewerID(r.Context(), viewerID)))
	})
}
