package handlers

import (
	"net/http"

	"github.com/rs/zerolog/hlog"
)

func NotImplemented(w http.ResponseWriter, r *http.Request) {
	Error(w, r, http.StatusNotImplemented, "Not implemented")
}

// Error answers r with the given status and plain text message.
func Error(w http.ResponseWriter, r *http.Request, status int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(message)); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("Error sending response to client")
	}
}
