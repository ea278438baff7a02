// Package admin exposes the configuration and the stored entries.
package admin

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/hlog"
	"gopkg.in/yaml.v3"

	"github.com/benjaminschubert/fetchcache/internal/cacheentry"
	"github.com/benjaminschubert/fetchcache/internal/config"
	"github.com/benjaminschubert/fetchcache/internal/handlers"
	"github.com/benjaminschubert/fetchcache/internal/httpcaching"
	"github.com/benjaminschubert/fetchcache/internal/kvstore"
)

type entryInfo struct {
	Key             string              `json:"key"`
	Status          int                 `json:"status"`
	CapturedAt      time.Time           `json:"capturedAt"`
	Stale           bool                `json:"stale"`
	TimeToLive      string              `json:"timeToLive"`
	ResponseHeaders httpcaching.Headers `json:"responseHeaders"`
	BodySize        int                 `json:"bodySize"`
}

func RegisterHandler(
	handler *http.ServeMux,
	store kvstore.Store,
	codec cacheentry.Codec,
	conf *config.Config,
) error {
	renderedConfig, err := renderConfig(conf)
	if err != nil {
		return err
	}

	handler.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		if _, err := w.Write([]byte(renderedConfig)); err != nil {
			hlog.FromRequest(r).Error().Err(err).Msg("error sending the configuration")
		}
	})

	handler.HandleFunc("GET /cache", func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Query().Get("key")
		if key == "" {
			handlers.Error(w, r, http.StatusBadRequest, "Missing key")
			return
		}

		logger := hlog.FromRequest(r)

		value, found, err := store.Get(r.Context(), key)
		if err != nil {
			logger.Error().Err(err).Msg("Unable to read entry from the store")
			handlers.Error(w, r, http.StatusInternalServerError, "Unable to read the entry")
			return
		}
		if !found {
			handlers.Error(w, r, http.StatusNotFound, "No entry for this key")
			return
		}

		entry, err := codec.Decode(value)
		if err != nil {
			logger.Warn().Err(err).Msg("Stored entry is malformed")
			handlers.Error(w, r, http.StatusUnprocessableEntity, "The stored entry is malformed")
			return
		}

		policy, err := httpcaching.Restore(entry.Policy, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("Stored entry has an invalid policy")
			handlers.Error(w, r, http.StatusUnprocessableEntity, "The stored entry is malformed")
			return
		}

		now := time.Now()
		info := entryInfo{
			Key:             key,
			Status:          policy.Status(),
			CapturedAt:      entry.Policy.CapturedAt,
			Stale:           policy.Stale(now),
			TimeToLive:      policy.TimeToLive(now).Round(time.Second).String(),
			ResponseHeaders: entry.Policy.ResponseHeaders,
			BodySize:        len(entry.Body),
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(info); err != nil {
			logger.Error().Err(err).Msg("error sending the entry")
		}
	})

	handler.HandleFunc("DELETE /cache", func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Query().Get("key")
		if key == "" {
			handlers.Error(w, r, http.StatusBadRequest, "Missing key")
			return
		}

		logger := hlog.FromRequest(r)
		if err := store.Delete(r.Context(), key); err != nil {
			logger.Error().Err(err).Msg("Unable to remove entry from cache")
			handlers.Error(w, r, http.StatusInternalServerError, "Unable to remove the entry")
			return
		}

		logger.Info().Str("key", key).Msg("Entry removed from the cache")
		w.WriteHeader(http.StatusNoContent)
	})

	return nil
}

func renderConfig(conf *config.Config) (string, error) {
	buffer := strings.Builder{}
	encoder := yaml.NewEncoder(&buffer)
	err := encoder.Encode(conf)
	return buffer.String(), err
}
