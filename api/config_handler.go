// Package api — configuration endpoint.
package api

import (
	"net/http"
)

// ConfigResponse is the JSON envelope returned by GET /api/v1/config. It
// exposes the effective defaults a client needs to mirror the dashboard's
// behavior: the watchlist used when no symbols are given and the notional
// threshold applied when none is passed.
type ConfigResponse struct {
	Version     string   `json:"version"`
	Symbols     []string `json:"symbols"`
	MinNotional float64  `json:"min_notional"`
	NewsEnabled bool     `json:"news_enabled"`
	NewsLimit   int      `json:"news_limit"`
}

// handleGetConfig returns the running configuration's request defaults.
// There is no write counterpart: the config is shared read-only state after
// startup, and persistent changes belong in config.yaml.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: ConfigResponse{
			Version:     s.version,
			Symbols:     s.cfg.Dashboard.Symbols,
			MinNotional: s.cfg.Dashboard.MinNotional,
			NewsEnabled: s.cfg.News.Enabled,
			NewsLimit:   s.cfg.News.Limit,
		},
	})
}
