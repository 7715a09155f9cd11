package api

import (
	"encoding/json"
	"net/http"
	"time"

	"scenicnav/internal/buildinfo"
)

// DebugConfigHandler reports build info and the effective, sanitized
// configuration. Connection strings are reduced to presence flags.
func (s *Server) DebugConfigHandler(w http.ResponseWriter, r *http.Request) {
	info := map[string]any{
		"build": buildinfo.Info(),
		"time":  time.Now().UTC().Format(time.RFC3339),
		"config": map[string]any{
			"port":           s.Cfg.Port,
			"osrmEndpoint":   s.Cfg.OSRMEndpoint,
			"cacheDir":       s.Cfg.CacheDir,
			"noCache":        s.Cfg.NoCache,
			"hasDatabaseUrl": s.Cfg.DatabaseURL != "",
			"hasRedisUrl":    s.Cfg.RedisURL != "",
			"heatmapPath":    s.Cfg.HeatmapPath,
			"edgeScoresPath": s.Cfg.EdgeScoresPath,
			"roadsPath":      s.Cfg.RoadsPath,
			"planner":        s.Cfg.Planner,
		},
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(info)
}
