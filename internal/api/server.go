package api

import (
	"strings"
	"time"

	"scenicnav/internal/cache"
	"scenicnav/internal/config"
	"scenicnav/internal/planner"
	"scenicnav/internal/router"
	"scenicnav/internal/store"
)

type Server struct {
	Cfg     config.Config
	Store   store.Store
	Router  router.Requester
	Planner *planner.Planner
	Broker  EventBroker
}

// NewServer wires the scenic store, routing client, and planner from the
// effective configuration. DATABASE_URL selects the Postgres store, GeoJSON
// files otherwise; REDIS_URL selects the Redis broker.
func NewServer(cfg config.Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var st store.Store
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		st = store.NewGeoJSON(cfg.HeatmapPath, cfg.EdgeScoresPath, cfg.RoadsPath)
	} else {
		pg, err := store.NewPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		st = pg
	}

	var rt router.Requester = router.NewOSRM(cfg.OSRMEndpoint, cfg.OSRMRateRPS)
	if !cfg.NoCache {
		disk, err := cache.NewDisk(cfg.CacheDir, "osrm", time.Duration(cfg.CacheMaxAge))
		if err != nil {
			return nil, err
		}
		rt = router.NewCached(rt, disk, cfg.OSRMEndpoint)
	}

	var broker EventBroker
	if cfg.RedisURL != "" {
		if rb, err := NewRedisBroker(cfg.RedisURL); err == nil {
			broker = rb
		} else {
			broker = NewBroker()
		}
	} else {
		broker = NewBroker()
	}

	return &Server{
		Cfg:     cfg,
		Store:   st,
		Router:  rt,
		Planner: planner.New(st, rt, cfg.Planner),
		Broker:  broker,
	}, nil
}
