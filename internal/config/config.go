package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// Config carries server and planner defaults. Values come from built-in
// defaults, then an optional YAML file named by CONFIG_PATH, then individual
// env overrides. Per-plan request params override these at call time.
type Config struct {
	Port         string  `yaml:"port"`
	DatabaseURL  string  `yaml:"databaseUrl"`
	RedisURL     string  `yaml:"redisUrl"`
	OSRMEndpoint string  `yaml:"osrmEndpoint"`
	OSRMRateRPS  float64 `yaml:"osrmRateRps"`

	HeatmapPath    string `yaml:"heatmapPath"`
	EdgeScoresPath string `yaml:"edgeScoresPath"`
	RoadsPath      string `yaml:"roadsPath"`

	CacheDir    string   `yaml:"cacheDir"`
	CacheMaxAge Duration `yaml:"cacheMaxAge"`
	NoCache     bool     `yaml:"noCache"`

	Planner Planner `yaml:"planner"`
}

// Duration decodes YAML strings like "168h".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Planner holds the default plan tunables.
type Planner struct {
	StepM                  float64 `yaml:"stepM"`
	MaxMatchDistanceM      float64 `yaml:"maxMatchDistanceM"`
	ScenicWeight           float64 `yaml:"scenicWeight"`
	MaxDurationRatio       float64 `yaml:"maxDurationRatio"`
	WaypointCount          int     `yaml:"waypointCount"`
	WaypointRadiusM        float64 `yaml:"waypointRadiusM"`
	WaypointMinDistanceM   float64 `yaml:"waypointMinDistanceM"`
	WaypointMinSeparationM float64 `yaml:"waypointMinSeparationM"`
	RoadSampleStepM        float64 `yaml:"roadSampleStepM"`
	RoadMaxDistanceM       float64 `yaml:"roadMaxDistanceM"`
	DeadEndRadiusM         float64 `yaml:"deadEndRadiusM"`
	HeatmapCellDeg         float64 `yaml:"heatmapCellDeg"`
	DeadEndCellDeg         float64 `yaml:"deadEndCellDeg"`
	NoRoadWeighting        bool    `yaml:"noRoadWeighting"`
	NoDeadEndFilter        bool    `yaml:"noDeadEndFilter"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port:         "8080",
		OSRMEndpoint: "https://router.project-osrm.org",
		OSRMRateRPS:  1,
		CacheDir:     ".cache/scenicnav",
		CacheMaxAge:  Duration(7 * 24 * time.Hour),
		Planner: Planner{
			StepM:                  120,
			MaxMatchDistanceM:      250,
			ScenicWeight:           0.7,
			MaxDurationRatio:       1.7,
			WaypointCount:          6,
			WaypointRadiusM:        8000,
			WaypointMinDistanceM:   2000,
			WaypointMinSeparationM: 1500,
			RoadSampleStepM:        300,
			RoadMaxDistanceM:       800,
			DeadEndRadiusM:         80,
			HeatmapCellDeg:         0.01,
			DeadEndCellDeg:         0.002,
		},
	}
}

// Load builds the effective configuration: defaults, then the YAML file at
// CONFIG_PATH (when set), then env overrides.
func Load() (Config, error) {
	cfg := Default()
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Port, "PORT")
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.RedisURL, "REDIS_URL")
	setString(&c.OSRMEndpoint, "OSRM_ENDPOINT")
	setFloat(&c.OSRMRateRPS, "OSRM_RATE_RPS")
	setString(&c.HeatmapPath, "HEATMAP_PATH")
	setString(&c.EdgeScoresPath, "EDGE_SCORES_PATH")
	setString(&c.RoadsPath, "ROADS_PATH")
	setString(&c.CacheDir, "CACHE_DIR")
	setBool(&c.NoCache, "NO_CACHE")
	if v := os.Getenv("CACHE_MAX_AGE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			c.CacheMaxAge = Duration(d)
		}
	}
	setFloat(&c.Planner.StepM, "STEP_M")
	setFloat(&c.Planner.MaxMatchDistanceM, "MAX_MATCH_DISTANCE_M")
	setFloat(&c.Planner.ScenicWeight, "SCENIC_WEIGHT")
	setFloat(&c.Planner.MaxDurationRatio, "MAX_DURATION_RATIO")
	setInt(&c.Planner.WaypointCount, "WAYPOINT_COUNT")
	setFloat(&c.Planner.WaypointRadiusM, "WAYPOINT_RADIUS_M")
	setFloat(&c.Planner.WaypointMinDistanceM, "WAYPOINT_MIN_DISTANCE_M")
	setFloat(&c.Planner.WaypointMinSeparationM, "WAYPOINT_MIN_SEPARATION_M")
	setFloat(&c.Planner.RoadSampleStepM, "ROAD_SAMPLE_STEP_M")
	setFloat(&c.Planner.RoadMaxDistanceM, "ROAD_MAX_DISTANCE_M")
	setFloat(&c.Planner.DeadEndRadiusM, "DEAD_END_RADIUS_M")
	setBool(&c.Planner.NoRoadWeighting, "NO_ROAD_WEIGHTING")
	setBool(&c.Planner.NoDeadEndFilter, "NO_DEAD_END_FILTER")
}

// Validate rejects configurations the planner cannot run with.
func (c *Config) Validate() error {
	p := c.Planner
	if p.StepM <= 0 {
		return fmt.Errorf("stepM must be positive, got %v", p.StepM)
	}
	if p.MaxMatchDistanceM <= 0 {
		return fmt.Errorf("maxMatchDistanceM must be positive, got %v", p.MaxMatchDistanceM)
	}
	if p.ScenicWeight < 0 || p.ScenicWeight > 1 {
		return fmt.Errorf("scenicWeight must be within [0,1], got %v", p.ScenicWeight)
	}
	if p.WaypointCount < 0 {
		return fmt.Errorf("waypointCount must not be negative, got %d", p.WaypointCount)
	}
	if p.HeatmapCellDeg <= 0 || p.DeadEndCellDeg <= 0 {
		return fmt.Errorf("grid cell sizes must be positive")
	}
	if c.OSRMEndpoint == "" {
		return fmt.Errorf("osrmEndpoint must not be empty")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setFloat(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
