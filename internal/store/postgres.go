package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	"scenicnav/internal/model"
)

// Postgres serves scenic datasets from a database populated by the imagery
// pipeline. Schema:
//
//	scenic_points(lat double precision, lng double precision, score double precision)
//	edge_scores(score double precision, coordinates jsonb)   -- GeoJSON lng-first pairs
//	road_features(highway text, coordinates jsonb)
type Postgres struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) ScenicPoints(ctx context.Context) ([]model.ScenicPoint, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT lat, lng, score FROM scenic_points`)
	if err != nil {
		return nil, fmt.Errorf("load scenic points: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var points []model.ScenicPoint
	for rows.Next() {
		var sp model.ScenicPoint
		if err := rows.Scan(&sp.Lat, &sp.Lng, &sp.Score); err != nil {
			return nil, err
		}
		points = append(points, sp)
	}
	return points, rows.Err()
}

func (p *Postgres) EdgeMidpoints(ctx context.Context) ([]model.ScenicPoint, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT score, coordinates FROM edge_scores WHERE score IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("load edge scores: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var points []model.ScenicPoint
	for rows.Next() {
		var score float64
		var raw []byte
		if err := rows.Scan(&score, &raw); err != nil {
			return nil, err
		}
		var coords [][]float64
		if err := json.Unmarshal(raw, &coords); err != nil {
			continue
		}
		lat, lng, ok := midpointOf(coords)
		if !ok {
			continue
		}
		points = append(points, model.ScenicPoint{Lat: lat, Lng: lng, Score: score})
	}
	return points, rows.Err()
}

func (p *Postgres) RoadFeatures(ctx context.Context) ([]model.RoadFeature, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT COALESCE(highway, ''), coordinates FROM road_features`)
	if err != nil {
		return nil, fmt.Errorf("load road features: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var features []model.RoadFeature
	for rows.Next() {
		var highway string
		var raw []byte
		if err := rows.Scan(&highway, &raw); err != nil {
			return nil, err
		}
		var coords [][]float64
		if err := json.Unmarshal(raw, &coords); err != nil || len(coords) == 0 {
			continue
		}
		features = append(features, model.RoadFeature{Highway: highway, Coordinates: coords})
	}
	return features, rows.Err()
}

// Ping reports database connectivity for readiness checks.
func (p *Postgres) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }

// Close releases the underlying pool.
func (p *Postgres) Close() error { return p.db.Close() }
