package repo

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/agrosig/agrosig-api/internal/plot/entity"
)

const plotColumns = `plot_id, user_id, plot_name, location, area,
	ST_X(geom) AS lat, ST_Y(geom) AS long, is_deleted, created_at`

// PlotRepo provides data access for the plots table. Creation and soft
// deletion go through stored procedures so the plot row and the owner's
// configured_plot flag change in one transaction owned by the store.
type PlotRepo struct {
	db *sqlx.DB
}

func NewPlotRepo(db *sqlx.DB) *PlotRepo { return &PlotRepo{db: db} }

// EnsureSchema creates the plots table and the two stored procedures
// (idempotent). Requires PostGIS for the geometry column.
func (r *PlotRepo) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS postgis;`,
		`CREATE TABLE IF NOT EXISTS plots (
  plot_id BIGSERIAL PRIMARY KEY,
  user_id BIGINT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
  plot_name TEXT NOT NULL,
  location TEXT NOT NULL,
  area DOUBLE PRECISION NOT NULL,
  geom GEOMETRY(Point, 4326) NOT NULL,
  is_deleted BOOLEAN NOT NULL DEFAULT false,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`,
		`CREATE INDEX IF NOT EXISTS idx_plots_user_id ON plots (user_id);`,
		`CREATE OR REPLACE PROCEDURE register_user_plot(
  p_user_id BIGINT, p_plot_name TEXT, p_location TEXT, p_area DOUBLE PRECISION, p_coords TEXT)
LANGUAGE plpgsql
AS $$
DECLARE
  v_lat DOUBLE PRECISION := split_part(p_coords, ',', 1)::DOUBLE PRECISION;
  v_long DOUBLE PRECISION := split_part(p_coords, ',', 2)::DOUBLE PRECISION;
BEGIN
  INSERT INTO plots (user_id, plot_name, location, area, geom)
  VALUES (p_user_id, p_plot_name, p_location, p_area, ST_SetSRID(ST_MakePoint(v_lat, v_long), 4326));
  UPDATE users SET configured_plot = true WHERE user_id = p_user_id;
END;
$$;`,
		`CREATE OR REPLACE PROCEDURE soft_delete_user_plot(p_user_id BIGINT, p_plot_id BIGINT)
LANGUAGE plpgsql
AS $$
BEGIN
  UPDATE plots SET is_deleted = true WHERE plot_id = p_plot_id AND user_id = p_user_id;
  UPDATE users SET configured_plot = false WHERE user_id = p_user_id;
END;
$$;`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure plots schema: %w", err)
		}
	}
	return nil
}

// Register creates the plot and flips the owner's configured_plot flag in a
// single atomic call, then returns the freshly created row.
func (r *PlotRepo) Register(ctx context.Context, userID int64, name, location string, area float64, coords string) (*entity.Plot, error) {
	if _, err := r.db.ExecContext(ctx, `CALL register_user_plot($1, $2, $3, $4, $5)`,
		userID, name, location, area, coords); err != nil {
		return nil, err
	}
	return r.GetLatestByUserID(ctx, userID)
}

// GetByID fetches an active plot row or sql.ErrNoRows. Soft-deleted plots
// do not resolve.
func (r *PlotRepo) GetByID(ctx context.Context, plotID int64) (*entity.Plot, error) {
	var p entity.Plot
	const q = `SELECT ` + plotColumns + ` FROM plots WHERE plot_id = $1 AND is_deleted = false`
	if err := r.db.GetContext(ctx, &p, q, plotID); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetActiveByUserID returns the user's active plot or sql.ErrNoRows.
func (r *PlotRepo) GetActiveByUserID(ctx context.Context, userID int64) (*entity.Plot, error) {
	var p entity.Plot
	const q = `SELECT ` + plotColumns + ` FROM plots
		WHERE user_id = $1 AND is_deleted = false
		ORDER BY created_at DESC LIMIT 1`
	if err := r.db.GetContext(ctx, &p, q, userID); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetLatestByUserID returns the user's most recent plot regardless of the
// soft-delete marker, or sql.ErrNoRows.
func (r *PlotRepo) GetLatestByUserID(ctx context.Context, userID int64) (*entity.Plot, error) {
	var p entity.Plot
	const q = `SELECT ` + plotColumns + ` FROM plots
		WHERE user_id = $1
		ORDER BY created_at DESC LIMIT 1`
	if err := r.db.GetContext(ctx, &p, q, userID); err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns every plot row, deleted ones included.
func (r *PlotRepo) List(ctx context.Context) ([]entity.Plot, error) {
	var plots []entity.Plot
	const q = `SELECT ` + plotColumns + ` FROM plots ORDER BY created_at`
	if err := r.db.SelectContext(ctx, &plots, q); err != nil {
		return nil, err
	}
	return plots, nil
}

// LatestCoords returns the coordinates of the user's most recently created
// plot, or sql.ErrNoRows.
func (r *PlotRepo) LatestCoords(ctx context.Context, userID int64) (*entity.Coords, error) {
	var c entity.Coords
	const q = `SELECT plot_id, user_id, plot_name, location,
			ST_X(geom) AS lat, ST_Y(geom) AS long, area
		FROM plots
		WHERE user_id = $1
		ORDER BY created_at DESC LIMIT 1`
	if err := r.db.GetContext(ctx, &c, q, userID); err != nil {
		return nil, err
	}
	return &c, nil
}

// Update overwrites name, location, area, and the geographic point of the
// plot owned by userID, returning the updated row or sql.ErrNoRows.
func (r *PlotRepo) Update(ctx context.Context, plotID, userID int64, name, location string, area, lat, long float64) (*entity.Plot, error) {
	const q = `UPDATE plots
		SET plot_name = $1, location = $2, area = $3, geom = ST_SetSRID(ST_MakePoint($4, $5), 4326)
		WHERE plot_id = $6 AND user_id = $7
		RETURNING ` + plotColumns
	var p entity.Plot
	if err := r.db.GetContext(ctx, &p, q, name, location, area, lat, long, plotID, userID); err != nil {
		return nil, err
	}
	return &p, nil
}

// SoftDelete marks the plot deleted and clears the owner's configured_plot
// flag through the stored procedure.
func (r *PlotRepo) SoftDelete(ctx context.Context, userID, plotID int64) error {
	_, err := r.db.ExecContext(ctx, `CALL soft_delete_user_plot($1, $2)`, userID, plotID)
	return err
}
