package plot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/agrosig/agrosig-api/internal/plot/entity"
)

var (
	ErrMissingFields      = errors.New("there are missing fields to submit in the application")
	ErrDuplicatePlot      = errors.New("user already has a plot")
	ErrInvalidLocation    = errors.New("invalid location format")
	ErrInvalidArea        = errors.New("area must be a positive number")
	ErrMissingCoordinates = errors.New(`latitude and longitude are required in format "lat,long"`)
	ErrNotFound           = errors.New("plot not found")
	ErrNotOwner           = errors.New("user does not own this plot")
)

var locationPattern = regexp.MustCompile(`^[a-zA-Z0-9\s,.'-]{3,}$`)

// Store captures the persistence operations the plot domain needs.
type Store interface {
	Register(ctx context.Context, userID int64, name, location string, area float64, coords string) (*entity.Plot, error)
	GetByID(ctx context.Context, plotID int64) (*entity.Plot, error)
	GetActiveByUserID(ctx context.Context, userID int64) (*entity.Plot, error)
	List(ctx context.Context) ([]entity.Plot, error)
	LatestCoords(ctx context.Context, userID int64) (*entity.Coords, error)
	Update(ctx context.Context, plotID, userID int64, name, location string, area, lat, long float64) (*entity.Plot, error)
	SoftDelete(ctx context.Context, userID, plotID int64) error
}

// Service enforces plot validation and ownership rules.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create registers a plot for the user. A user can hold at most one active
// plot; creation goes through the atomic store procedure that also flips the
// owner's configured_plot flag.
func (s *Service) Create(ctx context.Context, userID int64, in entity.Input) (*entity.Plot, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Location) == "" {
		return nil, ErrMissingFields
	}

	if _, err := s.store.GetActiveByUserID(ctx, userID); err == nil {
		return nil, ErrDuplicatePlot
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("lookup user plot: %w", err)
	}

	if err := validateShape(in); err != nil {
		return nil, err
	}

	lat, long, err := resolveCoordinates(in)
	if err != nil {
		return nil, err
	}

	coords := formatCoords(lat, long)
	created, err := s.store.Register(ctx, userID, in.Name, in.Location, in.Area, coords)
	if err != nil {
		return nil, fmt.Errorf("register plot: %w", err)
	}
	return created, nil
}

// Update overwrites the plot's fields after re-running the create-time
// validation. Only the owner may update; the owning user is immutable.
func (s *Service) Update(ctx context.Context, userID, plotID int64, in entity.Input) (*entity.Plot, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Location) == "" {
		return nil, ErrMissingFields
	}
	if err := validateShape(in); err != nil {
		return nil, err
	}

	existing, err := s.store.GetByID(ctx, plotID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lookup plot: %w", err)
	}
	if existing.UserID != userID {
		return nil, ErrNotOwner
	}

	lat, long, err := resolveCoordinates(in)
	if err != nil {
		return nil, err
	}

	updated, err := s.store.Update(ctx, plotID, userID, in.Name, in.Location, in.Area, lat, long)
	if err != nil {
		return nil, fmt.Errorf("update plot: %w", err)
	}
	return updated, nil
}

// Delete soft-deletes the plot through the atomic store procedure. Only the
// owner may delete.
func (s *Service) Delete(ctx context.Context, userID, plotID int64) error {
	existing, err := s.store.GetByID(ctx, plotID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("lookup plot: %w", err)
	}
	if existing.UserID != userID {
		return ErrNotOwner
	}
	if err := s.store.SoftDelete(ctx, userID, plotID); err != nil {
		return fmt.Errorf("soft delete plot: %w", err)
	}
	return nil
}

// GetByID fetches an active plot.
func (s *Service) GetByID(ctx context.Context, plotID int64) (*entity.Plot, error) {
	p, err := s.store.GetByID(ctx, plotID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// List returns every plot.
func (s *Service) List(ctx context.Context) ([]entity.Plot, error) {
	return s.store.List(ctx)
}

// LatestCoords returns the coordinates of the user's most recently created
// plot.
func (s *Service) LatestCoords(ctx context.Context, userID int64) (*entity.Coords, error) {
	c, err := s.store.LatestCoords(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func validateShape(in entity.Input) error {
	if !locationPattern.MatchString(in.Location) {
		return ErrInvalidLocation
	}
	if in.Area <= 0 {
		return ErrInvalidArea
	}
	return nil
}

// resolveCoordinates returns the plot's point. Explicit lat/long fields take
// precedence; otherwise the location string is parsed as "lat,long".
func resolveCoordinates(in entity.Input) (float64, float64, error) {
	if in.Lat != nil && in.Long != nil {
		return *in.Lat, *in.Long, nil
	}
	if strings.Contains(in.Location, ",") {
		parts := strings.SplitN(in.Location, ",", 2)
		lat, errLat := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		long, errLong := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if errLat == nil && errLong == nil {
			return lat, long, nil
		}
	}
	return 0, 0, ErrMissingCoordinates
}

func formatCoords(lat, long float64) string {
	return strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(long, 'f', -1, 64)
}
