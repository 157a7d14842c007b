package plot

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrosig/agrosig-api/internal/plot/entity"
)

type fakeStore struct {
	plots      map[int64]*entity.Plot
	nextID     int64
	lastCoords string
}

func newFakeStore() *fakeStore {
	return &fakeStore{plots: make(map[int64]*entity.Plot)}
}

func (f *fakeStore) Register(_ context.Context, userID int64, name, location string, area float64, coords string) (*entity.Plot, error) {
	f.nextID++
	f.lastCoords = coords
	lat, long := splitCoords(coords)
	p := &entity.Plot{
		ID:       f.nextID,
		UserID:   userID,
		Name:     name,
		Location: location,
		Area:     area,
		Lat:      lat,
		Long:     long,
	}
	f.plots[p.ID] = p
	return p, nil
}

func (f *fakeStore) GetByID(_ context.Context, plotID int64) (*entity.Plot, error) {
	p, ok := f.plots[plotID]
	if !ok || p.IsDeleted {
		return nil, sql.ErrNoRows
	}
	return p, nil
}

func (f *fakeStore) GetActiveByUserID(_ context.Context, userID int64) (*entity.Plot, error) {
	for _, p := range f.plots {
		if p.UserID == userID && !p.IsDeleted {
			return p, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeStore) List(_ context.Context) ([]entity.Plot, error) {
	out := make([]entity.Plot, 0, len(f.plots))
	for _, p := range f.plots {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeStore) LatestCoords(_ context.Context, userID int64) (*entity.Coords, error) {
	var latest *entity.Plot
	for _, p := range f.plots {
		if p.UserID != userID || p.IsDeleted {
			continue
		}
		if latest == nil || p.ID > latest.ID {
			latest = p
		}
	}
	if latest == nil {
		return nil, sql.ErrNoRows
	}
	return &entity.Coords{Lat: latest.Lat, Long: latest.Long}, nil
}

func (f *fakeStore) Update(_ context.Context, plotID, userID int64, name, location string, area, lat, long float64) (*entity.Plot, error) {
	p, ok := f.plots[plotID]
	if !ok || p.IsDeleted {
		return nil, sql.ErrNoRows
	}
	p.Name = name
	p.Location = location
	p.Area = area
	p.Lat = lat
	p.Long = long
	return p, nil
}

func (f *fakeStore) SoftDelete(_ context.Context, userID, plotID int64) error {
	p, ok := f.plots[plotID]
	if !ok || p.UserID != userID {
		return sql.ErrNoRows
	}
	p.IsDeleted = true
	return nil
}

func splitCoords(coords string) (float64, float64) {
	parts := strings.SplitN(coords, ",", 2)
	if len(parts) != 2 {
		return 0, 0
	}
	lat, _ := strconv.ParseFloat(parts[0], 64)
	long, _ := strconv.ParseFloat(parts[1], 64)
	return lat, long
}

func ptr(v float64) *float64 { return &v }

func validInput() entity.Input {
	return entity.Input{
		Name:     "North Field",
		Location: "19.4, -99.1",
		Area:     12.5,
	}
}

func TestCreatePlot(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	created, err := svc.Create(context.Background(), 42, validInput())
	require.NoError(t, err)
	assert.Equal(t, int64(42), created.UserID)
	assert.Equal(t, "North Field", created.Name)
	assert.InDelta(t, 19.4, created.Lat, 1e-9)
	assert.InDelta(t, -99.1, created.Long, 1e-9)
	assert.Equal(t, "19.4,-99.1", store.lastCoords)
}

func TestCreatePlotExplicitCoordsWin(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	in := validInput()
	in.Lat = ptr(20.66)
	in.Long = ptr(-103.35)
	created, err := svc.Create(context.Background(), 42, in)
	require.NoError(t, err)
	assert.InDelta(t, 20.66, created.Lat, 1e-9)
	assert.InDelta(t, -103.35, created.Long, 1e-9)
}

func TestCreatePlotValidation(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*entity.Input)
		wantErr error
	}{
		{"missing name", func(in *entity.Input) { in.Name = " " }, ErrMissingFields},
		{"missing location", func(in *entity.Input) { in.Location = "" }, ErrMissingFields},
		{"location too short", func(in *entity.Input) { in.Location = "ab" }, ErrInvalidLocation},
		{"location bad characters", func(in *entity.Input) { in.Location = "campo #7!" }, ErrInvalidLocation},
		{"zero area", func(in *entity.Input) { in.Area = 0 }, ErrInvalidArea},
		{"negative area", func(in *entity.Input) { in.Area = -3 }, ErrInvalidArea},
		{"no coordinates anywhere", func(in *entity.Input) { in.Location = "Valle de Toluca" }, ErrMissingCoordinates},
		{"unparsable coordinate pair", func(in *entity.Input) { in.Location = "valle, norte" }, ErrMissingCoordinates},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewService(newFakeStore())
			in := validInput()
			tc.mutate(&in)
			_, err := svc.Create(context.Background(), 42, in)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestCreatePlotDuplicate(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	_, err := svc.Create(context.Background(), 42, validInput())
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), 42, validInput())
	assert.ErrorIs(t, err, ErrDuplicatePlot)

	// a different user is free to register
	_, err = svc.Create(context.Background(), 7, validInput())
	assert.NoError(t, err)
}

func TestCreatePlotAfterSoftDelete(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	created, err := svc.Create(context.Background(), 42, validInput())
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), 42, created.ID))

	_, err = svc.Create(context.Background(), 42, validInput())
	assert.NoError(t, err)
}

func TestUpdatePlot(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	created, err := svc.Create(context.Background(), 42, validInput())
	require.NoError(t, err)

	in := entity.Input{
		Name:     "South Field",
		Location: "20.66, -103.35",
		Area:     30,
	}
	updated, err := svc.Update(context.Background(), 42, created.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "South Field", updated.Name)
	assert.InDelta(t, 20.66, updated.Lat, 1e-9)
	assert.InDelta(t, -103.35, updated.Long, 1e-9)
	assert.Equal(t, float64(30), updated.Area)
}

func TestUpdatePlotGuards(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	created, err := svc.Create(context.Background(), 42, validInput())
	require.NoError(t, err)

	t.Run("not owner", func(t *testing.T) {
		_, err := svc.Update(context.Background(), 7, created.ID, validInput())
		assert.ErrorIs(t, err, ErrNotOwner)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := svc.Update(context.Background(), 42, 999, validInput())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("validation precedes lookup", func(t *testing.T) {
		in := validInput()
		in.Area = -1
		_, err := svc.Update(context.Background(), 42, 999, in)
		assert.ErrorIs(t, err, ErrInvalidArea)
	})
}

func TestDeletePlot(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	created, err := svc.Create(context.Background(), 42, validInput())
	require.NoError(t, err)

	t.Run("not owner", func(t *testing.T) {
		assert.ErrorIs(t, svc.Delete(context.Background(), 7, created.ID), ErrNotOwner)
	})

	t.Run("owner deletes", func(t *testing.T) {
		require.NoError(t, svc.Delete(context.Background(), 42, created.ID))
		_, err := svc.GetByID(context.Background(), created.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("already deleted", func(t *testing.T) {
		assert.ErrorIs(t, svc.Delete(context.Background(), 42, created.ID), ErrNotFound)
	})
}

func TestLatestCoords(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	_, err := svc.LatestCoords(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Create(context.Background(), 42, validInput())
	require.NoError(t, err)

	coords, err := svc.LatestCoords(context.Background(), 42)
	require.NoError(t, err)
	assert.InDelta(t, 19.4, coords.Lat, 1e-9)
	assert.InDelta(t, -99.1, coords.Long, 1e-9)
}
