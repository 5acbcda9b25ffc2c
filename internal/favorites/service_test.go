package favorites

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/i474232898/weather-favorites/internal/apperror"
	"github.com/i474232898/weather-favorites/internal/logging"
)

type key struct {
	userID int64
	name   string
	lat    float64
	lon    float64
}

// memoryRepo keeps rows in insertion order and enforces tuple uniqueness.
type memoryRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   []Favorite
	unique map[key]struct{}

	// hideExisting makes Exists lie, simulating a concurrent insert that
	// lands between the check and the insert.
	hideExisting bool
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{unique: make(map[key]struct{})}
}

func (r *memoryRepo) Exists(_ context.Context, userID int64, name string, lat, lon float64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.hideExisting {
		return false, nil
	}
	_, ok := r.unique[key{userID, name, lat, lon}]
	return ok, nil
}

func (r *memoryRepo) Insert(_ context.Context, userID int64, name string, lat, lon float64) (Favorite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := key{userID, name, lat, lon}
	if _, ok := r.unique[k]; ok {
		return Favorite{}, ErrAlreadyExists
	}
	r.unique[k] = struct{}{}
	r.nextID++
	fav := Favorite{ID: r.nextID, UserID: userID, LocationName: name, Latitude: lat, Longitude: lon}
	r.rows = append(r.rows, fav)
	return fav, nil
}

func (r *memoryRepo) ListByUser(_ context.Context, userID int64) ([]Favorite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Favorite
	for _, f := range r.rows {
		if f.UserID == userID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *memoryRepo) GetByUser(_ context.Context, userID, id int64) (Favorite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, f := range r.rows {
		if f.ID == id && f.UserID == userID {
			return f, nil
		}
	}
	return Favorite{}, ErrNotFound
}

func TestAddDuplicateRejectedPerUser(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryRepo(), logging.Discard())

	if _, err := svc.Add(ctx, 1, "Los Angeles", 34.0522, -118.2437); err != nil {
		t.Fatalf("first add: %v", err)
	}

	_, err := svc.Add(ctx, 1, "Los Angeles", 34.0522, -118.2437)
	if !apperror.IsConflict(err) || !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected already exists conflict, got %v", err)
	}

	if _, err := svc.Add(ctx, 2, "Los Angeles", 34.0522, -118.2437); err != nil {
		t.Fatalf("same tuple for another user must succeed: %v", err)
	}

	// Same name with re-geocoded coordinates is a different favorite.
	if _, err := svc.Add(ctx, 1, "Los Angeles", 34.05, -118.24); err != nil {
		t.Fatalf("same name with different coordinates must succeed: %v", err)
	}
}

func TestAddRaceIsRejectedByStorage(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := NewService(repo, logging.Discard())

	if _, err := svc.Add(ctx, 1, "Paris", 48.85, 2.35); err != nil {
		t.Fatalf("first add: %v", err)
	}

	repo.hideExisting = true
	_, err := svc.Add(ctx, 1, "Paris", 48.85, 2.35)
	if !apperror.IsConflict(err) || !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected constraint violation to surface as conflict, got %v", err)
	}
}

func TestAddRejectsInvalidInput(t *testing.T) {
	svc := NewService(newMemoryRepo(), logging.Discard())

	cases := []struct {
		name     string
		lat, lon float64
	}{
		{"", 0, 0},
		{"   ", 0, 0},
		{"North", 90.5, 0},
		{"West", 0, -180.1},
		{strings.Repeat("x", MaxLocationNameLength+1), 0, 0},
		{strings.Repeat("é", MaxLocationNameLength+1), 0, 0},
	}
	for _, tc := range cases {
		_, err := svc.Add(context.Background(), 1, tc.name, tc.lat, tc.lon)
		if !apperror.IsValidation(err) || !errors.Is(err, ErrInvalidInput) {
			t.Errorf("%q (%v,%v): expected invalid input, got %v", tc.name, tc.lat, tc.lon, err)
		}
	}
}

func TestAddAcceptsNameAtColumnWidth(t *testing.T) {
	svc := NewService(newMemoryRepo(), logging.Discard())

	// Multibyte names are measured in characters, not bytes.
	name := strings.Repeat("é", MaxLocationNameLength)
	fav, err := svc.Add(context.Background(), 1, name, 0, 0)
	if err != nil {
		t.Fatalf("add %d-character name: %v", MaxLocationNameLength, err)
	}
	if fav.LocationName != name {
		t.Fatalf("name not stored as given: %q", fav.LocationName)
	}
}

func TestListReturnsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryRepo(), logging.Discard())

	if _, err := svc.Add(ctx, 1, "New York", 40.7128, -74.0060); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Add(ctx, 2, "Tokyo", 35.68, 139.69); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Add(ctx, 1, "Los Angeles", 34.0522, -118.2437); err != nil {
		t.Fatal(err)
	}

	favs, err := svc.List(ctx, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(favs) != 2 || favs[0].LocationName != "New York" || favs[1].LocationName != "Los Angeles" {
		t.Fatalf("unexpected favorites: %+v", favs)
	}
}

func TestGetHidesOtherUsersRows(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryRepo(), logging.Discard())

	fav, err := svc.Add(ctx, 1, "Paris", 48.85, 2.35)
	if err != nil {
		t.Fatal(err)
	}

	got, err := svc.Get(ctx, 1, fav.ID)
	if err != nil || got.LocationName != "Paris" {
		t.Fatalf("owner lookup failed: %+v %v", got, err)
	}

	_, err = svc.Get(ctx, 2, fav.ID)
	if !apperror.IsNotFound(err) || !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for non-owner, got %v", err)
	}
}

func TestResolveForHistorical(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)
	svc := NewService(newMemoryRepo(), logging.Discard(), WithClock(func() time.Time { return now }))

	fav, err := svc.Add(ctx, 1, "Paris", 48.85, 2.35)
	if err != nil {
		t.Fatal(err)
	}

	q, err := svc.ResolveForHistorical(ctx, 1, fav.ID, "2024-01-01", "2024-01-07")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if q.Latitude != 48.85 || q.Longitude != 2.35 || q.StartDate != "2024-01-01" || q.EndDate != "2024-01-07" {
		t.Fatalf("unexpected query: %+v", q)
	}

	// Ownership is checked before the dates.
	if _, err := svc.ResolveForHistorical(ctx, 2, fav.ID, "bad", "bad"); !apperror.IsNotFound(err) {
		t.Fatalf("expected not found before date validation, got %v", err)
	}

	_, err = svc.ResolveForHistorical(ctx, 1, fav.ID, "2024-06-16", "2024-06-20")
	if !errors.Is(err, ErrFutureDateRejected) {
		t.Fatalf("expected future date rejection, got %v", err)
	}
}
