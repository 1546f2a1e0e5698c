package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"event_backend/internal/feature/events/domain/entity"
	"event_backend/internal/feature/events/usecase"
	"event_backend/internal/platform/db"
)

// setupTestDB prepares an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := db.OpenSQLite(":memory:")
	require.NoError(t, err, "failed to initialize test database")
	require.NoError(t, db.Migrate(gdb, &entity.Event{}), "failed to migrate table")
	t.Cleanup(func() { _ = db.Close(gdb) })

	return gdb
}

var base = time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

func seed(t *testing.T, repo *eventGorm, events ...*entity.Event) {
	t.Helper()
	for _, e := range events {
		require.NoError(t, repo.Create(context.Background(), e))
	}
}

func titles(events []entity.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.Title
	}
	return out
}

func TestEventGorm_CreateAndFind(t *testing.T) {
	repo := NewEventRepository(setupTestDB(t))
	ctx := context.Background()

	e := &entity.Event{Title: "Go Meetup", EventDate: base, Capacity: 10, CreatedBy: 1, Active: true}
	require.NoError(t, repo.Create(ctx, e))
	assert.NotZero(t, e.ID)

	got, err := repo.FindByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "Go Meetup", got.Title)
	assert.True(t, base.Equal(got.EventDate))
	assert.Equal(t, 0, got.RegisteredCount)

	_, err = repo.FindByID(ctx, 999)
	assert.ErrorIs(t, err, usecase.ErrEventNotFound)
}

func TestEventGorm_Queries(t *testing.T) {
	repo := NewEventRepository(setupTestDB(t))
	ctx := context.Background()

	seed(t, repo,
		&entity.Event{Title: "Later Go Talk", Category: "Tech", EventDate: base.Add(48 * time.Hour), Capacity: 5, CreatedBy: 1, Active: true},
		&entity.Event{Title: "Jazz Night", Category: "Music", EventDate: base.Add(24 * time.Hour), Capacity: 5, CreatedBy: 2, Active: true},
		&entity.Event{Title: "Past Workshop", Category: "tech", EventDate: base.Add(-24 * time.Hour), Capacity: 5, CreatedBy: 1, Active: true},
		&entity.Event{Title: "Deleted Go Event", Category: "Tech", EventDate: base.Add(72 * time.Hour), Capacity: 5, CreatedBy: 1, Active: false},
		&entity.Event{Title: "100% Fun_Run", Category: "Sport", EventDate: base.Add(96 * time.Hour), Capacity: 5, CreatedBy: 2, Active: true},
	)

	t.Run("active ordered by date", func(t *testing.T) {
		got, err := repo.FindActive(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Past Workshop", "Jazz Night", "Later Go Talk", "100% Fun_Run"}, titles(got))
	})

	t.Run("upcoming excludes past", func(t *testing.T) {
		got, err := repo.FindUpcoming(ctx, base)
		require.NoError(t, err)
		assert.Equal(t, []string{"Jazz Night", "Later Go Talk", "100% Fun_Run"}, titles(got))
	})

	t.Run("search title and category case-insensitively", func(t *testing.T) {
		got, err := repo.Search(ctx, "GO")
		require.NoError(t, err)
		assert.Equal(t, []string{"Later Go Talk"}, titles(got))

		got, err = repo.Search(ctx, "tech")
		require.NoError(t, err)
		assert.Equal(t, []string{"Past Workshop", "Later Go Talk"}, titles(got))
	})

	t.Run("search treats wildcards literally", func(t *testing.T) {
		got, err := repo.Search(ctx, "%")
		require.NoError(t, err)
		assert.Equal(t, []string{"100% Fun_Run"}, titles(got))

		got, err = repo.Search(ctx, "z_n")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("category exact match", func(t *testing.T) {
		got, err := repo.FindByCategory(ctx, "TECH")
		require.NoError(t, err)
		assert.Equal(t, []string{"Past Workshop", "Later Go Talk"}, titles(got))

		got, err = repo.FindByCategory(ctx, "Te")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("owner", func(t *testing.T) {
		got, err := repo.FindByOwner(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, []string{"Jazz Night", "100% Fun_Run"}, titles(got))
	})
}

func TestEventGorm_UpdateDetails(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewEventRepository(gdb)
	ctx := context.Background()

	e := &entity.Event{Title: "Old", EventDate: base, Capacity: 10, CreatedBy: 1, Active: true}
	seed(t, repo, e)
	require.NoError(t, gdb.Model(&entity.Event{}).Where("id = ?", e.ID).Update("registered_count", 4).Error)

	t.Run("updates editable columns but not the counter", func(t *testing.T) {
		upd := *e
		upd.Title = "New"
		upd.Capacity = 4
		upd.RegisteredCount = 0
		require.NoError(t, repo.UpdateDetails(ctx, &upd))

		got, err := repo.FindByID(ctx, e.ID)
		require.NoError(t, err)
		assert.Equal(t, "New", got.Title)
		assert.Equal(t, 4, got.Capacity)
		assert.Equal(t, 4, got.RegisteredCount)
	})

	t.Run("capacity below counter is rejected", func(t *testing.T) {
		upd := *e
		upd.Capacity = 3
		assert.ErrorIs(t, repo.UpdateDetails(ctx, &upd), usecase.ErrCapacityBelowRegistered)
	})

	t.Run("missing event", func(t *testing.T) {
		upd := *e
		upd.ID = 999
		assert.ErrorIs(t, repo.UpdateDetails(ctx, &upd), usecase.ErrEventNotFound)
	})
}

func TestEventGorm_Deactivate(t *testing.T) {
	repo := NewEventRepository(setupTestDB(t))
	ctx := context.Background()

	e := &entity.Event{Title: "Soon Gone", EventDate: base, Capacity: 10, CreatedBy: 1, Active: true}
	seed(t, repo, e)

	require.NoError(t, repo.Deactivate(ctx, e.ID))

	got, err := repo.FindByID(ctx, e.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)

	active, err := repo.FindActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	assert.ErrorIs(t, repo.UpdateDetails(ctx, got), usecase.ErrEventNotFound)
	assert.ErrorIs(t, repo.Deactivate(ctx, 999), usecase.ErrEventNotFound)
}
