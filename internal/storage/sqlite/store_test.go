package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/storage"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "habitual.db"))
	require.NoError(t, store.Init(context.Background()))
	t.Cleanup(func() { store.Close() })
	return store
}

func habitAt(id string, created time.Time) models.Habit {
	return models.Habit{
		ID:        id,
		Name:      "Habit " + id,
		Frequency: models.FrequencyDaily,
		CreatedAt: created,
	}
}

func TestLoadBeforeInit(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.db"))
	err := store.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "habitual init")
}

func TestInitIsIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "habitual.db")

	store := NewStore(path)
	require.NoError(t, store.Init(ctx))
	require.NoError(t, store.Init(ctx))
	require.NoError(t, store.Close())

	reopened := NewStore(path)
	require.NoError(t, reopened.Load(ctx))
	defer reopened.Close()

	current, latest, err := reopened.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, latest, current)
	assert.Equal(t, 1, current)
}

func TestHabitsNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, store.InsertHabit(ctx, habitAt("a", base)))
	require.NoError(t, store.InsertHabit(ctx, habitAt("b", base.Add(time.Hour))))
	require.NoError(t, store.InsertHabit(ctx, habitAt("c", base.Add(30*time.Minute))))

	habits, err := store.ListHabits(ctx, "")
	require.NoError(t, err)
	require.Len(t, habits, 3)
	assert.Equal(t, "b", habits[0].ID)
	assert.Equal(t, "c", habits[1].ID)
	assert.Equal(t, "a", habits[2].ID)

	count, err := store.CountHabits(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestInsertHabitRejectsDuplicateID(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	h := habitAt("a", time.Now())

	require.NoError(t, store.InsertHabit(ctx, h))
	assert.Error(t, store.InsertHabit(ctx, h))
}

func TestUpsertCompletionKeepsOneRecordPerDay(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	day := models.MustParseDay("2024-03-05")

	first := models.Completion{ID: "c1", HabitID: "h1", Date: day, CompletedAt: time.Now(), Completed: true}
	require.NoError(t, store.UpsertCompletion(ctx, first))

	second := first
	second.ID = "c2"
	second.Completed = false
	require.NoError(t, store.UpsertCompletion(ctx, second))

	all, err := store.ListCompletions(ctx, "", nil)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.False(t, all[0].Completed)
	assert.Equal(t, "c1", all[0].ID, "replacement keeps the original record id")

	got, err := store.GetCompletion(ctx, "", "h1", day)
	require.NoError(t, err)
	assert.False(t, got.Completed)
}

func TestGetCompletionNotFound(t *testing.T) {
	store := setupTestStore(t)
	_, err := store.GetCompletion(context.Background(), "", "h1", models.MustParseDay("2024-03-05"))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestListCompletionsRangeAndOrder(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	for _, d := range []string{"2024-03-01", "2024-03-04", "2024-03-02", "2024-03-07"} {
		require.NoError(t, store.UpsertCompletion(ctx, models.Completion{
			ID: "c-" + d, HabitID: "h1", Date: models.MustParseDay(d), Completed: true,
		}))
	}

	all, err := store.ListCompletions(ctx, "", nil)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "2024-03-07", all[0].Date.String())
	assert.Equal(t, "2024-03-01", all[3].Date.String())

	window, err := store.ListCompletions(ctx, "", &models.DateRange{
		From: models.MustParseDay("2024-03-02"),
		To:   models.MustParseDay("2024-03-04"),
	})
	require.NoError(t, err)
	require.Len(t, window, 2)
	assert.Equal(t, "2024-03-04", window[0].Date.String())
	assert.Equal(t, "2024-03-02", window[1].Date.String())
}

func TestGuestTrialLifecycle(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	start, err := store.TrialStart(ctx)
	require.NoError(t, err)
	assert.Nil(t, start)

	first := time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC)
	require.NoError(t, store.StartTrial(ctx, first))
	// A second start does not move the trial forward
	require.NoError(t, store.StartTrial(ctx, first.Add(48*time.Hour)))

	start, err = store.TrialStart(ctx)
	require.NoError(t, err)
	require.NotNil(t, start)
	assert.True(t, first.Equal(*start))

	habits, err := store.ListHabits(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, habits)

	require.NoError(t, store.InsertHabit(ctx, habitAt("a", first)))
	require.NoError(t, store.Reset(ctx))

	start, err = store.TrialStart(ctx)
	require.NoError(t, err)
	assert.Nil(t, start)
	habits, err = store.ListHabits(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, habits)
}
