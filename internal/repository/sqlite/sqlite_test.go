package sqlite

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"
	"testing"

	"log/slog"

	hikedb "github.com/garnizeh/hikelog/db"
	"github.com/garnizeh/hikelog/internal/db"
	"github.com/garnizeh/hikelog/pkg/models"
)

var dbSeq atomic.Int64

// setupRepo opens a fresh in-memory database, runs the migrations and seeds
// one user to own the test data.
func setupRepo(t *testing.T) (*SQLiteRepo, int64) {
	t.Helper()
	ctx := context.Background()

	dsn := fmt.Sprintf("file:test%d?mode=memory&cache=shared", dbSeq.Add(1))
	conn, err := db.New(ctx, dsn, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.Migrate(ctx, conn, hikedb.Migrations); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	repo := New(conn, nil)
	userID, err := repo.CreateUser(ctx, &models.User{
		Name:         "Test Hiker",
		Email:        "hiker@example.com",
		PasswordHash: "x",
		CreatedAt:    models.Timestamp(),
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}

	return repo, userID
}

func insertHike(t *testing.T, repo *SQLiteRepo, userID int64, h models.Hike) int64 {
	t.Helper()
	h.UserID = userID
	if h.CreatedAt == "" {
		h.CreatedAt = models.Timestamp()
	}
	if h.LastUpdated == "" {
		h.LastUpdated = h.CreatedAt
	}
	if h.Difficulty == "" {
		h.Difficulty = models.DifficultyEasy
	}
	id, err := repo.InsertHike(context.Background(), &h)
	if err != nil {
		t.Fatalf("insert hike: %v", err)
	}
	return id
}

func insertObservation(t *testing.T, repo *SQLiteRepo, hikeID int64, o models.Observation) int64 {
	t.Helper()
	o.HikeID = hikeID
	if o.CreatedAt == "" {
		o.CreatedAt = models.Timestamp()
	}
	if o.LastUpdated == "" {
		o.LastUpdated = o.CreatedAt
	}
	id, err := repo.InsertObservation(context.Background(), &o)
	if err != nil {
		t.Fatalf("insert observation: %v", err)
	}
	return id
}

func TestHikeRoundTrip(t *testing.T) {
	repo, userID := setupRepo(t)
	ctx := context.Background()

	id := insertHike(t, repo, userID, models.Hike{
		Name:              "Ridge Loop",
		Location:          "North Park",
		Latitude:          47.5,
		Longitude:         -122.2,
		HikeDate:          "2026-05-01",
		ParkingAvailable:  true,
		Length:            12.5,
		Difficulty:        models.DifficultyHard,
		Description:       "steep start",
		WeatherCondition:  "Sunny",
		Temperature:       18.5,
		EstimatedDuration: 4,
	})

	got, err := repo.GetHikeByID(ctx, id)
	if err != nil {
		t.Fatalf("GetHikeByID: %v", err)
	}
	if got == nil {
		t.Fatal("hike not found")
	}
	if got.Name != "Ridge Loop" || got.Length != 12.5 || !got.ParkingAvailable {
		t.Errorf("unexpected hike: %+v", got)
	}
	if got.Temperature != 18.5 || got.EstimatedDuration != 4 {
		t.Errorf("numeric fields: %v %v", got.Temperature, got.EstimatedDuration)
	}
}

func TestGetHikeByIDMissing(t *testing.T) {
	repo, _ := setupRepo(t)

	got, err := repo.GetHikeByID(context.Background(), 12345)
	if err != nil {
		t.Fatalf("GetHikeByID: %v", err)
	}
	if got != nil {
		t.Errorf("want nil for a missing row, got %+v", got)
	}
}

func TestUpdateHike(t *testing.T) {
	repo, userID := setupRepo(t)
	ctx := context.Background()

	id := insertHike(t, repo, userID, models.Hike{Name: "Old Name"})

	h, _ := repo.GetHikeByID(ctx, id)
	h.Name = "New Name"
	h.Length = 8
	h.Touch()
	if err := repo.UpdateHike(ctx, h); err != nil {
		t.Fatalf("UpdateHike: %v", err)
	}

	got, _ := repo.GetHikeByID(ctx, id)
	if got.Name != "New Name" || got.Length != 8 {
		t.Errorf("update not persisted: %+v", got)
	}
}

func TestSoftDeleteVisibility(t *testing.T) {
	repo, userID := setupRepo(t)
	ctx := context.Background()

	id := insertHike(t, repo, userID, models.Hike{Name: "Quarry Path"})

	ts := "2026-06-01 10:00:00"
	if err := repo.SoftDeleteHike(ctx, id, ts); err != nil {
		t.Fatalf("SoftDeleteHike: %v", err)
	}

	got, err := repo.GetHikeByID(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Error("deleted hike visible through the default lookup")
	}

	got, err = repo.GetHikeByIDIncludingDeleted(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("deleted hike missing from the including-deleted lookup")
	}
	if !got.IsDeleted || got.LastUpdated != ts {
		t.Errorf("deleted row = %+v", got)
	}
}

func TestRestoreHike(t *testing.T) {
	repo, userID := setupRepo(t)
	ctx := context.Background()

	id := insertHike(t, repo, userID, models.Hike{Name: "Comeback Trail"})
	if err := repo.SoftDeleteHike(ctx, id, models.Timestamp()); err != nil {
		t.Fatal(err)
	}
	if err := repo.RestoreHike(ctx, id, models.Timestamp()); err != nil {
		t.Fatalf("RestoreHike: %v", err)
	}

	got, _ := repo.GetHikeByID(ctx, id)
	if got == nil || got.IsDeleted {
		t.Error("restored hike not visible")
	}
}

func TestListHikesByUserExcludesDeleted(t *testing.T) {
	repo, userID := setupRepo(t)
	ctx := context.Background()

	insertHike(t, repo, userID, models.Hike{Name: "Keep", HikeDate: "2026-05-01"})
	deleted := insertHike(t, repo, userID, models.Hike{Name: "Drop", HikeDate: "2026-05-02"})
	repo.SoftDeleteHike(ctx, deleted, models.Timestamp())

	otherUser, _ := repo.CreateUser(ctx, &models.User{Name: "Other", Email: "other@example.com", PasswordHash: "x", CreatedAt: models.Timestamp()})
	insertHike(t, repo, otherUser, models.Hike{Name: "Theirs"})

	hikes, err := repo.ListHikesByUser(ctx, userID)
	if err != nil {
		t.Fatal(err)
	}
	if len(hikes) != 1 || hikes[0].Name != "Keep" {
		t.Errorf("hikes = %+v", hikes)
	}
}

func TestSearchHikes(t *testing.T) {
	repo, userID := setupRepo(t)
	ctx := context.Background()

	insertHike(t, repo, userID, models.Hike{Name: "Creek Trail", Length: 5})
	insertHike(t, repo, userID, models.Hike{Name: "Ridge Loop", Length: 12})
	insertHike(t, repo, userID, models.Hike{Name: "Creekside Walk", Length: 3})

	byName, err := repo.SearchHikesByName(ctx, userID, "creek")
	if err != nil {
		t.Fatal(err)
	}
	if len(byName) != 2 {
		t.Errorf("name search returned %d hikes, want 2", len(byName))
	}

	byLength, err := repo.SearchHikesByLengthRange(ctx, userID, 4, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(byLength) != 1 || byLength[0].Name != "Creek Trail" {
		t.Errorf("length search = %+v", byLength)
	}
}

func TestObservationOrdering(t *testing.T) {
	repo, userID := setupRepo(t)
	ctx := context.Background()

	hikeID := insertHike(t, repo, userID, models.Hike{Name: "Dawn Walk"})

	// inserted out of order; listing must sort by observation_time
	insertObservation(t, repo, hikeID, models.Observation{ObservationText: "noon", ObservationTime: "2026-05-01 12:00:00"})
	insertObservation(t, repo, hikeID, models.Observation{ObservationText: "sunrise", ObservationTime: "2026-05-01 06:00:00"})
	insertObservation(t, repo, hikeID, models.Observation{ObservationText: "morning", ObservationTime: "2026-05-01 09:00:00"})

	obs, err := repo.ListObservationsByHike(ctx, hikeID)
	if err != nil {
		t.Fatal(err)
	}
	if len(obs) != 3 {
		t.Fatalf("len = %d, want 3", len(obs))
	}
	want := []string{"sunrise", "morning", "noon"}
	for i, w := range want {
		if obs[i].ObservationText != w {
			t.Errorf("obs[%d] = %q, want %q", i, obs[i].ObservationText, w)
		}
	}
}

func TestSoftDeleteObservationsByHikeSharedTimestamp(t *testing.T) {
	repo, userID := setupRepo(t)
	ctx := context.Background()

	hikeID := insertHike(t, repo, userID, models.Hike{Name: "Bog Walk"})
	insertObservation(t, repo, hikeID, models.Observation{ObservationText: "a", ObservationTime: "2026-05-01 08:00:00"})
	insertObservation(t, repo, hikeID, models.Observation{ObservationText: "b", ObservationTime: "2026-05-01 09:00:00"})

	ts := "2026-06-01 18:30:00"
	if err := repo.SoftDeleteHike(ctx, hikeID, ts); err != nil {
		t.Fatal(err)
	}
	if err := repo.SoftDeleteObservationsByHike(ctx, hikeID, ts); err != nil {
		t.Fatal(err)
	}

	if visible, _ := repo.ListObservationsByHike(ctx, hikeID); len(visible) != 0 {
		t.Errorf("deleted observations still visible: %+v", visible)
	}

	all, err := repo.ListObservationsByHikeIncludingDeleted(ctx, hikeID)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("len = %d, want 2", len(all))
	}
	h, _ := repo.GetHikeByIDIncludingDeleted(ctx, hikeID)
	for _, o := range all {
		if !o.IsDeleted {
			t.Errorf("observation %d not deleted", o.ID)
		}
		if o.LastUpdated != ts || h.LastUpdated != ts {
			t.Errorf("cascade timestamps differ: hike %q obs %q", h.LastUpdated, o.LastUpdated)
		}
	}
}

func TestCountAndSearchObservations(t *testing.T) {
	repo, userID := setupRepo(t)
	ctx := context.Background()

	hikeID := insertHike(t, repo, userID, models.Hike{Name: "Wetland Loop"})
	insertObservation(t, repo, hikeID, models.Observation{ObservationText: "heron at the bend", ObservationTime: "2026-05-01 08:00:00"})
	deleted := insertObservation(t, repo, hikeID, models.Observation{ObservationText: "heron again", ObservationTime: "2026-05-01 09:00:00"})
	repo.SoftDeleteObservation(ctx, deleted, models.Timestamp())

	count, err := repo.CountObservationsByHike(ctx, hikeID)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}

	found, err := repo.SearchObservations(ctx, "heron")
	if err != nil {
		t.Fatal(err)
	}
	if len(found) != 1 || found[0].ObservationText != "heron at the bend" {
		t.Errorf("search = %+v", found)
	}
}

func TestUserStore(t *testing.T) {
	repo, userID := setupRepo(t)
	ctx := context.Background()

	u, err := repo.GetUserByEmail(ctx, "hiker@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if u == nil || u.ID != userID {
		t.Errorf("user = %+v", u)
	}

	missing, err := repo.GetUserByEmail(ctx, "nobody@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if missing != nil {
		t.Errorf("want nil for a missing user, got %+v", missing)
	}
}

func TestChatStore(t *testing.T) {
	repo, userID := setupRepo(t)
	ctx := context.Background()

	repo.SaveChatMessage(ctx, &models.ChatMessage{UserID: userID, Message: "how far did I walk?", FromUser: true, CreatedAt: "2026-05-01 10:00:00"})
	repo.SaveChatMessage(ctx, &models.ChatMessage{UserID: userID, Message: "12.5 km in total", FromUser: false, CreatedAt: "2026-05-01 10:00:01"})

	msgs, err := repo.ListChatMessages(ctx, userID)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 2 {
		t.Fatalf("len = %d, want 2", len(msgs))
	}
	if !msgs[0].FromUser || msgs[1].FromUser {
		t.Errorf("order wrong: %+v", msgs)
	}

	if err := repo.ClearChatHistory(ctx, userID); err != nil {
		t.Fatal(err)
	}
	msgs, _ = repo.ListChatMessages(ctx, userID)
	if len(msgs) != 0 {
		t.Errorf("history not cleared: %+v", msgs)
	}
}

func TestUserStats(t *testing.T) {
	repo, userID := setupRepo(t)
	ctx := context.Background()

	h1 := insertHike(t, repo, userID, models.Hike{Name: "A", Length: 5, Difficulty: models.DifficultyEasy})
	insertHike(t, repo, userID, models.Hike{Name: "B", Length: 7, Difficulty: models.DifficultyHard})
	deleted := insertHike(t, repo, userID, models.Hike{Name: "C", Length: 100, Difficulty: models.DifficultyEasy})
	repo.SoftDeleteHike(ctx, deleted, models.Timestamp())

	insertObservation(t, repo, h1, models.Observation{ObservationText: "x", ObservationTime: "2026-05-01 08:00:00"})

	stats, err := repo.UserStats(ctx, userID)
	if err != nil {
		t.Fatal(err)
	}
	if stats.HikeCount != 2 {
		t.Errorf("HikeCount = %d, want 2", stats.HikeCount)
	}
	if stats.TotalLengthKm != 12 {
		t.Errorf("TotalLengthKm = %v, want 12", stats.TotalLengthKm)
	}
	if stats.ObservationCount != 1 {
		t.Errorf("ObservationCount = %d, want 1", stats.ObservationCount)
	}
	if stats.ByDifficulty[models.DifficultyEasy] != 1 || stats.ByDifficulty[models.DifficultyHard] != 1 {
		t.Errorf("ByDifficulty = %+v", stats.ByDifficulty)
	}
}
