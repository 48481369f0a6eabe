package repo

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/DheerG/LogicPull/internal/models"
	"github.com/DheerG/LogicPull/internal/pkg/store"
	"github.com/DheerG/LogicPull/pkg/fault"
)

// setupDB connects to the database named by TEST_DATABASE_URL and
// bootstraps the schema. Tests that need a real store skip when no
// database is reachable.
func setupDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		t.Skipf("test database unreachable: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := store.CreateSchema(db); err != nil {
		t.Fatalf("bootstrapping schema: %v", err)
	}
	if _, err := db.Exec("DELETE FROM interviews"); err != nil {
		t.Fatalf("clearing interviews: %v", err)
	}
	return db
}

func TestRetryOnCollision(t *testing.T) {
	collide := func() (*models.Interview, error) { return nil, fault.ErrUniqueViolation }

	t.Run("recovers after losing the race", func(t *testing.T) {
		attempts := 0
		iv, err := retryOnCollision(createRetries, func() (*models.Interview, error) {
			attempts++
			if attempts < 3 {
				return collide()
			}
			return &models.Interview{ID: 12}, nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if iv.ID != 12 || attempts != 3 {
			t.Errorf("got id %d after %d attempts", iv.ID, attempts)
		}
	})

	t.Run("gives up after bounded attempts", func(t *testing.T) {
		attempts := 0
		_, err := retryOnCollision(createRetries, func() (*models.Interview, error) {
			attempts++
			return collide()
		})
		if !fault.IsConflict(err) {
			t.Errorf("expected a conflict, got %v", err)
		}
		if attempts != createRetries {
			t.Errorf("expected %d attempts, got %d", createRetries, attempts)
		}
	})

	t.Run("other failures propagate immediately", func(t *testing.T) {
		attempts := 0
		_, err := retryOnCollision(createRetries, func() (*models.Interview, error) {
			attempts++
			return nil, fault.Store("inserting interview", nil)
		})
		if err == nil || attempts != 1 {
			t.Errorf("expected one failed attempt, got %d with %v", attempts, err)
		}
	})
}

func TestRekeyDeliverables(t *testing.T) {
	src := models.DeliverableList{
		{ID: "d1", Name: "retainer.pdf", Path: "uploads/deliverables/intake-3/retainer.pdf"},
		{ID: "d2", Name: "summary.pdf", Path: "uploads/deliverables/intake-3/summary.pdf"},
	}

	out := rekeyDeliverables(src, "intake_copy", 9)

	if len(out) != len(src) {
		t.Fatalf("expected %d descriptors, got %d", len(src), len(out))
	}
	for i, file := range out {
		want := "uploads/deliverables/intake_copy-9/" + file.Name
		if file.Path != want {
			t.Errorf("descriptor %d: path %q, want %q", i, file.Path, want)
		}
		if file.ID != src[i].ID || file.Name != src[i].Name {
			t.Errorf("descriptor %d: id/name changed: %+v", i, file)
		}
	}
	if src[0].Path != "uploads/deliverables/intake-3/retainer.pdf" {
		t.Error("source descriptors must not be mutated")
	}

	if got := rekeyDeliverables(nil, "x", 1); len(got) != 0 {
		t.Errorf("expected empty list for nil source, got %v", got)
	}
}

func TestCreate_ConcurrentIDsDistinct(t *testing.T) {
	db := setupDB(t)
	repo := NewInterviews(db)

	const n = 16
	ids := make(chan int, n)
	errs := make(chan error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			iv, err := repo.Create(context.Background(), Draft{
				Name:        "load_test",
				Description: "Concurrent create",
				Creator:     1,
				Group:       i,
			})
			if err != nil {
				errs <- err
				return
			}
			ids <- iv.ID
		}(i)
	}
	wg.Wait()
	close(ids)
	close(errs)

	for err := range errs {
		t.Errorf("create failed: %v", err)
	}

	seen := map[int]bool{}
	for id := range ids {
		if seen[id] {
			t.Errorf("id %d handed out twice", id)
		}
		seen[id] = true
	}
	if len(seen) != n {
		t.Errorf("expected %d distinct ids, got %d", n, len(seen))
	}
}

func TestClone_CopiesGraphAndSettings(t *testing.T) {
	db := setupDB(t)
	repo := NewInterviews(db)
	ctx := context.Background()

	src, err := repo.Create(ctx, Draft{Name: "intake", Description: "Intake", Creator: 1, Group: 2})
	if err != nil {
		t.Fatal(err)
	}
	if err := repo.SetOnComplete(ctx, src.ID, models.OnComplete{
		EmailDeliverablesToClient: true,
		EmailNotification:         "ops@example.com",
	}); err != nil {
		t.Fatal(err)
	}
	src, err = repo.GetByID(ctx, src.ID)
	if err != nil {
		t.Fatal(err)
	}

	clone, err := repo.Clone(ctx, src, Draft{Name: "intake_copy", Description: "Copy", Creator: 1, Group: 2})
	if err != nil {
		t.Fatal(err)
	}
	if clone.ID == src.ID {
		t.Error("clone must get its own id")
	}

	got, err := repo.GetByID(ctx, clone.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Start != src.Start || len(got.Data) != len(src.Data) {
		t.Errorf("graph not copied: start %q, %d nodes", got.Start, len(got.Data))
	}
	if got.OnComplete.EmailNotification != "ops@example.com" {
		t.Errorf("on_complete not copied: %+v", got.OnComplete)
	}
	if got.Locked || got.Live || got.Disabled {
		t.Errorf("lifecycle flags must reset on clone: %+v", got)
	}
}

func TestUpdate_MissingInterviewIsNotFound(t *testing.T) {
	db := setupDB(t)
	repo := NewInterviews(db)

	err := repo.SetLocked(context.Background(), 999999, true)
	if !fault.IsNotFound(err) {
		t.Errorf("expected not-found for a vanished row, got %v", err)
	}
}
