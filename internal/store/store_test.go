package store_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/extra-life-tools/donation-queue/internal/core"
	"github.com/extra-life-tools/donation-queue/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func donation(id string) core.DonationRecord {
	return core.DonationRecord{
		ID:        id,
		Name:      "Alice",
		Recipient: core.DefaultRecipient,
		Amount:    10,
		Message:   "good luck!",
		Avatar:    core.DefaultAvatarURL,
	}
}

func TestInsertIfAbsent_FirstWriteWins(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	inserted, err := s.InsertIfAbsent(ctx, donation("D1"))
	if err != nil {
		t.Fatalf("InsertIfAbsent() error = %v", err)
	}
	if !inserted {
		t.Fatal("InsertIfAbsent() = false, want true on first insert")
	}

	// Same id with different donor fields must be a no-op.
	changed := donation("D1")
	changed.Name = "Mallory"
	changed.Amount = 9999

	inserted, err = s.InsertIfAbsent(ctx, changed)
	if err != nil {
		t.Fatalf("InsertIfAbsent() retry error = %v", err)
	}
	if inserted {
		t.Fatal("InsertIfAbsent() = true on duplicate id, want false")
	}

	got, err := s.Get(ctx, "D1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Name != "Alice" || got.Amount != 10 {
		t.Errorf("stored record = %q/%v, want first-seen fields Alice/10", got.Name, got.Amount)
	}
}

func TestGet_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get(context.Background(), "missing")
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestApproveThenDeny_MutualExclusion(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	s.InsertIfAbsent(ctx, donation("D1"))

	if err := s.SetApproved(ctx, "D1", time.Now()); err != nil {
		t.Fatalf("SetApproved() error = %v", err)
	}
	if err := s.SetDenied(ctx, "D1"); err != nil {
		t.Fatalf("SetDenied() error = %v", err)
	}

	got, _ := s.Get(ctx, "D1")
	if got.Approved || !got.Denied {
		t.Errorf("after approve then deny: approved=%v denied=%v, want false/true", got.Approved, got.Denied)
	}
}

func TestDenyThenApprove_MutualExclusion(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	s.InsertIfAbsent(ctx, donation("D1"))

	if err := s.SetDenied(ctx, "D1"); err != nil {
		t.Fatalf("SetDenied() error = %v", err)
	}
	if err := s.SetApproved(ctx, "D1", time.Now()); err != nil {
		t.Fatalf("SetApproved() error = %v", err)
	}

	got, _ := s.Get(ctx, "D1")
	if !got.Approved || got.Denied {
		t.Errorf("after deny then approve: approved=%v denied=%v, want true/false", got.Approved, got.Denied)
	}
	if got.ApprovedAt == nil {
		t.Error("ApprovedAt not stamped on approval")
	}
}

func TestSetApproved_UnknownID(t *testing.T) {
	s := newTestStore(t)

	err := s.SetApproved(context.Background(), "missing", time.Now())
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("SetApproved() error = %v, want ErrNotFound", err)
	}
}

func TestSetShown_RequiresApproval(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	s.InsertIfAbsent(ctx, donation("D1"))

	err := s.SetShown(ctx, "D1")
	if !errors.Is(err, core.ErrNotApproved) {
		t.Fatalf("SetShown() on pending record error = %v, want ErrNotApproved", err)
	}

	got, _ := s.Get(ctx, "D1")
	if got.Shown {
		t.Error("Shown was set despite rejected transition")
	}

	if err := s.SetApproved(ctx, "D1", time.Now()); err != nil {
		t.Fatalf("SetApproved() error = %v", err)
	}
	if err := s.SetShown(ctx, "D1"); err != nil {
		t.Fatalf("SetShown() on approved record error = %v", err)
	}

	got, _ = s.Get(ctx, "D1")
	if !got.Shown {
		t.Error("Shown not set after approval")
	}
}

func TestSetShown_UnknownID(t *testing.T) {
	s := newTestStore(t)

	err := s.SetShown(context.Background(), "missing")
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("SetShown() error = %v, want ErrNotFound", err)
	}
}

func TestQueryByFlags(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.InsertIfAbsent(ctx, donation("pending"))
	s.InsertIfAbsent(ctx, donation("approved"))
	s.InsertIfAbsent(ctx, donation("denied"))
	s.SetApproved(ctx, "approved", time.Now())
	s.SetDenied(ctx, "denied")

	queue, err := s.QueryByFlags(ctx, core.QueueQuery())
	if err != nil {
		t.Fatalf("QueryByFlags() error = %v", err)
	}
	if len(queue) != 1 || queue[0].ID != "approved" {
		t.Errorf("queue query = %v, want exactly [approved]", queue)
	}

	pending, err := s.QueryByFlags(ctx, core.PendingQuery())
	if err != nil {
		t.Fatalf("QueryByFlags() error = %v", err)
	}
	if len(pending) != 1 || pending[0].ID != "pending" {
		t.Errorf("pending query = %v, want exactly [pending]", pending)
	}
}

func TestDeleteByIDPrefix(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.InsertIfAbsent(ctx, donation("TEST1"))
	s.InsertIfAbsent(ctx, donation("REAL1"))

	deleted, err := s.DeleteByIDPrefix(ctx, "TEST")
	if err != nil {
		t.Fatalf("DeleteByIDPrefix() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	if _, err := s.Get(ctx, "TEST1"); !errors.Is(err, core.ErrNotFound) {
		t.Error("TEST1 still present after purge")
	}
	if _, err := s.Get(ctx, "REAL1"); err != nil {
		t.Errorf("REAL1 removed by purge: %v", err)
	}
}

func TestClearAllAndCount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.InsertIfAbsent(ctx, donation("D1"))
	s.InsertIfAbsent(ctx, donation("D2"))

	n, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Count() = %d, want 2", n)
	}

	if err := s.ClearAll(ctx); err != nil {
		t.Fatalf("ClearAll() error = %v", err)
	}

	n, _ = s.Count(ctx)
	if n != 0 {
		t.Errorf("Count() after ClearAll = %d, want 0", n)
	}
}
