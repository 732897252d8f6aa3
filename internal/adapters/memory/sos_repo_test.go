package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/samirrijal/minarah/internal/adapters/memory"
	"github.com/samirrijal/minarah/internal/core/domain"
)

func seed(t *testing.T, repo *memory.SOSRepo, id string) {
	t.Helper()
	req := &domain.SOSRequest{ID: id, Name: "n", Location: "l", Province: "Sindh", Area: "Sukkur",
		Priority: domain.UrgencyHigh, Status: domain.StatusPending}
	if err := repo.Create(context.Background(), req); err != nil {
		t.Fatalf("create: %v", err)
	}
}

func TestSOSRepo_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewSOSRepo(nil)
	seed(t, repo, "s1")

	if _, err := repo.Resolve(ctx, "s1"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("resolve pending: expected ErrInvalidTransition, got %v", err)
	}

	changed, err := repo.Assign(ctx, "s1", "t1")
	if err != nil || !changed {
		t.Fatalf("assign: changed=%v err=%v", changed, err)
	}
	changed, err = repo.Assign(ctx, "s1", "t1")
	if err != nil || changed {
		t.Fatalf("repeat assign: changed=%v err=%v", changed, err)
	}
	changed, err = repo.Assign(ctx, "s1", "t2")
	if err != nil || !changed {
		t.Fatalf("reassign: changed=%v err=%v", changed, err)
	}

	got, _ := repo.GetByID(ctx, "s1")
	if got.Status != domain.StatusAssigned || got.RescueTeam == nil || *got.RescueTeam != "t2" {
		t.Fatalf("unexpected state after reassign: %+v", got)
	}

	changed, err = repo.Resolve(ctx, "s1")
	if err != nil || !changed {
		t.Fatalf("resolve: changed=%v err=%v", changed, err)
	}
	changed, err = repo.Resolve(ctx, "s1")
	if err != nil || changed {
		t.Fatalf("repeat resolve: changed=%v err=%v", changed, err)
	}
	if _, err := repo.Assign(ctx, "s1", "t3"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("assign rescued: expected ErrInvalidTransition, got %v", err)
	}
}

func TestSOSRepo_UnknownID(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewSOSRepo(nil)

	if _, err := repo.Assign(ctx, "nope", "t1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("assign: expected ErrNotFound, got %v", err)
	}
	if _, err := repo.Resolve(ctx, "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("resolve: expected ErrNotFound, got %v", err)
	}
	if _, err := repo.GetByID(ctx, "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("get: expected ErrNotFound, got %v", err)
	}
}

func TestSOSRepo_ListByAreaCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewSOSRepo(nil)
	seed(t, repo, "s1")

	got, err := repo.ListByArea(ctx, "SINDH", "sukkur")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 match, got %d", len(got))
	}
	got, _ = repo.ListByArea(ctx, "Punjab", "")
	if len(got) != 0 {
		t.Fatalf("expected no match, got %d", len(got))
	}
}

func TestSOSRepo_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewSOSRepo(nil)
	seed(t, repo, "s1")
	_, _ = repo.Assign(ctx, "s1", "t1")

	got, _ := repo.GetByID(ctx, "s1")
	*got.RescueTeam = "mutated"

	again, _ := repo.GetByID(ctx, "s1")
	if *again.RescueTeam != "t1" {
		t.Fatalf("repo state leaked through returned pointer: %s", *again.RescueTeam)
	}
}

func TestSOSRepo_StampsUpdatesFromClock(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(time.Date(2022, 8, 27, 8, 0, 0, 0, time.UTC))
	repo := memory.NewSOSRepo(clock)
	seed(t, repo, "s1")

	clock.Advance(10 * time.Minute)
	if _, err := repo.Assign(ctx, "s1", "t1"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	got, _ := repo.GetByID(ctx, "s1")
	if want := clock.Now().UTC(); !got.UpdatedAt.Equal(want) {
		t.Errorf("assign: expected updated_at %v, got %v", want, got.UpdatedAt)
	}

	clock.Advance(time.Hour)
	if _, err := repo.Resolve(ctx, "s1"); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	got, _ = repo.GetByID(ctx, "s1")
	if want := clock.Now().UTC(); !got.UpdatedAt.Equal(want) {
		t.Errorf("resolve: expected updated_at %v, got %v", want, got.UpdatedAt)
	}
}
