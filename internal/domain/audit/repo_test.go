package audit

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func addRecords(t *testing.T, repo *MemoryRepo, n int, resource string) {
	t.Helper()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		r := &Record{
			UserID:     fmt.Sprintf("u-%d", i%2),
			Resource:   resource,
			Path:       fmt.Sprintf("/api/%s/%d", resource, i),
			RecordedAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := repo.Create(context.Background(), r); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
}

func TestMemoryRepo_NewestFirst(t *testing.T) {
	repo := NewMemoryRepo(10)
	addRecords(t, repo, 3, "metrics")

	items, total, err := repo.List(context.Background(), Filter{}, 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 || len(items) != 3 {
		t.Fatalf("expected 3 records, got %d/%d", len(items), total)
	}
	if items[0].Path != "/api/metrics/2" || items[2].Path != "/api/metrics/0" {
		t.Errorf("expected newest first, got %s..%s", items[0].Path, items[2].Path)
	}
}

func TestMemoryRepo_RingDropsOldest(t *testing.T) {
	repo := NewMemoryRepo(3)
	addRecords(t, repo, 5, "agent")

	if repo.Len() != 3 {
		t.Fatalf("expected 3 held, got %d", repo.Len())
	}
	items, total, _ := repo.List(context.Background(), Filter{}, 10, 0)
	if total != 3 {
		t.Fatalf("expected total 3, got %d", total)
	}
	if items[0].Path != "/api/agent/4" || items[2].Path != "/api/agent/2" {
		t.Errorf("unexpected window %s..%s", items[0].Path, items[2].Path)
	}
}

func TestMemoryRepo_PaginationAndFilter(t *testing.T) {
	repo := NewMemoryRepo(0)
	addRecords(t, repo, 6, "metrics")
	addRecords(t, repo, 2, "agent")

	items, total, _ := repo.List(context.Background(), Filter{Resource: "metrics"}, 2, 2)
	if total != 6 {
		t.Errorf("expected 6 metrics records, got %d", total)
	}
	if len(items) != 2 || items[0].Path != "/api/metrics/3" {
		t.Errorf("unexpected page %+v", items)
	}

	items, total, _ = repo.List(context.Background(), Filter{UserID: "u-1", Resource: "agent"}, 10, 0)
	if total != 1 || items[0].Path != "/api/agent/1" {
		t.Errorf("unexpected filtered result total=%d", total)
	}

	items, _, _ = repo.List(context.Background(), Filter{}, 10, 100)
	if len(items) != 0 {
		t.Errorf("expected empty page past the end, got %d", len(items))
	}
}

func TestWhereClause(t *testing.T) {
	where, args := whereClause(Filter{})
	if where != "" || args != nil {
		t.Errorf("expected no clause, got %q %v", where, args)
	}

	where, args = whereClause(Filter{UserID: "u-1", Resource: "agent"})
	if where != " WHERE user_id = $1 AND resource = $2" {
		t.Errorf("unexpected clause %q", where)
	}
	if len(args) != 2 || args[0] != "u-1" || args[1] != "agent" {
		t.Errorf("unexpected args %v", args)
	}
}
