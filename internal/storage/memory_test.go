package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestMemoryStoreOrderingAndIdempotency(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		if err := s.SaveReport(ctx, sampleReport(id, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatal(err)
		}
	}
	dup := sampleReport("a", base.Add(time.Hour))
	dup.Source = "changed"
	if err := s.SaveReport(ctx, dup); err != nil {
		t.Fatal(err)
	}

	got, err := s.ListReports(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[0].ID != "c" || got[2].ID != "a" {
		t.Fatalf("order = %v", ids(got))
	}
	if got[2].Source == "changed" {
		t.Error("second save of the same id must not overwrite")
	}

	if _, err := s.GetReport(ctx, "missing"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetReport(missing) = %v", err)
	}
	if err := s.SaveReport(ctx, sampleReport("", base)); err == nil {
		t.Error("expected error for empty id")
	}
}

func TestMemoryStoreCapacity(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(2)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		if err := s.SaveReport(ctx, sampleReport(fmt.Sprintf("r%d", i), base.Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatal(err)
		}
	}
	if s.Len() != 2 {
		t.Fatalf("Len = %d", s.Len())
	}
	got, _ := s.ListReports(ctx, 10)
	if got[0].ID != "r4" || got[1].ID != "r3" {
		t.Errorf("kept = %v", ids(got))
	}
	// An evicted id can be stored again.
	if err := s.SaveReport(ctx, sampleReport("r0", base.Add(time.Hour))); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.GetReport(ctx, "r0"); got.ID != "r0" {
		t.Error("evicted id should be accepted again")
	}
}
