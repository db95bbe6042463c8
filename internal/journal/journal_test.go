package journal

import (
	"context"
	"testing"
	"time"

	"postbundle/internal/testsupport"
)

func TestRecordAndRecent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	base := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

	runs := []RunRecord{
		{RunID: "run-1", StartedAt: base, FinishedAt: base.Add(2 * time.Second), Outcome: OutcomeSkippedMedia, Detail: "insufficient media"},
		{RunID: "run-2", StartedAt: base.Add(time.Hour), FinishedAt: base.Add(time.Hour + 3*time.Second), Outcome: OutcomeSuccess, JobDir: "/outbox/2026-04-01_1100_CET", Images: 2, Videos: 2},
	}
	for _, run := range runs {
		if err := store.Record(ctx, run); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	records, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	// Newest first.
	if records[0].RunID != "run-2" || records[1].RunID != "run-1" {
		t.Fatalf("unexpected order: %+v", records)
	}
	if records[0].Images != 2 || records[0].Videos != 2 {
		t.Fatalf("counts lost: %+v", records[0])
	}
	if !records[0].StartedAt.Equal(base.Add(time.Hour)) {
		t.Fatalf("timestamp round trip failed: %v", records[0].StartedAt)
	}
	if records[1].Outcome != OutcomeSkippedMedia {
		t.Fatalf("unexpected outcome: %+v", records[1])
	}
}

func TestRecentLimit(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	now := time.Now()
	for i := 0; i < 5; i++ {
		record := RunRecord{RunID: "run", StartedAt: now, FinishedAt: now, Outcome: OutcomeFailed}
		if err := store.Record(ctx, record); err != nil {
			t.Fatal(err)
		}
	}

	records, err := store.Recent(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Fatalf("expected limit of 3, got %d", len(records))
	}
}
