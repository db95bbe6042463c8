package runner

import (
	"context"
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"postbundle/internal/banks"
	"postbundle/internal/config"
	"postbundle/internal/errs"
	"postbundle/internal/journal"
	"postbundle/internal/logging"
	"postbundle/internal/runlock"
	"postbundle/internal/testsupport"
)

func testRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

func seedBanks(t *testing.T, cfg *config.Config, captions, hashtags string) {
	t.Helper()
	testsupport.WriteFile(t, cfg.CaptionBankPath(), []byte(captions))
	if hashtags != "" {
		testsupport.WriteFile(t, cfg.HashtagBankPath(), []byte(hashtags))
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestRunEndToEnd(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.SeedMedia(t, cfg.Paths.ImagesDir, "a.jpg", "b.jpg")
	testsupport.SeedMedia(t, cfg.Paths.VideosDir, "c.mp4", "d.mp4", "e.mp4")
	seedBanks(t, cfg,
		`[{"id": 1, "text": "Hi", "used": false}]`,
		`["#x", "#y", "#z"]`,
	)

	now := time.Date(2026, 5, 10, 14, 45, 0, 0, time.UTC)
	r := New(cfg, logging.NewNop(), WithRand(testRand(11)), WithClock(fixedClock(now)))

	result, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Outcome != journal.OutcomeSuccess {
		t.Fatalf("unexpected outcome: %+v", result)
	}
	if result.Images+result.Videos != 4 || result.Images < 1 || result.Images > 2 {
		t.Fatalf("expected mixed composition with 1 or 2 images, got %+v", result)
	}
	if filepath.Base(result.JobDir) != "2026-05-10_1445_UTC" {
		t.Fatalf("unexpected job dir: %q", result.JobDir)
	}

	entries, err := os.ReadDir(result.JobDir)
	if err != nil {
		t.Fatalf("read job dir: %v", err)
	}
	var media []string
	captionSeen := false
	for _, entry := range entries {
		if entry.Name() == "caption.txt" {
			captionSeen = true
			continue
		}
		media = append(media, entry.Name())
	}
	if !captionSeen {
		t.Fatal("caption artifact missing")
	}
	if len(media) != 4 {
		t.Fatalf("expected 4 media files, got %v", media)
	}

	data, err := os.ReadFile(filepath.Join(result.JobDir, "caption.txt"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected two lines, got %q", data)
	}
	if lines[0] != "Hi" {
		t.Fatalf("unexpected caption line: %q", lines[0])
	}
	// Bank of 3 forces pick-count 3; order is random.
	tags := strings.Fields(lines[1])
	sort.Strings(tags)
	if strings.Join(tags, " ") != "#x #y #z" {
		t.Fatalf("unexpected hashtag line: %q", lines[1])
	}

	// Rotation state persisted with the pick marked used.
	bank, err := banks.LoadCaptions(cfg.CaptionBankPath())
	if err != nil {
		t.Fatal(err)
	}
	if len(bank) != 1 || bank[0].ID != 1 || !bank[0].Used || bank[0].UsedAt == nil {
		t.Fatalf("caption bank not rotated: %+v", bank)
	}

	// Sources were moved, not copied.
	remaining, err := os.ReadDir(cfg.Paths.ImagesDir)
	if err != nil {
		t.Fatal(err)
	}
	videosLeft, err := os.ReadDir(cfg.Paths.VideosDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(remaining)+len(videosLeft) != 5-4 {
		t.Fatalf("expected exactly one source file left, images=%d videos=%d", len(remaining), len(videosLeft))
	}

	// Lock released.
	if _, err := os.Stat(cfg.LockPath()); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("lock record still present: %v", err)
	}
}

func TestRunSkipsWhenLockHeld(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}
	testsupport.WriteFile(t, cfg.LockPath(), []byte("4242\n2026-05-10T14:00:00Z\n"))

	r := New(cfg, logging.NewNop(),
		WithLockOptions(runlock.WithAliveProbe(func(pid int) bool { return true })),
	)
	result, err := r.Run(context.Background())
	if !errors.Is(err, errs.ErrLockHeld) {
		t.Fatalf("expected lock-held skip, got %v", err)
	}
	if result.Outcome != journal.OutcomeSkippedLock {
		t.Fatalf("unexpected outcome: %+v", result)
	}
	// The foreign record must survive the skipped run.
	data, readErr := os.ReadFile(cfg.LockPath())
	if readErr != nil || !strings.HasPrefix(string(data), "4242\n") {
		t.Fatalf("foreign lock record disturbed: %q %v", data, readErr)
	}
}

func TestRunSkipsOnInsufficientMedia(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.SeedMedia(t, cfg.Paths.ImagesDir, "a.jpg")
	testsupport.SeedMedia(t, cfg.Paths.VideosDir, "b.mp4")
	seedBanks(t, cfg, `["never touched"]`, "")

	r := New(cfg, logging.NewNop(), WithRand(testRand(1)))
	result, err := r.Run(context.Background())
	if !errors.Is(err, errs.ErrInsufficientMedia) {
		t.Fatalf("expected insufficient-media skip, got %v", err)
	}
	if result.Outcome != journal.OutcomeSkippedMedia {
		t.Fatalf("unexpected outcome: %+v", result)
	}

	// Zero side effects: no job dir, sources untouched, lock released.
	outbox, err := os.ReadDir(cfg.Paths.OutboxDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(outbox) != 0 {
		t.Fatalf("outbox should be empty, got %v", outbox)
	}
	if _, err := os.Stat(filepath.Join(cfg.Paths.ImagesDir, "a.jpg")); err != nil {
		t.Fatalf("source disturbed: %v", err)
	}
	if _, err := os.Stat(cfg.LockPath()); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("lock record still present: %v", err)
	}
}

func TestRunAbortsOnMalformedBankBeforePackaging(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.SeedMedia(t, cfg.Paths.ImagesDir, "a.jpg", "b.jpg", "c.jpg", "d.jpg")
	testsupport.WriteFile(t, cfg.CaptionBankPath(), []byte(`{"not": "a list"}`))

	r := New(cfg, logging.NewNop(), WithRand(testRand(2)))
	result, err := r.Run(context.Background())
	if !errors.Is(err, errs.ErrDataBank) {
		t.Fatalf("expected data error, got %v", err)
	}
	if result.Outcome != journal.OutcomeFailed {
		t.Fatalf("unexpected outcome: %+v", result)
	}

	// Nothing destructive happened: media untouched, no job dir, no bank rewrite.
	outbox, readErr := os.ReadDir(cfg.Paths.OutboxDir)
	if readErr != nil {
		t.Fatal(readErr)
	}
	if len(outbox) != 0 {
		t.Fatalf("no job dir should exist, got %v", outbox)
	}
	images, readErr := os.ReadDir(cfg.Paths.ImagesDir)
	if readErr != nil || len(images) != 4 {
		t.Fatalf("sources disturbed: %v %v", images, readErr)
	}
	data, readErr := os.ReadFile(cfg.CaptionBankPath())
	if readErr != nil || string(data) != `{"not": "a list"}` {
		t.Fatalf("bank rewritten despite data error: %q", data)
	}
	if _, err := os.Stat(cfg.LockPath()); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("lock must be released after failure")
	}
}

func TestRunEmptyHashtagBankStillSucceeds(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.SeedMedia(t, cfg.Paths.ImagesDir, "a.jpg", "b.jpg", "c.jpg", "d.jpg", "e.jpg")
	seedBanks(t, cfg, `["solo"]`, "")

	r := New(cfg, logging.NewNop(), WithRand(testRand(3)))
	result, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Images != 4 || result.Videos != 0 {
		t.Fatalf("expected all-image batch, got %+v", result)
	}

	data, err := os.ReadFile(filepath.Join(result.JobDir, "caption.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "solo\n\n" {
		t.Fatalf("expected empty hashtag line, got %q", data)
	}
}

func TestRunRecordsJournal(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := journal.Open(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	// No media: journaled as a media skip.
	seedBanks(t, cfg, `["unused"]`, "")
	r := New(cfg, logging.NewNop(), WithJournal(store))
	if _, err := r.Run(context.Background()); !errors.Is(err, errs.ErrInsufficientMedia) {
		t.Fatalf("expected skip, got %v", err)
	}

	records, err := store.Recent(context.Background(), 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("expected one journal record, got %d", len(records))
	}
	if records[0].Outcome != journal.OutcomeSkippedMedia || records[0].RunID == "" {
		t.Fatalf("unexpected record: %+v", records[0])
	}
}
