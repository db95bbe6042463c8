// Package runner sequences one publishing run: lock, scan, plan, select,
// package, persist.
package runner

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"postbundle/internal/banks"
	"postbundle/internal/compose"
	"postbundle/internal/config"
	"postbundle/internal/errs"
	"postbundle/internal/inventory"
	"postbundle/internal/journal"
	"postbundle/internal/logging"
	"postbundle/internal/packager"
	"postbundle/internal/runlock"
)

// Result summarizes one run for the caller and the journal.
type Result struct {
	RunID   string
	Outcome string
	JobDir  string
	Images  int
	Videos  int
}

// Runner executes the single-shot publishing pipeline.
type Runner struct {
	cfg      *config.Config
	logger   *slog.Logger
	journal  *journal.Store
	rng      *rand.Rand
	now      func() time.Time
	lockOpts []runlock.Option
}

// Option customizes runner construction.
type Option func(*Runner)

// WithRand injects a seedable random source so media, caption, and hashtag
// selection are reproducible.
func WithRand(rng *rand.Rand) Option {
	return func(r *Runner) {
		if rng != nil {
			r.rng = rng
		}
	}
}

// WithClock injects the time source used for job naming, caption rotation
// timestamps, and journal records.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// WithJournal records run outcomes in the given store.
func WithJournal(store *journal.Store) Option {
	return func(r *Runner) {
		r.journal = store
	}
}

// WithLockOptions forwards options to the run lock guard.
func WithLockOptions(opts ...runlock.Option) Option {
	return func(r *Runner) {
		r.lockOpts = append(r.lockOpts, opts...)
	}
}

// New constructs a runner over the given configuration.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *Runner {
	runner := &Runner{
		cfg:    cfg,
		logger: logging.WithComponent(logger, "runner"),
		rng:    rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), uint64(os.Getpid()))),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(runner)
	}
	return runner
}

// Run executes one pipeline pass. Benign skips (lock held, insufficient
// media) return an error satisfying errs.IsSkip; the lock is released on
// every path once acquired. The caption bank is rewritten only after all
// media have been moved and the caption artifact written.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	started := r.now()
	result := Result{RunID: uuid.NewString(), Outcome: journal.OutcomeFailed}
	logger := r.logger.With(logging.String(logging.FieldRunID, result.RunID))

	finish := func(err error) (Result, error) {
		r.record(ctx, logger, result, started, err)
		return result, err
	}

	if err := r.cfg.EnsureDirectories(); err != nil {
		return finish(errs.Wrap(errs.ErrFilesystem, "startup", "ensure directories", "", err))
	}

	guard := runlock.New(r.cfg.LockPath(), logger, r.lockOpts...)
	if err := guard.Acquire(); err != nil {
		if errs.IsSkip(err) {
			result.Outcome = journal.OutcomeSkippedLock
		}
		return finish(err)
	}
	defer guard.Release()

	images, videos, err := r.scan()
	if err != nil {
		return finish(err)
	}

	batch, ok := compose.Plan(len(images), len(videos), r.rng)
	if !ok {
		result.Outcome = journal.OutcomeSkippedMedia
		return finish(errs.Wrap(errs.ErrInsufficientMedia, "planning", "compose batch",
			"available media cannot fill a batch", nil))
	}
	result.Images = batch.Images
	result.Videos = batch.Videos

	// All bank validation happens before anything destructive.
	captionBank, err := banks.LoadCaptions(r.cfg.CaptionBankPath())
	if err != nil {
		return finish(err)
	}
	hashtagBank, err := banks.LoadHashtags(r.cfg.HashtagBankPath())
	if err != nil {
		return finish(err)
	}

	selected := compose.Sample(r.rng, images, batch.Images)
	selected = append(selected, compose.Sample(r.rng, videos, batch.Videos)...)

	caption, updatedBank, err := banks.PickCaption(captionBank, r.rng, r.now())
	if err != nil {
		return finish(err)
	}
	hashtags := banks.PickHashtags(hashtagBank, r.rng)

	location, err := r.cfg.Location()
	if err != nil {
		return finish(errs.Wrap(errs.ErrFilesystem, "packaging", "resolve timezone", "", err))
	}
	pack := packager.New(location, r.cfg.Timezone.Label, logger)

	jobDir, err := pack.CreateJobDir(r.cfg.Paths.OutboxDir, started)
	if err != nil {
		return finish(err)
	}
	result.JobDir = jobDir

	for _, file := range selected {
		if _, err := pack.Move(file, jobDir); err != nil {
			return finish(err)
		}
	}
	if _, err := pack.WriteCaptionFile(jobDir, caption, hashtags); err != nil {
		return finish(err)
	}

	// Rotation state persists last: a crash before this point leaves the
	// caption unmarked, never a half-written bank.
	if err := banks.SaveCaptions(r.cfg.CaptionBankPath(), updatedBank); err != nil {
		return finish(err)
	}

	result.Outcome = journal.OutcomeSuccess
	return finish(nil)
}

// scan walks the two media roots concurrently; the trees are disjoint.
func (r *Runner) scan() (images, videos []string, err error) {
	var wg sync.WaitGroup
	var imgErr, vidErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		images, imgErr = inventory.Scan(r.cfg.Paths.ImagesDir, inventory.ImageExtensions)
	}()
	go func() {
		defer wg.Done()
		videos, vidErr = inventory.Scan(r.cfg.Paths.VideosDir, inventory.VideoExtensions)
	}()
	wg.Wait()

	if imgErr != nil {
		return nil, nil, errs.Wrap(errs.ErrFilesystem, "scanning", "scan images", "", imgErr)
	}
	if vidErr != nil {
		return nil, nil, errs.Wrap(errs.ErrFilesystem, "scanning", "scan videos", "", vidErr)
	}
	return images, videos, nil
}

// record emits the single diagnostic line for the run outcome and appends
// it to the journal when one is attached.
func (r *Runner) record(ctx context.Context, logger *slog.Logger, result Result, started time.Time, runErr error) {
	finished := r.now()

	detail := ""
	switch {
	case runErr == nil:
		logger.Info("run completed",
			logging.String(logging.FieldOutcome, result.Outcome),
			logging.String(logging.FieldJobDir, result.JobDir),
			logging.Int("images", result.Images),
			logging.Int("videos", result.Videos),
		)
	case errs.IsSkip(runErr):
		detail = runErr.Error()
		logger.Info("run skipped",
			logging.String(logging.FieldOutcome, result.Outcome),
			logging.String("reason", detail),
		)
	default:
		detail = runErr.Error()
		logger.Error("run failed",
			logging.String(logging.FieldOutcome, result.Outcome),
			logging.Error(runErr),
		)
	}

	if r.journal == nil {
		return
	}
	record := journal.RunRecord{
		RunID:      result.RunID,
		StartedAt:  started,
		FinishedAt: finished,
		Outcome:    result.Outcome,
		Detail:     detail,
		JobDir:     result.JobDir,
		Images:     result.Images,
		Videos:     result.Videos,
	}
	if err := r.journal.Record(ctx, record); err != nil {
		logger.Warn("failed to journal run outcome", logging.Error(err))
	}
}
