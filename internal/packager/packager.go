// Package packager materializes one job: the timestamped output
// directory, the moved media files, and the caption artifact.
package packager

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"postbundle/internal/errs"
	"postbundle/internal/logging"
)

const (
	dirAttempts  = 100
	fileAttempts = 10000

	captionFileName = "caption.txt"
)

// Packager writes job artifacts under the outbox using one fixed civil
// timezone for folder naming.
type Packager struct {
	location *time.Location
	label    string
	logger   *slog.Logger
}

// New constructs a packager that names job folders in the given zone with
// the zone's fixed label suffix.
func New(location *time.Location, label string, logger *slog.Logger) *Packager {
	return &Packager{
		location: location,
		label:    label,
		logger:   logging.WithComponent(logger, "packager"),
	}
}

// CreateJobDir creates the output directory for a job started at ts. The
// name renders the timestamp's calendar fields in the packager's zone plus
// the zone label; a collision within the same minute gets a zero-padded
// numeric suffix. The exclusive mkdir itself is the collision test, so
// there is no stat-then-create window.
func (p *Packager) CreateJobDir(root string, ts time.Time) (string, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return "", errs.Wrap(errs.ErrFilesystem, "packaging", "ensure outbox", root, err)
	}

	base := ts.In(p.location).Format("2006-01-02_1504") + "_" + p.label
	for attempt := 1; attempt <= dirAttempts; attempt++ {
		name := base
		if attempt > 1 {
			name = fmt.Sprintf("%s-%02d", base, attempt)
		}
		candidate := filepath.Join(root, name)
		err := os.Mkdir(candidate, 0o755)
		if err == nil {
			return candidate, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", errs.Wrap(errs.ErrFilesystem, "packaging", "create job directory", candidate, err)
		}
	}
	return "", errs.Wrap(errs.ErrFilesystem, "packaging", "create job directory",
		fmt.Sprintf("exhausted name slots for %s in %s", base, root), nil)
}

// Move places src inside dstDir under its base name, resolving name
// collisions with a numeric suffix before the extension. The destination
// name is claimed with an exclusive create so an existing file is never
// overwritten; the claimed placeholder is then replaced by an atomic
// rename, or by a copy when the source lives on another device.
func (p *Packager) Move(src, dstDir string) (string, error) {
	dst, err := claimName(dstDir, filepath.Base(src))
	if err != nil {
		return "", errs.Wrap(errs.ErrFilesystem, "packaging", "claim destination name", src, err)
	}

	if renameErr := os.Rename(src, dst); renameErr != nil {
		if !isCrossDevice(renameErr) {
			_ = os.Remove(dst)
			return "", errs.Wrap(errs.ErrFilesystem, "packaging", "move file", src, renameErr)
		}
		if copyErr := copyInto(src, dst); copyErr != nil {
			_ = os.Remove(dst)
			return "", errs.Wrap(errs.ErrFilesystem, "packaging", "copy file across devices", src, copyErr)
		}
		if err := os.Remove(src); err != nil {
			p.logger.Warn("failed to remove source after cross-device copy",
				logging.String("source", src), logging.Error(err))
		}
	}
	return dst, nil
}

// WriteCaptionFile writes the two-line caption artifact: the caption text,
// then the hashtags space-joined. The second line is present and empty
// when there are no hashtags.
func (p *Packager) WriteCaptionFile(jobDir, caption string, hashtags []string) (string, error) {
	path := filepath.Join(jobDir, captionFileName)
	content := caption + "\n" + strings.Join(hashtags, " ") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", errs.Wrap(errs.ErrFilesystem, "packaging", "write caption artifact", path, err)
	}
	return path, nil
}

// claimName reserves a destination filename via exclusive create and
// returns it. The empty placeholder belongs to the caller, which either
// renames over it or fills it by copy.
func claimName(dir, base string) (string, error) {
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	for attempt := 1; attempt <= fileAttempts; attempt++ {
		name := base
		if attempt > 1 {
			name = fmt.Sprintf("%s-%02d%s", stem, attempt, ext)
		}
		candidate := filepath.Join(dir, name)
		file, err := os.OpenFile(candidate, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			if err := file.Close(); err != nil {
				return "", err
			}
			return candidate, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", err
		}
	}
	return "", fmt.Errorf("exhausted name slots for %s in %s", base, dir)
}

func isCrossDevice(err error) bool {
	var linkErr *os.LinkError
	return errors.As(err, &linkErr) && errors.Is(linkErr.Err, unix.EXDEV)
}

func copyInto(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
