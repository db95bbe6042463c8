// Package errs defines the sentinel error markers and wrapping helper the
// run pipeline uses to classify outcomes for exit-code mapping.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrLockHeld marks a benign skip: another live instance owns the run lock.
	ErrLockHeld = errors.New("lock held")
	// ErrInsufficientMedia marks a benign skip: fewer files than one batch.
	ErrInsufficientMedia = errors.New("insufficient media")
	// ErrDataBank marks a malformed or unusable bank file.
	ErrDataBank = errors.New("bank data error")
	// ErrFilesystem marks directory or move failures beyond the anticipated
	// collision and cross-device cases.
	ErrFilesystem = errors.New("filesystem error")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later outcome classification.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrFilesystem
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsSkip reports whether err represents a benign skip rather than a failure.
// Skips exit zero after their diagnostic log line.
func IsSkip(err error) bool {
	return errors.Is(err, ErrLockHeld) || errors.Is(err, ErrInsufficientMedia)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "run failure"
	}
	return strings.Join(parts, ": ")
}
