package banks

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"postbundle/internal/errs"
)

// LoadCaptions reads and normalizes the caption bank. The engine cannot
// run without one, so a missing or malformed file is a data error that
// aborts before any destructive action.
func LoadCaptions(path string) ([]CaptionEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrDataBank, "banks", "read caption bank", path, err)
	}
	var raw []CaptionEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errs.Wrap(errs.ErrDataBank, "banks", "parse caption bank", path, err)
	}
	return NormalizeCaptions(raw), nil
}

// SaveCaptions rewrites the caption bank through a temp file and rename,
// so readers never observe a partially written bank.
func SaveCaptions(path string, entries []CaptionEntry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return errs.Wrap(errs.ErrDataBank, "banks", "encode caption bank", path, err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return errs.Wrap(errs.ErrFilesystem, "banks", "stage caption bank", path, err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		_ = os.Remove(tmpPath)
		return errs.Wrap(errs.ErrFilesystem, "banks", "write caption bank", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return errs.Wrap(errs.ErrFilesystem, "banks", "close caption bank", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return errs.Wrap(errs.ErrFilesystem, "banks", "replace caption bank", path, err)
	}
	return nil
}

// LoadHashtags reads and normalizes the hashtag bank. A missing file is an
// empty bank; the run proceeds without hashtags.
func LoadHashtags(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, errs.Wrap(errs.ErrDataBank, "banks", "read hashtag bank", path, err)
	}
	var raw []hashtagEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errs.Wrap(errs.ErrDataBank, "banks", "parse hashtag bank", path, err)
	}
	tags := make([]string, 0, len(raw))
	for _, entry := range raw {
		tags = append(tags, entry.value)
	}
	return NormalizeHashtags(tags), nil
}

// WriteHashtags persists a hashtag bank in canonical string form. The
// engine never calls this at run time; it exists for provisioning and
// tests, matching the bank editor's storage contract.
func WriteHashtags(path string, tags []string) error {
	data, err := json.MarshalIndent(NormalizeHashtags(tags), "", "  ")
	if err != nil {
		return fmt.Errorf("encode hashtag bank: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
