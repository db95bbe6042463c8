// Package inventory discovers media files available for bundling.
package inventory

import (
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// Extension allow-lists for the two media roots.
var (
	ImageExtensions = map[string]struct{}{
		".jpg":  {},
		".jpeg": {},
		".png":  {},
		".webp": {},
	}
	VideoExtensions = map[string]struct{}{
		".mp4": {},
		".mov": {},
	}
)

// Scan recursively walks root and returns the absolute paths of regular
// files whose lowercase extension is in the allow-list. The result is
// sorted lexicographically so traversal order never affects callers. A
// missing root is an empty inventory, not an error.
func Scan(root string, extensions map[string]struct{}) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	var files []string
	err = filepath.WalkDir(absRoot, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if path == absRoot && errors.Is(err, fs.ErrNotExist) {
				return fs.SkipAll
			}
			return err
		}
		if entry.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if _, ok := extensions[ext]; ok {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}
