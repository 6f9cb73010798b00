package fileutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/rohmanhakim/scores-fixture/pkg/failure"
)

// TempSuffix marks partially written files.
const TempSuffix = ".download"

// EnsureDir check if a given directory plus the following path exist, then create one if not
func EnsureDir(dir string, path ...string) failure.ClassifiedError {
	targetPath := append([]string{dir}, path...)
	fullPath := filepath.Join(targetPath...)
	if err := os.MkdirAll(fullPath, 0755); err != nil {
		return &FileError{
			Message:   fmt.Sprintf("%v", err),
			Retryable: false,
			Cause:     ErrCausePathError,
			Path:      fullPath,
		}
	}
	return nil
}

// WriteAtomic writes data next to path with TempSuffix and renames it into
// place, so readers never observe a half-written file.
func WriteAtomic(path string, data []byte) failure.ClassifiedError {
	tmpPath := path + TempSuffix
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		_ = os.Remove(tmpPath)
		return &FileError{
			Message:   err.Error(),
			Retryable: errors.Is(err, syscall.ENOSPC),
			Cause:     ErrCauseWriteError,
			Path:      tmpPath,
		}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return &FileError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseWriteError,
			Path:      path,
		}
	}
	return nil
}

// FindNormalized looks for a regular file in dir whose name, after normalize,
// equals want. An exact match wins; otherwise the lexically first candidate is
// returned. A missing dir is reported as not found.
func FindNormalized(dir string, want string, normalize func(string) string) (string, bool, failure.ClassifiedError) {
	exact := filepath.Join(dir, want)
	if info, err := os.Stat(exact); err == nil && info.Mode().IsRegular() {
		return exact, true, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, &FileError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseReadError,
			Path:      dir,
		}
	}

	var candidates []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if normalize(entry.Name()) == want {
			candidates = append(candidates, entry.Name())
		}
	}
	if len(candidates) == 0 {
		return "", false, nil
	}
	sort.Strings(candidates)
	return filepath.Join(dir, candidates[0]), true, nil
}
