package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
)

// StdoutPath as output path means: do not write a file
const StdoutPath = "-"

var errLocked = errors.New("another subtrans run is writing this file")

// input or output file could not be read, locked or written
type FileAccessError struct {
	Op   string // read, lock, write
	Path string
	Err  error
}

func (e *FileAccessError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileAccessError) Unwrap() error {
	return e.Err
}

// DefaultOutputPath places the translation next to the input:
// movie.srt + French -> movie.French.srt
func DefaultOutputPath(inputPath, language string) string {
	ext := filepath.Ext(inputPath)
	base := strings.TrimSuffix(inputPath, ext)
	language = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == os.PathSeparator {
			return '_'
		}
		return r
	}, strings.TrimSpace(language))
	return fmt.Sprintf("%s.%s%s", base, language, ext)
}

// lock file for an output path; lives in the temp dir and is never removed
func lockPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	sum := sha256.Sum256([]byte(path))
	return filepath.Join(
		os.TempDir(),
		"subtrans-"+hex.EncodeToString(sum[:8])+".lock",
	)
}

// takes an exclusive advisory lock on the output path
func lockOutput(path string) (*flock.Flock, error) {
	lock := flock.New(lockPath(path))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, &FileAccessError{Op: "lock", Path: path, Err: err}
	}
	if !ok {
		return nil, &FileAccessError{Op: "lock", Path: path, Err: errLocked}
	}
	return lock, nil
}

func unlockOutput(lock *flock.Flock) {
	if lock == nil {
		return
	}
	_ = lock.Unlock()
}

// writes content to a temp file in the target directory and renames it over
// path, so readers never observe a partial file
func writeAtomic(path, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &FileAccessError{Op: "create directory for", Path: path, Err: err}
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return &FileAccessError{Op: "write", Path: path, Err: err}
	}
	tmpPath := tmp.Name()

	if _, err := tmp.WriteString(content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return &FileAccessError{Op: "write", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return &FileAccessError{Op: "write", Path: path, Err: err}
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return &FileAccessError{Op: "write", Path: path, Err: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return &FileAccessError{Op: "write", Path: path, Err: err}
	}
	return nil
}
