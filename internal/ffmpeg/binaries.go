package ffmpeg

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
)

const FFmpegPathEnv = "SUBTRANS_FFMPEG_PATH"

var ErrNotFound = errors.New("ffmpeg not found: install it or set " + FFmpegPathEnv)

var (
	ensureOnce sync.Once
	ensureErr  error
	ensurePath string
)

// resolves the ffmpeg binary once per process
func FFmpegPath() (string, error) {
	ensureOnce.Do(func() {
		ensurePath, ensureErr = Resolve(os.Getenv, exec.LookPath)
	})
	return ensurePath, ensureErr
}

// Resolve looks up ffmpeg: environment override first, then PATH.
func Resolve(
	getenv func(string) string,
	lookPath func(string) (string, error),
) (string, error) {
	if path := getenv(FFmpegPathEnv); path != "" {
		if !fileExists(path) {
			return "", fmt.Errorf(
				"%s points to missing file %s",
				FFmpegPathEnv,
				path,
			)
		}
		return path, nil
	}

	found, err := lookPath("ffmpeg")
	if err != nil {
		return "", ErrNotFound
	}
	return found, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir() && info.Size() > 0
}
