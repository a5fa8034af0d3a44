package video

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	ffmpegbin "github.com/mgpai22/subtrans/internal/ffmpeg"
	"github.com/mgpai22/subtrans/internal/subtitle"
)

// runs one ffmpeg invocation; swapped out in tests
type runFunc func(inputPath, outputPath string, kwargs ffmpeg.KwArgs) error

// pulls embedded subtitle streams out of video containers
type Extractor struct {
	run runFunc
}

func NewExtractor() *Extractor {
	return &Extractor{run: runFFmpeg}
}

// DefaultSubtitlePath returns movie.srt for movie.mkv, or
// movie.2.srt when a stream other than the first is extracted.
func DefaultSubtitlePath(videoPath string, stream int) string {
	base := strings.TrimSuffix(videoPath, filepath.Ext(videoPath))
	if stream > 0 {
		return fmt.Sprintf("%s.%d.srt", base, stream)
	}
	return base + ".srt"
}

// ExtractSubtitle converts subtitle stream n of videoPath to SRT at
// outputPath and returns the parsed cues of the result.
func (e *Extractor) ExtractSubtitle(
	ctx context.Context,
	videoPath, outputPath string,
	stream int,
) ([]subtitle.Segment, error) {
	if stream < 0 {
		return nil, fmt.Errorf("invalid subtitle stream %d", stream)
	}
	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("video file not found: %s", videoPath)
	}

	outputDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	kwargs := ffmpeg.KwArgs{
		"map": fmt.Sprintf("0:s:%d", stream),
		"c:s": "srt",
	}
	if err := e.run(videoPath, outputPath, kwargs); err != nil {
		return nil, fmt.Errorf("ffmpeg extraction failed: %w", err)
	}

	segments, err := subtitle.ParseFile(outputPath)
	if err != nil {
		return nil, fmt.Errorf("extracted subtitle is not valid SRT: %w", err)
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("subtitle stream %d contains no cues", stream)
	}
	return segments, nil
}

func runFFmpeg(inputPath, outputPath string, kwargs ffmpeg.KwArgs) error {
	ffmpegPath, err := ffmpegbin.FFmpegPath()
	if err != nil {
		return err
	}

	var stderr bytes.Buffer
	err = ffmpeg.Input(inputPath).
		Output(outputPath, kwargs).
		OverWriteOutput().
		SetFfmpegPath(ffmpegPath).
		WithErrorOutput(&stderr).
		Run()
	if err != nil {
		if msg := lastLine(stderr.String()); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}

// ffmpeg prints the actual reason last
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
