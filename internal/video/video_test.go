package video

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

const extractedSRT = `1
00:00:01,000 --> 00:00:02,000
Hello

2
00:00:03,000 --> 00:00:04,000
World
`

func fakeVideo(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "movie.mkv")
	if err := os.WriteFile(path, []byte("not really a video"), 0o644); err != nil {
		t.Fatalf("write video: %v", err)
	}
	return path
}

func TestDefaultSubtitlePath(t *testing.T) {
	tests := []struct {
		video  string
		stream int
		want   string
	}{
		{"movie.mkv", 0, "movie.srt"},
		{"dir/movie.mp4", 2, "dir/movie.2.srt"},
		{"noext", 0, "noext.srt"},
	}
	for _, tt := range tests {
		if got := DefaultSubtitlePath(tt.video, tt.stream); got != tt.want {
			t.Errorf("DefaultSubtitlePath(%q, %d) = %q, want %q", tt.video, tt.stream, got, tt.want)
		}
	}
}

func TestExtractSubtitle(t *testing.T) {
	video := fakeVideo(t)
	out := filepath.Join(t.TempDir(), "subs", "movie.srt")

	var gotArgs ffmpeg.KwArgs
	e := &Extractor{run: func(in, outPath string, kwargs ffmpeg.KwArgs) error {
		gotArgs = kwargs
		if in != video {
			t.Errorf("unexpected input %s", in)
		}
		return os.WriteFile(outPath, []byte(extractedSRT), 0o644)
	}}

	segments, err := e.ExtractSubtitle(context.Background(), video, out, 1)
	if err != nil {
		t.Fatalf("ExtractSubtitle returned error: %v", err)
	}
	if len(segments) != 2 || segments[1].Text != "World" {
		t.Fatalf("unexpected segments %+v", segments)
	}
	if gotArgs["map"] != "0:s:1" || gotArgs["c:s"] != "srt" {
		t.Fatalf("unexpected ffmpeg args %v", gotArgs)
	}
}

func TestExtractSubtitleErrors(t *testing.T) {
	video := fakeVideo(t)
	out := filepath.Join(t.TempDir(), "out.srt")

	tests := []struct {
		name   string
		video  string
		stream int
		run    runFunc
	}{
		{
			name:   "missing video",
			video:  filepath.Join(t.TempDir(), "missing.mkv"),
			stream: 0,
		},
		{
			name:   "negative stream",
			video:  video,
			stream: -1,
		},
		{
			name:   "ffmpeg failure",
			video:  video,
			stream: 0,
			run: func(string, string, ffmpeg.KwArgs) error {
				return errors.New("Stream map '0:s:0' matches no streams")
			},
		},
		{
			name:   "invalid srt",
			video:  video,
			stream: 0,
			run: func(_ string, outPath string, _ ffmpeg.KwArgs) error {
				return os.WriteFile(outPath, []byte("1\nnot a timing line\nText\n"), 0o644)
			},
		},
		{
			name:   "empty stream",
			video:  video,
			stream: 0,
			run: func(_ string, outPath string, _ ffmpeg.KwArgs) error {
				return os.WriteFile(outPath, nil, 0o644)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := tt.run
			if run == nil {
				run = func(string, string, ffmpeg.KwArgs) error {
					t.Fatal("ffmpeg should not run")
					return nil
				}
			}
			e := &Extractor{run: run}
			if _, err := e.ExtractSubtitle(context.Background(), tt.video, out, tt.stream); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLastLine(t *testing.T) {
	if got := lastLine("ffmpeg version 6\n  built with gcc\nStream map matches no streams.\n"); got != "Stream map matches no streams." {
		t.Fatalf("unexpected last line %q", got)
	}
	if got := lastLine(""); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}
