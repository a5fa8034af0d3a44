package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mgpai22/subtrans/internal/subtitle"
	"github.com/mgpai22/subtrans/internal/video"
)

type subtitleExtractor interface {
	ExtractSubtitle(
		ctx context.Context,
		videoPath, outputPath string,
		stream int,
	) ([]subtitle.Segment, error)
}

// replaced in tests
var newExtractor = func() subtitleExtractor {
	return video.NewExtractor()
}

func newExtractCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract [video_file]",
		Short: "Extract an embedded subtitle track from a video file",
		Long: `Extract a subtitle stream from a video container and save it as SRT.

The result is checked with the SRT parser, so it can be passed straight
to 'subtrans translate'. Requires ffmpeg on PATH or SUBTRANS_FFMPEG_PATH.

Examples:
  subtrans extract movie.mkv
  subtrans extract movie.mkv --stream 1 -o movie.en.srt`,
		Args: cobra.ExactArgs(1),
		RunE: runExtract,
	}

	cmd.Flags().
		IntP("stream", "s", 0, "Subtitle stream number (0 = first subtitle stream)")

	return cmd
}

func runExtract(cmd *cobra.Command, args []string) error {
	videoPath := args[0]

	stream, _ := cmd.Flags().GetInt("stream")
	outputPath, _ := cmd.Flags().GetString("output")
	if outputPath == "" {
		outputPath = video.DefaultSubtitlePath(videoPath, stream)
	}

	logger.Infow("Extracting subtitles",
		"video", videoPath,
		"output", outputPath,
		"stream", stream,
	)

	segments, err := newExtractor().ExtractSubtitle(
		cmd.Context(),
		videoPath,
		outputPath,
		stream,
	)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Fprintf(cmd.OutOrStdout(), "Subtitles extracted successfully: %s\n", absOutput)
	fmt.Fprintf(cmd.OutOrStdout(), "  Cues: %d\n", len(segments))
	return nil
}
