package cli

import (
	"errors"

	"github.com/mgpai22/subtrans/internal/config"
	"github.com/mgpai22/subtrans/internal/pipeline"
	"github.com/mgpai22/subtrans/internal/subtitle"
	"github.com/mgpai22/subtrans/internal/translate"
)

// process exit codes
const (
	ExitOK             = 0
	ExitFailure        = 1
	ExitParse          = 2
	ExitConfig         = 3
	ExitTranslation    = 4
	ExitReconstruction = 5
	ExitFileAccess     = 6
)

// ExitCode maps an error returned by Execute to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var (
		parseErr  *subtitle.ParseError
		configErr *config.ConfigurationError
		failure   *translate.TranslationFailure
		reconErr  *subtitle.ReconstructionError
		fileErr   *pipeline.FileAccessError
	)
	switch {
	case errors.As(err, &parseErr):
		return ExitParse
	case errors.As(err, &configErr):
		return ExitConfig
	case errors.As(err, &failure):
		return ExitTranslation
	case errors.As(err, &reconErr):
		return ExitReconstruction
	case errors.As(err, &fileErr):
		return ExitFileAccess
	default:
		return ExitFailure
	}
}
