// Wraps zerolog, ensuring the timestamp goes in the beginning.
package log

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"newscr/oops"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

var logger zerolog.Logger

func init() {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.DurationFieldInteger = true
	zerolog.TimeFieldFormat = time.RFC3339Nano
}

func Info() *zerolog.Event {
	return logger.Info().Timestamp()
}

func Warn() *zerolog.Event {
	return logger.Warn().Timestamp()
}

func Error() *zerolog.Event {
	return logger.Error().Timestamp()
}

// RunDir is a per-run directory under the logs root holding the main log
// file and the final summary, one directory per invocation.
type RunDir struct {
	Path string
	file *os.File
}

// OpenRunDir creates logs/run_<timestamp>_<id> and redirects the package
// logger to write both to stderr and to main.log inside it.
func OpenRunDir(root string, runId string) (*RunDir, error) {
	timestamp := time.Now().UTC().Format("20060102_150405")
	path := filepath.Join(root, "run_"+timestamp+"_"+runId)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, oops.Wrap(err)
	}

	file, err := os.Create(filepath.Join(path, "main.log"))
	if err != nil {
		return nil, oops.Wrap(err)
	}

	logger = zerolog.New(io.MultiWriter(os.Stderr, file)).With().Stack().Logger()
	return &RunDir{Path: path, file: file}, nil
}

// WriteSummary drops the final run report next to the main log.
func (d *RunDir) WriteSummary(summary string) error {
	path := filepath.Join(d.Path, "summary.txt")
	err := os.WriteFile(path, []byte(summary), 0o644)
	if err != nil {
		return oops.Wrap(err)
	}
	return nil
}

func (d *RunDir) Close() {
	if d.file != nil {
		_ = d.file.Close()
	}
}
