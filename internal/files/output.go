package files

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// DataDirName is the subdirectory of the output directory that holds the
// parsed data exports alongside the rendered report.
const DataDirName = "glimpseqc_data"

// Output manages the report output directory layout. The rendered report
// lands directly in the base directory, parsed data exports under
// DataDirName.
type Output struct {
	baseDir string
	logger  *slog.Logger
}

// NewOutput creates an Output rooted at baseDir. The directories are not
// created until EnsureLayout is called.
func NewOutput(baseDir string, logger *slog.Logger) *Output {
	return &Output{baseDir: baseDir, logger: logger}
}

// BaseDir returns the output base directory.
func (o *Output) BaseDir() string {
	return o.baseDir
}

// DataDir returns the data export directory.
func (o *Output) DataDir() string {
	return filepath.Join(o.baseDir, DataDirName)
}

// Path returns the absolute path of a file directly in the output directory.
func (o *Output) Path(name string) string {
	return filepath.Join(o.baseDir, name)
}

// DataPath returns the absolute path of a file in the data export directory.
func (o *Output) DataPath(name string) string {
	return filepath.Join(o.DataDir(), name)
}

// EnsureLayout creates the output and data directories. Re-running into an
// existing directory is allowed; files from a previous run are overwritten
// individually as they are written.
func (o *Output) EnsureLayout() error {
	for _, dir := range []string{o.baseDir, o.DataDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory %q: %w", dir, err)
		}
	}
	o.logger.Debug("output layout ready",
		slog.String("dir", o.baseDir),
		slog.String("data_dir", o.DataDir()))
	return nil
}

// WriteFile writes data to the given absolute path, creating parent
// directories as needed.
func (o *Output) WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory for %q: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %q: %w", path, err)
	}
	o.logger.Debug("wrote file",
		slog.String("path", path),
		slog.Int("size_bytes", len(data)))
	return nil
}

// Create opens a file for streaming writes, creating parent directories as
// needed. The caller owns closing the file.
func (o *Output) Create(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create directory for %q: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %q: %w", path, err)
	}
	return f, nil
}
