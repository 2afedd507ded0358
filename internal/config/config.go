package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix is the prefix for environment overrides, e.g.
// GLIMPSEQC_REPORT_DATA_FORMAT=json.
const EnvPrefix = "GLIMPSEQC"

// DefaultConfigFile is looked up in the working directory when no -config
// flag is given.
const DefaultConfigFile = "glimpseqc.yml"

// Config is the complete run configuration. Values layer in order:
// Default() <- yaml file <- environment <- CLI flags.
type Config struct {
	Paths   PathsConfig   `yaml:"paths" envconfig:"PATHS"`
	Search  SearchConfig  `yaml:"search" envconfig:"SEARCH"`
	Report  ReportConfig  `yaml:"report" envconfig:"REPORT"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Serve   ServeConfig   `yaml:"serve" envconfig:"SERVE"`
}

// PathsConfig holds the input and output locations of a run.
type PathsConfig struct {
	// AnalysisDirs are the directories walked for concordance logs.
	// Usually given as CLI arguments rather than configured.
	AnalysisDirs []string `yaml:"analysis_dirs" envconfig:"ANALYSIS_DIRS"`

	// OutputDir receives the report and its data directory.
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
}

// SearchConfig tunes log file discovery.
type SearchConfig struct {
	// IgnoreDirs are directory base names skipped entirely during the walk.
	IgnoreDirs []string `yaml:"ignore_dirs" envconfig:"IGNORE_DIRS"`

	// IgnoreFiles are filename globs never searched, unless a search
	// pattern explicitly matches the name (pattern match wins).
	IgnoreFiles []string `yaml:"ignore_files" envconfig:"IGNORE_FILES"`

	// IgnorePaths are path globs (matched against the full path) skipped
	// during the walk.
	IgnorePaths []string `yaml:"ignore_paths" envconfig:"IGNORE_PATHS"`

	// FollowSymlinks enables descending into symlinked files and dirs.
	FollowSymlinks bool `yaml:"follow_symlinks" envconfig:"FOLLOW_SYMLINKS"`

	// FileSizeLimit skips files larger than this many bytes.
	FileSizeLimit int64 `yaml:"filesize_limit" envconfig:"FILESIZE_LIMIT" validate:"min=1"`

	// Patterns overlays the built-in search patterns: pattern key to
	// filename globs, e.g. "glimpse/err_spl": ["*.error.spl.txt.gz"].
	Patterns map[string][]string `yaml:"patterns" ignored:"true"`
}

// ReportConfig controls report content and export formats.
type ReportConfig struct {
	Title string `yaml:"title" envconfig:"TITLE"`

	// Comment is rendered as Markdown at the top of the report.
	Comment string `yaml:"comment" envconfig:"COMMENT"`

	// DataFormat selects the raw data export format.
	DataFormat string `yaml:"data_format" envconfig:"DATA_FORMAT" validate:"oneof=tsv json yaml"`

	// IgnoreSamples drops samples whose name matches any of these globs
	// after the cross-file merge.
	IgnoreSamples []string `yaml:"ignore_samples" envconfig:"IGNORE_SAMPLES"`

	// XLSX writes a summary workbook next to the data files.
	XLSX bool `yaml:"xlsx" envconfig:"XLSX"`

	// PDF renders the HTML report to PDF via headless Chrome.
	PDF        bool          `yaml:"pdf" envconfig:"PDF"`
	PDFTimeout time.Duration `yaml:"pdf_timeout" envconfig:"PDF_TIMEOUT" validate:"min=0"`
}

// LoggingConfig configures the slog setup shared by both binaries.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=stdout file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// ServeConfig configures the report preview server.
type ServeConfig struct {
	Host string `yaml:"host" envconfig:"HOST"`
	Port int    `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
}

// Default returns the built-in configuration. Defaults live here, not in
// struct tags, so the yaml/env layering stays a plain overwrite.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			OutputDir: ".",
		},
		Search: SearchConfig{
			IgnoreDirs:    []string{".git", ".snakemake", "__pycache__", "node_modules", "multiqc_data", "glimpseqc_data"},
			IgnoreFiles:   []string{"*.bam", "*.bai", "*.cram", "*.fq.gz", "*.fastq.gz", "*.fa", "*.pdf", "*.html"},
			FileSizeLimit: 50 * 1024 * 1024,
		},
		Report: ReportConfig{
			Title:      "GLIMPSE concordance report",
			DataFormat: "tsv",
			XLSX:       true,
			PDFTimeout: 60 * time.Second,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "text",
			Output:   "stdout",
			FilePath: "glimpseqc.log",
		},
		Serve: ServeConfig{
			Host: "localhost",
			Port: 8090,
		},
	}
}

// Load builds the configuration from defaults, an optional yaml file and
// environment variables, then validates it. An empty path means "use
// DefaultConfigFile if it exists, otherwise skip the file layer".
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if path == "" {
		path = DefaultConfigFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	case os.IsNotExist(err) && !explicit:
		// No config file is fine; defaults plus env carry the run.
	default:
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report yaml key names, not Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the configuration and returns the first problem found,
// phrased for the CLI user.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok || len(verrs) == 0 {
			return fmt.Errorf("validate config: %w", err)
		}
		return fmt.Errorf("invalid config: %s", formatFieldError(verrs[0]))
	}

	for key, globs := range c.Search.Patterns {
		if key == "" {
			return fmt.Errorf("invalid config: search.patterns contains an empty pattern key")
		}
		if len(globs) == 0 {
			return fmt.Errorf("invalid config: search.patterns[%s] has no filename globs", key)
		}
	}
	if (c.Logging.Output == "file" || c.Logging.Output == "both") && c.Logging.FilePath == "" {
		return fmt.Errorf("invalid config: logging.file_path is required when logging.output is %q", c.Logging.Output)
	}
	return nil
}

func formatFieldError(err validator.FieldError) string {
	field := err.Field()
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(err.Param(), " ", ", "))
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, err.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, err.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}
