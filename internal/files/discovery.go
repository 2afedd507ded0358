package files

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"glimpseqc/internal/config"
	"glimpseqc/pkg/contracts/domain"
)

// Discovery walks analysis directories and collects the log files matching
// the registered search patterns.
type Discovery struct {
	patterns Patterns
	cfg      config.SearchConfig
	logger   *slog.Logger
	progress rate.Sometimes
}

// Stats counts the outcomes of a single walk.
type Stats struct {
	Scanned        int
	Matched        int
	SkippedIgnored int
	SkippedSize    int
	SkippedSymlink int
	SkippedDirs    int
	ByPattern      map[string]int
}

// NewDiscovery creates a Discovery over the given patterns and search
// configuration. Pattern overrides from the config are applied here so
// callers hand in module defaults only.
func NewDiscovery(patterns Patterns, cfg config.SearchConfig, logger *slog.Logger) *Discovery {
	return &Discovery{
		patterns: MergePatterns(patterns, cfg.Patterns),
		cfg:      cfg,
		logger:   logger,
		progress: rate.Sometimes{Interval: 2 * time.Second},
	}
}

// Discover walks each root in order and returns the matched files grouped by
// pattern key, together with walk statistics. Files are returned in walk
// order, which is deterministic for a fixed directory tree. Unreadable files
// are logged and skipped rather than failing the run.
func (d *Discovery) Discover(ctx context.Context, roots []string) (map[string][]domain.LogFile, *Stats, error) {
	found := make(map[string][]domain.LogFile)
	stats := &Stats{ByPattern: make(map[string]int)}

	for _, root := range roots {
		absRoot, err := filepath.Abs(root)
		if err != nil {
			return nil, nil, fmt.Errorf("resolve analysis dir %q: %w", root, err)
		}
		if err := d.walkRoot(ctx, absRoot, found, stats); err != nil {
			return nil, nil, err
		}
	}

	d.logger.Info("file search finished",
		slog.Int("scanned", stats.Scanned),
		slog.Int("matched", stats.Matched),
		slog.Int("skipped_ignored", stats.SkippedIgnored),
		slog.Int("skipped_size", stats.SkippedSize),
		slog.Int("skipped_symlink", stats.SkippedSymlink),
		slog.Int("skipped_dirs", stats.SkippedDirs))
	return found, stats, nil
}

func (d *Discovery) walkRoot(ctx context.Context, root string, found map[string][]domain.LogFile, stats *Stats) error {
	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walk analysis dir %q: %w", root, err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if entry.IsDir() {
			if path != root && d.ignoreDir(path, entry.Name()) {
				stats.SkippedDirs++
				return filepath.SkipDir
			}
			return nil
		}

		if entry.Type()&fs.ModeSymlink != 0 && !d.cfg.FollowSymlinks {
			stats.SkippedSymlink++
			return nil
		}

		stats.Scanned++
		d.progress.Do(func() {
			d.logger.Info("searching", slog.Int("files_scanned", stats.Scanned), slog.String("dir", filepath.Dir(path)))
		})

		d.inspectFile(path, root, entry, found, stats)
		return nil
	})
}

// inspectFile matches one regular file against the pattern table and, on a
// hit, reads it into a LogFile. A filename matching a search pattern is
// searched even when an ignore glob also matches it.
func (d *Discovery) inspectFile(path, root string, entry fs.DirEntry, found map[string][]domain.LogFile, stats *Stats) {
	name := entry.Name()

	keys := d.patterns.Match(name)
	if len(keys) == 0 {
		if matchAny(d.cfg.IgnoreFiles, name) || d.ignorePath(path) {
			stats.SkippedIgnored++
		}
		return
	}
	if d.ignorePath(path) {
		stats.SkippedIgnored++
		return
	}

	info, err := entry.Info()
	if err != nil {
		d.logger.Warn("stat failed, skipping file", slog.String("path", path), slog.Any("error", err))
		return
	}
	if d.cfg.FileSizeLimit > 0 && info.Size() > d.cfg.FileSizeLimit {
		d.logger.Warn("file exceeds size limit, skipping",
			slog.String("path", path),
			slog.Int64("size", info.Size()),
			slog.Int64("limit", d.cfg.FileSizeLimit))
		stats.SkippedSize++
		return
	}

	content, err := readLogFile(path)
	if err != nil {
		d.logger.Warn("cannot read file, skipping", slog.String("path", path), slog.Any("error", err))
		return
	}

	stats.Matched++
	for _, key := range keys {
		stats.ByPattern[key]++
		found[key] = append(found[key], domain.LogFile{
			Path:       path,
			Filename:   name,
			Root:       root,
			SampleName: SampleNameFromFilename(name, d.patterns[key]),
			Content:    content,
		})
		d.logger.Debug("matched file",
			slog.String("pattern", key),
			slog.String("path", path))
	}
}

// ignoreDir reports whether a directory should be pruned from the walk,
// either by base name or by full-path glob.
func (d *Discovery) ignoreDir(path, name string) bool {
	for _, ignored := range d.cfg.IgnoreDirs {
		if name == ignored {
			return true
		}
	}
	return d.ignorePath(path)
}

// ignorePath matches the full path against the configured path globs. The
// globs use filepath.Match semantics per path segment, so callers typically
// write patterns like "*/scratch/*".
func (d *Discovery) ignorePath(path string) bool {
	slashed := filepath.ToSlash(path)
	for _, glob := range d.cfg.IgnorePaths {
		if ok, err := filepath.Match(glob, slashed); err == nil && ok {
			return true
		}
		// Also try the pattern against every suffix of the path so that
		// relative globs like "ignored/*" work from any root.
		if matchPathSuffix(glob, slashed) {
			return true
		}
	}
	return false
}

func matchPathSuffix(glob, slashed string) bool {
	segments := strings.Split(slashed, "/")
	for i := range segments {
		candidate := strings.Join(segments[i:], "/")
		if ok, err := filepath.Match(glob, candidate); err == nil && ok {
			return true
		}
	}
	return false
}

// readLogFile reads a file into memory, transparently gunzipping *.gz files.
func readLogFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %q: %w", path, err)
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return "", fmt.Errorf("gunzip %q: %w", path, err)
		}
		defer gz.Close()
		reader = gz
	}

	raw, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read %q: %w", path, err)
	}
	return string(raw), nil
}
