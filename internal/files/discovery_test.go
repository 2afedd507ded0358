package files

import (
	"bytes"
	"compress/gzip"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glimpseqc/internal/config"
	"glimpseqc/internal/shared/testutil"
)

func testPatterns() Patterns {
	return Patterns{
		"glimpse/err_spl": {"*.error.spl.txt.gz", "*.error.spl.txt"},
		"glimpse/err_grp": {"*.error.grp.txt.gz", "*.error.grp.txt"},
	}
}

func writeTestFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func writeGzipFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, gz.Close())

	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestDiscover_MatchesPatterns(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "NA12878.error.spl.txt", "spl content")
	writeTestFile(t, root, "nested/NA24385.error.grp.txt", "grp content")
	writeTestFile(t, root, "notes.txt", "unrelated")

	logger, _ := testutil.NewTestLogger(t)
	d := NewDiscovery(testPatterns(), config.Default().Search, logger)

	found, stats, err := d.Discover(context.Background(), []string{root})
	require.NoError(t, err)

	require.Len(t, found["glimpse/err_spl"], 1)
	require.Len(t, found["glimpse/err_grp"], 1)

	spl := found["glimpse/err_spl"][0]
	assert.Equal(t, "NA12878", spl.SampleName)
	assert.Equal(t, "NA12878.error.spl.txt", spl.Filename)
	assert.Equal(t, "spl content", spl.Content)
	assert.True(t, filepath.IsAbs(spl.Path))

	grp := found["glimpse/err_grp"][0]
	assert.Equal(t, "NA24385", grp.SampleName)
	assert.Equal(t, "grp content", grp.Content)

	assert.Equal(t, 3, stats.Scanned)
	assert.Equal(t, 2, stats.Matched)
	assert.Equal(t, 1, stats.ByPattern["glimpse/err_spl"])
	assert.Equal(t, 1, stats.ByPattern["glimpse/err_grp"])
}

func TestDiscover_GzipTransparent(t *testing.T) {
	root := t.TempDir()
	writeGzipFile(t, root, "NA12878.error.spl.txt.gz", "compressed payload")

	logger, _ := testutil.NewTestLogger(t)
	d := NewDiscovery(testPatterns(), config.Default().Search, logger)

	found, _, err := d.Discover(context.Background(), []string{root})
	require.NoError(t, err)
	require.Len(t, found["glimpse/err_spl"], 1)

	got := found["glimpse/err_spl"][0]
	assert.Equal(t, "compressed payload", got.Content)
	assert.Equal(t, "NA12878", got.SampleName)
}

func TestDiscover_CorruptGzipSkipped(t *testing.T) {
	root := t.TempDir()
	// Named .gz but plain text, so the gzip header check fails.
	writeTestFile(t, root, "NA12878.error.spl.txt.gz", "not gzip")

	logger, handler := testutil.NewTestLogger(t)
	d := NewDiscovery(testPatterns(), config.Default().Search, logger)

	found, stats, err := d.Discover(context.Background(), []string{root})
	require.NoError(t, err)
	assert.Empty(t, found["glimpse/err_spl"])
	assert.Equal(t, 0, stats.Matched)
	testutil.AssertLogContains(t, handler, slog.LevelWarn, "cannot read file, skipping")
}

func TestDiscover_IgnoredDirsPruned(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, ".git/NA12878.error.spl.txt", "hidden")
	writeTestFile(t, root, "multiqc_data/NA24385.error.spl.txt", "previous run")
	writeTestFile(t, root, "keep/NA24631.error.spl.txt", "kept")

	logger, _ := testutil.NewTestLogger(t)
	d := NewDiscovery(testPatterns(), config.Default().Search, logger)

	found, stats, err := d.Discover(context.Background(), []string{root})
	require.NoError(t, err)
	require.Len(t, found["glimpse/err_spl"], 1)
	assert.Equal(t, "NA24631", found["glimpse/err_spl"][0].SampleName)
	assert.Equal(t, 2, stats.SkippedDirs)
}

func TestDiscover_IgnoreFilesDoNotBlockPatternMatches(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "NA12878.error.spl.txt", "wanted")
	writeTestFile(t, root, "reads.bam", "binary-ish")

	cfg := config.Default().Search
	cfg.IgnoreFiles = []string{"*.bam", "*.txt"}

	logger, _ := testutil.NewTestLogger(t)
	d := NewDiscovery(testPatterns(), cfg, logger)

	found, stats, err := d.Discover(context.Background(), []string{root})
	require.NoError(t, err)

	// The search pattern wins over the *.txt ignore glob.
	require.Len(t, found["glimpse/err_spl"], 1)
	assert.Equal(t, 1, stats.SkippedIgnored)
}

func TestDiscover_IgnorePathsBlockMatches(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "scratch/NA12878.error.spl.txt", "scratch copy")
	writeTestFile(t, root, "final/NA12878.error.spl.txt", "final copy")

	cfg := config.Default().Search
	cfg.IgnorePaths = []string{"scratch/*"}

	logger, _ := testutil.NewTestLogger(t)
	d := NewDiscovery(testPatterns(), cfg, logger)

	found, _, err := d.Discover(context.Background(), []string{root})
	require.NoError(t, err)
	require.Len(t, found["glimpse/err_spl"], 1)
	assert.Equal(t, "final copy", found["glimpse/err_spl"][0].Content)
}

func TestDiscover_SymlinksSkippedByDefault(t *testing.T) {
	outside := t.TempDir()
	target := writeTestFile(t, outside, "NA12878.error.spl.txt", "via symlink")

	root := t.TempDir()
	link := filepath.Join(root, "NA12878.error.spl.txt")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	logger, _ := testutil.NewTestLogger(t)

	cfg := config.Default().Search
	d := NewDiscovery(testPatterns(), cfg, logger)
	found, stats, err := d.Discover(context.Background(), []string{root})
	require.NoError(t, err)
	assert.Empty(t, found["glimpse/err_spl"])
	assert.Equal(t, 1, stats.SkippedSymlink)

	cfg.FollowSymlinks = true
	d = NewDiscovery(testPatterns(), cfg, logger)
	found, _, err = d.Discover(context.Background(), []string{root})
	require.NoError(t, err)
	require.Len(t, found["glimpse/err_spl"], 1)
	assert.Equal(t, "via symlink", found["glimpse/err_spl"][0].Content)
}

func TestDiscover_FileSizeLimit(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "NA12878.error.spl.txt", "0123456789 far beyond the limit")
	writeTestFile(t, root, "NA24385.error.spl.txt", "tiny")

	cfg := config.Default().Search
	cfg.FileSizeLimit = 10

	logger, handler := testutil.NewTestLogger(t)
	d := NewDiscovery(testPatterns(), cfg, logger)

	found, stats, err := d.Discover(context.Background(), []string{root})
	require.NoError(t, err)
	require.Len(t, found["glimpse/err_spl"], 1)
	assert.Equal(t, "NA24385", found["glimpse/err_spl"][0].SampleName)
	assert.Equal(t, 1, stats.SkippedSize)
	testutil.AssertLogContains(t, handler, slog.LevelWarn, "file exceeds size limit, skipping")
}

func TestDiscover_MultipleRoots(t *testing.T) {
	rootA := t.TempDir()
	rootB := t.TempDir()
	writeTestFile(t, rootA, "NA12878.error.spl.txt", "a")
	writeTestFile(t, rootB, "NA24385.error.spl.txt", "b")

	logger, _ := testutil.NewTestLogger(t)
	d := NewDiscovery(testPatterns(), config.Default().Search, logger)

	found, _, err := d.Discover(context.Background(), []string{rootA, rootB})
	require.NoError(t, err)
	require.Len(t, found["glimpse/err_spl"], 2)
	assert.Equal(t, "NA12878", found["glimpse/err_spl"][0].SampleName)
	assert.Equal(t, "NA24385", found["glimpse/err_spl"][1].SampleName)
}

func TestDiscover_MissingRoot(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	d := NewDiscovery(testPatterns(), config.Default().Search, logger)

	_, _, err := d.Discover(context.Background(), []string{filepath.Join(t.TempDir(), "does-not-exist")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "walk analysis dir")
}

func TestDiscover_ContextCancelled(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "NA12878.error.spl.txt", "content")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	logger, _ := testutil.NewTestLogger(t)
	d := NewDiscovery(testPatterns(), config.Default().Search, logger)

	_, _, err := d.Discover(ctx, []string{root})
	require.ErrorIs(t, err, context.Canceled)
}
