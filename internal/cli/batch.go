package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/reuno721/MiniMapPad/internal/config"
	"github.com/reuno721/MiniMapPad/internal/files"
	"github.com/reuno721/MiniMapPad/internal/git"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// ManifestFile is the name of the run manifest written into the output directory.
const ManifestFile = "manifest.yaml"

// mapSuffix is appended to the relative source path to name each map.
const mapSuffix = ".map.txt"

// gitOps describes the batch root.
var gitOps = git.NewOperations()

// Manifest records one batch run.
type Manifest struct {
	RunID       string          `yaml:"run_id"`
	GeneratedAt time.Time       `yaml:"generated_at"`
	Root        string          `yaml:"root"`
	Revision    *git.Revision   `yaml:"revision,omitempty"`
	OutputDir   string          `yaml:"output_dir"`
	Entries     []ManifestEntry `yaml:"entries"`
}

// ManifestEntry is the outcome for one source file.
type ManifestEntry struct {
	Path     string `yaml:"path"`
	Mode     string `yaml:"mode,omitempty"`
	Bytes    int    `yaml:"bytes"`
	Degraded bool   `yaml:"degraded"`
	Error    string `yaml:"error,omitempty"`
}

// Counts returns the number of failed and degraded entries.
func (m *Manifest) Counts() (failed, degraded int) {
	for _, e := range m.Entries {
		if e.Error != "" {
			failed++
		}
		if e.Degraded {
			degraded++
		}
	}
	return failed, degraded
}

var (
	batchFlags generateFlags
	batchQuiet bool
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch [dir]",
	Short: "Write code maps for every matching file under a directory",
	Long: `Batch discovers source files under dir (default: the working directory)
using batch.include and batch.ignore globs, writes one <path>.map.txt per file
under batch.output_dir, and records the run in manifest.yaml.

A file that cannot be mapped is recorded in the manifest and the run
continues.

Examples:
  # Map the current project
  minimap batch

  # Map a checkout into a separate directory without TODO warnings
  minimap batch ../service --out /tmp/service-maps --no-todo
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBatchCmd,
}

func init() {
	rootCmd.AddCommand(batchCmd)
	addGenerateFlags(batchCmd, &batchFlags)
	batchCmd.Flags().Lookup("out").Usage = "Output directory (default from batch.output_dir)"
	batchCmd.Flags().BoolVarP(&batchQuiet, "quiet", "q", false, "Suppress progress output")
}

func runBatchCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	root := "."
	if len(args) == 1 {
		root = args[0]
	}

	reporter := NewCLIProgressReporter(cmd.ErrOrStderr(), batchQuiet)
	manifest, err := runBatch(cmd.Context(), root, cfg, batchFlags, reporter, newLogger(cmd.ErrOrStderr()))
	if err != nil {
		return err
	}

	if failed, _ := manifest.Counts(); failed > 0 {
		return fmt.Errorf("%d of %d files failed, see %s", failed, len(manifest.Entries),
			filepath.Join(manifest.OutputDir, ManifestFile))
	}
	return nil
}

// runBatch maps every discovered file under root and writes the manifest.
// Per-file failures are recorded in the manifest, not returned.
func runBatch(ctx context.Context, root string, cfg *config.Config, f generateFlags, reporter BatchReporter, logger *slog.Logger) (*Manifest, error) {
	start := time.Now()

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root: %w", err)
	}

	outDir := cfg.Batch.OutputDir
	if f.out != "" {
		outDir = f.out
	}
	if !filepath.IsAbs(outDir) {
		outDir = filepath.Join(absRoot, outDir)
	}

	var skip []string
	if rel, err := filepath.Rel(absRoot, outDir); err == nil && rel != "." && !strings.HasPrefix(rel, "..") {
		skip = append(skip, filepath.ToSlash(rel))
	}

	discovery, err := files.NewDiscovery(absRoot, cfg.Batch.Include, cfg.Batch.Ignore, skip...)
	if err != nil {
		return nil, fmt.Errorf("failed to create discovery: %w", err)
	}
	sources, err := discovery.Discover()
	if err != nil {
		return nil, fmt.Errorf("failed to discover files: %w", err)
	}

	logger.Debug("discovered files", "root", absRoot, "count", len(sources))
	reporter.OnDiscoveryComplete(len(sources))

	manifest := &Manifest{
		RunID:       uuid.New().String(),
		GeneratedAt: start.UTC(),
		Root:        absRoot,
		Revision:    git.Describe(gitOps, absRoot),
		OutputDir:   outDir,
		Entries:     make([]ManifestEntry, 0, len(sources)),
	}

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		entry := mapFile(src, outDir, cfg, f)
		if entry.Error != "" {
			logger.Warn("failed to map file", "path", entry.Path, "error", entry.Error)
		} else {
			logger.Debug("mapped file", "path", entry.Path, "mode", entry.Mode)
		}
		manifest.Entries = append(manifest.Entries, entry)
		reporter.OnFileProcessed(src.Rel)
	}

	if err := writeManifest(manifest); err != nil {
		return nil, err
	}

	reporter.OnComplete(manifest, time.Since(start))
	return manifest, nil
}

func mapFile(src files.File, outDir string, cfg *config.Config, f generateFlags) ManifestEntry {
	entry := ManifestEntry{Path: src.Rel}

	text, _, err := readSource(src.Path, nil, cfg.Generate.MaxSourceBytes)
	if err != nil {
		entry.Error = err.Error()
		return entry
	}
	entry.Bytes = len(text)

	res, err := generateMap(text, src.Rel, cfg, f)
	if err != nil {
		entry.Error = err.Error()
		return entry
	}
	entry.Mode = res.ModeLabel
	entry.Degraded = res.Degraded

	out := filepath.Join(outDir, filepath.FromSlash(src.Rel)+mapSuffix)
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		entry.Error = fmt.Sprintf("failed to create output directory: %v", err)
		return entry
	}
	if err := writeMap(nil, out, res.Text); err != nil {
		entry.Error = err.Error()
	}
	return entry
}

func writeManifest(m *Manifest) error {
	if err := os.MkdirAll(m.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(m.OutputDir, ManifestFile), data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
