package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/reuno721/MiniMapPad/internal/config"
	"github.com/reuno721/MiniMapPad/internal/watcher"
	"github.com/spf13/cobra"
)

var watchFlags generateFlags

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Regenerate a code map whenever the source file changes",
	Long: `Watch maps the file once, then again after every save. Changes are
debounced by watch.debounce_ms. With --out the map file is rewritten in
place, otherwise each map is printed to stdout.

Press Ctrl+C to stop.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatchCmd,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	addGenerateFlags(watchCmd, &watchFlags)
}

func runWatchCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return runWatch(ctx, args[0], cfg, watchFlags, cmd.OutOrStdout(), newLogger(cmd.ErrOrStderr()))
}

// runWatch maps path immediately and after each debounced change until ctx
// is done. A failing regeneration is logged and watching continues.
func runWatch(ctx context.Context, path string, cfg *config.Config, f generateFlags, w io.Writer, logger *slog.Logger) error {
	if err := regenerate(path, cfg, f, w, logger); err != nil {
		return err
	}

	fw, err := watcher.NewFileWatcher([]string{path}, time.Duration(cfg.Watch.DebounceMs)*time.Millisecond, logger)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}
	defer fw.Stop()

	if err := fw.Start(ctx, func(changed []string) {
		logger.Debug("source changed", "files", changed)
		if err := regenerate(path, cfg, f, w, logger); err != nil {
			logger.Warn("failed to regenerate map", "path", path, "error", err)
		}
	}); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	logger.Info("watching for changes", "path", path, "debounce_ms", cfg.Watch.DebounceMs)
	<-ctx.Done()
	return nil
}

func regenerate(path string, cfg *config.Config, f generateFlags, w io.Writer, logger *slog.Logger) error {
	text, hint, err := readSource(path, nil, cfg.Generate.MaxSourceBytes)
	if err != nil {
		return err
	}
	res, err := generateMap(text, hint, cfg, f)
	if err != nil {
		return err
	}
	logger.Info("map updated", "path", path, "mode", res.ModeLabel)
	return writeMap(w, f.out, res.Text)
}
