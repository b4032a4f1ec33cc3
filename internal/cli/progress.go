package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

// BatchReporter receives batch run progress.
type BatchReporter interface {
	OnDiscoveryComplete(files int)
	OnFileProcessed(rel string)
	OnComplete(manifest *Manifest, elapsed time.Duration)
}

// CLIProgressReporter implements progress reporting with a progress bar.
type CLIProgressReporter struct {
	quiet   bool
	w       io.Writer
	fileBar *progressbar.ProgressBar
}

// NewCLIProgressReporter creates a reporter writing to w.
func NewCLIProgressReporter(w io.Writer, quiet bool) *CLIProgressReporter {
	return &CLIProgressReporter{quiet: quiet, w: w}
}

func (c *CLIProgressReporter) OnDiscoveryComplete(files int) {
	if c.quiet {
		return
	}
	fmt.Fprintf(c.w, "Mapping %s files\n", formatNumber(files))

	c.fileBar = progressbar.NewOptions(files,
		progressbar.OptionSetWriter(c.w),
		progressbar.OptionSetDescription("Mapping files"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(c.w)
		}),
	)
}

func (c *CLIProgressReporter) OnFileProcessed(rel string) {
	if c.quiet || c.fileBar == nil {
		return
	}
	c.fileBar.Add(1)
}

func (c *CLIProgressReporter) OnComplete(manifest *Manifest, elapsed time.Duration) {
	if c.quiet {
		return
	}
	if c.fileBar != nil {
		c.fileBar.Finish()
		c.fileBar = nil
	}

	failed, degraded := manifest.Counts()
	fmt.Fprintf(c.w, "✓ Batch complete: %s maps in %.1fs\n",
		formatNumber(len(manifest.Entries)-failed), elapsed.Seconds())
	if degraded > 0 {
		fmt.Fprintf(c.w, "  Partial scans: %s\n", formatNumber(degraded))
	}
	if failed > 0 {
		fmt.Fprintf(c.w, "  Failed:        %s\n", formatNumber(failed))
	}
	fmt.Fprintf(c.w, "  Output:        %s\n", manifest.OutputDir)
}

// formatNumber renders n with thousands separators.
func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}

	str := fmt.Sprintf("%d", n)
	var result string
	for i, c := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result += ","
		}
		result += string(c)
	}
	return result
}
