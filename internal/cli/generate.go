package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/reuno721/MiniMapPad/internal/config"
	"github.com/reuno721/MiniMapPad/internal/extraction"
	"github.com/reuno721/MiniMapPad/internal/minimap"
	"github.com/spf13/cobra"
)

var (
	// ErrEmptyInput is returned when the source is blank.
	ErrEmptyInput = errors.New("input is empty")
	// ErrSourceTooLarge is returned when the source exceeds generate.max_source_bytes.
	ErrSourceTooLarge = errors.New("source too large")
)

// generateFlags are the per-invocation overrides of generate and watch.
type generateFlags struct {
	lang     string
	noRedact bool
	noTodo   bool
	out      string
	name     string
}

var genFlags generateFlags

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate [file|-]",
	Short: "Print the code map of one source file",
	Long: `Generate reads a source file (or stdin when the argument is "-" or
missing) and prints its code map. The mode label is printed on stderr.

Examples:
  # Map a file, auto-detecting the language
  minimap generate app/models.py

  # Force the Kotlin scanner for stdin and name the file in the header
  cat Screen.kt | minimap generate --lang kotlin --name Screen.kt

  # Write the map to a file without redaction
  minimap generate --no-redact --out models.map.txt app/models.py
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	addGenerateFlags(generateCmd, &genFlags)
	generateCmd.Flags().StringVar(&genFlags.name, "name", "", "File name hint for stdin input")
}

func addGenerateFlags(cmd *cobra.Command, f *generateFlags) {
	cmd.Flags().StringVarP(&f.lang, "lang", "l", "", "Language: auto, python, php, kotlin or java (default from config)")
	cmd.Flags().BoolVar(&f.noRedact, "no-redact", false, "Do not redact secrets and personal data")
	cmd.Flags().BoolVar(&f.noTodo, "no-todo", false, "Omit the TODO/FIXME/HACK warnings section")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "Write the map to this file instead of stdout")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path := "-"
	if len(args) == 1 {
		path = args[0]
	}

	text, hint, err := readSource(path, cmd.InOrStdin(), cfg.Generate.MaxSourceBytes)
	if err != nil {
		return err
	}
	if genFlags.name != "" {
		hint = genFlags.name
	}

	res, err := generateMap(text, hint, cfg, genFlags)
	if err != nil {
		return err
	}

	newLogger(cmd.ErrOrStderr()).Debug("generated map", "file", hint, "mode", res.ModeLabel, "bytes", len(text))
	fmt.Fprintln(cmd.ErrOrStderr(), "Mode:", res.ModeLabel)

	return writeMap(cmd.OutOrStdout(), genFlags.out, res.Text)
}

// readSource reads path, or r when path is "-". The returned hint is the
// path for files and empty for stdin.
func readSource(path string, r io.Reader, limit int64) (string, string, error) {
	hint := ""
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return "", "", fmt.Errorf("failed to open source: %w", err)
		}
		defer f.Close()
		r = f
		hint = path
	}

	// Read one byte past the limit to detect oversize input without
	// buffering all of it.
	reader := r
	if limit > 0 {
		reader = io.LimitReader(r, limit+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", "", fmt.Errorf("failed to read source: %w", err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return "", "", fmt.Errorf("%w: more than %d bytes", ErrSourceTooLarge, limit)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", "", ErrEmptyInput
	}
	return string(data), hint, nil
}

// generateMap applies the flag overrides to the configured defaults and runs
// the engine.
func generateMap(text, hint string, cfg *config.Config, f generateFlags) (*minimap.Result, error) {
	selector, err := cfg.Selector(f.lang)
	if err != nil {
		return nil, err
	}

	opts := cfg.Options()
	if f.noRedact {
		opts.Redact = false
	}
	if f.noTodo {
		opts.Diagnostics = false
	}

	res, err := minimap.Generate(minimap.Source{Text: text, FilenameHint: hint, Selector: selector}, opts)
	if err != nil {
		var parseErr *extraction.ParseError
		if errors.As(err, &parseErr) {
			return nil, fmt.Errorf("parse failed: %w", err)
		}
		return nil, err
	}
	return res, nil
}

// writeMap writes text to out, or to w when out is empty.
func writeMap(w io.Writer, out, text string) error {
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	if out == "" {
		_, err := io.WriteString(w, text)
		return err
	}
	if err := os.WriteFile(out, []byte(text), 0644); err != nil {
		return fmt.Errorf("failed to write map: %w", err)
	}
	return nil
}
