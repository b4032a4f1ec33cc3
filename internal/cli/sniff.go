package cli

import (
	"fmt"
	"io"

	"github.com/reuno721/MiniMapPad/internal/minimap"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// sniffCmd represents the sniff command
var sniffCmd = &cobra.Command{
	Use:   "sniff [file|-]",
	Short: "Show how Auto mode would classify a source",
	Long: `Sniff prints the Auto mode decision for a source as YAML: whether the
Python parser accepts it, which scanner the classifier would pick, and the
weighted score of every scanner language.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSniff,
}

var sniffName string

func init() {
	rootCmd.AddCommand(sniffCmd)
	sniffCmd.Flags().StringVar(&sniffName, "name", "", "File name hint for stdin input")
}

// sniffOutput is the YAML document printed by sniff.
type sniffOutput struct {
	File         string       `yaml:"file,omitempty"`
	AutoMode     string       `yaml:"auto_mode"`
	PythonParses bool         `yaml:"python_parses"`
	Scanner      string       `yaml:"scanner"`
	ByExtension  bool         `yaml:"by_extension"`
	Scores       []scoreEntry `yaml:"scores"`
}

type scoreEntry struct {
	Language string `yaml:"language"`
	Score    int    `yaml:"score"`
}

func runSniff(cmd *cobra.Command, args []string) error {
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
	if sniffName != "" {
		hint = sniffName
	}

	return writeSniff(cmd.OutOrStdout(), hint, minimap.Sniff(text, hint))
}

// writeSniff encodes report with scores in ranked order.
func writeSniff(w io.Writer, hint string, report *minimap.SniffReport) error {
	out := sniffOutput{
		File:         hint,
		AutoMode:     report.AutoLabel(),
		PythonParses: report.PythonParses,
		Scanner:      report.Scanner.String(),
		ByExtension:  report.ByExtension,
	}
	for _, lang := range report.Scores.Ranked() {
		out.Scores = append(out.Scores, scoreEntry{Language: lang.String(), Score: report.Scores[lang]})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return enc.Close()
}
