// Command debug-scan prints the raw structural map a parser extracts from a
// file, before rendering and redaction.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/reuno721/MiniMapPad/internal/classify"
	"github.com/reuno721/MiniMapPad/internal/extraction"
	"github.com/reuno721/MiniMapPad/internal/parsers"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: debug-scan <file>")
		os.Exit(2)
	}
	path := os.Args[1]

	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatal(err)
	}
	source := string(data)

	m, err := parsers.NewPythonExtractor().Extract(source)
	if err != nil {
		fmt.Fprintf(os.Stderr, "python: %v\n", err)

		lang := classify.Classify(source, path)
		fmt.Fprintf(os.Stderr, "scanner: %s\n", lang)
		m = scanGuarded(lang, source)
	}

	fmt.Printf("=== %s ===\n", m.Language)
	fmt.Printf("Imports: %d  Types: %d  Functions: %d\n", len(m.Imports), len(m.Types), len(m.Functions))
	printJSON(m)
}

// scanGuarded keeps a scanner panic visible in the dump instead of crashing.
func scanGuarded(lang extraction.Language, source string) (m *extraction.StructuralMap) {
	defer func() {
		if r := recover(); r != nil {
			m = extraction.NewStructuralMap(lang)
			m.Degraded = &extraction.Degradation{Mode: lang.String(), Message: fmt.Sprint(r)}
		}
	}()
	return parsers.NewScanner(lang).Scan(source)
}

func printJSON(m *extraction.StructuralMap) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		log.Fatal(err)
	}
}
