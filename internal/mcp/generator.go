package mcp

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/reuno721/MiniMapPad/internal/config"
	"github.com/reuno721/MiniMapPad/internal/minimap"
)

var (
	// ErrEmptySource is returned for a blank source argument.
	ErrEmptySource = errors.New("source is empty")
	// ErrSourceTooLarge is returned when the source exceeds generate.max_source_bytes.
	ErrSourceTooLarge = errors.New("source too large")
)

// GenerateRequest is the argument set of minimap_generate. Nil toggles fall
// back to the configured defaults.
type GenerateRequest struct {
	Source      string `json:"source"`
	Filename    string `json:"filename,omitempty"`
	Language    string `json:"language,omitempty"`
	Redact      *bool  `json:"redact,omitempty"`
	Diagnostics *bool  `json:"diagnostics,omitempty"`
}

// GenerateResponse is the minimap_generate result.
type GenerateResponse struct {
	Map      string `json:"map"`
	Mode     string `json:"mode"`
	Language string `json:"language"`
	Degraded bool   `json:"degraded"`
	Cached   bool   `json:"cached,omitempty"`
}

// ClassifyRequest is the argument set of minimap_classify.
type ClassifyRequest struct {
	Source   string `json:"source"`
	Filename string `json:"filename,omitempty"`
}

// ClassifyResponse explains how Auto mode would treat a source.
type ClassifyResponse struct {
	Scanner      string         `json:"scanner"`
	ByExtension  bool           `json:"by_extension"`
	PythonParses bool           `json:"python_parses"`
	AutoMode     string         `json:"auto_mode"`
	Scores       map[string]int `json:"scores"`
}

// Generator serves tool calls with the configured defaults, a result cache
// and call metrics. It is safe for concurrent use.
type Generator struct {
	cfg     *config.Config
	cache   *resultCache
	metrics *GenerationMetrics
	logger  *slog.Logger
}

// NewGenerator creates a Generator. A nil cfg uses config.Default() and a
// nil logger discards output.
func NewGenerator(cfg *config.Config, logger *slog.Logger) (*Generator, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	cache, err := newResultCache(cfg.MCP.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create result cache: %w", err)
	}

	return &Generator{
		cfg:     cfg,
		cache:   cache,
		metrics: NewGenerationMetrics(),
		logger:  logger,
	}, nil
}

// Generate builds the map for req. Errors are *minimap.ConfigurationError
// for a bad language, *extraction.ParseError for forced Python, or one of
// the sentinels above.
func (g *Generator) Generate(req *GenerateRequest) (*GenerateResponse, error) {
	start := time.Now()

	resp, cached, err := g.generate(req)
	if err != nil {
		g.metrics.RecordGenerate(time.Since(start), "", false, false, err)
		return nil, err
	}
	g.metrics.RecordGenerate(time.Since(start), resp.Mode, resp.Degraded, cached, nil)

	g.logger.Debug("generated map",
		"mode", resp.Mode,
		"filename", req.Filename,
		"bytes", len(req.Source),
		"cached", cached)

	if cached {
		hit := *resp
		hit.Cached = true
		return &hit, nil
	}
	return resp, nil
}

func (g *Generator) generate(req *GenerateRequest) (*GenerateResponse, bool, error) {
	if err := g.checkSource(req.Source); err != nil {
		return nil, false, err
	}

	selector, err := g.cfg.Selector(req.Language)
	if err != nil {
		return nil, false, err
	}

	opts := g.cfg.Options()
	if req.Redact != nil {
		opts.Redact = *req.Redact
	}
	if req.Diagnostics != nil {
		opts.Diagnostics = *req.Diagnostics
	}

	payload := cachePayload("generate",
		req.Source,
		req.Filename,
		selector.String(),
		strconv.FormatBool(opts.Redact),
		strconv.FormatBool(opts.Diagnostics),
		strconv.FormatBool(opts.TokenPatterns),
		strconv.Itoa(opts.DiagnosticLimit),
	)
	if v, ok := g.cache.get(payload); ok {
		return v.(*GenerateResponse), true, nil
	}

	res, err := minimap.Generate(minimap.Source{
		Text:         req.Source,
		FilenameHint: req.Filename,
		Selector:     selector,
	}, opts)
	if err != nil {
		return nil, false, err
	}

	resp := &GenerateResponse{
		Map:      res.Text,
		Mode:     res.ModeLabel,
		Language: res.Language.String(),
		Degraded: res.Degraded,
	}
	g.cache.set(payload, resp)
	return resp, false, nil
}

// Classify reports the classifier decision for req.
func (g *Generator) Classify(req *ClassifyRequest) (*ClassifyResponse, error) {
	if err := g.checkSource(req.Source); err != nil {
		return nil, err
	}

	payload := cachePayload("classify", req.Source, req.Filename)
	if v, ok := g.cache.get(payload); ok {
		return v.(*ClassifyResponse), nil
	}

	report := minimap.Sniff(req.Source, req.Filename)
	scores := make(map[string]int, len(report.Scores))
	for lang, score := range report.Scores {
		scores[lang.String()] = score
	}

	resp := &ClassifyResponse{
		Scanner:      report.Scanner.String(),
		ByExtension:  report.ByExtension,
		PythonParses: report.PythonParses,
		AutoMode:     report.AutoLabel(),
		Scores:       scores,
	}
	g.cache.set(payload, resp)
	return resp, nil
}

// Metrics returns a snapshot of the generate call statistics.
func (g *Generator) Metrics() MetricsSnapshot {
	return g.metrics.GetMetrics()
}

// Close releases the result cache.
func (g *Generator) Close() {
	g.cache.close()
}

func (g *Generator) checkSource(source string) error {
	if strings.TrimSpace(source) == "" {
		return ErrEmptySource
	}
	if limit := g.cfg.Generate.MaxSourceBytes; limit > 0 && int64(len(source)) > limit {
		return fmt.Errorf("%w: %d bytes exceeds %d", ErrSourceTooLarge, len(source), limit)
	}
	return nil
}
