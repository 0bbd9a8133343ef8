// Package selection finds the words the user has selected on the game page.
package selection

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/antchfx/htmlquery"
)

// MaxWords is the size of one group in the game.
const MaxWords = 4

// Document is a read-only view of the host page.
type Document interface {
	// Snapshot returns the current outer HTML of the page.
	Snapshot(ctx context.Context) (string, error)
	// TextSelection returns the text the user has highlighted manually.
	TextSelection(ctx context.Context) (string, error)
}

// Source produces the currently selected words in page order.
type Source interface {
	Words(ctx context.Context) ([]string, error)
}

// MarkerSource reads the tiles the game marks with a "selected" class.
type MarkerSource struct {
	document Document
	xpath    string
}

var _ Source = (*MarkerSource)(nil)

func NewMarkerSource(document Document, selectedClass string) *MarkerSource {
	return &MarkerSource{
		document: document,
		xpath:    ClassXPath(selectedClass),
	}
}

// ClassXPath matches elements whose class list contains className as a whole token.
func ClassXPath(className string) string {
	return fmt.Sprintf(`//*[contains(concat(' ', normalize-space(@class), ' '), ' %s ')]`, className)
}

func (source *MarkerSource) Words(ctx context.Context) ([]string, error) {
	snapshot, err := source.document.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("document.Snapshot > %w", err)
	}
	doc, err := htmlquery.Parse(strings.NewReader(snapshot))
	if err != nil {
		return nil, fmt.Errorf("htmlquery.Parse > %w", err)
	}
	nodes, err := htmlquery.QueryAll(doc, source.xpath)
	if err != nil {
		return nil, fmt.Errorf("htmlquery.QueryAll(%s) > %w", source.xpath, err)
	}

	words := make([]string, 0, len(nodes))
	for _, node := range nodes {
		word := strings.TrimSpace(htmlquery.InnerText(node))
		if word == "" {
			continue
		}
		words = append(words, word)
	}
	return words, nil
}

// TextSelectionSource splits the user's manual text selection into words.
type TextSelectionSource struct {
	document Document
}

var _ Source = (*TextSelectionSource)(nil)

func NewTextSelectionSource(document Document) *TextSelectionSource {
	return &TextSelectionSource{document: document}
}

func (source *TextSelectionSource) Words(ctx context.Context) ([]string, error) {
	text, err := source.document.TextSelection(ctx)
	if err != nil {
		return nil, fmt.Errorf("document.TextSelection > %w", err)
	}
	return truncate(strings.Fields(text)), nil
}

// Extractor asks each source in turn and returns the first non-empty result.
type Extractor struct {
	sources []Source
	logger  *slog.Logger
}

func NewExtractor(logger *slog.Logger, sources ...Source) *Extractor {
	return &Extractor{
		sources: sources,
		logger:  logger.With("component", "selection"),
	}
}

// NewPageExtractor scans for marked tiles and falls back to the text selection.
func NewPageExtractor(document Document, selectedClass string, logger *slog.Logger) *Extractor {
	return NewExtractor(logger,
		NewMarkerSource(document, selectedClass),
		NewTextSelectionSource(document),
	)
}

// Extract returns at most MaxWords words. An empty result means nothing is
// selected; source failures are logged and treated the same way.
func (extractor *Extractor) Extract(ctx context.Context) []string {
	for _, source := range extractor.sources {
		words, err := source.Words(ctx)
		if err != nil {
			extractor.logger.DebugContext(ctx, "selection source failed",
				slog.String("source", fmt.Sprintf("%T", source)),
				slog.Any("error", err),
			)
			continue
		}
		if len(words) > 0 {
			return truncate(words)
		}
	}
	return []string{}
}

func truncate(words []string) []string {
	if len(words) > MaxWords {
		return words[:MaxWords]
	}
	return words
}
