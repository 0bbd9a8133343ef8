// Package pipeline runs the auto-define loop: it watches the page for selection
// changes, looks the selected words up and keeps the overlay in sync.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/at-ishikawa/definer/internal/detector"
	"github.com/at-ishikawa/definer/internal/dictionary"
	"github.com/at-ishikawa/definer/internal/overlay"
)

// Extractor returns the currently selected words, at most four, in page order.
type Extractor interface {
	Extract(ctx context.Context) []string
}

// Observer attaches the page observers and streams their events.
// The channel is closed when the page goes away.
type Observer interface {
	Observe(ctx context.Context) (<-chan Event, error)
}

type fetchResult struct {
	generation uint64
	words      []string
	records    []dictionary.Record
}

// Pipeline is the auto-define loop. The detector, the presenter and the generation
// counter are only touched from the goroutine running Run.
type Pipeline struct {
	extractor  Extractor
	dictionary dictionary.Dictionary
	presenter  *overlay.Presenter
	observer   Observer
	autoDefine bool
	logger     *slog.Logger

	detector   *detector.Detector
	generation uint64
	results    chan fetchResult
	wg         sync.WaitGroup
}

type Params struct {
	Extractor  Extractor
	Dictionary dictionary.Dictionary
	Presenter  *overlay.Presenter
	Observer   Observer
	AutoDefine bool
}

func New(params Params, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		extractor:  params.Extractor,
		dictionary: params.Dictionary,
		presenter:  params.Presenter,
		observer:   params.Observer,
		autoDefine: params.AutoDefine,
		logger:     logger.With("component", "pipeline"),
		detector:   detector.New(),
		results:    make(chan fetchResult),
	}
}

// SelectedWords answers the popup's get_selected_words message.
// It works whether or not auto-define is enabled.
func (p *Pipeline) SelectedWords(ctx context.Context) []string {
	return p.extractor.Extract(ctx)
}

// Run blocks until ctx is done or the page event stream ends.
// With auto-define disabled it returns at once without attaching anything.
func (p *Pipeline) Run(ctx context.Context) error {
	if !p.autoDefine {
		p.logger.InfoContext(ctx, "auto-define is disabled")
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		p.wg.Wait()
	}()

	events, err := p.observer.Observe(ctx)
	if err != nil {
		return fmt.Errorf("observer.Observe > %w", err)
	}
	p.logger.InfoContext(ctx, "auto-define is running")

	p.detect(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				p.logger.InfoContext(ctx, "page event stream closed")
				return nil
			}
			p.handle(ctx, event)
		case result := <-p.results:
			p.render(ctx, result)
		}
	}
}

func (p *Pipeline) handle(ctx context.Context, event Event) {
	p.logger.DebugContext(ctx, "page event", "event", event.String())

	var err error
	switch event.Kind {
	case EventMutation, EventClick:
		p.detect(ctx)
	case EventClose:
		// The selection is kept, so the overlay only comes back once it changes.
		p.generation++
		err = p.presenter.Remove(ctx)
	case EventToggle:
		err = p.presenter.Toggle(ctx, event.Index)
	case EventAudio:
		err = p.presenter.PlayAudio(ctx, event.Index)
	default:
		p.logger.WarnContext(ctx, "unknown page event", "kind", string(event.Kind))
	}
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to handle a page event", "event", event.String(), "error", err)
	}
}

func (p *Pipeline) detect(ctx context.Context) {
	words := p.extractor.Extract(ctx)
	decision := p.detector.Observe(words)

	switch decision.Action {
	case detector.ActionFetch:
		p.generation++
		words = decision.State.Words()
		p.logger.InfoContext(ctx, "selection changed",
			slog.String("words", strings.Join(words, ",")),
			slog.Uint64("generation", p.generation),
		)
		if err := p.presenter.ShowLoading(ctx, words); err != nil {
			p.logger.ErrorContext(ctx, "failed to show the loading overlay", "error", err)
		}
		p.fetch(ctx, p.generation, words)
	case detector.ActionRemove:
		p.generation++
		p.logger.InfoContext(ctx, "selection cleared")
		if err := p.presenter.Remove(ctx); err != nil {
			p.logger.ErrorContext(ctx, "failed to remove the overlay", "error", err)
		}
	}
}

func (p *Pipeline) fetch(ctx context.Context, generation uint64, words []string) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		records := p.dictionary.LookupAll(ctx, words)
		select {
		case p.results <- fetchResult{generation: generation, words: words, records: records}:
		case <-ctx.Done():
		}
	}()
}

func (p *Pipeline) render(ctx context.Context, result fetchResult) {
	if result.generation != p.generation {
		p.logger.DebugContext(ctx, "discarding stale definitions",
			slog.Uint64("generation", result.generation),
			slog.Uint64("current", p.generation),
		)
		return
	}
	if err := p.presenter.Show(ctx, result.words, result.records); err != nil {
		p.logger.ErrorContext(ctx, "failed to show definitions", "error", err)
	}
}
