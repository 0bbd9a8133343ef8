// Package overlay owns the floating definitions overlay injected into the game page.
package overlay

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/at-ishikawa/definer/internal/dictionary"
	"github.com/at-ishikawa/definer/internal/settings"
)

// ElementID is the DOM id of the overlay. At most one element with this id exists.
const ElementID = "definer-overlay"

type State int

const (
	StateAbsent State = iota
	StateLoading
	StatePopulated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StatePopulated:
		return "populated"
	default:
		return "absent"
	}
}

// Surface is the page the overlay is rendered into.
type Surface interface {
	// Mount removes any element with id and inserts markup as a new one at anchor.
	Mount(ctx context.Context, id string, markup string, anchor Anchor) error
	Unmount(ctx context.Context, id string) error
	// ReplaceCard swaps the markup of one card inside the mounted overlay.
	ReplaceCard(ctx context.Context, id string, index int, markup string) error
}

// AudioPlayer plays a pronunciation. Calls may overlap.
type AudioPlayer interface {
	Play(ctx context.Context, url string) error
}

type card struct {
	record   dictionary.Record
	expanded bool
}

// Presenter is the only owner of the overlay element. Every Show first removes the
// previous element, so two overlays never coexist. It is not safe for concurrent use.
type Presenter struct {
	surface  Surface
	locator  Locator
	player   AudioPlayer
	position settings.Position
	logger   *slog.Logger

	state  State
	words  []string
	cards  []card
	anchor Anchor
	markup string
}

type PresenterOption func(*Presenter)

func WithLocator(locator Locator) PresenterOption {
	return func(p *Presenter) {
		p.locator = locator
	}
}

func WithAudioPlayer(player AudioPlayer) PresenterOption {
	return func(p *Presenter) {
		p.player = player
	}
}

func NewPresenter(surface Surface, position settings.Position, logger *slog.Logger, opts ...PresenterOption) *Presenter {
	presenter := &Presenter{
		surface:  surface,
		position: position,
		logger:   logger.With("component", "overlay"),
	}
	for _, opt := range opts {
		opt(presenter)
	}
	return presenter
}

func (presenter *Presenter) State() State {
	return presenter.state
}

func (presenter *Presenter) Anchor() Anchor {
	return presenter.anchor
}

// Markup returns the HTML currently mounted, or "" when the overlay is absent.
func (presenter *Presenter) Markup() string {
	return presenter.markup
}

// CardCount is the number of result cards currently rendered.
func (presenter *Presenter) CardCount() int {
	return len(presenter.cards)
}

// Words returns the words in the overlay header.
func (presenter *Presenter) Words() []string {
	return slices.Clone(presenter.words)
}

// ShowLoading replaces the overlay with a placeholder for words.
func (presenter *Presenter) ShowLoading(ctx context.Context, words []string) error {
	return presenter.show(ctx, words, nil, true)
}

// Show replaces the overlay with one card per record. Records beyond the number
// of words are dropped.
func (presenter *Presenter) Show(ctx context.Context, words []string, records []dictionary.Record) error {
	return presenter.show(ctx, words, records, false)
}

func (presenter *Presenter) show(ctx context.Context, words []string, records []dictionary.Record, loading bool) error {
	if err := presenter.Remove(ctx); err != nil {
		return err
	}
	if len(words) == 0 {
		return nil
	}

	if len(records) > len(words) {
		records = records[:len(words)]
	}
	cards := make([]card, 0, len(records))
	for _, record := range records {
		cards = append(cards, card{record: record})
	}

	view := overlayView{
		Words:   words,
		Loading: loading,
	}
	for i, c := range cards {
		view.Cards = append(view.Cards, newCardView(i, c))
	}
	markup, err := renderOverlay(view)
	if err != nil {
		return fmt.Errorf("renderOverlay > %w", err)
	}

	anchor := presenter.computeAnchor(ctx)
	if err := presenter.surface.Mount(ctx, ElementID, markup, anchor); err != nil {
		return fmt.Errorf("surface.Mount > %w", err)
	}

	presenter.words = slices.Clone(words)
	presenter.cards = cards
	presenter.anchor = anchor
	presenter.markup = markup
	if loading {
		presenter.state = StateLoading
	} else {
		presenter.state = StatePopulated
	}
	presenter.logger.DebugContext(ctx, "overlay shown",
		slog.String("state", presenter.state.String()),
		slog.String("words", strings.Join(words, ",")),
		slog.Int("cards", len(cards)),
		slog.String("anchor", anchor.String()),
	)
	return nil
}

// Remove takes the overlay off the page. It is a no-op when nothing is shown.
func (presenter *Presenter) Remove(ctx context.Context) error {
	if presenter.state == StateAbsent {
		return nil
	}
	presenter.state = StateAbsent
	presenter.words = nil
	presenter.cards = nil
	presenter.markup = ""
	presenter.anchor = Anchor{}
	if err := presenter.surface.Unmount(ctx, ElementID); err != nil {
		return fmt.Errorf("surface.Unmount > %w", err)
	}
	return nil
}

// Toggle expands or collapses the details of one card. Other cards are untouched.
func (presenter *Presenter) Toggle(ctx context.Context, index int) error {
	if presenter.state != StatePopulated || index < 0 || index >= len(presenter.cards) {
		return nil
	}
	previous, err := renderCard(newCardView(index, presenter.cards[index]))
	if err != nil {
		return fmt.Errorf("renderCard > %w", err)
	}

	presenter.cards[index].expanded = !presenter.cards[index].expanded
	next, err := renderCard(newCardView(index, presenter.cards[index]))
	if err != nil {
		presenter.cards[index].expanded = !presenter.cards[index].expanded
		return fmt.Errorf("renderCard > %w", err)
	}
	if err := presenter.surface.ReplaceCard(ctx, ElementID, index, next); err != nil {
		presenter.cards[index].expanded = !presenter.cards[index].expanded
		return fmt.Errorf("surface.ReplaceCard > %w", err)
	}
	presenter.markup = strings.Replace(presenter.markup, previous, next, 1)
	return nil
}

// Expanded reports whether the details of card index are visible.
func (presenter *Presenter) Expanded(index int) bool {
	if index < 0 || index >= len(presenter.cards) {
		return false
	}
	return presenter.cards[index].expanded
}

// PlayAudio plays the pronunciation of card index, if it has one.
func (presenter *Presenter) PlayAudio(ctx context.Context, index int) error {
	if presenter.player == nil || index < 0 || index >= len(presenter.cards) {
		return nil
	}
	url := presenter.cards[index].record.AudioURL
	if url == "" {
		return nil
	}
	if err := presenter.player.Play(ctx, NormalizeAudioURL(url)); err != nil {
		return fmt.Errorf("player.Play > %w", err)
	}
	return nil
}

// NormalizeAudioURL gives scheme-relative URLs ("//host/a.mp3") an https scheme.
func NormalizeAudioURL(url string) string {
	if strings.HasPrefix(url, "http") {
		return url
	}
	if strings.HasPrefix(url, "//") {
		return "https:" + url
	}
	return "https://" + strings.TrimPrefix(url, "/")
}
