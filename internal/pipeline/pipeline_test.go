package pipeline

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"

	"github.com/at-ishikawa/definer/internal/dictionary"
	mock_dictionary "github.com/at-ishikawa/definer/internal/mocks/dictionary"
	"github.com/at-ishikawa/definer/internal/overlay"
	"github.com/at-ishikawa/definer/internal/settings"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

type fakeExtractor struct {
	mu    sync.Mutex
	words []string
}

func (e *fakeExtractor) set(words ...string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.words = words
}

func (e *fakeExtractor) Extract(context.Context) []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string{}, e.words...)
}

type fakeObserver struct {
	mu       sync.Mutex
	attached int
	events   chan Event
	err      error
}

func newFakeObserver() *fakeObserver {
	return &fakeObserver{events: make(chan Event)}
}

func (o *fakeObserver) Observe(context.Context) (<-chan Event, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.attached++
	if o.err != nil {
		return nil, o.err
	}
	return o.events, nil
}

func (o *fakeObserver) attachCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.attached
}

type fakeSurface struct {
	mu       sync.Mutex
	mounted  map[string]string
	mounts   int
	replaced map[int]string
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{mounted: map[string]string{}, replaced: map[int]string{}}
}

func (s *fakeSurface) Mount(_ context.Context, id string, markup string, _ overlay.Anchor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mounts++
	s.mounted[id] = markup
	return nil
}

func (s *fakeSurface) Unmount(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.mounted, id)
	return nil
}

func (s *fakeSurface) ReplaceCard(_ context.Context, _ string, index int, markup string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaced[index] = markup
	return nil
}

func (s *fakeSurface) markup() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	markup, ok := s.mounted[overlay.ElementID]
	return markup, ok
}

func (s *fakeSurface) mountCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mounts
}

func (s *fakeSurface) replacedCard(index int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replaced[index]
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type harness struct {
	extractor  *fakeExtractor
	observer   *fakeObserver
	surface    *fakeSurface
	dictionary *mock_dictionary.MockDictionary
	logs       *syncBuffer
	pipeline   *Pipeline
}

func newHarness(t *testing.T, autoDefine bool) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)
	h := &harness{
		extractor:  &fakeExtractor{},
		observer:   newFakeObserver(),
		surface:    newFakeSurface(),
		dictionary: mock_dictionary.NewMockDictionary(ctrl),
		logs:       &syncBuffer{},
	}
	logger := slog.New(slog.NewTextHandler(h.logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	h.pipeline = New(Params{
		Extractor:  h.extractor,
		Dictionary: h.dictionary,
		Presenter:  overlay.NewPresenter(h.surface, settings.PositionAuto, logger),
		Observer:   h.observer,
		AutoDefine: autoDefine,
	}, logger)
	return h
}

// start runs the pipeline until the test ends.
func (h *harness) start(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- h.pipeline.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
	})
}

func (h *harness) send(event Event) {
	h.observer.events <- event
}

func (h *harness) waitForMarkup(t *testing.T, contains string) string {
	t.Helper()
	var markup string
	require.Eventually(t, func() bool {
		var ok bool
		markup, ok = h.surface.markup()
		return ok && strings.Contains(markup, contains)
	}, waitFor, tick)
	return markup
}

func record(word, definition string) dictionary.Record {
	return dictionary.Record{
		Word: word,
		Meanings: []dictionary.Meaning{
			{PartOfSpeech: "noun", Definitions: []dictionary.Definition{{Text: definition}}},
		},
	}
}

func TestPipeline_Run_AutoDefineDisabled(t *testing.T) {
	h := newHarness(t, false)
	h.extractor.set("Salt")

	require.NoError(t, h.pipeline.Run(context.Background()))
	assert.Equal(t, 0, h.observer.attachCount())
	assert.Equal(t, 0, h.surface.mountCount())
}

func TestPipeline_Run_ObserveError(t *testing.T) {
	h := newHarness(t, true)
	h.observer.err = errors.New("page not attached")

	err := h.pipeline.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, 0, h.surface.mountCount())
}

func TestPipeline_Run_EventStreamClosed(t *testing.T) {
	h := newHarness(t, true)
	close(h.observer.events)

	require.NoError(t, h.pipeline.Run(context.Background()))
	assert.Equal(t, 1, h.observer.attachCount())
}

func TestPipeline_Run_InitialSelection(t *testing.T) {
	h := newHarness(t, true)
	h.extractor.set("Salt", "Pepper")
	h.dictionary.EXPECT().
		LookupAll(gomock.Any(), []string{"Salt", "Pepper"}).
		Return([]dictionary.Record{record("salt", "A mineral."), record("pepper", "A spice.")}).
		Times(1)

	h.start(t)

	markup := h.waitForMarkup(t, "A spice.")
	salt := strings.Index(markup, "A mineral.")
	pepper := strings.Index(markup, "A spice.")
	require.NotEqual(t, -1, salt)
	assert.Less(t, salt, pepper)
	assert.Contains(t, markup, "Salt, Pepper")
}

func TestPipeline_Run_UnchangedSelectionFetchesOnce(t *testing.T) {
	h := newHarness(t, true)
	h.dictionary.EXPECT().
		LookupAll(gomock.Any(), []string{"Salt"}).
		Return([]dictionary.Record{record("salt", "A mineral.")}).
		Times(1)

	h.start(t)
	h.extractor.set("Salt")
	for range 10 {
		h.send(Event{Kind: EventMutation})
	}
	h.send(Event{Kind: EventClick})
	h.waitForMarkup(t, "A mineral.")
}

func TestPipeline_Run_SelectionCleared(t *testing.T) {
	h := newHarness(t, true)
	h.extractor.set("Salt", "Pepper", "Cumin")
	h.dictionary.EXPECT().
		LookupAll(gomock.Any(), []string{"Salt", "Pepper", "Cumin"}).
		Return([]dictionary.Record{record("salt", "A mineral."), record("pepper", "A spice."), record("cumin", "A seed.")})

	h.start(t)
	h.waitForMarkup(t, "A seed.")

	h.extractor.set()
	h.send(Event{Kind: EventMutation})
	require.Eventually(t, func() bool {
		_, ok := h.surface.markup()
		return !ok
	}, waitFor, tick)
}

func TestPipeline_Run_StaleResultsDiscarded(t *testing.T) {
	h := newHarness(t, true)
	release := make(chan struct{})
	h.dictionary.EXPECT().
		LookupAll(gomock.Any(), []string{"Salt"}).
		DoAndReturn(func(ctx context.Context, _ []string) []dictionary.Record {
			select {
			case <-release:
			case <-ctx.Done():
			}
			return []dictionary.Record{record("salt", "A mineral.")}
		})
	h.dictionary.EXPECT().
		LookupAll(gomock.Any(), []string{"Pepper"}).
		Return([]dictionary.Record{record("pepper", "A spice.")})

	h.extractor.set("Salt")
	h.start(t)
	h.waitForMarkup(t, "Loading...")

	h.extractor.set("Pepper")
	h.send(Event{Kind: EventMutation})
	h.waitForMarkup(t, "A spice.")

	close(release)
	require.Eventually(t, func() bool {
		return strings.Contains(h.logs.String(), "discarding stale definitions")
	}, waitFor, tick)
	markup, ok := h.surface.markup()
	require.True(t, ok)
	assert.Contains(t, markup, "A spice.")
	assert.NotContains(t, markup, "A mineral.")
}

func TestPipeline_Run_RemovedWhileFetching(t *testing.T) {
	tests := []struct {
		name   string
		remove func(h *harness)
	}{
		{
			name: "selection cleared",
			remove: func(h *harness) {
				h.extractor.set()
				h.send(Event{Kind: EventMutation, Index: -1})
			},
		},
		{
			name: "overlay closed",
			remove: func(h *harness) {
				h.send(Event{Kind: EventClose, Index: -1})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, true)
			release := make(chan struct{})
			h.dictionary.EXPECT().
				LookupAll(gomock.Any(), []string{"Salt"}).
				DoAndReturn(func(ctx context.Context, _ []string) []dictionary.Record {
					select {
					case <-release:
					case <-ctx.Done():
					}
					return []dictionary.Record{record("salt", "A mineral.")}
				}).
				Times(1)

			h.extractor.set("Salt")
			h.start(t)
			h.waitForMarkup(t, "Loading...")

			tt.remove(h)
			require.Eventually(t, func() bool {
				_, ok := h.surface.markup()
				return !ok
			}, waitFor, tick)

			close(release)
			require.Eventually(t, func() bool {
				return strings.Contains(h.logs.String(), "discarding stale definitions")
			}, waitFor, tick)
			_, ok := h.surface.markup()
			assert.False(t, ok)
			assert.Equal(t, 1, h.surface.mountCount())
		})
	}
}

func TestPipeline_Run_OverlayControls(t *testing.T) {
	h := newHarness(t, true)
	salt := record("salt", "A mineral.")
	salt.Origin = "Old English sealt"
	h.extractor.set("Salt")
	h.dictionary.EXPECT().
		LookupAll(gomock.Any(), []string{"Salt"}).
		Return([]dictionary.Record{salt}).
		Times(1)

	h.start(t)
	h.waitForMarkup(t, "A mineral.")

	h.send(Event{Kind: EventToggle, Index: 0})
	require.Eventually(t, func() bool {
		return strings.Contains(h.surface.replacedCard(0), "Old English sealt")
	}, waitFor, tick)

	h.send(Event{Kind: EventClose})
	require.Eventually(t, func() bool {
		_, ok := h.surface.markup()
		return !ok
	}, waitFor, tick)

	// The selection did not change, so nothing is fetched or shown again.
	h.send(Event{Kind: EventMutation})
	h.send(Event{Kind: EventMutation})
	_, ok := h.surface.markup()
	assert.False(t, ok)
}

func TestPipeline_SelectedWords(t *testing.T) {
	h := newHarness(t, false)
	h.extractor.set("Salt", "Pepper")

	assert.Equal(t, []string{"Salt", "Pepper"}, h.pipeline.SelectedWords(context.Background()))
}

func TestEvent_String(t *testing.T) {
	assert.Equal(t, "mutation", Event{Kind: EventMutation}.String())
	assert.Equal(t, "toggle[2]", Event{Kind: EventToggle, Index: 2}.String())
	assert.True(t, EventAudio.Valid())
	assert.False(t, EventKind("scroll").Valid())
}
