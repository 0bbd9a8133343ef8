// Package page drives the game page in Chrome over the DevTools protocol.
package page

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	cdppage "github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/at-ishikawa/definer/internal/overlay"
	"github.com/at-ishikawa/definer/internal/pipeline"
	"github.com/at-ishikawa/definer/internal/selection"
)

// ErrNotAttached is returned once the browser tab has gone away.
var ErrNotAttached = errors.New("page is not attached to a browser tab")

var (
	_ selection.Document  = (*Session)(nil)
	_ overlay.Surface     = (*Session)(nil)
	_ overlay.Locator     = (*Session)(nil)
	_ overlay.AudioPlayer = (*Session)(nil)
	_ pipeline.Observer   = (*Session)(nil)
)

type Config struct {
	URL                   string
	Headless              bool
	ExecPath              string
	UserDataDir           string
	ContainerClassPattern string
	SelectedClass         string
}

// Session is one browser tab showing the game. All methods are safe for concurrent use.
type Session struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	config      Config
	logger      *slog.Logger

	observeOnce sync.Once
	stream      *eventStream
	observeErr  error
}

func execOptions(config Config) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	// DefaultExecAllocatorOptions is headless; a visible window is the usual case.
	if !config.Headless {
		opts = append(opts,
			chromedp.Flag("headless", false),
			chromedp.Flag("hide-scrollbars", false),
			chromedp.Flag("mute-audio", false),
		)
	}
	if config.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(config.ExecPath))
	}
	if config.UserDataDir != "" {
		opts = append(opts, chromedp.UserDataDir(config.UserDataDir))
	}
	return opts
}

// Open launches Chrome, navigates to the game and injects the overlay stylesheet.
// The browser lives until Close is called or ctx is done.
func Open(ctx context.Context, config Config, logger *slog.Logger) (*Session, error) {
	logger = logger.With("component", "page")
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, execOptions(config)...)
	tabCtx, cancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			logger.Debug(fmt.Sprintf(format, args...))
		}),
		chromedp.WithErrorf(func(format string, args ...any) {
			logger.Warn(fmt.Sprintf(format, args...))
		}),
	)

	session := &Session{
		ctx:         tabCtx,
		cancel:      cancel,
		allocCancel: allocCancel,
		config:      config,
		logger:      logger,
		stream:      newEventStream(),
	}

	stylesheet := stylesheetScript(overlay.Stylesheet)
	if err := chromedp.Run(tabCtx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := cdppage.AddScriptToEvaluateOnNewDocument(stylesheet).Do(ctx)
			return err
		}),
		chromedp.Navigate(config.URL),
		chromedp.Evaluate(stylesheet, nil),
	); err != nil {
		session.Close()
		return nil, fmt.Errorf("chromedp.Run(%s) > %w", config.URL, err)
	}
	logger.Info("opened the game page", "url", config.URL)
	return session, nil
}

// Done is closed once the browser tab has gone away.
func (session *Session) Done() <-chan struct{} {
	return session.ctx.Done()
}

func (session *Session) Close() {
	session.cancel()
	session.allocCancel()
	session.stream.close()
}

func (session *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	if session.ctx.Err() != nil {
		return ErrNotAttached
	}
	runCtx, cancel := context.WithCancel(session.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if session.ctx.Err() != nil {
			return ErrNotAttached
		}
		return err
	}
	return nil
}

func (session *Session) evaluate(ctx context.Context, script string, res any) error {
	if err := session.run(ctx, chromedp.Evaluate(script, res)); err != nil {
		return fmt.Errorf("chromedp.Evaluate > %w", err)
	}
	return nil
}

// Location returns the URL the tab is currently showing.
func (session *Session) Location(ctx context.Context) (string, error) {
	var location string
	if err := session.run(ctx, chromedp.Location(&location)); err != nil {
		return "", fmt.Errorf("chromedp.Location > %w", err)
	}
	return location, nil
}

// Observe installs the page observers and returns their events. The observers are
// installed once; later calls return the same channel. The channel is closed when
// the tab goes away.
func (session *Session) Observe(ctx context.Context) (<-chan pipeline.Event, error) {
	session.observeOnce.Do(func() {
		session.observeErr = session.attach(ctx)
	})
	if session.observeErr != nil {
		return nil, session.observeErr
	}
	return session.stream.events(), nil
}

func (session *Session) attach(ctx context.Context) error {
	chromedp.ListenTarget(session.ctx, func(ev any) {
		called, ok := ev.(*runtime.EventBindingCalled)
		if !ok || called.Name != bindingName {
			return
		}
		event, err := decodeEvent(called.Payload)
		if err != nil {
			session.logger.Warn("ignored a page event", "payload", called.Payload, "error", err)
			return
		}
		session.stream.push(event)
	})
	context.AfterFunc(session.ctx, session.stream.close)

	script := observerScript(session.config.ContainerClassPattern)
	if err := session.run(ctx,
		runtime.AddBinding(bindingName),
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := cdppage.AddScriptToEvaluateOnNewDocument(script).Do(ctx)
			return err
		}),
		chromedp.Evaluate(script, nil),
	); err != nil {
		return fmt.Errorf("session.run(observer) > %w", err)
	}
	session.logger.Info("attached the page observer", "container", session.config.ContainerClassPattern)
	return nil
}

// Snapshot returns the serialized document.
func (session *Session) Snapshot(ctx context.Context) (string, error) {
	var html string
	if err := session.evaluate(ctx, snapshotScript, &html); err != nil {
		return "", err
	}
	return html, nil
}

// TextSelection returns the text the user highlighted, if any.
func (session *Session) TextSelection(ctx context.Context) (string, error) {
	var text string
	if err := session.evaluate(ctx, textSelectionScript, &text); err != nil {
		return "", err
	}
	return text, nil
}

func (session *Session) FirstSelectedRect(ctx context.Context) (overlay.Rect, bool, error) {
	var result rectResult
	if err := session.evaluate(ctx, firstSelectedRectScript(session.config.SelectedClass), &result); err != nil {
		return overlay.Rect{}, false, err
	}
	return result.Rect, result.Found, nil
}

func (session *Session) Mount(ctx context.Context, id string, markup string, anchor overlay.Anchor) error {
	script, err := mountScript(id, markup, anchor)
	if err != nil {
		return fmt.Errorf("mountScript > %w", err)
	}
	return session.evaluate(ctx, script, nil)
}

func (session *Session) Unmount(ctx context.Context, id string) error {
	return session.evaluate(ctx, unmountScript(id), nil)
}

func (session *Session) ReplaceCard(ctx context.Context, id string, index int, markup string) error {
	return session.evaluate(ctx, replaceCardScript(id, index, markup), nil)
}

// Play starts the pronunciation in the page and returns without waiting for it to end.
func (session *Session) Play(ctx context.Context, url string) error {
	return session.evaluate(ctx, playScript(url), nil)
}
