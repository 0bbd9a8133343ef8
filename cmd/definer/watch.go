package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/at-ishikawa/definer/internal/overlay"
	"github.com/at-ishikawa/definer/internal/page"
	"github.com/at-ishikawa/definer/internal/pipeline"
	"github.com/at-ishikawa/definer/internal/selection"
	"github.com/at-ishikawa/definer/internal/server"
)

func newWatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Open the game and define the selected words as they change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			closeLog := setupFileLogger(cfg.Log, debugMode)
			defer func() {
				_ = closeLog()
			}()

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			_, userSettings, err := loadSettings(ctx, cfg)
			if err != nil {
				return err
			}
			logger := slog.Default().With("session", uuid.NewString())
			logger.InfoContext(ctx, "starting",
				slog.Bool("autoDefineEnabled", userSettings.AutoDefineEnabled),
				slog.String("popoverPosition", userSettings.PopoverPosition.String()),
			)

			session, err := page.Open(ctx, page.Config{
				URL:                   cfg.Game.URL,
				Headless:              cfg.Browser.Headless,
				ExecPath:              cfg.Browser.ExecPath,
				UserDataDir:           cfg.Browser.UserDataDir,
				ContainerClassPattern: cfg.Game.ContainerClassPattern,
				SelectedClass:         cfg.Game.SelectedClass,
			}, logger)
			if err != nil {
				return fmt.Errorf("page.Open > %w", err)
			}
			defer session.Close()

			gamePage := server.NewGamePage(session, cfg.Game.URLPattern)
			onGamePage, err := gamePage.OnGamePage(ctx)
			if err != nil {
				return fmt.Errorf("gamePage.OnGamePage > %w", err)
			}
			if !onGamePage {
				return fmt.Errorf("the opened page is not the game (expected a URL containing %s)", cfg.Game.URLPattern)
			}

			dict := newDictionaryClient(cfg, logger)
			presenter := overlay.NewPresenter(session, userSettings.PopoverPosition, logger,
				overlay.WithLocator(session),
				overlay.WithAudioPlayer(session),
			)
			autoDefine := pipeline.New(pipeline.Params{
				Extractor:  selection.NewPageExtractor(session, cfg.Game.SelectedClass, logger),
				Dictionary: dict,
				Presenter:  presenter,
				Observer:   session,
				AutoDefine: userSettings.AutoDefineEnabled,
			}, logger)
			messages := server.New(cfg.Server.ListenAddr, server.NewMessageHandler(autoDefine, gamePage, logger), logger)

			return runWatch(ctx, session.Done(), autoDefine, messages)
		},
	}
}

type runner interface {
	Run(ctx context.Context) error
}

// runWatch runs the pipeline and the message server until ctx is done or the page goes away.
// The message server keeps answering even when auto-define is disabled.
func runWatch(ctx context.Context, pageDone <-chan struct{}, autoDefine runner, messages runner) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := autoDefine.Run(groupCtx); err != nil {
			return fmt.Errorf("pipeline.Run > %w", err)
		}
		return nil
	})
	group.Go(func() error {
		if err := messages.Run(groupCtx); err != nil {
			return fmt.Errorf("server.Run > %w", err)
		}
		return nil
	})
	group.Go(func() error {
		select {
		case <-pageDone:
			slog.Default().InfoContext(groupCtx, "the game page was closed")
			cancel()
		case <-groupCtx.Done():
		}
		return nil
	})
	return group.Wait()
}
