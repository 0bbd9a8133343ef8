package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/at-ishikawa/definer/internal/config"
	"github.com/at-ishikawa/definer/internal/dictionary"
	"github.com/at-ishikawa/definer/internal/settings"
)

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create config loader: %w", err)
	}
	return loader.Load()
}

func loadSettings(ctx context.Context, cfg *config.Config) (*settings.FileStore, settings.Settings, error) {
	store := settings.NewFileStore(cfg.Settings.File)
	s, err := store.Load(ctx)
	if err != nil {
		return nil, settings.Settings{}, fmt.Errorf("store.Load > %w", err)
	}
	return store, s, nil
}

func newDictionaryClient(cfg *config.Config, logger *slog.Logger) *dictionary.Client {
	return dictionary.NewClient(dictionary.Config{
		BaseURL: cfg.Dictionary.BaseURL,
		Timeout: cfg.Dictionary.Timeout,
	}, logger)
}

func messageServerURL(cfg *config.Config) string {
	return "http://" + cfg.Server.ListenAddr
}
