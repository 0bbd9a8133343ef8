package server

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotGamePage is answered when the watched tab no longer shows the game.
var ErrNotGamePage = errors.New("the watched tab is not the game page")

// PageChecker reports whether the watched tab still shows the game.
type PageChecker interface {
	OnGamePage(ctx context.Context) (bool, error)
}

type Locator interface {
	Location(ctx context.Context) (string, error)
}

// GamePage matches the tab URL against the configured game URL pattern.
type GamePage struct {
	locator Locator
	pattern string
}

func NewGamePage(locator Locator, pattern string) *GamePage {
	return &GamePage{
		locator: locator,
		pattern: pattern,
	}
}

func (page *GamePage) OnGamePage(ctx context.Context) (bool, error) {
	location, err := page.locator.Location(ctx)
	if err != nil {
		return false, fmt.Errorf("locator.Location > %w", err)
	}
	return strings.Contains(location, page.pattern), nil
}
