// Package settings persists the user's auto-define preferences.
package settings

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Position is the anchor strategy of the overlay.
type Position string

const (
	// PositionAuto anchors the overlay below the first selected tile when it can be located.
	PositionAuto Position = "auto"
	// PositionTopRight always anchors the overlay at the top-right corner of the page.
	PositionTopRight Position = "top-right"
)

var (
	_            pflag.Value = (*Position)(nil)
	allPositions             = []Position{PositionAuto, PositionTopRight}
)

func (p *Position) Set(val string) error {
	for _, position := range allPositions {
		if val == string(position) {
			*p = position
			return nil
		}
	}
	return fmt.Errorf("invalid position: %s. Possible values are %v", val, allPositions)
}

func (p Position) String() string {
	return string(p)
}

func (p *Position) Type() string {
	return "Position"
}

// UnmarshalYAML implements the yaml.Unmarshaler interface
func (p *Position) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("value.Decode > %w", err)
	}
	if s == "" {
		*p = PositionAuto
		return nil
	}
	return p.Set(s)
}

type Settings struct {
	AutoDefineEnabled bool     `yaml:"autoDefineEnabled"`
	PopoverPosition   Position `yaml:"popoverPosition" validate:"required,oneof=auto top-right"`
}

// Default returns the settings used when nothing has been saved yet.
func Default() Settings {
	return Settings{
		AutoDefineEnabled: false,
		PopoverPosition:   PositionAuto,
	}
}

// Store reads and writes Settings.
type Store interface {
	Load(ctx context.Context) (Settings, error)
	Save(ctx context.Context, settings Settings) error
}
