package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Dictionary DictionaryConfig `mapstructure:"dictionary"`
	Game       GameConfig       `mapstructure:"game"`
	Browser    BrowserConfig    `mapstructure:"browser"`
	Server     ServerConfig     `mapstructure:"server"`
	Settings   SettingsConfig   `mapstructure:"settings"`
	Log        LogConfig        `mapstructure:"log"`
}

type DictionaryConfig struct {
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// GameConfig describes the host page. The class names are defined by the game,
// not by us, so they are configurable for when the game ships new markup.
type GameConfig struct {
	URL                   string `mapstructure:"url" validate:"required,url"`
	URLPattern            string `mapstructure:"url_pattern" validate:"required"`
	SelectedClass         string `mapstructure:"selected_class" validate:"required,class_name"`
	ContainerClassPattern string `mapstructure:"container_class_pattern" validate:"required,class_name"`
}

type BrowserConfig struct {
	Headless    bool   `mapstructure:"headless"`
	ExecPath    string `mapstructure:"exec_path" validate:"omitempty,executable"`
	UserDataDir string `mapstructure:"user_data_dir"`
}

type ServerConfig struct {
	ListenAddr string `mapstructure:"listen_addr" validate:"required,hostname_port"`
}

type SettingsConfig struct {
	File string `mapstructure:"file" validate:"required"`
}

type LogConfig struct {
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `mapstructure:"max_backups" validate:"gte=0"`
}

const envPrefix = "DEFINER"

// keys that can be overridden with DEFINER_<KEY> environment variables
var envKeys = []string{
	"dictionary.base_url",
	"dictionary.timeout",
	"game.url",
	"browser.headless",
	"browser.exec_path",
	"server.listen_addr",
	"settings.file",
	"log.file",
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/definer")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("dictionary.base_url", "https://api.dictionaryapi.dev/api/v2/entries/en")
	v.SetDefault("dictionary.timeout", 10*time.Second)
	v.SetDefault("game.url", "https://www.nytimes.com/games/connections")
	v.SetDefault("game.url_pattern", "nytimes.com/games/connections")
	v.SetDefault("game.selected_class", "Card-module_selected__cN2eT")
	v.SetDefault("game.container_class_pattern", "Game-module_game__")
	v.SetDefault("browser.headless", false)
	v.SetDefault("server.listen_addr", "127.0.0.1:7391")
	v.SetDefault("settings.file", defaultSettingsFile())
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)

	for _, key := range envKeys {
		env := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s environment variable: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := loader.validator.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return nil, fmt.Errorf("loader.validator.Struct > %w", err)
		}
		errorMsgs := make([]string, 0, len(validationErrors))
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}

	return &cfg, nil
}

func defaultSettingsFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "settings.yml"
	}
	return filepath.Join(home, ".config", "definer", "settings.yml")
}
