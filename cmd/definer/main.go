package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/at-ishikawa/definer/internal/config"
)

var (
	configFile string
	debugMode  bool
)

func main() {
	rootCommand := newRootCommand()
	if err := rootCommand.Execute(); err != nil {
		if _, fprintfErr := fmt.Fprintf(os.Stderr, "failed to execute a command: %+v\n", err); fprintfErr != nil {
			panic(fmt.Errorf("failed to output an error: %w. Reason: %w", err, fprintfErr))
		}
		os.Exit(1)
	}
	os.Exit(0)
}

func newRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:           "definer",
		Short:         "Show dictionary definitions for the words selected in the Connections game",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogger(debugMode)
			return nil
		},
	}
	rootCommand.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	rootCommand.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug mode")

	rootCommand.AddCommand(
		newWatchCommand(),
		newPopupCommand(),
		newLookupCommand(),
		newSettingsCommand(),
	)
	return rootCommand
}

func newLogHandler(w io.Writer, debugMode bool) slog.Handler {
	logLevel := slog.LevelInfo
	if debugMode {
		logLevel = slog.LevelDebug
	}
	return slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     logLevel,
		AddSource: true,
	})
}

// setupLogger configures the default logger based on debug mode.
// Logs go to stderr so that they never mix with definitions printed on stdout.
func setupLogger(debugMode bool) {
	slog.SetDefault(slog.New(newLogHandler(os.Stderr, debugMode)))
}

// setupFileLogger sends the default logger to a rotating file when one is configured.
// The returned function closes the file.
func setupFileLogger(logConfig config.LogConfig, debugMode bool) func() error {
	if logConfig.File == "" {
		return func() error { return nil }
	}
	writer := &lumberjack.Logger{
		Filename:   logConfig.File,
		MaxSize:    logConfig.MaxSizeMB,
		MaxBackups: logConfig.MaxBackups,
	}
	slog.SetDefault(slog.New(newLogHandler(writer, debugMode)))
	return writer.Close
}
