package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/at-ishikawa/definer/internal/dictionary"
	"github.com/at-ishikawa/definer/internal/overlay"
	"github.com/at-ishikawa/definer/internal/server"
)

const (
	MessageUnreachable = "Could not communicate with the content script. Is the game page open?"
	MessageNoWords     = "No words selected. Please select one to four words in the game."
	MessageNotGamePage = "This extension only works on the NYT Connections game page."
)

// NotFoundMessage is shown in place of a definition that could not be looked up.
func NotFoundMessage(word string) string {
	return fmt.Sprintf("Definition not found for %q.", word)
}

// MissingMessage explains a record without a definition. Only a dictionary miss reads as not found.
func MissingMessage(record dictionary.Record) string {
	if record.Note == "" || record.Note == dictionary.NoteNotFound {
		return NotFoundMessage(record.Word)
	}
	return fmt.Sprintf("%s: %s", overlay.Capitalize(record.Word), record.Note)
}

// WordsSource returns the words selected in the watched game.
type WordsSource interface {
	SelectedWords(ctx context.Context) ([]string, error)
}

// PopupResult is either a status message or the definitions of the selected words.
type PopupResult struct {
	Message string
	Words   []string
	Records []dictionary.Record
}

// LoadPopup asks the watcher for the selection and looks every word up in order.
func LoadPopup(ctx context.Context, source WordsSource, dict dictionary.Dictionary) (PopupResult, error) {
	words, err := source.SelectedWords(ctx)
	if err != nil {
		if errors.Is(err, ErrUnreachable) {
			return PopupResult{Message: MessageUnreachable}, nil
		}
		if errors.Is(err, server.ErrNotGamePage) {
			return PopupResult{Message: MessageNotGamePage}, nil
		}
		return PopupResult{}, fmt.Errorf("source.SelectedWords > %w", err)
	}
	if len(words) == 0 {
		return PopupResult{Message: MessageNoWords}, nil
	}

	return PopupResult{
		Words:   words,
		Records: dict.LookupAll(ctx, words),
	}, nil
}
