package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/at-ishikawa/definer/internal/dictionary"
	"github.com/at-ishikawa/definer/internal/overlay"
)

// Printer writes definitions as plain colored text.
type Printer struct {
	out    io.Writer
	bold   *color.Color
	italic *color.Color
	faint  *color.Color
	red    *color.Color
}

func NewPrinter(out io.Writer) *Printer {
	return &Printer{
		out:    out,
		bold:   color.New(color.Bold),
		italic: color.New(color.Italic),
		faint:  color.New(color.Faint),
		red:    color.New(color.FgRed),
	}
}

func (printer *Printer) PrintMessage(message string) {
	_, _ = fmt.Fprintln(printer.out, message)
}

// PrintPopup prints the status message, or every record with its details.
func (printer *Printer) PrintPopup(result PopupResult) {
	if result.Message != "" {
		printer.PrintMessage(result.Message)
		return
	}
	printer.PrintRecords(result.Records)
}

func (printer *Printer) PrintRecords(records []dictionary.Record) {
	for i, record := range records {
		if i > 0 {
			_, _ = fmt.Fprintln(printer.out)
		}
		printer.PrintRecord(record)
	}
}

func (printer *Printer) PrintRecord(record dictionary.Record) {
	if !record.Found() {
		_, _ = printer.red.Fprintln(printer.out, MissingMessage(record))
		return
	}

	header := printer.bold.Sprint(overlay.Capitalize(record.Word))
	if record.Phonetic != "" {
		header += " " + printer.faint.Sprint(record.Phonetic)
	}
	_, _ = fmt.Fprintln(printer.out, header)

	for _, meaning := range record.Meanings {
		_, _ = fmt.Fprintf(printer.out, "  %s\n", printer.italic.Sprint(meaning.PartOfSpeech))
		for j, definition := range meaning.Definitions {
			_, _ = fmt.Fprintf(printer.out, "    %d. %s\n", j+1, definition.Text)
			if definition.Example != "" {
				_, _ = fmt.Fprintf(printer.out, "       %s\n", printer.faint.Sprintf("e.g. %s", definition.Example))
			}
		}
	}
	if record.Origin != "" {
		_, _ = fmt.Fprintf(printer.out, "  %s %s\n", printer.bold.Sprint("Origin:"), strings.TrimSpace(record.Origin))
	}
}
