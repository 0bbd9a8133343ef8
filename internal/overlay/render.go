package overlay

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/at-ishikawa/definer/internal/dictionary"
)

//go:embed templates/overlay.html.tmpl
var overlayTemplate string

// Stylesheet is injected into the page once, before the first overlay is mounted.
//
//go:embed assets/overlay.css
var Stylesheet string

var templates = template.Must(template.New("overlay.html.tmpl").
	Funcs(template.FuncMap{
		"capitalizeAll": capitalizeAll,
		"join": func(sep string, elems []string) string {
			return strings.Join(elems, sep)
		},
	}).
	Parse(overlayTemplate))

type overlayView struct {
	Words   []string
	Loading bool
	Cards   []cardView
}

type cardView struct {
	Index      int
	Record     dictionary.Record
	Expanded   bool
	Expandable bool
}

func newCardView(index int, c card) cardView {
	return cardView{
		Index:      index,
		Record:     c.record,
		Expanded:   c.expanded,
		Expandable: len(c.record.Meanings) > 0 || c.record.Origin != "",
	}
}

func renderOverlay(view overlayView) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "overlay", view); err != nil {
		return "", fmt.Errorf("templates.ExecuteTemplate(overlay) > %w", err)
	}
	return buf.String(), nil
}

func renderCard(view cardView) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "card", view); err != nil {
		return "", fmt.Errorf("templates.ExecuteTemplate(card) > %w", err)
	}
	return buf.String(), nil
}

// Capitalize upper-cases the first letter and leaves the rest untouched.
func Capitalize(word string) string {
	r, size := utf8.DecodeRuneInString(word)
	if r == utf8.RuneError {
		return word
	}
	return string(unicode.ToUpper(r)) + word[size:]
}

func capitalizeAll(words []string) []string {
	capitalized := make([]string, 0, len(words))
	for _, word := range words {
		capitalized = append(capitalized, Capitalize(word))
	}
	return capitalized
}
