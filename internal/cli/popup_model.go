package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/at-ishikawa/definer/internal/dictionary"
	"github.com/at-ishikawa/definer/internal/overlay"
)

var (
	accentColor = lipgloss.Color("#2a6fb5")
	mutedColor  = lipgloss.Color("#888888")

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(accentColor).Padding(0, 1)
	wordStyle     = lipgloss.NewStyle().Bold(true)
	phoneticStyle = lipgloss.NewStyle().Foreground(mutedColor)
	posStyle      = lipgloss.NewStyle().Italic(true).Foreground(accentColor)
	exampleStyle  = lipgloss.NewStyle().Italic(true).Foreground(mutedColor)
	notFoundStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#c0392b"))
	helpStyle     = lipgloss.NewStyle().Foreground(mutedColor).Padding(0, 1)
	cardStyle     = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderForeground(lipgloss.Color("#dddddd")).
			PaddingLeft(1)
	selectedCardStyle = cardStyle.BorderForeground(accentColor)
)

const helpText = "↑/↓ move • enter/space details • q/esc quit"

// PopupModel is the interactive popup. Each card shows the first definition and
// can be expanded to every meaning and the origin.
type PopupModel struct {
	result   PopupResult
	cursor   int
	expanded map[int]bool
	viewport viewport.Model
	ready    bool
}

func NewPopupModel(result PopupResult) PopupModel {
	return PopupModel{
		result:   result,
		expanded: map[int]bool{},
	}
}

func (m PopupModel) Init() tea.Cmd {
	return nil
}

func (m PopupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		headerHeight := lipgloss.Height(m.header())
		footerHeight := lipgloss.Height(helpStyle.Render(helpText))
		height := max(msg.Height-headerHeight-footerHeight, 1)
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
		m.viewport.SetContent(m.content())
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.result.Records)-1 {
				m.cursor++
			}
		case "enter", " ":
			if m.cursor < len(m.result.Records) && expandable(m.result.Records[m.cursor]) {
				m.expanded[m.cursor] = !m.expanded[m.cursor]
			}
		default:
			if m.ready {
				var cmd tea.Cmd
				m.viewport, cmd = m.viewport.Update(msg)
				return m, cmd
			}
			return m, nil
		}
		if m.ready {
			m.viewport.SetContent(m.content())
		}
	}
	return m, nil
}

func (m PopupModel) View() string {
	body := m.content()
	if m.ready {
		body = m.viewport.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.header(), body, helpStyle.Render(helpText))
}

func (m PopupModel) Cursor() int {
	return m.cursor
}

func (m PopupModel) Expanded(index int) bool {
	return m.expanded[index]
}

func (m PopupModel) header() string {
	if len(m.result.Words) == 0 {
		return titleStyle.Render("definer")
	}
	words := make([]string, 0, len(m.result.Words))
	for _, word := range m.result.Words {
		words = append(words, overlay.Capitalize(word))
	}
	return titleStyle.Render(strings.Join(words, ", "))
}

func (m PopupModel) content() string {
	if m.result.Message != "" {
		return m.result.Message
	}

	cards := make([]string, 0, len(m.result.Records))
	for i, record := range m.result.Records {
		style := cardStyle
		if i == m.cursor {
			style = selectedCardStyle
		}
		cards = append(cards, style.Render(renderRecord(record, m.expanded[i])))
	}
	return strings.Join(cards, "\n\n")
}

func expandable(record dictionary.Record) bool {
	return len(record.Meanings) > 0 || record.Origin != ""
}

func renderRecord(record dictionary.Record, expanded bool) string {
	if !record.Found() {
		return notFoundStyle.Render(MissingMessage(record))
	}

	var b strings.Builder
	b.WriteString(wordStyle.Render(record.Word))
	if record.Phonetic != "" {
		b.WriteString(" " + phoneticStyle.Render(record.Phonetic))
	}
	b.WriteString("\n" + record.FirstDefinition())
	if !expanded {
		if expandable(record) {
			b.WriteString("\n" + phoneticStyle.Render("More..."))
		}
		return b.String()
	}

	for _, meaning := range record.Meanings {
		b.WriteString("\n\n" + posStyle.Render(meaning.PartOfSpeech))
		for j, definition := range meaning.Definitions {
			fmt.Fprintf(&b, "\n%d. %s", j+1, definition.Text)
			if definition.Example != "" {
				b.WriteString("\n   " + exampleStyle.Render("e.g. "+definition.Example))
			}
		}
	}
	if record.Origin != "" {
		b.WriteString("\n\n" + wordStyle.Render("Origin:") + " " + record.Origin)
	}
	return b.String()
}

// RunPopup shows the interactive popup until the user quits.
func RunPopup(ctx context.Context, result PopupResult, in io.Reader, out io.Writer) error {
	program := tea.NewProgram(NewPopupModel(result),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
		tea.WithAltScreen(),
	)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("program.Run > %w", err)
	}
	return nil
}
