// Package detector decides when the selected words changed enough to refresh the overlay.
package detector

import (
	"slices"

	"github.com/at-ishikawa/definer/internal/selection"
)

// SelectionState is the last observed selection: up to four words, in page order.
type SelectionState struct {
	words []string
}

func NewSelectionState(words []string) SelectionState {
	if len(words) > selection.MaxWords {
		words = words[:selection.MaxWords]
	}
	return SelectionState{words: slices.Clone(words)}
}

// Words returns a copy of the selected words.
func (state SelectionState) Words() []string {
	if len(state.words) == 0 {
		return []string{}
	}
	return slices.Clone(state.words)
}

func (state SelectionState) Len() int {
	return len(state.words)
}

func (state SelectionState) IsEmpty() bool {
	return len(state.words) == 0
}

// Equal compares word by word; order matters.
func (state SelectionState) Equal(words []string) bool {
	return slices.Equal(state.words, words)
}

type Action int

const (
	ActionNone Action = iota
	// ActionFetch means the overlay has to be refreshed for a new non-empty selection.
	ActionFetch
	// ActionRemove means the selection became empty and the overlay has to go.
	ActionRemove
)

func (a Action) String() string {
	switch a {
	case ActionFetch:
		return "fetch"
	case ActionRemove:
		return "remove"
	default:
		return "none"
	}
}

type Decision struct {
	Action Action
	State  SelectionState
}

// Detector owns the SelectionState. Mutation and click triggers both call Observe,
// which is the only de-duplication in the pipeline.
type Detector struct {
	state SelectionState
}

func New() *Detector {
	return &Detector{}
}

func (detector *Detector) State() SelectionState {
	return detector.state
}

// Observe compares words with the stored state and replaces it when they differ.
func (detector *Detector) Observe(words []string) Decision {
	next := NewSelectionState(words)
	if detector.state.Equal(next.words) {
		return Decision{Action: ActionNone, State: detector.state}
	}

	detector.state = next
	if next.IsEmpty() {
		return Decision{Action: ActionRemove, State: next}
	}
	return Decision{Action: ActionFetch, State: next}
}
