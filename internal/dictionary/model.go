package dictionary

const (
	NoteNotFound = "No definition found."
	NoteTimedOut = "Lookup timed out."
)

// Record is the normalized dictionary entry for one looked up word.
// A failed lookup still produces a Record: Meanings is empty and Note explains why.
type Record struct {
	Word     string    `json:"word"`
	Phonetic string    `json:"phonetic"`
	AudioURL string    `json:"audioUrl"`
	Meanings []Meaning `json:"meanings"`
	Origin   string    `json:"origin"`
	Note     string    `json:"note,omitempty"`
}

type Meaning struct {
	PartOfSpeech string       `json:"partOfSpeech"`
	Definitions  []Definition `json:"definitions"`
}

type Definition struct {
	Text    string `json:"definition"`
	Example string `json:"example,omitempty"`
}

func newPlaceholder(word, note string) Record {
	return Record{
		Word:     word,
		Meanings: []Meaning{},
		Note:     note,
	}
}

// Found reports whether the lookup produced an entry.
func (r Record) Found() bool {
	return r.Note == ""
}

// FirstDefinition returns the first definition of the first meaning, or the note
// when there is none.
func (r Record) FirstDefinition() string {
	for _, meaning := range r.Meanings {
		for _, definition := range meaning.Definitions {
			if definition.Text != "" {
				return definition.Text
			}
		}
	}
	return r.Note
}
