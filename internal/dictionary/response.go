package dictionary

import (
	jsoniter "github.com/json-iterator/go"
)

// parseEntries reads the first entry of a dictionaryapi.dev response.
// The response shape is
//
//	[{"word", "phonetic"?, "phonetics": [{"text"?, "audio"?}],
//	  "meanings": [{"partOfSpeech", "definitions": [{"definition", "example"?}]}],
//	  "origin"?}]
//
// Fields that are missing or have an unexpected type are left empty. It returns
// false when the body is not a JSON array holding at least one object.
func parseEntries(body []byte, requestedWord string) (Record, bool) {
	if !jsoniter.Valid(body) {
		return Record{}, false
	}
	root := jsoniter.Get(body)
	if root.ValueType() != jsoniter.ArrayValue || root.Size() == 0 {
		return Record{}, false
	}
	entry := root.Get(0)
	if entry.ValueType() != jsoniter.ObjectValue {
		return Record{}, false
	}

	record := Record{
		Word:     stringField(entry.Get("word")),
		Phonetic: stringField(entry.Get("phonetic")),
		Origin:   stringField(entry.Get("origin")),
		Meanings: parseMeanings(entry.Get("meanings")),
	}
	if record.Word == "" {
		record.Word = requestedWord
	}

	phonetics := entry.Get("phonetics")
	if phonetics.ValueType() == jsoniter.ArrayValue {
		for i := 0; i < phonetics.Size(); i++ {
			phonetic := phonetics.Get(i)
			if record.Phonetic == "" {
				record.Phonetic = stringField(phonetic.Get("text"))
			}
			if record.AudioURL == "" {
				record.AudioURL = stringField(phonetic.Get("audio"))
			}
		}
	}
	return record, true
}

func parseMeanings(value jsoniter.Any) []Meaning {
	meanings := []Meaning{}
	if value.ValueType() != jsoniter.ArrayValue {
		return meanings
	}
	for i := 0; i < value.Size(); i++ {
		item := value.Get(i)
		if item.ValueType() != jsoniter.ObjectValue {
			continue
		}
		meaning := Meaning{
			PartOfSpeech: stringField(item.Get("partOfSpeech")),
			Definitions:  []Definition{},
		}
		definitions := item.Get("definitions")
		if definitions.ValueType() == jsoniter.ArrayValue {
			for j := 0; j < definitions.Size(); j++ {
				definition := definitions.Get(j)
				if definition.ValueType() != jsoniter.ObjectValue {
					continue
				}
				meaning.Definitions = append(meaning.Definitions, Definition{
					Text:    stringField(definition.Get("definition")),
					Example: stringField(definition.Get("example")),
				})
			}
		}
		meanings = append(meanings, meaning)
	}
	return meanings
}

func stringField(value jsoniter.Any) string {
	if value.ValueType() != jsoniter.StringValue {
		return ""
	}
	return value.ToString()
}
