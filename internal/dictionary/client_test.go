package dictionary

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, handler http.HandlerFunc, timeout time.Duration) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL, Timeout: timeout}, newTestLogger())
}

func TestNewClient(t *testing.T) {
	client := NewClient(Config{}, newTestLogger())
	assert.Equal(t, DefaultBaseURL, client.httpClient.BaseURL)
	assert.Equal(t, DefaultTimeout, client.timeout)
}

func TestClient_Lookup(t *testing.T) {
	tests := []struct {
		name   string
		word   string
		status int
		body   string
		want   Record
	}{
		{
			name:   "full entry",
			word:   "salt",
			status: http.StatusOK,
			body: `[{
				"word": "salt",
				"phonetic": "/sɔːlt/",
				"phonetics": [
					{"text": "/sɔːlt/"},
					{"text": "/sɒlt/", "audio": "//ssl.gstatic.com/dictionary/static/sounds/salt-uk.mp3"}
				],
				"meanings": [
					{
						"partOfSpeech": "noun",
						"definitions": [
							{"definition": "Sodium chloride.", "example": "Pass the salt."},
							{"definition": "A sailor."}
						]
					},
					{
						"partOfSpeech": "verb",
						"definitions": [{"definition": "To add salt to."}]
					}
				],
				"origin": "Old English sealt."
			}, {"word": "salt", "meanings": []}]`,
			want: Record{
				Word:     "salt",
				Phonetic: "/sɔːlt/",
				AudioURL: "//ssl.gstatic.com/dictionary/static/sounds/salt-uk.mp3",
				Meanings: []Meaning{
					{
						PartOfSpeech: "noun",
						Definitions: []Definition{
							{Text: "Sodium chloride.", Example: "Pass the salt."},
							{Text: "A sailor."},
						},
					},
					{
						PartOfSpeech: "verb",
						Definitions:  []Definition{{Text: "To add salt to."}},
					},
				},
				Origin: "Old English sealt.",
			},
		},
		{
			name:   "phonetic falls back to the first phonetics text",
			word:   "pepper",
			status: http.StatusOK,
			body: `[{
				"word": "pepper",
				"phonetics": [{"audio": ""}, {"text": "/ˈpɛpə/"}, {"text": "/ˈpɛpɚ/", "audio": "https://example.com/pepper-us.mp3"}],
				"meanings": []
			}]`,
			want: Record{
				Word:     "pepper",
				Phonetic: "/ˈpɛpə/",
				AudioURL: "https://example.com/pepper-us.mp3",
				Meanings: []Meaning{},
			},
		},
		{
			name:   "fields with unexpected types default to empty",
			word:   "odd",
			status: http.StatusOK,
			body: `[{
				"word": "odd",
				"phonetic": 7,
				"phonetics": "none",
				"meanings": [{"partOfSpeech": "adjective", "definitions": [3, {"definition": "Strange."}]}, "junk"],
				"origin": {"text": "Old Norse"}
			}]`,
			want: Record{
				Word: "odd",
				Meanings: []Meaning{
					{PartOfSpeech: "adjective", Definitions: []Definition{{Text: "Strange."}}},
				},
			},
		},
		{
			name:   "missing word keeps the requested word",
			word:   "Pepper",
			status: http.StatusOK,
			body:   `[{"meanings": []}]`,
			want:   Record{Word: "Pepper", Meanings: []Meaning{}},
		},
		{
			name:   "nonexistent word",
			word:   "zzzxqq123",
			status: http.StatusNotFound,
			body:   `{"title":"No Definitions Found","message":"Sorry pal"}`,
			want:   Record{Word: "zzzxqq123", Meanings: []Meaning{}, Note: NoteNotFound},
		},
		{
			name:   "server error",
			word:   "salt",
			status: http.StatusInternalServerError,
			want:   Record{Word: "salt", Meanings: []Meaning{}, Note: NoteNotFound},
		},
		{
			name:   "invalid json",
			word:   "bad",
			status: http.StatusOK,
			body:   `not valid json`,
			want:   Record{Word: "bad", Meanings: []Meaning{}, Note: NoteNotFound},
		},
		{
			name:   "empty array",
			word:   "empty",
			status: http.StatusOK,
			body:   `[]`,
			want:   Record{Word: "empty", Meanings: []Meaning{}, Note: NoteNotFound},
		},
		{
			name:   "array without objects",
			word:   "numbers",
			status: http.StatusOK,
			body:   `[1, 2]`,
			want:   Record{Word: "numbers", Meanings: []Meaning{}, Note: NoteNotFound},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}, time.Second)

			got := client.Lookup(context.Background(), tt.word)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Lookup() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestClient_Lookup_Path(t *testing.T) {
	tests := []struct {
		name     string
		word     string
		wantPath string
	}{
		{name: "case is preserved", word: "Salt", wantPath: "/Salt"},
		{name: "spaces are escaped", word: "ice cream", wantPath: "/ice%20cream"},
		{name: "slashes are escaped", word: "and/or", wantPath: "/and%2For"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath string
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.EscapedPath()
				w.WriteHeader(http.StatusNotFound)
			}, time.Second)

			record := client.Lookup(context.Background(), tt.word)
			assert.Equal(t, tt.wantPath, gotPath)
			assert.Equal(t, tt.word, record.Word)
		})
	}
}

func TestClient_Lookup_Timeout(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}, 50*time.Millisecond)

	got := client.Lookup(context.Background(), "slow")
	assert.Equal(t, "slow", got.Word)
	assert.Empty(t, got.Meanings)
	assert.Equal(t, NoteTimedOut, got.Note)
	assert.False(t, got.Found())
}

func TestClient_LookupAll(t *testing.T) {
	var inFlight, maxInFlight atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		if n > maxInFlight.Load() {
			maxInFlight.Store(n)
		}

		word := strings.TrimPrefix(r.URL.Path, "/")
		if word == "Pepper" {
			// make the first request the slow one
			time.Sleep(20 * time.Millisecond)
		}
		if word == "zzzxqq123" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"word":"` + strings.ToLower(word) + `","meanings":[{"partOfSpeech":"noun","definitions":[{"definition":"def of ` + word + `"}]}]}]`))
	}, time.Second)

	records := client.LookupAll(context.Background(), []string{"Pepper", "Salt", "zzzxqq123"})
	require.Len(t, records, 3)
	assert.Equal(t, "pepper", records[0].Word)
	assert.Equal(t, "salt", records[1].Word)
	assert.Equal(t, "zzzxqq123", records[2].Word)
	assert.Equal(t, "def of Pepper", records[0].FirstDefinition())
	assert.Equal(t, NoteNotFound, records[2].FirstDefinition())
	assert.Equal(t, int32(1), maxInFlight.Load())
}

func TestRecord_FirstDefinition(t *testing.T) {
	tests := []struct {
		name   string
		record Record
		want   string
	}{
		{
			name: "first non-empty definition",
			record: Record{Meanings: []Meaning{
				{PartOfSpeech: "noun", Definitions: []Definition{{Text: ""}}},
				{PartOfSpeech: "verb", Definitions: []Definition{{Text: "To run."}}},
			}},
			want: "To run.",
		},
		{
			name:   "note when no meanings",
			record: newPlaceholder("x", NoteNotFound),
			want:   NoteNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.record.FirstDefinition())
		})
	}
}
