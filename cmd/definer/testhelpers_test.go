package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func setConfigFile(t *testing.T, cfgPath string) {
	t.Helper()
	oldConfigFile := configFile
	configFile = cfgPath
	t.Cleanup(func() { configFile = oldConfigFile })
}

// newDictionaryServer serves the entries keyed by word and 404s everything else.
func newDictionaryServer(t *testing.T, entries map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		word := strings.TrimPrefix(r.URL.Path, "/")
		body, ok := entries[word]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"title":"No Definitions Found"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func execute(t *testing.T, command *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	command.SetOut(&out)
	command.SetErr(&out)
	command.SetArgs(args)
	err := command.Execute()
	return out.String(), err
}

const saltEntry = `[{"word":"salt","phonetic":"/sɔːlt/","phonetics":[{"text":"/sɔːlt/","audio":"https://api.dictionaryapi.dev/media/pronunciations/en/salt.mp3"}],"meanings":[{"partOfSpeech":"noun","definitions":[{"definition":"A common substance.","example":"Pass the salt."}]}],"origin":"Old English sealt"}]`
