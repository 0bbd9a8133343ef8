// Package server answers messages from the popup about the page being watched.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ActionGetSelectedWords asks for the words currently selected in the game.
const ActionGetSelectedWords = "get_selected_words"

type MessageRequest struct {
	Action string `json:"action"`
}

type SelectedWordsResponse struct {
	Words []string `json:"words"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// WordsProvider returns the selected words, at most four and in page order.
type WordsProvider interface {
	SelectedWords(ctx context.Context) []string
}

type MessageHandler struct {
	words  WordsProvider
	page   PageChecker
	logger *slog.Logger
}

func NewMessageHandler(words WordsProvider, page PageChecker, logger *slog.Logger) *MessageHandler {
	return &MessageHandler{
		words:  words,
		page:   page,
		logger: logger.With("component", "server"),
	}
}

// Router returns the routes served on the message address.
func (handler *MessageHandler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(handler.logRequests)

	r.Get("/healthz", handler.HandleHealthCheck)
	r.Post("/messages", handler.HandleMessage)
	return r
}

func (handler *MessageHandler) HandleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (handler *MessageHandler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	var request MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		handler.respondWithError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	switch request.Action {
	case ActionGetSelectedWords:
		onGamePage, err := handler.page.OnGamePage(r.Context())
		if err != nil {
			handler.logger.ErrorContext(r.Context(), "failed to check the page", "error", err)
			handler.respondWithError(w, http.StatusInternalServerError, "failed to read the page location")
			return
		}
		// The tab can navigate away after watch has started.
		if !onGamePage {
			handler.respondWithError(w, http.StatusConflict, ErrNotGamePage.Error())
			return
		}
		words := handler.words.SelectedWords(r.Context())
		if words == nil {
			words = []string{}
		}
		handler.respond(w, http.StatusOK, SelectedWordsResponse{Words: words})
	default:
		handler.respondWithError(w, http.StatusBadRequest, fmt.Sprintf("unknown action: %s", request.Action))
	}
}

func (handler *MessageHandler) respondWithError(w http.ResponseWriter, status int, message string) {
	handler.respond(w, status, ErrorResponse{Error: message})
}

func (handler *MessageHandler) respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		handler.logger.Error("failed to write a response", "error", err)
	}
}

func (handler *MessageHandler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		handler.logger.DebugContext(r.Context(), "request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
		)
	})
}
