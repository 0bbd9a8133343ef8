package dictionary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	DefaultBaseURL = "https://api.dictionaryapi.dev/api/v2/entries/en"
	DefaultTimeout = 10 * time.Second
)

//go:generate mockgen -source=client.go -destination=../mocks/dictionary/mock_dictionary.go -package=mock_dictionary Dictionary

// Dictionary looks up definitions for the words of one selection.
type Dictionary interface {
	LookupAll(ctx context.Context, words []string) []Record
}

type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client reads entries from the Free Dictionary API (dictionaryapi.dev).
type Client struct {
	httpClient *resty.Client
	timeout    time.Duration
	logger     *slog.Logger
}

var _ Dictionary = (*Client)(nil)

func NewClient(config Config, logger *slog.Logger) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	return &Client{
		httpClient: resty.New().SetBaseURL(config.BaseURL),
		timeout:    config.Timeout,
		logger:     logger.With("component", "dictionary"),
	}
}

var errNotFound = errors.New("entry not found")

func (c *Client) lookupAPI(ctx context.Context, word string) ([]byte, error) {
	res, err := c.httpClient.R().
		SetContext(ctx).
		SetPathParam("word", word).
		Get("/{word}")
	if err != nil {
		return nil, fmt.Errorf("client.R.Get > %w", err)
	}
	if !res.IsSuccess() {
		return nil, fmt.Errorf("status code: %d > %w", res.StatusCode(), errNotFound)
	}
	return res.Body(), nil
}

// Lookup fetches the entry for word. It never fails: a lookup that cannot be
// completed is returned as a placeholder Record carrying a Note.
func (c *Client) Lookup(ctx context.Context, word string) Record {
	lookupCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := c.lookupAPI(lookupCtx, word)
	if err != nil {
		if errors.Is(lookupCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			c.logger.WarnContext(ctx, "dictionary lookup timed out",
				slog.String("word", word),
				slog.Duration("timeout", c.timeout),
			)
			return newPlaceholder(word, NoteTimedOut)
		}
		c.logger.DebugContext(ctx, "dictionary lookup failed",
			slog.String("word", word),
			slog.Any("error", err),
		)
		return newPlaceholder(word, NoteNotFound)
	}

	record, ok := parseEntries(body, word)
	if !ok {
		c.logger.DebugContext(ctx, "malformed dictionary response", slog.String("word", word))
		return newPlaceholder(word, NoteNotFound)
	}
	c.logger.DebugContext(ctx, "dictionary lookup",
		slog.String("word", word),
		slog.Int("meanings", len(record.Meanings)),
	)
	return record
}

// LookupAll looks words up one at a time, in order, so at most one request is
// outstanding and the result order matches the input order.
func (c *Client) LookupAll(ctx context.Context, words []string) []Record {
	records := make([]Record, 0, len(words))
	for _, word := range words {
		records = append(records, c.Lookup(ctx, word))
	}
	return records
}
