package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"resty.dev/v3"

	"github.com/at-ishikawa/definer/internal/server"
)

// ErrUnreachable means nothing answered on the message address, usually because
// `definer watch` is not running.
var ErrUnreachable = errors.New("watcher is unreachable")

// MessageClient talks to the message server of a running watcher.
type MessageClient struct {
	httpClient *resty.Client
}

func NewMessageClient(baseURL string) *MessageClient {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetHeader("Content-Type", "application/json")
	return &MessageClient{
		httpClient: client,
	}
}

func (client *MessageClient) Close() error {
	return client.httpClient.Close()
}

// SelectedWords sends the get_selected_words message.
func (client *MessageClient) SelectedWords(ctx context.Context) ([]string, error) {
	response, err := client.httpClient.R().
		SetContext(ctx).
		SetBody(server.MessageRequest{Action: server.ActionGetSelectedWords}).
		SetResult(&server.SelectedWordsResponse{}).
		Post("/messages")
	if err != nil {
		return nil, fmt.Errorf("httpClient.Post > %w: %w", ErrUnreachable, err)
	}
	if response.StatusCode() == http.StatusConflict {
		return nil, fmt.Errorf("response error %d > %w", response.StatusCode(), server.ErrNotGamePage)
	}
	if response.IsError() {
		return nil, fmt.Errorf("response error %d: %s", response.StatusCode(), response.String())
	}

	body, ok := response.Result().(*server.SelectedWordsResponse)
	if !ok || body == nil {
		return nil, fmt.Errorf("empty response body: %s", response.String())
	}
	if body.Words == nil {
		return []string{}, nil
	}
	return body.Words, nil
}
