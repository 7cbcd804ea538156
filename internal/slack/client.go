// Package slack owns the chat-platform boundary: posting and updating
// notifications, rendering records as Block Kit messages, recovering
// record state from rendered messages, and the socket-mode event loop.
package slack

import (
	"context"
	"errors"
	"fmt"

	"github.com/slack-go/slack"
	"go.uber.org/zap"
)

// MessageRef identifies a posted message.
type MessageRef struct {
	Channel   string
	Timestamp string
}

// Client is the minimal chat API the workflow needs.
type Client interface {
	// PostMessage posts blocks to a channel and returns the message ref.
	// threadTS is optional; when set the message is a thread reply.
	PostMessage(ctx context.Context, channel, fallback string, blocks []slack.Block, threadTS string) (MessageRef, error)

	// UpdateMessage replaces an existing message's blocks in place.
	UpdateMessage(ctx context.Context, ref MessageRef, fallback string, blocks []slack.Block) error
}

// apiClient wraps the Slack Web API client.
type apiClient struct {
	api    *slack.Client
	logger *zap.Logger
}

// NewClient creates a Client over the Slack Web API.
func NewClient(api *slack.Client, logger *zap.Logger) (Client, error) {
	if api == nil {
		return nil, errors.New("slack api client is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	return &apiClient{api: api, logger: logger.Named("slack")}, nil
}

func (c *apiClient) PostMessage(ctx context.Context, channel, fallback string, blocks []slack.Block, threadTS string) (MessageRef, error) {
	opts := []slack.MsgOption{
		slack.MsgOptionText(fallback, false),
	}
	if len(blocks) > 0 {
		opts = append(opts, slack.MsgOptionBlocks(blocks...))
	}
	if threadTS != "" {
		opts = append(opts, slack.MsgOptionTS(threadTS))
	}

	ch, ts, err := c.api.PostMessageContext(ctx, channel, opts...)
	if err != nil {
		return MessageRef{}, fmt.Errorf("failed to post message to %s: %w", channel, err)
	}
	return MessageRef{Channel: ch, Timestamp: ts}, nil
}

func (c *apiClient) UpdateMessage(ctx context.Context, ref MessageRef, fallback string, blocks []slack.Block) error {
	_, _, _, err := c.api.UpdateMessageContext(ctx, ref.Channel, ref.Timestamp,
		slack.MsgOptionText(fallback, false),
		slack.MsgOptionBlocks(blocks...),
	)
	if err != nil {
		return fmt.Errorf("failed to update message %s/%s: %w", ref.Channel, ref.Timestamp, err)
	}
	return nil
}

var _ Client = (*apiClient)(nil)
