package slack

import (
	"context"
	"errors"
	"strings"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"
	"go.uber.org/zap"
)

// TranscriptHandler receives raw transcript text posted to the source
// channel.
type TranscriptHandler interface {
	HandleTranscript(ctx context.Context, channel, text string) error
}

// ActionEvent is a decision-button press, acked and unpacked from the
// interaction payload.
type ActionEvent struct {
	Channel     string
	Timestamp   string
	ActionID    string
	ActionValue string
	BlockID     string
	UserID      string
	Blocks      []slack.Block
}

// ActionHandler receives acked decision-button presses.
type ActionHandler interface {
	HandleAction(ctx context.Context, ev ActionEvent) error
}

// Listener runs the socket-mode event loop, filtering message events to
// the configured source channel and dispatching block actions.
type Listener struct {
	socket        *socketmode.Client
	sourceChannel string
	transcripts   TranscriptHandler
	actions       ActionHandler
	logger        *zap.Logger
}

// NewListener creates a Listener. All arguments are required.
func NewListener(socket *socketmode.Client, sourceChannel string, transcripts TranscriptHandler, actions ActionHandler, logger *zap.Logger) (*Listener, error) {
	if socket == nil {
		return nil, errors.New("socket client is required")
	}
	if sourceChannel == "" {
		return nil, errors.New("source channel is required")
	}
	if transcripts == nil {
		return nil, errors.New("transcript handler is required")
	}
	if actions == nil {
		return nil, errors.New("action handler is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	return &Listener{
		socket:        socket,
		sourceChannel: sourceChannel,
		transcripts:   transcripts,
		actions:       actions,
		logger:        logger.Named("listener"),
	}, nil
}

// Run consumes socket-mode events until ctx is canceled. Handlers run in
// their own goroutines so a slow extraction never stalls the event loop.
func (l *Listener) Run(ctx context.Context) error {
	go l.consume(ctx)
	return l.socket.RunContext(ctx)
}

func (l *Listener) consume(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-l.socket.Events:
			if !ok {
				return
			}
			l.dispatch(ctx, evt)
		}
	}
}

func (l *Listener) dispatch(ctx context.Context, evt socketmode.Event) {
	switch evt.Type {
	case socketmode.EventTypeConnecting:
		l.logger.Info("connecting to socket mode")
	case socketmode.EventTypeConnected:
		l.logger.Info("connected to socket mode")
	case socketmode.EventTypeConnectionError:
		l.logger.Warn("socket mode connection error, retrying")
	case socketmode.EventTypeEventsAPI:
		l.handleEventsAPI(ctx, evt)
	case socketmode.EventTypeInteractive:
		l.handleInteractive(ctx, evt)
	}
}

func (l *Listener) handleEventsAPI(ctx context.Context, evt socketmode.Event) {
	apiEvent, ok := evt.Data.(slackevents.EventsAPIEvent)
	if !ok {
		return
	}
	if evt.Request != nil {
		l.socket.Ack(*evt.Request)
	}

	msg, ok := apiEvent.InnerEvent.Data.(*slackevents.MessageEvent)
	if !ok {
		return
	}
	// Only fresh human messages in the watched channel. Bot posts and
	// edits would otherwise loop the pipeline on its own notifications.
	if msg.Channel != l.sourceChannel || msg.BotID != "" || msg.SubType != "" {
		return
	}

	text := messageText(msg)
	if strings.TrimSpace(text) == "" {
		return
	}

	l.logger.Info("transcript received",
		zap.String("channel", msg.Channel),
		zap.String("user", msg.User),
		zap.Int("length", len(text)))

	go func() {
		if err := l.transcripts.HandleTranscript(ctx, msg.Channel, text); err != nil {
			l.logger.Error("transcript handling failed", zap.Error(err))
		}
	}()
}

func (l *Listener) handleInteractive(ctx context.Context, evt socketmode.Event) {
	callback, ok := evt.Data.(slack.InteractionCallback)
	if !ok {
		return
	}
	// Ack inside Slack's 3 second window before any slow work starts.
	if evt.Request != nil {
		l.socket.Ack(*evt.Request)
	}

	if callback.Type != slack.InteractionTypeBlockActions || len(callback.ActionCallback.BlockActions) == 0 {
		return
	}

	action := callback.ActionCallback.BlockActions[0]
	if action.ActionID == processedActionID {
		return
	}

	ev := ActionEvent{
		Channel:     callback.Channel.ID,
		Timestamp:   callback.Message.Timestamp,
		ActionID:    action.ActionID,
		ActionValue: action.Value,
		BlockID:     action.BlockID,
		UserID:      callback.User.ID,
		Blocks:      callback.Message.Blocks.BlockSet,
	}

	l.logger.Info("decision received",
		zap.String("action", ev.ActionID),
		zap.String("user", ev.UserID),
		zap.String("channel", ev.Channel))

	go func() {
		if err := l.actions.HandleAction(ctx, ev); err != nil {
			l.logger.Error("decision handling failed",
				zap.String("action", ev.ActionID), zap.Error(err))
		}
	}()
}

// messageText assembles the message text, preferring rich text blocks
// over the top-level text field. Long transcripts pasted into Slack
// arrive as rich_text sections.
func messageText(msg *slackevents.MessageEvent) string {
	var sb strings.Builder
	for _, b := range msg.Blocks.BlockSet {
		rich, ok := b.(*slack.RichTextBlock)
		if !ok {
			continue
		}
		for _, el := range rich.Elements {
			section, ok := el.(*slack.RichTextSection)
			if !ok {
				continue
			}
			for _, se := range section.Elements {
				if text, ok := se.(*slack.RichTextSectionTextElement); ok {
					sb.WriteString(text.Text)
				}
			}
			sb.WriteString("\n")
		}
	}
	if assembled := strings.TrimSpace(sb.String()); assembled != "" {
		return assembled
	}
	return msg.Text
}
