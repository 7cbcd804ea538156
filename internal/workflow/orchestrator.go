package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dealflowhq/dealflow/internal/httpapi"
	"github.com/dealflowhq/dealflow/internal/record"
	"github.com/dealflowhq/dealflow/internal/slack"
)

// Extractor turns a raw transcript into a structured record.
type Extractor interface {
	Extract(ctx context.Context, transcript string) (*record.Record, error)
}

// Orchestrator handles inbound transcripts: extract, post the
// interactive notification to the follow-up channel, remember where it
// was posted. It never waits for the decision; that arrives later as a
// separate event.
type Orchestrator struct {
	extractor     Extractor
	client        slack.Client
	store         HandleStore
	notifyChannel string
	logger        *zap.Logger
}

// NewOrchestrator creates an Orchestrator. All arguments are required.
// notifyChannel is where interactive notifications are posted; it is
// distinct from the channel transcripts arrive in.
func NewOrchestrator(extractor Extractor, client slack.Client, store HandleStore, notifyChannel string, logger *zap.Logger) (*Orchestrator, error) {
	if extractor == nil {
		return nil, errors.New("extractor is required")
	}
	if client == nil {
		return nil, errors.New("slack client is required")
	}
	if store == nil {
		return nil, errors.New("handle store is required")
	}
	if notifyChannel == "" {
		return nil, errors.New("notification channel is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	return &Orchestrator{
		extractor:     extractor,
		client:        client,
		store:         store,
		notifyChannel: notifyChannel,
		logger:        logger.Named("orchestrator"),
	}, nil
}

// HandleTranscript implements slack.TranscriptHandler.
func (o *Orchestrator) HandleTranscript(ctx context.Context, channel, text string) error {
	_, err := o.Process(ctx, channel, text)
	return err
}

// Process runs the transcript pipeline up to the posted notification.
// Extraction failure posts an operator-visible error back in the source
// channel, next to the transcript; the interactive notification goes to
// the follow-up channel.
func (o *Orchestrator) Process(ctx context.Context, sourceChannel, transcript string) (*record.Record, error) {
	start := time.Now()

	rec, err := o.extractor.Extract(ctx, transcript)
	if err != nil {
		httpapi.TranscriptsProcessed.WithLabelValues("failed").Inc()
		if _, postErr := o.client.PostMessage(ctx, sourceChannel, "Error processing transcription", slack.RenderError(err), ""); postErr != nil {
			o.logger.Error("failed to post extraction error notification",
				zap.String("channel", sourceChannel), zap.Error(postErr))
		}
		return nil, err
	}
	rec.ProcessingDuration = time.Since(start)

	ref, err := o.client.PostMessage(ctx, o.notifyChannel,
		"Meeting summary: "+rec.CompanyName(), slack.RenderRecord(rec), "")
	if err != nil {
		httpapi.TranscriptsProcessed.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("failed to post notification: %w", err)
	}

	rec.State = record.StateNotified
	o.store.Put(rec.ID, Handle{
		RecordID:  rec.ID,
		Ref:       ref,
		CreatedAt: time.Now(),
	})

	httpapi.TranscriptsProcessed.WithLabelValues("ok").Inc()
	o.logger.Info("transcript processed",
		zap.String("record_id", rec.ID),
		zap.String("company", rec.CompanyName()),
		zap.Duration("duration", rec.ProcessingDuration))
	return rec, nil
}
