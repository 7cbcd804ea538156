package workflow

import (
	"context"
	"testing"
	"time"

	slackapi "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/dealflowhq/dealflow/internal/record"
)

func newTestOrchestrator(t *testing.T, chat *fakeChat, ext *fakeExtractor) (*Orchestrator, HandleStore) {
	t.Helper()
	store := NewMemoryStore()
	o, err := NewOrchestrator(ext, chat, store, "C-followup", zaptest.NewLogger(t))
	require.NoError(t, err)
	return o, store
}

func TestProcessPostsNotificationAndStoresHandle(t *testing.T) {
	chat := &fakeChat{}
	o, store := newTestOrchestrator(t, chat, &fakeExtractor{})

	rec, err := o.Process(context.Background(), "C-source", "Acme Corp raised a $5M seed round")
	require.NoError(t, err)
	assert.Equal(t, record.StateNotified, rec.State)
	assert.GreaterOrEqual(t, rec.ProcessingDuration, time.Duration(0))

	require.Len(t, chat.posts, 1)
	post := chat.posts[0]
	assert.Equal(t, "C-followup", post.Channel, "notification goes to the follow-up channel, not the transcript channel")
	assert.Empty(t, post.ThreadTS)

	var hasButtons bool
	for _, b := range post.Blocks {
		if ab, ok := b.(*slackapi.ActionBlock); ok {
			hasButtons = len(ab.Elements.ElementSet) == 4
		}
	}
	assert.True(t, hasButtons, "notification carries four decision buttons")

	h, ok := store.Get(rec.ID)
	require.True(t, ok)
	assert.Equal(t, "C-followup", h.Ref.Channel)
	assert.False(t, h.Decided())
}

func TestProcessExtractionFailurePostsError(t *testing.T) {
	chat := &fakeChat{}
	ext := &fakeExtractor{err: record.NewExtractionError("basic", assert.AnError)}
	o, _ := newTestOrchestrator(t, chat, ext)

	rec, err := o.Process(context.Background(), "C-source", "garbage")
	assert.Nil(t, rec)
	assert.True(t, record.IsExtractionError(err))

	require.Len(t, chat.posts, 1)
	sec, ok := chat.posts[0].Blocks[0].(*slackapi.SectionBlock)
	require.True(t, ok)
	assert.Contains(t, sec.Text.Text, "⚠️ Error processing transcription")
}

func TestProcessPostFailurePropagates(t *testing.T) {
	chat := &fakeChat{postErr: assert.AnError}
	o, store := newTestOrchestrator(t, chat, &fakeExtractor{})

	rec, err := o.Process(context.Background(), "C-source", "transcript")
	assert.Nil(t, rec)
	assert.ErrorIs(t, err, assert.AnError)

	if ms, ok := store.(*memoryStore); ok {
		assert.Empty(t, ms.handles, "no handle stored for an unposted notification")
	}
}
