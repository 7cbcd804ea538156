package workflow

import (
	"context"
	"sync"

	slackapi "github.com/slack-go/slack"

	"github.com/dealflowhq/dealflow/internal/crm"
	"github.com/dealflowhq/dealflow/internal/record"
	"github.com/dealflowhq/dealflow/internal/slack"
)

type postedMessage struct {
	Channel  string
	Fallback string
	Blocks   []slackapi.Block
	ThreadTS string
}

type updatedMessage struct {
	Ref      slack.MessageRef
	Fallback string
	Blocks   []slackapi.Block
}

// fakeChat records chat API calls and fails on demand.
type fakeChat struct {
	mu        sync.Mutex
	posts     []postedMessage
	updates   []updatedMessage
	postErr   error
	updateErr error
}

func (f *fakeChat) PostMessage(_ context.Context, channel, fallback string, blocks []slackapi.Block, threadTS string) (slack.MessageRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.postErr != nil {
		return slack.MessageRef{}, f.postErr
	}
	f.posts = append(f.posts, postedMessage{Channel: channel, Fallback: fallback, Blocks: blocks, ThreadTS: threadTS})
	return slack.MessageRef{Channel: channel, Timestamp: "1700000000.000100"}, nil
}

func (f *fakeChat) UpdateMessage(_ context.Context, ref slack.MessageRef, fallback string, blocks []slackapi.Block) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates = append(f.updates, updatedMessage{Ref: ref, Fallback: fallback, Blocks: blocks})
	return nil
}

type sentEmail struct {
	To      string
	Subject string
	Body    string
}

type fakeSender struct {
	mu      sync.Mutex
	sent    []sentEmail
	sendErr error
}

func (f *fakeSender) Send(_ context.Context, to, subject, htmlBody string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, sentEmail{To: to, Subject: subject, Body: htmlBody})
	return nil
}

type fakeCRM struct {
	mu           sync.Mutex
	entries      []crm.Entry
	lookupErr    error
	createErr    error
	interactions []crm.Interaction
}

func (f *fakeCRM) Lookup(_ context.Context, _ string) ([]crm.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entries, f.lookupErr
}

func (f *fakeCRM) CreateInteraction(_ context.Context, in crm.Interaction) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return 0, f.createErr
	}
	f.interactions = append(f.interactions, in)
	return int64(len(f.interactions)), nil
}

type fakeExtractor struct {
	rec *record.Record
	err error
}

func (f *fakeExtractor) Extract(_ context.Context, transcript string) (*record.Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	rec := f.rec
	if rec == nil {
		rec = record.New(transcript)
		rec.Summary = "Acme Corp raised a $5M seed round."
		rec.KeyPoints = []string{"$5M seed round", "150% YoY growth", "Hiring in Q3"}
		rec.NextSteps = []string{"Schedule partner meeting"}
		rec.Company = &record.Company{Name: "Acme Corp"}
	}
	return rec, nil
}
