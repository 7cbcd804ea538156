package slack

import (
	"strings"
	"testing"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealflowhq/dealflow/internal/record"
)

func sampleRecord() *record.Record {
	rec := record.New("raw transcript")
	rec.Summary = "Acme Corp is raising a seed round."
	rec.KeyPoints = []string{"Raising $5M", "150% YoY growth"}
	rec.NextSteps = []string{"Schedule partner call"}
	rec.Company = &record.Company{Name: "Acme Corp"}
	rec.Participants = []record.Participant{{Name: "Jane Doe", Role: "CEO", Company: "Acme Corp"}}
	return rec
}

func TestRenderExtractRoundTrip(t *testing.T) {
	rec := sampleRecord()
	state := ExtractState(RenderRecord(rec))

	assert.Equal(t, "Acme Corp", state.CompanyName)
	assert.Equal(t, rec.Summary, state.Summary)
	assert.Equal(t, rec.KeyPoints, state.KeyPoints)
	assert.Equal(t, rec.NextSteps, state.NextSteps)
}

func TestRenderRecordButtons(t *testing.T) {
	blocks := RenderRecord(sampleRecord())

	var actions *slack.ActionBlock
	for _, b := range blocks {
		if ab, ok := b.(*slack.ActionBlock); ok {
			actions = ab
		}
	}
	require.NotNil(t, actions, "notification must carry the decision buttons")

	elements := actions.Elements.ElementSet
	require.Len(t, elements, 4)

	wantIDs := []string{"urgent_action", "fund_not_urgent_action", "future_fund_action", "not_interested_action"}
	wantLabels := []string{
		"Ja Urgent",
		"Ja voor dit fonds maar niet urgent",
		"Ja voor later fonds",
		"Nee niet interessant",
	}
	for i, el := range elements {
		btn, ok := el.(*slack.ButtonBlockElement)
		require.True(t, ok)
		assert.Equal(t, wantIDs[i], btn.ActionID)
		assert.Equal(t, wantLabels[i], btn.Text.Text)
	}
}

func TestRenderRecordOmitsEmptySections(t *testing.T) {
	rec := record.New("raw transcript")
	rec.Summary = "Short call, no details."
	rec.KeyPoints = []string{"Nothing concrete"}

	state := ExtractState(RenderRecord(rec))
	assert.Equal(t, "Unknown", state.CompanyName)
	assert.Empty(t, state.NextSteps)
}

func TestRenderDecidedStripsButtons(t *testing.T) {
	rec := sampleRecord()
	decided := RenderDecided(RenderRecord(rec), record.OutcomeUrgent, "owner@fund.example")

	for _, b := range decided {
		ab, ok := b.(*slack.ActionBlock)
		if !ok {
			continue
		}
		require.Len(t, ab.Elements.ElementSet, 1)
		btn, ok := ab.Elements.ElementSet[0].(*slack.ButtonBlockElement)
		require.True(t, ok)
		assert.Equal(t, processedActionID, btn.ActionID, "only the inert processed control survives")
	}
}

func TestRenderDecidedReplacesStatusLine(t *testing.T) {
	rec := sampleRecord()
	decided := RenderDecided(RenderRecord(rec), record.OutcomeUrgent, "")

	var statusLines []string
	for _, b := range decided {
		cb, ok := b.(*slack.ContextBlock)
		if !ok {
			continue
		}
		for _, el := range cb.ContextElements.Elements {
			if txt, ok := el.(*slack.TextBlockObject); ok && strings.Contains(txt.Text, "Decision:") {
				statusLines = append(statusLines, txt.Text)
			}
		}
	}

	require.Len(t, statusLines, 1, "exactly one status line after deciding")
	assert.NotContains(t, statusLines[0], "Pending")
	assert.Contains(t, statusLines[0], record.OutcomeUrgent.Label())
}

func TestRenderDecidedPreservesState(t *testing.T) {
	rec := sampleRecord()
	initial := RenderRecord(rec)
	decided := RenderDecided(initial, record.OutcomeFundNotUrgent, "")

	// Re-rendering must not corrupt what a later extraction would see.
	assert.Equal(t, ExtractState(initial), ExtractState(decided))
}

func TestOutcomeFromAction(t *testing.T) {
	for _, o := range []record.Outcome{
		record.OutcomeUrgent,
		record.OutcomeFundNotUrgent,
		record.OutcomeFutureFund,
		record.OutcomeNotInterested,
	} {
		got, err := OutcomeFromAction(ActionID(o))
		require.NoError(t, err)
		assert.Equal(t, o, got)
	}

	_, err := OutcomeFromAction("mystery_action")
	assert.Error(t, err)
}

func TestRenderError(t *testing.T) {
	blocks := RenderError(assert.AnError)
	require.Len(t, blocks, 1)
	sec, ok := blocks[0].(*slack.SectionBlock)
	require.True(t, ok)
	assert.Contains(t, sec.Text.Text, "⚠️ Error processing transcription")
	assert.Contains(t, sec.Text.Text, assert.AnError.Error())
}
