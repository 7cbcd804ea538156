package slack

import (
	"fmt"
	"strings"
	"time"

	"github.com/slack-go/slack"

	"github.com/dealflowhq/dealflow/internal/record"
)

// Section labels used by the formatter and scraped back by ExtractState.
// Renaming one side without the other breaks decision handling.
const (
	labelCompany      = "Company:"
	labelSummary      = "Summary:"
	labelKeyPoints    = "Key Points:"
	labelNextSteps    = "Next Steps:"
	labelParticipants = "Participants:"
)

// processedActionID marks the inert control left on a decided message.
// The listener ignores it; Block Kit has no true disabled state.
const processedActionID = "processed_action"

// decisionBlockPrefix embeds the record id in the action block so a
// button press can be tied back to its record.
const decisionBlockPrefix = "decision_buttons_"

// RecordIDFromBlock recovers the record id embedded in a decision
// block's identifier. Empty when the block id is not a decision block.
func RecordIDFromBlock(blockID string) string {
	id, ok := strings.CutPrefix(blockID, decisionBlockPrefix)
	if !ok {
		return ""
	}
	return id
}

// ActionID returns the block-action identifier for an outcome.
func ActionID(o record.Outcome) string {
	return string(o) + "_action"
}

// OutcomeFromAction resolves an inbound action identifier to its outcome.
func OutcomeFromAction(actionID string) (record.Outcome, error) {
	return record.ParseOutcome(strings.TrimSuffix(actionID, "_action"))
}

// RenderRecord renders the initial interactive notification: labeled
// sections for the extracted facts, a pending status line, and the four
// decision buttons.
func RenderRecord(rec *record.Record) []slack.Block {
	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, "📝 Meeting Summary", true, false)),
		mrkdwnSection(fmt.Sprintf("*%s* %s", labelCompany, rec.CompanyName())),
		mrkdwnSection(fmt.Sprintf("*%s*\n%s", labelSummary, rec.Summary)),
		mrkdwnSection(fmt.Sprintf("*%s*\n%s", labelKeyPoints, bulleted(rec.KeyPoints))),
	}

	if len(rec.NextSteps) > 0 {
		blocks = append(blocks, mrkdwnSection(fmt.Sprintf("*%s*\n%s", labelNextSteps, bulleted(rec.NextSteps))))
	}
	if len(rec.Participants) > 0 {
		lines := make([]string, 0, len(rec.Participants))
		for _, p := range rec.Participants {
			line := p.Name
			if p.Role != "" {
				line += fmt.Sprintf(" (%s)", p.Role)
			}
			if p.Company != "" {
				line += " from " + p.Company
			}
			lines = append(lines, line)
		}
		blocks = append(blocks, mrkdwnSection(fmt.Sprintf("*%s*\n%s", labelParticipants, bulleted(lines))))
	}

	blocks = append(blocks,
		slack.NewDividerBlock(),
		slack.NewContextBlock("",
			slack.NewTextBlockObject(slack.MarkdownType,
				"Decision: Pending | Processed: "+time.Now().Format("2006-01-02 15:04:05"), false, false)),
		decisionButtons(rec.ID),
	)
	return blocks
}

// decisionButtons builds the four-way action block. Urgent is styled
// primary, not-interested danger, matching their weight.
func decisionButtons(recordID string) *slack.ActionBlock {
	button := func(o record.Outcome) *slack.ButtonBlockElement {
		return slack.NewButtonBlockElement(ActionID(o), string(o),
			slack.NewTextBlockObject(slack.PlainTextType, o.Label(), true, false))
	}

	urgent := button(record.OutcomeUrgent)
	urgent.Style = slack.StylePrimary
	notInterested := button(record.OutcomeNotInterested)
	notInterested.Style = slack.StyleDanger

	return slack.NewActionBlock(
		decisionBlockPrefix+recordID,
		urgent,
		button(record.OutcomeFundNotUrgent),
		button(record.OutcomeFutureFund),
		notInterested,
	)
}

// RenderDecided rebuilds a notification after a decision: the snapshot's
// informational blocks are kept, all action controls and the stale
// pending status line are stripped, a decision line is appended, and a
// single inert "Processed" control replaces the buttons.
func RenderDecided(snapshot []slack.Block, outcome record.Outcome, emailSentTo string) []slack.Block {
	blocks := make([]slack.Block, 0, len(snapshot)+2)
	for _, b := range snapshot {
		if _, isAction := b.(*slack.ActionBlock); isAction {
			continue
		}
		if isDecisionStatus(b) {
			continue
		}
		blocks = append(blocks, b)
	}

	decision := fmt.Sprintf("*Decision:* %s | %s", outcome.Label(), time.Now().Format("2006-01-02 15:04:05"))
	if emailSentTo != "" {
		decision += "\n📧 Email sent to " + emailSentTo
	}

	blocks = append(blocks,
		slack.NewContextBlock("", slack.NewTextBlockObject(slack.MarkdownType, decision, false, false)),
		slack.NewActionBlock("processed_"+string(outcome),
			slack.NewButtonBlockElement(processedActionID, "processed",
				slack.NewTextBlockObject(slack.PlainTextType, "✓ Processed", true, false))),
	)
	return blocks
}

// isDecisionStatus matches the context block carrying the decision
// status line, pending or decided, so re-rendering never stacks them.
func isDecisionStatus(b slack.Block) bool {
	ctxBlock, ok := b.(*slack.ContextBlock)
	if !ok {
		return false
	}
	for _, el := range ctxBlock.ContextElements.Elements {
		if txt, ok := el.(*slack.TextBlockObject); ok && strings.Contains(txt.Text, "Decision:") {
			return true
		}
	}
	return false
}

// RenderError renders the operator-visible extraction failure message.
func RenderError(err error) []slack.Block {
	return []slack.Block{
		mrkdwnSection(fmt.Sprintf("⚠️ Error processing transcription:\n```%v```", err)),
	}
}

// RenderBroadcast renders the outcome announcement for a broadcast
// channel. Future-fund has no broadcast channel and no body here.
func RenderBroadcast(outcome record.Outcome, companyName, summary string) []slack.Block {
	var heading string
	switch outcome {
	case record.OutcomeUrgent:
		heading = "*🚨 URGENT Follow-Up Required*"
	case record.OutcomeFundNotUrgent:
		heading = "*New Fund Opportunity*"
	case record.OutcomeNotInterested:
		heading = "*Contact Not Interested*"
	default:
		heading = "*Update*"
	}

	body := fmt.Sprintf("%s\n\n*Company:* %s\n*Summary:* %s", heading, companyName, summary)
	return []slack.Block{mrkdwnSection(body)}
}

func mrkdwnSection(text string) *slack.SectionBlock {
	return slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, text, false, false), nil, nil)
}

func bulleted(items []string) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, "• "+item)
	}
	return strings.Join(lines, "\n")
}
