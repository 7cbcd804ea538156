package slack

import (
	"strings"

	"github.com/slack-go/slack"
)

// MessageState is the flat record recovered from a rendered notification.
// Decision handling is stateless across restarts: everything the fan-out
// needs is scraped back out of the message itself.
type MessageState struct {
	CompanyName string
	Summary     string
	KeyPoints   []string
	NextSteps   []string
}

// ExtractState recovers a MessageState from notification blocks. Labels
// may appear in any order; bullet lines under a list label are collected
// until the next label. Markdown emphasis markers are stripped, so the
// function is idempotent over render-then-extract cycles.
func ExtractState(blocks []slack.Block) MessageState {
	var state MessageState
	section := ""

	for _, line := range blockLines(blocks) {
		line = stripEmphasis(strings.TrimSpace(line))
		if line == "" {
			continue
		}

		if label, rest, ok := matchLabel(line); ok {
			section = label
			if label == labelCompany && rest != "" {
				state.CompanyName = rest
			}
			if label == labelSummary && rest != "" {
				state.Summary = rest
			}
			continue
		}

		switch section {
		case labelSummary:
			if state.Summary == "" {
				state.Summary = line
			} else {
				state.Summary += "\n" + line
			}
		case labelKeyPoints:
			if item, ok := bulletItem(line); ok {
				state.KeyPoints = append(state.KeyPoints, item)
			}
		case labelNextSteps:
			if item, ok := bulletItem(line); ok {
				state.NextSteps = append(state.NextSteps, item)
			}
		}
	}
	return state
}

// blockLines flattens the textual content of section blocks into lines.
// Header, context, divider and action blocks carry no record state.
func blockLines(blocks []slack.Block) []string {
	var lines []string
	for _, b := range blocks {
		sec, ok := b.(*slack.SectionBlock)
		if !ok || sec.Text == nil {
			continue
		}
		lines = append(lines, strings.Split(sec.Text.Text, "\n")...)
	}
	return lines
}

// matchLabel reports whether a line starts with a known section label
// and returns any inline remainder after it. Participants is matched so
// its bullets terminate the preceding list; they carry no record state
// and are discarded.
func matchLabel(line string) (label, rest string, ok bool) {
	for _, l := range []string{labelCompany, labelSummary, labelKeyPoints, labelNextSteps, labelParticipants} {
		if strings.HasPrefix(line, l) {
			return l, strings.TrimSpace(strings.TrimPrefix(line, l)), true
		}
	}
	return "", "", false
}

// bulletItem strips a leading bullet marker. Non-bullet lines inside a
// list section are ignored rather than guessed at. Emphasis markers are
// already stripped by the caller, so "*" is not a bullet here.
func bulletItem(line string) (string, bool) {
	for _, marker := range []string{"•", "-"} {
		if strings.HasPrefix(line, marker) {
			return strings.TrimSpace(strings.TrimPrefix(line, marker)), true
		}
	}
	return "", false
}

// stripEmphasis removes mrkdwn bold and italic markers so labels match
// whether or not the renderer wrapped them.
func stripEmphasis(line string) string {
	line = strings.ReplaceAll(line, "*", "")
	return strings.ReplaceAll(line, "_", "")
}
