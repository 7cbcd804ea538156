package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/dealflowhq/dealflow/internal/record"
)

func TestSubject(t *testing.T) {
	tests := []struct {
		outcome record.Outcome
		want    string
	}{
		{record.OutcomeUrgent, "URGENT Follow-Up Required: Acme Corp"},
		{record.OutcomeFundNotUrgent, "Fund Follow-Up: Acme Corp"},
		{record.OutcomeFutureFund, "Future Fund Opportunity: Acme Corp"},
		{record.OutcomeNotInterested, "Investment Opportunity Review: Acme Corp"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Subject(tt.outcome, "Acme Corp"))
	}
}

func TestRenderBodyAllOutcomes(t *testing.T) {
	data := TemplateData{
		CompanyName: "Acme Corp",
		Summary:     "Raised a seed round.",
		KeyPoints:   []string{"$5M round", "150% growth"},
		NextSteps:   []string{"Partner call"},
	}

	for _, outcome := range []record.Outcome{
		record.OutcomeUrgent,
		record.OutcomeFundNotUrgent,
		record.OutcomeFutureFund,
		record.OutcomeNotInterested,
	} {
		t.Run(string(outcome), func(t *testing.T) {
			body, err := RenderBody(outcome, data)
			require.NoError(t, err)
			assert.Contains(t, body, "Acme Corp")
			assert.Contains(t, body, "Raised a seed round.")
			assert.Contains(t, body, "<li>$5M round</li>")
		})
	}
}

func TestRenderBodyEscapesHTML(t *testing.T) {
	body, err := RenderBody(record.OutcomeUrgent, TemplateData{
		CompanyName: "Acme <script>alert(1)</script>",
		Summary:     "ok",
	})
	require.NoError(t, err)
	assert.NotContains(t, body, "<script>")
}

func TestRenderBodyUnknownOutcome(t *testing.T) {
	_, err := RenderBody(record.Outcome("mystery"), TemplateData{})
	assert.Error(t, err)
}

func TestNewSenderValidation(t *testing.T) {
	logger := zaptest.NewLogger(t)

	_, err := NewSender(SMTPConfig{Provider: "yahoo", Username: "u", Password: "p"}, logger)
	assert.Error(t, err, "unknown providers are rejected")

	_, err = NewSender(SMTPConfig{Provider: "gmail"}, logger)
	assert.Error(t, err, "credentials are required")

	s, err := NewSender(SMTPConfig{Provider: "office365", Username: "bot@corp.example", Password: "pw"}, logger)
	require.NoError(t, err)
	assert.NotNil(t, s)
}
